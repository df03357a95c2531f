// internal/app/system/authz/roles.go
package authz

import "github.com/dalemusser/placementhub/internal/domain/models"

// RoleSet is a set of roles, one bit per role in models.AllRoles.
type RoleSet uint8

func bit(r models.Role) RoleSet {
	switch r {
	case models.RoleStudent:
		return 1 << 0
	case models.RoleCaller:
		return 1 << 1
	case models.RoleAdmin:
		return 1 << 2
	}
	return 0
}

// Roles builds a set from the given roles.
func Roles(roles ...models.Role) RoleSet {
	var s RoleSet
	for _, r := range roles {
		s |= bit(r)
	}
	return s
}

// Has reports whether r is in the set. Unknown roles are never members.
func (s RoleSet) Has(r models.Role) bool {
	b := bit(r)
	return b != 0 && s&b == b
}

// Members lists the roles in the set in models.AllRoles order.
func (s RoleSet) Members() []models.Role {
	var out []models.Role
	for _, r := range models.AllRoles {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

// Capability sets used by the route table.
var (
	Anyone   = Roles(models.AllRoles...)
	Students = Roles(models.RoleStudent)
	Admins   = Roles(models.RoleAdmin)
	Staff    = Roles(models.RoleAdmin, models.RoleCaller)
)
