// internal/domain/models/identity.go
package models

import (
	"strings"
	"time"
)

// Role is the closed set of roles an identity can hold.
type Role string

const (
	RoleStudent Role = "student"
	RoleCaller  Role = "caller"
	RoleAdmin   Role = "admin"
)

// AllRoles lists every valid role in a stable order.
var AllRoles = []Role{RoleStudent, RoleCaller, RoleAdmin}

// ParseRole normalizes s and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleStudent, RoleCaller, RoleAdmin:
		return r, true
	}
	return "", false
}

// CanHoldContacts reports whether HR contacts may be assigned to this role.
func (r Role) CanHoldContacts() bool {
	return r == RoleCaller || r == RoleAdmin
}

// Identity is a user row from the relational store with the credential
// secret projected out. It is safe to serialize to clients.
type Identity struct {
	ID        string    `json:"user_id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Approved  bool      `json:"is_approved"`
	CreatedAt time.Time `json:"created_at"`
}

// Credential pairs an identity with its password hash. It never leaves
// the login flow.
type Credential struct {
	Identity     Identity
	PasswordHash string
}
