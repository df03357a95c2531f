// Package authz is the role gate: a pure membership check of a resolved
// identity's role against the capability set an operation requires.
//
// There is no hierarchy. An admin is not implicitly a caller or a student;
// every capability set names the roles it admits.
package authz

import (
	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/domain/models"
)

// Authorize allows who when their role is in required, and otherwise
// fails with ACCESS_DENIED.
func Authorize(who models.Identity, required RoleSet) error {
	if !required.Has(who.Role) {
		return apperr.ErrAccessDenied
	}
	return nil
}
