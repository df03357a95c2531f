// internal/domain/models/hrcontact.go
package models

import "time"

// HRContact is a company HR person the placement cell reaches out to.
// AssignedTo is written only by the contact assignment manager.
type HRContact struct {
	ID         string    `json:"contact_id"`
	FullName   string    `json:"full_name"`
	Company    string    `json:"company"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	AssignedTo string    `json:"assigned_to_user_id,omitempty"` // empty when unassigned
	UpdatedAt  time.Time `json:"updated_at"`
}

// Assigned reports whether the contact currently has an assignee.
func (c HRContact) Assigned() bool {
	return c.AssignedTo != ""
}

// ContactFilter selects which contacts a listing returns.
type ContactFilter string

const (
	ContactsAll        ContactFilter = "all"
	ContactsAssigned   ContactFilter = "assigned"
	ContactsUnassigned ContactFilter = "unassigned"
)

// ParseContactFilter maps a query value to a filter; blank means all.
func ParseContactFilter(s string) (ContactFilter, bool) {
	switch ContactFilter(s) {
	case "", ContactsAll:
		return ContactsAll, true
	case ContactsAssigned:
		return ContactsAssigned, true
	case ContactsUnassigned:
		return ContactsUnassigned, true
	}
	return "", false
}

// CallerStat is the per-caller assignment count shown on the admin pages.
type CallerStat struct {
	CallerID              string `json:"caller_id"`
	FullName              string `json:"full_name"`
	TotalContactsAssigned int64  `json:"total_contacts_assigned"`
}
