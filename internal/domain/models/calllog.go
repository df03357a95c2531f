// internal/domain/models/calllog.go
package models

import "time"

// CallLog records one outreach call to an HR contact. CallerID is the
// identity that logged it and owns it.
type CallLog struct {
	ID         string     `json:"call_id"`
	ContactID  string     `json:"contact_id"`
	CallerID   string     `json:"caller_id"`
	Outcome    string     `json:"outcome"`
	Notes      string     `json:"notes,omitempty"`
	FollowUpAt *time.Time `json:"follow_up_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
