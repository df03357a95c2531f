// internal/domain/models/application.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ApplicationStatus is the lifecycle state of a JobApplication.
type ApplicationStatus string

const (
	StatusApplied     ApplicationStatus = "applied"
	StatusUnderReview ApplicationStatus = "under-review"
	StatusShortlisted ApplicationStatus = "shortlisted"
	StatusRejected    ApplicationStatus = "rejected"
	StatusWithdrawn   ApplicationStatus = "withdrawn"
)

// ParseApplicationStatus reports whether s names a known status.
func ParseApplicationStatus(s string) (ApplicationStatus, bool) {
	st := ApplicationStatus(s)
	switch st {
	case StatusApplied, StatusUnderReview, StatusShortlisted, StatusRejected, StatusWithdrawn:
		return st, true
	}
	return "", false
}

// Terminal reports whether no transition leaves this status.
func (s ApplicationStatus) Terminal() bool {
	return s != StatusApplied
}

// CanTransition reports whether a reviewer may move an application from s
// to next. Withdrawal is not a reviewer transition; it happens through cancel.
func (s ApplicationStatus) CanTransition(next ApplicationStatus) bool {
	if s != StatusApplied {
		return false
	}
	switch next {
	case StatusUnderReview, StatusShortlisted, StatusRejected:
		return true
	}
	return false
}

// JobApplication links a student (relational identity) to a job posting
// (document store). At most one exists per (StudentID, JobID).
type JobApplication struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID string             `bson:"student_id" json:"student_id"`
	JobID     primitive.ObjectID `bson:"job_id" json:"job_id"`
	Resume    string             `bson:"resume" json:"resume"`
	Phone     string             `bson:"phone" json:"phone"`
	Address   string             `bson:"address" json:"address"`
	Status    ApplicationStatus  `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
