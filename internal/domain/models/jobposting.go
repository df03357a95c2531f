// internal/domain/models/jobposting.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JobKind classifies a posting for the on/off-campus split.
type JobKind string

const (
	JobKindOnCampus  JobKind = "on-campus"
	JobKindOffCampus JobKind = "off-campus"
)

// JobPosting is owned by the posting-management side of the portal; the
// application lifecycle only reads it.
type JobPosting struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title           string             `bson:"job_title" json:"job_title"`
	Description     string             `bson:"job_description" json:"job_description"`
	Company         string             `bson:"company" json:"company"`
	RequiredSkills  []string           `bson:"required_skills,omitempty" json:"required_skills,omitempty"`
	Kind            JobKind            `bson:"kind,omitempty" json:"kind,omitempty"`
	Batch           int                `bson:"batch" json:"batch"`
	Deadline        *time.Time         `bson:"deadline,omitempty" json:"deadline,omitempty"`
	Expiry          *time.Time         `bson:"expiry,omitempty" json:"expiry,omitempty"`
	ApplicationLink string             `bson:"application_link,omitempty" json:"application_link,omitempty"`
	Author          string             `bson:"author,omitempty" json:"author,omitempty"`
}
