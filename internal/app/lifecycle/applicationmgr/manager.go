// Package applicationmgr owns the job application lifecycle: applying,
// withdrawing, reviewer status changes, and the read views that join
// applications with postings and student identities.
package applicationmgr

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/placementhub/internal/app/store/storeerr"
	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/app/system/auditlog"
	"github.com/dalemusser/placementhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ApplicationStore is the document-store side of applications.
type ApplicationStore interface {
	Create(ctx context.Context, a models.JobApplication) (models.JobApplication, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.JobApplication, error)
	Get(ctx context.Context, studentID string, jobID primitive.ObjectID) (models.JobApplication, error)
	DeleteApplied(ctx context.Context, studentID string, jobID primitive.ObjectID) (bool, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.JobApplication, error)
	ListByStudentStatus(ctx context.Context, studentID string, status models.ApplicationStatus) ([]models.JobApplication, error)
	ListByJob(ctx context.Context, jobID primitive.ObjectID) ([]models.JobApplication, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.ApplicationStatus) (models.JobApplication, error)
}

// JobStore reads postings.
type JobStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.JobPosting, error)
	GetMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.JobPosting, error)
}

// IdentityStore reads student identities from the relational store.
type IdentityStore interface {
	GetMany(ctx context.Context, ids []string) (map[string]models.Identity, error)
}

type Manager struct {
	apps  ApplicationStore
	jobs  JobStore
	ids   IdentityStore
	audit *auditlog.Logger
	log   *zap.Logger
}

// New wires a Manager. audit may be nil.
func New(apps ApplicationStore, jobs JobStore, ids IdentityStore, audit *auditlog.Logger, logger *zap.Logger) *Manager {
	return &Manager{
		apps:  apps,
		jobs:  jobs,
		ids:   ids,
		audit: audit,
		log:   logger,
	}
}

// ApplyInput is what a student submits with an application.
type ApplyInput struct {
	JobID   string `json:"jobId"`
	Resume  string `json:"resume"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// ApplicationView is an application with its posting attached.
type ApplicationView struct {
	models.JobApplication
	Job models.JobPosting `json:"job"`
}

// StudentApplications partitions a student's applications by posting kind.
type StudentApplications struct {
	OnCampus  []ApplicationView `json:"onCampus"`
	OffCampus []ApplicationView `json:"offCampus"`
}

// Applicant is one row of a posting's applicant list.
type Applicant struct {
	ApplicationID primitive.ObjectID       `json:"application_id"`
	Status        models.ApplicationStatus `json:"status"`
	AppliedAt     time.Time                `json:"applied_at"`
	Resume        string                   `json:"resume"`
	Phone         string                   `json:"phone"`
	Address       string                   `json:"address"`
	Student       models.Identity          `json:"student"`
}

// AppliedJob is a posting a student currently holds an applied application for.
type AppliedJob struct {
	models.JobPosting
	ApplicationStatus models.ApplicationStatus `json:"applicationStatus"`
	ApplicationID     primitive.ObjectID       `json:"applicationId"`
}

// Apply creates an application for studentID. Posting existence is checked
// first; the unique (student, job) index settles concurrent duplicates.
func (m *Manager) Apply(ctx context.Context, studentID string, in ApplyInput) (models.JobApplication, error) {
	jobHex := strings.TrimSpace(in.JobID)
	if jobHex == "" {
		return models.JobApplication{}, apperr.MissingField("jobId")
	}
	resume, phone, address := htmlsanitize.PlainText(in.Resume), htmlsanitize.PlainText(in.Phone), htmlsanitize.PlainText(in.Address)
	switch {
	case resume == "":
		return models.JobApplication{}, apperr.MissingField("resume")
	case phone == "":
		return models.JobApplication{}, apperr.MissingField("phone")
	case address == "":
		return models.JobApplication{}, apperr.MissingField("address")
	}

	jobID, err := primitive.ObjectIDFromHex(jobHex)
	if err != nil {
		return models.JobApplication{}, apperr.ErrJobNotFound
	}
	if _, err := m.jobs.GetByID(ctx, jobID); err != nil {
		if errors.Is(err, storeerr.ErrNotFound) {
			return models.JobApplication{}, apperr.ErrJobNotFound
		}
		return models.JobApplication{}, apperr.Internal(err)
	}

	created, err := m.apps.Create(ctx, models.JobApplication{
		StudentID: studentID,
		JobID:     jobID,
		Resume:    resume,
		Phone:     phone,
		Address:   address,
	})
	if err != nil {
		if errors.Is(err, storeerr.ErrDuplicate) {
			return models.JobApplication{}, apperr.ErrDuplicateApplication
		}
		return models.JobApplication{}, apperr.Internal(err)
	}

	m.log.Info("application created",
		zap.String("student_id", studentID),
		zap.String("job_id", jobHex),
		zap.String("application_id", created.ID.Hex()))
	return created, nil
}

// Cancel withdraws the application (studentID, jobID) by deleting it, which
// is allowed only while it is still applied. Students always act on their
// own applications; admins name the student explicitly.
func (m *Manager) Cancel(ctx context.Context, actor models.Identity, studentID, jobIDHex string) error {
	if actor.Role == models.RoleStudent {
		studentID = actor.ID
	}
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return apperr.MissingField("studentId")
	}
	// Applications store the canonical lower-case form.
	sid, err := uuid.Parse(studentID)
	if err != nil {
		return apperr.ErrApplicationNotFound
	}
	studentID = sid.String()
	jobID, err := primitive.ObjectIDFromHex(strings.TrimSpace(jobIDHex))
	if err != nil {
		return apperr.ErrApplicationNotFound
	}

	deleted, err := m.apps.DeleteApplied(ctx, studentID, jobID)
	if err != nil {
		return apperr.Internal(err)
	}
	if deleted {
		m.log.Info("application withdrawn",
			zap.String("student_id", studentID),
			zap.String("job_id", jobID.Hex()),
			zap.String("actor_id", actor.ID))
		m.audit.ApplicationWithdrawn(ctx, actor.ID, studentID, jobID.Hex())
		return nil
	}

	// Nothing deleted: tell "never existed" apart from "past applied".
	cur, err := m.apps.Get(ctx, studentID, jobID)
	if err != nil {
		if errors.Is(err, storeerr.ErrNotFound) {
			return apperr.ErrApplicationNotFound
		}
		return apperr.Internal(err)
	}
	return apperr.ErrInvalidTransition.WithMessage("Application is " + string(cur.Status) + " and can no longer be withdrawn")
}

// UpdateStatus applies a reviewer transition on behalf of actor. Setting
// the current status again succeeds without a write.
func (m *Manager) UpdateStatus(ctx context.Context, actor models.Identity, applicationIDHex, status string) (models.JobApplication, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(applicationIDHex))
	if err != nil {
		return models.JobApplication{}, apperr.ErrApplicationNotFound
	}
	if strings.TrimSpace(status) == "" {
		return models.JobApplication{}, apperr.MissingField("status")
	}
	to, ok := models.ParseApplicationStatus(strings.TrimSpace(status))
	if !ok || to == models.StatusApplied || to == models.StatusWithdrawn {
		return models.JobApplication{}, apperr.InvalidField("status")
	}

	cur, err := m.apps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storeerr.ErrNotFound) {
			return models.JobApplication{}, apperr.ErrApplicationNotFound
		}
		return models.JobApplication{}, apperr.Internal(err)
	}
	if cur.Status == to {
		return cur, nil
	}
	if !cur.Status.CanTransition(to) {
		return models.JobApplication{}, apperr.ErrInvalidTransition
	}

	updated, err := m.apps.UpdateStatus(ctx, id, cur.Status, to)
	if err == nil {
		m.log.Info("application status changed",
			zap.String("application_id", id.Hex()),
			zap.String("from", string(cur.Status)),
			zap.String("to", string(to)))
		m.audit.ApplicationStatusChanged(ctx, actor.ID, updated.StudentID, id.Hex(), string(cur.Status), string(to))
		return updated, nil
	}
	if !errors.Is(err, storeerr.ErrNotFound) {
		return models.JobApplication{}, apperr.Internal(err)
	}

	// Lost a race: re-read to report what happened.
	now, err := m.apps.GetByID(ctx, id)
	switch {
	case errors.Is(err, storeerr.ErrNotFound):
		return models.JobApplication{}, apperr.ErrApplicationNotFound
	case err != nil:
		return models.JobApplication{}, apperr.Internal(err)
	case now.Status == to:
		return now, nil
	}
	return models.JobApplication{}, apperr.ErrInvalidTransition
}

// ListForStudent returns the student's applications split by posting kind.
// Applications whose posting is gone or has no kind are left out and logged.
func (m *Manager) ListForStudent(ctx context.Context, studentID string) (StudentApplications, error) {
	out := StudentApplications{OnCampus: []ApplicationView{}, OffCampus: []ApplicationView{}}

	apps, err := m.apps.ListByStudent(ctx, studentID)
	if err != nil {
		return out, apperr.Internal(err)
	}
	jobs, err := m.jobs.GetMany(ctx, jobIDs(apps))
	if err != nil {
		return out, apperr.Internal(err)
	}

	for _, a := range apps {
		job, ok := jobs[a.JobID]
		if !ok {
			m.log.Warn("application references missing job posting",
				zap.String("application_id", a.ID.Hex()),
				zap.String("job_id", a.JobID.Hex()))
			continue
		}
		view := ApplicationView{JobApplication: a, Job: job}
		switch job.Kind {
		case models.JobKindOnCampus:
			out.OnCampus = append(out.OnCampus, view)
		case models.JobKindOffCampus:
			out.OffCampus = append(out.OffCampus, view)
		default:
			m.log.Warn("job posting has no usable kind",
				zap.String("application_id", a.ID.Hex()),
				zap.String("job_id", a.JobID.Hex()),
				zap.String("kind", string(job.Kind)))
		}
	}
	return out, nil
}

// ListApplicants returns everyone who applied to the posting, with their
// identity attached. Identities never carry a password hash.
func (m *Manager) ListApplicants(ctx context.Context, jobIDHex string) ([]Applicant, error) {
	jobID, err := primitive.ObjectIDFromHex(strings.TrimSpace(jobIDHex))
	if err != nil {
		return nil, apperr.InvalidField("jobId")
	}
	apps, err := m.apps.ListByJob(ctx, jobID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	studentIDs := make([]string, 0, len(apps))
	for _, a := range apps {
		studentIDs = append(studentIDs, a.StudentID)
	}
	students, err := m.ids.GetMany(ctx, studentIDs)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	out := make([]Applicant, 0, len(apps))
	for _, a := range apps {
		s, ok := students[a.StudentID]
		if !ok {
			m.log.Warn("applicant identity not found",
				zap.String("application_id", a.ID.Hex()),
				zap.String("student_id", a.StudentID))
			continue
		}
		out = append(out, Applicant{
			ApplicationID: a.ID,
			Status:        a.Status,
			AppliedAt:     a.CreatedAt,
			Resume:        a.Resume,
			Phone:         a.Phone,
			Address:       a.Address,
			Student:       s,
		})
	}
	return out, nil
}

// ListAppliedJobs returns the postings the student has a still-applied
// application for.
func (m *Manager) ListAppliedJobs(ctx context.Context, studentID string) ([]AppliedJob, error) {
	apps, err := m.apps.ListByStudentStatus(ctx, studentID, models.StatusApplied)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	jobs, err := m.jobs.GetMany(ctx, jobIDs(apps))
	if err != nil {
		return nil, apperr.Internal(err)
	}

	out := make([]AppliedJob, 0, len(apps))
	for _, a := range apps {
		job, ok := jobs[a.JobID]
		if !ok {
			m.log.Warn("application references missing job posting",
				zap.String("application_id", a.ID.Hex()),
				zap.String("job_id", a.JobID.Hex()))
			continue
		}
		out = append(out, AppliedJob{JobPosting: job, ApplicationStatus: a.Status, ApplicationID: a.ID})
	}
	return out, nil
}

func jobIDs(apps []models.JobApplication) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(apps))
	out := make([]primitive.ObjectID, 0, len(apps))
	for _, a := range apps {
		if _, ok := seen[a.JobID]; ok {
			continue
		}
		seen[a.JobID] = struct{}{}
		out = append(out, a.JobID)
	}
	return out
}
