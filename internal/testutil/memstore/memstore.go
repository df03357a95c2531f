// Package memstore holds in-memory stand-ins for the document and relational
// stores. They honor the same invariants and sentinel errors as the real
// stores so lifecycle managers and handlers can be tested without a server.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dalemusser/placementhub/internal/app/store/storeerr"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type appKey struct {
	student string
	job     primitive.ObjectID
}

// Applications mirrors applicationstore.Store, including the unique
// (student, job) constraint.
type Applications struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.JobApplication
	keys map[appKey]primitive.ObjectID
	// Err, when set, is returned by every call.
	Err error
}

func NewApplications() *Applications {
	return &Applications{
		byID: map[primitive.ObjectID]models.JobApplication{},
		keys: map[appKey]primitive.ObjectID{},
	}
}

// Put stores a at whatever status it carries, bypassing lifecycle rules.
func (s *Applications) Put(a models.JobApplication) models.JobApplication {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	s.byID[a.ID] = a
	s.keys[appKey{a.StudentID, a.JobID}] = a.ID
	return a
}

// Len reports how many applications are stored.
func (s *Applications) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

func (s *Applications) Create(_ context.Context, a models.JobApplication) (models.JobApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return models.JobApplication{}, s.Err
	}
	k := appKey{a.StudentID, a.JobID}
	if _, ok := s.keys[k]; ok {
		return models.JobApplication{}, storeerr.ErrDuplicate
	}
	now := time.Now().UTC()
	a.ID = primitive.NewObjectID()
	a.Status = models.StatusApplied
	a.CreatedAt, a.UpdatedAt = now, now
	s.byID[a.ID] = a
	s.keys[k] = a.ID
	return a, nil
}

func (s *Applications) GetByID(_ context.Context, id primitive.ObjectID) (models.JobApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return models.JobApplication{}, s.Err
	}
	a, ok := s.byID[id]
	if !ok {
		return models.JobApplication{}, storeerr.ErrNotFound
	}
	return a, nil
}

func (s *Applications) Get(_ context.Context, studentID string, jobID primitive.ObjectID) (models.JobApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return models.JobApplication{}, s.Err
	}
	id, ok := s.keys[appKey{studentID, jobID}]
	if !ok {
		return models.JobApplication{}, storeerr.ErrNotFound
	}
	return s.byID[id], nil
}

func (s *Applications) DeleteApplied(_ context.Context, studentID string, jobID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	k := appKey{studentID, jobID}
	id, ok := s.keys[k]
	if !ok || s.byID[id].Status != models.StatusApplied {
		return false, nil
	}
	delete(s.keys, k)
	delete(s.byID, id)
	return true, nil
}

func (s *Applications) ListByStudent(_ context.Context, studentID string) ([]models.JobApplication, error) {
	return s.list(func(a models.JobApplication) bool { return a.StudentID == studentID })
}

func (s *Applications) ListByStudentStatus(_ context.Context, studentID string, status models.ApplicationStatus) ([]models.JobApplication, error) {
	return s.list(func(a models.JobApplication) bool { return a.StudentID == studentID && a.Status == status })
}

func (s *Applications) ListByJob(_ context.Context, jobID primitive.ObjectID) ([]models.JobApplication, error) {
	return s.list(func(a models.JobApplication) bool { return a.JobID == jobID })
}

func (s *Applications) UpdateStatus(_ context.Context, id primitive.ObjectID, from, to models.ApplicationStatus) (models.JobApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return models.JobApplication{}, s.Err
	}
	a, ok := s.byID[id]
	if !ok || a.Status != from {
		return models.JobApplication{}, storeerr.ErrNotFound
	}
	a.Status = to
	a.UpdatedAt = time.Now().UTC()
	s.byID[id] = a
	return a, nil
}

func (s *Applications) list(keep func(models.JobApplication) bool) ([]models.JobApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []models.JobApplication{}
	for _, a := range s.byID {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out, nil
}

// Jobs mirrors jobstore.Store.
type Jobs struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.JobPosting
}

func NewJobs(jobs ...models.JobPosting) *Jobs {
	s := &Jobs{byID: map[primitive.ObjectID]models.JobPosting{}}
	for _, j := range jobs {
		s.Put(j)
	}
	return s
}

// Put stores j, assigning an id when it has none.
func (s *Jobs) Put(j models.JobPosting) models.JobPosting {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j.ID.IsZero() {
		j.ID = primitive.NewObjectID()
	}
	s.byID[j.ID] = j
	return j
}

// Delete removes a posting, leaving any applications pointing at it.
func (s *Jobs) Delete(id primitive.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
}

func (s *Jobs) GetByID(_ context.Context, id primitive.ObjectID) (models.JobPosting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.byID[id]
	if !ok {
		return models.JobPosting{}, storeerr.ErrNotFound
	}
	return j, nil
}

func (s *Jobs) GetMany(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.JobPosting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[primitive.ObjectID]models.JobPosting, len(ids))
	for _, id := range ids {
		if j, ok := s.byID[id]; ok {
			out[id] = j
		}
	}
	return out, nil
}
