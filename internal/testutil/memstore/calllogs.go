package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dalemusser/placementhub/internal/app/store/storeerr"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/google/uuid"
)

// CallLogs mirrors calllogstore.Store's write and lookup paths.
type CallLogs struct {
	mu   sync.Mutex
	logs map[string]models.CallLog
}

func NewCallLogs() *CallLogs {
	return &CallLogs{logs: map[string]models.CallLog{}}
}

// Put stores l as-is.
func (s *CallLogs) Put(l models.CallLog) models.CallLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	s.logs[l.ID] = l
	return l
}

func (s *CallLogs) Create(_ context.Context, l models.CallLog) (models.CallLog, error) {
	l.ID = ""
	l.CreatedAt = time.Time{}
	return s.Put(l), nil
}

func (s *CallLogs) GetByID(_ context.Context, id string) (models.CallLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.logs[id]
	if !ok {
		return models.CallLog{}, storeerr.ErrNotFound
	}
	return l, nil
}

func (s *CallLogs) List(_ context.Context, callerID string) ([]models.CallLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.CallLog{}
	for _, l := range s.logs {
		if callerID == "" || l.CallerID == callerID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *CallLogs) Update(_ context.Context, id, outcome, notes string, followUp *time.Time) (models.CallLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.logs[id]
	if !ok {
		return models.CallLog{}, storeerr.ErrNotFound
	}
	l.Outcome, l.Notes, l.FollowUpAt = outcome, notes, followUp
	s.logs[id] = l
	return l, nil
}

func (s *CallLogs) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.logs[id]; !ok {
		return storeerr.ErrNotFound
	}
	delete(s.logs, id)
	return nil
}

// Len returns how many call logs are stored.
func (s *CallLogs) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.logs)
}
