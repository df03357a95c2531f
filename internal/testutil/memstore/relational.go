package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dalemusser/placementhub/internal/app/store/storeerr"
	"github.com/dalemusser/placementhub/internal/domain/models"
)

// Relational holds identities and HR contacts together because the real
// schema links them by foreign key and bulk assignment reads both inside
// one transaction. WithinReadWrite snapshots contacts and restores them when
// fn fails, so a failed batch leaves no partial writes.
type Relational struct {
	mu       sync.Mutex // guards identities and contacts
	txMu     sync.Mutex // serializes transactions
	users    map[string]models.Identity
	contacts map[string]models.HRContact
	// Fail, when set, is returned by AssignTo and Unassign after they have
	// written, to exercise rollback.
	Fail error
}

func NewRelational() *Relational {
	return &Relational{
		users:    map[string]models.Identity{},
		contacts: map[string]models.HRContact{},
	}
}

// PutIdentity stores id as-is.
func (s *Relational) PutIdentity(id models.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id.ID] = id
}

// PutContact stores c as-is.
func (s *Relational) PutContact(c models.HRContact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts[c.ID] = c
}

// Contact returns the stored contact.
func (s *Relational) Contact(id string) (models.HRContact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contacts[id]
	return c, ok
}

func (s *Relational) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := make(map[string]models.HRContact, len(s.contacts))
	for k, v := range s.contacts {
		snapshot[k] = v
	}
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.contacts = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Relational) GetByID(_ context.Context, id string) (models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.Identity{}, storeerr.ErrNotFound
	}
	return u, nil
}

func (s *Relational) GetForShare(ctx context.Context, id string) (models.Identity, error) {
	return s.GetByID(ctx, id)
}

func (s *Relational) GetMany(_ context.Context, ids []string) (map[string]models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]models.Identity, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (s *Relational) SetApproved(_ context.Context, id string, approved bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return false, storeerr.ErrNotFound
	}
	if u.Approved == approved {
		return false, nil
	}
	u.Approved = approved
	s.users[id] = u
	return true, nil
}

func (s *Relational) List(_ context.Context, filter models.ContactFilter) ([]models.HRContact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.HRContact{}
	for _, c := range s.contacts {
		switch {
		case filter == models.ContactsAssigned && !c.Assigned():
			continue
		case filter == models.ContactsUnassigned && c.Assigned():
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Relational) ListAssignedTo(_ context.Context, userID string) ([]models.HRContact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.HRContact{}
	for _, c := range s.contacts {
		if c.AssignedTo == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Relational) GetContactForShare(_ context.Context, id string) (models.HRContact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contacts[id]
	if !ok {
		return models.HRContact{}, storeerr.ErrNotFound
	}
	return c, nil
}

func (s *Relational) LockByIDs(_ context.Context, ids []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := []string{}
	for _, id := range ids {
		if _, ok := s.contacts[id]; ok {
			found = append(found, id)
		}
	}
	return found, nil
}

func (s *Relational) AssignTo(_ context.Context, ids []string, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	now := time.Now().UTC()
	for _, id := range ids {
		if c, ok := s.contacts[id]; ok {
			c.AssignedTo = userID
			c.UpdatedAt = now
			s.contacts[id] = c
			n++
		}
	}
	return n, s.Fail
}

func (s *Relational) Unassign(_ context.Context, ids []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, id := range ids {
		if c, ok := s.contacts[id]; ok && c.Assigned() {
			c.AssignedTo = ""
			c.UpdatedAt = time.Now().UTC()
			s.contacts[id] = c
			n++
		}
	}
	return n, s.Fail
}

func (s *Relational) CallerStats(_ context.Context) ([]models.CallerStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.CallerStat{}
	for _, u := range s.users {
		if !u.Role.CanHoldContacts() {
			continue
		}
		st := models.CallerStat{CallerID: u.ID, FullName: u.FullName}
		for _, c := range s.contacts {
			if c.AssignedTo == u.ID {
				st.TotalContactsAssigned++
			}
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CallerID < out[j].CallerID })
	return out, nil
}
