package memstore

import (
	"context"
	"sync"

	"github.com/dalemusser/placementhub/internal/app/store/audit"
)

// Audit collects audit events in memory.
type Audit struct {
	mu     sync.Mutex
	events []audit.Event
}

func (s *Audit) Log(_ context.Context, e audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

// Types returns the recorded event types in order.
func (s *Audit) Types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.EventType)
	}
	return out
}

// Last returns the most recent event, or the zero Event.
func (s *Audit) Last() audit.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == 0 {
		return audit.Event{}
	}
	return s.events[len(s.events)-1]
}
