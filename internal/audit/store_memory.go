package audit

import (
	"context"
	"sync"
)

// InMemoryStore keeps events in process memory. Used in tests and when no
// Kafka brokers are configured.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
	limit  int
}

// NewInMemoryStore keeps at most limit events, oldest dropped first. A limit
// of zero keeps everything.
func NewInMemoryStore(limit int) *InMemoryStore {
	return &InMemoryStore{limit: limit}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	if s.limit > 0 && len(s.events) > s.limit {
		s.events = append([]Event(nil), s.events[len(s.events)-s.limit:]...)
	}
	return nil
}

// ListAll returns a copy of every stored event, oldest first.
func (s *InMemoryStore) ListAll(_ context.Context) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events...), nil
}

// ListByAction returns the stored events with the given action.
func (s *InMemoryStore) ListByAction(_ context.Context, action string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, e := range s.events {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out, nil
}
