// Package store holds the consent store backends. Every backend keeps one
// record per (kind, subject key); a Put replaces whatever was there.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"portfolio/internal/consent/models"
	"portfolio/pkg/platform/sentinel"
)

// InMemoryStore keeps consent records in process memory. State is lost on
// restart and is not shared between replicas.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[models.Kind]map[string]models.ConsentRecord
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: map[models.Kind]map[string]models.ConsentRecord{
			models.KindSession: {},
			models.KindAddress: {},
		},
	}
}

func (s *InMemoryStore) Get(_ context.Context, kind models.Kind, key string) (*models.ConsentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[kind][key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &rec, nil
}

func (s *InMemoryStore) Put(_ context.Context, kind models.Kind, record *models.ConsentRecord) error {
	if record == nil || record.SubjectKey == "" {
		return fmt.Errorf("put %s consent: empty subject key", kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.records[kind]
	if !ok {
		return fmt.Errorf("put consent: unknown kind %q", kind)
	}
	bucket[record.SubjectKey] = *record
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, kind models.Kind, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records[kind], key)
	return nil
}

// DeleteExpired removes every record whose trust window has elapsed at now.
func (s *InMemoryStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for _, bucket := range s.records {
		for key, rec := range bucket {
			if !rec.IsValidAt(now) {
				delete(bucket, key)
				removed++
			}
		}
	}
	return removed, nil
}

// Health always succeeds for the in-memory store.
func (s *InMemoryStore) Health(context.Context) error {
	return nil
}
