package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"portfolio/internal/consent/models"
	"portfolio/pkg/platform/circuit"
	"portfolio/pkg/platform/sentinel"
)

// Backend is the contract every consent store backend satisfies.
type Backend interface {
	Get(ctx context.Context, kind models.Kind, key string) (*models.ConsentRecord, error)
	Put(ctx context.Context, kind models.Kind, record *models.ConsentRecord) error
	Delete(ctx context.Context, kind models.Kind, key string) error
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
	Health(ctx context.Context) error
}

// BreakerStore stops calling a failing backend until it recovers. While open
// every call returns sentinel.ErrUnavailable immediately.
type BreakerStore struct {
	next    Backend
	breaker *circuit.Breaker
}

// NewBreakerStore wraps next. A missing record is an answer and never counts
// toward opening the breaker.
func NewBreakerStore(next Backend, opts ...circuit.Option) *BreakerStore {
	opts = append([]circuit.Option{circuit.WithIgnoredErrors(func(err error) bool {
		return errors.Is(err, sentinel.ErrNotFound)
	})}, opts...)
	return &BreakerStore{
		next:    next,
		breaker: circuit.New("consent-store", opts...),
	}
}

func (s *BreakerStore) Get(ctx context.Context, kind models.Kind, key string) (*models.ConsentRecord, error) {
	var rec *models.ConsentRecord
	err := s.breaker.Execute(func() error {
		var err error
		rec, err = s.next.Get(ctx, kind, key)
		return err
	})
	return rec, s.translate(err)
}

func (s *BreakerStore) Put(ctx context.Context, kind models.Kind, record *models.ConsentRecord) error {
	return s.translate(s.breaker.Execute(func() error {
		return s.next.Put(ctx, kind, record)
	}))
}

func (s *BreakerStore) Delete(ctx context.Context, kind models.Kind, key string) error {
	return s.translate(s.breaker.Execute(func() error {
		return s.next.Delete(ctx, kind, key)
	}))
}

func (s *BreakerStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	var n int
	err := s.breaker.Execute(func() error {
		var err error
		n, err = s.next.DeleteExpired(ctx, now)
		return err
	})
	return n, s.translate(err)
}

// Health bypasses the breaker so health checks see the backend's real state.
func (s *BreakerStore) Health(ctx context.Context) error {
	return s.next.Health(ctx)
}

// State reports the breaker state for health output.
func (s *BreakerStore) State() circuit.State {
	return s.breaker.State()
}

func (s *BreakerStore) translate(err error) error {
	if errors.Is(err, circuit.ErrOpen) {
		return fmt.Errorf("%w: %w", sentinel.ErrUnavailable, err)
	}
	return err
}
