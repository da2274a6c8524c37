package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"portfolio/internal/consent/models"
	"portfolio/pkg/platform/circuit"
	"portfolio/pkg/platform/sentinel"
)

type failingBackend struct {
	*InMemoryStore
	err   error
	calls int
}

func (f *failingBackend) Get(ctx context.Context, kind models.Kind, key string) (*models.ConsentRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.InMemoryStore.Get(ctx, kind, key)
}

func TestBreakerStore(t *testing.T) {
	ctx := context.Background()

	t.Run("not found does not trip", func(t *testing.T) {
		backend := &failingBackend{InMemoryStore: NewInMemoryStore()}
		s := NewBreakerStore(backend, circuit.WithFailureThreshold(2))
		for i := 0; i < 5; i++ {
			_, err := s.Get(ctx, models.KindSession, "missing")
			assert.ErrorIs(t, err, sentinel.ErrNotFound)
		}
		assert.Equal(t, circuit.StateClosed, s.State())
		assert.Equal(t, 5, backend.calls)
	})

	t.Run("backend failures open the breaker", func(t *testing.T) {
		backend := &failingBackend{InMemoryStore: NewInMemoryStore(), err: errors.New("connection refused")}
		s := NewBreakerStore(backend, circuit.WithFailureThreshold(2), circuit.WithTimeout(time.Minute))

		_, _ = s.Get(ctx, models.KindSession, "k")
		_, _ = s.Get(ctx, models.KindSession, "k")
		assert.Equal(t, circuit.StateOpen, s.State())

		_, err := s.Get(ctx, models.KindSession, "k")
		assert.ErrorIs(t, err, sentinel.ErrUnavailable)
		assert.Equal(t, 2, backend.calls, "open breaker must not call the backend")
	})

	t.Run("writes pass through", func(t *testing.T) {
		backend := &failingBackend{InMemoryStore: NewInMemoryStore()}
		s := NewBreakerStore(backend)
		rec := record("k", time.Now(), models.SessionTrustWindow)
		assert.NoError(t, s.Put(ctx, models.KindSession, rec))
		got, err := s.Get(ctx, models.KindSession, "k")
		assert.NoError(t, err)
		assert.Equal(t, "Ada", got.Name)
	})
}
