package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/internal/consent/models"
	"portfolio/pkg/platform/sentinel"
)

func record(key string, granted time.Time, window time.Duration) *models.ConsentRecord {
	return &models.ConsentRecord{
		SubjectKey:  key,
		Name:        "Ada",
		Company:     "Analytical Engines",
		Email:       "ada@example.com",
		Device:      models.DeviceSummary{OS: "Windows", DeviceClass: "Desktop"},
		GrantedAt:   granted,
		TrustWindow: window,
	}
}

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("get missing returns not found", func(t *testing.T) {
		s := NewInMemoryStore()
		_, err := s.Get(ctx, models.KindSession, "nope")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("kinds are separate keyspaces", func(t *testing.T) {
		s := NewInMemoryStore()
		require.NoError(t, s.Put(ctx, models.KindSession, record("k", now, models.SessionTrustWindow)))
		_, err := s.Get(ctx, models.KindAddress, "k")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("put supersedes", func(t *testing.T) {
		s := NewInMemoryStore()
		first := record("k", now, models.SessionTrustWindow)
		second := record("k", now.Add(time.Hour), models.SessionTrustWindow)
		second.Name = "Grace"
		require.NoError(t, s.Put(ctx, models.KindSession, first))
		require.NoError(t, s.Put(ctx, models.KindSession, second))

		got, err := s.Get(ctx, models.KindSession, "k")
		require.NoError(t, err)
		assert.Equal(t, "Grace", got.Name)
		assert.Equal(t, now.Add(time.Hour), got.GrantedAt)
	})

	t.Run("returned records are copies", func(t *testing.T) {
		s := NewInMemoryStore()
		require.NoError(t, s.Put(ctx, models.KindSession, record("k", now, models.SessionTrustWindow)))
		got, _ := s.Get(ctx, models.KindSession, "k")
		got.Name = "mutated"
		again, _ := s.Get(ctx, models.KindSession, "k")
		assert.Equal(t, "Ada", again.Name)
	})

	t.Run("empty subject key is rejected", func(t *testing.T) {
		s := NewInMemoryStore()
		assert.Error(t, s.Put(ctx, models.KindSession, record("", now, models.SessionTrustWindow)))
	})

	t.Run("delete expired", func(t *testing.T) {
		s := NewInMemoryStore()
		require.NoError(t, s.Put(ctx, models.KindSession, record("fresh", now, models.SessionTrustWindow)))
		require.NoError(t, s.Put(ctx, models.KindAddress, record("old", now.Add(-models.AddressTrustWindow), models.AddressTrustWindow)))

		n, err := s.DeleteExpired(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		_, err = s.Get(ctx, models.KindAddress, "old")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		_, err = s.Get(ctx, models.KindSession, "fresh")
		assert.NoError(t, err)
	})
}
