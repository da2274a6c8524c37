//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"portfolio/internal/consent/models"
	"portfolio/internal/platform/postgres"
	"portfolio/pkg/platform/sentinel"
	"portfolio/pkg/testutil/containers"
)

// BackendSuite runs the same contract against every persistent backend.
type BackendSuite struct {
	suite.Suite
	newStore func() Backend
	reset    func()
}

func (s *BackendSuite) SetupTest() {
	if s.reset != nil {
		s.reset()
	}
}

func (s *BackendSuite) TestRoundTripAndSupersede() {
	ctx := context.Background()
	st := s.newStore()
	now := time.Now().UTC().Truncate(time.Second)

	first := record("sess-1", now.Add(-time.Hour), models.SessionTrustWindow)
	s.Require().NoError(st.Put(ctx, models.KindSession, first))

	second := record("sess-1", now, models.SessionTrustWindow)
	second.Name = "Grace"
	s.Require().NoError(st.Put(ctx, models.KindSession, second))

	got, err := st.Get(ctx, models.KindSession, "sess-1")
	s.Require().NoError(err)
	s.Equal("Grace", got.Name)
	s.True(got.GrantedAt.Equal(now))
	s.Equal(models.SessionTrustWindow, got.TrustWindow)
}

func (s *BackendSuite) TestDelete() {
	ctx := context.Background()
	st := s.newStore()
	s.Require().NoError(st.Put(ctx, models.KindAddress, record("addr", time.Now(), models.AddressTrustWindow)))
	s.Require().NoError(st.Delete(ctx, models.KindAddress, "addr"))

	_, err := st.Get(ctx, models.KindAddress, "addr")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *BackendSuite) TestHealth() {
	s.NoError(s.newStore().Health(context.Background()))
}

func TestRedisStoreIntegration(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	suite.Run(t, &BackendSuite{
		newStore: func() Backend { return NewRedisStore(rc.Client) },
		reset:    func() { _ = rc.FlushAll(context.Background()) },
	})
}

func TestPostgresStoreIntegration(t *testing.T) {
	pc := containers.NewPostgresContainer(t)
	if err := postgres.Migrate(pc.DB, Migrations, MigrationsDir); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	suite.Run(t, &BackendSuite{
		newStore: func() Backend { return NewPostgresStore(pc.DB) },
		reset: func() {
			_, _ = pc.DB.Exec(`TRUNCATE visitor_consents`)
		},
	})
}

func TestPostgresStoreDeleteExpiredIntegration(t *testing.T) {
	ctx := context.Background()
	pc := containers.NewPostgresContainer(t)
	if err := postgres.Migrate(pc.DB, Migrations, MigrationsDir); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	st := NewPostgresStore(pc.DB, WithDeleteBatch(1))
	now := time.Now().UTC()

	for _, key := range []string{"a", "b"} {
		if err := st.Put(ctx, models.KindAddress, record(key, now.Add(-models.AddressTrustWindow), models.AddressTrustWindow)); err != nil {
			t.Fatal(err)
		}
	}
	if err := st.Put(ctx, models.KindSession, record("fresh", now, models.SessionTrustWindow)); err != nil {
		t.Fatal(err)
	}

	n, err := st.DeleteExpired(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("deleted %d rows, want 2", n)
	}
	if _, err := st.Get(ctx, models.KindSession, "fresh"); err != nil {
		t.Fatalf("fresh record removed: %v", err)
	}
}
