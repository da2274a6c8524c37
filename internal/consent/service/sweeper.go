package service

import (
	"context"
	"log/slog"
	"time"

	"portfolio/internal/platform/metrics"
)

// ExpiredDeleter is the part of the store the sweeper needs.
type ExpiredDeleter interface {
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// Sweeper periodically removes expired consent records. It is best-effort:
// lookups evict lazily, so a missed sweep only delays reclaiming space.
type Sweeper struct {
	store    ExpiredDeleter
	interval time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
	clock    func() time.Time
}

type SweeperOption func(*Sweeper)

func WithSweeperMetrics(m *metrics.Metrics) SweeperOption {
	return func(s *Sweeper) {
		s.metrics = m
	}
}

// WithSweeperClock overrides time.Now.
func WithSweeperClock(clock func() time.Time) SweeperOption {
	return func(s *Sweeper) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewSweeper(store ExpiredDeleter, interval time.Duration, logger *slog.Logger, opts ...SweeperOption) *Sweeper {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	s := &Sweeper{
		store:    store,
		interval: interval,
		logger:   logger,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run sweeps every interval until ctx is cancelled. Failures are logged and
// the next tick tries again.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.InfoContext(ctx, "consent sweeper started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "consent sweeper stopped")
			return nil
		case <-ticker.C:
			_, _ = s.SweepOnce(ctx)
		}
	}
}

// SweepOnce deletes every record expired at the current time.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	n, err := s.store.DeleteExpired(ctx, s.clock())
	if err != nil {
		s.metrics.IncrementConsentStoreError("delete_expired", "all")
		s.logger.WarnContext(ctx, "consent sweep failed", "error", err)
		return n, err
	}
	s.metrics.AddConsentSwept(n)
	if n > 0 {
		s.logger.InfoContext(ctx, "expired consent records removed", "count", n)
	}
	return n, nil
}
