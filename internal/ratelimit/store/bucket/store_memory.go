package bucket

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"portfolio/internal/ratelimit/models"
)

// InMemoryBucketStore keeps one token bucket per key (client address).
// Not distributed: each replica limits independently.
type InMemoryBucketStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rps     rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Option configures an InMemoryBucketStore.
type Option func(*InMemoryBucketStore)

// WithClock overrides the time source; tests use it to refill buckets.
func WithClock(now func() time.Time) Option {
	return func(s *InMemoryBucketStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewInMemoryBucketStore creates a store refilling rps tokens per second up to burst.
func NewInMemoryBucketStore(rps float64, burst int, idleTTL time.Duration, opts ...Option) *InMemoryBucketStore {
	s := &InMemoryBucketStore{
		buckets: make(map[string]*bucket),
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allow takes one token for key.
func (s *InMemoryBucketStore) Allow(_ context.Context, key string) (*models.RateLimitResult, error) {
	now := s.now()

	s.mu.Lock()
	b := s.buckets[key]
	if b == nil {
		b = &bucket{limiter: rate.NewLimiter(s.rps, s.burst)}
		s.buckets[key] = b
	}
	b.lastSeen = now
	allowed := b.limiter.AllowN(now, 1)
	tokens := b.limiter.TokensAt(now)
	s.mu.Unlock()

	result := &models.RateLimitResult{
		Allowed:   allowed,
		Limit:     s.burst,
		Remaining: max(0, int(math.Floor(tokens))),
		ResetAt:   now.Add(s.untilFull(tokens)),
	}
	if !allowed {
		result.RetryAfter = max(1, int(math.Ceil(s.untilTokens(tokens, 1).Seconds())))
	}
	return result, nil
}

// Sweep drops buckets idle for longer than the configured TTL and returns how many were removed.
func (s *InMemoryBucketStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, b := range s.buckets {
		if now.Sub(b.lastSeen) > s.idleTTL {
			delete(s.buckets, key)
			removed++
		}
	}
	return removed
}

// StartCleanup runs Sweep on interval until ctx is cancelled.
func (s *InMemoryBucketStore) StartCleanup(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep(s.now())
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *InMemoryBucketStore) untilFull(tokens float64) time.Duration {
	return s.untilTokens(tokens, float64(s.burst))
}

func (s *InMemoryBucketStore) untilTokens(tokens, want float64) time.Duration {
	if tokens >= want || s.rps <= 0 {
		return 0
	}
	return time.Duration((want - tokens) / float64(s.rps) * float64(time.Second))
}
