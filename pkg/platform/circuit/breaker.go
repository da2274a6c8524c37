// Package circuit wraps github.com/sony/gobreaker with the options used
// across the service's outbound dependencies.
package circuit

import (
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

// State mirrors the breaker state for callers that do not import gobreaker.
type State string

const (
	StateClosed   State = "closed"
	StateHalfOpen State = "half-open"
	StateOpen     State = "open"
)

// ErrOpen is returned without calling the protected function while the
// breaker is open or probing.
var ErrOpen = errors.New("circuit breaker open")

type config struct {
	failureThreshold uint32
	timeout          time.Duration
	interval         time.Duration
	ignore           func(error) bool
	onStateChange    func(name string, from, to State)
}

// Option configures a Breaker.
type Option func(*config)

// WithFailureThreshold sets how many consecutive failures open the breaker.
func WithFailureThreshold(n uint32) Option {
	return func(c *config) {
		if n > 0 {
			c.failureThreshold = n
		}
	}
}

// WithTimeout sets how long the breaker stays open before probing.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithIgnoredErrors marks errors that are answers, not failures.
func WithIgnoredErrors(ignore func(error) bool) Option {
	return func(c *config) {
		c.ignore = ignore
	}
}

// WithStateChange registers a callback for state transitions.
func WithStateChange(fn func(name string, from, to State)) Option {
	return func(c *config) {
		c.onStateChange = fn
	}
}

// Breaker guards calls to one dependency.
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// New creates a breaker named name. Defaults: 5 consecutive failures open it,
// 30s open timeout, one successful trial call closes it.
func New(name string, opts ...Option) *Breaker {
	cfg := config{
		failureThreshold: 5,
		timeout:          30 * time.Second,
		interval:         60 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    cfg.interval,
		Timeout:     cfg.timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.failureThreshold
		},
	}
	if cfg.ignore != nil {
		ignore := cfg.ignore
		settings.IsSuccessful = func(err error) bool {
			return err == nil || ignore(err)
		}
	}
	if cfg.onStateChange != nil {
		onChange := cfg.onStateChange
		settings.OnStateChange = func(name string, from, to gobreaker.State) {
			onChange(name, toState(from), toState(to))
		}
	}
	return &Breaker{cb: gobreaker.NewCircuitBreaker(settings)}
}

// Execute runs fn unless the breaker is open. Rejections wrap ErrOpen.
func (b *Breaker) Execute(fn func() error) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return errors.Join(ErrOpen, err)
	}
	return err
}

func (b *Breaker) Name() string { return b.cb.Name() }

func (b *Breaker) State() State { return toState(b.cb.State()) }

func (b *Breaker) IsOpen() bool { return b.cb.State() == gobreaker.StateOpen }

func toState(s gobreaker.State) State {
	switch s {
	case gobreaker.StateOpen:
		return StateOpen
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	default:
		return StateClosed
	}
}
