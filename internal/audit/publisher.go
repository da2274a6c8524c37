package audit

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"portfolio/pkg/requestcontext"
)

// ErrQueueFull is returned by an asynchronous publisher that had to drop an event.
var ErrQueueFull = errors.New("audit queue full")

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store  Store
	logger *slog.Logger
	queue  chan Event
}

type Option func(*Publisher)

// WithQueue makes Emit non-blocking: events are buffered and written by Run.
func WithQueue(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.queue = make(chan Event, size)
		}
	}
}

func NewPublisher(store Store, logger *slog.Logger, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit records base, filling in the id, timestamp and request id when unset.
func (p *Publisher) Emit(ctx context.Context, base Event) error {
	if p == nil {
		return nil
	}
	if base.ID == "" {
		base.ID = uuid.NewString()
	}
	if base.Timestamp.IsZero() {
		base.Timestamp = requestcontext.Now(ctx)
	}
	if base.RequestID == "" {
		base.RequestID = requestcontext.RequestID(ctx)
	}

	if p.queue == nil {
		return p.store.Append(ctx, base)
	}
	select {
	case p.queue <- base:
		return nil
	default:
		p.logger.WarnContext(ctx, "audit event dropped", "action", base.Action, "request_id", base.RequestID)
		return ErrQueueFull
	}
}

// Run drains the queue into the store until ctx is cancelled. It returns
// immediately for a synchronous publisher.
func (p *Publisher) Run(ctx context.Context) error {
	if p.queue == nil {
		return nil
	}
	return NewWorker(p.store, p.queue, p.logger).Run(ctx)
}
