// Package service accepts contact form submissions and forwards them to the
// site owner.
package service

import (
	"context"
	"log/slog"

	"portfolio/internal/audit"
	"portfolio/internal/notify"
	"portfolio/internal/validator"
	dErrors "portfolio/pkg/domain-errors"
	"portfolio/pkg/platform/privacy"
	"portfolio/pkg/requestcontext"
)

// Sender delivers a validated contact message.
type Sender interface {
	SendContact(ctx context.Context, msg validator.ValidatedContactMessage) (notify.Receipt, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	sender  Sender
	auditor AuditPublisher
	logger  *slog.Logger
}

type Option func(*Service)

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = p
	}
}

func New(sender Sender, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		sender: sender,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates in and sends it. Validation failures carry a client
// message; a delivery failure is reported as CodeDeliveryFailed.
func (s *Service) Submit(ctx context.Context, in validator.ContactInput) (notify.Receipt, error) {
	requestID := requestcontext.RequestID(ctx)
	prefix := privacy.AnonymizeIP(requestcontext.ClientIP(ctx))

	msg, verrs := validator.ValidateContact(in)
	if len(verrs) > 0 {
		s.logger.WarnContext(ctx, "contact submission rejected",
			"request_id", requestID,
			"ip_prefix", prefix,
			"reason", verrs.Message(),
		)
		s.emit(ctx, audit.Event{
			Action:   audit.ActionContactRejected,
			IPPrefix: prefix,
			Subject:  "contact",
			Reason:   verrs.Message(),
		})
		return notify.Receipt{}, verrs.ToDomainError()
	}

	receipt, err := s.sender.SendContact(ctx, msg)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to send contact email",
			"request_id", requestID,
			"ip_prefix", prefix,
			"error", err,
		)
		s.emit(ctx, audit.Event{
			Action:   audit.ActionNotificationFailed,
			IPPrefix: prefix,
			Subject:  "contact",
			Reason:   err.Error(),
		})
		return notify.Receipt{}, dErrors.Wrap(err, dErrors.CodeDeliveryFailed, "Failed to send email")
	}

	s.emit(ctx, audit.Event{
		Action:   audit.ActionContactSubmitted,
		IPPrefix: prefix,
		Subject:  "contact",
	})
	return receipt, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "action", event.Action, "error", err)
	}
}
