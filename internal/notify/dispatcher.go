// Package notify renders visitor and contact notifications and hands them to
// an outbound mail transport.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"portfolio/internal/consent/models"
	"portfolio/internal/platform/metrics"
	"portfolio/internal/validator"
	"portfolio/pkg/requestcontext"
)

// Message is a fully rendered email.
type Message struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

// Receipt identifies a submitted message. PreviewURL is only set by the
// sandbox transport.
type Receipt struct {
	MessageID  string
	PreviewURL string
}

// Transport submits one rendered message.
type Transport interface {
	Send(ctx context.Context, msg *Message) (Receipt, error)
}

// VisitorNotice is what the site owner learns about a registered visitor.
type VisitorNotice struct {
	Name          string
	Company       string
	Email         string
	AddressPrefix string
	UserAgent     string
	Device        models.DeviceSummary
	VisitedAt     time.Time
}

// Addresses are the fixed envelope addresses of outbound mail.
type Addresses struct {
	From      string
	ContactTo string
	VisitorTo string
}

// Dispatcher renders and sends notifications. Every call is an independent
// send; nothing is deduplicated.
type Dispatcher struct {
	transport Transport
	addrs     Addresses
	logger    *slog.Logger
	metrics   *metrics.Metrics
	sandbox   bool
}

type Option func(*Dispatcher)

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

func NewDispatcher(transport Transport, addrs Addresses, logger *slog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{transport: transport, addrs: addrs, logger: logger}
	_, d.sandbox = transport.(*SandboxTransport)
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SendContact mails a validated contact message to the site owner with the
// visitor as reply-to.
func (d *Dispatcher) SendContact(ctx context.Context, msg validator.ValidatedContactMessage) (Receipt, error) {
	text, html, err := render(contactText, contactHTML, msg)
	if err != nil {
		return Receipt{}, fmt.Errorf("render contact message: %w", err)
	}
	return d.send(ctx, "contact", &Message{
		From:    d.addrs.From,
		To:      d.addrs.ContactTo,
		ReplyTo: msg.Email,
		Subject: "Portfolio Contact: " + msg.Subject,
		Text:    text,
		HTML:    html,
	})
}

// SendVisitor mails a new-visitor notice to the site owner.
func (d *Dispatcher) SendVisitor(ctx context.Context, notice VisitorNotice) (Receipt, error) {
	if notice.VisitedAt.IsZero() {
		notice.VisitedAt = requestcontext.Now(ctx)
	}
	text, html, err := render(visitorText, visitorHTML, notice)
	if err != nil {
		return Receipt{}, fmt.Errorf("render visitor notice: %w", err)
	}
	return d.send(ctx, "visitor", &Message{
		From:    d.addrs.From,
		To:      d.addrs.VisitorTo,
		Subject: fmt.Sprintf("New Website Visitor: %s from %s", notice.Name, notice.Company),
		Text:    text,
		HTML:    html,
	})
}

func (d *Dispatcher) send(ctx context.Context, kind string, msg *Message) (Receipt, error) {
	receipt, err := d.transport.Send(ctx, msg)
	if err != nil {
		d.metrics.IncrementNotification(kind, "failed")
		return Receipt{}, fmt.Errorf("send %s notification: %w", kind, err)
	}

	outcome := "sent"
	if d.sandbox {
		outcome = "sandbox"
	}
	d.metrics.IncrementNotification(kind, outcome)
	d.logger.InfoContext(ctx, "notification sent",
		"request_id", requestcontext.RequestID(ctx),
		"kind", kind,
		"message_id", receipt.MessageID,
		"sandbox", d.sandbox,
	)
	return receipt, nil
}
