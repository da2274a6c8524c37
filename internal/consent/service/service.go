package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"portfolio/internal/audit"
	"portfolio/internal/consent/device"
	"portfolio/internal/consent/models"
	"portfolio/internal/platform/metrics"
	"portfolio/internal/validator"
	"portfolio/pkg/platform/privacy"
	"portfolio/pkg/platform/sentinel"
	"portfolio/pkg/requestcontext"
)

const tracerName = "portfolio/consent"

// Store is the keyed consent store. Get returns sentinel.ErrNotFound for a
// missing key. Expired records may still be returned; the service evicts them.
type Store interface {
	Get(ctx context.Context, kind models.Kind, key string) (*models.ConsentRecord, error)
	Put(ctx context.Context, kind models.Kind, record *models.ConsentRecord) error
	Delete(ctx context.Context, kind models.Kind, key string) error
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// AddressKeyer turns a network address into the store key for the address tier.
type AddressKeyer interface {
	Key(ip string) string
}

// AuditPublisher records consent events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service decides whether a visitor has already given consent and records new
// grants. Lookups never fail closed: any store problem reads as "no record".
type Service struct {
	store   Store
	keys    AddressKeyer
	logger  *slog.Logger
	metrics *metrics.Metrics
	auditor AuditPublisher
	tracer  trace.Tracer
}

type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = p
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

func New(store Store, keys AddressKeyer, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		keys:   keys,
		logger: logger,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Query is one visitor touch as seen by the resolver.
type Query struct {
	SessionID string
	Address   string
	UserAgent string
	Local     *models.LocalConsent
}

// Registration is a validated visitor registration together with the request
// identity it was submitted under.
type Registration struct {
	SessionID string
	Address   string
	UserAgent string
	Visitor   validator.ValidatedRegistration
}

// Resolve walks the trust tiers from strongest to weakest: session, address,
// client cache. The first valid tier wins. A query without a session id never
// has consent.
func (s *Service) Resolve(ctx context.Context, q Query) models.Decision {
	ctx, span := s.tracer.Start(ctx, "consent.Resolve")
	defer span.End()

	decision := s.resolve(ctx, q, requestcontext.Now(ctx))

	span.SetAttributes(
		attribute.Bool("consent.granted", decision.HasConsent),
		attribute.String("consent.source", string(decision.Source)),
	)
	s.metrics.IncrementConsentResolution(string(decision.Source))

	outcome := "denied"
	if decision.HasConsent {
		outcome = "granted"
	}
	s.emit(ctx, audit.Event{
		Action:   audit.ActionConsentResolved,
		IPPrefix: privacy.AnonymizeIP(q.Address),
		Decision: outcome,
		Reason:   string(decision.Source),
	})
	return decision
}

func (s *Service) resolve(ctx context.Context, q Query, now time.Time) models.Decision {
	if q.SessionID == "" {
		return models.NoConsent()
	}

	if rec := s.lookup(ctx, models.KindSession, q.SessionID, now); rec != nil {
		return models.Decision{HasConsent: true, Source: models.TrustSourceSession, Record: rec}
	}

	if key := s.addressKey(q.Address); key != "" {
		if rec := s.lookup(ctx, models.KindAddress, key, now); rec != nil {
			if device.Similar(rec.Device, device.Summarize(q.UserAgent)) {
				return models.Decision{HasConsent: true, Source: models.TrustSourceAddress, Record: rec}
			}
		}
	}

	if q.Local.IsValidAt(now) {
		local := *q.Local
		return models.Decision{HasConsent: true, Source: models.TrustSourceLocal, Local: &local}
	}

	return models.NoConsent()
}

// lookup returns a record that is valid at now, or nil. Expired records are
// evicted; store failures are logged and read as a miss.
func (s *Service) lookup(ctx context.Context, kind models.Kind, key string, now time.Time) *models.ConsentRecord {
	rec, err := s.store.Get(ctx, kind, key)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.IncrementConsentStoreError("get", kind.String())
			s.logger.WarnContext(ctx, "consent lookup failed, treating as no consent",
				"request_id", requestcontext.RequestID(ctx),
				"kind", kind,
				"error", err,
			)
			trace.SpanFromContext(ctx).RecordError(err)
		}
		return nil
	}

	if !rec.IsValidAt(now) || !now.Before(rec.GrantedAt.Add(kind.TrustWindow())) {
		if err := s.store.Delete(ctx, kind, key); err != nil {
			s.metrics.IncrementConsentStoreError("delete", kind.String())
			s.logger.WarnContext(ctx, "failed to evict expired consent",
				"request_id", requestcontext.RequestID(ctx),
				"kind", kind,
				"error", err,
			)
		}
		return nil
	}
	return rec
}

// Grant records consent under the session id and the caller's address. Each
// write replaces any earlier record for the same key. Write failures are
// returned joined; a record that was written stays written.
func (s *Service) Grant(ctx context.Context, reg Registration) (*models.ConsentRecord, error) {
	if reg.SessionID == "" {
		return nil, errors.New("grant consent: missing session id")
	}
	now := requestcontext.Now(ctx)
	summary := device.Summarize(reg.UserAgent)

	newRecord := func(key string, kind models.Kind) *models.ConsentRecord {
		return &models.ConsentRecord{
			SubjectKey:  key,
			Name:        reg.Visitor.Name,
			Company:     reg.Visitor.Company,
			Email:       reg.Visitor.Email,
			UserAgent:   reg.UserAgent,
			Device:      summary,
			GrantedAt:   now,
			TrustWindow: kind.TrustWindow(),
		}
	}

	sessionRecord := newRecord(reg.SessionID, models.KindSession)
	var errs []error
	if err := s.store.Put(ctx, models.KindSession, sessionRecord); err != nil {
		s.metrics.IncrementConsentStoreError("put", models.KindSession.String())
		errs = append(errs, fmt.Errorf("store session consent: %w", err))
	}
	if key := s.addressKey(reg.Address); key != "" {
		if err := s.store.Put(ctx, models.KindAddress, newRecord(key, models.KindAddress)); err != nil {
			s.metrics.IncrementConsentStoreError("put", models.KindAddress.String())
			errs = append(errs, fmt.Errorf("store address consent: %w", err))
		}
	}

	s.metrics.IncrementConsentGrant()
	s.emit(ctx, audit.Event{
		Action:   audit.ActionConsentGranted,
		IPPrefix: privacy.AnonymizeIP(reg.Address),
		Subject:  reg.Visitor.Company,
		Decision: "granted",
	})
	return sessionRecord, errors.Join(errs...)
}

func (s *Service) addressKey(address string) string {
	if address == "" || address == "unknown" || s.keys == nil {
		return ""
	}
	return s.keys.Key(address)
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "action", event.Action, "error", err)
	}
}
