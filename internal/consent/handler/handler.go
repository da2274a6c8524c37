package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"portfolio/internal/audit"
	"portfolio/internal/consent/device"
	consentModel "portfolio/internal/consent/models"
	"portfolio/internal/consent/service"
	"portfolio/internal/notify"
	"portfolio/pkg/platform/httputil"
	"portfolio/pkg/platform/privacy"
	"portfolio/pkg/requestcontext"
)

const registeredMessage = "Visitor consent recorded successfully"

// Service defines the interface for consent operations.
type Service interface {
	Resolve(ctx context.Context, q service.Query) consentModel.Decision
	Grant(ctx context.Context, reg service.Registration) (*consentModel.ConsentRecord, error)
}

// Notifier tells the site owner about a new visitor.
type Notifier interface {
	SendVisitor(ctx context.Context, notice notify.VisitorNotice) (notify.Receipt, error)
}

// AuditPublisher records notification failures.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// RateLimiter produces the limiting middleware for one route.
type RateLimiter interface {
	RateLimit(route string) func(http.Handler) http.Handler
}

// Handler handles the visitor consent endpoints.
type Handler struct {
	logger        *slog.Logger
	consent       Service
	notifier      Notifier
	auditor       AuditPublisher
	limiter       RateLimiter
	secureCookies bool
}

type Option func(*Handler)

// WithSecureCookies marks the session cookie Secure (production).
func WithSecureCookies(secure bool) Option {
	return func(h *Handler) {
		h.secureCookies = secure
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(h *Handler) {
		h.auditor = p
	}
}

// WithRateLimiter throttles registrations. Consent checks run on every page
// load and are never throttled.
func WithRateLimiter(l RateLimiter) Option {
	return func(h *Handler) {
		h.limiter = l
	}
}

// New creates a new consent Handler.
func New(consent Service, notifier Notifier, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		logger:   logger,
		consent:  consent,
		notifier: notifier,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the consent routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/check-consent", h.HandleCheckConsent)
	r.With(h.rateLimit("/visitor-consent")).Post("/visitor-consent", h.HandleRegisterVisitor)
}

func (h *Handler) rateLimit(route string) func(http.Handler) http.Handler {
	if h.limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return h.limiter.RateLimit(route)
}

// HandleCheckConsent reports whether the visitor already consented. A visitor
// without a session cookie gets one and never has consent yet.
func (h *Handler) HandleCheckConsent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[consentModel.CheckConsentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	sessionID, minted := h.ensureSession(w, r)
	if minted {
		httputil.WriteJSON(w, http.StatusOK, &consentModel.CheckConsentResponse{HasConsent: false})
		return
	}

	ua := userAgent(ctx, req.UserAgent)
	if device.IsBot(ua) {
		h.logger.DebugContext(ctx, "consent check from crawler", "request_id", requestID)
	}

	decision := h.consent.Resolve(ctx, service.Query{
		SessionID: sessionID,
		Address:   requestcontext.ClientIP(ctx),
		UserAgent: ua,
		Local:     req.LocalConsent,
	})

	httputil.WriteJSON(w, http.StatusOK, consentModel.ToCheckConsentResponse(decision))
}

// HandleRegisterVisitor records a visitor registration. Persistence and the
// owner notification are best-effort; the visitor is never blocked by them.
func (h *Handler) HandleRegisterVisitor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	address := requestcontext.ClientIP(ctx)

	req, ok := httputil.DecodeAndPrepare[consentModel.RegisterVisitorRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	sessionID, _ := h.ensureSession(w, r)
	ua := userAgent(ctx, req.UserAgent)
	visitor := req.Validated()

	rec, err := h.consent.Grant(ctx, service.Registration{
		SessionID: sessionID,
		Address:   address,
		UserAgent: ua,
		Visitor:   visitor,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to record visitor consent",
			"request_id", requestID,
			"error", err,
		)
	}

	h.logger.InfoContext(ctx, "visitor consent recorded",
		"request_id", requestID,
		"ip_prefix", privacy.AnonymizeIP(address),
		"bot", device.IsBot(ua),
	)

	notice := notify.VisitorNotice{
		Name:          visitor.Name,
		Company:       visitor.Company,
		Email:         visitor.Email,
		AddressPrefix: privacy.AnonymizeIP(address),
		UserAgent:     ua,
		Device:        device.Summarize(ua),
		VisitedAt:     requestcontext.Now(ctx),
	}
	if rec != nil {
		notice.Device = rec.Device
		notice.VisitedAt = rec.GrantedAt
	}
	if _, err := h.notifier.SendVisitor(ctx, notice); err != nil {
		h.logger.ErrorContext(ctx, "failed to send visitor notification",
			"request_id", requestID,
			"error", err,
		)
		h.emit(ctx, audit.Event{
			Action:   audit.ActionNotificationFailed,
			IPPrefix: privacy.AnonymizeIP(address),
			Subject:  "visitor",
			Reason:   err.Error(),
		})
	}

	httputil.WriteJSON(w, http.StatusOK, &consentModel.RegisterVisitorResponse{
		Success: true,
		Message: registeredMessage,
	})
}

func (h *Handler) emit(ctx context.Context, event audit.Event) {
	if h.auditor == nil {
		return
	}
	if err := h.auditor.Emit(ctx, event); err != nil {
		h.logger.WarnContext(ctx, "failed to emit audit event", "action", event.Action, "error", err)
	}
}

// userAgent prefers the agent the page reported and falls back to the header.
func userAgent(ctx context.Context, reported string) string {
	if reported != "" {
		return reported
	}
	return requestcontext.UserAgent(ctx)
}
