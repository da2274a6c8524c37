package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	contactModel "portfolio/internal/contact/models"
	"portfolio/internal/notify"
	"portfolio/internal/validator"
	"portfolio/pkg/platform/httputil"
	"portfolio/pkg/requestcontext"
)

// Service defines the interface for contact form submission.
type Service interface {
	Submit(ctx context.Context, in validator.ContactInput) (notify.Receipt, error)
}

// RateLimiter produces the limiting middleware for one route.
type RateLimiter interface {
	RateLimit(route string) func(http.Handler) http.Handler
}

// Handler handles the contact form endpoint.
type Handler struct {
	logger  *slog.Logger
	contact Service
	limiter RateLimiter
}

type Option func(*Handler)

func WithRateLimiter(l RateLimiter) Option {
	return func(h *Handler) {
		h.limiter = l
	}
}

// New creates a new contact Handler.
func New(contact Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		logger:  logger,
		contact: contact,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the contact routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	if h.limiter != nil {
		r = r.With(h.limiter.RateLimit("/send-email"))
	}
	r.Post("/send-email", h.HandleSendEmail)
}

// HandleSendEmail forwards a contact form submission to the site owner.
func (h *Handler) HandleSendEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, err := httputil.DecodeJSON[contactModel.SendEmailRequest](r)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid request body",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	receipt, err := h.contact.Submit(ctx, req.ToInput())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &contactModel.SendEmailResponse{
		Success:    true,
		Message:    contactModel.SentMessage,
		PreviewURL: receipt.PreviewURL,
	})
}
