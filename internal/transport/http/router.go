// Package httptransport assembles the public HTTP surface: the global
// middleware chain, the API routes and the operational endpoints.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"portfolio/internal/platform/metrics"
	"portfolio/internal/platform/middleware"
	dErrors "portfolio/pkg/domain-errors"
	"portfolio/pkg/platform/httputil"
	"portfolio/pkg/platform/middleware/metadata"
	"portfolio/pkg/platform/middleware/requesttime"
)

// Body limits per route group.
const (
	ContactBodyLimit = 10 << 10
	ConsentBodyLimit = 5 << 10
)

// RouteRegistrar is implemented by every feature handler.
type RouteRegistrar interface {
	Register(r chi.Router)
}

// HealthChecker reports whether the consent store is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Deps collects what the router mounts. Preview, Health and MetricsHandler
// are optional. Rate limiting is applied per route by the feature handlers.
type Deps struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Consent        RouteRegistrar
	Contact        RouteRegistrar
	Preview        RouteRegistrar
	Health         HealthChecker
	MetricsHandler http.Handler
}

type healthResponse struct {
	Status string `json:"status"`
}

// NewRouter wires the global middleware and mounts every handler.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(d.Logger))
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.LatencyMiddleware(d.Metrics))

	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeMethodNotAllowed, "Method not allowed"))
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "Not found"))
	})

	r.Group(func(g chi.Router) {
		g.Use(middleware.ContentTypeJSON)
		g.Use(middleware.BodyLimit(ConsentBodyLimit))
		d.Consent.Register(g)
	})

	r.Group(func(g chi.Router) {
		g.Use(middleware.ContentTypeJSON)
		g.Use(middleware.BodyLimit(ContactBodyLimit))
		d.Contact.Register(g)
	})

	if d.Preview != nil {
		d.Preview.Register(r)
	}

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if d.Health != nil {
			if err := d.Health.Health(req.Context()); err != nil {
				d.Logger.WarnContext(req.Context(), "health check failed", "error", err)
				httputil.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	})

	if d.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", d.MetricsHandler)
	}

	return r
}
