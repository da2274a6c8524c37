package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the application.
type Metrics struct {
	RequestLatency *prometheus.HistogramVec
	RateLimited    *prometheus.CounterVec

	ConsentResolutions *prometheus.CounterVec
	ConsentGrants      prometheus.Counter
	ConsentStoreErrors *prometheus.CounterVec
	ConsentSwept       prometheus.Counter

	Notifications *prometheus.CounterVec
}

// New creates and registers all HTTP metrics.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers on reg; tests pass a fresh registry.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portfolio_http_request_duration_seconds",
			Help:    "Latency of API requests by route and status",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"route", "status"}),
		RateLimited: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_http_rate_limited_total",
			Help: "Requests rejected by the per-address rate limiter",
		}, []string{"route"}),
		ConsentResolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_consent_resolutions_total",
			Help: "Consent checks by the trust source that decided them (none when not granted)",
		}, []string{"source"}),
		ConsentGrants: factory.NewCounter(prometheus.CounterOpts{
			Name: "portfolio_consent_grants_total",
			Help: "Visitor registrations recorded",
		}),
		ConsentStoreErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_consent_store_errors_total",
			Help: "Consent store failures by operation and keyspace",
		}, []string{"op", "kind"}),
		ConsentSwept: factory.NewCounter(prometheus.CounterOpts{
			Name: "portfolio_consent_swept_total",
			Help: "Expired consent records removed by the sweeper",
		}),
		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_notifications_total",
			Help: "Outbound notifications by kind and outcome",
		}, []string{"kind", "outcome"}),
	}
}

// ObserveRequest records one finished request.
func (m *Metrics) ObserveRequest(route string, status int, d time.Duration) {
	if m != nil {
		m.RequestLatency.WithLabelValues(route, strconv.Itoa(status)).Observe(d.Seconds())
	}
}

// IncrementRateLimited counts a rejected request.
func (m *Metrics) IncrementRateLimited(route string) {
	if m != nil {
		m.RateLimited.WithLabelValues(route).Inc()
	}
}

// IncrementConsentResolution counts one consent check. source is "" when no
// tier granted consent.
func (m *Metrics) IncrementConsentResolution(source string) {
	if m == nil {
		return
	}
	if source == "" {
		source = "none"
	}
	m.ConsentResolutions.WithLabelValues(source).Inc()
}

func (m *Metrics) IncrementConsentGrant() {
	if m != nil {
		m.ConsentGrants.Inc()
	}
}

func (m *Metrics) IncrementConsentStoreError(op, kind string) {
	if m != nil {
		m.ConsentStoreErrors.WithLabelValues(op, kind).Inc()
	}
}

func (m *Metrics) AddConsentSwept(n int) {
	if m != nil && n > 0 {
		m.ConsentSwept.Add(float64(n))
	}
}

// IncrementNotification counts a send attempt; outcome is "sent", "sandbox" or "failed".
func (m *Metrics) IncrementNotification(kind, outcome string) {
	if m != nil {
		m.Notifications.WithLabelValues(kind, outcome).Inc()
	}
}
