// Package requesttime pins a single "now" per request so the consent tiers,
// the stored GrantedAt and the audit timestamp all agree.
package requesttime

import (
	"net/http"
	"time"

	"portfolio/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request
// and stores it in the context for consistent time references throughout the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
