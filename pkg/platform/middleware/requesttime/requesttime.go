// Package requesttime captures one "now" per HTTP request so cooldown checks,
// ledger records and audit events share the same instant.
package requesttime

import (
	"net/http"
	"time"

	"faucetgate/pkg/requestcontext"
)

// Middleware stamps the request context with the arrival time.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
