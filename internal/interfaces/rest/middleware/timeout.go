package middleware

import (
	"context"
	"net/http"
	"time"
)

const timeoutBody = `{"success":false,"error":{"code":"TIMEOUT","message":"request timed out"}}`

// Timeout bounds every request. Booking and cancellation handlers hold
// row locks across a provider round trip, so a stuck request must be
// cut loose rather than pinning its rows. The deadline rides the
// request context, which aborts repository and gateway calls with it.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		wrapped := http.TimeoutHandler(next, timeout, timeoutBody)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			wrapped.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
