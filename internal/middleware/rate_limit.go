package middleware

import (
	"net"
	"net/http"

	"github.com/evyataryagoni/iplocator/internal/limiter"
	"github.com/evyataryagoni/iplocator/internal/metrics"
)

// RateLimitMiddleware limits form submissions per client (returns 429 when exceeded)
//
// Only POST is limited: a submission may cost an upstream geolocation call,
// while page views, health checks and scrapes do not.
// Client identity comes from r.RemoteAddr, which chi's RealIP middleware
// has already rewritten from X-Real-IP / X-Forwarded-For.
func RateLimitMiddleware(lim limiter.Limiter, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			if !lim.Allow(clientKey(r.RemoteAddr)) {
				if m != nil {
					m.RateLimitedTotal.Inc()
				}
				w.Header().Set("Content-Type", "text/plain; charset=utf-8")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte("Too many lookups. Please try again later.\n"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey strips the port so one client maps to one bucket
func clientKey(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
