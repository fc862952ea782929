package router

import (
	"net/http"

	"github.com/evyataryagoni/iplocator/internal/handler"
	"github.com/evyataryagoni/iplocator/internal/limiter"
	"github.com/evyataryagoni/iplocator/internal/logger"
	"github.com/evyataryagoni/iplocator/internal/metrics"
	custommiddleware "github.com/evyataryagoni/iplocator/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter creates and configures the Chi router with all middleware and routes
//
// Parameters:
//   - h: the lookup form handler
//   - rateLimiter: the rate limiter (memory or Redis)
//   - m: metrics collector
//   - gatherer: source for the /metrics endpoint (prometheus.DefaultGatherer in production)
//   - log: structured logger
func SetupRouter(h *handler.LocatorHandler, rateLimiter limiter.Limiter, m *metrics.Metrics, gatherer prometheus.Gatherer, log *logger.Logger) chi.Router {
	r := chi.NewRouter()

	// Order matters: RealIP must run before the limiter reads RemoteAddr
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.LoggingMiddleware(log))
	r.Use(middleware.Recoverer)
	r.Use(custommiddleware.RateLimitMiddleware(rateLimiter, m))
	r.Use(custommiddleware.MetricsMiddleware(m))

	// The lookup page: bare form on GET, result on POST
	r.Get("/", h.Index)
	r.Post("/", h.Submit)

	r.Get("/health", healthCheckHandler)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}

// healthCheckHandler reports liveness only; it never touches the store
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
