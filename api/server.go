/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging (logrus) and Prometheus request metrics
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the frontends

ROUTE GROUPS:
  /healthz              Liveness + database ping (public)
  /metrics              Prometheus scrape endpoint (public)
  /api/reports/*        Balances (authenticated, admin for other users)
  /api/exports/*        Monthly report downloads (admin)

AUTH:
  Bearer JWT (HS256) on everything under /api. See auth.go.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/warp/timekeeper/metrics"
)

// RouterConfig holds router-level settings.
type RouterConfig struct {
	JWTSecret   []byte
	CORSOrigins []string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, cfg RouterConfig) *chi.Mux {
	metrics.Init()

	r := chi.NewRouter()
	auth := &Authenticator{Secret: cfg.JWTSecret, Users: h.Source}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Authenticate)

		// Balance routes
		r.Route("/reports/balance", func(r chi.Router) {
			r.Get("/me", h.GetMyBalance)
			r.With(RequireAdmin).Get("/user/{id}", h.GetUserBalance)
			r.With(RequireAdmin).Get("/all", h.GetAllBalances)
		})

		// Export routes
		r.Route("/exports", func(r chi.Router) {
			r.Use(RequireAdmin)
			r.Get("/monthly-report", h.DownloadMonthlyReport)
			r.Get("/runs", h.ListReportRuns)
		})
	})

	return r
}

// requestLogger logs every request through logrus and records request metrics
// under the matched route pattern.
func requestLogger(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			metrics.ObserveHTTP(r.Method, route, status, duration)

			entry := logger.WithFields(logrus.Fields{
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     status,
				"bytes":      ww.BytesWritten(),
				"duration":   duration.String(),
			})
			switch {
			case status >= 500:
				entry.Error("request")
			case status >= 400:
				entry.Warn("request")
			default:
				entry.Info("request")
			}
		})
	}
}
