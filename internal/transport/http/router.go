// Package httptransport assembles the public router. Route wiring lives
// here; business logic stays in the domain services.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stayledger/internal/platform/middleware"
	"stayledger/internal/tracking/handler"
)

// NewRouter builds the full middleware chain and mounts the tracking API.
// A nil validator leaves the API open (development mode).
func NewRouter(tracking *handler.Handler, logger *slog.Logger, validator middleware.JWTValidator) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(validator, logger))
		tracking.Register(r)
	})

	return r
}
