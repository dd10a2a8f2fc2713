package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"admob-switch/internal/observability"
)

// Router assembles the full HTTP surface. The admin handler is mounted under
// /admin with its own auth stack; extra middleware (rate limiting, tracing)
// applies to everything.
func Router(h *Handler, admin http.Handler, extra ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(observability.Measure)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))
	for _, mw := range extra {
		r.Use(mw)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/config/{packageName}", h.GetConfig)
		r.Get("/notifications/pending", h.PendingNotifications)
		r.Post("/notifications/track", h.TrackNotification)
		r.Post("/device/register", h.RegisterDevice)
		r.Post("/analytics/track", h.TrackAnalytics)
	})

	if admin != nil {
		r.Mount("/admin", admin)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", observability.MetricsHandler())
	return r
}
