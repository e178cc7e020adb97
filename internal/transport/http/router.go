package httptransport

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthChecker reports whether a backing store is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// NewRouter wires the webhook endpoints plus health and metrics. checkers
// may be empty when every backend is in-process.
func NewRouter(h *Handler, checkers ...HealthChecker) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Post("/events/voice-state", h.HandleVoiceState)
	r.Post("/events/message", h.HandleMessage)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		for _, c := range checkers {
			if err := c.Health(req.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
