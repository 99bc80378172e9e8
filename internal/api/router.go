// Package api exposes intake sessions over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"partner-intake/internal/common/logger"
)

// Pinger is a dependency checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Sessions    SessionService
	Invitations Inviter // nil disables the invitation route
	Checks      map[string]Pinger
	Logger      logger.Logger
}

func New(opts Options) *chi.Mux {
	log := opts.Logger.Component("http")
	r := chi.NewRouter()

	r.Use(recovery(log))
	r.Use(requestLogger(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/ready", readiness(opts.Checks))
	r.Handle("/metrics", promhttp.Handler())

	sessionH := NewSessionHandler(opts.Sessions, opts.Logger)
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/intake/sessions", func(r chi.Router) {
			r.Post("/", sessionH.Start)
			r.Get("/{sessionId}", sessionH.Get)
			r.Delete("/{sessionId}", sessionH.Discard)
			r.Patch("/{sessionId}/answers", sessionH.Apply)
			r.Post("/{sessionId}/next", sessionH.Next)
			r.Post("/{sessionId}/previous", sessionH.Previous)
			r.Post("/{sessionId}/submit", sessionH.Submit)
		})
		if opts.Invitations != nil {
			r.Post("/contacts/{contactId}/invitations", NewInvitationHandler(opts.Invitations).Send)
		}
	})

	return r
}

func readiness(checks map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		result := make(map[string]string, len(checks))
		for name, c := range checks {
			if err := c.Ping(ctx); err != nil {
				result[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			result[name] = "ok"
		}
		writeJSON(w, status, result)
	}
}
