package handler

import (
	"context"
	"net/http"

	"github.com/Rrens/sitepublish/internal/api/response"
	"github.com/rs/zerolog/log"
)

// Pinger is a dependency that can report its connectivity
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadyCheck returns readiness status including document store connectivity
func ReadyCheck(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			log.Warn().Err(err).Msg("Document store not ready")
			response.ServiceUnavailable(w, "document store not ready")
			return
		}

		response.OK(w, map[string]string{
			"status": "ready",
		})
	}
}
