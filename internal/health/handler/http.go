// Package handler serves the liveness endpoint for load balancers and the
// keep-alive pinger.
package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vehicle-tracking-backend/internal/httpapi"
)

// pingTimeout bounds the readiness check so health probes cannot hang on a
// dead database.
const pingTimeout = 2 * time.Second

// Pinger is the readiness dependency (e.g. *sql.DB).
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler serves GET /health. With a nil pinger it reports liveness only.
type Handler struct {
	pinger Pinger
}

// NewHandler returns a health HTTP handler. pinger may be nil.
func NewHandler(pinger Pinger) *Handler {
	return &Handler{pinger: pinger}
}

// Register mounts the health route on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.health)
}

func (h *Handler) health(rw http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()
		if err := h.pinger.PingContext(ctx); err != nil {
			log.Printf("health: db ping failed: %v", err)
			httpapi.Write(rw, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	httpapi.Write(rw, http.StatusOK, map[string]string{"status": "OK"})
}
