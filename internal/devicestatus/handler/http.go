package handler

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vehicle-tracking-backend/internal/devicestatus"
	"vehicle-tracking-backend/internal/httpapi"
)

// Handler serves the device connectivity endpoint.
type Handler struct {
	monitor *devicestatus.Monitor
}

// NewHandler returns a device status HTTP handler backed by monitor.
func NewHandler(monitor *devicestatus.Monitor) *Handler {
	return &Handler{monitor: monitor}
}

// Register mounts the device status route on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/device_status", h.status)
}

func (h *Handler) status(rw http.ResponseWriter, r *http.Request) {
	st, err := h.monitor.Status(r.Context())
	if err != nil {
		log.Printf("device_status: %v", err)
		httpapi.InternalError(rw, "failed to determine device status")
		return
	}
	httpapi.Write(rw, http.StatusOK, st)
}
