package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vehicle-tracking-backend/internal/httpapi"
	"vehicle-tracking-backend/internal/simdata"
)

// Handler serves the SIM data snapshot endpoints.
type Handler struct {
	store   simdata.Store
	display *time.Location
}

// NewHandler returns a SIM data HTTP handler backed by store.
func NewHandler(store simdata.Store, display *time.Location) *Handler {
	return &Handler{store: store, display: display}
}

// Register mounts the SIM data routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Post("/sim-data", h.record)
	r.Get("/sim-data", h.latest)
	r.Get("/sim-data/consumption", h.consumption)
}

type recordRequest struct {
	Balance   *string  `json:"balance" validate:"required"`
	DataUsage *float64 `json:"data_usage" validate:"required,gte=0"`
}

func (h *Handler) record(rw http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if !httpapi.Read(rw, r, &req) {
		return
	}
	id := h.store.Put(r.Context(), *req.Balance, *req.DataUsage)
	httpapi.Write(rw, http.StatusOK, map[string]any{"status": "success", "id": id})
}

func (h *Handler) latest(rw http.ResponseWriter, r *http.Request) {
	snap, ok := h.store.Latest(r.Context())
	if !ok {
		httpapi.Write(rw, http.StatusNotFound, httpapi.Response{Message: "no SIM data found"})
		return
	}
	httpapi.Write(rw, http.StatusOK, map[string]any{
		"balance":    snap.Balance,
		"data_usage": snap.DataUsage,
		"timestamp":  snap.Timestamp.In(h.display).Format(time.RFC3339),
	})
}

func (h *Handler) consumption(rw http.ResponseWriter, r *http.Request) {
	snap, ok := h.store.Latest(r.Context())
	if !ok {
		httpapi.Write(rw, http.StatusNotFound, httpapi.Response{Message: "no SIM data found"})
		return
	}
	httpapi.Write(rw, http.StatusOK, map[string]any{
		"data_usage": snap.DataUsage,
		"timestamp":  snap.Timestamp.In(h.display).Format(time.RFC3339),
	})
}
