package handler

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vehicle-tracking-backend/internal/datausage/service"
	reportdomain "vehicle-tracking-backend/internal/detection/domain"
	"vehicle-tracking-backend/internal/httpapi"
)

// Handler serves the data usage endpoints.
type Handler struct {
	svc *service.Service
}

// NewHandler returns a data usage HTTP handler backed by svc.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the data usage routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/data-usage", h.usage)
	r.Post("/data-usage", h.record)
}

type recordRequest struct {
	BytesSent     *int64 `json:"bytes_sent" validate:"required,gte=0"`
	BytesReceived *int64 `json:"bytes_received" validate:"required,gte=0"`
	// Timestamp distinguishes omitted (nil, stamp with the current time) from
	// explicitly provided; a provided value must parse, even an empty string.
	Timestamp *string `json:"timestamp"`
}

func (h *Handler) usage(rw http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Usage(r.Context())
	if err != nil {
		log.Printf("data-usage: %v", err)
		httpapi.InternalError(rw, "failed to compute usage stats")
		return
	}
	httpapi.Write(rw, http.StatusOK, report)
}

func (h *Handler) record(rw http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if !httpapi.Read(rw, r, &req) {
		return
	}

	var timestamp *time.Time
	if req.Timestamp != nil {
		ts, err := reportdomain.ParseTimestamp(*req.Timestamp)
		if err != nil {
			httpapi.ValidationFailed(rw, []httpapi.Error{{
				Field:  "timestamp",
				Detail: fmt.Sprintf("must be an ISO-8601 instant, got %q", *req.Timestamp),
			}})
			return
		}
		timestamp = &ts
	}

	id, err := h.svc.Record(r.Context(), *req.BytesSent, *req.BytesReceived, timestamp)
	if err != nil {
		log.Printf("data-usage: record failed: %v", err)
		httpapi.InternalError(rw, "failed to store usage sample")
		return
	}
	httpapi.Write(rw, http.StatusOK, map[string]any{"status": "success", "id": id})
}
