// Package handler exposes the detection and telemetry endpoints over HTTP.
package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vehicle-tracking-backend/internal/detection/domain"
	"vehicle-tracking-backend/internal/detection/service"
	"vehicle-tracking-backend/internal/httpapi"
)

// maxBodyBytes bounds ingest payloads; images arrive base64-encoded and small.
const maxBodyBytes = 8 << 20

// pastDetectionsSkip excludes the few most recent rows already surfaced
// elsewhere in the consuming UI.
const pastDetectionsSkip = 3

// Handler serves report ingestion and the paginated list endpoints.
type Handler struct {
	svc *service.Service
}

// NewHandler returns a detection HTTP handler backed by svc.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the detection routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Post("/detections", h.ingest)
	r.Get("/detections", h.listDetections)
	r.Get("/past_detections", h.listPastDetections)
	r.Get("/telemetry", h.listTelemetry)
	r.Post("/clear_detections", h.clearDetections)
}

// ingestRequest is the wire shape of an incoming report. Pointer fields make
// "absent" distinguishable from zero values for validation.
type ingestRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	Speed     *float64 `json:"speed" validate:"required,gte=0"`
	Timestamp string   `json:"timestamp" validate:"required"`
	SignType  *string  `json:"sign_type"`
	Image     *string  `json:"image"`
}

func (h *Handler) ingest(rw http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(rw, r.Body, maxBodyBytes))
	if err != nil {
		httpapi.Write(rw, http.StatusBadRequest, httpapi.Response{
			Message: fmt.Sprintf("read body: %s", err.Error()),
		})
		return
	}

	var req ingestRequest
	if !httpapi.Decode(rw, body, &req) {
		return
	}

	ts, err := domain.ParseTimestamp(req.Timestamp)
	if err != nil {
		httpapi.ValidationFailed(rw, []httpapi.Error{{
			Field:  "timestamp",
			Detail: fmt.Sprintf("must be an ISO-8601 instant, got %q", req.Timestamp),
		}})
		return
	}

	// Classification is by key presence, so a null sign_type or image still
	// marks a detection. JSON null leaves the struct pointer nil; only the
	// raw body can tell null from absent.
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(body, &keys); err != nil {
		httpapi.Write(rw, http.StatusBadRequest, httpapi.Response{
			Message: fmt.Sprintf("read body: %s", err.Error()),
		})
		return
	}

	report := domain.Report{
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Speed:     *req.Speed,
		Timestamp: ts,
	}
	if _, present := keys["sign_type"]; present {
		v := ""
		if req.SignType != nil {
			v = *req.SignType
		}
		report.SignType = &v
	}
	if _, present := keys["image"]; present {
		v := ""
		if req.Image != nil {
			v = *req.Image
		}
		report.Image = &v
	}

	if err := h.svc.Ingest(r.Context(), report); err != nil {
		log.Printf("detections: ingest failed: %v", err)
		httpapi.InternalError(rw, "failed to store report")
		return
	}
	httpapi.Write(rw, http.StatusOK, map[string]string{"status": "success"})
}

func (h *Handler) listDetections(rw http.ResponseWriter, r *http.Request) {
	skip, limit, ok := httpapi.ParsePagination(rw, r, 0)
	if !ok {
		return
	}
	page, err := h.svc.ListDetections(r.Context(), skip, limit)
	if err != nil {
		log.Printf("detections: list failed: %v", err)
		httpapi.InternalError(rw, "failed to fetch detections")
		return
	}
	httpapi.Write(rw, http.StatusOK, page)
}

func (h *Handler) listPastDetections(rw http.ResponseWriter, r *http.Request) {
	skip, limit, ok := httpapi.ParsePagination(rw, r, pastDetectionsSkip)
	if !ok {
		return
	}
	page, err := h.svc.ListDetections(r.Context(), skip, limit)
	if err != nil {
		log.Printf("past_detections: list failed: %v", err)
		httpapi.InternalError(rw, "failed to fetch detections")
		return
	}
	httpapi.Write(rw, http.StatusOK, page)
}

func (h *Handler) listTelemetry(rw http.ResponseWriter, r *http.Request) {
	skip, limit, ok := httpapi.ParsePagination(rw, r, 0)
	if !ok {
		return
	}
	page, err := h.svc.ListTelemetry(r.Context(), skip, limit)
	if err != nil {
		log.Printf("telemetry: list failed: %v", err)
		httpapi.InternalError(rw, "failed to fetch telemetry")
		return
	}
	httpapi.Write(rw, http.StatusOK, page)
}

func (h *Handler) clearDetections(rw http.ResponseWriter, r *http.Request) {
	deleted, err := h.svc.Clear(r.Context())
	if err != nil {
		log.Printf("clear_detections: %v", err)
		httpapi.InternalError(rw, "failed to clear detections")
		return
	}
	httpapi.Write(rw, http.StatusOK, map[string]string{
		"status":  "success",
		"message": fmt.Sprintf("Successfully cleared %d detection records", deleted),
	})
}
