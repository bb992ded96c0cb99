// Package server assembles the HTTP API: routing, shared middleware, and the
// dependency wiring between handlers and services.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	datausagehandler "vehicle-tracking-backend/internal/datausage/handler"
	datausageservice "vehicle-tracking-backend/internal/datausage/service"
	detectionhandler "vehicle-tracking-backend/internal/detection/handler"
	detectionservice "vehicle-tracking-backend/internal/detection/service"
	"vehicle-tracking-backend/internal/devicestatus"
	devicestatushandler "vehicle-tracking-backend/internal/devicestatus/handler"
	healthhandler "vehicle-tracking-backend/internal/health/handler"
	"vehicle-tracking-backend/internal/simdata"
	simdatahandler "vehicle-tracking-backend/internal/simdata/handler"
)

// Deps holds the services the HTTP handlers are built on.
type Deps struct {
	// Detections serves report ingestion, the paginated lists, and the
	// destructive clear. Required.
	Detections *detectionservice.Service
	// DeviceStatus derives the connectivity signal. Required.
	DeviceStatus *devicestatus.Monitor
	// DataUsage serves the rolling-window usage endpoints. Required.
	DataUsage *datausageservice.Service
	// SimData is the in-memory SIM snapshot store. Required.
	SimData simdata.Store
	// SimDisplay is the timezone for rendered SIM timestamps.
	SimDisplay *time.Location
	// HealthPinger is used for readiness (e.g. *sql.DB). May be nil.
	HealthPinger healthhandler.Pinger
}

// New builds the HTTP handler tree: /health at the root and all API routes
// under /api, wrapped in request-id, panic recovery, and OTel HTTP
// instrumentation.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Recover)

	healthhandler.NewHandler(deps.HealthPinger).Register(r)

	r.Route("/api", func(api chi.Router) {
		detectionhandler.NewHandler(deps.Detections).Register(api)
		devicestatushandler.NewHandler(deps.DeviceStatus).Register(api)
		datausagehandler.NewHandler(deps.DataUsage).Register(api)
		simdatahandler.NewHandler(deps.SimData, deps.SimDisplay).Register(api)
	})

	return otelhttp.NewHandler(r, "vehicle-tracking-backend")
}
