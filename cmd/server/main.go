package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vehicle-tracking-backend/internal/cache"
	"vehicle-tracking-backend/internal/config"
	datausagerepo "vehicle-tracking-backend/internal/datausage/repository"
	datausageservice "vehicle-tracking-backend/internal/datausage/service"
	"vehicle-tracking-backend/internal/db"
	detectionrepo "vehicle-tracking-backend/internal/detection/repository"
	detectionservice "vehicle-tracking-backend/internal/detection/service"
	"vehicle-tracking-backend/internal/devicestatus"
	"vehicle-tracking-backend/internal/server"
	"vehicle-tracking-backend/internal/simdata"
	"vehicle-tracking-backend/internal/telemetry/otel"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	providers, err := otel.NewProviders(context.Background(), cfg.OTLPEndpoint, "vehicle-tracking-backend", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = providers.Shutdown(ctx)
	}()

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer database.Close()

	display := cfg.DisplayLocation()
	resultCache := cache.NewMemoryStore()
	cacheTTL := cfg.CacheTTLDuration()
	dbTimeout := cfg.DBTimeoutDuration()

	detections := detectionrepo.NewPostgresRepository(database)
	usage := datausagerepo.NewPostgresRepository(database)

	handler := server.New(server.Deps{
		Detections:   detectionservice.New(detections, resultCache, display, cacheTTL, dbTimeout),
		DeviceStatus: devicestatus.NewMonitor(detections, cfg.OfflineThreshold(), display, dbTimeout),
		DataUsage:    datausageservice.New(usage, resultCache, display, cacheTTL, dbTimeout),
		SimData:      simdata.NewMemoryStore(),
		SimDisplay:   display,
		HealthPinger: database,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
