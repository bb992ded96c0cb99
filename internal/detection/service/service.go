// Package service implements ingestion of edge reports and the cached,
// paginated read path over stored detections and telemetry.
package service

import (
	"context"
	"fmt"
	"time"

	"vehicle-tracking-backend/internal/cache"
	"vehicle-tracking-backend/internal/detection/domain"
)

// imagePreviewLen bounds image payloads in list responses. Longer base64
// blobs are cut to this many bytes plus an ellipsis marker.
const imagePreviewLen = 100

// Repo is the minimal detection repository needed by the service.
type Repo interface {
	CreateTelemetry(ctx context.Context, t *domain.Telemetry) error
	CreateDetection(ctx context.Context, d *domain.Detection) error
	ListDetections(ctx context.Context, skip, limit int) ([]*domain.Detection, error)
	CountDetections(ctx context.Context) (int64, error)
	ListTelemetry(ctx context.Context, skip, limit int) ([]*domain.Telemetry, error)
	CountTelemetry(ctx context.Context) (int64, error)
	ClearDetections(ctx context.Context) (int64, error)
}

// DetectionRecord is a detection decorated for list responses: timestamp in
// the display timezone, image truncated to a bounded preview.
type DetectionRecord struct {
	ID        int64   `json:"id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Speed     float64 `json:"speed"`
	SignType  string  `json:"sign_type,omitempty"`
	Image     string  `json:"image,omitempty"`
	Timestamp string  `json:"timestamp"`
}

// TelemetryRecord is a telemetry row decorated for list responses.
type TelemetryRecord struct {
	ID        int64   `json:"id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Speed     float64 `json:"speed"`
	Timestamp string  `json:"timestamp"`
}

// DetectionPage is one page of the detection list.
type DetectionPage struct {
	Total int64             `json:"total"`
	Skip  int               `json:"skip"`
	Limit int               `json:"limit"`
	Data  []DetectionRecord `json:"data"`
}

// TelemetryPage is one page of the telemetry list.
type TelemetryPage struct {
	Total int64             `json:"total"`
	Skip  int               `json:"skip"`
	Limit int               `json:"limit"`
	Data  []TelemetryRecord `json:"data"`
}

// Service validates, classifies, and persists reports, and serves cached
// paginated reads over them.
type Service struct {
	repo      Repo
	cache     cache.Store
	display   *time.Location
	cacheTTL  time.Duration
	dbTimeout time.Duration
}

// New returns a Service with the given dependencies. display is the timezone
// used to render timestamps at the read boundary.
func New(repo Repo, resultCache cache.Store, display *time.Location, cacheTTL, dbTimeout time.Duration) *Service {
	return &Service{
		repo:      repo,
		cache:     resultCache,
		display:   display,
		cacheTTL:  cacheTTL,
		dbTimeout: dbTimeout,
	}
}

// Ingest classifies the report by key presence and writes it as a Detection
// or Telemetry row. The whole result cache is invalidated only after the
// write commits; a failed write leaves the cache untouched.
func (s *Service) Ingest(ctx context.Context, report domain.Report) error {
	ctx, cancel := context.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	if report.IsDetection() {
		d := &domain.Detection{
			Latitude:  report.Latitude,
			Longitude: report.Longitude,
			Speed:     report.Speed,
			Timestamp: report.Timestamp.UTC(),
		}
		if report.SignType != nil {
			d.SignType = *report.SignType
		}
		if report.Image != nil {
			d.Image = *report.Image
		}
		if err := s.repo.CreateDetection(ctx, d); err != nil {
			return fmt.Errorf("store detection: %w", err)
		}
	} else {
		t := &domain.Telemetry{
			Latitude:  report.Latitude,
			Longitude: report.Longitude,
			Speed:     report.Speed,
			Timestamp: report.Timestamp.UTC(),
		}
		if err := s.repo.CreateTelemetry(ctx, t); err != nil {
			return fmt.Errorf("store telemetry: %w", err)
		}
	}

	s.cache.InvalidateAll()
	return nil
}

// ListDetections returns one page of detections, newest first. Results are
// cached per (skip, limit) for the configured TTL. Both the /detections and
// /past_detections endpoints share this path; past_detections is only a
// default-skip convenience over the same data.
func (s *Service) ListDetections(ctx context.Context, skip, limit int) (*DetectionPage, error) {
	key := fmt.Sprintf("detections:%d:%d", skip, limit)
	v, err := s.cache.GetOrCompute(ctx, key, s.cacheTTL, func(ctx context.Context) (any, error) {
		return s.computeDetectionPage(ctx, skip, limit)
	})
	if err != nil {
		return nil, err
	}
	page, ok := v.(*DetectionPage)
	if !ok {
		return nil, fmt.Errorf("cache returned unexpected type %T for %s", v, key)
	}
	return page, nil
}

func (s *Service) computeDetectionPage(ctx context.Context, skip, limit int) (*DetectionPage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	total, err := s.repo.CountDetections(ctx)
	if err != nil {
		return nil, fmt.Errorf("count detections: %w", err)
	}
	rows, err := s.repo.ListDetections(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list detections: %w", err)
	}

	data := make([]DetectionRecord, len(rows))
	for i, d := range rows {
		data[i] = DetectionRecord{
			ID:        d.ID,
			Latitude:  d.Latitude,
			Longitude: d.Longitude,
			Speed:     d.Speed,
			SignType:  d.SignType,
			Image:     truncateImage(d.Image),
			Timestamp: s.displayTime(d.Timestamp),
		}
	}
	return &DetectionPage{Total: total, Skip: skip, Limit: limit, Data: data}, nil
}

// ListTelemetry returns one page of telemetry, newest first, cached per
// (skip, limit).
func (s *Service) ListTelemetry(ctx context.Context, skip, limit int) (*TelemetryPage, error) {
	key := fmt.Sprintf("telemetry:%d:%d", skip, limit)
	v, err := s.cache.GetOrCompute(ctx, key, s.cacheTTL, func(ctx context.Context) (any, error) {
		return s.computeTelemetryPage(ctx, skip, limit)
	})
	if err != nil {
		return nil, err
	}
	page, ok := v.(*TelemetryPage)
	if !ok {
		return nil, fmt.Errorf("cache returned unexpected type %T for %s", v, key)
	}
	return page, nil
}

func (s *Service) computeTelemetryPage(ctx context.Context, skip, limit int) (*TelemetryPage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	total, err := s.repo.CountTelemetry(ctx)
	if err != nil {
		return nil, fmt.Errorf("count telemetry: %w", err)
	}
	rows, err := s.repo.ListTelemetry(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list telemetry: %w", err)
	}

	data := make([]TelemetryRecord, len(rows))
	for i, t := range rows {
		data[i] = TelemetryRecord{
			ID:        t.ID,
			Latitude:  t.Latitude,
			Longitude: t.Longitude,
			Speed:     t.Speed,
			Timestamp: s.displayTime(t.Timestamp),
		}
	}
	return &TelemetryPage{Total: total, Skip: skip, Limit: limit, Data: data}, nil
}

// Clear deletes all detection rows and returns the prior count. The cache is
// invalidated only after the delete commits.
func (s *Service) Clear(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	deleted, err := s.repo.ClearDetections(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear detections: %w", err)
	}
	s.cache.InvalidateAll()
	return deleted, nil
}

func (s *Service) displayTime(t time.Time) string {
	return t.In(s.display).Format(time.RFC3339)
}

func truncateImage(image string) string {
	if len(image) <= imagePreviewLen {
		return image
	}
	return image[:imagePreviewLen] + "..."
}
