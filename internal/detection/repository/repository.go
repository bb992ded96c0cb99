package repository

import (
	"context"

	"vehicle-tracking-backend/internal/detection/domain"
)

// Repository is the persistence interface for telemetry and detection records.
// Records are append-only; detections additionally support a bulk clear.
type Repository interface {
	// CreateTelemetry inserts t in a single transaction and sets t.ID.
	CreateTelemetry(ctx context.Context, t *domain.Telemetry) error
	// CreateDetection inserts d in a single transaction and sets d.ID.
	CreateDetection(ctx context.Context, d *domain.Detection) error
	// ListDetections returns detections ordered by timestamp descending with
	// id descending as tiebreak, offset by skip and capped at limit.
	ListDetections(ctx context.Context, skip, limit int) ([]*domain.Detection, error)
	// CountDetections returns the full detection count at read time.
	CountDetections(ctx context.Context) (int64, error)
	// ListTelemetry returns telemetry with the same ordering and paging as
	// ListDetections.
	ListTelemetry(ctx context.Context, skip, limit int) ([]*domain.Telemetry, error)
	// CountTelemetry returns the full telemetry count at read time.
	CountTelemetry(ctx context.Context) (int64, error)
	// LatestDetection returns the newest detection, or nil if none exist.
	// It returns an error only for database failures, not for missing rows.
	LatestDetection(ctx context.Context) (*domain.Detection, error)
	// ClearDetections deletes all detection rows in one transaction and
	// returns how many were deleted.
	ClearDetections(ctx context.Context) (int64, error)
}
