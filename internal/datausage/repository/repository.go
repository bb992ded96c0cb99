package repository

import (
	"context"
	"time"

	"vehicle-tracking-backend/internal/datausage/domain"
)

// Repository is the persistence interface for data usage samples.
type Repository interface {
	// CreateUsage inserts u in a single transaction and sets u.ID.
	CreateUsage(ctx context.Context, u *domain.Usage) error
	// ListSince returns samples with timestamp >= cutoff, ascending by
	// timestamp with id ascending as tiebreak.
	ListSince(ctx context.Context, cutoff time.Time) ([]*domain.Usage, error)
}
