// Package service computes rolling-window sums and point series over stored
// data usage samples.
package service

import (
	"context"
	"fmt"
	"time"

	"vehicle-tracking-backend/internal/cache"
	"vehicle-tracking-backend/internal/datausage/domain"
)

// Rolling window durations. A month is a fixed 30 days, not a calendar month.
const (
	WindowDay   = 24 * time.Hour
	WindowWeek  = 7 * 24 * time.Hour
	WindowMonth = 30 * 24 * time.Hour
)

// Repo is the minimal usage repository needed by the service.
type Repo interface {
	CreateUsage(ctx context.Context, u *domain.Usage) error
	ListSince(ctx context.Context, cutoff time.Time) ([]*domain.Usage, error)
}

// Point is one usage sample rendered for charting.
type Point struct {
	Timestamp     string `json:"timestamp"`
	BytesSent     int64  `json:"bytes_sent"`
	BytesReceived int64  `json:"bytes_received"`
}

// Stats is the aggregate for one rolling window.
type Stats struct {
	BytesSent     int64   `json:"bytes_sent"`
	BytesReceived int64   `json:"bytes_received"`
	Points        []Point `json:"points"`
}

// Report carries the three rolling windows.
type Report struct {
	Day   Stats `json:"1d"`
	Week  Stats `json:"1w"`
	Month Stats `json:"1m"`
}

// Service records usage samples and serves cached rolling-window aggregates.
type Service struct {
	repo      Repo
	cache     cache.Store
	display   *time.Location
	cacheTTL  time.Duration
	dbTimeout time.Duration
	nowF      func() time.Time
}

// New returns a usage Service with the given dependencies.
func New(repo Repo, resultCache cache.Store, display *time.Location, cacheTTL, dbTimeout time.Duration) *Service {
	return &Service{
		repo:      repo,
		cache:     resultCache,
		display:   display,
		cacheTTL:  cacheTTL,
		dbTimeout: dbTimeout,
		nowF:      func() time.Time { return time.Now().UTC() },
	}
}

// Record stores one usage sample. A nil timestamp means "now". The result
// cache is invalidated only after the write commits.
func (s *Service) Record(ctx context.Context, bytesSent, bytesReceived int64, timestamp *time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	ts := s.nowF()
	if timestamp != nil {
		ts = timestamp.UTC()
	}
	u := &domain.Usage{Timestamp: ts, BytesSent: bytesSent, BytesReceived: bytesReceived}
	if err := s.repo.CreateUsage(ctx, u); err != nil {
		return 0, fmt.Errorf("store usage: %w", err)
	}
	s.cache.InvalidateAll()
	return u.ID, nil
}

// Usage computes the 1d/1w/1m rolling windows, each as an independent query
// against the store. The result is cached for the configured TTL.
func (s *Service) Usage(ctx context.Context) (*Report, error) {
	v, err := s.cache.GetOrCompute(ctx, "data-usage", s.cacheTTL, func(ctx context.Context) (any, error) {
		return s.computeReport(ctx)
	})
	if err != nil {
		return nil, err
	}
	report, ok := v.(*Report)
	if !ok {
		return nil, fmt.Errorf("cache returned unexpected type %T for data-usage", v)
	}
	return report, nil
}

func (s *Service) computeReport(ctx context.Context) (*Report, error) {
	now := s.nowF()
	report := &Report{}
	for _, w := range []struct {
		dest   *Stats
		window time.Duration
	}{
		{&report.Day, WindowDay},
		{&report.Week, WindowWeek},
		{&report.Month, WindowMonth},
	} {
		stats, err := s.computeWindow(ctx, now, w.window)
		if err != nil {
			return nil, err
		}
		*w.dest = stats
	}
	return report, nil
}

func (s *Service) computeWindow(ctx context.Context, now time.Time, window time.Duration) (Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	rows, err := s.repo.ListSince(ctx, now.Add(-window))
	if err != nil {
		return Stats{}, fmt.Errorf("list usage since %s: %w", window, err)
	}

	stats := Stats{Points: make([]Point, len(rows))}
	for i, u := range rows {
		stats.BytesSent += u.BytesSent
		stats.BytesReceived += u.BytesReceived
		stats.Points[i] = Point{
			Timestamp:     u.Timestamp.In(s.display).Format(time.RFC3339),
			BytesSent:     u.BytesSent,
			BytesReceived: u.BytesReceived,
		}
	}
	return stats, nil
}
