// Package devicestatus derives a binary connectivity signal from the age of
// the most recent stored detection.
package devicestatus

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"vehicle-tracking-backend/internal/detection/domain"
)

// Status values reported by the monitor.
const (
	StatusConnected    = "connected"
	StatusDisconnected = "disconnected"
)

// DetectionSource is the minimal read access the monitor needs.
type DetectionSource interface {
	// LatestDetection returns the newest detection, or nil if none exist.
	LatestDetection(ctx context.Context) (*domain.Detection, error)
}

// Status is the connectivity report. LastSeen is nil when no report has ever
// been stored; otherwise it is the last report's timestamp in the display
// timezone.
type Status struct {
	Status   string  `json:"status"`
	LastSeen *string `json:"last_seen"`
	Message  string  `json:"message"`
}

// Monitor computes device connectivity from report freshness. All age
// arithmetic happens on UTC instants; the display timezone is used only for
// the rendered last_seen value.
type Monitor struct {
	source    DetectionSource
	threshold time.Duration
	display   *time.Location
	dbTimeout time.Duration
	nowF      func() time.Time
}

// NewMonitor returns a Monitor that reports connected while the newest
// detection is at most threshold old.
func NewMonitor(source DetectionSource, threshold time.Duration, display *time.Location, dbTimeout time.Duration) *Monitor {
	return &Monitor{
		source:    source,
		threshold: threshold,
		display:   display,
		dbTimeout: dbTimeout,
		nowF:      func() time.Time { return time.Now().UTC() },
	}
}

// Status reads the newest detection and classifies the device as connected
// when its age is at most the threshold.
func (m *Monitor) Status(ctx context.Context) (*Status, error) {
	ctx, cancel := context.WithTimeout(ctx, m.dbTimeout)
	defer cancel()

	latest, err := m.source.LatestDetection(ctx)
	if err != nil {
		return nil, fmt.Errorf("latest detection: %w", err)
	}
	if latest == nil {
		return &Status{
			Status:  StatusDisconnected,
			Message: "no reports received yet",
		}, nil
	}

	now := m.nowF()
	lastSeen := latest.Timestamp.UTC()
	rendered := lastSeen.In(m.display).Format(time.RFC3339)
	elapsed := humanize.RelTime(lastSeen, now, "ago", "from now")

	if now.Sub(lastSeen) <= m.threshold {
		return &Status{
			Status:   StatusConnected,
			LastSeen: &rendered,
			Message:  fmt.Sprintf("device is connected; last report %s", elapsed),
		}, nil
	}
	return &Status{
		Status:   StatusDisconnected,
		LastSeen: &rendered,
		Message:  fmt.Sprintf("no reports for %s; device appears offline", elapsed),
	}, nil
}
