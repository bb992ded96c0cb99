// Package domain holds the record types for edge device reports: periodic
// telemetry and sign detections.
package domain

import (
	"errors"
	"time"
)

// Telemetry is a periodic position report with no sign detection attached.
// Timestamps are stored in UTC; conversion to a display timezone happens only
// at the read boundary.
type Telemetry struct {
	ID        int64
	Latitude  float64
	Longitude float64
	Speed     float64
	Timestamp time.Time
}

// Detection is a report carrying a recognized road sign and an optional
// base64-encoded image. Same lifecycle as Telemetry plus a bulk clear.
type Detection struct {
	ID        int64
	Latitude  float64
	Longitude float64
	Speed     float64
	SignType  string
	Image     string
	Timestamp time.Time
}

// Report is a single incoming edge report before classification. SignType and
// Image are non-nil whenever the corresponding key was present in the payload,
// even if its value was empty or null; key presence, not truthiness, decides
// the classification.
type Report struct {
	Latitude  float64
	Longitude float64
	Speed     float64
	Timestamp time.Time
	SignType  *string
	Image     *string
}

// IsDetection reports whether the report classifies as a Detection.
func (r Report) IsDetection() bool {
	return r.SignType != nil || r.Image != nil
}

// ErrBadTimestamp is returned by ParseTimestamp for values that are not
// ISO-8601 instants.
var ErrBadTimestamp = errors.New("timestamp must be an ISO-8601 instant")

// timestamp layouts accepted from the device: full RFC 3339 with offset, and
// a naive wall-clock form that is taken to already be UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

// ParseTimestamp parses an ISO-8601 timestamp string and normalizes it to
// UTC. Values with a non-UTC offset are converted; naive values are assumed
// to be UTC already.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrBadTimestamp
}
