// Package domain holds the network usage sample record.
package domain

import "time"

// Usage is one network usage sample from the device. Append-only; queried by
// rolling time windows, never updated or deleted.
type Usage struct {
	ID            int64
	Timestamp     time.Time
	BytesSent     int64
	BytesReceived int64
}
