package telemetry

import "time"

// Record is the canonical unit of delivery: one normalized telemetry
// sample per collection cycle. Records are value types and never mutated
// after construction; annotating one (e.g. stamping the local save time)
// produces a copy.
type Record struct {
	DeviceID  string
	Latitude  float64
	Longitude float64
	Altitude  *float64
	Speed     *float64
	Battery   int // 0-100
	Signal    *int
	Timestamp time.Time // capture time, not enqueue time

	// SavedLocally is set only when the record is persisted to the
	// backlog; records delivered on the first attempt never carry it.
	SavedLocally *time.Time

	// ErrReason marks a degraded record: sensor acquisition failed and
	// the positional fields are placeholders.
	ErrReason string
}

// WithSavedLocally returns a copy of the record stamped with the time it
// was written to the backlog.
func (r Record) WithSavedLocally(t time.Time) Record {
	r.SavedLocally = &t
	return r
}

// Degraded reports whether this record is a placeholder persisted after a
// sensor failure.
func (r Record) Degraded() bool {
	return r.ErrReason != ""
}

// NewDegraded builds the placeholder record persisted when sensor
// acquisition itself fails, so the failure is observable at the remote
// store instead of silently dropped.
func NewDegraded(deviceID, reason string, ts time.Time) Record {
	return Record{
		DeviceID:  deviceID,
		Timestamp: ts,
		ErrReason: reason,
	}
}
