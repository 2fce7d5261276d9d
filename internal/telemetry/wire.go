package telemetry

import (
	"encoding/json"
	"fmt"
	"time"
)

// wireRecord is the flat JSON shape shared by the backlog and the remote
// store. Timestamps travel as RFC 3339 strings.
type wireRecord struct {
	Device       string   `json:"device,omitempty"`
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`
	Altitude     *float64 `json:"altitude,omitempty"`
	Speed        *float64 `json:"speed,omitempty"`
	Battery      int      `json:"battery"`
	Signal       *int     `json:"signal,omitempty"`
	Timestamp    string   `json:"timestamp"`
	SavedLocally string   `json:"savedLocally,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// Marshal serializes a record for local persistence, including the
// savedLocally stamp when present.
func Marshal(r Record) ([]byte, error) {
	return json.Marshal(toWire(r, true))
}

// MarshalRemote serializes a record for remote delivery. savedLocally is
// local bookkeeping and is stripped from the remote payload.
func MarshalRemote(r Record) ([]byte, error) {
	return json.Marshal(toWire(r, false))
}

// Unmarshal parses a serialized record back into a Record.
func Unmarshal(data []byte) (Record, error) {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return Record{}, fmt.Errorf("decode record: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, w.Timestamp)
	if err != nil {
		return Record{}, fmt.Errorf("decode record timestamp: %w", err)
	}

	rec := Record{
		DeviceID:  w.Device,
		Latitude:  w.Latitude,
		Longitude: w.Longitude,
		Altitude:  w.Altitude,
		Speed:     w.Speed,
		Battery:   w.Battery,
		Signal:    w.Signal,
		Timestamp: ts,
		ErrReason: w.Error,
	}
	if w.SavedLocally != "" {
		saved, err := time.Parse(time.RFC3339Nano, w.SavedLocally)
		if err != nil {
			return Record{}, fmt.Errorf("decode record savedLocally: %w", err)
		}
		rec.SavedLocally = &saved
	}
	return rec, nil
}

func toWire(r Record, withLocal bool) wireRecord {
	w := wireRecord{
		Device:    r.DeviceID,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Altitude:  r.Altitude,
		Speed:     r.Speed,
		Battery:   r.Battery,
		Signal:    r.Signal,
		Timestamp: r.Timestamp.Format(time.RFC3339Nano),
		Error:     r.ErrReason,
	}
	if withLocal && r.SavedLocally != nil {
		w.SavedLocally = r.SavedLocally.Format(time.RFC3339Nano)
	}
	return w
}
