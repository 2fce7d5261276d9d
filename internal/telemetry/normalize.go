package telemetry

import (
	"strconv"
	"strings"
	"time"
)

// RawReadings is the unnormalized output of one sensor sweep.
type RawReadings struct {
	DeviceID   string
	Latitude   float64
	Longitude  float64
	Altitude   *float64
	Speed      *float64
	Battery    int
	SignalText string
}

// Normalize converts raw readings into a canonical Record. It is pure:
// no I/O, no clock reads (the capture timestamp is an explicit input),
// deterministic for identical inputs.
//
// SignalText that does not parse as an integer ("", "N/A", "-62 dBm")
// yields an absent signal, never an error: malformed signal text must not
// abort record creation.
func Normalize(raw RawReadings, ts time.Time) Record {
	rec := Record{
		DeviceID:  raw.DeviceID,
		Latitude:  raw.Latitude,
		Longitude: raw.Longitude,
		Altitude:  raw.Altitude,
		Speed:     raw.Speed,
		Battery:   clampBattery(raw.Battery),
		Timestamp: ts,
	}
	if v, ok := parseSignal(raw.SignalText); ok {
		rec.Signal = &v
	}
	return rec
}

// parseSignal parses textual signal strength. Platform sources sometimes
// render negative dBm with U+2212 instead of ASCII '-', so that is
// accepted; anything else non-numeric is not.
func parseSignal(text string) (int, bool) {
	s := strings.TrimSpace(text)
	s = strings.ReplaceAll(s, "−", "-")
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

func clampBattery(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
