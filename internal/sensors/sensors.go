package sensors

import (
	"context"
	"errors"
)

// ErrUnavailable marks a sensor that could not produce a reading this
// cycle. The engine persists a degraded record instead of aborting.
var ErrUnavailable = errors.New("sensor unavailable")

// Position is one positional fix. Altitude and Speed stay nil on 2D
// fixes or sources that do not report them.
type Position struct {
	Latitude  float64
	Longitude float64
	Altitude  *float64
	Speed     *float64
}

// PositionSource produces a positional fix within the deadline on ctx.
type PositionSource interface {
	Position(ctx context.Context) (Position, error)
}

// BatterySource reports the current charge percentage.
type BatterySource interface {
	Level() (int, error)
}
