package signal

import (
	"context"
	"errors"
	"strconv"
	"time"
)

// ErrUnavailable marks a source that is categorically unreachable from
// the current execution context, as opposed to one that was queried and
// failed. The resolver falls through to the secondary source only on
// this error.
var ErrUnavailable = errors.New("signal source unavailable in this context")

// Kind classifies a resolved signal reading.
type Kind string

const (
	// Numeric carries a measured signal level.
	Numeric Kind = "NUMERIC"
	// NoSignal means the medium was queried and no level was found:
	// either connectivity is not on the signal-bearing medium, or every
	// source failed.
	NoSignal Kind = "NO_SIGNAL"
	// Unknown means resolution was skipped entirely because the caller
	// supplied an override value of its own.
	Unknown Kind = "UNKNOWN"
)

// Reading is the outcome of one signal resolution.
type Reading struct {
	Kind  Kind
	Value int
}

// Text renders the reading as normalizer input. NoSignal keeps the
// sentinel 0 ("queried, nothing found"); Unknown renders empty so it
// parses to an absent level rather than a zero.
func (r Reading) Text() string {
	switch r.Kind {
	case Numeric:
		return strconv.Itoa(r.Value)
	case NoSignal:
		return "0"
	default:
		return ""
	}
}

// Source answers a single signal-strength query.
type Source interface {
	Query(ctx context.Context) (int, error)
}

// Resolver looks up signal strength through an ordered fallback chain:
//
//  1. not on a wifi medium: NoSignal, no probing
//  2. primary source answers: Numeric
//  3. primary categorically unavailable: secondary source, bounded wait
//  4. everything failed: NoSignal
type Resolver struct {
	primary      Source
	secondary    Source
	onWifi       func() bool
	fallbackWait time.Duration
}

func NewResolver(primary, secondary Source, onWifi func() bool, fallbackWait time.Duration) *Resolver {
	if fallbackWait <= 0 {
		fallbackWait = 2 * time.Second
	}
	return &Resolver{
		primary:      primary,
		secondary:    secondary,
		onWifi:       onWifi,
		fallbackWait: fallbackWait,
	}
}

// Resolve walks the fallback chain. It never returns an error: an
// unresolvable signal is a value, not a failure.
func (r *Resolver) Resolve(ctx context.Context) Reading {
	if r.onWifi != nil && !r.onWifi() {
		return Reading{Kind: NoSignal}
	}

	if r.primary != nil {
		v, err := r.primary.Query(ctx)
		if err == nil {
			return Reading{Kind: Numeric, Value: v}
		}
		if !errors.Is(err, ErrUnavailable) {
			return Reading{Kind: NoSignal}
		}
	}

	if r.secondary != nil {
		qctx, cancel := context.WithTimeout(ctx, r.fallbackWait)
		defer cancel()
		if v, err := r.secondary.Query(qctx); err == nil {
			return Reading{Kind: Numeric, Value: v}
		}
	}

	return Reading{Kind: NoSignal}
}
