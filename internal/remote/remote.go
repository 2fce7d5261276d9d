package remote

import (
	"context"
	"errors"
)

// Store is the remote side of the pipeline. Insert must be safe under
// redelivery: the backlog guarantees at-least-once, not exactly-once.
type Store interface {
	Insert(ctx context.Context, payload []byte) error
	Name() string
}

// ErrRejected marks a store that answered and said no. Callers treat it
// the same as a timeout: buffer locally and try again later.
var ErrRejected = errors.New("remote store rejected record")
