package backlog

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lmoreno/waypoint-agent/internal/telemetry"
)

// ErrPersistence marks a failure of the underlying store itself; the
// record of the current attempt is lost, bounded to one cycle.
var ErrPersistence = errors.New("backlog: store write failed")

// ListStore is the persistence substrate: one ordered list of serialized
// records, replaced wholesale. Implementations must be crash-consistent;
// a Replace either fully lands or leaves the prior list intact.
type ListStore interface {
	GetList() ([]string, error)
	Replace(items []string) error
}

// Entry is one backlog item as read back from the store. A stored item
// that no longer parses surfaces as an Invalid placeholder instead of
// aborting the whole read.
type Entry struct {
	Pos     int
	Record  telemetry.Record
	Raw     string
	Invalid bool
	Err     error
}

// DrainReport summarizes one drain pass.
type DrainReport struct {
	Attempted int
	Delivered int
	Retained  int
	Invalid   int
}

// Backlog is the durable FIFO of records awaiting delivery. All access
// is serialized through one mutex: an Append arriving during a Drain
// neither races nor goes missing from a later pass.
type Backlog struct {
	mu    sync.Mutex
	store ListStore
	now   func() time.Time
}

func New(store ListStore) *Backlog {
	return &Backlog{store: store, now: time.Now}
}

// Append stamps the record with its local save time, serializes it and
// appends it to the store. The record is durable before Append returns,
// or ErrPersistence is reported.
func (b *Backlog) Append(rec telemetry.Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	items, err := b.store.GetList()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	data, err := telemetry.Marshal(rec.WithSavedLocally(b.now()))
	if err != nil {
		return fmt.Errorf("serialize record: %w", err)
	}

	if err := b.store.Replace(append(items, string(data))); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// Drain walks entries in insertion order, handing each record to sink.
// Entries the sink accepts are removed; entries it rejects are retained
// in their original relative order, as are invalid entries. The surviving
// set is persisted once at the end, also on error paths, so a partial
// failure never forgets removals that already succeeded. A crash before
// that persist leaves the original list intact: already-delivered entries
// redeliver, pending ones are never lost.
func (b *Backlog) Drain(sink func(telemetry.Record) error) (DrainReport, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	items, err := b.store.GetList()
	if err != nil {
		return DrainReport{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if len(items) == 0 {
		return DrainReport{}, nil
	}

	var report DrainReport
	retained := make([]string, 0, len(items))

	for _, raw := range items {
		rec, err := telemetry.Unmarshal([]byte(raw))
		if err != nil {
			report.Invalid++
			retained = append(retained, raw)
			continue
		}

		report.Attempted++
		if err := sink(rec); err != nil {
			report.Retained++
			retained = append(retained, raw)
			continue
		}
		report.Delivered++
	}

	if err := b.store.Replace(retained); err != nil {
		return report, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return report, nil
}

// Count reports the number of stored entries, valid or not.
func (b *Backlog) Count() (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	items, err := b.store.GetList()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return len(items), nil
}

// List returns all entries in insertion order. Corrupt items come back
// as Invalid placeholders rather than aborting the read.
func (b *Backlog) List() ([]Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	items, err := b.store.GetList()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	entries := make([]Entry, 0, len(items))
	for i, raw := range items {
		e := Entry{Pos: i, Raw: raw}
		rec, err := telemetry.Unmarshal([]byte(raw))
		if err != nil {
			e.Invalid = true
			e.Err = err
		} else {
			e.Record = rec
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Clear unconditionally empties the backlog. Operator escape hatch.
func (b *Backlog) Clear() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.store.Replace(nil); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
