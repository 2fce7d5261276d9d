package engine

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lmoreno/waypoint-agent/internal/backlog"
	"github.com/lmoreno/waypoint-agent/internal/probe"
	"github.com/lmoreno/waypoint-agent/internal/remote"
	"github.com/lmoreno/waypoint-agent/internal/sensors"
	"github.com/lmoreno/waypoint-agent/internal/signal"
	"github.com/lmoreno/waypoint-agent/internal/telemetry"
)

// State labels a collection cycle's progress. Delivered and Buffered are
// terminal: every cycle ends in exactly one of them.
type State string

const (
	Collecting State = "COLLECTING"
	Resolving  State = "RESOLVING"
	Sending    State = "SENDING"
	Delivered  State = "DELIVERED"
	Buffered   State = "BUFFERED"
)

// SignalResolver is the engine's view of signal resolution.
type SignalResolver interface {
	Resolve(ctx context.Context) signal.Reading
}

// CycleOutcome is the structured result of one collection cycle. Err, if
// set, is informational: the cycle still terminated in State.
type CycleOutcome struct {
	State       State
	Record      telemetry.Record
	Correlation string
	Err         error

	// Drained is set when a successful delivery triggered an
	// opportunistic backlog drain.
	Drained *backlog.DrainReport
}

// FlushReport summarizes an explicit backlog flush. Attempted covers
// only entries that could be parsed; corrupt entries are counted in
// Invalid and stay in the backlog without a delivery attempt.
type FlushReport struct {
	Attempted int
	Delivered int
	Retained  int
	Invalid   int
}

// Options wires the engine's collaborators. Everything is injected so
// tests substitute fakes; nothing here is an ambient singleton.
type Options struct {
	DeviceID string

	Position sensors.PositionSource
	Battery  sensors.BatterySource
	Resolver SignalResolver
	Probe    probe.Probe
	Store    remote.Store
	Backlog  *backlog.Backlog

	PositionTimeout time.Duration // default 10s
	RemoteTimeout   time.Duration // default 15s

	Logger  zerolog.Logger
	Metrics *Metrics
	Now     func() time.Time
}

// Engine runs the collect-and-deliver state machine. The external
// scheduler guarantees at most one cycle in flight; the engine only
// serializes what it shares across call sites, which is the backlog
// drain (opportunistic after a send vs explicit Flush).
type Engine struct {
	opts    Options
	drainMu sync.Mutex
}

func New(opts Options) *Engine {
	if opts.PositionTimeout <= 0 {
		opts.PositionTimeout = 10 * time.Second
	}
	if opts.RemoteTimeout <= 0 {
		opts.RemoteTimeout = 15 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{opts: opts}
}

// RunCycle performs one end-to-end collection cycle. signalOverride, if
// non-nil, is a signal level precomputed by a caller with access the
// engine's own sources may lack; resolution is skipped entirely then.
// RunCycle never returns an error to the scheduler: every failure mode
// ends in a defined terminal state inside the outcome.
func (e *Engine) RunCycle(ctx context.Context, signalOverride *int) CycleOutcome {
	corr := uuid.New().String()
	log := e.opts.Logger.With().Str("correlation", corr).Logger()

	log.Debug().Str("state", string(Collecting)).Msg("cycle started")

	raw, err := e.collect(ctx)
	if err != nil {
		// sensor failure: persist a degraded placeholder so the outage
		// is observable at the store instead of silently dropped
		rec := telemetry.NewDegraded(e.opts.DeviceID, err.Error(), e.opts.Now())
		log.Warn().Err(err).Msg("sensor acquisition failed, buffering degraded record")
		if e.opts.Metrics != nil {
			e.opts.Metrics.cyclesDegraded.Inc()
		}
		return e.buffer(log, rec, corr, err)
	}

	log.Debug().Str("state", string(Resolving)).Msg("collected")

	if signalOverride != nil {
		raw.SignalText = strconv.Itoa(*signalOverride)
	} else if e.opts.Resolver != nil {
		raw.SignalText = e.opts.Resolver.Resolve(ctx).Text()
	}

	rec := telemetry.Normalize(raw, e.opts.Now())
	log.Debug().Str("state", string(Sending)).Str("signal_text", raw.SignalText).Msg("resolved")

	media := e.opts.Probe.Check()
	if !media.Online() {
		log.Info().Msg("no connectivity, buffering")
		return e.buffer(log, rec, corr, nil)
	}

	if err := e.insert(ctx, rec); err != nil {
		log.Warn().Err(err).Str("store", e.opts.Store.Name()).Msg("remote insert failed, buffering")
		return e.buffer(log, rec, corr, err)
	}

	if e.opts.Metrics != nil {
		e.opts.Metrics.cyclesDelivered.Inc()
	}
	log.Info().Str("state", string(Delivered)).Msg("record delivered")

	// best effort: connectivity just proved itself, reconcile the
	// backlog. The drain's outcome does not change this cycle's state.
	report := e.drain(ctx, log)
	e.updateBacklogGauge()

	return CycleOutcome{State: Delivered, Record: rec, Correlation: corr, Drained: report}
}

// Flush drains the backlog on explicit request. It shares the drain
// mutex with the opportunistic path, so the two never run concurrently
// against the same backlog.
func (e *Engine) Flush(ctx context.Context) FlushReport {
	log := e.opts.Logger.With().Str("trigger", "flush").Logger()

	report := e.drain(ctx, log)
	e.updateBacklogGauge()
	return FlushReport{
		Attempted: report.Attempted,
		Delivered: report.Delivered,
		Retained:  report.Retained,
		Invalid:   report.Invalid,
	}
}

// BacklogSize reports the number of pending records; 0 when the store
// cannot be read.
func (e *Engine) BacklogSize() int {
	n, err := e.opts.Backlog.Count()
	if err != nil {
		e.opts.Logger.Error().Err(err).Msg("backlog count failed")
		return 0
	}
	return n
}

// ClearBacklog unconditionally empties the backlog.
func (e *Engine) ClearBacklog() error {
	err := e.opts.Backlog.Clear()
	e.updateBacklogGauge()
	return err
}

func (e *Engine) collect(ctx context.Context) (telemetry.RawReadings, error) {
	pctx, cancel := context.WithTimeout(ctx, e.opts.PositionTimeout)
	defer cancel()

	pos, err := e.opts.Position.Position(pctx)
	if err != nil {
		return telemetry.RawReadings{}, err
	}

	battery, err := e.opts.Battery.Level()
	if err != nil {
		return telemetry.RawReadings{}, err
	}

	return telemetry.RawReadings{
		DeviceID:  e.opts.DeviceID,
		Latitude:  pos.Latitude,
		Longitude: pos.Longitude,
		Altitude:  pos.Altitude,
		Speed:     pos.Speed,
		Battery:   battery,
	}, nil
}

func (e *Engine) insert(ctx context.Context, rec telemetry.Record) error {
	payload, err := telemetry.MarshalRemote(rec)
	if err != nil {
		return err
	}

	rctx, cancel := context.WithTimeout(ctx, e.opts.RemoteTimeout)
	defer cancel()
	return e.opts.Store.Insert(rctx, payload)
}

func (e *Engine) buffer(log zerolog.Logger, rec telemetry.Record, corr string, cause error) CycleOutcome {
	out := CycleOutcome{State: Buffered, Record: rec, Correlation: corr, Err: cause}

	if err := e.opts.Backlog.Append(rec); err != nil {
		// the store itself failed: this cycle's record is lost, the
		// scheduler keeps running
		log.Error().Err(err).Msg("backlog append failed, record lost for this cycle")
		out.Err = err
		return out
	}

	if e.opts.Metrics != nil {
		e.opts.Metrics.cyclesBuffered.Inc()
	}
	e.updateBacklogGauge()
	log.Info().Str("state", string(Buffered)).Msg("record buffered")
	return out
}

func (e *Engine) drain(ctx context.Context, log zerolog.Logger) *backlog.DrainReport {
	e.drainMu.Lock()
	defer e.drainMu.Unlock()

	report, err := e.opts.Backlog.Drain(func(rec telemetry.Record) error {
		return e.insert(ctx, rec)
	})
	if err != nil {
		log.Error().Err(err).Msg("backlog drain failed")
		return &report
	}

	if e.opts.Metrics != nil {
		e.opts.Metrics.drainDelivered.Add(float64(report.Delivered))
		e.opts.Metrics.drainRetained.Add(float64(report.Retained))
	}
	if report.Attempted > 0 {
		log.Info().
			Int("attempted", report.Attempted).
			Int("delivered", report.Delivered).
			Int("retained", report.Retained).
			Int("invalid", report.Invalid).
			Msg("backlog drained")
	}
	return &report
}

func (e *Engine) updateBacklogGauge() {
	if e.opts.Metrics == nil {
		return
	}
	if n, err := e.opts.Backlog.Count(); err == nil {
		e.opts.Metrics.backlogSize.Set(float64(n))
	}
}
