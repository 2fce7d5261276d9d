package engine

import "github.com/prometheus/client_golang/prometheus"

// Metrics is the engine's observability surface: cycle outcomes, drain
// results and the current backlog depth.
type Metrics struct {
	cyclesDelivered prometheus.Counter
	cyclesBuffered  prometheus.Counter
	cyclesDegraded  prometheus.Counter
	drainDelivered  prometheus.Counter
	drainRetained   prometheus.Counter
	backlogSize     prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cyclesDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "waypoint_cycles_delivered_total",
			Help: "Collection cycles whose record reached the remote store directly.",
		}),
		cyclesBuffered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "waypoint_cycles_buffered_total",
			Help: "Collection cycles whose record was written to the local backlog.",
		}),
		cyclesDegraded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "waypoint_cycles_degraded_total",
			Help: "Cycles that persisted a placeholder record after a sensor failure.",
		}),
		drainDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "waypoint_drain_delivered_total",
			Help: "Backlog entries delivered by drain passes.",
		}),
		drainRetained: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "waypoint_drain_retained_total",
			Help: "Backlog entries retained after a drain pass failed to deliver them.",
		}),
		backlogSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "waypoint_backlog_size",
			Help: "Records currently waiting in the local backlog.",
		}),
	}

	reg.MustRegister(
		m.cyclesDelivered,
		m.cyclesBuffered,
		m.cyclesDegraded,
		m.drainDelivered,
		m.drainRetained,
		m.backlogSize,
	)
	return m
}
