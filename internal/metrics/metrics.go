// Package metrics counts dispatches and scheduling events with Prometheus
// collectors. The daemon exposes no listener; the registry can be written
// to a node-exporter textfile after every dispatch.
package metrics

import (
	"github.com/micetimer/micetimer/internal/dispatch"
	"github.com/micetimer/micetimer/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "micetimer"

// DurationBuckets covers commands from a few milliseconds to ten minutes.
var DurationBuckets = []float64{.005, .025, .1, .5, 1, 5, 15, 60, 300, 600}

// Metrics holds all daemon metrics
type Metrics struct {
	registry *prometheus.Registry
	textfile string
	log      logger.Logger

	DispatchTotal      *prometheus.CounterVec
	DispatchDuration   *prometheus.HistogramVec
	RearmFailuresTotal *prometheus.CounterVec
	CoalescedTotal     *prometheus.CounterVec
	WakeLockHeldTotal  *prometheus.CounterVec
}

// New creates the metrics on a private registry. A non-empty textfile is
// rewritten after every dispatch; write failures are logged.
func New(textfile string, log logger.Logger) *Metrics {
	if log == nil {
		log = logger.NewNopLogger()
	}
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		textfile: textfile,
		log:      log,

		DispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_total",
			Help:      "Total number of timer dispatches by outcome",
		}, []string{"timer", "outcome"}),

		DispatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Duration of timer commands",
			Buckets:   DurationBuckets,
		}, []string{"timer"}),

		RearmFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rearm_failures_total",
			Help:      "Timers that could not be rescheduled and went dormant",
		}, []string{"timer"}),

		CoalescedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coalesced_expirations_total",
			Help:      "Expirations folded into a single dispatch",
		}, []string{"timer"}),

		WakeLockHeldTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wake_lock_held_total",
			Help:      "Dispatches that ran while holding a wake lock",
		}, []string{"timer"}),
	}
	reg.MustRegister(
		m.DispatchTotal,
		m.DispatchDuration,
		m.RearmFailuresTotal,
		m.CoalescedTotal,
		m.WakeLockHeldTotal,
	)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe records a finished dispatch.
func (m *Metrics) Observe(res dispatch.Result) {
	m.DispatchTotal.WithLabelValues(res.Timer, res.Outcome.String()).Inc()
	m.DispatchDuration.WithLabelValues(res.Timer).Observe(res.Duration().Seconds())
	if res.WakeLockHeld {
		m.WakeLockHeldTotal.WithLabelValues(res.Timer).Inc()
	}
	m.flush()
}

// RearmFailed records a timer going dormant.
func (m *Metrics) RearmFailed(timer string) {
	m.RearmFailuresTotal.WithLabelValues(timer).Inc()
	m.flush()
}

// Coalesced records n expirations handled by one dispatch.
func (m *Metrics) Coalesced(timer string, n uint64) {
	m.CoalescedTotal.WithLabelValues(timer).Add(float64(n))
}

// WriteTextfile writes the current values in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) flush() {
	if m.textfile == "" {
		return
	}
	if err := m.WriteTextfile(m.textfile); err != nil {
		m.log.Warning("Failed to write metrics to %s: %v", m.textfile, err)
	}
}
