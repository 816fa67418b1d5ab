// Package metrics exposes Prometheus collectors for snapshot publishing and
// reading. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pawglance"

// Publish results.
const (
	PublishOK      = "ok"
	PublishFailed  = "failed"
	PublishInvalid = "invalid"
)

// Read outcomes.
const (
	ReadReady       = "ready"
	ReadAbsent      = "absent"
	ReadMalformed   = "malformed"
	ReadUnavailable = "unavailable"
)

// Metrics holds the collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	publishes       *prometheus.CounterVec
	reads           *prometheus.CounterVec
	clockBumps      prometheus.Counter
	snapshotTasks   prometheus.Gauge
	snapshotPending prometheus.Gauge
	lastPublish     prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publishes_total",
			Help:      "Snapshot publish attempts by result.",
		}, []string{"channel", "result"}),
		reads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reads_total",
			Help:      "Snapshot reads by outcome.",
		}, []string{"channel", "outcome"}),
		clockBumps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "timestamp_bumps_total",
			Help:      "Publishes whose generation time was advanced past the previous snapshot.",
		}),
		snapshotTasks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_tasks",
			Help:      "Tasks in the last published snapshot.",
		}),
		snapshotPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_pending",
			Help:      "Pending count of the last published snapshot.",
		}),
		lastPublish: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_publish_timestamp_seconds",
			Help:      "Generation time of the last published snapshot.",
		}),
	}

	m.registry.MustRegister(
		m.publishes,
		m.reads,
		m.clockBumps,
		m.snapshotTasks,
		m.snapshotPending,
		m.lastPublish,
	)
	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// PublishSucceeded records a successful publish.
func (m *Metrics) PublishSucceeded(channel string, tasks, pending int, generated time.Time) {
	if m == nil {
		return
	}
	m.publishes.WithLabelValues(channel, PublishOK).Inc()
	m.snapshotTasks.Set(float64(tasks))
	m.snapshotPending.Set(float64(pending))
	m.lastPublish.Set(float64(generated.Unix()))
}

// PublishFailed records a rejected or failed publish.
func (m *Metrics) PublishFailed(channel, result string) {
	if m == nil {
		return
	}
	m.publishes.WithLabelValues(channel, result).Inc()
}

// TimestampBumped records a monotonic timestamp adjustment.
func (m *Metrics) TimestampBumped() {
	if m == nil {
		return
	}
	m.clockBumps.Inc()
}

// Read records one reader load.
func (m *Metrics) Read(channel, outcome string) {
	if m == nil {
		return
	}
	m.reads.WithLabelValues(channel, outcome).Inc()
}
