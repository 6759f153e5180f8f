// Package metrics exposes greetd's Prometheus collectors. A single Metrics
// value satisfies the observation hooks of the relay core, the message store
// and the Pebble layer, so components stay free of Prometheus imports.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "greetd"

// Metrics holds every collector greetd registers.
type Metrics struct {
	reg *prometheus.Registry

	publishes    prometheus.Counter
	fanout       prometheus.Histogram
	drops        prometheus.Counter
	subscribers  prometheus.Gauge
	sessions     *prometheus.GaugeVec
	appendErrors prometheus.Counter

	storeOps *prometheus.HistogramVec

	pebbleReads     prometheus.Histogram
	pebbleReadBytes prometheus.Counter
	pebbleCommits   prometheus.Histogram
	pebbleCommitOps prometheus.Counter

	rpcs *prometheus.CounterVec
}

// New builds the collectors and registers them, together with the Go
// runtime and process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),

		publishes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "broadcast",
			Name:      "publishes_total",
			Help:      "Number of texts published to the broadcaster",
		}),
		fanout: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "broadcast",
			Name:      "fanout",
			Help:      "Subscribers reached per publish",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}),
		drops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "broadcast",
			Name:      "dropped_total",
			Help:      "Texts evicted from lagging subscriber buffers",
		}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "broadcast",
			Name:      "subscribers",
			Help:      "Number of live subscriptions",
		}),
		sessions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "sessions_active",
			Help:      "Number of open relay sessions by kind",
		}, []string{"kind"}),
		appendErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "append_errors_total",
			Help:      "Messages acknowledged but not persisted",
		}),

		storeOps: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "op_duration_seconds",
			Help:      "Histogram of message store operation latencies",
			Buckets:   prometheus.ExponentialBuckets(1e-4, 4, 8),
		}, []string{"op", "result"}),

		pebbleReads: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pebble",
			Name:      "read_duration_seconds",
			Help:      "Histogram of Pebble read latencies",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 8),
		}),
		pebbleReadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pebble",
			Name:      "read_bytes_total",
			Help:      "Bytes read from Pebble",
		}),
		pebbleCommits: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pebble",
			Name:      "commit_duration_seconds",
			Help:      "Histogram of Pebble batch commit latencies",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 8),
		}),
		pebbleCommitOps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pebble",
			Name:      "commit_ops_total",
			Help:      "Operations committed to Pebble",
		}),

		rpcs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "grpc",
			Name:      "handled_total",
			Help:      "RPCs completed by method and status code",
		}, []string{"method", "code"}),
	}

	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.reg.MustRegister(m.PrometheusCollectors()...)
	return m
}

// PrometheusCollectors returns greetd's own collectors.
func (m *Metrics) PrometheusCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.publishes,
		m.fanout,
		m.drops,
		m.subscribers,
		m.sessions,
		m.appendErrors,

		m.storeOps,

		m.pebbleReads,
		m.pebbleReadBytes,
		m.pebbleCommits,
		m.pebbleCommitOps,

		m.rpcs,
	}
}

// Gatherer returns the registry backing the /metrics endpoint.
func (m *Metrics) Gatherer() prometheus.Gatherer { return m.reg }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

func (m *Metrics) ObservePublish(n int) {
	m.publishes.Inc()
	m.fanout.Observe(float64(n))
}

func (m *Metrics) ObserveDrop()             { m.drops.Inc() }
func (m *Metrics) ObserveSubscribers(n int) { m.subscribers.Set(float64(n)) }
func (m *Metrics) ObserveAppendError()      { m.appendErrors.Inc() }

func (m *Metrics) ObserveSession(kind string, delta int) {
	m.sessions.WithLabelValues(kind).Add(float64(delta))
}

func (m *Metrics) ObserveStoreOp(op string, elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.storeOps.WithLabelValues(op, result).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveRead(elapsed time.Duration, bytes int) {
	m.pebbleReads.Observe(elapsed.Seconds())
	m.pebbleReadBytes.Add(float64(bytes))
}

func (m *Metrics) ObserveBatchCommit(elapsed time.Duration, numOps int, _ int) {
	m.pebbleCommits.Observe(elapsed.Seconds())
	m.pebbleCommitOps.Add(float64(numOps))
}

// ObserveRPC counts one completed RPC.
func (m *Metrics) ObserveRPC(method, code string) {
	m.rpcs.WithLabelValues(method, code).Inc()
}
