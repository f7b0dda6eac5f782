// Package metrics provides Prometheus metrics for the sync server's
// structured events (conflicts, sync jobs, connections, fallback), grounded
// on the teacher's pkg/metrics.NewHTTPMetricsWithNamespace pattern. Metrics
// exporters are out of scope per spec.md §1, but the emission points
// themselves are ambient and carried the way the teacher carries them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles every counter/gauge the core emits.
type Metrics struct {
	ConflictsDetected  *prometheus.CounterVec
	ConflictsResolved  *prometheus.CounterVec
	SyncJobsTotal      *prometheus.CounterVec
	SyncJobDuration    prometheus.Histogram
	ActiveConnections  prometheus.Gauge
	ActiveSyncJobs     prometheus.Gauge
	FallbackClients    prometheus.Gauge
	HeartbeatTimeouts  prometheus.Counter
}

// New registers and returns the sync server's metric set under the
// "syncserver" namespace.
func New() *Metrics {
	return NewWithNamespace("syncserver")
}

// NewWithNamespace allows tests to register under an isolated namespace,
// avoiding duplicate-registration panics against the default registry.
func NewWithNamespace(namespace string) *Metrics {
	return &Metrics{
		ConflictsDetected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "conflict", Name: "detected_total",
			Help: "Total conflicts detected by kind.",
		}, []string{"kind"}),
		ConflictsResolved: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "conflict", Name: "resolved_total",
			Help: "Total conflicts resolved by strategy.",
		}, []string{"strategy"}),
		SyncJobsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "sync", Name: "jobs_total",
			Help: "Total sync jobs completed by final status.",
		}, []string{"status"}),
		SyncJobDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "sync", Name: "job_duration_seconds",
			Help:    "Sync job wall-clock duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		ActiveConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "realtime", Name: "active_connections",
			Help: "Currently tracked push sessions, any state.",
		}),
		ActiveSyncJobs: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "sync", Name: "active_jobs",
			Help: "Sync jobs currently in the syncing state.",
		}),
		FallbackClients: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "fallback", Name: "clients_in_fallback",
			Help: "Clients currently being served via pull fallback.",
		}),
		HeartbeatTimeouts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "realtime", Name: "heartbeat_timeouts_total",
			Help: "Sessions closed due to heartbeat timeout.",
		}),
	}
}
