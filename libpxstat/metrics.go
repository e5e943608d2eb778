// Package libpxstat wires connection and query counters through
// github.com/prometheus/client_golang, in the same vein as a proxy layer's
// request metrics, adapted to a connection library's own lifecycle events.
package libpxstat

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the counters and histogram a Connection reports into, if
// configured. Unlike a service binary, a library must not silently register
// itself onto the default global registry — Metrics carries its own
// collectors and the caller registers them with whatever registry it uses.
type Metrics struct {
	ConnectionsOpened prometheus.Counter
	ConnectionsFailed prometheus.Counter
	QueriesExecuted   *prometheus.CounterVec
	QueryDuration     prometheus.Histogram
	AuthChallenges    prometheus.Counter
}

// NewMetrics constructs a fresh, unregistered Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{
		ConnectionsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "libpx_connections_opened_total",
			Help: "Total number of connections successfully opened.",
		}),
		ConnectionsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "libpx_connections_failed_total",
			Help: "Total number of connection attempts that failed.",
		}),
		QueriesExecuted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "libpx_queries_executed_total",
			Help: "Total number of queries executed, by pipeline path.",
		}, []string{"path"}),
		QueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "libpx_query_duration_seconds",
			Help:    "Query execution latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		AuthChallenges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "libpx_auth_challenges_total",
			Help: "Total number of MD5 authentication challenges handled.",
		}),
	}
}

// MustRegister registers every collector with reg, panicking on collision —
// mirrors the MustRegister-at-startup idiom of proxy-style metrics setups,
// scoped to a registry the caller supplies rather than the global default.
func (m *Metrics) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(m.ConnectionsOpened, m.ConnectionsFailed, m.QueriesExecuted, m.QueryDuration, m.AuthChallenges)
}
