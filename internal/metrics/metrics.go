// Package metrics holds the Prometheus collectors of the dashboard.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Query names used as the "query" label.
const (
	QueryGraph   = "graph"
	QueryStudent = "student"
)

var (
	// Registry is what /metrics exposes.
	Registry = prometheus.NewRegistry()

	queriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arat_queries_total",
			Help: "Number of graph database queries by query and outcome.",
		},
		[]string{"query", "outcome"},
	)

	queryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "arat_query_duration_seconds",
			Help:    "Time taken to run a query and read its rows.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)

	queryRows = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "arat_query_rows",
			Help: "Rows returned by the last successful query.",
		},
		[]string{"query"},
	)

	WebsocketSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "arat_websocket_sessions",
			Help: "Number of open dashboard websocket sessions.",
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		queriesTotal,
		queryDuration,
		queryRows,
		WebsocketSessions,
	)
}

// ObserveQuery records one query that started at start and returned rows rows.
func ObserveQuery(query string, start time.Time, rows int, err error) {
	queryDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
	if err != nil {
		queriesTotal.WithLabelValues(query, "error").Inc()
		return
	}
	queriesTotal.WithLabelValues(query, "ok").Inc()
	queryRows.WithLabelValues(query).Set(float64(rows))
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
