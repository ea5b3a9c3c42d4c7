// Package metrics defines Prometheus metrics for the social graph service.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "socialgraph_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socialgraph_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socialgraph_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	TraversalDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "socialgraph_traversal_duration_seconds",
			Help:    "Graph traversal duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	NodesVisited = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "socialgraph_traversal_nodes_visited",
			Help:    "Nodes visited per traversal",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	CacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socialgraph_cache_requests_total",
			Help: "Accessor cache lookups by tier and result",
		},
		[]string{"tier", "result"},
	)

	AnalyticsDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "socialgraph_analytics_duration_seconds",
			Help:    "Network analytics computation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	RelationshipsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socialgraph_relationships_created_total",
			Help: "Relationships created by type",
		},
		[]string{"type"},
	)

	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "socialgraph_websocket_connections",
			Help: "Active relationship event stream connections",
		},
	)

	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socialgraph_events_published_total",
			Help: "Relationship events published to stream subscribers, by type",
		},
		[]string{"type"},
	)

	RelationshipsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socialgraph_relationships_rejected_total",
			Help: "Relationship creations refused by policy, by reason",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		TraversalDuration, NodesVisited,
		CacheRequests, AnalyticsDuration,
		RelationshipsCreated, RelationshipsRejected,
		WSConnections, EventsPublished,
	)
}

// RegisterPoolStats exposes database pool connection counts read from stats on each scrape.
func RegisterPoolStats(stats func() (total, idle, acquired int32)) error {
	for _, g := range []struct {
		state string
		pick  func(total, idle, acquired int32) int32
	}{
		{"total", func(t, _, _ int32) int32 { return t }},
		{"idle", func(_, i, _ int32) int32 { return i }},
		{"acquired", func(_, _, a int32) int32 { return a }},
	} {
		pick := g.pick
		gauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name:        "socialgraph_db_pool_connections",
			Help:        "Database pool connections by state",
			ConstLabels: prometheus.Labels{"state": g.state},
		}, func() float64 {
			return float64(pick(stats()))
		})

		if err := prometheus.Register(gauge); err != nil {
			return fmt.Errorf("registering pool gauge %s: %w", g.state, err)
		}
	}

	return nil
}
