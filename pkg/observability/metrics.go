package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application. Each collector
// owns its registry so tests can create as many as they like.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Engine metrics
	Mutations    *prometheus.CounterVec
	Rejections   *prometheus.CounterVec
	HistoryMoves *prometheus.CounterVec
	HistoryDepth prometheus.Gauge

	// Layout metrics
	LayoutRuns     *prometheus.CounterVec
	LayoutDuration *prometheus.HistogramVec

	// Command bus metrics
	Commands        *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec

	// Query bus metrics
	Queries *prometheus.CounterVec

	// Cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
}

// NewCollector creates a new metrics collector with the given namespace
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		Mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "map_mutations_total",
			Help:      "Mutations applied to the current map",
		}, []string{"operation"}),
		Rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "map_mutations_rejected_total",
			Help:      "Mutations refused because they would break a map invariant",
		}, []string{"operation", "reason"}),
		HistoryMoves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_moves_total",
			Help:      "Undo and redo steps taken",
		}, []string{"direction"}),
		HistoryDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_depth",
			Help:      "Number of undoable snapshots held",
		}),
		LayoutRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layout_runs_total",
			Help:      "Layout runs by mode and outcome",
		}, []string{"mode", "outcome"}),
		LayoutDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_duration_seconds",
			Help:      "Time spent computing layouts",
			Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5},
		}, []string{"mode"}),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands dispatched through the command bus",
		}, []string{"command", "status"}),
		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Command handling time",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command"}),
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Queries answered through the query bus",
		}, []string{"query", "status"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layout_cache_hits_total",
			Help:      "Layout results served from cache",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layout_cache_misses_total",
			Help:      "Layout results computed because no cached result existed",
		}),
	}

	c.registry.MustRegister(
		c.HTTPRequests, c.HTTPDuration,
		c.Mutations, c.Rejections, c.HistoryMoves, c.HistoryDepth,
		c.LayoutRuns, c.LayoutDuration,
		c.Commands, c.CommandDuration,
		c.Queries,
		c.CacheHits, c.CacheMisses,
	)
	return c
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's metrics in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) MutationApplied(op string) {
	c.Mutations.WithLabelValues(op).Inc()
}

func (c *Collector) MutationRejected(op, reason string) {
	c.Rejections.WithLabelValues(op, reason).Inc()
}

func (c *Collector) HistoryMoved(direction string) {
	c.HistoryMoves.WithLabelValues(direction).Inc()
}

func (c *Collector) HistoryDepthChanged(n int) {
	c.HistoryDepth.Set(float64(n))
}

// LayoutFinished records one layout run. outcome is "ok" or "fallback".
func (c *Collector) LayoutFinished(mode, outcome string, d time.Duration) {
	c.LayoutRuns.WithLabelValues(mode, outcome).Inc()
	c.LayoutDuration.WithLabelValues(mode).Observe(d.Seconds())
}

func (c *Collector) CacheHit()  { c.CacheHits.Inc() }
func (c *Collector) CacheMiss() { c.CacheMisses.Inc() }

// RecordHTTPRequest records an HTTP request
func (c *Collector) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordCommand records a command bus dispatch
func (c *Collector) RecordCommand(name string, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	c.Commands.WithLabelValues(name, status).Inc()
	c.CommandDuration.WithLabelValues(name).Observe(d.Seconds())
}

// RecordQuery records a query bus dispatch
func (c *Collector) RecordQuery(name string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	c.Queries.WithLabelValues(name, status).Inc()
}
