package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/forcegraph/pkg/observability"
)

// Metrics exports simulation, cache and HTTP activity to Prometheus. It
// implements every observability hook interface; Register installs it.
type Metrics struct {
	namespace string
	registry  *prometheus.Registry

	layouts        *prometheus.CounterVec
	layoutDuration prometheus.Histogram
	layoutTicks    prometheus.Histogram
	ticks          prometheus.Counter
	alpha          prometheus.Gauge
	instabilities  prometheus.Counter

	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	cacheBytes  *prometheus.CounterVec

	requests      *prometheus.CounterVec
	inFlight      prometheus.Gauge
	duration      *prometheus.HistogramVec
	handlerErrors *prometheus.CounterVec
}

// NewMetrics creates the collectors in their own registry under namespace.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		namespace: namespace,
		registry:  prometheus.NewRegistry(),

		layouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layouts_total",
			Help:      "Batch layouts run, by outcome.",
		}, []string{"status"}),
		layoutDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_duration_seconds",
			Help:      "Time to settle a batch layout.",
			Buckets:   prometheus.DefBuckets,
		}),
		layoutTicks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_ticks",
			Help:      "Ticks run by a batch layout.",
			Buckets:   prometheus.LinearBuckets(50, 50, 20),
		}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulation_ticks_total",
			Help:      "Simulation ticks across all engines.",
		}),
		alpha: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "simulation_alpha",
			Help:      "Alpha after the most recent tick.",
		}),
		instabilities: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulation_instabilities_total",
			Help:      "Nodes restored after a non-finite update.",
		}),

		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Cache hits by key type.",
		}, []string{"type"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Cache misses by key type.",
		}, []string{"type"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache by key type.",
		}, []string{"type"}),

		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests being served.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		handlerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "Handler failures by route.",
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		m.layouts, m.layoutDuration, m.layoutTicks, m.ticks, m.alpha, m.instabilities,
		m.cacheHits, m.cacheMisses, m.cacheBytes,
		m.requests, m.inFlight, m.duration, m.handlerErrors,
	)
	return m
}

// Register installs m as the process-wide simulation, cache and HTTP hooks.
func (m *Metrics) Register() {
	observability.SetSimulationHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// TrackSessions exports the value of count as the live session gauge.
func (m *Metrics) TrackSessions(count func() int) error {
	return m.registry.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "sessions",
		Help:      "Live layout sessions.",
	}, func() float64 { return float64(count()) }))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Simulation hooks

func (m *Metrics) OnLayoutStart(context.Context, int, int) {}

func (m *Metrics) OnLayoutComplete(_ context.Context, ticks int, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.layouts.WithLabelValues(status).Inc()
	m.layoutDuration.Observe(d.Seconds())
	m.layoutTicks.Observe(float64(ticks))
}

func (m *Metrics) OnTick(_ int, alpha float64) {
	m.ticks.Inc()
	m.alpha.Set(alpha)
}

func (m *Metrics) OnInstability(int, string) { m.instabilities.Inc() }

// Cache hooks

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheHits.WithLabelValues(keyType).Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheMisses.WithLabelValues(keyType).Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// HTTP hooks

func (m *Metrics) OnRequest(context.Context, string, string) { m.inFlight.Inc() }

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.inFlight.Dec()
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, method, route string, _ error) {
	m.handlerErrors.WithLabelValues(method, route).Inc()
}

var (
	_ observability.SimulationHooks = (*Metrics)(nil)
	_ observability.CacheHooks      = (*Metrics)(nil)
	_ observability.HTTPHooks       = (*Metrics)(nil)
)
