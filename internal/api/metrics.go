package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Parse outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// Reload results.
const (
	ReloadApplied   = "applied"
	ReloadUnchanged = "unchanged"
	ReloadFailed    = "failed"
)

// Metrics holds the server's collectors on a private registry, so several
// servers can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	parses        *prometheus.CounterVec
	parseDuration *prometheus.HistogramVec
	reloads       *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
	wsClients     prometheus.Gauge
	catalogBooks  prometheus.Gauge
}

// NewMetrics registers lectio's collectors plus the Go runtime collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		parses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lectio_parses_total",
			Help: "Citations parsed, by transport and outcome",
		}, []string{"transport", "outcome"}),
		parseDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lectio_parse_duration_seconds",
			Help:    "Time to resolve one citation",
			Buckets: []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .05},
		}, []string{"transport"}),
		reloads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lectio_catalog_reloads_total",
			Help: "Catalog reload attempts, by result",
		}, []string{"result"}),
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lectio_parse_cache_lookups_total",
			Help: "Parse result cache lookups, by result",
		}, []string{"result"}),
		wsClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "lectio_websocket_clients",
			Help: "Connected WebSocket clients",
		}),
		catalogBooks: factory.NewGauge(prometheus.GaugeOpts{
			Name: "lectio_catalog_books",
			Help: "Books in the serving catalog",
		}),
	}
}

// ObserveParse records one parse.
func (m *Metrics) ObserveParse(transport, outcome string, d time.Duration) {
	m.parses.WithLabelValues(transport, outcome).Inc()
	m.parseDuration.WithLabelValues(transport).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
