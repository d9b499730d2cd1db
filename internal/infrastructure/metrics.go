package infrastructure

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go-data-explorer/internal/model"
)

// Metrics holds the Prometheus collectors of the explorer. It satisfies
// pipeline.Metrics.
type Metrics struct {
	registry *prometheus.Registry

	loads        prometheus.Counter
	strategies   *prometheus.CounterVec
	exports      *prometheus.CounterVec
	charts       *prometheus.CounterVec
	rows         prometheus.Gauge
	missingCells prometheus.Gauge
}

// NewMetrics creates the collectors on a private registry, together with the
// Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		loads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "explorer",
			Name:      "dataset_loads_total",
			Help:      "Number of dataset loads.",
		}),
		strategies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "explorer",
			Name:      "strategy_applications_total",
			Help:      "Number of missing-value strategy requests.",
		}, []string{"strategy", "applied"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "explorer",
			Name:      "exports_total",
			Help:      "Number of dataset exports.",
		}, []string{"format", "status"}),
		charts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "explorer",
			Name:      "chart_renders_total",
			Help:      "Number of chart renders.",
		}, []string{"kind", "status"}),
		rows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "explorer",
			Name:      "dataset_rows",
			Help:      "Rows in the current processed dataset.",
		}),
		missingCells: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "explorer",
			Name:      "dataset_missing_cells",
			Help:      "Missing cells in the current processed dataset.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.loads, m.strategies, m.exports, m.charts, m.rows, m.missingCells,
	)
	return m
}

func (m *Metrics) ObserveLoad(rows, missingCells int) {
	m.loads.Inc()
	m.rows.Set(float64(rows))
	m.missingCells.Set(float64(missingCells))
}

func (m *Metrics) ObserveStrategy(strategy model.Strategy, applied bool, rows, missingCells int) {
	label := string(strategy)
	if !strategy.Known() {
		// request paths are user input; keep label cardinality bounded
		label = "unknown"
	}
	m.strategies.WithLabelValues(label, strconv.FormatBool(applied)).Inc()
	m.rows.Set(float64(rows))
	m.missingCells.Set(float64(missingCells))
}

// ObserveExport counts a finished export.
func (m *Metrics) ObserveExport(result model.ExportResult) {
	m.exports.WithLabelValues(result.Type, status(result.Success)).Inc()
}

// ObserveChart counts a chart render.
func (m *Metrics) ObserveChart(kind string, err error) {
	m.charts.WithLabelValues(kind, status(err == nil)).Inc()
}

// Registry exposes the registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func status(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
