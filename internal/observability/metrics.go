// Package observability exposes Prometheus metrics for analysis runs.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AngelCh415/adperf/internal/models"
)

// Run outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeCached      = "cached"
	OutcomeFormatError = "format_error"
	OutcomeError       = "error"
)

type Metrics struct {
	RunsTotal         *prometheus.CounterVec
	RowsAnalyzed      prometheus.Counter
	AnomaliesDetected prometheus.Counter
	QualityWarnings   *prometheus.CounterVec
	RunDuration       prometheus.Histogram
	SettingsReloads   *prometheus.CounterVec
	StoredReports     prometheus.Gauge
}

// NewMetrics registers all metrics on reg.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = "adperf"
	}
	f := promauto.With(reg)

	return &Metrics{
		RunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "runs_total",
			Help:      "Analysis runs by outcome",
		}, []string{"outcome"}),
		RowsAnalyzed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "rows_analyzed_total",
			Help:      "Total ad rows analyzed",
		}),
		AnomaliesDetected: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "anomalies_detected_total",
			Help:      "Total anomalous ads detected",
		}),
		QualityWarnings: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "quality_warnings_total",
			Help:      "Data quality warnings by kind",
		}, []string{"kind"}),
		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "run_duration_seconds",
			Help:      "Time spent loading and analyzing one upload",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		SettingsReloads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settings",
			Name:      "reloads_total",
			Help:      "Settings file reloads by result",
		}, []string{"result"}),
		StoredReports: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "reports",
			Help:      "Reports currently held in memory",
		}),
	}
}

// ObserveRun records a finished analysis.
func (m *Metrics) ObserveRun(r models.Report, took time.Duration) {
	m.RunsTotal.WithLabelValues(OutcomeOK).Inc()
	m.RowsAnalyzed.Add(float64(len(r.Ads)))
	m.AnomaliesDetected.Add(float64(len(r.Anomalies)))
	for _, w := range r.Quality.Warnings {
		m.QualityWarnings.WithLabelValues(w.Kind).Inc()
	}
	m.RunDuration.Observe(took.Seconds())
}

// ObserveOutcome counts a run that did not produce a new report.
func (m *Metrics) ObserveOutcome(outcome string) {
	m.RunsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveReload(err error) {
	if err != nil {
		m.SettingsReloads.WithLabelValues("error").Inc()
		return
	}
	m.SettingsReloads.WithLabelValues("ok").Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
