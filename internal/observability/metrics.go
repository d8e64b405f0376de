// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Candle access metrics
	CandlesRead    *prometheus.CounterVec
	MarketsListed  prometheus.Counter
	CandleReadErrs *prometheus.CounterVec
	StoreQueryTime *prometheus.HistogramVec

	// Pipeline metrics
	PipelineRunsTotal *prometheus.CounterVec
	PipelineDuration  *prometheus.HistogramVec
	MarketsProcessed  *prometheus.CounterVec
	MarketsSkipped    *prometheus.CounterVec

	// Analytics metrics
	MetricRecordsExtracted prometheus.Counter
	DistributionsBuilt     prometheus.Counter
	ScoresComputed         prometheus.Counter
	DegenerateScores       prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "deviation_engine"
	}

	return &Metrics{
		CandlesRead: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "candles_read_total",
			Help:      "Total number of candle bars read, by exchange",
		}, []string{"exchange"}),
		MarketsListed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "markets_listed_total",
			Help:      "Total number of market keys enumerated",
		}),
		CandleReadErrs: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "candle_read_errors_total",
			Help:      "Total number of candle read errors, by kind",
		}, []string{"kind"}),
		StoreQueryTime: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "query_duration_seconds",
			Help:      "Candle store query latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),

		PipelineRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total pipeline runs, by pipeline and status",
		}, []string{"pipeline", "status"}),
		PipelineDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Pipeline run duration",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		}, []string{"pipeline"}),
		MarketsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "markets_processed_total",
			Help:      "Total markets successfully processed, by pipeline",
		}, []string{"pipeline"}),
		MarketsSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "markets_skipped_total",
			Help:      "Total markets skipped with a reason, by pipeline",
		}, []string{"pipeline"}),

		MetricRecordsExtracted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "metric_records_extracted_total",
			Help:      "Total per-period metric records extracted",
		}),
		DistributionsBuilt: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "distributions_built_total",
			Help:      "Total reference distributions built",
		}),
		ScoresComputed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "scores_computed_total",
			Help:      "Total deviation scores computed",
		}),
		DegenerateScores: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "degenerate_scores_total",
			Help:      "Total scores carrying the zero-dispersion infinity sentinel",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordCandlesRead adds to the candles read counter for an exchange.
func RecordCandlesRead(exchange string, n int) {
	DefaultMetrics.CandlesRead.WithLabelValues(exchange).Add(float64(n))
}

// RecordCandleReadError records a candle read failure by kind.
func RecordCandleReadError(kind string) {
	DefaultMetrics.CandleReadErrs.WithLabelValues(kind).Inc()
}

// RecordPipelineRun records one pipeline run outcome with its duration.
func RecordPipelineRun(pipeline, status string, durationSeconds float64) {
	DefaultMetrics.PipelineRunsTotal.WithLabelValues(pipeline, status).Inc()
	DefaultMetrics.PipelineDuration.WithLabelValues(pipeline).Observe(durationSeconds)
}

// RecordMarketProcessed increments the processed counter for a pipeline.
func RecordMarketProcessed(pipeline string) {
	DefaultMetrics.MarketsProcessed.WithLabelValues(pipeline).Inc()
}

// RecordMarketSkipped increments the skipped counter for a pipeline.
func RecordMarketSkipped(pipeline string) {
	DefaultMetrics.MarketsSkipped.WithLabelValues(pipeline).Inc()
}

// RecordScore counts one computed score, tracking degenerate sentinels.
func RecordScore(degenerate bool) {
	DefaultMetrics.ScoresComputed.Inc()
	if degenerate {
		DefaultMetrics.DegenerateScores.Inc()
	}
}
