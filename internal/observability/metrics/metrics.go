package metrics

import (
	"database/sql"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const metricPrefix = "windpark_"

const (
	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	initOnce sync.Once

	recalcTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metricPrefix + "settlement_recalculations_total",
			Help: "Settlement recalculations by result",
		},
		[]string{"result"},
	)
	recalcDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    metricPrefix + "settlement_recalculation_seconds",
			Help:    "Settlement recalculation duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"result"},
	)
	aggregationWarnings = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: metricPrefix + "production_aggregation_warnings_total",
			Help: "Turbines excluded from allocation for data-quality reasons",
		},
	)
	reportTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metricPrefix + "settlement_reports_total",
			Help: "Settlement report exports by format and result",
		},
		[]string{"format", "result"},
	)
)

// Init registers all collectors. Safe to call once at startup; db may be nil
// in tests, which skips the database gauges.
func Init(db *sql.DB, log zerolog.Logger) {
	initOnce.Do(func() {
		prometheus.MustRegister(recalcTotal, recalcDuration, aggregationWarnings, reportTotal)
		if db != nil {
			registerDBMetrics(db, log)
		}
	})
}

// ObserveRecalculation records one recalculation attempt.
func ObserveRecalculation(result string, d time.Duration) {
	recalcTotal.WithLabelValues(result).Inc()
	recalcDuration.WithLabelValues(result).Observe(d.Seconds())
}

// CountAggregationWarnings records excluded turbines.
func CountAggregationWarnings(n int) {
	if n > 0 {
		aggregationWarnings.Add(float64(n))
	}
}

// ObserveReport records one report export.
func ObserveReport(format, result string) {
	reportTotal.WithLabelValues(format, result).Inc()
}
