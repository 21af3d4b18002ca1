package metrics

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

func registerDBMetrics(db *sql.DB, log zerolog.Logger) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "settlements_draft_backlog",
			Help: "Settlements still in DRAFT status",
		},
		func() float64 {
			return queryCount(db, log, "SELECT COUNT(*) FROM settlements WHERE status = 'DRAFT'")
		},
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "settlements_calculated",
			Help: "Settlements in CALCULATED status awaiting invoicing",
		},
		func() float64 {
			return queryCount(db, log, "SELECT COUNT(*) FROM settlements WHERE status = 'CALCULATED'")
		},
	))
}

func queryCount(db *sql.DB, log zerolog.Logger, query string) float64 {
	if db == nil {
		return 0
	}
	var count int64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		log.Error().Err(err).Msg("metrics query failed")
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}
