package main

import (
	"database/sql"
	"net/http"
	"os"

	"windpark-cloud/internal/audit"
	"windpark-cloud/internal/auth"
	"windpark-cloud/internal/config"
	"windpark-cloud/internal/logger"
	masterdatarepo "windpark-cloud/internal/masterdata/infrastructure/postgres"
	"windpark-cloud/internal/observability/metrics"
	productionapp "windpark-cloud/internal/production/application"
	productionrepo "windpark-cloud/internal/production/infrastructure/postgres"
	settlementapp "windpark-cloud/internal/settlement/application"
	settlementrepo "windpark-cloud/internal/settlement/infrastructure/postgres"
	settlementinterfaces "windpark-cloud/internal/settlement/interfaces"
	settlementreport "windpark-cloud/internal/settlement/interfaces/report"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load(os.Getenv("WPC_CONFIG"))
	if err != nil {
		// No logger yet; config failures go straight to stderr.
		println("config error:", err.Error())
		os.Exit(1)
	}
	log := logger.New("windpark-cloud", cfg.Logging.Level)

	db, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db open error")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db ping error")
	}

	metrics.Init(db, log)
	auditRepo := audit.NewRepository(db)

	factRepo := productionrepo.NewFactRepository(db)
	assignmentRepo := productionrepo.NewAssignmentRepository(db)
	turbineRepo := masterdatarepo.NewTurbineRepository(db)

	aggregator, err := productionapp.NewAggregator(factRepo, assignmentRepo, turbineRepo, log)
	if err != nil {
		log.Fatal().Err(err).Msg("aggregator error")
	}

	settlementRepo := settlementrepo.NewSettlementRepository(db)
	recalcService, err := settlementapp.NewRecalculationService(
		settlementRepo, aggregator, settlementapp.SystemClock{}, cfg.Tenant.ID, log)
	if err != nil {
		log.Fatal().Err(err).Msg("recalculation service error")
	}

	reportHandler, err := settlementreport.NewHandler(recalcService, log)
	if err != nil {
		log.Fatal().Err(err).Msg("report handler error")
	}
	settlementHandler, err := settlementinterfaces.NewSettlementHandler(recalcService, auditRepo, reportHandler, log)
	if err != nil {
		log.Fatal().Err(err).Msg("settlement handler error")
	}

	authMiddleware := auth.NewMiddleware([]byte(cfg.Auth.JWTSecret))

	mux := http.NewServeMux()
	mux.Handle("/api/v1/settlements/", authMiddleware.Wrap(settlementHandler))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	log.Info().Str("addr", cfg.HTTP.Addr).Msg("listening")
	if err := http.ListenAndServe(cfg.HTTP.Addr, mux); err != nil {
		log.Fatal().Err(err).Msg("http server error")
	}
}
