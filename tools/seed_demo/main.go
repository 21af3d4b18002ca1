// seed_demo loads a YAML fixture of parks, turbines, funds, assignments and
// production facts into Postgres and creates a DRAFT settlement per park, so
// a recalculation can be exercised locally end to end.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"gopkg.in/yaml.v3"
)

type fixture struct {
	TenantID string `yaml:"tenant_id"`
	Funds    []struct {
		ID    string `yaml:"id"`
		Label string `yaml:"label"`
	} `yaml:"funds"`
	Parks []struct {
		ID       string `yaml:"id"`
		Name     string `yaml:"name"`
		Turbines []struct {
			ID     string `yaml:"id"`
			Label  string `yaml:"label"`
			FundID string `yaml:"fund_id"`
			Facts  []struct {
				Year      int     `yaml:"year"`
				Month     int     `yaml:"month"`
				EnergyKWh float64 `yaml:"energy_kwh"`
			} `yaml:"facts"`
		} `yaml:"turbines"`
		Settlement struct {
			Year            int     `yaml:"year"`
			Month           int     `yaml:"month"`
			TotalRevenue    float64 `yaml:"total_revenue"`
			Policy          string  `yaml:"policy"`
			SmoothingFactor float64 `yaml:"smoothing_factor"`
			TolerancePct    float64 `yaml:"tolerance_pct"`
		} `yaml:"settlement"`
	} `yaml:"parks"`
}

func main() {
	var (
		dsn         = flag.String("dsn", os.Getenv("PG_DSN"), "postgres dsn")
		fixturePath = flag.String("fixture", "tools/seed_demo/fixture.yaml", "fixture file")
	)
	flag.Parse()

	if *dsn == "" {
		log.Fatal("PG_DSN or -dsn is required")
	}

	raw, err := os.ReadFile(*fixturePath)
	if err != nil {
		log.Fatalf("read fixture: %v", err)
	}
	var fx fixture
	if err := yaml.Unmarshal(raw, &fx); err != nil {
		log.Fatalf("parse fixture: %v", err)
	}
	if fx.TenantID == "" {
		log.Fatal("fixture: tenant_id is required")
	}

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := seed(ctx, db, fx); err != nil {
		log.Fatalf("seed: %v", err)
	}
	log.Printf("seeded %d parks for tenant %s", len(fx.Parks), fx.TenantID)
}

func seed(ctx context.Context, db *sql.DB, fx fixture) error {
	for _, fund := range fx.Funds {
		if _, err := db.ExecContext(ctx, `
INSERT INTO operator_funds (id, tenant_id, label) VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET label = EXCLUDED.label, updated_at = NOW()`,
			fund.ID, fx.TenantID, fund.Label); err != nil {
			return fmt.Errorf("fund %s: %w", fund.ID, err)
		}
	}

	for _, park := range fx.Parks {
		if _, err := db.ExecContext(ctx, `
INSERT INTO parks (id, tenant_id, name) VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, updated_at = NOW()`,
			park.ID, fx.TenantID, park.Name); err != nil {
			return fmt.Errorf("park %s: %w", park.ID, err)
		}

		for _, turbine := range park.Turbines {
			if _, err := db.ExecContext(ctx, `
INSERT INTO turbines (id, tenant_id, park_id, label) VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET label = EXCLUDED.label, updated_at = NOW()`,
				turbine.ID, fx.TenantID, park.ID, turbine.Label); err != nil {
				return fmt.Errorf("turbine %s: %w", turbine.ID, err)
			}
			if _, err := db.ExecContext(ctx, `
INSERT INTO operator_assignments (id, turbine_id, fund_id, start_date)
VALUES ($1, $2, $3, $4)`,
				uuid.NewString(), turbine.ID, turbine.FundID, time.Now().UTC().AddDate(-1, 0, 0)); err != nil {
				return fmt.Errorf("assignment for %s: %w", turbine.ID, err)
			}
			for _, fact := range turbine.Facts {
				if _, err := db.ExecContext(ctx, `
INSERT INTO production_facts (id, tenant_id, park_id, turbine_id, year, month, energy_kwh)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
					uuid.NewString(), fx.TenantID, park.ID, turbine.ID, fact.Year, fact.Month, fact.EnergyKWh); err != nil {
					return fmt.Errorf("fact for %s: %w", turbine.ID, err)
				}
			}
		}

		s := park.Settlement
		if s.Year == 0 {
			continue
		}
		if s.Policy == "" {
			s.Policy = "PROPORTIONAL"
		}
		settlementID := fmt.Sprintf("stl-%s-%d-%02d", park.ID, s.Year, s.Month)
		if _, err := db.ExecContext(ctx, `
INSERT INTO settlements (id, tenant_id, park_id, year, month, total_revenue, policy, smoothing_factor, tolerance_pct, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'DRAFT')
ON CONFLICT (tenant_id, park_id, year, month) DO NOTHING`,
			settlementID, fx.TenantID, park.ID, s.Year, s.Month, s.TotalRevenue, s.Policy, s.SmoothingFactor, s.TolerancePct); err != nil {
			return fmt.Errorf("settlement %s: %w", settlementID, err)
		}
	}
	return nil
}
