package integration_test

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"os"
	"testing"
	"time"

	masterdatarepo "windpark-cloud/internal/masterdata/infrastructure/postgres"
	productionapp "windpark-cloud/internal/production/application"
	productionrepo "windpark-cloud/internal/production/infrastructure/postgres"
	settlementapp "windpark-cloud/internal/settlement/application"
	settlement "windpark-cloud/internal/settlement/domain"
	settlementrepo "windpark-cloud/internal/settlement/infrastructure/postgres"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

func TestRecalculateClosedLoop_Postgres(t *testing.T) {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if !tableExists(db, "parks") ||
		!tableExists(db, "turbines") ||
		!tableExists(db, "operator_funds") ||
		!tableExists(db, "operator_assignments") ||
		!tableExists(db, "production_facts") ||
		!tableExists(db, "settlements") ||
		!tableExists(db, "settlement_line_items") {
		t.Skip("missing tables; run migrations")
	}

	ctx := context.Background()
	tenantID := "tenant-it"
	parkID := "park-it-001"
	settlementID := "stl-it-001"
	year := 2025

	cleanup(ctx, t, db, tenantID, parkID, settlementID)
	t.Cleanup(func() { cleanup(ctx, t, db, tenantID, parkID, settlementID) })

	seedPark(ctx, t, db, tenantID, parkID, year)

	settlementStore := settlementrepo.NewSettlementRepository(db)
	if err := settlementStore.Create(ctx, &settlement.Settlement{
		ID:           settlementID,
		TenantID:     tenantID,
		ParkID:       parkID,
		Year:         year,
		Month:        0,
		TotalRevenue: 1000,
		Currency:     "EUR",
		Policy:       settlement.PolicyProportional,
		Status:       settlement.StatusDraft,
	}); err != nil {
		t.Fatalf("create settlement: %v", err)
	}

	aggregator, err := productionapp.NewAggregator(
		productionrepo.NewFactRepository(db),
		productionrepo.NewAssignmentRepository(db),
		masterdatarepo.NewTurbineRepository(db),
		zerolog.Nop(),
	)
	if err != nil {
		t.Fatalf("new aggregator: %v", err)
	}
	service, err := settlementapp.NewRecalculationService(settlementStore, aggregator, settlementapp.SystemClock{}, tenantID, zerolog.Nop())
	if err != nil {
		t.Fatalf("new recalculation service: %v", err)
	}

	first, err := service.Recalculate(ctx, settlementID)
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if first.Settlement.Status != settlement.StatusCalculated {
		t.Fatalf("status mismatch: got=%s want=%s", first.Settlement.Status, settlement.StatusCalculated)
	}
	if len(first.LineItems) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(first.LineItems))
	}
	if first.LineItems[0].Amount != 600 || first.LineItems[1].Amount != 400 {
		t.Fatalf("amount mismatch: got=%v/%v want=600/400", first.LineItems[0].Amount, first.LineItems[1].Amount)
	}

	stored, items, err := service.Get(ctx, settlementID)
	if err != nil {
		t.Fatalf("get settlement: %v", err)
	}
	if stored.Audit == nil {
		t.Fatal("audit record missing after recalculation")
	}
	if stored.Audit.TotalProductionKWh != 1000 {
		t.Fatalf("audit total production mismatch: got=%v want=1000", stored.Audit.TotalProductionKWh)
	}
	sum := 0.0
	for _, item := range items {
		sum += item.Amount
	}
	if math.Abs(sum-1000) > 0.02 {
		t.Fatalf("line item amounts do not conserve revenue: got=%v want=1000", sum)
	}

	// Recalculating a CALCULATED settlement replaces, never accumulates.
	second, err := service.Recalculate(ctx, settlementID)
	if err != nil {
		t.Fatalf("second recalculate: %v", err)
	}
	if len(second.LineItems) != len(first.LineItems) {
		t.Fatalf("line item count changed: got=%d want=%d", len(second.LineItems), len(first.LineItems))
	}
	for i := range second.LineItems {
		if second.LineItems[i] != first.LineItems[i] {
			t.Fatalf("line item %d not identical across recalculations: got=%+v want=%+v",
				i, second.LineItems[i], first.LineItems[i])
		}
	}

	// Invoiced settlements are immutable.
	if _, err := db.ExecContext(ctx, "UPDATE settlements SET status = 'INVOICED' WHERE id = $1", settlementID); err != nil {
		t.Fatalf("mark invoiced: %v", err)
	}
	if _, err := service.Recalculate(ctx, settlementID); !errors.Is(err, settlement.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus for invoiced settlement, got %v", err)
	}
}

func seedPark(ctx context.Context, t *testing.T, db *sql.DB, tenantID, parkID string, year int) {
	t.Helper()

	if _, err := db.ExecContext(ctx,
		"INSERT INTO parks (id, tenant_id, name) VALUES ($1, $2, 'Integration Park')", parkID, tenantID); err != nil {
		t.Fatalf("seed park: %v", err)
	}
	for _, fund := range []string{"fund-it-a", "fund-it-b"} {
		if _, err := db.ExecContext(ctx,
			"INSERT INTO operator_funds (id, tenant_id, label) VALUES ($1, $2, $1) ON CONFLICT (id) DO NOTHING", fund, tenantID); err != nil {
			t.Fatalf("seed fund: %v", err)
		}
	}

	turbines := []struct {
		id     string
		fundID string
		kwh    float64
	}{
		{"wt-it-01", "fund-it-a", 600},
		{"wt-it-02", "fund-it-b", 400},
	}
	start := time.Date(year-1, time.January, 1, 0, 0, 0, 0, time.UTC)
	for _, turbine := range turbines {
		if _, err := db.ExecContext(ctx,
			"INSERT INTO turbines (id, tenant_id, park_id, label) VALUES ($1, $2, $3, $1)",
			turbine.id, tenantID, parkID); err != nil {
			t.Fatalf("seed turbine: %v", err)
		}
		if _, err := db.ExecContext(ctx,
			"INSERT INTO operator_assignments (id, turbine_id, fund_id, start_date) VALUES ($1, $2, $3, $4)",
			uuid.NewString(), turbine.id, turbine.fundID, start); err != nil {
			t.Fatalf("seed assignment: %v", err)
		}
		if _, err := db.ExecContext(ctx,
			"INSERT INTO production_facts (id, tenant_id, park_id, turbine_id, year, month, energy_kwh) VALUES ($1, $2, $3, $4, $5, 1, $6)",
			uuid.NewString(), tenantID, parkID, turbine.id, year, turbine.kwh); err != nil {
			t.Fatalf("seed fact: %v", err)
		}
	}
}

func cleanup(ctx context.Context, t *testing.T, db *sql.DB, tenantID, parkID, settlementID string) {
	t.Helper()
	_, _ = db.ExecContext(ctx, "DELETE FROM settlement_line_items WHERE settlement_id = $1", settlementID)
	_, _ = db.ExecContext(ctx, "DELETE FROM settlements WHERE id = $1", settlementID)
	_, _ = db.ExecContext(ctx, "DELETE FROM production_facts WHERE tenant_id = $1 AND park_id = $2", tenantID, parkID)
	_, _ = db.ExecContext(ctx, "DELETE FROM operator_assignments WHERE turbine_id IN (SELECT id FROM turbines WHERE park_id = $1)", parkID)
	_, _ = db.ExecContext(ctx, "DELETE FROM turbines WHERE park_id = $1", parkID)
	_, _ = db.ExecContext(ctx, "DELETE FROM operator_funds WHERE id IN ('fund-it-a', 'fund-it-b')")
	_, _ = db.ExecContext(ctx, "DELETE FROM parks WHERE id = $1", parkID)
}

func tableExists(db *sql.DB, name string) bool {
	var exists bool
	err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)", name).Scan(&exists)
	return err == nil && exists
}
