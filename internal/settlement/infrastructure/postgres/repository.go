package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	settlement "windpark-cloud/internal/settlement/domain"
)

const (
	defaultSettlementsTable = "settlements"
	defaultLineItemsTable   = "settlement_line_items"
)

// SettlementRepository is a Postgres implementation of settlement.Repository.
type SettlementRepository struct {
	db          *sql.DB
	settlements string
	lineItems   string
}

// RepositoryOption configures the repository.
type RepositoryOption func(*SettlementRepository)

// WithSettlementsTable overrides the default settlements table.
func WithSettlementsTable(table string) RepositoryOption {
	return func(repo *SettlementRepository) {
		if table != "" {
			repo.settlements = table
		}
	}
}

// WithLineItemsTable overrides the default line items table.
func WithLineItemsTable(table string) RepositoryOption {
	return func(repo *SettlementRepository) {
		if table != "" {
			repo.lineItems = table
		}
	}
}

// NewSettlementRepository constructs a repository with defaults.
func NewSettlementRepository(db *sql.DB, opts ...RepositoryOption) *SettlementRepository {
	repo := &SettlementRepository{
		db:          db,
		settlements: defaultSettlementsTable,
		lineItems:   defaultLineItemsTable,
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// GetByID loads a settlement scoped to the tenant. Missing rows and rows
// owned by other tenants both yield (nil, nil).
func (r *SettlementRepository) GetByID(ctx context.Context, tenantID, id string) (*settlement.Settlement, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("settlement repo: nil db")
	}
	if tenantID == "" {
		return nil, errors.New("settlement repo: empty tenant id")
	}
	if id == "" {
		return nil, errors.New("settlement repo: empty id")
	}

	query := fmt.Sprintf(`
SELECT id, tenant_id, park_id, year, month, total_revenue, currency,
	policy, smoothing_factor, tolerance_pct, status, audit,
	created_at, updated_at, calculated_at
FROM %s
WHERE id = $1 AND tenant_id = $2
LIMIT 1`, r.settlements)

	var s settlement.Settlement
	var auditRaw []byte
	var calculatedAt sql.NullTime
	row := r.db.QueryRowContext(ctx, query, id, tenantID)
	if err := row.Scan(
		&s.ID, &s.TenantID, &s.ParkID, &s.Year, &s.Month, &s.TotalRevenue, &s.Currency,
		&s.Policy, &s.SmoothingFactor, &s.TolerancePct, &s.Status, &auditRaw,
		&s.CreatedAt, &s.UpdatedAt, &calculatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if calculatedAt.Valid {
		s.CalculatedAt = calculatedAt.Time
	}
	if len(auditRaw) > 0 {
		var audit settlement.CalculationAudit
		if err := json.Unmarshal(auditRaw, &audit); err != nil {
			return nil, fmt.Errorf("settlement repo: decode audit: %w", err)
		}
		s.Audit = &audit
	}
	return &s, nil
}

// Create inserts a new DRAFT settlement (used by seeding and tests; the
// surrounding CRUD layer normally owns creation).
func (r *SettlementRepository) Create(ctx context.Context, s *settlement.Settlement) error {
	if r == nil || r.db == nil {
		return errors.New("settlement repo: nil db")
	}
	if s == nil {
		return settlement.ErrNilSettlement
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id, tenant_id, park_id, year, month, total_revenue, currency,
	policy, smoothing_factor, tolerance_pct, status, created_at, updated_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,NOW(),NOW()
)`, r.settlements)

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.TenantID, s.ParkID, s.Year, s.Month, s.TotalRevenue, s.Currency,
		s.Policy, s.SmoothingFactor, s.TolerancePct, s.Status)
	return err
}

// ReplaceCalculation performs the atomic delete+insert+update inside one
// transaction. The settlement row is locked first, so a concurrent
// recalculation of the same settlement blocks here and then re-validates the
// status it finds.
func (r *SettlementRepository) ReplaceCalculation(ctx context.Context, s *settlement.Settlement, items []settlement.LineItem) error {
	if r == nil || r.db == nil {
		return errors.New("settlement repo: nil db")
	}
	if s == nil {
		return settlement.ErrNilSettlement
	}

	auditRaw, err := json.Marshal(s.Audit)
	if err != nil {
		return fmt.Errorf("settlement repo: encode audit: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	lockQuery := fmt.Sprintf(`SELECT status FROM %s WHERE id = $1 AND tenant_id = $2 FOR UPDATE`, r.settlements)
	var status string
	if err := tx.QueryRowContext(ctx, lockQuery, s.ID, s.TenantID).Scan(&status); err != nil {
		_ = tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return settlement.ErrNotFound
		}
		return err
	}
	if status != settlement.StatusDraft && status != settlement.StatusCalculated {
		_ = tx.Rollback()
		return settlement.ErrInvalidStatus
	}

	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE settlement_id = $1`, r.lineItems)
	if _, err := tx.ExecContext(ctx, deleteQuery, s.ID); err != nil {
		_ = tx.Rollback()
		return err
	}

	insertQuery := fmt.Sprintf(`
INSERT INTO %s (
	settlement_id, turbine_id, turbine_label, operator_fund_id, operator_fund_label,
	production_kwh, production_share_pct, amount, description,
	average_kwh, deviation_kwh, tolerance_adjustment
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
)`, r.lineItems)

	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, item := range items {
		if item.SettlementID != s.ID || item.TurbineID == "" {
			_ = tx.Rollback()
			return errors.New("settlement repo: invalid line item")
		}
		if _, err := stmt.ExecContext(ctx,
			item.SettlementID, item.TurbineID, item.TurbineLabel, item.OperatorFundID, item.OperatorFundLabel,
			item.ProductionKWh, item.ProductionSharePct, item.Amount, item.Description,
			nullFloat(item.AverageKWh), nullFloat(item.DeviationKWh), nullFloat(item.ToleranceAdjustment),
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	updateQuery := fmt.Sprintf(`
UPDATE %s
SET status = $1, audit = $2, calculated_at = $3, updated_at = $4
WHERE id = $5 AND tenant_id = $6`, r.settlements)
	if _, err := tx.ExecContext(ctx, updateQuery,
		s.Status, auditRaw, s.CalculatedAt, s.UpdatedAt, s.ID, s.TenantID); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// ListLineItems returns the settlement's line items ordered by turbine id.
func (r *SettlementRepository) ListLineItems(ctx context.Context, settlementID string) ([]settlement.LineItem, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("settlement repo: nil db")
	}
	if settlementID == "" {
		return nil, errors.New("settlement repo: empty settlement id")
	}

	query := fmt.Sprintf(`
SELECT settlement_id, turbine_id, turbine_label, operator_fund_id, operator_fund_label,
	production_kwh, production_share_pct, amount, description,
	average_kwh, deviation_kwh, tolerance_adjustment
FROM %s
WHERE settlement_id = $1
ORDER BY turbine_id`, r.lineItems)

	rows, err := r.db.QueryContext(ctx, query, settlementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []settlement.LineItem
	for rows.Next() {
		var item settlement.LineItem
		var average, deviation, adjustment sql.NullFloat64
		if err := rows.Scan(
			&item.SettlementID, &item.TurbineID, &item.TurbineLabel, &item.OperatorFundID, &item.OperatorFundLabel,
			&item.ProductionKWh, &item.ProductionSharePct, &item.Amount, &item.Description,
			&average, &deviation, &adjustment,
		); err != nil {
			return nil, err
		}
		item.AverageKWh = floatPtr(average)
		item.DeviationKWh = floatPtr(deviation)
		item.ToleranceAdjustment = floatPtr(adjustment)
		items = append(items, item)
	}
	return items, rows.Err()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	value := v.Float64
	return &value
}
