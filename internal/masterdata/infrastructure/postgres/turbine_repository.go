package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	masterdata "windpark-cloud/internal/masterdata/domain"
)

// DBTX is the subset of *sql.DB / *sql.Tx the repositories need.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const (
	defaultTurbinesTable = "turbines"
	defaultFundsTable    = "operator_funds"
)

// TurbineRepository is a Postgres implementation for turbines and funds.
type TurbineRepository struct {
	db            DBTX
	turbinesTable string
	fundsTable    string
}

// TurbineOption configures the repository.
type TurbineOption func(*TurbineRepository)

// WithTurbinesTable overrides the default turbines table name.
func WithTurbinesTable(table string) TurbineOption {
	return func(repo *TurbineRepository) {
		if table != "" {
			repo.turbinesTable = table
		}
	}
}

// WithFundsTable overrides the default funds table name.
func WithFundsTable(table string) TurbineOption {
	return func(repo *TurbineRepository) {
		if table != "" {
			repo.fundsTable = table
		}
	}
}

// NewTurbineRepository constructs a repository.
func NewTurbineRepository(db DBTX, opts ...TurbineOption) *TurbineRepository {
	repo := &TurbineRepository{db: db, turbinesTable: defaultTurbinesTable, fundsTable: defaultFundsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// ListByPark loads all turbines of a park.
func (r *TurbineRepository) ListByPark(ctx context.Context, tenantID, parkID string) ([]masterdata.Turbine, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("turbine repo: nil db")
	}
	if tenantID == "" {
		return nil, errors.New("turbine repo: empty tenant id")
	}
	if parkID == "" {
		return nil, errors.New("turbine repo: empty park id")
	}

	query := fmt.Sprintf(`
SELECT id, tenant_id, park_id, label, rated_kw, created_at, updated_at
FROM %s
WHERE tenant_id = $1 AND park_id = $2
ORDER BY id`, r.turbinesTable)

	rows, err := r.db.QueryContext(ctx, query, tenantID, parkID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turbines []masterdata.Turbine
	for rows.Next() {
		var t masterdata.Turbine
		if err := rows.Scan(&t.ID, &t.TenantID, &t.ParkID, &t.Label, &t.RatedKW, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		turbines = append(turbines, t)
	}
	return turbines, rows.Err()
}

// SaveTurbine upserts a turbine.
func (r *TurbineRepository) SaveTurbine(ctx context.Context, turbine *masterdata.Turbine) error {
	if r == nil || r.db == nil {
		return errors.New("turbine repo: nil db")
	}
	if turbine == nil {
		return errors.New("turbine repo: nil turbine")
	}
	if err := turbine.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (id, tenant_id, park_id, label, rated_kw, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
ON CONFLICT (id)
DO UPDATE SET park_id = EXCLUDED.park_id, label = EXCLUDED.label, rated_kw = EXCLUDED.rated_kw, updated_at = NOW()`, r.turbinesTable)

	_, err := r.db.ExecContext(ctx, query, turbine.ID, turbine.TenantID, turbine.ParkID, turbine.Label, turbine.RatedKW)
	return err
}

// ListFunds loads all operator funds of a tenant.
func (r *TurbineRepository) ListFunds(ctx context.Context, tenantID string) ([]masterdata.OperatorFund, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("turbine repo: nil db")
	}
	if tenantID == "" {
		return nil, errors.New("turbine repo: empty tenant id")
	}

	query := fmt.Sprintf(`
SELECT id, tenant_id, label, created_at, updated_at
FROM %s
WHERE tenant_id = $1
ORDER BY id`, r.fundsTable)

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var funds []masterdata.OperatorFund
	for rows.Next() {
		var f masterdata.OperatorFund
		if err := rows.Scan(&f.ID, &f.TenantID, &f.Label, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		funds = append(funds, f)
	}
	return funds, rows.Err()
}

// SaveFund upserts an operator fund.
func (r *TurbineRepository) SaveFund(ctx context.Context, fund *masterdata.OperatorFund) error {
	if r == nil || r.db == nil {
		return errors.New("turbine repo: nil db")
	}
	if fund == nil {
		return errors.New("turbine repo: nil fund")
	}
	if err := fund.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (id, tenant_id, label, created_at, updated_at)
VALUES ($1, $2, $3, NOW(), NOW())
ON CONFLICT (id)
DO UPDATE SET label = EXCLUDED.label, updated_at = NOW()`, r.fundsTable)

	_, err := r.db.ExecContext(ctx, query, fund.ID, fund.TenantID, fund.Label)
	return err
}

// TurbineLabels returns id -> label for a park's turbines.
func (r *TurbineRepository) TurbineLabels(ctx context.Context, tenantID, parkID string) (map[string]string, error) {
	turbines, err := r.ListByPark(ctx, tenantID, parkID)
	if err != nil {
		return nil, err
	}
	labels := make(map[string]string, len(turbines))
	for _, t := range turbines {
		labels[t.ID] = t.Label
	}
	return labels, nil
}

// FundLabels returns id -> label for a tenant's operator funds.
func (r *TurbineRepository) FundLabels(ctx context.Context, tenantID string) (map[string]string, error) {
	funds, err := r.ListFunds(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	labels := make(map[string]string, len(funds))
	for _, f := range funds {
		labels[f.ID] = f.Label
	}
	return labels, nil
}
