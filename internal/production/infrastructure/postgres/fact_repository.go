package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	production "windpark-cloud/internal/production/domain"
)

const defaultFactsTable = "production_facts"

// FactRepository reads raw production facts from Postgres.
type FactRepository struct {
	db    *sql.DB
	table string
}

// FactOption configures the repository.
type FactOption func(*FactRepository)

// WithFactsTable overrides the default facts table.
func WithFactsTable(table string) FactOption {
	return func(r *FactRepository) {
		if table != "" {
			r.table = table
		}
	}
}

// NewFactRepository constructs a repository with defaults.
func NewFactRepository(db *sql.DB, opts ...FactOption) *FactRepository {
	repo := &FactRepository{db: db, table: defaultFactsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// ListFacts returns all facts for a park and period. Month 0 selects the
// whole year.
func (r *FactRepository) ListFacts(ctx context.Context, tenantID, parkID string, year, month int) ([]production.Fact, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("fact repo: nil db")
	}
	if tenantID == "" {
		return nil, errors.New("fact repo: empty tenant id")
	}
	if parkID == "" {
		return nil, errors.New("fact repo: empty park id")
	}

	query := fmt.Sprintf(`
SELECT turbine_id, year, month, energy_kwh
FROM %s
WHERE tenant_id = $1 AND park_id = $2 AND year = $3 AND ($4 = 0 OR month = $4)
ORDER BY turbine_id, month`, r.table)

	rows, err := r.db.QueryContext(ctx, query, tenantID, parkID, year, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var facts []production.Fact
	for rows.Next() {
		var f production.Fact
		if err := rows.Scan(&f.TurbineID, &f.Year, &f.Month, &f.EnergyKWh); err != nil {
			return nil, err
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}
