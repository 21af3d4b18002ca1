package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	production "windpark-cloud/internal/production/domain"
)

const defaultAssignmentsTable = "operator_assignments"

// AssignmentRepository reads turbine-to-fund operator assignments.
type AssignmentRepository struct {
	db    *sql.DB
	table string
}

// AssignmentOption configures the repository.
type AssignmentOption func(*AssignmentRepository)

// WithAssignmentsTable overrides the default assignments table.
func WithAssignmentsTable(table string) AssignmentOption {
	return func(r *AssignmentRepository) {
		if table != "" {
			r.table = table
		}
	}
}

// NewAssignmentRepository constructs a repository with defaults.
func NewAssignmentRepository(db *sql.DB, opts ...AssignmentOption) *AssignmentRepository {
	repo := &AssignmentRepository{db: db, table: defaultAssignmentsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// ListByPark returns the full assignment history for all turbines of a park.
// Resolution of the current assignment happens in the domain, not in SQL, so
// anomalies (several open records) surface instead of being collapsed by a
// LIMIT clause.
func (r *AssignmentRepository) ListByPark(ctx context.Context, tenantID, parkID string) ([]production.OperatorAssignment, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("assignment repo: nil db")
	}
	if tenantID == "" {
		return nil, errors.New("assignment repo: empty tenant id")
	}
	if parkID == "" {
		return nil, errors.New("assignment repo: empty park id")
	}

	query := fmt.Sprintf(`
SELECT a.turbine_id, a.fund_id, a.start_date, a.end_date
FROM %s a
JOIN turbines t ON t.id = a.turbine_id
WHERE t.tenant_id = $1 AND t.park_id = $2
ORDER BY a.turbine_id, a.start_date`, r.table)

	rows, err := r.db.QueryContext(ctx, query, tenantID, parkID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []production.OperatorAssignment
	for rows.Next() {
		var a production.OperatorAssignment
		var end sql.NullTime
		if err := rows.Scan(&a.TurbineID, &a.FundID, &a.Start, &end); err != nil {
			return nil, err
		}
		if end.Valid {
			endDate := end.Time
			a.End = &endDate
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}
