package settlement

import "time"

const (
	StatusDraft      = "DRAFT"
	StatusCalculated = "CALCULATED"
	StatusInvoiced   = "INVOICED"
	StatusClosed     = "CLOSED"
)

// Settlement is one period's revenue-distribution record for a park.
// Identity: one settlement per (tenant, park, year, month); month 0 means an
// annual settlement.
type Settlement struct {
	ID       string
	TenantID string
	ParkID   string
	Year     int
	Month    int

	// TotalRevenue is the grid operator's net payment for the period.
	TotalRevenue float64
	Currency     string

	// Policy holds the persisted policy identifier plus its parameters.
	// The parameters are only meaningful for the policy that uses them.
	Policy          string
	SmoothingFactor float64
	TolerancePct    float64

	Status string
	Audit  *CalculationAudit

	CreatedAt    time.Time
	UpdatedAt    time.Time
	CalculatedAt time.Time
}

// Recalculable reports whether the settlement may be (re)calculated.
// Invoiced and closed settlements are immutable.
func (s *Settlement) Recalculable() bool {
	if s == nil {
		return false
	}
	return s.Status == StatusDraft || s.Status == StatusCalculated
}

// PeriodLabel renders the settlement period for descriptions and reports.
func (s *Settlement) PeriodLabel() string {
	if s.Month == 0 {
		return time.Date(s.Year, time.January, 1, 0, 0, 0, 0, time.UTC).Format("2006")
	}
	return time.Date(s.Year, time.Month(s.Month), 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}
