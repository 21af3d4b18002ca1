package masterdata

import (
	"context"
	"errors"
	"time"
)

// Turbine represents a turbine bound to a park.
type Turbine struct {
	ID        string
	TenantID  string
	ParkID    string
	Label     string
	RatedKW   float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks turbine invariants.
func (t Turbine) Validate() error {
	if t.ID == "" {
		return errors.New("turbine: empty id")
	}
	if t.TenantID == "" {
		return errors.New("turbine: empty tenant id")
	}
	if t.ParkID == "" {
		return errors.New("turbine: empty park id")
	}
	return nil
}

// OperatorFund is the internal legal entity operating one or more turbines.
type OperatorFund struct {
	ID        string
	TenantID  string
	Label     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks fund invariants.
func (f OperatorFund) Validate() error {
	if f.ID == "" {
		return errors.New("fund: empty id")
	}
	if f.TenantID == "" {
		return errors.New("fund: empty tenant id")
	}
	return nil
}

// TurbineRepository manages turbine and fund persistence.
type TurbineRepository interface {
	ListByPark(ctx context.Context, tenantID, parkID string) ([]Turbine, error)
	SaveTurbine(ctx context.Context, turbine *Turbine) error
	ListFunds(ctx context.Context, tenantID string) ([]OperatorFund, error)
	SaveFund(ctx context.Context, fund *OperatorFund) error
}
