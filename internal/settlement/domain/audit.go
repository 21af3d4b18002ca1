package settlement

import "time"

// CalculationAudit is the structured record of the most recent calculation,
// persisted on the settlement so every payout can be explained after the
// fact: which policy with which parameters ran over which inputs, and the
// intermediates it derived.
type CalculationAudit struct {
	Policy          string   `json:"policy"`
	SmoothingFactor *float64 `json:"smoothing_factor,omitempty"`
	TolerancePct    *float64 `json:"tolerance_pct,omitempty"`

	TotalRevenue           float64 `json:"total_revenue"`
	Currency               string  `json:"currency"`
	TurbineCount           int     `json:"turbine_count"`
	TotalProductionKWh     float64 `json:"total_production_kwh"`
	AverageProductionKWh   float64 `json:"average_production_kwh"`
	EffectiveProductionKWh float64 `json:"effective_production_kwh"`
	PricePerKWh            float64 `json:"price_per_kwh"`

	// ExcludedTurbines lists turbines that had production but no resolvable
	// current operator and were therefore left out of the allocation.
	ExcludedTurbines []string `json:"excluded_turbines,omitempty"`

	CalculatedAt time.Time `json:"calculated_at"`
}

// NewCalculationAudit assembles the audit record for a completed run.
func NewCalculationAudit(policy Policy, s *Settlement, result *AllocationResult, excluded []string, at time.Time) *CalculationAudit {
	audit := &CalculationAudit{
		Policy:                 policy.Name(),
		TotalRevenue:           s.TotalRevenue,
		Currency:               s.Currency,
		TurbineCount:           len(result.LineItems),
		TotalProductionKWh:     result.TotalProductionKWh,
		AverageProductionKWh:   result.AverageProductionKWh,
		EffectiveProductionKWh: result.EffectiveProductionKWh,
		PricePerKWh:            result.PricePerKWh,
		ExcludedTurbines:       excluded,
		CalculatedAt:           at,
	}
	switch p := policy.(type) {
	case SmoothedPolicy:
		factor := p.Factor
		audit.SmoothingFactor = &factor
	case ToleratedPolicy:
		tolerance := p.TolerancePct
		audit.TolerancePct = &tolerance
	}
	return audit
}
