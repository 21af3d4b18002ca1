package settlement

// TurbineProduction is the aggregated per-turbine input to the allocation
// engine: one period total per turbine with its resolved operator fund.
type TurbineProduction struct {
	TurbineID         string
	TurbineLabel      string
	OperatorFundID    string
	OperatorFundLabel string
	EnergyKWh         float64
}

// LineItem is one turbine's computed allocation within a settlement.
// Line items are owned by the settlement: every recalculation deletes and
// regenerates the whole set, never patches individual rows. The struct
// deliberately carries no timestamps or generated ids so that identical
// inputs produce identical line items.
type LineItem struct {
	SettlementID      string
	TurbineID         string
	TurbineLabel      string
	OperatorFundID    string
	OperatorFundLabel string

	ProductionKWh      float64
	ProductionSharePct float64
	Amount             float64
	Description        string

	// Set for SMOOTHED and TOLERATED only: the fleet average the policy
	// worked against, this turbine's deviation from it, and the monetary
	// value of the deviation beyond the tolerance band (informational,
	// TOLERATED only, signed like the deviation).
	AverageKWh          *float64
	DeviationKWh        *float64
	ToleranceAdjustment *float64
}
