package production

import "time"

// Fact is one raw production reading for a turbine. Readings may arrive at
// monthly or finer granularity; the aggregator sums whatever is there.
type Fact struct {
	TurbineID string
	Year      int
	Month     int
	EnergyKWh float64
}

// OperatorAssignment records which operator fund runs a turbine over a time
// range. An open assignment (End == nil) is the currently responsible one.
type OperatorAssignment struct {
	TurbineID string
	FundID    string
	Start     time.Time
	End       *time.Time
}

// Current reports whether the assignment has no end date.
func (a OperatorAssignment) Current() bool { return a.End == nil }

// TurbineProduction is one turbine's aggregated period total together with
// its resolved current operator fund.
type TurbineProduction struct {
	TurbineID         string
	TurbineLabel      string
	OperatorFundID    string
	OperatorFundLabel string
	EnergyKWh         float64
}

// Warning flags a data-quality problem found during aggregation. Warnings
// never abort the aggregation; the affected turbine is excluded instead of
// silently receiving a zero line item.
type Warning struct {
	TurbineID string
	Reason    string
}
