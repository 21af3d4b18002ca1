package settlement

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// AllocationResult is the engine output: one line item per input turbine plus
// the scalar intermediates recorded in the calculation audit.
type AllocationResult struct {
	LineItems []LineItem

	TotalProductionKWh     float64
	AverageProductionKWh   float64
	EffectiveProductionKWh float64
	PricePerKWh            float64
}

// Allocate distributes totalRevenue over the given turbines under the given
// policy. Inputs are ordered by turbine id before computation so identical
// inputs always yield identical line items.
//
// Every policy reduces to the same final step: each turbine gets an effective
// production quantity, and revenue is split proportionally to effective
// quantities over their explicit sum. The policies differ only in how the
// effective quantity is derived from the actual one.
func Allocate(inputs []TurbineProduction, totalRevenue float64, policy Policy) (*AllocationResult, error) {
	if policy == nil {
		return nil, ErrNilPolicy
	}
	if totalRevenue < 0 {
		return nil, ErrNegativeRevenue
	}
	if len(inputs) == 0 {
		return nil, ErrNoProductionData
	}

	turbines := make([]TurbineProduction, len(inputs))
	copy(turbines, inputs)
	sort.Slice(turbines, func(i, j int) bool { return turbines[i].TurbineID < turbines[j].TurbineID })

	actual := make([]float64, len(turbines))
	for i, t := range turbines {
		actual[i] = t.EnergyKWh
	}
	total := floats.Sum(actual)
	average := stat.Mean(actual, nil)

	// Zero fleet production is legal (full-period outage); the price and all
	// shares resolve to zero instead of dividing by zero.
	price := 0.0
	if total > 0 {
		price = totalRevenue / total
	}

	effective := make([]float64, len(turbines))
	var averages, deviations, adjustments []float64

	switch p := policy.(type) {
	case ProportionalPolicy:
		copy(effective, actual)

	case SmoothedPolicy:
		averages = make([]float64, len(turbines))
		deviations = make([]float64, len(turbines))
		for i, kwh := range actual {
			effective[i] = kwh*(1-p.Factor) + average*p.Factor
			averages[i] = average
			deviations[i] = kwh - average
		}

	case ToleratedPolicy:
		averages = make([]float64, len(turbines))
		deviations = make([]float64, len(turbines))
		adjustments = make([]float64, len(turbines))
		band := average * p.TolerancePct / 100
		for i, kwh := range actual {
			deviation := kwh - average
			averages[i] = average
			deviations[i] = deviation
			if math.Abs(deviation) <= band {
				// Inside the band the deviation is noise: the turbine is
				// settled at exactly the fleet average.
				effective[i] = average
				continue
			}
			// Outside the band the effective quantity is clamped to the band
			// edge; the excess beyond it is reported as a signed monetary
			// adjustment but not paid out separately.
			excess := math.Abs(deviation) - band
			if deviation > 0 {
				effective[i] = average + band
				adjustments[i] = roundMoney(excess * price)
			} else {
				effective[i] = average - band
				adjustments[i] = roundMoney(-excess * price)
			}
		}

	default:
		return nil, ErrUnknownPolicy
	}

	// The denominator is the explicit sum of effective quantities, never an
	// algebraic shortcut.
	effectiveTotal := floats.Sum(effective)

	items := make([]LineItem, len(turbines))
	for i, t := range turbines {
		sharePct := 0.0
		if total > 0 {
			sharePct = t.EnergyKWh / total * 100
		}
		amount := 0.0
		if effectiveTotal > 0 {
			amount = roundMoney(effective[i] / effectiveTotal * totalRevenue)
		}
		item := LineItem{
			TurbineID:          t.TurbineID,
			TurbineLabel:       t.TurbineLabel,
			OperatorFundID:     t.OperatorFundID,
			OperatorFundLabel:  t.OperatorFundLabel,
			ProductionKWh:      t.EnergyKWh,
			ProductionSharePct: sharePct,
			Amount:             amount,
			Description:        policy.Describe(),
		}
		if averages != nil {
			item.AverageKWh = &averages[i]
			item.DeviationKWh = &deviations[i]
		}
		if adjustments != nil {
			item.ToleranceAdjustment = &adjustments[i]
		}
		items[i] = item
	}

	return &AllocationResult{
		LineItems:              items,
		TotalProductionKWh:     total,
		AverageProductionKWh:   average,
		EffectiveProductionKWh: effectiveTotal,
		PricePerKWh:            price,
	}, nil
}

// roundMoney rounds to 2 decimals, half away from zero. The rule is fixed
// here and must not depend on locale or context.
func roundMoney(x float64) float64 {
	return math.Round(x*100) / 100
}
