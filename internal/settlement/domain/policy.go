package settlement

import "fmt"

const (
	PolicyProportional = "PROPORTIONAL"
	PolicySmoothed     = "SMOOTHED"
	PolicyTolerated    = "TOLERATED"
)

// Policy is the closed set of allocation policies. Each variant carries only
// the parameters it needs; the engine dispatches on the concrete type exactly
// once per calculation.
type Policy interface {
	Name() string
	// Describe renders the policy and its parameters for line-item
	// descriptions and the audit record.
	Describe() string

	sealed()
}

// ProportionalPolicy allocates revenue strictly by measured production.
type ProportionalPolicy struct{}

func (ProportionalPolicy) Name() string     { return PolicyProportional }
func (ProportionalPolicy) Describe() string { return "PROPORTIONAL allocation by production share" }
func (ProportionalPolicy) sealed()          {}

// SmoothedPolicy blends each turbine's production with the fleet average.
// Factor 0 collapses to proportional, factor 1 yields equal shares.
type SmoothedPolicy struct {
	Factor float64
}

// NewSmoothedPolicy validates the smoothing factor.
func NewSmoothedPolicy(factor float64) (SmoothedPolicy, error) {
	if factor < 0 || factor > 1 {
		return SmoothedPolicy{}, ErrSmoothingFactorRange
	}
	return SmoothedPolicy{Factor: factor}, nil
}

func (p SmoothedPolicy) Name() string { return PolicySmoothed }
func (p SmoothedPolicy) Describe() string {
	return fmt.Sprintf("SMOOTHED allocation, smoothing factor %.2f", p.Factor)
}
func (SmoothedPolicy) sealed() {}

// ToleratedPolicy treats deviations within a percentage band around the fleet
// average as noise: turbines inside the band receive the average share,
// turbines outside are clamped to the band edge.
type ToleratedPolicy struct {
	TolerancePct float64
}

// NewToleratedPolicy validates the tolerance percentage.
func NewToleratedPolicy(tolerancePct float64) (ToleratedPolicy, error) {
	if tolerancePct < 0 || tolerancePct > 100 {
		return ToleratedPolicy{}, ErrToleranceRange
	}
	return ToleratedPolicy{TolerancePct: tolerancePct}, nil
}

func (p ToleratedPolicy) Name() string { return PolicyTolerated }
func (p ToleratedPolicy) Describe() string {
	return fmt.Sprintf("TOLERATED allocation, tolerance band %.1f%% around fleet average", p.TolerancePct)
}
func (ToleratedPolicy) sealed() {}

// ParsePolicy maps a persisted policy identifier and its parameters to a
// Policy value. Unknown identifiers are a hard validation error, never a
// silent default.
func ParsePolicy(name string, smoothingFactor, tolerancePct float64) (Policy, error) {
	switch name {
	case PolicyProportional:
		return ProportionalPolicy{}, nil
	case PolicySmoothed:
		return NewSmoothedPolicy(smoothingFactor)
	case PolicyTolerated:
		return NewToleratedPolicy(tolerancePct)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
}
