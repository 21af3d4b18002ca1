package settlement

import "errors"

var (
	// ErrNotFound covers both a missing settlement and a settlement owned by
	// another tenant. Callers must not be able to tell the two apart.
	ErrNotFound = errors.New("settlement: not found")
	// ErrInvalidStatus is returned when the settlement is no longer eligible
	// for recalculation (invoiced or closed).
	ErrInvalidStatus = errors.New("settlement: status does not allow recalculation")
	// ErrNoProductionData is returned when the period has no usable
	// production facts.
	ErrNoProductionData = errors.New("settlement: no production data for period")
	// ErrUnknownPolicy is returned for policy identifiers outside the three
	// supported allocation policies.
	ErrUnknownPolicy = errors.New("settlement: unknown allocation policy")
	// ErrSmoothingFactorRange is returned when the smoothing factor is
	// outside [0,1].
	ErrSmoothingFactorRange = errors.New("settlement: smoothing factor outside [0,1]")
	// ErrToleranceRange is returned when the tolerance percentage is
	// outside [0,100].
	ErrToleranceRange = errors.New("settlement: tolerance percentage outside [0,100]")
	// ErrNilPolicy is returned when the engine is invoked without a policy.
	ErrNilPolicy = errors.New("settlement: nil policy")
	// ErrNilSettlement is returned when persisting a nil settlement.
	ErrNilSettlement = errors.New("settlement: nil settlement")
	// ErrNegativeRevenue is returned for a negative total revenue.
	ErrNegativeRevenue = errors.New("settlement: negative total revenue")
)
