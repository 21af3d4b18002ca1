package settlement

import "context"

// Repository persists settlements and their line items.
type Repository interface {
	// GetByID loads a settlement scoped to the tenant. Returns (nil, nil)
	// when the id does not resolve within the tenant; callers map that to
	// ErrNotFound without distinguishing missing from foreign-tenant rows.
	GetByID(ctx context.Context, tenantID, id string) (*Settlement, error)

	// ReplaceCalculation atomically deletes the settlement's line items,
	// inserts the new set, writes the audit record and advances the status.
	// The settlement row is locked for the duration, so concurrent
	// recalculations of the same settlement serialize. A failure leaves the
	// previous state and line items intact.
	ReplaceCalculation(ctx context.Context, s *Settlement, items []LineItem) error

	// ListLineItems returns the settlement's line items ordered by turbine id.
	ListLineItems(ctx context.Context, settlementID string) ([]LineItem, error)
}
