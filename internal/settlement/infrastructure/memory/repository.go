package memory

import (
	"context"
	"sync"

	settlement "windpark-cloud/internal/settlement/domain"
)

// SettlementRepository is an in-memory settlement.Repository for unit tests.
// A single mutex serializes ReplaceCalculation, mirroring the row lock the
// Postgres implementation takes.
type SettlementRepository struct {
	mu          sync.Mutex
	settlements map[string]*settlement.Settlement
	lineItems   map[string][]settlement.LineItem
}

// NewSettlementRepository constructs an empty repository.
func NewSettlementRepository() *SettlementRepository {
	return &SettlementRepository{
		settlements: make(map[string]*settlement.Settlement),
		lineItems:   make(map[string][]settlement.LineItem),
	}
}

// Put stores a settlement (test seeding).
func (r *SettlementRepository) Put(s *settlement.Settlement) {
	r.mu.Lock()
	clone := *s
	r.settlements[s.ID] = &clone
	r.mu.Unlock()
}

// GetByID loads a settlement scoped to the tenant.
func (r *SettlementRepository) GetByID(ctx context.Context, tenantID, id string) (*settlement.Settlement, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.settlements[id]
	if s == nil || s.TenantID != tenantID {
		return nil, nil
	}
	clone := *s
	return &clone, nil
}

// ReplaceCalculation swaps line items and updates the settlement atomically.
func (r *SettlementRepository) ReplaceCalculation(ctx context.Context, s *settlement.Settlement, items []settlement.LineItem) error {
	_ = ctx
	if s == nil {
		return settlement.ErrNilSettlement
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := r.settlements[s.ID]
	if stored == nil || stored.TenantID != s.TenantID {
		return settlement.ErrNotFound
	}
	if stored.Status != settlement.StatusDraft && stored.Status != settlement.StatusCalculated {
		return settlement.ErrInvalidStatus
	}

	clone := *s
	r.settlements[s.ID] = &clone
	copied := make([]settlement.LineItem, len(items))
	copy(copied, items)
	r.lineItems[s.ID] = copied
	return nil
}

// ListLineItems returns the stored line items.
func (r *SettlementRepository) ListLineItems(ctx context.Context, settlementID string) ([]settlement.LineItem, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.lineItems[settlementID]
	out := make([]settlement.LineItem, len(items))
	copy(out, items)
	return out, nil
}
