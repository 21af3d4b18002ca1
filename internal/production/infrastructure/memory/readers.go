package memory

import (
	"context"
	"sync"

	production "windpark-cloud/internal/production/domain"
)

// Readers is an in-memory implementation of the aggregator's read interfaces,
// used by unit tests and the local dev wiring.
type Readers struct {
	mu sync.RWMutex

	facts       []production.Fact
	assignments []production.OperatorAssignment
	turbines    map[string]string
	funds       map[string]string
}

// NewReaders constructs empty in-memory readers.
func NewReaders() *Readers {
	return &Readers{
		turbines: make(map[string]string),
		funds:    make(map[string]string),
	}
}

// AddFact appends a raw production fact.
func (r *Readers) AddFact(f production.Fact) {
	r.mu.Lock()
	r.facts = append(r.facts, f)
	r.mu.Unlock()
}

// AddAssignment appends an operator assignment record.
func (r *Readers) AddAssignment(a production.OperatorAssignment) {
	r.mu.Lock()
	r.assignments = append(r.assignments, a)
	r.mu.Unlock()
}

// SetTurbineLabel registers a turbine display label.
func (r *Readers) SetTurbineLabel(id, label string) {
	r.mu.Lock()
	r.turbines[id] = label
	r.mu.Unlock()
}

// SetFundLabel registers an operator fund display label.
func (r *Readers) SetFundLabel(id, label string) {
	r.mu.Lock()
	r.funds[id] = label
	r.mu.Unlock()
}

// ListFacts returns facts matching year and optional month.
func (r *Readers) ListFacts(ctx context.Context, tenantID, parkID string, year, month int) ([]production.Fact, error) {
	_ = ctx
	_ = tenantID
	_ = parkID
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []production.Fact
	for _, f := range r.facts {
		if f.Year != year {
			continue
		}
		if month != 0 && f.Month != month {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

// ListByPark returns all assignment records.
func (r *Readers) ListByPark(ctx context.Context, tenantID, parkID string) ([]production.OperatorAssignment, error) {
	_ = ctx
	_ = tenantID
	_ = parkID
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]production.OperatorAssignment, len(r.assignments))
	copy(out, r.assignments)
	return out, nil
}

// TurbineLabels returns the registered turbine labels.
func (r *Readers) TurbineLabels(ctx context.Context, tenantID, parkID string) (map[string]string, error) {
	_ = ctx
	_ = tenantID
	_ = parkID
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.turbines))
	for k, v := range r.turbines {
		out[k] = v
	}
	return out, nil
}

// FundLabels returns the registered fund labels.
func (r *Readers) FundLabels(ctx context.Context, tenantID string) (map[string]string, error) {
	_ = ctx
	_ = tenantID
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.funds))
	for k, v := range r.funds {
		out[k] = v
	}
	return out, nil
}
