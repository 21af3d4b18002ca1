package application

import (
	"context"
	"errors"
	"sort"

	"github.com/rs/zerolog"

	production "windpark-cloud/internal/production/domain"
)

// FactReader loads raw production facts for a park and period. Month 0 means
// the whole year.
type FactReader interface {
	ListFacts(ctx context.Context, tenantID, parkID string, year, month int) ([]production.Fact, error)
}

// AssignmentReader loads the operator assignment history for all turbines of
// a park.
type AssignmentReader interface {
	ListByPark(ctx context.Context, tenantID, parkID string) ([]production.OperatorAssignment, error)
}

// LabelReader resolves display labels for turbines and operator funds.
type LabelReader interface {
	TurbineLabels(ctx context.Context, tenantID, parkID string) (map[string]string, error)
	FundLabels(ctx context.Context, tenantID string) (map[string]string, error)
}

// Aggregator reduces raw production facts to one period total per turbine and
// attaches each turbine's current operator fund.
type Aggregator struct {
	facts       FactReader
	assignments AssignmentReader
	labels      LabelReader
	log         zerolog.Logger
}

// NewAggregator constructs an Aggregator.
func NewAggregator(facts FactReader, assignments AssignmentReader, labels LabelReader, log zerolog.Logger) (*Aggregator, error) {
	if facts == nil {
		return nil, errors.New("aggregator: nil fact reader")
	}
	if assignments == nil {
		return nil, errors.New("aggregator: nil assignment reader")
	}
	if labels == nil {
		return nil, errors.New("aggregator: nil label reader")
	}
	return &Aggregator{facts: facts, assignments: assignments, labels: labels, log: log}, nil
}

// Aggregate sums the period's facts per turbine and resolves each turbine's
// current operator fund. Turbines without a resolvable current operator are
// excluded and reported as warnings, never as fatal errors. An empty period
// yields an empty slice, not an error; the caller decides what "no data"
// means for it.
func (a *Aggregator) Aggregate(ctx context.Context, tenantID, parkID string, year, month int) ([]production.TurbineProduction, []production.Warning, error) {
	facts, err := a.facts.ListFacts(ctx, tenantID, parkID, year, month)
	if err != nil {
		return nil, nil, err
	}
	if len(facts) == 0 {
		return nil, nil, nil
	}

	// Totals live in a map scoped to this call only; nothing is accumulated
	// across invocations.
	totals := make(map[string]float64, len(facts))
	for _, f := range facts {
		totals[f.TurbineID] += f.EnergyKWh
	}

	history, err := a.assignments.ListByPark(ctx, tenantID, parkID)
	if err != nil {
		return nil, nil, err
	}
	byTurbine := make(map[string][]production.OperatorAssignment, len(totals))
	for _, assignment := range history {
		byTurbine[assignment.TurbineID] = append(byTurbine[assignment.TurbineID], assignment)
	}

	turbineLabels, err := a.labels.TurbineLabels(ctx, tenantID, parkID)
	if err != nil {
		return nil, nil, err
	}
	fundLabels, err := a.labels.FundLabels(ctx, tenantID)
	if err != nil {
		return nil, nil, err
	}

	turbineIDs := make([]string, 0, len(totals))
	for id := range totals {
		turbineIDs = append(turbineIDs, id)
	}
	sort.Strings(turbineIDs)

	result := make([]production.TurbineProduction, 0, len(turbineIDs))
	var warnings []production.Warning
	for _, turbineID := range turbineIDs {
		current, err := production.CurrentAssignment(byTurbine[turbineID])
		if err != nil {
			warning := production.Warning{TurbineID: turbineID, Reason: err.Error()}
			warnings = append(warnings, warning)
			a.log.Warn().
				Str("park_id", parkID).
				Str("turbine_id", turbineID).
				Int("assignments", len(byTurbine[turbineID])).
				Msg(warning.Reason)
			continue
		}
		result = append(result, production.TurbineProduction{
			TurbineID:         turbineID,
			TurbineLabel:      labelOr(turbineLabels, turbineID),
			OperatorFundID:    current.FundID,
			OperatorFundLabel: labelOr(fundLabels, current.FundID),
			EnergyKWh:         totals[turbineID],
		})
	}
	return result, warnings, nil
}

func labelOr(labels map[string]string, id string) string {
	if label, ok := labels[id]; ok && label != "" {
		return label
	}
	return id
}
