package application

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"windpark-cloud/internal/auth"
	"windpark-cloud/internal/observability/metrics"
	production "windpark-cloud/internal/production/domain"
	settlement "windpark-cloud/internal/settlement/domain"
)

// ProductionAggregator supplies per-turbine period totals with resolved
// operator funds.
type ProductionAggregator interface {
	Aggregate(ctx context.Context, tenantID, parkID string, year, month int) ([]production.TurbineProduction, []production.Warning, error)
}

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// RecalculationResult is what the recalculate operation hands back to the
// transport layer.
type RecalculationResult struct {
	Settlement *settlement.Settlement
	LineItems  []settlement.LineItem
	Audit      *settlement.CalculationAudit
	Warnings   []production.Warning
}

// RecalculationService validates preconditions, runs aggregation and
// allocation, and atomically replaces a settlement's calculation.
type RecalculationService struct {
	repo       settlement.Repository
	aggregator ProductionAggregator
	clock      Clock
	tenantID   string
	log        zerolog.Logger
}

// NewRecalculationService constructs the service. tenantID is the fallback
// scope when the context carries no identity (single-tenant deployments).
func NewRecalculationService(repo settlement.Repository, aggregator ProductionAggregator, clock Clock, tenantID string, log zerolog.Logger) (*RecalculationService, error) {
	if repo == nil {
		return nil, errors.New("recalculation service: nil repo")
	}
	if aggregator == nil {
		return nil, errors.New("recalculation service: nil aggregator")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if tenantID == "" {
		return nil, errors.New("recalculation service: empty tenant id")
	}
	return &RecalculationService{
		repo:       repo,
		aggregator: aggregator,
		clock:      clock,
		tenantID:   tenantID,
		log:        log,
	}, nil
}

// Recalculate computes the settlement's allocation from current production
// data and replaces its line items atomically. Validation failures abort
// before any write; a write failure leaves the previous state intact.
func (s *RecalculationService) Recalculate(ctx context.Context, settlementID string) (*RecalculationResult, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveRecalculation(result, time.Since(start))
	}()

	out, err := s.recalculate(ctx, settlementID)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return out, nil
}

func (s *RecalculationService) recalculate(ctx context.Context, settlementID string) (*RecalculationResult, error) {
	if settlementID == "" {
		return nil, settlement.ErrNotFound
	}
	tenantID := auth.TenantIDFromContext(ctx)
	if tenantID == "" {
		tenantID = s.tenantID
	}

	record, err := s.repo.GetByID(ctx, tenantID, settlementID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, settlement.ErrNotFound
	}
	if !record.Recalculable() {
		return nil, settlement.ErrInvalidStatus
	}

	policy, err := settlement.ParsePolicy(record.Policy, record.SmoothingFactor, record.TolerancePct)
	if err != nil {
		return nil, err
	}

	turbines, warnings, err := s.aggregator.Aggregate(ctx, tenantID, record.ParkID, record.Year, record.Month)
	if err != nil {
		return nil, err
	}
	metrics.CountAggregationWarnings(len(warnings))
	if len(turbines) == 0 {
		return nil, settlement.ErrNoProductionData
	}

	inputs := make([]settlement.TurbineProduction, len(turbines))
	for i, t := range turbines {
		inputs[i] = settlement.TurbineProduction{
			TurbineID:         t.TurbineID,
			TurbineLabel:      t.TurbineLabel,
			OperatorFundID:    t.OperatorFundID,
			OperatorFundLabel: t.OperatorFundLabel,
			EnergyKWh:         t.EnergyKWh,
		}
	}

	allocation, err := settlement.Allocate(inputs, record.TotalRevenue, policy)
	if err != nil {
		return nil, err
	}

	excluded := make([]string, 0, len(warnings))
	for _, w := range warnings {
		excluded = append(excluded, w.TurbineID)
	}

	now := s.clock.Now()
	record.Status = settlement.StatusCalculated
	record.Audit = settlement.NewCalculationAudit(policy, record, allocation, excluded, now)
	record.CalculatedAt = now
	record.UpdatedAt = now

	items := allocation.LineItems
	for i := range items {
		items[i].SettlementID = record.ID
	}

	if err := s.repo.ReplaceCalculation(ctx, record, items); err != nil {
		s.log.Error().Err(err).
			Str("settlement_id", record.ID).
			Str("park_id", record.ParkID).
			Msg("replace calculation failed, settlement left unchanged")
		return nil, err
	}

	s.log.Info().
		Str("settlement_id", record.ID).
		Str("park_id", record.ParkID).
		Str("policy", policy.Name()).
		Int("line_items", len(items)).
		Float64("total_revenue", record.TotalRevenue).
		Msg("settlement recalculated")

	return &RecalculationResult{
		Settlement: record,
		LineItems:  items,
		Audit:      record.Audit,
		Warnings:   warnings,
	}, nil
}

// Get loads a settlement and its line items for the read API.
func (s *RecalculationService) Get(ctx context.Context, settlementID string) (*settlement.Settlement, []settlement.LineItem, error) {
	tenantID := auth.TenantIDFromContext(ctx)
	if tenantID == "" {
		tenantID = s.tenantID
	}
	record, err := s.repo.GetByID(ctx, tenantID, settlementID)
	if err != nil {
		return nil, nil, err
	}
	if record == nil {
		return nil, nil, settlement.ErrNotFound
	}
	items, err := s.repo.ListLineItems(ctx, settlementID)
	if err != nil {
		return nil, nil, err
	}
	return record, items, nil
}
