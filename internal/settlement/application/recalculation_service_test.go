package application

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"windpark-cloud/internal/auth"
	productionapp "windpark-cloud/internal/production/application"
	production "windpark-cloud/internal/production/domain"
	productionmemory "windpark-cloud/internal/production/infrastructure/memory"
	settlement "windpark-cloud/internal/settlement/domain"
	settlementmemory "windpark-cloud/internal/settlement/infrastructure/memory"
)

const testTenant = "tenant-test"

type fixedClock struct{ at time.Time }

func (c fixedClock) Now() time.Time { return c.at }

type fixture struct {
	service *RecalculationService
	repo    *settlementmemory.SettlementRepository
	readers *productionmemory.Readers
	clock   *fixedClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := settlementmemory.NewSettlementRepository()
	readers := productionmemory.NewReaders()
	aggregator, err := productionapp.NewAggregator(readers, readers, readers, zerolog.Nop())
	require.NoError(t, err)

	clock := &fixedClock{at: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)}
	service, err := NewRecalculationService(repo, aggregator, clock, testTenant, zerolog.Nop())
	require.NoError(t, err)
	return &fixture{service: service, repo: repo, readers: readers, clock: clock}
}

func (f *fixture) seedDraft(policy string) *settlement.Settlement {
	s := &settlement.Settlement{
		ID:              "stl-1",
		TenantID:        testTenant,
		ParkID:          "park-1",
		Year:            2025,
		Month:           0,
		TotalRevenue:    1000,
		Currency:        "EUR",
		Policy:          policy,
		SmoothingFactor: 0.5,
		TolerancePct:    5,
		Status:          settlement.StatusDraft,
	}
	f.repo.Put(s)
	return s
}

func (f *fixture) seedProduction() {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f.readers.AddAssignment(production.OperatorAssignment{TurbineID: "wt-01", FundID: "fund-a", Start: start})
	f.readers.AddAssignment(production.OperatorAssignment{TurbineID: "wt-02", FundID: "fund-b", Start: start})
	f.readers.SetTurbineLabel("wt-01", "WT 01")
	f.readers.SetTurbineLabel("wt-02", "WT 02")
	f.readers.SetFundLabel("fund-a", "Fund A")
	f.readers.SetFundLabel("fund-b", "Fund B")
	f.readers.AddFact(production.Fact{TurbineID: "wt-01", Year: 2025, Month: 1, EnergyKWh: 600})
	f.readers.AddFact(production.Fact{TurbineID: "wt-02", Year: 2025, Month: 1, EnergyKWh: 400})
}

func TestRecalculate_Proportional(t *testing.T) {
	f := newFixture(t)
	f.seedDraft(settlement.PolicyProportional)
	f.seedProduction()

	result, err := f.service.Recalculate(context.Background(), "stl-1")
	require.NoError(t, err)

	assert.Equal(t, settlement.StatusCalculated, result.Settlement.Status)
	assert.Equal(t, f.clock.at, result.Settlement.CalculatedAt)
	require.Len(t, result.LineItems, 2)
	assert.Equal(t, "stl-1", result.LineItems[0].SettlementID)
	assert.Equal(t, 600.0, result.LineItems[0].Amount)
	assert.Equal(t, 400.0, result.LineItems[1].Amount)

	require.NotNil(t, result.Audit)
	assert.Equal(t, settlement.PolicyProportional, result.Audit.Policy)
	assert.Equal(t, 1000.0, result.Audit.TotalProductionKWh)

	// The write went through the repository.
	stored, items, err := f.service.Get(context.Background(), "stl-1")
	require.NoError(t, err)
	assert.Equal(t, settlement.StatusCalculated, stored.Status)
	assert.Equal(t, result.LineItems, items)
}

func TestRecalculate_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Recalculate(context.Background(), "missing")
	assert.ErrorIs(t, err, settlement.ErrNotFound)
}

func TestRecalculate_ForeignTenantLooksLikeNotFound(t *testing.T) {
	f := newFixture(t)
	f.seedDraft(settlement.PolicyProportional)
	f.seedProduction()

	ctx := auth.WithIdentity(context.Background(), "tenant-other", auth.RoleAccountant, "accountant@other")
	_, err := f.service.Recalculate(ctx, "stl-1")
	assert.ErrorIs(t, err, settlement.ErrNotFound)
}

func TestRecalculate_InvalidStatus(t *testing.T) {
	f := newFixture(t)
	s := f.seedDraft(settlement.PolicyProportional)
	f.seedProduction()

	for _, status := range []string{settlement.StatusInvoiced, settlement.StatusClosed} {
		s.Status = status
		f.repo.Put(s)
		_, err := f.service.Recalculate(context.Background(), s.ID)
		assert.ErrorIs(t, err, settlement.ErrInvalidStatus, status)
	}
}

func TestRecalculate_NoProductionData(t *testing.T) {
	f := newFixture(t)
	f.seedDraft(settlement.PolicyProportional)

	_, err := f.service.Recalculate(context.Background(), "stl-1")
	assert.ErrorIs(t, err, settlement.ErrNoProductionData)
}

func TestRecalculate_UnknownPolicyOnRecord(t *testing.T) {
	f := newFixture(t)
	f.seedDraft("LEGACY")
	f.seedProduction()

	_, err := f.service.Recalculate(context.Background(), "stl-1")
	assert.ErrorIs(t, err, settlement.ErrUnknownPolicy)
}

func TestRecalculate_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.seedDraft(settlement.PolicySmoothed)
	f.seedProduction()

	first, err := f.service.Recalculate(context.Background(), "stl-1")
	require.NoError(t, err)
	// A CALCULATED settlement may be recalculated again.
	second, err := f.service.Recalculate(context.Background(), "stl-1")
	require.NoError(t, err)

	assert.Equal(t, first.LineItems, second.LineItems)
	assert.Equal(t, first.Audit.TotalProductionKWh, second.Audit.TotalProductionKWh)
	assert.Equal(t, first.Audit.PricePerKWh, second.Audit.PricePerKWh)
}

func TestRecalculate_ExcludedTurbineRecordedInAudit(t *testing.T) {
	f := newFixture(t)
	f.seedDraft(settlement.PolicyProportional)
	f.seedProduction()
	// wt-03 produces but has no assignment history at all.
	f.readers.AddFact(production.Fact{TurbineID: "wt-03", Year: 2025, Month: 1, EnergyKWh: 500})

	result, err := f.service.Recalculate(context.Background(), "stl-1")
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "wt-03", result.Warnings[0].TurbineID)
	assert.Equal(t, []string{"wt-03"}, result.Audit.ExcludedTurbines)
	// Revenue is distributed over the remaining turbines only.
	require.Len(t, result.LineItems, 2)
	assert.Equal(t, 600.0, result.LineItems[0].Amount)
}

func TestGet_NotFound(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.service.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, settlement.ErrNotFound)
}

func TestNewRecalculationService_Validation(t *testing.T) {
	repo := settlementmemory.NewSettlementRepository()
	readers := productionmemory.NewReaders()
	aggregator, err := productionapp.NewAggregator(readers, readers, readers, zerolog.Nop())
	require.NoError(t, err)

	_, err = NewRecalculationService(nil, aggregator, SystemClock{}, testTenant, zerolog.Nop())
	assert.Error(t, err)
	_, err = NewRecalculationService(repo, nil, SystemClock{}, testTenant, zerolog.Nop())
	assert.Error(t, err)
	_, err = NewRecalculationService(repo, aggregator, SystemClock{}, "", zerolog.Nop())
	assert.Error(t, err)

	// A nil clock falls back to the system clock.
	service, err := NewRecalculationService(repo, aggregator, nil, testTenant, zerolog.Nop())
	require.NoError(t, err)
	assert.NotNil(t, service)
}
