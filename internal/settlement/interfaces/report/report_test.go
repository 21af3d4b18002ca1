package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	settlement "windpark-cloud/internal/settlement/domain"
)

func statementFixture() (*settlement.Settlement, []settlement.LineItem) {
	adjustment := 12.5
	average := 500.0
	deviation := 100.0
	s := &settlement.Settlement{
		ID:           "stl-1",
		TenantID:     "tenant-test",
		ParkID:       "park-1",
		Year:         2025,
		Month:        0,
		TotalRevenue: 1000,
		Currency:     "EUR",
		Policy:       settlement.PolicyTolerated,
		TolerancePct: 10,
		Status:       settlement.StatusCalculated,
		CalculatedAt: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
		Audit: &settlement.CalculationAudit{
			Policy:             settlement.PolicyTolerated,
			TotalProductionKWh: 1000,
			PricePerKWh:        1,
		},
	}
	items := []settlement.LineItem{
		{
			SettlementID:        "stl-1",
			TurbineID:           "wt-01",
			TurbineLabel:        "WT 01",
			OperatorFundID:      "fund-a",
			OperatorFundLabel:   "Fund A",
			ProductionKWh:       600,
			ProductionSharePct:  60,
			Amount:              550,
			Description:         "TOLERATED allocation",
			AverageKWh:          &average,
			DeviationKWh:        &deviation,
			ToleranceAdjustment: &adjustment,
		},
		{
			SettlementID:       "stl-1",
			TurbineID:          "wt-02",
			TurbineLabel:       "WT 02",
			OperatorFundID:     "fund-b",
			OperatorFundLabel:  "Fund B",
			ProductionKWh:      400,
			ProductionSharePct: 40,
			Amount:             450,
			Description:        "TOLERATED allocation",
		},
	}
	return s, items
}

func TestBuildPDF(t *testing.T) {
	s, items := statementFixture()

	payload, err := BuildPDF(s, items)
	require.NoError(t, err)
	require.NotEmpty(t, payload)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")))
}

func TestBuildPDF_NoItems(t *testing.T) {
	s, _ := statementFixture()

	payload, err := BuildPDF(s, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, payload)
}

func TestBuildXLSX(t *testing.T) {
	s, items := statementFixture()

	payload, err := BuildXLSX(s, items)
	require.NoError(t, err)
	require.NotEmpty(t, payload)
	// XLSX files are zip archives.
	assert.True(t, bytes.HasPrefix(payload, []byte("PK")))
}
