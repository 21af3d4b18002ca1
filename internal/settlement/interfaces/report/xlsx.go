package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	settlement "windpark-cloud/internal/settlement/domain"
)

// BuildXLSX renders a revenue-distribution statement as XLSX with a summary
// sheet and a line-items sheet.
func BuildXLSX(s *settlement.Settlement, items []settlement.LineItem) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	itemsSheet := "line_items"
	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", "Revenue Distribution Statement")
	_ = f.SetCellValue(summarySheet, "A3", "Park")
	_ = f.SetCellValue(summarySheet, "B3", s.ParkID)
	_ = f.SetCellValue(summarySheet, "A4", "Period")
	_ = f.SetCellValue(summarySheet, "B4", s.PeriodLabel())
	_ = f.SetCellValue(summarySheet, "A5", "Status")
	_ = f.SetCellValue(summarySheet, "B5", s.Status)
	_ = f.SetCellValue(summarySheet, "A6", "Policy")
	_ = f.SetCellValue(summarySheet, "B6", s.Policy)
	_ = f.SetCellValue(summarySheet, "A7", "Total Revenue")
	_ = f.SetCellValue(summarySheet, "B7", s.TotalRevenue)
	_ = f.SetCellValue(summarySheet, "A8", "Currency")
	_ = f.SetCellValue(summarySheet, "B8", s.Currency)
	if s.Audit != nil {
		_ = f.SetCellValue(summarySheet, "A9", "Total Production (kWh)")
		_ = f.SetCellValue(summarySheet, "B9", s.Audit.TotalProductionKWh)
		_ = f.SetCellValue(summarySheet, "A10", "Average Production (kWh)")
		_ = f.SetCellValue(summarySheet, "B10", s.Audit.AverageProductionKWh)
		_ = f.SetCellValue(summarySheet, "A11", "Price per kWh")
		_ = f.SetCellValue(summarySheet, "B11", s.Audit.PricePerKWh)
	}

	headers := []string{"Turbine", "Operator Fund", "Production (kWh)", "Share (%)", "Amount", "Average (kWh)", "Deviation (kWh)", "Adjustment", "Description"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(itemsSheet, cell, header)
	}
	for i, item := range items {
		row := i + 2
		_ = f.SetCellValue(itemsSheet, fmt.Sprintf("A%d", row), item.TurbineLabel)
		_ = f.SetCellValue(itemsSheet, fmt.Sprintf("B%d", row), item.OperatorFundLabel)
		_ = f.SetCellValue(itemsSheet, fmt.Sprintf("C%d", row), item.ProductionKWh)
		_ = f.SetCellValue(itemsSheet, fmt.Sprintf("D%d", row), item.ProductionSharePct)
		_ = f.SetCellValue(itemsSheet, fmt.Sprintf("E%d", row), item.Amount)
		if item.AverageKWh != nil {
			_ = f.SetCellValue(itemsSheet, fmt.Sprintf("F%d", row), *item.AverageKWh)
		}
		if item.DeviationKWh != nil {
			_ = f.SetCellValue(itemsSheet, fmt.Sprintf("G%d", row), *item.DeviationKWh)
		}
		if item.ToleranceAdjustment != nil {
			_ = f.SetCellValue(itemsSheet, fmt.Sprintf("H%d", row), *item.ToleranceAdjustment)
		}
		_ = f.SetCellValue(itemsSheet, fmt.Sprintf("I%d", row), item.Description)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
