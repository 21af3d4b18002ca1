package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	settlement "windpark-cloud/internal/settlement/domain"
)

// BuildPDF renders a revenue-distribution statement as PDF.
func BuildPDF(s *settlement.Settlement, items []settlement.LineItem) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Revenue Distribution Statement")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Park: %s", s.ParkID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s", s.PeriodLabel()))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Status: %s", s.Status))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Policy: %s", s.Policy))
	pdf.Ln(5)
	if !s.CalculatedAt.IsZero() {
		pdf.Cell(0, 6, fmt.Sprintf("Calculated: %s", s.CalculatedAt.Format(time.RFC3339)))
		pdf.Ln(5)
	}

	pdf.Ln(4)
	if s.Audit != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Total Production (kWh): %.3f", s.Audit.TotalProductionKWh))
		pdf.Ln(5)
		pdf.Cell(0, 6, fmt.Sprintf("Price per kWh: %.6f", s.Audit.PricePerKWh))
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Total Revenue (%s): %.2f", s.Currency, s.TotalRevenue))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(45, 6, "Turbine", "1", 0, "C", false, 0, "")
	pdf.CellFormat(55, 6, "Operator Fund", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Production (kWh)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Share (%)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Amount", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Adjustment", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, item := range items {
		adjustment := ""
		if item.ToleranceAdjustment != nil {
			adjustment = fmt.Sprintf("%.2f", *item.ToleranceAdjustment)
		}
		pdf.CellFormat(45, 6, item.TurbineLabel, "1", 0, "L", false, 0, "")
		pdf.CellFormat(55, 6, item.OperatorFundLabel, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.3f", item.ProductionKWh), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.2f", item.ProductionSharePct), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("%.2f", item.Amount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, adjustment, "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
