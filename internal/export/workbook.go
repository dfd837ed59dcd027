// Package export writes calculation results to spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/jgoulah/carbonform/internal/chart"
	"github.com/jgoulah/carbonform/internal/emissions"
	"github.com/jgoulah/carbonform/pkg/models"
)

// Sheet names
const (
	SheetSummary         = "Summary"
	SheetEntries         = "Monthly Usage"
	SheetRecommendations = "Recommendations"
)

// Report is everything written to a workbook
type Report struct {
	Business        models.Business
	Result          *models.EmissionsResult
	Recommendations []models.Recommendation
}

// WriteWorkbook writes the report as an XLSX workbook
func WriteWorkbook(w io.Writer, r Report) error {
	if r.Result == nil {
		return fmt.Errorf("no results to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("renaming summary sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E8F0FE"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	if err := writeSummary(f, r); err != nil {
		return err
	}
	if err := writeEntries(f, r.Result, headerStyle); err != nil {
		return err
	}
	if err := writeRecommendations(f, r.Recommendations, headerStyle); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, r Report) error {
	res := r.Result
	rows := [][]interface{}{
		{"Business", r.Business.Name},
		{"Industry", res.Industry},
		{"Zip Code", r.Business.ZipCode},
		{"Building Size (sq ft)", res.BuildingSize},
		{"Emissions Factor (kg CO2e/kWh)", res.Factor},
		{"Factor Source", res.FactorSource},
		{"Total Emissions (t CO2e)", emissions.Round2(res.TotalEmissionsTons)},
		{"Monthly Average (t CO2e)", emissions.Round2(res.MonthlyAverageTons)},
		{"Annual Estimate (t CO2e)", emissions.Round2(res.AnnualEstimateTons)},
		{"Emissions Intensity (kg CO2e/sq ft)", emissions.Round2(res.EmissionsIntensity)},
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SheetSummary, cell, &row); err != nil {
			return fmt.Errorf("writing summary row %d: %w", i+1, err)
		}
	}
	return f.SetColWidth(SheetSummary, "A", "A", 36)
}

func writeEntries(f *excelize.File, res *models.EmissionsResult, headerStyle int) error {
	if _, err := f.NewSheet(SheetEntries); err != nil {
		return fmt.Errorf("creating entries sheet: %w", err)
	}

	header := []interface{}{"Period", "Month", "Year", "kWh", "Cost ($)", "Emissions (t CO2e)"}
	if err := f.SetSheetRow(SheetEntries, "A1", &header); err != nil {
		return fmt.Errorf("writing entries header: %w", err)
	}
	if err := f.SetCellStyle(SheetEntries, "A1", "F1", headerStyle); err != nil {
		return fmt.Errorf("styling entries header: %w", err)
	}

	for i, e := range chart.SortChronological(res.Entries) {
		row := []interface{}{chart.PeriodLabel(e), e.Month, e.Year, e.KWh, e.Cost, e.EmissionsTons}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetEntries, cell, &row); err != nil {
			return fmt.Errorf("writing entry row %d: %w", i+1, err)
		}
	}
	return nil
}

func writeRecommendations(f *excelize.File, recs []models.Recommendation, headerStyle int) error {
	if _, err := f.NewSheet(SheetRecommendations); err != nil {
		return fmt.Errorf("creating recommendations sheet: %w", err)
	}

	header := []interface{}{"Title", "Description", "Implementation Cost", "Annual Savings ($)", "CO2e Reduction", "Payback Period"}
	if err := f.SetSheetRow(SheetRecommendations, "A1", &header); err != nil {
		return fmt.Errorf("writing recommendations header: %w", err)
	}
	if err := f.SetCellStyle(SheetRecommendations, "A1", "F1", headerStyle); err != nil {
		return fmt.Errorf("styling recommendations header: %w", err)
	}

	for i, rec := range recs {
		row := []interface{}{rec.Title, rec.Description, rec.ImplementationCost, rec.AnnualSavings, rec.CO2Reduction, rec.PaybackPeriod}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetRecommendations, cell, &row); err != nil {
			return fmt.Errorf("writing recommendation row %d: %w", i+1, err)
		}
	}
	return nil
}
