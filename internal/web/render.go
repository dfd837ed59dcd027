package web

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jgoulah/carbonform/internal/chart"
	"github.com/jgoulah/carbonform/internal/emissions"
	"github.com/jgoulah/carbonform/pkg/models"
)

var titleCase = cases.Title(language.English)

// ResultsView holds the formatted values of the results panel
type ResultsView struct {
	Result *models.EmissionsResult

	AnnualEstimate string
	MonthlyAverage string
	Intensity      string
	Total          string
	Factor         string
	FactorSource   string
	Industry       string
	Equivalency    string
	BuildingSize   string

	Rows []ResultRow
}

// ResultRow is one usage entry in the results table, in chronological order
type ResultRow struct {
	Period    string
	KWh       string
	Cost      string
	Emissions string
}

// NewResultsView formats a result for display and draws both charts onto board,
// replacing any charts from an earlier calculation
func NewResultsView(result *models.EmissionsResult, board *chart.Board) *ResultsView {
	view := &ResultsView{
		Result:         result,
		AnnualEstimate: twoDecimals(result.AnnualEstimateTons),
		MonthlyAverage: twoDecimals(result.MonthlyAverageTons),
		Intensity:      twoDecimals(result.EmissionsIntensity),
		Total:          twoDecimals(result.TotalEmissionsTons),
		Factor:         fmt.Sprintf("%.2f", result.Factor),
		FactorSource:   result.FactorSource,
		Industry:       industryLabel(result.Industry),
		BuildingSize:   humanize.Commaf(result.BuildingSize),
	}

	if eq := emissions.Equivalencies(result.AnnualEstimateTons); !eq.IsZero() {
		view.Equivalency = eq.String()
	}

	for _, e := range chart.SortChronological(result.Entries) {
		view.Rows = append(view.Rows, ResultRow{
			Period:    chart.PeriodLabel(e),
			KWh:       humanize.Commaf(e.KWh),
			Cost:      "$" + humanize.CommafWithDigits(e.Cost, 2),
			Emissions: twoDecimals(e.EmissionsTons),
		})
	}

	board.Render(chart.TargetEmissions, chart.EmissionsTimeSeries(result.Entries))
	board.Render(chart.TargetCostEmissions, chart.CostVsEmissionsScatter(result.Entries))

	return view
}

func twoDecimals(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func industryLabel(industry string) string {
	if industry == "" {
		return "Unspecified"
	}
	return titleCase.String(industry)
}
