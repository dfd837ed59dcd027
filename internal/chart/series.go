// Package chart builds the emissions charts and renders them to HTML or PNG.
package chart

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/jgoulah/carbonform/pkg/models"
)

// Mount points on the results page
const (
	TargetEmissions     = "emissionsChart"
	TargetCostEmissions = "costEmissionsChart"
)

// Kind selects how a chart is drawn
type Kind string

const (
	KindLine    Kind = "line"
	KindScatter Kind = "scatter"
)

// Point is one plotted value. Label names the point on a category axis.
type Point struct {
	Label   string  `json:"label"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Tooltip string  `json:"tooltip"`
}

// Chart is a renderer-independent chart description
type Chart struct {
	Kind        Kind    `json:"kind"`
	Title       string  `json:"title"`
	SeriesName  string  `json:"series_name"`
	XAxis       string  `json:"x_axis"`
	YAxis       string  `json:"y_axis"`
	Color       string  `json:"color"`
	Points      []Point `json:"points"`
	BeginAtZero bool    `json:"begin_at_zero"`
}

// Labels returns the point labels in order
func (c Chart) Labels() []string {
	labels := make([]string, len(c.Points))
	for i, p := range c.Points {
		labels[i] = p.Label
	}
	return labels
}

// EmissionsTimeSeries charts monthly emissions in chronological order.
// The input slice is not reordered.
func EmissionsTimeSeries(entries []models.ProcessedEntry) Chart {
	sorted := SortChronological(entries)

	points := make([]Point, len(sorted))
	for i, e := range sorted {
		label := PeriodLabel(e)
		points[i] = Point{
			Label:   label,
			X:       float64(i),
			Y:       e.EmissionsTons,
			Tooltip: fmt.Sprintf("%s: %.2f tons CO₂e", label, e.EmissionsTons),
		}
	}

	return Chart{
		Kind:        KindLine,
		Title:       "Monthly Emissions",
		SeriesName:  "Emissions (metric tons CO₂e)",
		XAxis:       "Month",
		YAxis:       "Metric Tons CO₂e",
		Color:       "#1a73e8",
		Points:      points,
		BeginAtZero: true,
	}
}

// CostVsEmissionsScatter charts each entry's cost against its emissions
func CostVsEmissionsScatter(entries []models.ProcessedEntry) Chart {
	points := make([]Point, len(entries))
	for i, e := range entries {
		points[i] = Point{
			Label:   PeriodLabel(e),
			X:       e.Cost,
			Y:       e.EmissionsTons,
			Tooltip: Tooltip(e),
		}
	}

	return Chart{
		Kind:       KindScatter,
		Title:      "Cost vs Emissions",
		SeriesName: "Cost vs Emissions",
		XAxis:      "Cost ($)",
		YAxis:      "Emissions (metric tons CO₂e)",
		Color:      "#34a853",
		Points:     points,
	}
}

// SortChronological returns a copy of entries ordered by year, then month.
// Entries in the same month keep their relative order.
func SortChronological(entries []models.ProcessedEntry) []models.ProcessedEntry {
	sorted := make([]models.ProcessedEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Year != sorted[j].Year {
			return sorted[i].Year < sorted[j].Year
		}
		return sorted[i].Month < sorted[j].Month
	})
	return sorted
}

// PeriodLabel renders an entry's month and year, e.g. "Jan 2023"
func PeriodLabel(e models.ProcessedEntry) string {
	return e.MonthLabel + " " + strconv.Itoa(e.Year)
}

// Tooltip renders the scatter tooltip for an entry
func Tooltip(e models.ProcessedEntry) string {
	return fmt.Sprintf("%s: $%s, %.2f tons CO₂e",
		PeriodLabel(e), strconv.FormatFloat(e.Cost, 'f', -1, 64), e.EmissionsTons)
}
