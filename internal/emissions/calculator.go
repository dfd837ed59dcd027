package emissions

import (
	"math"
	"strconv"
	"time"

	"github.com/jgoulah/carbonform/pkg/models"
)

// Year bounds accepted for a usage entry
const (
	MinYear = 2000
	MaxYear = 2100
)

// Compute calculates emissions against the default regional table.
func Compute(zipCode string, entries []models.UsageEntry, buildingSize float64, industry string) (*models.EmissionsResult, error) {
	return DefaultTable.Compute(zipCode, entries, buildingSize, industry)
}

// Compute maps a zip code, usage entries and building size to an emissions result.
//
// Entries keep their input order. An empty entry list or a non-positive
// building size returns a *ComputationError instead of non-finite values;
// an invalid entry returns a *ValidationError.
func (t *FactorTable) Compute(zipCode string, entries []models.UsageEntry, buildingSize float64, industry string) (*models.EmissionsResult, error) {
	if len(entries) == 0 {
		return nil, &ComputationError{Field: "monthly average", Err: ErrNoEntries}
	}
	if math.IsNaN(buildingSize) || math.IsInf(buildingSize, 0) || buildingSize <= 0 {
		return nil, &ComputationError{Field: "emissions intensity", Err: ErrInvalidBuildingSize}
	}
	for i, e := range entries {
		if err := ValidateEntry(i+1, e); err != nil {
			return nil, err
		}
	}

	match := t.Lookup(zipCode)

	processed := make([]models.ProcessedEntry, len(entries))
	var total float64
	for i, e := range entries {
		tons := e.KWh * match.Factor / 1000 // kg -> metric tons
		processed[i] = models.ProcessedEntry{
			UsageEntry:    e,
			EmissionsTons: tons,
			MonthLabel:    MonthLabel(e.Month),
		}
		total += tons
	}

	monthlyAverage := total / float64(len(processed))

	return &models.EmissionsResult{
		Entries:            processed,
		Factor:             match.Factor,
		FactorSource:       match.Source,
		TotalEmissionsTons: total,
		MonthlyAverageTons: monthlyAverage,
		AnnualEstimateTons: monthlyAverage * 12,
		EmissionsIntensity: total * 1000 / buildingSize,
		BuildingSize:       buildingSize,
		Industry:           industry,
	}, nil
}

// ValidateEntry checks a usage entry's ranges. row is 1-based.
func ValidateEntry(row int, e models.UsageEntry) error {
	if e.Month < 1 || e.Month > 12 {
		return &ValidationError{Row: row, Field: "month", Value: strconv.Itoa(e.Month), Reason: "must be between 1 and 12"}
	}
	if e.Year < MinYear || e.Year > MaxYear {
		return &ValidationError{Row: row, Field: "year", Value: strconv.Itoa(e.Year), Reason: "must be between 2000 and 2100"}
	}
	if err := checkAmount(row, "kWh", e.KWh); err != nil {
		return err
	}
	return checkAmount(row, "cost", e.Cost)
}

func checkAmount(row int, field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ValidationError{Row: row, Field: field, Reason: "must be a finite number"}
	}
	if v < 0 {
		return &ValidationError{Row: row, Field: field, Value: strconv.FormatFloat(v, 'f', -1, 64), Reason: "must not be negative"}
	}
	return nil
}

// MonthLabel returns the three-letter abbreviation for a month number
func MonthLabel(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return time.Month(month).String()[:3]
}
