package emissions

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/carbonform/pkg/models"
)

const tolerance = 1e-9

func TestCompute_Scenarios(t *testing.T) {
	tests := []struct {
		name        string
		zip         string
		entries     []models.UsageEntry
		wantFactor  float64
		wantTons    float64
		wantMonthly float64
		wantAnnual  float64
	}{
		{
			name:        "zip 55000 uses 0.55",
			zip:         "55000",
			entries:     []models.UsageEntry{{Month: 1, Year: 2023, KWh: 1000, Cost: 150}},
			wantFactor:  0.55,
			wantTons:    0.55,
			wantMonthly: 0.55,
			wantAnnual:  6.6,
		},
		{
			name:        "zip 99999 uses 0.35",
			zip:         "99999",
			entries:     []models.UsageEntry{{Month: 6, Year: 2023, KWh: 2000, Cost: 300}},
			wantFactor:  0.35,
			wantTons:    0.7,
			wantMonthly: 0.7,
			wantAnnual:  8.4,
		},
		{
			name:        "non-numeric zip falls back to default",
			zip:         "abc",
			entries:     []models.UsageEntry{{Month: 3, Year: 2024, KWh: 1000, Cost: 120}},
			wantFactor:  DefaultFactor,
			wantTons:    0.5,
			wantMonthly: 0.5,
			wantAnnual:  6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Compute(tt.zip, tt.entries, 5000, "office")
			require.NoError(t, err)

			assert.InDelta(t, tt.wantFactor, result.Factor, tolerance)
			require.Len(t, result.Entries, 1)
			assert.InDelta(t, tt.wantTons, result.Entries[0].EmissionsTons, tolerance)
			assert.InDelta(t, tt.wantMonthly, result.MonthlyAverageTons, tolerance)
			assert.InDelta(t, tt.wantAnnual, result.AnnualEstimateTons, tolerance)
			assert.Equal(t, "office", result.Industry)
		})
	}
}

func TestCompute_AggregateInvariants(t *testing.T) {
	entries := []models.UsageEntry{
		{Month: 1, Year: 2023, KWh: 1200, Cost: 180},
		{Month: 2, Year: 2023, KWh: 950.5, Cost: 140.25},
		{Month: 3, Year: 2023, KWh: 0, Cost: 0},
		{Month: 12, Year: 2022, KWh: 3100, Cost: 410},
	}

	result, err := Compute("30301", entries, 2500, "retail")
	require.NoError(t, err)

	var total float64
	for _, e := range result.Entries {
		total += e.EmissionsTons
	}
	assert.InDelta(t, total, result.TotalEmissionsTons, tolerance)
	assert.InDelta(t, result.TotalEmissionsTons/float64(len(entries)), result.MonthlyAverageTons, tolerance)
	assert.InDelta(t, result.MonthlyAverageTons*12, result.AnnualEstimateTons, tolerance)
	assert.InDelta(t, result.TotalEmissionsTons*1000/2500, result.EmissionsIntensity, tolerance)
	assert.Equal(t, 2500.0, result.BuildingSize)
}

func TestCompute_PreservesOrderAndLabels(t *testing.T) {
	entries := []models.UsageEntry{
		{Month: 12, Year: 2023, KWh: 10, Cost: 1},
		{Month: 1, Year: 2023, KWh: 20, Cost: 2},
	}

	result, err := Compute("10001", entries, 100, "")
	require.NoError(t, err)

	assert.Equal(t, "Dec", result.Entries[0].MonthLabel)
	assert.Equal(t, 12, result.Entries[0].Month)
	assert.Equal(t, "Jan", result.Entries[1].MonthLabel)
	assert.Equal(t, "00000-19999", result.FactorSource)
}

func TestCompute_Idempotent(t *testing.T) {
	entries := []models.UsageEntry{
		{Month: 4, Year: 2024, KWh: 870, Cost: 99.5},
		{Month: 5, Year: 2024, KWh: 910, Cost: 104},
	}

	first, err := Compute("70000", entries, 1800, "restaurant")
	require.NoError(t, err)
	second, err := Compute("70000", entries, 1800, "restaurant")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCompute_DegenerateInput(t *testing.T) {
	entries := []models.UsageEntry{{Month: 1, Year: 2023, KWh: 100, Cost: 10}}

	tests := []struct {
		name      string
		entries   []models.UsageEntry
		size      float64
		wantErrIs error
	}{
		{name: "zero building size", entries: entries, size: 0, wantErrIs: ErrInvalidBuildingSize},
		{name: "negative building size", entries: entries, size: -10, wantErrIs: ErrInvalidBuildingSize},
		{name: "NaN building size", entries: entries, size: math.NaN(), wantErrIs: ErrInvalidBuildingSize},
		{name: "infinite building size", entries: entries, size: math.Inf(1), wantErrIs: ErrInvalidBuildingSize},
		{name: "no entries", entries: nil, size: 1000, wantErrIs: ErrNoEntries},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Compute("55000", tt.entries, tt.size, "office")
			require.Error(t, err)
			assert.Nil(t, result)

			var compErr *ComputationError
			require.True(t, errors.As(err, &compErr))
			assert.ErrorIs(t, err, tt.wantErrIs)
		})
	}
}

func TestCompute_RejectsInvalidEntries(t *testing.T) {
	tests := []struct {
		name      string
		entry     models.UsageEntry
		wantField string
	}{
		{name: "month zero", entry: models.UsageEntry{Month: 0, Year: 2023}, wantField: "month"},
		{name: "month thirteen", entry: models.UsageEntry{Month: 13, Year: 2023}, wantField: "month"},
		{name: "year too old", entry: models.UsageEntry{Month: 1, Year: 1999}, wantField: "year"},
		{name: "negative kWh", entry: models.UsageEntry{Month: 1, Year: 2023, KWh: -1}, wantField: "kWh"},
		{name: "NaN kWh", entry: models.UsageEntry{Month: 1, Year: 2023, KWh: math.NaN()}, wantField: "kWh"},
		{name: "infinite cost", entry: models.UsageEntry{Month: 1, Year: 2023, Cost: math.Inf(1)}, wantField: "cost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			good := models.UsageEntry{Month: 1, Year: 2023, KWh: 1, Cost: 1}
			_, err := Compute("55000", []models.UsageEntry{good, tt.entry}, 100, "")

			var valErr *ValidationError
			require.True(t, errors.As(err, &valErr))
			assert.Equal(t, 2, valErr.Row)
			assert.Equal(t, tt.wantField, valErr.Field)
			assert.ErrorIs(t, err, ErrInvalidField)
		})
	}
}

func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "Jan", MonthLabel(1))
	assert.Equal(t, "Sep", MonthLabel(9))
	assert.Equal(t, "Dec", MonthLabel(12))
	assert.Equal(t, "", MonthLabel(0))
	assert.Equal(t, "", MonthLabel(13))
}

func TestEquivalencies(t *testing.T) {
	eq := Equivalencies(0.15)
	assert.InDelta(t, 781.25, eq.MilesDriven, 0.01)
	assert.InDelta(t, 18248.18, eq.SmartphonesCharged, 0.01)
	assert.Contains(t, eq.String(), "781 miles")
	assert.Contains(t, eq.String(), "18,248 smartphones")

	assert.True(t, Equivalencies(0).IsZero())
	assert.True(t, Equivalencies(math.NaN()).IsZero())
	assert.Equal(t, "", Equivalencies(-1).String())
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.38, Round2(1.375))
	assert.Equal(t, -1.38, Round2(-1.375))
	assert.Equal(t, -0.5, Round2(-0.499))
	assert.Equal(t, 0.0, Round2(0.001))
}
