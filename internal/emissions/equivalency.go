package emissions

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// EPA conversion factors, kg CO2e per unit
const (
	KgPerMileDriven       = 0.192
	KgPerSmartphoneCharge = 0.00822
)

// Equivalency expresses an emissions amount in everyday terms
type Equivalency struct {
	MilesDriven        float64 `json:"miles_driven"`
	SmartphonesCharged float64 `json:"smartphones_charged"`
}

// Round2 rounds to cents, halves away from zero
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Equivalencies converts metric tons CO2e into miles driven and phones charged.
// Non-positive or non-finite input yields a zero Equivalency.
func Equivalencies(tons float64) Equivalency {
	if tons <= 0 || math.IsNaN(tons) || math.IsInf(tons, 0) {
		return Equivalency{}
	}
	kg := tons * 1000
	return Equivalency{
		MilesDriven:        kg / KgPerMileDriven,
		SmartphonesCharged: kg / KgPerSmartphoneCharge,
	}
}

// IsZero reports whether there is nothing to display
func (e Equivalency) IsZero() bool {
	return e.MilesDriven == 0 && e.SmartphonesCharged == 0
}

// String renders the equivalency for display
func (e Equivalency) String() string {
	if e.IsZero() {
		return ""
	}
	return fmt.Sprintf("Equivalent to driving ~%s miles or charging ~%s smartphones",
		humanize.Comma(int64(math.Round(e.MilesDriven))),
		humanize.Comma(int64(math.Round(e.SmartphonesCharged))))
}
