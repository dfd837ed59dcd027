package models

// Recommendation is a single energy efficiency suggestion
type Recommendation struct {
	Title              string `json:"title"`
	Description        string `json:"description"`
	ImplementationCost string `json:"implementation_cost"`
	AnnualSavings      string `json:"annual_savings"` // Dollars, formatted
	CO2Reduction       string `json:"co2_reduction"`
	PaybackPeriod      string `json:"payback_period"`
}
