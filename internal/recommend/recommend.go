// Package recommend provides the energy efficiency recommendations shown after a calculation.
package recommend

import "github.com/jgoulah/carbonform/pkg/models"

// Option is a selectable form value with its display label
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var recommendations = []models.Recommendation{
	{
		Title:              "LED Lighting Upgrade",
		Description:        "Replace all fluorescent lighting with LED alternatives to reduce energy consumption.",
		ImplementationCost: "$2,000 - $5,000",
		AnnualSavings:      "1,200",
		CO2Reduction:       "4.5 tons",
		PaybackPeriod:      "1.7 - 4.2 years",
	},
	{
		Title:              "Smart Thermostat Installation",
		Description:        "Install programmable thermostats to optimize heating and cooling schedules.",
		ImplementationCost: "$200 - $500",
		AnnualSavings:      "800",
		CO2Reduction:       "3.2 tons",
		PaybackPeriod:      "0.3 - 0.6 years",
	},
	{
		Title:              "HVAC Maintenance Program",
		Description:        "Implement regular HVAC maintenance to ensure peak efficiency.",
		ImplementationCost: "$500 - $1,500 annually",
		AnnualSavings:      "1,500",
		CO2Reduction:       "5.8 tons",
		PaybackPeriod:      "0.3 - 1.0 years",
	},
	{
		Title:              "Office Equipment Power Management",
		Description:        "Configure computers and equipment to use sleep modes and power saving features.",
		ImplementationCost: "$0 - $100",
		AnnualSavings:      "400",
		CO2Reduction:       "1.6 tons",
		PaybackPeriod:      "Immediate",
	},
	{
		Title:              "Energy Management System",
		Description:        "Install an automated energy management system to monitor and control usage.",
		ImplementationCost: "$5,000 - $15,000",
		AnnualSavings:      "4,500",
		CO2Reduction:       "18 tons",
		PaybackPeriod:      "1.1 - 3.3 years",
	},
}

// For returns the recommendations for a business.
//
// The industry and equipment selection are accepted so callers do not change
// when filtering is added, but today the same five recommendations are
// returned for every input, in declared order.
func For(industry string, equipment []string) []models.Recommendation {
	out := make([]models.Recommendation, len(recommendations))
	copy(out, recommendations)
	return out
}

// Industries returns the industry dropdown values
func Industries() []Option {
	return []Option{
		{Value: "office", Label: "Office"},
		{Value: "retail", Label: "Retail"},
		{Value: "restaurant", Label: "Restaurant"},
		{Value: "manufacturing", Label: "Manufacturing"},
		{Value: "healthcare", Label: "Healthcare"},
		{Value: "hospitality", Label: "Hospitality"},
		{Value: "other", Label: "Other"},
	}
}

// EquipmentOptions returns the equipment checkbox values
func EquipmentOptions() []Option {
	return []Option{
		{Value: "hvac", Label: "HVAC"},
		{Value: "lighting", Label: "Lighting"},
		{Value: "refrigeration", Label: "Refrigeration"},
		{Value: "computers", Label: "Computers & Office Equipment"},
		{Value: "cooking", Label: "Commercial Cooking"},
		{Value: "machinery", Label: "Industrial Machinery"},
	}
}
