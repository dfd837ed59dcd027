package models

// UsageEntry represents a single month's electricity usage
type UsageEntry struct {
	Month int     `json:"month" yaml:"month"` // 1-12
	Year  int     `json:"year" yaml:"year"`
	KWh   float64 `json:"kwh" yaml:"kwh"`
	Cost  float64 `json:"cost" yaml:"cost"` // Dollars billed for the month
}

// ProcessedEntry is a UsageEntry with its computed emissions
type ProcessedEntry struct {
	UsageEntry
	EmissionsTons float64 `json:"emissions_tons"` // Metric tons CO2e
	MonthLabel    string  `json:"month_label"`    // "Jan", "Feb", ...
}

// EmissionsResult holds the aggregate output of an emissions calculation
type EmissionsResult struct {
	Entries            []ProcessedEntry `json:"entries"`
	Factor             float64          `json:"factor"`        // kg CO2e per kWh
	FactorSource       string           `json:"factor_source"` // Range label or "default"
	TotalEmissionsTons float64          `json:"total_emissions_tons"`
	MonthlyAverageTons float64          `json:"monthly_average_tons"`
	AnnualEstimateTons float64          `json:"annual_estimate_tons"`
	EmissionsIntensity float64          `json:"emissions_intensity"` // kg CO2e per sq ft
	BuildingSize       float64          `json:"building_size"`       // sq ft
	Industry           string           `json:"industry"`
}

// Business holds the header fields of the usage form
type Business struct {
	Name         string   `json:"name" yaml:"name"`
	Industry     string   `json:"industry" yaml:"industry"`
	ZipCode      string   `json:"zip_code" yaml:"zip_code"`
	BuildingSize float64  `json:"building_size" yaml:"building_size"`
	Equipment    []string `json:"equipment,omitempty" yaml:"equipment,omitempty"`
}
