package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jgoulah/carbonform/internal/usage"
	"github.com/jgoulah/carbonform/pkg/models"
)

var (
	importService  string
	importRate     float64
	importMonths   int
	importOutput   string
	importName     string
	importZip      string
	importSize     float64
	importIndustry string
	importList     bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Build a usage file from metered readings",
	Long: `Reads daily or interval kWh readings from a sqlite usage database,
sums them by month and writes a YAML usage file for the calc command.
Monthly cost is estimated from the configured rate.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importService, "service", "", "Service to import (default: import.service from config)")
	importCmd.Flags().Float64Var(&importRate, "rate", 0, "Electricity rate in $/kWh (default: import.rate from config)")
	importCmd.Flags().IntVar(&importMonths, "months", 12, "Keep only the most recent N months (0 = all)")
	importCmd.Flags().StringVarP(&importOutput, "output", "o", "usage.yaml", "Output usage file")
	importCmd.Flags().StringVar(&importName, "name", "", "Business name")
	importCmd.Flags().StringVar(&importZip, "zip", "", "Business zip code")
	importCmd.Flags().Float64Var(&importSize, "size", 0, "Building size in sq ft")
	importCmd.Flags().StringVar(&importIndustry, "industry", "", "Business industry")
	importCmd.Flags().BoolVar(&importList, "list-services", false, "List services in the database and exit")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if importList {
		services, err := db.Services()
		if err != nil {
			return err
		}
		if len(services) == 0 {
			fmt.Println("No services found")
		}
		for _, s := range services {
			fmt.Println(s)
		}
		return nil
	}

	service := importService
	if service == "" {
		service = cfg.GetImportService()
	}
	rate := importRate
	if !cmd.Flags().Changed("rate") {
		rate = cfg.GetImportRate()
	}

	entries, err := db.MonthlyUsage(service, rate)
	if err != nil {
		return fmt.Errorf("reading usage for %s: %w", service, err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("no usage data found for %s", service)
	}
	entries = lastMonths(entries, importMonths)

	in := &usage.Input{
		Business: models.Business{
			Name:         importName,
			Industry:     importIndustry,
			ZipCode:      importZip,
			BuildingSize: importSize,
		},
		Entries: entries,
	}
	if err := usage.WriteFile(importOutput, in); err != nil {
		return err
	}

	var total float64
	for _, e := range entries {
		total += e.KWh
	}
	fmt.Printf("✓ Wrote %d months (%s kWh) for %s to %s\n",
		len(entries), humanize.Commaf(total), service, importOutput)
	return nil
}

// lastMonths keeps the newest n entries of a chronologically sorted list
func lastMonths(entries []models.UsageEntry, n int) []models.UsageEntry {
	if n <= 0 || len(entries) <= n {
		return entries
	}
	return entries[len(entries)-n:]
}
