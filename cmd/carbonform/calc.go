package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jgoulah/carbonform/internal/chart"
	"github.com/jgoulah/carbonform/internal/emissions"
	"github.com/jgoulah/carbonform/internal/export"
	"github.com/jgoulah/carbonform/internal/recommend"
	"github.com/jgoulah/carbonform/pkg/models"
)

var (
	calcZip      string
	calcSize     float64
	calcIndustry string
	calcPlotDir  string
	calcXLSX     string
	calcJSON     bool
)

var calcCmd = &cobra.Command{
	Use:   "calc [usage-file]",
	Short: "Calculate emissions from a usage file",
	Long: `Reads monthly usage from a YAML or CSV file and prints the emissions summary.
Business fields in the file can be overridden with flags. Charts can be written
as PNG files and the full report as an XLSX workbook.`,
	Args: cobra.ExactArgs(1),
	RunE: runCalc,
}

func init() {
	calcCmd.Flags().StringVar(&calcZip, "zip", "", "Zip code (overrides the file)")
	calcCmd.Flags().Float64Var(&calcSize, "size", 0, "Building size in sq ft (overrides the file)")
	calcCmd.Flags().StringVar(&calcIndustry, "industry", "", "Industry (overrides the file)")
	calcCmd.Flags().StringVar(&calcPlotDir, "plot-dir", "", "Write emissions.png and cost_emissions.png to this directory")
	calcCmd.Flags().StringVar(&calcXLSX, "xlsx", "", "Write the report to this XLSX file")
	calcCmd.Flags().BoolVar(&calcJSON, "json", false, "Print the result as JSON")
	rootCmd.AddCommand(calcCmd)
}

func runCalc(cmd *cobra.Command, args []string) error {
	in, err := loadInput(args[0])
	if err != nil {
		return err
	}

	business := in.Business
	if calcZip != "" {
		business.ZipCode = calcZip
	}
	if cmd.Flags().Changed("size") {
		business.BuildingSize = calcSize
	}
	if calcIndustry != "" {
		business.Industry = calcIndustry
	}

	result, err := emissions.Compute(business.ZipCode, in.Entries, business.BuildingSize, business.Industry)
	if err != nil {
		return fmt.Errorf("calculating emissions: %w", err)
	}

	if calcJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
	} else {
		printResult(business, result)
	}

	if calcPlotDir != "" {
		if err := writePlots(calcPlotDir, result); err != nil {
			return err
		}
	}

	if calcXLSX != "" {
		if err := writeWorkbook(calcXLSX, business, result); err != nil {
			return err
		}
		fmt.Printf("✓ Wrote %s\n", calcXLSX)
	}

	return nil
}

func printResult(b models.Business, r *models.EmissionsResult) {
	if b.Name != "" {
		fmt.Printf("\n%s Emissions:\n", b.Name)
	} else {
		fmt.Println("\nEmissions:")
	}
	fmt.Println("------------------------------------------------------")
	fmt.Printf("%-10s  %12s  %12s  %12s\n", "Month", "kWh", "Cost", "t CO2e")
	fmt.Println("------------------------------------------------------")
	for _, e := range chart.SortChronological(r.Entries) {
		fmt.Printf("%-10s  %12s  %12s  %12.2f\n",
			chart.PeriodLabel(e),
			humanize.Commaf(e.KWh),
			"$"+humanize.CommafWithDigits(e.Cost, 2),
			e.EmissionsTons)
	}
	fmt.Println("------------------------------------------------------")
	fmt.Printf("Grid factor:          %.2f kg CO2e/kWh (%s)\n", r.Factor, r.FactorSource)
	fmt.Printf("Total emissions:      %.2f t CO2e (%d months)\n", r.TotalEmissionsTons, len(r.Entries))
	fmt.Printf("Monthly average:      %.2f t CO2e\n", r.MonthlyAverageTons)
	fmt.Printf("Annual estimate:      %.2f t CO2e\n", r.AnnualEstimateTons)
	fmt.Printf("Emissions intensity:  %.2f kg CO2e/sq ft (%s sq ft)\n", r.EmissionsIntensity, humanize.Commaf(r.BuildingSize))
	if eq := emissions.Equivalencies(r.AnnualEstimateTons); !eq.IsZero() {
		fmt.Println(eq.String())
	}
}

func writePlots(dir string, r *models.EmissionsResult) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating plot directory: %w", err)
	}

	plots := map[string]chart.Chart{
		"emissions.png":      chart.EmissionsTimeSeries(r.Entries),
		"cost_emissions.png": chart.CostVsEmissionsScatter(r.Entries),
	}
	for name, c := range plots {
		path := filepath.Join(dir, name)
		if err := chart.SavePNG(path, c); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
		fmt.Printf("✓ Wrote %s\n", path)
	}
	return nil
}

func writeWorkbook(path string, b models.Business, r *models.EmissionsResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating workbook: %w", err)
	}

	err = export.WriteWorkbook(f, export.Report{
		Business:        b,
		Result:          r,
		Recommendations: recommend.For(b.Industry, b.Equipment),
	})
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return err
}
