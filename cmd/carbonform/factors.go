package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jgoulah/carbonform/internal/emissions"
)

var factorsZip string

var factorsCmd = &cobra.Command{
	Use:   "factors",
	Short: "List grid emissions factors",
	Long:  `Displays the regional emissions factor table, or the factor used for a single zip code.`,
	RunE:  runFactors,
}

func init() {
	factorsCmd.Flags().StringVar(&factorsZip, "zip", "", "Show the factor for this zip code")
	rootCmd.AddCommand(factorsCmd)
}

func runFactors(cmd *cobra.Command, args []string) error {
	table := emissions.DefaultTable

	if factorsZip != "" {
		m := table.Lookup(factorsZip)
		fmt.Printf("%s: %.2f kg CO2e/kWh (%s)\n", factorsZip, m.Factor, m.Source)
		return nil
	}

	fmt.Println("Grid Emissions Factors:")
	fmt.Println("----------------------------------------")
	fmt.Printf("%-14s  %18s\n", "Zip Range", "kg CO2e/kWh")
	fmt.Println("----------------------------------------")
	for _, r := range table.Ranges() {
		fmt.Printf("%-14s  %18.2f\n", r.Label(), r.Factor)
	}
	fmt.Println("----------------------------------------")
	fmt.Printf("%-14s  %18.2f\n", "Default", table.DefaultFactor())

	return nil
}
