package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jgoulah/carbonform/internal/recommend"
)

var (
	recommendIndustry  string
	recommendEquipment []string
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "List efficiency recommendations",
	Long:  `Displays energy efficiency recommendations for a business.`,
	RunE:  runRecommend,
}

func init() {
	recommendCmd.Flags().StringVar(&recommendIndustry, "industry", "", "Business industry")
	recommendCmd.Flags().StringSliceVar(&recommendEquipment, "equipment", nil, "Equipment in use (comma separated)")
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, args []string) error {
	for i, rec := range recommend.For(recommendIndustry, recommendEquipment) {
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("%d. %s\n", i+1, rec.Title)
		fmt.Printf("   %s\n", rec.Description)
		fmt.Printf("   Implementation Cost: %s\n", rec.ImplementationCost)
		fmt.Printf("   Annual Savings:      $%s\n", rec.AnnualSavings)
		fmt.Printf("   CO2e Reduction:      %s\n", rec.CO2Reduction)
		fmt.Printf("   Payback Period:      %s\n", rec.PaybackPeriod)
	}
	return nil
}
