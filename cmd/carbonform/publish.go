package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jgoulah/carbonform/internal/emissions"
	"github.com/jgoulah/carbonform/internal/publisher"
)

var publishDryRun bool

var publishCmd = &cobra.Command{
	Use:   "publish [usage-file]",
	Short: "Publish an emissions summary to MQTT and Home Assistant",
	Long: `Calculates emissions for a usage file and publishes the summary to the
MQTT broker and/or Home Assistant entity enabled in config.`,
	Args: cobra.ExactArgs(1),
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().BoolVar(&publishDryRun, "dry-run", false, "Calculate and print the summary without publishing")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Publish started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	in, err := loadInput(args[0])
	if err != nil {
		return err
	}

	b := in.Business
	result, err := emissions.Compute(b.ZipCode, in.Entries, b.BuildingSize, b.Industry)
	if err != nil {
		return fmt.Errorf("calculating emissions: %w", err)
	}
	summary := publisher.NewSummary(b, result, time.Now())

	fmt.Printf("Annual estimate: %.2f t CO2e over %d months\n", summary.AnnualEstimateTons, summary.Months)
	if publishDryRun {
		return nil
	}

	if !cfg.MQTT.Enabled && !cfg.HomeAssistant.Enabled {
		return fmt.Errorf("neither MQTT nor Home Assistant is enabled in config")
	}

	pub, err := publisher.New(cfg.MQTT, cfg.HomeAssistant, cfg.GetTopicPrefix())
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}
	defer pub.Close()

	if err := pub.Publish(summary); err != nil {
		return fmt.Errorf("publishing summary: %w", err)
	}

	if cfg.MQTT.Enabled {
		fmt.Printf("✓ Published to %s\n", pub.Topic(summary.Business))
	}
	if cfg.HomeAssistant.Enabled {
		fmt.Printf("✓ Updated %s\n", cfg.HomeAssistant.EntityID)
	}
	return nil
}
