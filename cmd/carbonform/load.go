package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jgoulah/carbonform/internal/database"
)

var loadService string

var loadCmd = &cobra.Command{
	Use:   "load [usage-export.csv]",
	Short: "Load a utility usage export into the usage database",
	Long: `Reads a utility usage CSV export (TYPE, DATE, START TIME, END TIME, USAGE)
and stores its readings in the usage database, creating it if needed.
Readings already present for the same interval are skipped. Use the
import command afterwards to build a monthly usage file.`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().StringVar(&loadService, "service", "", "Service the readings belong to (default: import.service from config)")
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	service := loadService
	if service == "" {
		service = cfg.GetImportService()
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening usage export: %w", err)
	}
	defer f.Close()

	readings, err := database.ParseReadingsCSV(f, service)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}
	if len(readings) == 0 {
		return fmt.Errorf("no readings found in %s", args[0])
	}

	db, err := database.New(getDBPath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	added, err := db.InsertReadings(readings)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Loaded %d new readings for %s into %s (%d already present)\n",
		added, service, getDBPath(), len(readings)-added)
	return nil
}
