package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jgoulah/carbonform/internal/config"
	"github.com/jgoulah/carbonform/internal/database"
	"github.com/jgoulah/carbonform/internal/log"
	"github.com/jgoulah/carbonform/internal/usage"
)

var (
	cfgFile string
	dbPath  string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "carbonform",
	Short: "Estimate a small business's electricity carbon footprint",
	Long: `carbonform collects monthly electricity usage, applies regional grid
emissions factors and reports emissions totals, charts and efficiency
recommendations. Run "carbonform serve" for the browser form or use the
calc command with a usage file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return log.Init(debug)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		log.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "usage database file (default is ./data.db)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// getDBPath returns the database file path (local directory)
func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	return "data.db"
}

// loadConfig loads the configuration file
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return nil, err
	}
	if cfg.Debug && !debug {
		if err := log.Init(true); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// openDB opens an existing usage database
func openDB() (*database.DB, error) {
	path := getDBPath()
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("usage database %s: %w", path, err)
	}
	return database.New(path)
}

// loadInput reads and validates a usage file
func loadInput(path string) (*usage.Input, error) {
	in, err := usage.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", filepath.Base(path), err)
	}
	return in, nil
}
