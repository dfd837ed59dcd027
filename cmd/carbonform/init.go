package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jgoulah/carbonform/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	Long: `Writes a config file with the default server and import settings filled
in. CARBONFORM_* environment variables that are set are written as well.
An existing file is left alone unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path := getConfigPath()
	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := config.Save(path, starterConfig(cfg)); err != nil {
		return err
	}

	fmt.Printf("✓ Wrote config to %s\n", path)
	return nil
}

// starterConfig fills the defaults into cfg so the written file shows them
func starterConfig(cfg *config.Config) *config.Config {
	out := *cfg
	out.Server.ListenAddr = cfg.GetListenAddr()
	if out.Server.ComputeDelay == 0 {
		out.Server.ComputeDelay = cfg.GetComputeDelay()
	}
	out.MQTT.TopicPrefix = cfg.GetTopicPrefix()
	out.Import.Service = cfg.GetImportService()
	out.Import.Rate = cfg.GetImportRate()
	return &out
}
