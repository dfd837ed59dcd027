package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jgoulah/carbonform/internal/snapshot"
)

var (
	snapshotURL     string
	snapshotOutput  string
	snapshotWait    string
	snapshotTimeout time.Duration
	snapshotVisible bool
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save the results page as PNG or PDF",
	Long: `Opens the running carbonform page in a headless browser and saves it.
The format follows the output file extension (.png or .pdf).`,
	RunE: runSnapshot,
}

func init() {
	snapshotCmd.Flags().StringVar(&snapshotURL, "url", "", "Page to capture (default: server.public_url from config)")
	snapshotCmd.Flags().StringVarP(&snapshotOutput, "output", "o", "results.png", "Output file (.png or .pdf)")
	snapshotCmd.Flags().StringVar(&snapshotWait, "wait", snapshot.DefaultWaitSelector, "CSS selector to wait for before capturing")
	snapshotCmd.Flags().DurationVar(&snapshotTimeout, "timeout", 30*time.Second, "Capture timeout")
	snapshotCmd.Flags().BoolVar(&snapshotVisible, "visible", false, "Show browser window (for debugging)")
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	format, err := snapshot.FormatFromPath(snapshotOutput)
	if err != nil {
		return err
	}

	url := snapshotURL
	if url == "" {
		url = cfg.GetPublicURL()
	}

	fmt.Printf("Capturing %s...\n", url)
	data, err := snapshot.Capture(cmd.Context(), snapshot.Options{
		URL:     url,
		Format:  format,
		WaitFor: snapshotWait,
		Timeout: snapshotTimeout,
		Visible: snapshotVisible,
	})
	if err != nil {
		return err
	}

	if err := os.WriteFile(snapshotOutput, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", snapshotOutput, err)
	}
	fmt.Printf("✓ Saved %s (%d bytes)\n", snapshotOutput, len(data))
	return nil
}
