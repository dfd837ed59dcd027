package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jgoulah/carbonform/internal/web"
)

var (
	serveAddr  string
	serveDelay time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the carbon footprint form",
	Long:  `Starts the web server with the business data form, emissions results and recommendations.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "listen", "", "listen address (overrides server.listen_addr)")
	serveCmd.Flags().DurationVar(&serveDelay, "delay", 0, "artificial calculation delay (overrides server.compute_delay, negative disables)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if serveAddr != "" {
		cfg.Server.ListenAddr = serveAddr
	}
	if cmd.Flags().Changed("delay") {
		cfg.Server.ComputeDelay = serveDelay
	}

	ctrl, err := web.NewController(cfg)
	if err != nil {
		return fmt.Errorf("creating web controller: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(ctrl.ListenAndServe)
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return ctrl.Shutdown(shutdownCtx)
	})

	fmt.Printf("Carbon footprint form at %s\n", cfg.GetPublicURL())
	return g.Wait()
}
