package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jgoulah/netdash/internal/dashboard"
	"github.com/jgoulah/netdash/internal/telemetry"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard",
	Long:  `Loads both CSV files once and serves the filterable dashboard over HTTP until interrupted.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: listen_addr from config, or :8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "=== Serve started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	cfg, engine, err := loadEngine(out)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("setting up telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	addr := serveAddr
	if addr == "" {
		addr = cfg.GetListenAddr()
	}

	log.SetPrefix("[DASHBOARD] ")
	log.Printf("listening on %s (%d rows, regions: %d)", addr, engine.Len(), len(engine.Regions().Names()))
	if err := dashboard.NewServer(engine, log.Default()).ListenAndServe(ctx, addr); err != nil {
		return err
	}
	log.Printf("stopped")
	return nil
}
