package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ridgeline/caseflow/internal/api"
	log "github.com/ridgeline/caseflow/internal/logging"
	"github.com/ridgeline/caseflow/internal/narrative"
	"github.com/ridgeline/caseflow/internal/narrative/upstream"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the caseflow narrative gateway",
	Long: `Start the narrative gateway HTTP server.

Loads configuration, wires the upstream model client (or the local-only
fallback when no credential is configured), and serves the narrative API.`,
	Run: func(c *cobra.Command, args []string) {
		log.SetupBaseLogger()

		result, err := Bootstrap(cfgFile)
		if err != nil {
			log.Fatalf("Failed to bootstrap: %v", err)
		}

		cfg := result.Config
		if servePort != 0 {
			cfg.Port = servePort
		}

		if err := log.ConfigureLogOutput(cfg.LoggingToFile); err != nil {
			log.Fatalf("Failed to configure log output: %v", err)
		}

		var invoker upstream.Invoker = upstream.NoopInvoker{}
		if cfg.UpstreamConfigured() {
			invoker = upstream.NewClient(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.UpstreamTimeout())
		} else {
			log.Warnf("no upstream credential configured; serving local fallback narratives only")
		}

		svc := narrative.NewService(cfg, invoker, result.Audit)
		server := api.NewServer(cfg, svc)

		errCh := make(chan error, 1)
		go func() { errCh <- server.Run() }()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			if err != nil {
				log.Fatalf("Server error: %v", err)
			}
		case sig := <-sigCh:
			log.Infof("received %s, shutting down", sig)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Errorf("Shutdown error: %v", err)
		}
		if result.Audit != nil {
			if err := result.Audit.Stop(); err != nil {
				log.Errorf("Audit shutdown error: %v", err)
			}
		}
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "server port (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
