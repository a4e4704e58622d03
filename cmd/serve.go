package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-id/internal/analyze"
	"github.com/kozaktomas/face-id/internal/config"
	"github.com/kozaktomas/face-id/internal/faceserver"
	"github.com/kozaktomas/face-id/internal/identity/postgres"
	"github.com/kozaktomas/face-id/internal/web"
	"github.com/kozaktomas/face-id/internal/web/handlers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Face ID web server.
The server exposes registration, identification and analysis endpoints.
With DATABASE_URL set, registered identities are persisted to PostgreSQL
and reloaded at startup; without it the gallery lives in memory only.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().String("analyze-provider", "local", "Analysis provider: local, openai, gemini, none")
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	store := newStoreFromConfig(cfg)
	var repo handlers.IdentityRepository

	if cfg.Database.URL != "" {
		fmt.Printf("Connecting to PostgreSQL database...\n")
		pool, err := postgres.Initialize(&cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
		}
		defer pool.Close()

		pgRepo := postgres.NewRepository(pool, cfg.Matching.Model)
		records, err := pgRepo.LoadAll(context.Background())
		if err != nil {
			return fmt.Errorf("failed to load identities: %w", err)
		}
		if err := store.Load(records); err != nil {
			return fmt.Errorf("failed to rebuild store: %w", err)
		}
		repo = pgRepo
		fmt.Printf("Loaded %d identities from PostgreSQL\n", store.Count())
	} else {
		fmt.Println("DATABASE_URL not set, running memory-only")
	}

	extractor := faceserver.NewClient(cfg.FaceServer.URL)

	var analyzer analyze.Provider
	if name := mustGetString(cmd, "analyze-provider"); name != "none" {
		var err error
		analyzer, err = analyze.NewProvider(context.Background(), name, cfg)
		if err != nil {
			return fmt.Errorf("failed to create analysis provider: %w", err)
		}
	}

	port, host := resolveServeHostPort(cmd)
	server := web.NewServer(cfg, store, extractor, analyzer, repo, port, host)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Matching with model %s (dim=%d, threshold=%g, metric=%s)\n",
		cfg.Matching.Model, cfg.Matching.Dim, cfg.Matching.Threshold, cfg.Matching.Metric)
	fmt.Printf("Starting Face ID API on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
