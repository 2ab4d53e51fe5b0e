package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/zenith/industry-insights/internal/backoff"
	"github.com/zenith/industry-insights/internal/db"
	"github.com/zenith/industry-insights/internal/llm"
	"github.com/zenith/industry-insights/internal/pipeline"
	"github.com/zenith/industry-insights/internal/scheduler"
)

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "Run the refresh daemon on its weekly schedule",
	Long: `Starts the cron scheduler that refreshes every tracked industry on the configured cadence (default: Sunday midnight), plus an HTTP endpoint exposing /healthz and Prometheus /metrics.

The scheduler never overlaps runs: a firing that arrives while the previous batch is still in flight is skipped.`,
	RunE: runServe,
}

var (
	serveConfigPath string
	serveSchedule   string
	serveListenAddr string
	serveDBURL      string
	serveAPIKey     string
	serveModel      string
	serveDebug      bool
	serveImmediate  bool
)

func init() {
	serveCommand.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	serveCommand.Flags().StringVar(&serveSchedule, "schedule", "", "Cron expression for the refresh cadence (default \"0 0 * * 0\")")
	serveCommand.Flags().StringVar(&serveListenAddr, "listen", "", "Address for the health/metrics HTTP server (default :9090)")
	serveCommand.Flags().StringVar(&serveDBURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	serveCommand.Flags().StringVar(&serveAPIKey, "api-key", "", "Gemini API key (defaults to GEMINI_API_KEY env var)")
	serveCommand.Flags().StringVar(&serveModel, "model", "", "Gemini model name")
	serveCommand.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	serveCommand.Flags().BoolVar(&serveImmediate, "refresh-on-start", false, "Run one refresh batch immediately on startup")

	rootCmd.AddCommand(serveCommand)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadMergedConfig(serveConfigPath)
	if err != nil {
		return err
	}
	if serveSchedule != "" {
		cfg.Schedule = serveSchedule
	}
	if serveListenAddr != "" {
		cfg.ListenAddr = serveListenAddr
	}
	if serveDBURL != "" {
		cfg.DatabaseURL = serveDBURL
	}
	if serveAPIKey != "" {
		cfg.APIKey = serveAPIKey
	}
	if serveModel != "" {
		cfg.Model = serveModel
	}
	if serveDebug {
		cfg.LogLevel = "debug"
	}

	if cfg.DatabaseURL == "" {
		return fmt.Errorf("database URL is required (--db-url or DATABASE_URL)")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("API key is required (--api-key or GEMINI_API_KEY)")
	}
	// Re-validate after flag overrides so a bad --schedule fails before
	// anything connects.
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := setupLogger(cfg.LogLevel)
	ctx := context.Background()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	client, err := llm.NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	refresher := pipeline.NewRefresher(database, client, pipeline.Options{
		Logger: logger,
		Backoff: backoff.Policy{
			Attempts:  cfg.BackoffAttempts,
			BaseDelay: time.Duration(cfg.BackoffBaseMs) * time.Millisecond,
			MaxDelay:  time.Duration(cfg.BackoffMaxMs) * time.Millisecond,
			Retryable: llm.IsRateLimit,
		},
	})

	sched := scheduler.New(refresher, logger)
	if err := sched.Start(cfg.Schedule); err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	server := &http.Server{Addr: cfg.ListenAddr, Handler: mux}

	go func() {
		logger.Info("http server listening", "addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
		}
	}()

	if serveImmediate {
		go sched.TriggerNow()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	logger.Info("shutting down", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	sched.Stop()

	return nil
}
