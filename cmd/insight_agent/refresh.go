package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/zenith/industry-insights/internal/backoff"
	"github.com/zenith/industry-insights/internal/db"
	"github.com/zenith/industry-insights/internal/llm"
	"github.com/zenith/industry-insights/internal/pipeline"
)

var refreshCommand = &cobra.Command{
	Use:   "refresh",
	Short: "Run one refresh batch immediately and print the per-industry results",
	Long: `Processes every tracked industry once, in order: generate fresh insights from the model, parse and validate the response, and persist the update. Industries refreshed within the last week are skipped.

A failing industry never stops the batch; its error is reported in the summary and the run moves on.`,
	RunE: runRefreshCmd,
}

var (
	refreshConfigPath string
	refreshDBURL      string
	refreshAPIKey     string
	refreshModel      string
	refreshForce      bool
	refreshDebug      bool
)

func init() {
	refreshCommand.Flags().StringVar(&refreshConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	refreshCommand.Flags().StringVar(&refreshDBURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	refreshCommand.Flags().StringVar(&refreshAPIKey, "api-key", "", "Gemini API key (defaults to GEMINI_API_KEY env var)")
	refreshCommand.Flags().StringVar(&refreshModel, "model", "", "Gemini model name")
	refreshCommand.Flags().BoolVar(&refreshForce, "force", false, "Refresh every industry even if its record is still fresh")
	refreshCommand.Flags().BoolVar(&refreshDebug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(refreshCommand)
}

func runRefreshCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadMergedConfig(refreshConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = refreshDBURL
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = refreshAPIKey
	}
	if cmd.Flags().Changed("model") {
		cfg.Model = refreshModel
	}
	if refreshDebug {
		cfg.LogLevel = "debug"
	}

	if cfg.DatabaseURL == "" {
		return fmt.Errorf("database URL is required (--db-url or DATABASE_URL)")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("API key is required (--api-key or GEMINI_API_KEY)")
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

	opts := pipeline.Options{
		Logger: logger,
		Backoff: backoff.Policy{
			Attempts:  cfg.BackoffAttempts,
			BaseDelay: time.Duration(cfg.BackoffBaseMs) * time.Millisecond,
			MaxDelay:  time.Duration(cfg.BackoffMaxMs) * time.Millisecond,
			Retryable: llm.IsRateLimit,
		},
		ForceRefresh: refreshForce,
	}

	start := time.Now()
	outcome, err := pipeline.NewRefresher(database, client, opts).Run(ctx)
	if err != nil {
		return fmt.Errorf("refresh run aborted: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Refresh complete in %s\n", time.Since(start).Round(time.Millisecond))
	fmt.Fprintf(os.Stdout, "  processed:    %d\n", outcome.Processed)
	fmt.Fprintf(os.Stdout, "  updated:      %d\n", outcome.Count(pipeline.StatusUpdated))
	fmt.Fprintf(os.Stdout, "  failed:       %d\n", outcome.Count(pipeline.StatusFailed))
	fmt.Fprintf(os.Stdout, "  parse failed: %d\n", outcome.Count(pipeline.StatusParseFailed))

	for _, r := range outcome.Results {
		if r.Status == pipeline.StatusUpdated {
			continue
		}
		fmt.Fprintf(os.Stdout, "  %s: %s (%s)\n", r.Industry, r.Status, r.Error)
	}

	return nil
}
