// Package main provides the entry point for the industry insight agent.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/zenith/industry-insights/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "insight_agent",
	Short: "Industry insight refresh service",
	Long:  "Keeps industry insight records fresh by periodically regenerating them through a generative text provider, with rate-limit backoff and per-category failure isolation.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadMergedConfig loads the optional config file and fills gaps from
// defaults and environment variables.
func loadMergedConfig(path string) (config.Config, error) {
	var cfg config.Config
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return config.Config{}, err
		}
		if err := loaded.Validate(); err != nil {
			return config.Config{}, err
		}
		cfg = *loaded
	}
	return cfg.MergeWithDefaults(config.Defaults()), nil
}

// setupLogger builds the service logger.
func setupLogger(level string) *slog.Logger {
	slogLevel := slog.LevelInfo
	if level == "debug" {
		slogLevel = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slogLevel,
		TimeFormat: time.RFC3339,
	}))
}
