package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/zenith/industry-insights/internal/db"
)

var statusCommand = &cobra.Command{
	Use:   "status",
	Short: "Show recent refresh runs and per-industry freshness",
	RunE:  runStatusCmd,
}

var (
	statusConfigPath string
	statusDBURL      string
	statusRunLimit   int
)

func init() {
	statusCommand.Flags().StringVar(&statusConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	statusCommand.Flags().StringVar(&statusDBURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	statusCommand.Flags().IntVar(&statusRunLimit, "runs", 10, "How many recent runs to show")

	rootCmd.AddCommand(statusCommand)
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadMergedConfig(statusConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = statusDBURL
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("database URL is required (--db-url or DATABASE_URL)")
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	runs, err := database.ListRuns(ctx, statusRunLimit)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}
	freshness, err := database.ListFreshness(ctx)
	if err != nil {
		return fmt.Errorf("listing freshness: %w", err)
	}

	now := time.Now()

	fmt.Fprintf(os.Stdout, "Recent runs (%d):\n", len(runs))
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  STARTED\tSTATUS\tPROCESSED\tUPDATED\tFAILED\tPARSE FAILED")
	for _, run := range runs {
		fmt.Fprintf(w, "  %s\t%s\t%d\t%d\t%d\t%d\n",
			run.StartedAt.Format(time.RFC3339), run.Status,
			run.Processed, run.Updated, run.Failed, run.ParseFailed)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "\nIndustries (%d):\n", len(freshness))
	w = tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  INDUSTRY\tLAST UPDATED\tNEXT UPDATE\tSTATE")
	for _, f := range freshness {
		state := "fresh"
		if now.After(f.NextUpdate) {
			state = "stale"
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n",
			f.Industry, f.LastUpdated.Format(time.RFC3339),
			f.NextUpdate.Format(time.RFC3339), state)
	}
	return w.Flush()
}
