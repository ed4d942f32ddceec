package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aitools-hub/link-engine/internal/config"
	"github.com/aitools-hub/link-engine/internal/db"
	"github.com/aitools-hub/link-engine/internal/report"
	"github.com/aitools-hub/link-engine/internal/tracker"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Print a performance snapshot from the event log",
	Long:  `Rebuild the link store from the persisted event log and print the performance snapshot as JSON.`,
	RunE:  runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(_ *cobra.Command, _ []string) error {
	cfg, err := config.LoadEngine()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	store := tracker.New(nil)
	if _, err := database.ReplayEvents(ctx, store.Apply); err != nil {
		return fmt.Errorf("replaying event log: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report.Export(store))
}
