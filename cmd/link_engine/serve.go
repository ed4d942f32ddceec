package main

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aitools-hub/link-engine/internal/config"
	"github.com/aitools-hub/link-engine/internal/db"
	"github.com/aitools-hub/link-engine/internal/server"
	"github.com/aitools-hub/link-engine/internal/tracker"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that ingests click and page beacons and serves link recommendations.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.LoadEngine()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx := context.Background()

	var store *tracker.Store
	var recorder *db.Recorder
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()

		if err := database.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}

		recorder = db.NewRecorder(database, cfg.EventBufferSize, cfg.FlushInterval)
		store = tracker.New(recorder)

		replayed, err := database.ReplayEvents(ctx, store.Apply)
		if err != nil {
			return fmt.Errorf("replaying event log: %w", err)
		}
		log.Printf("[serve] replayed %d events, tracking %d links", replayed, store.Len())

		recorder.Start(ctx)
		defer recorder.Stop()
	} else {
		log.Printf("[serve] DATABASE_URL not set, running memory-only")
		store = tracker.New(nil)
	}

	var jwtService *server.JWTService
	jwtCfg, err := config.LoadDashboardAuth()
	if err != nil {
		log.Printf("[serve] snapshot endpoint disabled: %v", err)
	} else {
		jwtService = server.NewJWTService(jwtCfg)
	}

	srv := server.New(store, jwtService, cfg.MaxRecommendations, strconv.Itoa(servePort))
	return srv.Start()
}
