// Package main provides the entry point for the link engine HTTP server and tools.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "link_engine",
	Short: "Internal link tracking and recommendation engine",
	Long:  "Link engine tracks internal link performance from click and page beacons, scores links on engagement and authority, and serves ranked link recommendations over REST.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
