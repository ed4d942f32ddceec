package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aitools-hub/link-engine/internal/config"
	"github.com/aitools-hub/link-engine/internal/server"
)

var tokenRole string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a dashboard access token",
	Long:  `Mint a signed JWT for accessing the authenticated snapshot endpoint.`,
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenRole, "role", "dashboard", "Role claim to embed in the token")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(_ *cobra.Command, _ []string) error {
	jwtCfg, err := config.LoadDashboardAuth()
	if err != nil {
		return fmt.Errorf("loading JWT configuration: %w", err)
	}

	token, err := server.NewJWTService(jwtCfg).GenerateToken(tokenRole)
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}

	fmt.Println(token)
	return nil
}
