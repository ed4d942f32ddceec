package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
)

// DashboardAuth holds signing settings for dashboard access tokens, which
// gate the snapshot endpoint.
type DashboardAuth struct {
	// Secret signs dashboard JWTs. Required, with a floor on length so a
	// misconfigured deployment fails at startup rather than ship weak tokens.
	Secret string `validate:"required,min=16"`

	// TokenTTL bounds how long a minted token stays valid.
	TokenTTL time.Duration `validate:"min=1h,max=8760h"`
}

// LoadDashboardAuth reads dashboard auth settings from the environment.
// JWT_SECRET is required; JWT_TTL defaults to 24h.
func LoadDashboardAuth() (*DashboardAuth, error) {
	cfg := &DashboardAuth{
		Secret:   os.Getenv("JWT_SECRET"),
		TokenTTL: 24 * time.Hour,
	}

	if v := os.Getenv("JWT_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_TTL: %v", err)
		}
		cfg.TokenTTL = d
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid dashboard auth configuration: %w", err)
	}
	return cfg, nil
}
