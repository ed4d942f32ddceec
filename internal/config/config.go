// Package config provides configuration loading and validation for the link engine.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Engine holds tunable runtime settings, loaded from environment variables.
// Every field has a default; the environment only overrides.
type Engine struct {
	// DatabaseURL enables write-behind persistence of the event log.
	// Empty means memory-only operation.
	DatabaseURL string `validate:"omitempty,min=1"`

	// EventBufferSize bounds the write-behind queue.
	EventBufferSize int `validate:"min=1"`

	// FlushInterval is how often buffered events are persisted.
	FlushInterval time.Duration `validate:"min=100ms"`

	// MaxRecommendations caps a single recommendation request.
	MaxRecommendations int `validate:"min=1,max=50"`
}

// LoadEngine reads engine configuration from the environment.
func LoadEngine() (*Engine, error) {
	cfg := &Engine{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		EventBufferSize:    4096,
		FlushInterval:      2 * time.Second,
		MaxRecommendations: 10,
	}

	if v := os.Getenv("EVENT_BUFFER_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid EVENT_BUFFER_SIZE: %v", err)
		}
		cfg.EventBufferSize = n
	}

	if v := os.Getenv("EVENT_FLUSH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid EVENT_FLUSH_INTERVAL: %v", err)
		}
		cfg.FlushInterval = d
	}

	if v := os.Getenv("MAX_RECOMMENDATIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_RECOMMENDATIONS: %v", err)
		}
		cfg.MaxRecommendations = n
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against its constraints.
func (c *Engine) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}
