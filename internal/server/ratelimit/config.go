package ratelimit

import (
	"log"
	"os"
	"strconv"
	"time"
)

// EndpointConfig sets limits for one route. Burst is the bucket
// capacity; RatePerSecond is the sustained refill rate.
type EndpointConfig struct {
	Path          string
	Method        string // empty matches any method
	Prefix        bool
	Unlimited     bool
	Burst         int
	RatePerSecond float64
}

// Config holds limiter settings, loaded from environment variables.
type Config struct {
	Enabled           bool
	TrustProxyHeaders bool
	CleanupInterval   time.Duration
	Endpoints         []EndpointConfig
}

// DefaultEndpoints returns the per-route limits for the link engine.
// Beacon endpoints take high-volume browser traffic; analysis
// endpoints are heavier per request and get tighter limits.
func DefaultEndpoints() []EndpointConfig {
	return []EndpointConfig{
		{Path: "/health", Unlimited: true},
		{Path: "/events/click", Method: "POST", Burst: 200, RatePerSecond: 100},
		{Path: "/events/page", Method: "POST", Burst: 50, RatePerSecond: 20},
		{Path: "/links/engagement", Method: "POST", Burst: 50, RatePerSecond: 20},
		{Path: "/links/recommendations", Method: "POST", Burst: 30, RatePerSecond: 10},
		{Path: "/links/anchors", Method: "GET", Burst: 30, RatePerSecond: 10},
		{Path: "/snapshot", Method: "GET", Burst: 10, RatePerSecond: 2},
	}
}

// LoadConfig builds a Config from RATE_LIMIT_* environment variables,
// falling back to defaults.
func LoadConfig() Config {
	return Config{
		Enabled:           getEnvBool("RATE_LIMIT_ENABLED", true),
		TrustProxyHeaders: getEnvBool("RATE_LIMIT_TRUST_PROXY", false),
		CleanupInterval:   getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Endpoints:         DefaultEndpoints(),
	}
}

func getEnvBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("[ratelimit] invalid %s=%q, using default %v", key, raw, fallback)
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		log.Printf("[ratelimit] invalid %s=%q, using default %v", key, raw, fallback)
		return fallback
	}
	return v
}
