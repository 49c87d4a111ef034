// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. In development a local
'.env' file is merged first through 'joho/godotenv'; variables already present in
the process environment always win.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, providers) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage drivers understood by [Config.StorageDriver].
const (
	StorageSupabase = "supabase"
	StorageS3       = "s3"
)

// # Configuration Schema

// Config holds all runtime configuration for the Briefly API server and worker.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Identity provider token verification (HS256 shared secret)
	AuthJWTSecret string `env:"AUTH_JWT_SECRET,required"`
	AuthIssuer    string `env:"AUTH_ISSUER"`
	AuthAudience  string `env:"AUTH_AUDIENCE" envDefault:"authenticated"`

	// Object Storage
	StorageDriver      string `env:"STORAGE_DRIVER" envDefault:"supabase"`
	StorageBucket      string `env:"STORAGE_BUCKET" envDefault:"media"`
	SupabaseURL        string `env:"SUPABASE_URL"`
	SupabaseServiceKey string `env:"SUPABASE_SERVICE_KEY"`
	S3Endpoint         string `env:"S3_ENDPOINT"`
	S3AccessKey        string `env:"S3_ACCESS_KEY"`
	S3SecretKey        string `env:"S3_SECRET_KEY"`
	S3UseSSL           bool   `env:"S3_USE_SSL" envDefault:"true"`
	S3PublicURL        string `env:"S3_PUBLIC_URL"`

	// AI completion provider
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`

	// Narration (Google Cloud Text-to-Speech). Empty credentials disable narration.
	TTSCredentialsFile string `env:"TTS_CREDENTIALS_FILE"`
	TTSVoice           string `env:"TTS_VOICE"    envDefault:"en-US-Neural2-D"`
	TTSLanguage        string `env:"TTS_LANGUAGE" envDefault:"en-US"`

	// Payment provider
	StripeSecretKey     string `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
	FrontendURL         string `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`

	// SubscriptionCacheTTL bounds how stale a cached subscription status may be.
	SubscriptionCacheTTL time.Duration `env:"SUBSCRIPTION_CACHE_TTL" envDefault:"60s"`

	// Generation worker
	GenerationStream       string        `env:"GENERATION_STREAM"        envDefault:"briefly:generation"`
	GenerationGroup        string        `env:"GENERATION_GROUP"         envDefault:"summarizers"`
	GenerationPollInterval time.Duration `env:"GENERATION_POLL_INTERVAL" envDefault:"30s"`
	WorkerMetricsPort      string        `env:"WORKER_METRICS_PORT"      envDefault:"9091"`

	// Cross-Origin Resource Sharing (comma separated origins, suffix match)
	AllowedOrigins string `env:"ALLOWED_ORIGINS" envDefault:"briefly.app"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Merge a local .env file when one exists. A missing file is the normal
	// production case and is not an error.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env file: %w", err)
	}

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks cross-field constraints that struct tags cannot express.
func (c *Config) validate() error {
	switch c.StorageDriver {
	case StorageSupabase:
		if c.SupabaseURL == "" || c.SupabaseServiceKey == "" {
			return errors.New("config: SUPABASE_URL and SUPABASE_SERVICE_KEY are required for the supabase storage driver")
		}
	case StorageS3:
		if c.S3Endpoint == "" || c.S3AccessKey == "" || c.S3SecretKey == "" {
			return errors.New("config: S3_ENDPOINT, S3_ACCESS_KEY and S3_SECRET_KEY are required for the s3 storage driver")
		}
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Origins returns the configured CORS origin suffixes.
func (c *Config) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// NarrationEnabled reports whether text-to-speech credentials are configured.
func (c *Config) NarrationEnabled() bool {
	return c.TTSCredentialsFile != ""
}

// BillingEnabled reports whether the payment provider is configured.
func (c *Config) BillingEnabled() bool {
	return c.StripeSecretKey != ""
}
