// Copyright (c) 2026 Murof. All rights reserved.

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, Token Codec, Mailer)
    via constructors.
  - Zero Hidden State: No global variables are used to store config.

The process fails fast at startup if any required value is absent; after that
point configuration is never mutated.
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Murof API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Store (Redis) for single-use token guards and throttles.
	RedisURL string `env:"REDIS_URL,required"`

	// Token signing. The secret is process-wide and loaded exactly once;
	// generate with "openssl rand -hex 32".
	TokenSecret    string `env:"SECRET_KEY,required"`
	TokenAlgorithm string `env:"ALGORITHM" envDefault:"HS256"`

	// Validity windows per token kind. Defaults follow the reference policy:
	// short access tokens, week-long refresh, day-long verification links,
	// ten-minute reset links.
	AccessTokenTTL       time.Duration `env:"ACCESS_TOKEN_TTL"       envDefault:"30m"`
	RefreshTokenTTL      time.Duration `env:"REFRESH_TOKEN_TTL"      envDefault:"168h"`
	VerificationTokenTTL time.Duration `env:"VERIFICATION_TOKEN_TTL" envDefault:"24h"`
	ResetTokenTTL        time.Duration `env:"RESET_TOKEN_TTL"        envDefault:"10m"`

	// PublicBaseURL is the externally reachable origin used to build the
	// verification and reset links embedded in emails.
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"https://murof.net"`

	// Outbound email (SMTP). When MailHost is empty the server falls back to
	// a log-only sender, which is the expected mode in development.
	MailHost     string `env:"MAIL_SERVER"`
	MailPort     int    `env:"MAIL_PORT"      envDefault:"587"`
	MailUsername string `env:"MAIL_USERNAME"`
	MailPassword string `env:"MAIL_PASSWORD"`
	MailFrom     string `env:"MAIL_FROM"      envDefault:"no-reply@murof.net"`
	MailFromName string `env:"MAIL_FROM_NAME" envDefault:"Murof"`

	// Cross-Origin Resource Sharing: comma-separated origins allowed in
	// addition to the platform's own, e.g. a staging frontend.
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// MailConfigured reports whether an SMTP host has been provided.
func (c *Config) MailConfigured() bool {
	return c.MailHost != ""
}

// AllowedExtraOrigins returns the additional CORS origins, parsed from the
// comma-separated EXTRA_ORIGINS value.
func (c *Config) AllowedExtraOrigins() []string {
	if strings.TrimSpace(c.ExtraOrigins) == "" {
		return nil
	}

	parts := strings.Split(c.ExtraOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
