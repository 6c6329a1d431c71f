// Vendcraft - Storefront Personalization and Feed Ranking
// Copyright 2026 Vendcraft Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vendcraft/vendcraft

// Package config provides layered application configuration:
// defaults, optional YAML file, environment variable overrides.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/vendcraft/vendcraft/internal/personalize"
	"github.com/vendcraft/vendcraft/internal/profile"
)

// Config is the root application configuration.
type Config struct {
	Server      ServerConfig        `json:"server" koanf:"server"`
	Storage     StorageConfig       `json:"storage" koanf:"storage"`
	Catalog     CatalogConfig       `json:"catalog" koanf:"catalog"`
	Security    SecurityConfig      `json:"security" koanf:"security"`
	Logging     LoggingConfig       `json:"logging" koanf:"logging"`
	Trending    TrendingRefresh     `json:"trending" koanf:"trending"`
	Personalize *personalize.Config `json:"personalize" koanf:"personalize"`
	Profile     *profile.Config     `json:"profile" koanf:"profile"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string        `json:"host" koanf:"host" validate:"required"`
	Port            int           `json:"port" koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `json:"read_timeout" koanf:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout" koanf:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout" koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" koanf:"shutdown_timeout"`
}

// StorageConfig controls profile persistence.
type StorageConfig struct {
	// Backend selects the blob store: "badger" or "memory".
	Backend string `json:"backend" koanf:"backend" validate:"oneof=badger memory"`

	// Path is the BadgerDB directory (badger backend only).
	Path string `json:"path" koanf:"path"`
}

// CatalogConfig controls the product/creator catalog source.
type CatalogConfig struct {
	// Path is the JSON seed file. Empty starts with an empty catalog.
	Path string `json:"path" koanf:"path"`
}

// SecurityConfig controls the HTTP middleware surface.
type SecurityConfig struct {
	CORSOrigins       []string      `json:"cors_origins" koanf:"cors_origins"`
	RateLimitReqs     int           `json:"rate_limit_reqs" koanf:"rate_limit_reqs" validate:"min=0"`
	RateLimitWindow   time.Duration `json:"rate_limit_window" koanf:"rate_limit_window"`
	RateLimitDisabled bool          `json:"rate_limit_disabled" koanf:"rate_limit_disabled"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `json:"level" koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `json:"format" koanf:"format" validate:"oneof=json console"`
	Caller bool   `json:"caller" koanf:"caller"`
}

// TrendingRefresh controls the background trending refresh service.
type TrendingRefresh struct {
	// Enabled turns the scheduled refresh on. Trending still refreshes
	// lazily on request when disabled.
	Enabled bool `json:"enabled" koanf:"enabled"`

	// CheckInterval is how often the service scans for stale profiles.
	CheckInterval time.Duration `json:"check_interval" koanf:"check_interval"`
}

// Validate checks the configuration using struct tags plus
// cross-field rules.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	if c.Storage.Backend == "badger" && c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required for the badger backend")
	}

	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("security.rate_limit_reqs must be at least 1 when rate limiting is enabled")
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("security.rate_limit_window must be positive when rate limiting is enabled")
		}
	}

	if c.Trending.Enabled && c.Trending.CheckInterval <= 0 {
		return fmt.Errorf("trending.check_interval must be positive when the refresh service is enabled")
	}

	if c.Personalize != nil {
		if err := c.Personalize.Validate(); err != nil {
			return fmt.Errorf("personalize: %w", err)
		}
	}
	if c.Profile != nil {
		if err := c.Profile.Validate(); err != nil {
			return fmt.Errorf("profile: %w", err)
		}
	}

	return nil
}
