// Vendcraft - Storefront Personalization and Feed Ranking
// Copyright 2026 Vendcraft Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vendcraft/vendcraft

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearEnv removes every mapped environment variable so tests are
// hermetic regardless of the invoking shell.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_PATH", "HTTP_HOST", "HTTP_PORT", "STORAGE_BACKEND", "STORAGE_PATH",
		"CATALOG_PATH", "CORS_ORIGINS", "RATE_LIMIT_REQUESTS", "DISABLE_RATE_LIMIT",
		"LOG_LEVEL", "LOG_FORMAT", "TRENDING_REFRESH_ENABLED", "TRENDING_REFRESH_INTERVAL",
		"PERSONALIZE_SEED", "FEED_DEFAULT_LIMIT", "FEED_MAX_LIMIT",
		"FEED_CREATOR_SHARE", "FEED_DIVERSITY_FACTOR", "TRENDING_REFRESH_GATE",
		"SEARCH_MIN_TERM_LENGTH", "SEARCH_SEMANTIC_MIN_LENGTH",
		"PROFILE_MAX_SEARCHES", "PROFILE_MAX_FILTER_SNAPSHOTS",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() error: %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 8460 {
		t.Errorf("Server.Port = %d, want 8460", cfg.Server.Port)
	}
	if cfg.Storage.Backend != "badger" {
		t.Errorf("Storage.Backend = %q, want badger", cfg.Storage.Backend)
	}
	if cfg.Personalize == nil || cfg.Personalize.Feed.DefaultLimit != 20 {
		t.Error("personalize defaults not populated")
	}
	if cfg.Profile == nil || cfg.Profile.MaxSearches != 50 {
		t.Error("profile defaults not populated")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("FEED_DEFAULT_LIMIT", "10")
	t.Setenv("PERSONALIZE_SEED", "7")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Storage.Backend != "memory" {
		t.Errorf("Storage.Backend = %q, want memory", cfg.Storage.Backend)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Personalize.Feed.DefaultLimit != 10 {
		t.Errorf("Feed.DefaultLimit = %d, want 10", cfg.Personalize.Feed.DefaultLimit)
	}
	if cfg.Personalize.Seed != 7 {
		t.Errorf("Seed = %d, want 7", cfg.Personalize.Seed)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[0] != "https://a.example" {
		t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 8888
logging:
  level: warn
personalize:
  trending:
    refresh_interval: 30m
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 8888 {
		t.Errorf("Server.Port = %d, want 8888", cfg.Server.Port)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
	if cfg.Personalize.Trending.RefreshInterval != 30*time.Minute {
		t.Errorf("RefreshInterval = %v, want 30m", cfg.Personalize.Trending.RefreshInterval)
	}
}

func TestLoadEnvBeatsFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 8888\n"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("HTTP_PORT", "7777")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("Server.Port = %d, want env override 7777", cfg.Server.Port)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_PORT", "99999")

	if _, err := Load(); err == nil {
		t.Error("Load() accepted an out-of-range port")
	}
}

func TestUnmappedEnvIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "1234") // not a mapped name

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 8460 {
		t.Errorf("Server.Port = %d, unmapped env leaked in", cfg.Server.Port)
	}
}

func TestConfigValidateCrossFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad backend", func(c *Config) { c.Storage.Backend = "redis" }},
		{"badger without path", func(c *Config) { c.Storage.Path = "" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"invalid personalize", func(c *Config) { c.Personalize.Feed.DefaultLimit = 0 }},
		{"invalid profile", func(c *Config) { c.Profile.MaxSearches = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() accepted invalid config")
			}
		})
	}
}
