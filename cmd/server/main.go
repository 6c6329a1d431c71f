// Vendcraft - Storefront Personalization and Feed Ranking
// Copyright 2026 Vendcraft Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vendcraft/vendcraft

// Package main is the entry point for the Vendcraft server.
//
// Vendcraft is a storefront personalization service. It tracks shopper
// interactions (views, clicks, purchases, searches, filters), builds a
// preference profile per shopper, and serves personalized product
// feeds, trending lists, and search rankings over a REST API.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered defaults, config.yaml, environment (Koanf v2)
//  2. Storage: BadgerDB (or in-memory) blob store for profile state
//  3. Catalog: product/creator seed file, if configured
//  4. Profile store and personalization engine
//  5. HTTP server: chi router with CORS, rate limiting, and Prometheus metrics
//  6. Supervisor tree: suture keeps the HTTP server and the trending
//     refresh loop running
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): environment variables, config file (config.yaml or
// CONFIG_PATH), built-in defaults. Commonly used variables:
//
//	export HTTP_PORT=8460
//	export STORAGE_BACKEND=badger      # or "memory"
//	export CATALOG_PATH=catalog.json
//	export LOG_LEVEL=info
//	export PERSONALIZE_SEED=42
//	./vendcraft
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: it stops
// accepting connections, drains in-flight requests within the
// configured shutdown timeout, and closes the profile store.
package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/vendcraft/vendcraft/internal/api"
	"github.com/vendcraft/vendcraft/internal/catalog"
	"github.com/vendcraft/vendcraft/internal/config"
	"github.com/vendcraft/vendcraft/internal/logging"
	"github.com/vendcraft/vendcraft/internal/metrics"
	"github.com/vendcraft/vendcraft/internal/personalize"
	"github.com/vendcraft/vendcraft/internal/personalize/reranking"
	"github.com/vendcraft/vendcraft/internal/profile"
	"github.com/vendcraft/vendcraft/internal/profile/storage"
	"github.com/vendcraft/vendcraft/internal/supervisor"
	"github.com/vendcraft/vendcraft/internal/supervisor/services"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().Str("version", Version).Msg("Starting Vendcraft")
	metrics.AppInfo.WithLabelValues(Version, runtime.Version()).Set(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === STORAGE ===

	blobs, err := openBlobStore(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open profile storage")
	}
	defer func() {
		if err := blobs.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing profile storage")
		}
	}()
	logging.Info().Str("backend", cfg.Storage.Backend).Msg("Profile storage ready")

	// === CATALOG ===

	cat, err := loadCatalog(cfg)
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Catalog.Path).Msg("Failed to load catalog")
	}
	products, creators := cat.Counts()
	logging.Info().Int("products", products).Int("creators", creators).Msg("Catalog loaded")

	// === PROFILE STORE AND ENGINE ===

	store, err := profile.NewStore(cfg.Profile, logging.Logger(), blobs)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create profile store")
	}

	engine, err := personalize.NewEngine(cfg.Personalize, logging.Logger(), cat, store)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create personalization engine")
	}

	// The diversity reranker shares the engine's seed lineage so feed
	// output stays reproducible for a fixed seed.
	if cfg.Personalize.Feed.DiversityFactor > 0 {
		//nolint:gosec // deterministic ranking noise, not security sensitive
		rng := rand.New(rand.NewSource(cfg.Personalize.Seed + 2))
		engine.RegisterReranker(reranking.NewDiversity(cfg.Personalize.Feed.DiversityFactor, rng))
		logging.Info().
			Float64("factor", cfg.Personalize.Feed.DiversityFactor).
			Msg("Diversity reranker registered")
	}

	// === HTTP SERVER ===

	handler := api.NewHandler(engine, store, logging.Logger())
	router := api.NewRouter(
		handler,
		cfg.Security.CORSOrigins,
		cfg.Security.RateLimitReqs,
		cfg.Security.RateLimitWindow,
		cfg.Security.RateLimitDisabled,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// === SUPERVISOR TREE ===

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree := supervisor.NewTree(logging.NewSlogLogger(), treeCfg)

	if cfg.Trending.Enabled {
		tree.AddBackgroundService(services.NewTrendingRefreshService(
			engine, store, cfg.Trending.CheckInterval, logging.Logger()))
		logging.Info().
			Dur("interval", cfg.Trending.CheckInterval).
			Msg("Trending refresh service added to supervisor tree")
	}

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Uptime gauge for the /metrics endpoint
	go trackUptime(ctx)

	// === START ===

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
}

// openBlobStore selects the profile persistence backend.
func openBlobStore(cfg *config.Config) (storage.BlobStore, error) {
	switch cfg.Storage.Backend {
	case "memory":
		return storage.NewMemoryStore(), nil
	default:
		return storage.NewBadgerStore(cfg.Storage.Path, logging.Logger())
	}
}

// loadCatalog reads the seed file, or starts empty when none is
// configured.
func loadCatalog(cfg *config.Config) (*catalog.Static, error) {
	if cfg.Catalog.Path == "" {
		return catalog.NewStatic(nil, nil), nil
	}
	return catalog.LoadFile(cfg.Catalog.Path)
}

// trackUptime updates the uptime gauge once a second.
func trackUptime(ctx context.Context) {
	started := time.Now()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.AppUptime.Set(time.Since(started).Seconds())
		}
	}
}
