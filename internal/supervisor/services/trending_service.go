// Vendcraft - Storefront Personalization and Feed Ranking
// Copyright 2026 Vendcraft Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vendcraft/vendcraft

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vendcraft/vendcraft/internal/metrics"
)

// TrendingRefresher matches the engine's trending refresh entry point.
type TrendingRefresher interface {
	RefreshTrending(ctx context.Context, profileID string) (bool, error)
}

// ProfileLister enumerates persisted profile IDs.
type ProfileLister interface {
	ProfileIDs(ctx context.Context) ([]string, error)
}

// TrendingRefreshService periodically recomputes trending state for
// every known profile so that feeds served after a quiet period do not
// pay the refresh cost on the request path.
//
// The engine's refresh gate still applies: profiles whose trending
// state is fresh are skipped, so the sweep is cheap between windows.
type TrendingRefreshService struct {
	refresher TrendingRefresher
	profiles  ProfileLister
	interval  time.Duration
	logger    zerolog.Logger
	name      string
}

// NewTrendingRefreshService creates the background refresh loop.
//
//nolint:gocritic // hugeParam: logger passed by value is acceptable for zerolog
func NewTrendingRefreshService(refresher TrendingRefresher, profiles ProfileLister, interval time.Duration, logger zerolog.Logger) *TrendingRefreshService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &TrendingRefreshService{
		refresher: refresher,
		profiles:  profiles,
		interval:  interval,
		logger:    logger.With().Str("component", "trending-refresh").Logger(),
		name:      "trending-refresh",
	}
}

// Serve implements suture.Service. It runs the sweep on a ticker until
// the context is canceled. Per-profile failures are logged and the
// sweep continues; only context cancellation ends the service.
func (t *TrendingRefreshService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.logger.Info().Dur("interval", t.interval).Msg("trending refresh loop started")

	for {
		select {
		case <-ctx.Done():
			t.logger.Info().Msg("trending refresh loop stopped")
			return ctx.Err()
		case <-ticker.C:
			t.sweep(ctx)
		}
	}
}

// String implements fmt.Stringer for supervisor log messages.
func (t *TrendingRefreshService) String() string {
	return t.name
}

func (t *TrendingRefreshService) sweep(ctx context.Context) {
	ids, err := t.profiles.ProfileIDs(ctx)
	if err != nil {
		t.logger.Warn().Err(err).Msg("profile enumeration failed")
		return
	}

	refreshed := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return
		}

		ok, err := t.refresher.RefreshTrending(ctx, id)
		if err != nil {
			t.logger.Warn().Err(err).Str("profile_id", id).Msg("trending refresh failed")
			continue
		}
		metrics.RecordTrending(ok)
		if ok {
			refreshed++
		}
	}

	if refreshed > 0 {
		t.logger.Debug().Int("profiles", len(ids)).Int("refreshed", refreshed).Msg("trending sweep complete")
	}
}
