// Vendcraft - Storefront Personalization and Feed Ranking
// Copyright 2026 Vendcraft Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vendcraft/vendcraft

package personalize

import (
	"math/rand"
	"sort"
	"sync"
	"time"
)

// TrendingCalculator recomputes a profile's trending state from the
// catalog, gated to at most one recomputation per refresh interval.
//
// The engagement score blends the rating with a uniform random term:
// real view-velocity telemetry does not exist in this system, so the
// random term stands in for it. The interface (a per-item numeric
// engagement score) stays stable when a production source replaces it.
type TrendingCalculator struct {
	cfg TrendingConfig

	// rng is the injected random source (protected by rngMu).
	rng   *rand.Rand
	rngMu sync.Mutex

	// clock is injectable for gate tests.
	clock func() time.Time
}

// NewTrendingCalculator creates a calculator using the given random
// source. Pass a seeded source for deterministic output.
func NewTrendingCalculator(cfg TrendingConfig, rng *rand.Rand) *TrendingCalculator {
	return &TrendingCalculator{
		cfg:   cfg,
		rng:   rng,
		clock: time.Now,
	}
}

// WithClock overrides the calculator's time source. Intended for tests.
func (t *TrendingCalculator) WithClock(clock func() time.Time) *TrendingCalculator {
	t.clock = clock
	return t
}

// Refresh returns the trending state for the given catalog and category
// preferences. When the previous state is younger than the refresh
// interval it is returned unchanged with refreshed=false; callers must
// not persist in that case.
func (t *TrendingCalculator) Refresh(prev TrendingState, products []Product, categories map[string]float64) (state TrendingState, refreshed bool) {
	now := t.clock()
	if !prev.LastUpdated.IsZero() && now.Sub(prev.LastUpdated) < t.cfg.RefreshInterval {
		return prev, false
	}

	type engagement struct {
		id       string
		category string
		score    float64
	}

	scored := make([]engagement, 0, len(products))
	for i := range products {
		scored = append(scored, engagement{
			id:       products[i].ID,
			category: products[i].Category,
			score:    t.engagementScore(&products[i], now),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if len(scored) > t.cfg.GlobalSize {
		scored = scored[:t.cfg.GlobalSize]
	}

	state = TrendingState{
		GlobalTrending:   make([]string, 0, len(scored)),
		PersonalTrending: make([]string, 0, t.cfg.PersonalSize),
		LastUpdated:      now,
	}

	for _, e := range scored {
		state.GlobalTrending = append(state.GlobalTrending, e.id)
		if len(state.PersonalTrending) < t.cfg.PersonalSize {
			if _, ok := categories[e.category]; ok {
				state.PersonalTrending = append(state.PersonalTrending, e.id)
			}
		}
	}

	return state, true
}

// engagementScore computes the synthetic popularity metric for one
// product.
func (t *TrendingCalculator) engagementScore(p *Product, now time.Time) float64 {
	cfg := t.cfg

	rating := p.Rating
	if rating <= 0 {
		rating = 0
	}
	score := rating * cfg.RatingWeight

	score += t.noise()

	if p.Stock > 0 && p.Stock < cfg.LowStockThreshold {
		score += cfg.LowStockBonus
	}

	if !p.CreatedAt.IsZero() && now.Sub(p.CreatedAt) < time.Duration(cfg.FreshnessWindowDays)*24*time.Hour {
		score += cfg.FreshnessBonus
	}

	return score
}

// noise draws a uniform value in [0, NoiseAmplitude).
func (t *TrendingCalculator) noise() float64 {
	if t.cfg.NoiseAmplitude <= 0 {
		return 0
	}
	t.rngMu.Lock()
	n := t.rng.Float64() * t.cfg.NoiseAmplitude
	t.rngMu.Unlock()
	return n
}
