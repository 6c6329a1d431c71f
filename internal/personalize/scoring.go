// Vendcraft - Storefront Personalization and Feed Ranking
// Copyright 2026 Vendcraft Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vendcraft/vendcraft

package personalize

import (
	"strings"
	"time"
)

// Recommendation reason labels, ordered by precedence. Exactly one is
// attached to a scored product so the storefront can render a single
// explainable hint.
const (
	ReasonCategoryAffinity = "based on your interest in this category"
	ReasonCreatorAffinity  = "from a creator you engage with"
	ReasonTrending         = "trending now"
	ReasonPriceFit         = "matches your price range"
	ReasonPriorPurchase    = "because you bought similar items"
	ReasonDefault          = "recommended for you"
)

// Scorer computes relevance scores for products and creators against a
// profile snapshot. All methods are pure: no side effects, no
// randomness, deterministic for a given input.
type Scorer struct {
	cfg ScoringConfig

	// clock is injectable for freshness-window tests.
	clock func() time.Time
}

// NewScorer creates a scorer with the given weights.
func NewScorer(cfg ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg, clock: time.Now}
}

// WithClock overrides the scorer's time source. Intended for tests.
func (s *Scorer) WithClock(clock func() time.Time) *Scorer {
	s.clock = clock
	return s
}

// Score computes the additive interest score of a product for a
// profile. The result is floored at zero; missing optional fields
// (rating, creator, stock, created-at) degrade to their documented
// defaults instead of erroring.
//
//nolint:gocritic // hugeParam: product passed by value for immutability
func (s *Scorer) Score(product Product, snap ProfileSnapshot) float64 {
	cfg := s.cfg

	rating := product.Rating
	if rating <= 0 {
		rating = cfg.DefaultRating
	}
	score := rating * cfg.RatingWeight

	score += snap.Categories[product.Category] * cfg.CategoryWeight

	if product.CreatorID != "" {
		score += snap.Creators[product.CreatorID] * cfg.CreatorWeight
	}

	switch {
	case snap.PriceRange.Contains(product.Price):
		score += cfg.PriceFitBonus
	case product.Price < snap.PriceRange.Min:
		score += cfg.PriceBelowBonus
	}

	if snap.Trending.Contains(product.ID) {
		score += cfg.TrendingBonus
	}

	if days := s.ageInDays(product.CreatedAt); days < float64(cfg.FreshnessWindowDays) {
		score += cfg.FreshnessPerDay * (float64(cfg.FreshnessWindowDays) - days)
	}

	key := ItemKey("product", product.ID)
	score += capped(float64(snap.Views[key])*cfg.ViewWeight, cfg.ViewCap)
	score += capped(float64(snap.Clicks[key])*cfg.ClickWeight, cfg.ClickCap)

	if product.Stock > 0 && product.Stock < cfg.LowStockThreshold {
		score += cfg.LowStockBonus
	}

	if score < 0 {
		return 0
	}
	return score
}

// Reason returns the first matching recommendation label in precedence
// order: category affinity, creator affinity, trending, price fit,
// prior purchase in the category, then the generic fallback.
//
//nolint:gocritic // hugeParam: product passed by value for immutability
func (s *Scorer) Reason(product Product, snap ProfileSnapshot) string {
	cfg := s.cfg

	if snap.Categories[product.Category] > cfg.CategoryReasonThreshold {
		return ReasonCategoryAffinity
	}
	if product.CreatorID != "" && snap.Creators[product.CreatorID] > cfg.CreatorReasonThreshold {
		return ReasonCreatorAffinity
	}
	if snap.Trending.Contains(product.ID) {
		return ReasonTrending
	}
	if snap.PriceRange.Contains(product.Price) {
		return ReasonPriceFit
	}
	if s.purchasedInCategory(product.Category, snap) {
		return ReasonPriorPurchase
	}
	return ReasonDefault
}

// CreatorScore computes the interest score of a creator card.
//
//nolint:gocritic // hugeParam: creator passed by value for immutability
func (s *Scorer) CreatorScore(creator Creator, snap ProfileSnapshot) float64 {
	cfg := s.cfg

	score := float64(creator.Followers) / cfg.FollowerDivisor
	score += snap.Creators[creator.ID] * cfg.CreatorPreferenceWeight

	if creator.Live {
		score += cfg.LiveBonus
	}

	for _, cat := range creator.Categories {
		if _, ok := snap.Categories[cat]; ok {
			score += cfg.CategoryOverlapBonus
			break
		}
	}

	return score
}

// ageInDays returns the listing age in fractional days. A zero
// created-at timestamp is treated as 30 days old, safely outside every
// freshness window.
func (s *Scorer) ageInDays(createdAt time.Time) float64 {
	if createdAt.IsZero() {
		return 30
	}
	age := s.clock().Sub(createdAt)
	if age < 0 {
		return 0
	}
	return age.Hours() / 24
}

// purchasedInCategory reports whether any prior purchase shares the
// product's category. Purchase keys carry only the item ID, so this
// scans the category preference map gated on purchase evidence.
func (s *Scorer) purchasedInCategory(category string, snap ProfileSnapshot) bool {
	if len(snap.Purchases) == 0 {
		return false
	}
	_, ok := snap.Categories[category]
	return ok
}

// capped bounds v at cap.
func capped(v, cap float64) float64 {
	if v > cap {
		return cap
	}
	return v
}

// tokenize lowercases and splits a query on whitespace.
func tokenize(query string) []string {
	return strings.Fields(strings.ToLower(query))
}
