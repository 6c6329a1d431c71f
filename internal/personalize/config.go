// Vendcraft - Storefront Personalization and Feed Ranking
// Copyright 2026 Vendcraft Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vendcraft/vendcraft

package personalize

import (
	"fmt"
	"time"
)

// Config contains all tunables for the personalization engine. Every
// constant of the scoring, trending, feed and search formulas lives here
// so deployments can rebalance without code changes.
type Config struct {
	// Scoring contains the additive product-scoring weights.
	Scoring ScoringConfig `json:"scoring" koanf:"scoring"`

	// Trending contains the trending-set computation parameters.
	Trending TrendingConfig `json:"trending" koanf:"trending"`

	// Feed contains feed composition parameters.
	Feed FeedConfig `json:"feed" koanf:"feed"`

	// Search contains search matching and relevance parameters.
	Search SearchConfig `json:"search" koanf:"search"`

	// Seed is the random seed for deterministic behavior.
	// If zero, a fixed default seed is used.
	Seed int64 `json:"seed" koanf:"seed"`
}

// ScoringConfig contains the additive weights of the product score and
// the thresholds of the recommendation-reason labels.
type ScoringConfig struct {
	// DefaultRating substitutes for an absent product rating.
	// Default: 4.
	DefaultRating float64 `json:"default_rating" koanf:"default_rating"`

	// RatingWeight multiplies the (defaulted) rating.
	// Default: 10.
	RatingWeight float64 `json:"rating_weight" koanf:"rating_weight"`

	// CategoryWeight multiplies the category preference weight.
	// Default: 5.
	CategoryWeight float64 `json:"category_weight" koanf:"category_weight"`

	// CreatorWeight multiplies the creator preference weight.
	// Default: 8.
	CreatorWeight float64 `json:"creator_weight" koanf:"creator_weight"`

	// PriceFitBonus is awarded when the price falls inside the
	// profile's price range. Default: 15.
	PriceFitBonus float64 `json:"price_fit_bonus" koanf:"price_fit_bonus"`

	// PriceBelowBonus is awarded when the price falls below the range.
	// Default: 5.
	PriceBelowBonus float64 `json:"price_below_bonus" koanf:"price_below_bonus"`

	// TrendingBonus is awarded to members of the trending set.
	// Default: 20.
	TrendingBonus float64 `json:"trending_bonus" koanf:"trending_bonus"`

	// FreshnessWindowDays is the recency window. Items younger than
	// this earn FreshnessPerDay per remaining day. Default: 7.
	FreshnessWindowDays int `json:"freshness_window_days" koanf:"freshness_window_days"`

	// FreshnessPerDay is the per-day freshness bonus. Default: 10.
	FreshnessPerDay float64 `json:"freshness_per_day" koanf:"freshness_per_day"`

	// ViewWeight and ViewCap bound the view-familiarity term
	// min(views*ViewWeight, ViewCap). Defaults: 2 and 10.
	ViewWeight float64 `json:"view_weight" koanf:"view_weight"`
	ViewCap    float64 `json:"view_cap" koanf:"view_cap"`

	// ClickWeight and ClickCap bound the click-familiarity term
	// min(clicks*ClickWeight, ClickCap). Defaults: 3 and 15.
	ClickWeight float64 `json:"click_weight" koanf:"click_weight"`
	ClickCap    float64 `json:"click_cap" koanf:"click_cap"`

	// LowStockThreshold and LowStockBonus add urgency for scarce items
	// (stock present and below threshold). Defaults: 10 and 5.
	LowStockThreshold int     `json:"low_stock_threshold" koanf:"low_stock_threshold"`
	LowStockBonus     float64 `json:"low_stock_bonus" koanf:"low_stock_bonus"`

	// CategoryReasonThreshold is the minimum category weight for the
	// category-affinity reason label. Default: 10.
	CategoryReasonThreshold float64 `json:"category_reason_threshold" koanf:"category_reason_threshold"`

	// CreatorReasonThreshold is the minimum creator weight for the
	// creator-affinity reason label. Default: 15.
	CreatorReasonThreshold float64 `json:"creator_reason_threshold" koanf:"creator_reason_threshold"`

	// Creator-card scoring terms (followers/FollowerDivisor +
	// preference*CreatorPreferenceWeight + LiveBonus + CategoryOverlapBonus).
	// Defaults: 1000, 10, 50, 30.
	FollowerDivisor         float64 `json:"follower_divisor" koanf:"follower_divisor"`
	CreatorPreferenceWeight float64 `json:"creator_preference_weight" koanf:"creator_preference_weight"`
	LiveBonus               float64 `json:"live_bonus" koanf:"live_bonus"`
	CategoryOverlapBonus    float64 `json:"category_overlap_bonus" koanf:"category_overlap_bonus"`
}

// TrendingConfig contains the trending-set computation parameters.
type TrendingConfig struct {
	// RefreshInterval gates recomputation; within the interval the
	// cached state is returned unchanged. Default: 1h.
	RefreshInterval time.Duration `json:"refresh_interval" koanf:"refresh_interval"`

	// GlobalSize bounds the global trending set. Default: 10.
	GlobalSize int `json:"global_size" koanf:"global_size"`

	// PersonalSize bounds the personalized subsequence. Default: 5.
	PersonalSize int `json:"personal_size" koanf:"personal_size"`

	// RatingWeight multiplies the rating in the engagement score.
	// Default: 20.
	RatingWeight float64 `json:"rating_weight" koanf:"rating_weight"`

	// NoiseAmplitude is the upper bound of the uniform random term
	// standing in for real view-velocity telemetry. Default: 30.
	NoiseAmplitude float64 `json:"noise_amplitude" koanf:"noise_amplitude"`

	// LowStockThreshold and LowStockBonus reward scarcity.
	// Defaults: 20 and 15.
	LowStockThreshold int     `json:"low_stock_threshold" koanf:"low_stock_threshold"`
	LowStockBonus     float64 `json:"low_stock_bonus" koanf:"low_stock_bonus"`

	// FreshnessWindowDays and FreshnessBonus reward recent listings.
	// Defaults: 7 and 25.
	FreshnessWindowDays int     `json:"freshness_window_days" koanf:"freshness_window_days"`
	FreshnessBonus      float64 `json:"freshness_bonus" koanf:"freshness_bonus"`
}

// FeedConfig contains feed composition parameters.
type FeedConfig struct {
	// DefaultLimit is the feed length when the request does not set
	// one. Default: 20.
	DefaultLimit int `json:"default_limit" koanf:"default_limit"`

	// MaxLimit caps the requested feed length. Default: 100.
	MaxLimit int `json:"max_limit" koanf:"max_limit"`

	// TrendingMultiplier re-scores trending items after the cut, for
	// badge display only. Default: 1.2.
	TrendingMultiplier float64 `json:"trending_multiplier" koanf:"trending_multiplier"`

	// CreatorShare is the fraction of the limit reserved for creator
	// cards when interleaving. Default: 0.3.
	CreatorShare float64 `json:"creator_share" koanf:"creator_share"`

	// InterleaveRun is the number of products between creator cards.
	// Default: 3.
	InterleaveRun int `json:"interleave_run" koanf:"interleave_run"`

	// DiversityFactor is the probability of dropping an item whose
	// category already appeared earlier in the feed. Zero disables the
	// filter. Default: 0.3.
	DiversityFactor float64 `json:"diversity_factor" koanf:"diversity_factor"`
}

// SearchConfig contains search matching and relevance parameters.
type SearchConfig struct {
	// MinTermLength is the minimum query length for tracking and
	// matching. Default: 2.
	MinTermLength int `json:"min_term_length" koanf:"min_term_length"`

	// SemanticMinQueryLength is the minimum query length for the
	// relaxed fallback pass when exact matching finds nothing.
	// Default: 4.
	SemanticMinQueryLength int `json:"semantic_min_query_length" koanf:"semantic_min_query_length"`

	// NameMatchBonus is awarded when the full query appears in the
	// product name. Default: 100.
	NameMatchBonus float64 `json:"name_match_bonus" koanf:"name_match_bonus"`

	// CategoryMatchBonus is awarded when the full query appears in the
	// category. Default: 50.
	CategoryMatchBonus float64 `json:"category_match_bonus" koanf:"category_match_bonus"`

	// WordPairBonus is awarded per (query word, name word) pair where
	// either contains the other. Default: 25.
	WordPairBonus float64 `json:"word_pair_bonus" koanf:"word_pair_bonus"`
}

// DefaultConfig returns a Config with the production defaults.
func DefaultConfig() *Config {
	return &Config{
		Scoring: ScoringConfig{
			DefaultRating:           4,
			RatingWeight:            10,
			CategoryWeight:          5,
			CreatorWeight:           8,
			PriceFitBonus:           15,
			PriceBelowBonus:         5,
			TrendingBonus:           20,
			FreshnessWindowDays:     7,
			FreshnessPerDay:         10,
			ViewWeight:              2,
			ViewCap:                 10,
			ClickWeight:             3,
			ClickCap:                15,
			LowStockThreshold:       10,
			LowStockBonus:           5,
			CategoryReasonThreshold: 10,
			CreatorReasonThreshold:  15,
			FollowerDivisor:         1000,
			CreatorPreferenceWeight: 10,
			LiveBonus:               50,
			CategoryOverlapBonus:    30,
		},
		Trending: TrendingConfig{
			RefreshInterval:     time.Hour,
			GlobalSize:          10,
			PersonalSize:        5,
			RatingWeight:        20,
			NoiseAmplitude:      30,
			LowStockThreshold:   20,
			LowStockBonus:       15,
			FreshnessWindowDays: 7,
			FreshnessBonus:      25,
		},
		Feed: FeedConfig{
			DefaultLimit:       20,
			MaxLimit:           100,
			TrendingMultiplier: 1.2,
			CreatorShare:       0.3,
			InterleaveRun:      3,
			DiversityFactor:    0.3,
		},
		Search: SearchConfig{
			MinTermLength:          2,
			SemanticMinQueryLength: 4,
			NameMatchBonus:         100,
			CategoryMatchBonus:     50,
			WordPairBonus:          25,
		},
		Seed: 42, // Default seed for determinism
	}
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	if c.Scoring.DefaultRating < 0 {
		return fmt.Errorf("scoring.default_rating must be non-negative, got %f", c.Scoring.DefaultRating)
	}
	if c.Scoring.FreshnessWindowDays < 0 {
		return fmt.Errorf("scoring.freshness_window_days must be non-negative, got %d", c.Scoring.FreshnessWindowDays)
	}
	if c.Scoring.FollowerDivisor <= 0 {
		return fmt.Errorf("scoring.follower_divisor must be positive, got %f", c.Scoring.FollowerDivisor)
	}

	if c.Trending.RefreshInterval <= 0 {
		return fmt.Errorf("trending.refresh_interval must be positive, got %v", c.Trending.RefreshInterval)
	}
	if c.Trending.GlobalSize < 1 {
		return fmt.Errorf("trending.global_size must be positive, got %d", c.Trending.GlobalSize)
	}
	if c.Trending.PersonalSize < 0 || c.Trending.PersonalSize > c.Trending.GlobalSize {
		return fmt.Errorf("trending.personal_size must be in [0, global_size], got %d", c.Trending.PersonalSize)
	}
	if c.Trending.NoiseAmplitude < 0 {
		return fmt.Errorf("trending.noise_amplitude must be non-negative, got %f", c.Trending.NoiseAmplitude)
	}

	if c.Feed.DefaultLimit < 1 {
		return fmt.Errorf("feed.default_limit must be positive, got %d", c.Feed.DefaultLimit)
	}
	if c.Feed.MaxLimit < c.Feed.DefaultLimit {
		return fmt.Errorf("feed.max_limit must be >= feed.default_limit, got %d < %d", c.Feed.MaxLimit, c.Feed.DefaultLimit)
	}
	if c.Feed.DiversityFactor < 0 || c.Feed.DiversityFactor > 1 {
		return fmt.Errorf("feed.diversity_factor must be in [0, 1], got %f", c.Feed.DiversityFactor)
	}
	if c.Feed.CreatorShare < 0 || c.Feed.CreatorShare > 1 {
		return fmt.Errorf("feed.creator_share must be in [0, 1], got %f", c.Feed.CreatorShare)
	}
	if c.Feed.InterleaveRun < 1 {
		return fmt.Errorf("feed.interleave_run must be positive, got %d", c.Feed.InterleaveRun)
	}
	if c.Feed.TrendingMultiplier < 1 {
		return fmt.Errorf("feed.trending_multiplier must be >= 1, got %f", c.Feed.TrendingMultiplier)
	}

	if c.Search.MinTermLength < 1 {
		return fmt.Errorf("search.min_term_length must be positive, got %d", c.Search.MinTermLength)
	}
	if c.Search.SemanticMinQueryLength < c.Search.MinTermLength {
		return fmt.Errorf("search.semantic_min_query_length must be >= search.min_term_length, got %d < %d",
			c.Search.SemanticMinQueryLength, c.Search.MinTermLength)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// Direct field copy - all nested structs contain only value types
	return &Config{
		Scoring:  c.Scoring,
		Trending: c.Trending,
		Feed:     c.Feed,
		Search:   c.Search,
		Seed:     c.Seed,
	}
}
