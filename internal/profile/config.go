// Vendcraft - Storefront Personalization and Feed Ranking
// Copyright 2026 Vendcraft Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vendcraft/vendcraft

package profile

import "fmt"

// ActionWeights are the preference increments one tracked action adds
// to the category, creator and brand tallies.
type ActionWeights struct {
	Category float64 `json:"category" koanf:"category"`
	Creator  float64 `json:"creator" koanf:"creator"`
	Brand    float64 `json:"brand" koanf:"brand"`
}

// Config controls interaction tracking and preference accumulation.
type Config struct {
	// ViewWeights apply to view events.
	ViewWeights ActionWeights `json:"view_weights" koanf:"view_weights"`

	// ClickWeights apply to click events.
	ClickWeights ActionWeights `json:"click_weights" koanf:"click_weights"`

	// PurchaseWeights apply to purchase events.
	PurchaseWeights ActionWeights `json:"purchase_weights" koanf:"purchase_weights"`

	// MaxSearches bounds the recorded search history.
	MaxSearches int `json:"max_searches" koanf:"max_searches"`

	// MaxFilterSnapshots bounds the recorded filter history.
	MaxFilterSnapshots int `json:"max_filter_snapshots" koanf:"max_filter_snapshots"`

	// MinSearchTermLength is the shortest term worth recording.
	MinSearchTermLength int `json:"min_search_term_length" koanf:"min_search_term_length"`

	// PriceWidenLow and PriceWidenHigh are the multipliers applied to a
	// purchase price when widening the affordability bracket.
	PriceWidenLow  float64 `json:"price_widen_low" koanf:"price_widen_low"`
	PriceWidenHigh float64 `json:"price_widen_high" koanf:"price_widen_high"`

	// DefaultPriceMin and DefaultPriceMax seed a fresh profile's
	// affordability bracket.
	DefaultPriceMin float64 `json:"default_price_min" koanf:"default_price_min"`
	DefaultPriceMax float64 `json:"default_price_max" koanf:"default_price_max"`
}

// DefaultConfig returns the standard tracking configuration.
func DefaultConfig() *Config {
	return &Config{
		ViewWeights:         ActionWeights{Category: 1, Creator: 1, Brand: 1},
		ClickWeights:        ActionWeights{Category: 2, Creator: 3, Brand: 2},
		PurchaseWeights:     ActionWeights{Category: 3, Creator: 5, Brand: 4},
		MaxSearches:         50,
		MaxFilterSnapshots:  20,
		MinSearchTermLength: 2,
		PriceWidenLow:       0.8,
		PriceWidenHigh:      1.2,
		DefaultPriceMin:     0,
		DefaultPriceMax:     1000,
	}
}

// Validate checks configuration bounds.
func (c *Config) Validate() error {
	if c.MaxSearches < 1 {
		return fmt.Errorf("max_searches must be at least 1, got %d", c.MaxSearches)
	}
	if c.MaxFilterSnapshots < 1 {
		return fmt.Errorf("max_filter_snapshots must be at least 1, got %d", c.MaxFilterSnapshots)
	}
	if c.MinSearchTermLength < 1 {
		return fmt.Errorf("min_search_term_length must be at least 1, got %d", c.MinSearchTermLength)
	}
	if c.PriceWidenLow <= 0 || c.PriceWidenLow > 1 {
		return fmt.Errorf("price_widen_low must be in (0, 1], got %f", c.PriceWidenLow)
	}
	if c.PriceWidenHigh < 1 {
		return fmt.Errorf("price_widen_high must be at least 1, got %f", c.PriceWidenHigh)
	}
	if c.DefaultPriceMin > c.DefaultPriceMax {
		return fmt.Errorf("default_price_min %f exceeds default_price_max %f", c.DefaultPriceMin, c.DefaultPriceMax)
	}

	for name, w := range map[string]ActionWeights{
		"view_weights":     c.ViewWeights,
		"click_weights":    c.ClickWeights,
		"purchase_weights": c.PurchaseWeights,
	} {
		if w.Category < 0 || w.Creator < 0 || w.Brand < 0 {
			return fmt.Errorf("%s must be non-negative", name)
		}
	}

	return nil
}
