// Vendcraft - Storefront Personalization and Feed Ranking
// Copyright 2026 Vendcraft Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vendcraft/vendcraft

package profile

import (
	"time"

	"github.com/vendcraft/vendcraft/internal/personalize"
)

// Metadata carries the optional attributes of a tracked interaction.
// Zero values mean "not provided"; preference weights accumulate only
// for the fields that are set.
type Metadata struct {
	// Category is the item's category identifier.
	Category string `json:"category,omitempty"`

	// CreatorID is the item's creator identifier.
	CreatorID string `json:"creator_id,omitempty"`

	// Brand is the item's brand identifier.
	Brand string `json:"brand,omitempty"`

	// TimeSpent is the dwell time reported with a view event.
	// Last write wins; it is not accumulated.
	TimeSpent time.Duration `json:"time_spent,omitempty"`
}

// UserProfile is the accumulated preference state of one profile.
// All weight maps are non-negative and only grow through tracking
// operations.
type UserProfile struct {
	// Interests is a set of free-text tags, stored in insertion order.
	Interests []string `json:"interests"`

	// Categories maps category identifier to accumulated weight.
	Categories map[string]float64 `json:"categories"`

	// Creators maps creator identifier to accumulated weight.
	Creators map[string]float64 `json:"creators"`

	// Brands maps brand identifier to accumulated weight.
	Brands map[string]float64 `json:"brands"`

	// PriceRange brackets observed affordability. It widens
	// multiplicatively on each purchase and never narrows.
	PriceRange personalize.PriceRange `json:"price_range"`

	// SessionCount is incremented once per session start.
	SessionCount int `json:"session_count"`

	// LastActive is the timestamp of the last tracked interaction.
	LastActive time.Time `json:"last_active"`
}

// SearchEntry is one recorded search term.
type SearchEntry struct {
	Term      string    `json:"term"`
	Timestamp time.Time `json:"timestamp"`
}

// FilterSnapshot is one recorded filter selection.
type FilterSnapshot struct {
	Filters   map[string]string `json:"filters"`
	Timestamp time.Time         `json:"timestamp"`
}

// InteractionLog is the append/aggregate event record of one profile.
type InteractionLog struct {
	// Views, Clicks and Purchases map "{type}_{id}" keys to counts.
	Views     map[string]int `json:"views"`
	Clicks    map[string]int `json:"clicks"`
	Purchases map[string]int `json:"purchases"`

	// Searches holds the most recent search terms, oldest first.
	// Bounded; oldest entries are evicted first.
	Searches []SearchEntry `json:"searches"`

	// TimeSpent maps item key to the last reported dwell time.
	TimeSpent map[string]time.Duration `json:"time_spent"`

	// FilterUsage holds the most recent filter selections, oldest
	// first. Bounded like Searches.
	FilterUsage []FilterSnapshot `json:"filter_usage"`
}

// State is the full persisted record of one profile: preferences,
// interaction log and derived trending state, serialized as a single
// JSON blob per profile.
type State struct {
	Profile  UserProfile               `json:"profile"`
	Log      InteractionLog            `json:"log"`
	Trending personalize.TrendingState `json:"trending"`
}

// newState returns the default empty state a profile starts from, also
// used as the fallback when a persisted blob fails to decode.
func newState(cfg *Config) *State {
	return &State{
		Profile: UserProfile{
			Interests:  []string{},
			Categories: make(map[string]float64),
			Creators:   make(map[string]float64),
			Brands:     make(map[string]float64),
			PriceRange: personalize.PriceRange{
				Min: cfg.DefaultPriceMin,
				Max: cfg.DefaultPriceMax,
			},
		},
		Log: InteractionLog{
			Views:     make(map[string]int),
			Clicks:    make(map[string]int),
			Purchases: make(map[string]int),
			TimeSpent: make(map[string]time.Duration),
		},
	}
}

// clone deep-copies the state so callers can read it without holding
// the store lock.
func (s *State) clone() *State {
	out := &State{
		Profile: UserProfile{
			Interests:    append([]string(nil), s.Profile.Interests...),
			Categories:   cloneWeights(s.Profile.Categories),
			Creators:     cloneWeights(s.Profile.Creators),
			Brands:       cloneWeights(s.Profile.Brands),
			PriceRange:   s.Profile.PriceRange,
			SessionCount: s.Profile.SessionCount,
			LastActive:   s.Profile.LastActive,
		},
		Log: InteractionLog{
			Views:     cloneCounts(s.Log.Views),
			Clicks:    cloneCounts(s.Log.Clicks),
			Purchases: cloneCounts(s.Log.Purchases),
			Searches:  append([]SearchEntry(nil), s.Log.Searches...),
			TimeSpent: cloneDurations(s.Log.TimeSpent),
		},
		Trending: personalize.TrendingState{
			GlobalTrending:   append([]string(nil), s.Trending.GlobalTrending...),
			PersonalTrending: append([]string(nil), s.Trending.PersonalTrending...),
			LastUpdated:      s.Trending.LastUpdated,
		},
	}

	for _, fs := range s.Log.FilterUsage {
		out.Log.FilterUsage = append(out.Log.FilterUsage, FilterSnapshot{
			Filters:   cloneFilters(fs.Filters),
			Timestamp: fs.Timestamp,
		})
	}

	return out
}

func cloneWeights(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneDurations(m map[string]time.Duration) map[string]time.Duration {
	out := make(map[string]time.Duration, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneFilters(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
