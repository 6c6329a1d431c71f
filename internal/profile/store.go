// Vendcraft - Storefront Personalization and Feed Ranking
// Copyright 2026 Vendcraft Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vendcraft/vendcraft

package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/vendcraft/vendcraft/internal/personalize"
	"github.com/vendcraft/vendcraft/internal/profile/storage"
)

// Store is the sole writer of profile state. It keeps loaded profiles
// in memory and writes every mutation through to the blob store.
//
// Persistence failures are swallowed: tracking calls never fail, the
// in-memory state stays correct, and the failure is logged. A crash
// between mutation and write-through loses at most the latest event.
type Store struct {
	cfg    *Config
	logger zerolog.Logger
	blobs  storage.BlobStore

	mu    sync.Mutex
	cache map[string]*State

	clock func() time.Time
}

// NewStore creates a profile store backed by the given blob store.
//
//nolint:gocritic // hugeParam: logger passed by value is acceptable for zerolog
func NewStore(cfg *Config, logger zerolog.Logger, blobs storage.BlobStore) (*Store, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if blobs == nil {
		return nil, fmt.Errorf("blob store not set")
	}

	return &Store{
		cfg:    cfg,
		logger: logger.With().Str("component", "profile").Logger(),
		blobs:  blobs,
		cache:  make(map[string]*State),
		clock:  time.Now,
	}, nil
}

// WithClock overrides the store's time source. Intended for tests.
func (s *Store) WithClock(clock func() time.Time) *Store {
	s.clock = clock
	return s
}

// StartSession increments the profile's session counter and returns the
// new count.
func (s *Store) StartSession(ctx context.Context, profileID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.load(ctx, profileID)
	state.Profile.SessionCount++
	state.Profile.LastActive = s.clock()
	s.persist(ctx, profileID, state)

	return state.Profile.SessionCount
}

// TrackView records a view event: increments the view counter,
// overwrites the dwell time, and accumulates view-weighted preferences.
func (s *Store) TrackView(ctx context.Context, profileID, itemID, itemType string, meta Metadata) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.load(ctx, profileID)
	key := personalize.ItemKey(itemType, itemID)
	state.Log.Views[key]++
	state.Log.TimeSpent[key] = meta.TimeSpent
	s.applyPreferences(state, s.cfg.ViewWeights, meta)
	s.persist(ctx, profileID, state)
}

// TrackClick records a click event.
func (s *Store) TrackClick(ctx context.Context, profileID, itemID, itemType string, meta Metadata) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.load(ctx, profileID)
	state.Log.Clicks[personalize.ItemKey(itemType, itemID)]++
	s.applyPreferences(state, s.cfg.ClickWeights, meta)
	s.persist(ctx, profileID, state)
}

// TrackPurchase records a purchase event and widens the affordability
// bracket around the purchase price. The bracket never narrows: the
// new bounds are min-of-mins and max-of-maxes.
func (s *Store) TrackPurchase(ctx context.Context, profileID, itemID string, price float64, meta Metadata) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.load(ctx, profileID)
	state.Log.Purchases[personalize.ItemKey("product", itemID)]++

	if low := price * s.cfg.PriceWidenLow; low < state.Profile.PriceRange.Min {
		state.Profile.PriceRange.Min = low
	}
	if high := price * s.cfg.PriceWidenHigh; high > state.Profile.PriceRange.Max {
		state.Profile.PriceRange.Max = high
	}

	s.applyPreferences(state, s.cfg.PurchaseWeights, meta)
	s.persist(ctx, profileID, state)
}

// TrackSearch records a search term, lowercased and timestamped. Terms
// shorter than the configured minimum are ignored. The history is
// bounded; the oldest entries are evicted first.
func (s *Store) TrackSearch(ctx context.Context, profileID, term string) {
	term = strings.TrimSpace(term)
	if len(term) < s.cfg.MinSearchTermLength {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.load(ctx, profileID)
	state.Log.Searches = append(state.Log.Searches, SearchEntry{
		Term:      strings.ToLower(term),
		Timestamp: s.clock(),
	})
	if n := len(state.Log.Searches); n > s.cfg.MaxSearches {
		state.Log.Searches = state.Log.Searches[n-s.cfg.MaxSearches:]
	}

	state.Profile.LastActive = s.clock()
	s.persist(ctx, profileID, state)
}

// TrackFilters records a filter selection snapshot. The history is
// bounded like the search history.
func (s *Store) TrackFilters(ctx context.Context, profileID string, filters map[string]string) {
	if len(filters) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.load(ctx, profileID)
	state.Log.FilterUsage = append(state.Log.FilterUsage, FilterSnapshot{
		Filters:   cloneFilters(filters),
		Timestamp: s.clock(),
	})
	if n := len(state.Log.FilterUsage); n > s.cfg.MaxFilterSnapshots {
		state.Log.FilterUsage = state.Log.FilterUsage[n-s.cfg.MaxFilterSnapshots:]
	}

	state.Profile.LastActive = s.clock()
	s.persist(ctx, profileID, state)
}

// AddInterest records a free-text interest tag. Duplicates are ignored.
func (s *Store) AddInterest(ctx context.Context, profileID, tag string) {
	tag = strings.TrimSpace(strings.ToLower(tag))
	if tag == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.load(ctx, profileID)
	for _, existing := range state.Profile.Interests {
		if existing == tag {
			return
		}
	}
	state.Profile.Interests = append(state.Profile.Interests, tag)
	s.persist(ctx, profileID, state)
}

// Get returns a deep copy of the profile's full state.
func (s *Store) Get(ctx context.Context, profileID string) *State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx, profileID).clone()
}

// Snapshot returns the read view the personalization engine scores
// against. Never fails: an unknown or unreadable profile degrades to
// the default empty snapshot.
func (s *Store) Snapshot(ctx context.Context, profileID string) (personalize.ProfileSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.load(ctx, profileID).clone()

	return personalize.ProfileSnapshot{
		Categories: state.Profile.Categories,
		Creators:   state.Profile.Creators,
		Brands:     state.Profile.Brands,
		PriceRange: state.Profile.PriceRange,
		Views:      state.Log.Views,
		Clicks:     state.Log.Clicks,
		Purchases:  state.Log.Purchases,
		Trending:   state.Trending,
	}, nil
}

// SetTrending replaces the profile's trending state.
func (s *Store) SetTrending(ctx context.Context, profileID string, trending personalize.TrendingState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.load(ctx, profileID)
	state.Trending = personalize.TrendingState{
		GlobalTrending:   append([]string(nil), trending.GlobalTrending...),
		PersonalTrending: append([]string(nil), trending.PersonalTrending...),
		LastUpdated:      trending.LastUpdated,
	}
	s.persist(ctx, profileID, state)
	return nil
}

// ProfileIDs returns the IDs of all persisted profiles.
func (s *Store) ProfileIDs(ctx context.Context) ([]string, error) {
	return s.blobs.List(ctx)
}

// applyPreferences accumulates action weights for whichever metadata
// fields are present, and touches the activity timestamp.
func (s *Store) applyPreferences(state *State, w ActionWeights, meta Metadata) {
	if meta.Category != "" {
		state.Profile.Categories[meta.Category] += w.Category
	}
	if meta.CreatorID != "" {
		state.Profile.Creators[meta.CreatorID] += w.Creator
	}
	if meta.Brand != "" {
		state.Profile.Brands[meta.Brand] += w.Brand
	}
	state.Profile.LastActive = s.clock()
}

// load returns the cached state for a profile, reading it from the blob
// store on first access. Missing or malformed blobs degrade to the
// default empty state. Callers must hold s.mu.
func (s *Store) load(ctx context.Context, profileID string) *State {
	if state, ok := s.cache[profileID]; ok {
		return state
	}

	state := newState(s.cfg)
	data, err := s.blobs.Load(ctx, profileID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		// First sighting of this profile.
	case err != nil:
		s.logger.Warn().
			Str("profile_id", profileID).
			Err(err).
			Msg("load profile failed, starting fresh")
	default:
		if uerr := json.Unmarshal(data, state); uerr != nil {
			s.logger.Warn().
				Str("profile_id", profileID).
				Err(uerr).
				Msg("malformed profile blob, starting fresh")
			state = newState(s.cfg)
		}
		normalize(state, s.cfg)
	}

	s.cache[profileID] = state
	return state
}

// persist writes the state through to the blob store. Failures are
// logged and swallowed. Callers must hold s.mu.
func (s *Store) persist(ctx context.Context, profileID string, state *State) {
	data, err := json.Marshal(state)
	if err != nil {
		s.logger.Error().
			Str("profile_id", profileID).
			Err(err).
			Msg("marshal profile state failed")
		return
	}

	if err := s.blobs.Save(ctx, profileID, data); err != nil {
		s.logger.Warn().
			Str("profile_id", profileID).
			Err(err).
			Msg("persist profile state failed")
	}
}

// normalize repairs nil maps in a decoded state so tracking code can
// write without nil checks.
func normalize(state *State, cfg *Config) {
	if state.Profile.Interests == nil {
		state.Profile.Interests = []string{}
	}
	if state.Profile.Categories == nil {
		state.Profile.Categories = make(map[string]float64)
	}
	if state.Profile.Creators == nil {
		state.Profile.Creators = make(map[string]float64)
	}
	if state.Profile.Brands == nil {
		state.Profile.Brands = make(map[string]float64)
	}
	if state.Profile.PriceRange.Min == 0 && state.Profile.PriceRange.Max == 0 {
		state.Profile.PriceRange.Min = cfg.DefaultPriceMin
		state.Profile.PriceRange.Max = cfg.DefaultPriceMax
	}
	if state.Log.Views == nil {
		state.Log.Views = make(map[string]int)
	}
	if state.Log.Clicks == nil {
		state.Log.Clicks = make(map[string]int)
	}
	if state.Log.Purchases == nil {
		state.Log.Purchases = make(map[string]int)
	}
	if state.Log.TimeSpent == nil {
		state.Log.TimeSpent = make(map[string]time.Duration)
	}
}

// Ensure Store implements the engine's read interface.
var _ personalize.ProfileSource = (*Store)(nil)
