// Vendcraft - Storefront Personalization and Feed Ranking
// Copyright 2026 Vendcraft Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vendcraft/vendcraft

package personalize

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"context"

	"github.com/rs/zerolog"
)

// Engine coordinates scoring, trending refresh, feed composition and
// search over a profile snapshot. It is safe for concurrent use.
type Engine struct {
	// Configuration
	config *Config
	logger zerolog.Logger

	// Collaborators
	catalog  CatalogProvider
	profiles ProfileSource

	// Core computations
	scorer   *Scorer
	trending *TrendingCalculator
	ranker   *searchRanker

	// Registered rerankers (post-processing pipeline)
	rerankers []Reranker
	rrMu      sync.RWMutex

	// Metrics
	requestCount atomic.Int64
	errorCount   atomic.Int64

	// Random source for request IDs (protected by rngMu)
	rng   *rand.Rand
	rngMu sync.Mutex

	clock func() time.Time
}

// NewEngine creates a personalization engine. The catalog and profile
// source are explicit dependencies; there is no ambient global state.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger, catalog CatalogProvider, profiles ProfileSource) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if catalog == nil {
		return nil, fmt.Errorf("catalog provider not set")
	}
	if profiles == nil {
		return nil, fmt.Errorf("profile source not set")
	}

	// Use provided seed or default for determinism
	seed := cfg.Seed
	if seed == 0 {
		seed = 42
	}

	scorer := NewScorer(cfg.Scoring)

	return &Engine{
		config:   cfg,
		logger:   logger.With().Str("component", "personalize").Logger(),
		catalog:  catalog,
		profiles: profiles,
		scorer:   scorer,
		trending: NewTrendingCalculator(cfg.Trending, rand.New(rand.NewSource(seed))), //nolint:gosec // math/rand is fine for mocked engagement noise
		ranker:   &searchRanker{cfg: cfg.Search, scorer: scorer},
		rng:      rand.New(rand.NewSource(seed + 1)), //nolint:gosec // math/rand is fine for request IDs
		clock:    time.Now,
	}, nil
}

// WithClock overrides the engine's time source (and the trending
// calculator's and scorer's). Intended for tests.
func (e *Engine) WithClock(clock func() time.Time) *Engine {
	e.clock = clock
	e.scorer.WithClock(clock)
	e.trending.WithClock(clock)
	return e
}

// RegisterReranker adds a reranker to the post-processing pipeline.
func (e *Engine) RegisterReranker(rr Reranker) {
	e.rrMu.Lock()
	defer e.rrMu.Unlock()

	e.rerankers = append(e.rerankers, rr)
	e.logger.Info().
		Str("reranker", rr.Name()).
		Msg("registered reranker")
}

// Feed composes the bounded, diversified, interleaved presentation
// feed for a profile.
func (e *Engine) Feed(ctx context.Context, profileID string, opts FeedOptions) (*Feed, error) {
	start := e.clock()
	e.requestCount.Add(1)

	limit := e.feedLimit(opts.Limit)
	logger := e.logger.With().
		Str("profile_id", profileID).
		Int("limit", limit).
		Logger()
	logger.Debug().Msg("composing feed")

	products, err := e.catalog.Products(ctx)
	if err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	snap, refreshed, err := e.snapshotWithTrending(ctx, profileID, products)
	if err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("profile snapshot: %w", err)
	}

	scored := e.scoreProducts(products, snap)
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}

	// Trending badge re-scoring happens after the cut: it marks items,
	// it does not reorder them.
	e.applyTrendingBadge(scored, snap.Trending)

	items := productItems(scored)
	if opts.IncludeCreators {
		creators, cerr := e.topCreators(ctx, snap, limit)
		if cerr != nil {
			// Creator cards are an enhancement; the product feed
			// stands on its own when the creator catalog fails.
			logger.Warn().Err(cerr).Msg("creator recommendations unavailable")
		} else {
			items = interleave(items, creatorItems(creators), e.config.Feed.InterleaveRun)
		}
	}

	items = e.applyRerankers(ctx, items, limit)
	if len(items) > limit {
		items = items[:limit]
	}

	feed := &Feed{
		Items:           items,
		TotalCandidates: len(products),
		Metadata: FeedMetadata{
			RequestID:         e.generateRequestID(),
			ProfileID:         profileID,
			LatencyMS:         e.clock().Sub(start).Milliseconds(),
			TrendingRefreshed: refreshed,
			Timestamp:         e.clock(),
		},
	}

	logger.Debug().
		Int("candidates", len(products)).
		Int("returned", len(items)).
		Int64("latency_ms", feed.Metadata.LatencyMS).
		Msg("feed complete")

	return feed, nil
}

// Search filters the catalog by the query and ranks matches by
// personalized score plus query relevance.
func (e *Engine) Search(ctx context.Context, profileID, query string) (*SearchResponse, error) {
	e.requestCount.Add(1)

	products, err := e.catalog.Products(ctx)
	if err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	snap, _, err := e.snapshotWithTrending(ctx, profileID, products)
	if err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("profile snapshot: %w", err)
	}

	return e.ranker.rank(query, products, snap), nil
}

// Trending returns the profile's trending state, refreshing it first
// when the hourly gate allows.
func (e *Engine) Trending(ctx context.Context, profileID string) (TrendingState, error) {
	products, err := e.catalog.Products(ctx)
	if err != nil {
		e.errorCount.Add(1)
		return TrendingState{}, fmt.Errorf("load catalog: %w", err)
	}

	snap, _, err := e.snapshotWithTrending(ctx, profileID, products)
	if err != nil {
		e.errorCount.Add(1)
		return TrendingState{}, fmt.Errorf("profile snapshot: %w", err)
	}

	return snap.Trending, nil
}

// RefreshTrending forces a gate-checked trending recomputation for the
// profile. Used by the scheduled refresh service.
func (e *Engine) RefreshTrending(ctx context.Context, profileID string) (bool, error) {
	products, err := e.catalog.Products(ctx)
	if err != nil {
		return false, fmt.Errorf("load catalog: %w", err)
	}

	_, refreshed, err := e.snapshotWithTrending(ctx, profileID, products)
	return refreshed, err
}

// GetConfig returns a copy of the current configuration.
func (e *Engine) GetConfig() *Config {
	return e.config.Clone()
}

// RequestCount returns the number of requests served.
func (e *Engine) RequestCount() int64 {
	return e.requestCount.Load()
}

// ErrorCount returns the number of failed requests.
func (e *Engine) ErrorCount() int64 {
	return e.errorCount.Load()
}

// snapshotWithTrending loads the profile snapshot and refreshes its
// trending state through the hourly gate, persisting when recomputed.
func (e *Engine) snapshotWithTrending(ctx context.Context, profileID string, products []Product) (ProfileSnapshot, bool, error) {
	snap, err := e.profiles.Snapshot(ctx, profileID)
	if err != nil {
		return ProfileSnapshot{}, false, err
	}

	state, refreshed := e.trending.Refresh(snap.Trending, products, snap.Categories)
	if refreshed {
		snap.Trending = state
		if err := e.profiles.SetTrending(ctx, profileID, state); err != nil {
			// Trending is derived state; serving the fresh set matters
			// more than persisting it.
			e.logger.Warn().
				Str("profile_id", profileID).
				Err(err).
				Msg("persist trending state failed")
		}
	}

	return snap, refreshed, nil
}

// scoreProducts scores and annotates every candidate.
func (e *Engine) scoreProducts(products []Product, snap ProfileSnapshot) []ScoredProduct {
	scored := make([]ScoredProduct, 0, len(products))
	for i := range products {
		scored = append(scored, ScoredProduct{
			Product: products[i],
			Score:   e.scorer.Score(products[i], snap),
			Reason:  e.scorer.Reason(products[i], snap),
		})
	}
	return scored
}

// applyTrendingBadge marks trending items and applies the cosmetic
// score multiplier.
func (e *Engine) applyTrendingBadge(scored []ScoredProduct, trending TrendingState) {
	for i := range scored {
		if trending.Contains(scored[i].Product.ID) {
			scored[i].Trending = true
			scored[i].Score *= e.config.Feed.TrendingMultiplier
		}
	}
}

// topCreators returns the highest-scoring creator cards, bounded by
// the configured share of the feed limit.
func (e *Engine) topCreators(ctx context.Context, snap ProfileSnapshot, limit int) ([]ScoredCreator, error) {
	creators, err := e.catalog.Creators(ctx)
	if err != nil {
		return nil, err
	}

	scored := make([]ScoredCreator, 0, len(creators))
	for i := range creators {
		scored = append(scored, ScoredCreator{
			Creator: creators[i],
			Score:   e.scorer.CreatorScore(creators[i], snap),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	k := int(math.Floor(float64(limit) * e.config.Feed.CreatorShare))
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// applyRerankers runs the registered post-processing pipeline.
func (e *Engine) applyRerankers(ctx context.Context, items []FeedItem, limit int) []FeedItem {
	e.rrMu.RLock()
	rerankers := e.rerankers
	e.rrMu.RUnlock()

	for _, rr := range rerankers {
		items = rr.Rerank(ctx, items, limit)
	}

	return items
}

// feedLimit applies the default and maximum feed length.
func (e *Engine) feedLimit(requested int) int {
	if requested <= 0 {
		return e.config.Feed.DefaultLimit
	}
	if requested > e.config.Feed.MaxLimit {
		return e.config.Feed.MaxLimit
	}
	return requested
}

// generateRequestID generates a unique request ID for tracing.
// This method is safe for concurrent use.
func (e *Engine) generateRequestID() string {
	e.rngMu.Lock()
	n := e.rng.Intn(10000)
	e.rngMu.Unlock()
	return fmt.Sprintf("feed-%d-%d", time.Now().UnixNano(), n)
}

// productItems wraps scored products as feed items.
func productItems(scored []ScoredProduct) []FeedItem {
	items := make([]FeedItem, 0, len(scored))
	for i := range scored {
		p := scored[i]
		items = append(items, FeedItem{Kind: FeedProduct, Product: &p})
	}
	return items
}

// creatorItems wraps scored creators as feed items.
func creatorItems(scored []ScoredCreator) []FeedItem {
	items := make([]FeedItem, 0, len(scored))
	for i := range scored {
		c := scored[i]
		items = append(items, FeedItem{Kind: FeedCreator, Creator: &c})
	}
	return items
}

// interleave merges creator cards into the product list, one creator
// after every run of products, then appends whatever remains.
func interleave(products, creators []FeedItem, run int) []FeedItem {
	if len(creators) == 0 {
		return products
	}
	if run < 1 {
		run = 1
	}

	out := make([]FeedItem, 0, len(products)+len(creators))
	pi, ci := 0, 0
	for pi < len(products) || ci < len(creators) {
		for n := 0; n < run && pi < len(products); n++ {
			out = append(out, products[pi])
			pi++
		}
		if ci < len(creators) {
			out = append(out, creators[ci])
			ci++
		}
		if pi >= len(products) && ci >= len(creators) {
			break
		}
		if pi >= len(products) {
			// Products exhausted: flush remaining creators.
			out = append(out, creators[ci:]...)
			break
		}
	}
	return out
}
