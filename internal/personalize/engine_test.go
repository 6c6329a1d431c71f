// Vendcraft - Storefront Personalization and Feed Ranking
// Copyright 2026 Vendcraft Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vendcraft/vendcraft

package personalize

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// mockCatalog implements CatalogProvider for testing.
type mockCatalog struct {
	products    []Product
	creators    []Creator
	productsErr error
	creatorsErr error
}

func (m *mockCatalog) Products(_ context.Context) ([]Product, error) {
	if m.productsErr != nil {
		return nil, m.productsErr
	}
	return m.products, nil
}

func (m *mockCatalog) Creators(_ context.Context) ([]Creator, error) {
	if m.creatorsErr != nil {
		return nil, m.creatorsErr
	}
	return m.creators, nil
}

// mockProfiles implements ProfileSource for testing. SetTrending writes
// back into the snapshot the way the real store does.
type mockProfiles struct {
	mu          sync.Mutex
	snap        ProfileSnapshot
	snapErr     error
	trendingErr error
	setCalls    int
}

func (m *mockProfiles) Snapshot(_ context.Context, _ string) (ProfileSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snapErr != nil {
		return ProfileSnapshot{}, m.snapErr
	}
	return m.snap, nil
}

func (m *mockProfiles) SetTrending(_ context.Context, _ string, state TrendingState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls++
	if m.trendingErr != nil {
		return m.trendingErr
	}
	m.snap.Trending = state
	return nil
}

func testProducts(n int) []Product {
	products := make([]Product, 0, n)
	categories := []string{"Shoes", "Bags", "Watches"}
	for i := 0; i < n; i++ {
		products = append(products, Product{
			ID:       "p" + string(rune('a'+i%26)) + string(rune('a'+i/26)),
			Name:     "Item",
			Category: categories[i%len(categories)],
			Price:    float64(20 + i*10),
			Rating:   float64(i%5) + 1,
		})
	}
	return products
}

func newTestEngine(t *testing.T, cat *mockCatalog, prof *mockProfiles) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Feed.DiversityFactor = 0 // rerankers are registered explicitly in tests

	engine, err := NewEngine(cfg, zerolog.Nop(), cat, prof)
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}
	return engine
}

func TestNewEngineValidation(t *testing.T) {
	cat := &mockCatalog{}
	prof := &mockProfiles{}

	if _, err := NewEngine(DefaultConfig(), zerolog.Nop(), nil, prof); err == nil {
		t.Error("NewEngine() with nil catalog did not error")
	}
	if _, err := NewEngine(DefaultConfig(), zerolog.Nop(), cat, nil); err == nil {
		t.Error("NewEngine() with nil profiles did not error")
	}

	bad := DefaultConfig()
	bad.Feed.DefaultLimit = 0
	if _, err := NewEngine(bad, zerolog.Nop(), cat, prof); err == nil {
		t.Error("NewEngine() with invalid config did not error")
	}

	// Nil config falls back to defaults.
	if _, err := NewEngine(nil, zerolog.Nop(), cat, prof); err != nil {
		t.Errorf("NewEngine() with nil config errored: %v", err)
	}
}

func TestFeedEmptyCatalog(t *testing.T) {
	engine := newTestEngine(t, &mockCatalog{}, &mockProfiles{})

	feed, err := engine.Feed(context.Background(), "u1", FeedOptions{})
	if err != nil {
		t.Fatalf("Feed() on empty catalog errored: %v", err)
	}
	if len(feed.Items) != 0 {
		t.Errorf("Feed() on empty catalog returned %d items", len(feed.Items))
	}
	if feed.TotalCandidates != 0 {
		t.Errorf("TotalCandidates = %d, want 0", feed.TotalCandidates)
	}
}

func TestFeedRespectsLimit(t *testing.T) {
	cat := &mockCatalog{products: testProducts(50)}

	tests := []struct {
		name      string
		limit     int
		wantItems int
	}{
		{"explicit limit", 5, 5},
		{"default limit", 0, 20},
		{"capped at max", 500, 50}, // only 50 candidates exist
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(t, cat, &mockProfiles{})
			feed, err := engine.Feed(context.Background(), "u1", FeedOptions{Limit: tt.limit})
			if err != nil {
				t.Fatalf("Feed() error: %v", err)
			}
			if len(feed.Items) != tt.wantItems {
				t.Errorf("Feed() returned %d items, want %d", len(feed.Items), tt.wantItems)
			}
		})
	}
}

func TestFeedOrdering(t *testing.T) {
	cat := &mockCatalog{products: testProducts(30)}
	engine := newTestEngine(t, cat, &mockProfiles{})

	feed, err := engine.Feed(context.Background(), "u1", FeedOptions{Limit: 10})
	if err != nil {
		t.Fatalf("Feed() error: %v", err)
	}

	for i := 1; i < len(feed.Items); i++ {
		prev, cur := feed.Items[i-1], feed.Items[i]
		if prev.Kind == FeedProduct && cur.Kind == FeedProduct {
			// Trending badge re-scoring may locally invert order, but
			// no trending set exists for a fresh profile before the
			// first refresh persists. With the mock starting at zero
			// state the refresh happens on this request, so compare
			// un-badged scores via the stored reason ordering instead.
			if cur.Product.Trending || prev.Product.Trending {
				continue
			}
			if cur.Product.Score > prev.Product.Score {
				t.Errorf("items %d and %d out of order: %f > %f", i-1, i, cur.Product.Score, prev.Product.Score)
			}
		}
	}
}

func TestFeedTrendingRefreshAndGate(t *testing.T) {
	cat := &mockCatalog{products: testProducts(10)}
	prof := &mockProfiles{}
	engine := newTestEngine(t, cat, prof)

	// First request recomputes trending and persists it.
	feed, err := engine.Feed(context.Background(), "u1", FeedOptions{})
	if err != nil {
		t.Fatalf("Feed() error: %v", err)
	}
	if !feed.Metadata.TrendingRefreshed {
		t.Error("first feed did not refresh trending")
	}
	if prof.setCalls != 1 {
		t.Errorf("SetTrending calls = %d, want 1", prof.setCalls)
	}

	// Second request within the window is gated.
	feed, err = engine.Feed(context.Background(), "u1", FeedOptions{})
	if err != nil {
		t.Fatalf("Feed() error: %v", err)
	}
	if feed.Metadata.TrendingRefreshed {
		t.Error("second feed refreshed trending inside the gate window")
	}
	if prof.setCalls != 1 {
		t.Errorf("SetTrending calls after gated request = %d, want 1", prof.setCalls)
	}
}

func TestFeedTrendingBadge(t *testing.T) {
	products := []Product{
		{ID: "p1", Name: "A", Category: "Shoes", Price: 100, Rating: 4},
		{ID: "p2", Name: "B", Category: "Bags", Price: 100, Rating: 4},
	}
	prof := &mockProfiles{snap: ProfileSnapshot{
		Trending: TrendingState{
			GlobalTrending: []string{"p1"},
			LastUpdated:    time.Now(), // inside the gate, no recompute
		},
	}}
	engine := newTestEngine(t, &mockCatalog{products: products}, prof)

	feed, err := engine.Feed(context.Background(), "u1", FeedOptions{})
	if err != nil {
		t.Fatalf("Feed() error: %v", err)
	}

	var badged *ScoredProduct
	for i := range feed.Items {
		if feed.Items[i].Kind == FeedProduct && feed.Items[i].Product.Product.ID == "p1" {
			badged = feed.Items[i].Product
		}
	}
	if badged == nil {
		t.Fatal("p1 missing from feed")
	}
	if !badged.Trending {
		t.Error("trending product not badged")
	}
	// p1 and p2 score identically before the badge multiplier. p1 also
	// carries the +20 trending scoring bonus, so its score is
	// (base+20)*1.2.
	base := defaultScorer().Score(products[1], ProfileSnapshot{Trending: prof.snap.Trending})
	want := (base + 20) * 1.2
	if !almostEqual(badged.Score, want) {
		t.Errorf("badged score = %f, want %f", badged.Score, want)
	}
}

func TestFeedCreatorInterleave(t *testing.T) {
	cat := &mockCatalog{
		products: testProducts(30),
		creators: []Creator{
			{ID: "c1", Name: "Ari", Followers: 9000},
			{ID: "c2", Name: "Bo", Followers: 5000},
			{ID: "c3", Name: "Cy", Followers: 1000},
			{ID: "c4", Name: "Dee", Followers: 500},
		},
	}
	engine := newTestEngine(t, cat, &mockProfiles{})

	feed, err := engine.Feed(context.Background(), "u1", FeedOptions{Limit: 10, IncludeCreators: true})
	if err != nil {
		t.Fatalf("Feed() error: %v", err)
	}

	creators := 0
	for i, item := range feed.Items {
		if item.Kind == FeedCreator {
			creators++
			// One creator card after every run of three products.
			if (i+1)%4 != 0 {
				t.Errorf("creator card at index %d, want positions 3, 7, ...", i)
			}
		}
	}
	// floor(10 * 0.3) creator slots are interleaved, but the final
	// truncation back to the limit cuts the last one.
	if creators != 2 {
		t.Errorf("feed contains %d creator cards, want 2", creators)
	}
	if len(feed.Items) != 10 {
		t.Errorf("feed length = %d, want 10", len(feed.Items))
	}
}

func TestFeedCreatorFailureDegrades(t *testing.T) {
	cat := &mockCatalog{
		products:    testProducts(10),
		creatorsErr: errors.New("creator catalog down"),
	}
	engine := newTestEngine(t, cat, &mockProfiles{})

	feed, err := engine.Feed(context.Background(), "u1", FeedOptions{Limit: 5, IncludeCreators: true})
	if err != nil {
		t.Fatalf("Feed() error: %v", err)
	}
	for _, item := range feed.Items {
		if item.Kind == FeedCreator {
			t.Fatal("creator card present despite catalog failure")
		}
	}
	if len(feed.Items) != 5 {
		t.Errorf("feed length = %d, want 5", len(feed.Items))
	}
}

func TestFeedCatalogError(t *testing.T) {
	cat := &mockCatalog{productsErr: errors.New("catalog down")}
	engine := newTestEngine(t, cat, &mockProfiles{})

	if _, err := engine.Feed(context.Background(), "u1", FeedOptions{}); err == nil {
		t.Error("Feed() with failing catalog did not error")
	}
	if engine.ErrorCount() != 1 {
		t.Errorf("ErrorCount() = %d, want 1", engine.ErrorCount())
	}
}

// truncateReranker halves the feed, for pipeline testing.
type truncateReranker struct{}

func (truncateReranker) Name() string { return "truncate" }

func (truncateReranker) Rerank(_ context.Context, items []FeedItem, _ int) []FeedItem {
	return items[:len(items)/2]
}

func TestFeedRerankerPipeline(t *testing.T) {
	cat := &mockCatalog{products: testProducts(20)}
	engine := newTestEngine(t, cat, &mockProfiles{})
	engine.RegisterReranker(truncateReranker{})

	feed, err := engine.Feed(context.Background(), "u1", FeedOptions{Limit: 10})
	if err != nil {
		t.Fatalf("Feed() error: %v", err)
	}
	if len(feed.Items) != 5 {
		t.Errorf("feed length after reranker = %d, want 5", len(feed.Items))
	}
}

func TestEngineSearch(t *testing.T) {
	cat := &mockCatalog{products: []Product{
		{ID: "p1", Name: "Running Shoes", Category: "Shoes", Price: 90, Rating: 4},
	}}
	engine := newTestEngine(t, cat, &mockProfiles{})

	resp, err := engine.Search(context.Background(), "u1", "running")
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Product.ID != "p1" {
		t.Errorf("Search() results = %+v, want p1", resp.Results)
	}
}

func TestEngineTrending(t *testing.T) {
	cat := &mockCatalog{products: testProducts(15)}
	prof := &mockProfiles{}
	engine := newTestEngine(t, cat, prof)

	state, err := engine.Trending(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Trending() error: %v", err)
	}
	if len(state.GlobalTrending) != 10 {
		t.Errorf("GlobalTrending length = %d, want 10", len(state.GlobalTrending))
	}
}

func TestEngineRefreshTrending(t *testing.T) {
	cat := &mockCatalog{products: testProducts(5)}
	prof := &mockProfiles{}
	engine := newTestEngine(t, cat, prof)

	refreshed, err := engine.RefreshTrending(context.Background(), "u1")
	if err != nil {
		t.Fatalf("RefreshTrending() error: %v", err)
	}
	if !refreshed {
		t.Error("first RefreshTrending() = false, want true")
	}

	refreshed, err = engine.RefreshTrending(context.Background(), "u1")
	if err != nil {
		t.Fatalf("RefreshTrending() error: %v", err)
	}
	if refreshed {
		t.Error("gated RefreshTrending() = true, want false")
	}
}

func TestEngineRequestCounts(t *testing.T) {
	cat := &mockCatalog{products: testProducts(5)}
	engine := newTestEngine(t, cat, &mockProfiles{})

	ctx := context.Background()
	if _, err := engine.Feed(ctx, "u1", FeedOptions{}); err != nil {
		t.Fatalf("Feed() error: %v", err)
	}
	if _, err := engine.Search(ctx, "u1", "item"); err != nil {
		t.Fatalf("Search() error: %v", err)
	}

	if engine.RequestCount() != 2 {
		t.Errorf("RequestCount() = %d, want 2", engine.RequestCount())
	}
	if engine.ErrorCount() != 0 {
		t.Errorf("ErrorCount() = %d, want 0", engine.ErrorCount())
	}
}

func TestInterleave(t *testing.T) {
	p := func(id string) FeedItem {
		return FeedItem{Kind: FeedProduct, Product: &ScoredProduct{Product: Product{ID: id}}}
	}
	c := func(id string) FeedItem {
		return FeedItem{Kind: FeedCreator, Creator: &ScoredCreator{Creator: Creator{ID: id}}}
	}
	ids := func(items []FeedItem) []string {
		out := make([]string, 0, len(items))
		for _, item := range items {
			if item.Kind == FeedProduct {
				out = append(out, item.Product.Product.ID)
			} else {
				out = append(out, item.Creator.Creator.ID)
			}
		}
		return out
	}

	tests := []struct {
		name     string
		products []FeedItem
		creators []FeedItem
		run      int
		want     []string
	}{
		{
			name:     "one creator per run of three",
			products: []FeedItem{p("p1"), p("p2"), p("p3"), p("p4"), p("p5"), p("p6")},
			creators: []FeedItem{c("c1"), c("c2")},
			run:      3,
			want:     []string{"p1", "p2", "p3", "c1", "p4", "p5", "p6", "c2"},
		},
		{
			name:     "no creators passes through",
			products: []FeedItem{p("p1"), p("p2")},
			creators: nil,
			run:      3,
			want:     []string{"p1", "p2"},
		},
		{
			name:     "surplus creators flushed at end",
			products: []FeedItem{p("p1")},
			creators: []FeedItem{c("c1"), c("c2"), c("c3")},
			run:      3,
			want:     []string{"p1", "c1", "c2", "c3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(interleave(tt.products, tt.creators, tt.run))
			if len(got) != len(tt.want) {
				t.Fatalf("interleave() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("interleave() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}
