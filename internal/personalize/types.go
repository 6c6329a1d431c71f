// Vendcraft - Storefront Personalization and Feed Ranking
// Copyright 2026 Vendcraft Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vendcraft/vendcraft

package personalize

import (
	"context"
	"time"
)

// Note: This package has no dependencies on other internal packages to
// maintain clean separation. The CatalogProvider interface allows the
// catalog package to supply data without creating circular imports.

// Product represents a catalog product with metadata used for scoring.
//
// Optional fields follow the zero-value convention: Rating <= 0 means
// unrated (the scoring default of 4 applies), Stock <= 0 means stock is
// unknown (no urgency bonus), and a zero CreatedAt is treated as 30 days
// old (no freshness bonus).
type Product struct {
	// ID is the unique product identifier.
	ID string `json:"id"`

	// Name is the display name.
	Name string `json:"name"`

	// Category is the product category (e.g. "Shoes").
	Category string `json:"category"`

	// Description is the free-text listing description.
	Description string `json:"description,omitempty"`

	// Price is the current sale price.
	Price float64 `json:"price"`

	// ListPrice is the pre-discount price, if any.
	ListPrice float64 `json:"list_price,omitempty"`

	// Rating is the average review rating (0-5).
	Rating float64 `json:"rating,omitempty"`

	// CreatorID identifies the seller/creator, if any.
	CreatorID string `json:"creator_id,omitempty"`

	// Brand is the brand name, if any.
	Brand string `json:"brand,omitempty"`

	// Stock is the remaining inventory count.
	Stock int `json:"stock,omitempty"`

	// CreatedAt is when the listing was created.
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Creator represents a seller/creator card eligible for feed interleaving.
type Creator struct {
	// ID is the unique creator identifier.
	ID string `json:"id"`

	// Name is the display name.
	Name string `json:"name"`

	// Followers is the follower count.
	Followers int `json:"followers"`

	// Live indicates the creator is currently livestreaming.
	Live bool `json:"live"`

	// Categories lists the categories the creator sells in.
	Categories []string `json:"categories,omitempty"`
}

// ScoredProduct is a product annotated with its relevance score.
type ScoredProduct struct {
	// Product is the catalog record.
	Product Product `json:"product"`

	// Score is the computed interest score (>= 0).
	Score float64 `json:"score"`

	// Reason is the single human-readable recommendation hint.
	Reason string `json:"reason,omitempty"`

	// Trending indicates membership in the current trending set.
	Trending bool `json:"trending,omitempty"`
}

// ScoredCreator is a creator annotated with its interest score.
type ScoredCreator struct {
	// Creator is the catalog record.
	Creator Creator `json:"creator"`

	// Score is the computed interest score.
	Score float64 `json:"score"`
}

// FeedItemKind discriminates entries in a composed feed.
type FeedItemKind int

const (
	// FeedProduct is a product card.
	FeedProduct FeedItemKind = iota
	// FeedCreator is an interleaved creator card.
	FeedCreator
)

// String returns a human-readable kind name.
func (k FeedItemKind) String() string {
	switch k {
	case FeedProduct:
		return "product"
	case FeedCreator:
		return "creator"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so feed items serialize
// with a readable kind field.
func (k FeedItemKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// FeedItem is one entry of a composed presentation feed.
type FeedItem struct {
	// Kind discriminates between product and creator entries.
	Kind FeedItemKind `json:"kind"`

	// Product is set when Kind == FeedProduct.
	Product *ScoredProduct `json:"product,omitempty"`

	// Creator is set when Kind == FeedCreator.
	Creator *ScoredCreator `json:"creator,omitempty"`
}

// Category returns the grouping key used by the diversity filter:
// the product category for product cards, the kind name for creator cards.
func (f FeedItem) Category() string {
	if f.Kind == FeedProduct && f.Product != nil {
		return f.Product.Product.Category
	}
	return f.Kind.String()
}

// Score returns the item's relevance score regardless of kind.
func (f FeedItem) Score() float64 {
	switch {
	case f.Product != nil:
		return f.Product.Score
	case f.Creator != nil:
		return f.Creator.Score
	default:
		return 0
	}
}

// FeedOptions controls feed composition.
type FeedOptions struct {
	// Limit is the maximum feed length. Defaults to Config.Feed.DefaultLimit.
	Limit int `json:"limit,omitempty"`

	// IncludeCreators enables creator-card interleaving.
	IncludeCreators bool `json:"include_creators,omitempty"`
}

// Feed is a composed feed response.
type Feed struct {
	// Items is the bounded, diversified, interleaved presentation list.
	Items []FeedItem `json:"items"`

	// TotalCandidates is the number of catalog products considered.
	TotalCandidates int `json:"total_candidates"`

	// Metadata contains timing and diagnostic information.
	Metadata FeedMetadata `json:"metadata"`
}

// FeedMetadata contains timing and diagnostic information for a feed.
type FeedMetadata struct {
	// RequestID is the unique request identifier.
	RequestID string `json:"request_id"`

	// ProfileID identifies the profile the feed was composed for.
	ProfileID string `json:"profile_id"`

	// LatencyMS is the total composition latency in milliseconds.
	LatencyMS int64 `json:"latency_ms"`

	// TrendingRefreshed indicates the trending set was recomputed.
	TrendingRefreshed bool `json:"trending_refreshed"`

	// Timestamp is when the feed was composed.
	Timestamp time.Time `json:"timestamp"`
}

// SearchResult is one ranked search hit.
type SearchResult struct {
	// Product is the matching catalog record.
	Product Product `json:"product"`

	// Score is score(product) + Relevance.
	Score float64 `json:"score"`

	// Relevance is the query-specific contribution.
	Relevance float64 `json:"relevance"`
}

// SearchResponse is a ranked search response.
type SearchResponse struct {
	// Results is ordered by combined score, descending.
	Results []SearchResult `json:"results"`

	// Semantic indicates the relaxed fallback pass produced the results.
	Semantic bool `json:"semantic"`
}

// PriceRange brackets the prices a profile has shown affordability for.
// It widens multiplicatively on each purchase and never narrows.
type PriceRange struct {
	// Min is the lower bracket bound.
	Min float64 `json:"min"`

	// Max is the upper bracket bound.
	Max float64 `json:"max"`
}

// Contains reports whether price falls inside the bracket.
func (r PriceRange) Contains(price float64) bool {
	return price >= r.Min && price <= r.Max
}

// TrendingState is the bounded, hourly-refreshed trending set.
type TrendingState struct {
	// GlobalTrending holds up to ten product IDs ranked by engagement
	// score, descending.
	GlobalTrending []string `json:"global_trending"`

	// PersonalTrending is the subsequence of GlobalTrending (at most
	// five entries) whose category matches a profile preference.
	PersonalTrending []string `json:"personal_trending"`

	// LastUpdated gates recomputation to at most once per refresh
	// interval.
	LastUpdated time.Time `json:"last_updated"`
}

// Contains reports whether the product ID is in either trending set.
func (t TrendingState) Contains(id string) bool {
	for _, tid := range t.GlobalTrending {
		if tid == id {
			return true
		}
	}
	for _, tid := range t.PersonalTrending {
		if tid == id {
			return true
		}
	}
	return false
}

// ProfileSnapshot is the read-only view of a profile that scoring
// operates on. The profile package produces snapshots; nothing in this
// package mutates one.
type ProfileSnapshot struct {
	// Categories maps category name to accumulated preference weight.
	Categories map[string]float64 `json:"categories"`

	// Creators maps creator ID to accumulated preference weight.
	Creators map[string]float64 `json:"creators"`

	// Brands maps brand name to accumulated preference weight.
	Brands map[string]float64 `json:"brands"`

	// PriceRange brackets observed affordability.
	PriceRange PriceRange `json:"price_range"`

	// Views, Clicks and Purchases map interaction keys (see ItemKey)
	// to event counts.
	Views     map[string]int `json:"views"`
	Clicks    map[string]int `json:"clicks"`
	Purchases map[string]int `json:"purchases"`

	// Trending is the profile's current trending state.
	Trending TrendingState `json:"trending"`
}

// ItemKey builds the interaction-log key for an item, e.g. "product_p1".
func ItemKey(itemType, id string) string {
	return itemType + "_" + id
}

// ProfileSource provides profile snapshots and accepts trending updates.
// Implemented by the profile store; the store remains the sole writer of
// persisted profile state.
type ProfileSource interface {
	// Snapshot returns a read-only copy of the profile's state,
	// creating a default profile if none exists.
	Snapshot(ctx context.Context, profileID string) (ProfileSnapshot, error)

	// SetTrending replaces the profile's trending state and persists it.
	SetTrending(ctx context.Context, profileID string, state TrendingState) error
}

// CatalogProvider supplies the products and creators eligible for
// scoring. Implemented by the catalog package; the engine never reaches
// for an ambient global catalog.
type CatalogProvider interface {
	// Products returns all catalog products.
	Products(ctx context.Context) ([]Product, error)

	// Creators returns all catalog creators.
	Creators(ctx context.Context) ([]Creator, error)
}

// Reranker modifies a composed feed for diversity or other objectives.
type Reranker interface {
	// Name returns the reranker identifier (e.g. "diversity").
	Name() string

	// Rerank filters or reorders the feed. The input is already scored
	// and approximately ordered; at most limit items are returned.
	Rerank(ctx context.Context, items []FeedItem, limit int) []FeedItem
}
