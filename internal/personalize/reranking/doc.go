// Vendcraft - Storefront Personalization and Feed Ranking
// Copyright 2026 Vendcraft Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vendcraft/vendcraft

// Package reranking implements post-processing filters for feed diversity.
//
// Rerankers operate on an already-scored, already-ordered feed and
// reshape it for objectives beyond pure relevance. They run after feed
// composition:
//
//	Scoring -> Cut -> Interleave -> Rerankers -> Final Feed
//
// # Available Rerankers
//
// Diversity:
//   - Probabilistically drops repeats of an already-seen category
//   - First item of each category always survives
//   - Factor parameter controls drop probability (0 disables)
//
// # Interface
//
// All rerankers implement the personalize.Reranker interface:
//
//	type Reranker interface {
//	    Name() string
//	    Rerank(ctx context.Context, items []FeedItem, limit int) []FeedItem
//	}
//
// # Usage Example
//
//	div := reranking.NewDiversity(0.3, rand.New(rand.NewSource(42)))
//	engine.RegisterReranker(div)
//
// # Thread Safety
//
// Rerankers guard their random source with a mutex and are safe for
// concurrent use. The same instance can process multiple requests
// simultaneously.
//
// # See Also
//
//   - internal/personalize: Engine that orchestrates reranking
package reranking
