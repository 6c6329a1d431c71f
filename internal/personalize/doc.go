// Vendcraft - Storefront Personalization and Feed Ranking
// Copyright 2026 Vendcraft Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vendcraft/vendcraft

// Package personalize implements the storefront personalization engine:
// product scoring, trending calculation, feed composition, and
// personalized search ranking.
//
// # Architecture
//
// The engine composes four stages over a profile snapshot:
//
//	Catalog -> Scorer -> Sort/Cut -> Trending Badge -> Interleave -> Rerankers -> Feed
//
// Scoring is a pure additive model: rating, category and creator
// affinity, price fit, trending membership, listing freshness, repeat
// engagement, and scarcity each contribute a weighted term, and the
// result is floored at zero. All weights live in ScoringConfig so the
// model can be tuned without code changes.
//
// Trending is recomputed at most once per refresh interval per profile.
// The engagement metric is synthetic (rating plus bounded random noise
// plus scarcity and freshness bonuses) because real view-velocity
// telemetry does not exist in this system; the per-item numeric score
// interface stays stable when a production source replaces it.
//
// Search filters the catalog with AND-of-substrings token matching and
// falls back to a relaxed OR pass for longer queries that match
// nothing. Results are ranked by personalized score plus
// query-specific relevance bonuses.
//
// # Dependencies
//
// The engine depends on two narrow interfaces, CatalogProvider and
// ProfileSource, defined in this package. Concrete implementations
// live in internal/catalog and internal/profile; the direction of the
// dependency keeps this package free of storage concerns.
//
// # Determinism
//
// Every random draw flows through an injected, seeded *rand.Rand, and
// every time read flows through an injectable clock. Tests pin both.
//
// # Thread Safety
//
// Engine, Scorer, and TrendingCalculator are safe for concurrent use.
// Random sources are guarded by mutexes; everything else is immutable
// after construction.
package personalize
