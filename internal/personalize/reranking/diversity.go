// Vendcraft - Storefront Personalization and Feed Ranking
// Copyright 2026 Vendcraft Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vendcraft/vendcraft

// Package reranking implements post-processing filters for feed diversity.
package reranking

import (
	"context"
	"math/rand"
	"sync"

	"github.com/vendcraft/vendcraft/internal/personalize"
)

// maxRerankSize bounds k so a bad caller cannot trigger an oversized
// allocation.
const maxRerankSize = 10000

// Diversity implements a probabilistic category-repeat filter.
// The first item of each category always survives; every later item of
// an already-seen category is dropped with probability equal to the
// configured factor. This breaks up single-category runs without the
// quadratic cost of a pairwise similarity pass, at the price of
// non-determinism (seed the random source for reproducible output).
//
// Factor guidelines:
//   - 0.0: no filtering, the list passes through unchanged
//   - 0.2-0.4: mild run-breaking (recommended)
//   - 0.7+: aggressive, long feeds thin out noticeably
type Diversity struct {
	// factor is the drop probability for category repeats (0.0 to 1.0).
	factor float64

	// rng is the injected random source (protected by rngMu).
	rng   *rand.Rand
	rngMu sync.Mutex
}

// NewDiversity creates a new diversity filter using the given random
// source. Pass a seeded source for deterministic output.
func NewDiversity(factor float64, rng *rand.Rand) *Diversity {
	if factor < 0 {
		factor = 0
	}
	if factor > 1 {
		factor = 1
	}
	return &Diversity{factor: factor, rng: rng}
}

// Name returns the reranker identifier.
func (d *Diversity) Name() string {
	return "diversity"
}

// Rerank filters category repeats out of the feed. Relative order of
// the surviving items is preserved.
func (d *Diversity) Rerank(_ context.Context, items []personalize.FeedItem, k int) []personalize.FeedItem {
	if len(items) == 0 || k <= 0 {
		return items
	}

	// Bound k to prevent excessive memory allocation
	if k > maxRerankSize {
		k = maxRerankSize
	}

	// Early return if factor is 0 (no filtering)
	if d.factor <= 0 {
		if len(items) > k {
			return items[:k]
		}
		return items
	}

	seen := make(map[string]struct{}, len(items))
	kept := make([]personalize.FeedItem, 0, len(items))

	for _, item := range items {
		cat := item.Category()
		if _, repeat := seen[cat]; repeat && d.roll() {
			continue
		}
		seen[cat] = struct{}{}
		kept = append(kept, item)
		if len(kept) >= k {
			break
		}
	}

	return kept
}

// roll reports whether a category repeat should be dropped.
func (d *Diversity) roll() bool {
	d.rngMu.Lock()
	n := d.rng.Float64()
	d.rngMu.Unlock()
	return n < d.factor
}

// Ensure Diversity implements the interface.
var _ personalize.Reranker = (*Diversity)(nil)
