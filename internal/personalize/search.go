// Vendcraft - Storefront Personalization and Feed Ranking
// Copyright 2026 Vendcraft Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vendcraft/vendcraft

package personalize

import (
	"sort"
	"strings"
)

// searchRanker filters a catalog by a text query and ranks matches.
// It is a thin layer over the scorer: the combined rank is
// Score(product) + query-specific relevance.
type searchRanker struct {
	cfg    SearchConfig
	scorer *Scorer
}

// rank produces the ranked result set for a query against the catalog.
func (r *searchRanker) rank(query string, products []Product, snap ProfileSnapshot) *SearchResponse {
	query = strings.TrimSpace(strings.ToLower(query))
	if len(query) < r.cfg.MinTermLength {
		return &SearchResponse{Results: []SearchResult{}}
	}

	tokens := tokenize(query)
	matches := r.matchAll(tokens, products)

	semantic := false
	if len(matches) == 0 && len(query) >= r.cfg.SemanticMinQueryLength {
		matches = r.matchAny(tokens, products, snap)
		semantic = true
	}

	results := make([]SearchResult, 0, len(matches))
	for _, m := range matches {
		rel := r.relevance(query, tokens, m.product)
		results = append(results, SearchResult{
			Product:   *m.product,
			Score:     r.scorer.Score(*m.product, snap) + rel + m.fallbackScore,
			Relevance: rel,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return &SearchResponse{Results: results, Semantic: semantic}
}

// match is one matching product, with an extra fallback score for the
// semantic pass.
type match struct {
	product       *Product
	fallbackScore float64
}

// matchAll keeps products where every query token is a substring of the
// concatenated searchable text.
func (r *searchRanker) matchAll(tokens []string, products []Product) []match {
	matches := make([]match, 0, len(products))
	for i := range products {
		text := searchText(&products[i])
		all := true
		for _, tok := range tokens {
			if !strings.Contains(text, tok) {
				all = false
				break
			}
		}
		if all {
			matches = append(matches, match{product: &products[i]})
		}
	}
	return matches
}

// matchAny is the relaxed fallback pass: a product matches when any
// token hits, scored by token-hit count plus the profile's category
// preference weight.
func (r *searchRanker) matchAny(tokens []string, products []Product, snap ProfileSnapshot) []match {
	matches := make([]match, 0, len(products))
	for i := range products {
		text := searchText(&products[i])
		hits := 0
		for _, tok := range tokens {
			if strings.Contains(text, tok) {
				hits++
			}
		}
		if hits > 0 {
			matches = append(matches, match{
				product:       &products[i],
				fallbackScore: float64(hits) + snap.Categories[products[i].Category],
			})
		}
	}
	return matches
}

// relevance computes the query-specific ranking contribution.
func (r *searchRanker) relevance(query string, tokens []string, p *Product) float64 {
	cfg := r.cfg
	var rel float64

	name := strings.ToLower(p.Name)
	if strings.Contains(name, query) {
		rel += cfg.NameMatchBonus
	}
	if strings.Contains(strings.ToLower(p.Category), query) {
		rel += cfg.CategoryMatchBonus
	}

	nameWords := strings.Fields(name)
	for _, tok := range tokens {
		for _, w := range nameWords {
			if strings.Contains(w, tok) || strings.Contains(tok, w) {
				rel += cfg.WordPairBonus
			}
		}
	}

	return rel
}

// searchText builds the lowercased haystack for substring matching.
func searchText(p *Product) string {
	return strings.ToLower(p.Name + " " + p.Category + " " + p.Description)
}
