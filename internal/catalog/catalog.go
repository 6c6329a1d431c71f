// Vendcraft - Storefront Personalization and Feed Ranking
// Copyright 2026 Vendcraft Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vendcraft/vendcraft

// Package catalog supplies product and creator records to the
// personalization engine.
package catalog

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/vendcraft/vendcraft/internal/personalize"
)

// Static is an in-memory catalog provider. Records are replaced
// wholesale; there is no partial mutation. Safe for concurrent use.
type Static struct {
	mu       sync.RWMutex
	products []personalize.Product
	creators []personalize.Creator
}

// NewStatic creates a provider over the given records.
func NewStatic(products []personalize.Product, creators []personalize.Creator) *Static {
	s := &Static{}
	s.Replace(products, creators)
	return s
}

// seedFile is the on-disk catalog format.
type seedFile struct {
	Products []personalize.Product `json:"products" validate:"dive"`
	Creators []personalize.Creator `json:"creators" validate:"dive"`
}

// seedProduct mirrors the validation constraints for one product record.
type seedProduct struct {
	ID       string  `validate:"required"`
	Name     string  `validate:"required"`
	Category string  `validate:"required"`
	Price    float64 `validate:"gte=0"`
	Rating   float64 `validate:"gte=0,lte=5"`
}

// LoadFile reads a JSON seed catalog from disk.
func LoadFile(path string) (*Static, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse catalog file %s: %w", path, err)
	}

	v := validator.New()
	for i := range seed.Products {
		p := seed.Products[i]
		sp := seedProduct{ID: p.ID, Name: p.Name, Category: p.Category, Price: p.Price, Rating: p.Rating}
		if err := v.Struct(sp); err != nil {
			return nil, fmt.Errorf("catalog product %d (%s): %w", i, p.ID, err)
		}
	}
	for i := range seed.Creators {
		if seed.Creators[i].ID == "" || seed.Creators[i].Name == "" {
			return nil, fmt.Errorf("catalog creator %d: id and name are required", i)
		}
	}

	return NewStatic(seed.Products, seed.Creators), nil
}

// Products returns a copy of the product records.
func (s *Static) Products(_ context.Context) ([]personalize.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]personalize.Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

// Creators returns a copy of the creator records.
func (s *Static) Creators(_ context.Context) ([]personalize.Creator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]personalize.Creator, len(s.creators))
	copy(out, s.creators)
	return out, nil
}

// Replace swaps in a new record set.
func (s *Static) Replace(products []personalize.Product, creators []personalize.Creator) {
	p := make([]personalize.Product, len(products))
	copy(p, products)
	c := make([]personalize.Creator, len(creators))
	copy(c, creators)

	s.mu.Lock()
	s.products = p
	s.creators = c
	s.mu.Unlock()
}

// Counts returns the number of products and creators.
func (s *Static) Counts() (products, creators int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products), len(s.creators)
}

// Ensure Static implements the engine's catalog interface.
var _ personalize.CatalogProvider = (*Static)(nil)
