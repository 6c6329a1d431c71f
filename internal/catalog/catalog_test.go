// Vendcraft - Storefront Personalization and Feed Ranking
// Copyright 2026 Vendcraft Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vendcraft/vendcraft

package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/vendcraft/vendcraft/internal/personalize"
)

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write seed file: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeSeed(t, `{
		"products": [
			{"id": "p1", "name": "Running Shoes", "category": "Shoes", "price": 90, "rating": 4.2},
			{"id": "p2", "name": "Canvas Tote", "category": "Bags", "price": 40}
		],
		"creators": [
			{"id": "c1", "name": "Ari", "followers": 5000, "live": true, "categories": ["Shoes"]}
		]
	}`)

	cat, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}

	products, creators := cat.Counts()
	if products != 2 || creators != 1 {
		t.Errorf("Counts() = (%d, %d), want (2, 1)", products, creators)
	}

	got, err := cat.Products(context.Background())
	if err != nil {
		t.Fatalf("Products() error: %v", err)
	}
	if got[0].ID != "p1" || got[0].Rating != 4.2 {
		t.Errorf("first product = %+v", got[0])
	}
}

func TestLoadFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid json", `{products: [}`},
		{"missing product id", `{"products": [{"name": "X", "category": "Shoes"}]}`},
		{"missing product name", `{"products": [{"id": "p1", "category": "Shoes"}]}`},
		{"missing category", `{"products": [{"id": "p1", "name": "X"}]}`},
		{"negative price", `{"products": [{"id": "p1", "name": "X", "category": "Shoes", "price": -1}]}`},
		{"rating above five", `{"products": [{"id": "p1", "name": "X", "category": "Shoes", "rating": 6}]}`},
		{"creator missing name", `{"creators": [{"id": "c1"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadFile(writeSeed(t, tt.content)); err == nil {
				t.Error("LoadFile() accepted invalid seed")
			}
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("LoadFile() on missing file did not error")
	}
}

func TestStaticCopiesRecords(t *testing.T) {
	products := []personalize.Product{{ID: "p1", Name: "X", Category: "Shoes"}}
	cat := NewStatic(products, nil)

	// Mutating the input after construction must not leak in.
	products[0].ID = "mutated"
	got, err := cat.Products(context.Background())
	if err != nil {
		t.Fatalf("Products() error: %v", err)
	}
	if got[0].ID != "p1" {
		t.Error("NewStatic() aliased the caller's slice")
	}

	// Mutating a returned copy must not leak back.
	got[0].ID = "mutated"
	again, err := cat.Products(context.Background())
	if err != nil {
		t.Fatalf("Products() error: %v", err)
	}
	if again[0].ID != "p1" {
		t.Error("Products() exposed internal state")
	}
}

func TestStaticReplace(t *testing.T) {
	cat := NewStatic(nil, nil)
	if p, c := cat.Counts(); p != 0 || c != 0 {
		t.Fatalf("empty catalog Counts() = (%d, %d)", p, c)
	}

	cat.Replace(
		[]personalize.Product{{ID: "p1", Name: "X", Category: "Shoes"}},
		[]personalize.Creator{{ID: "c1", Name: "Ari"}},
	)
	if p, c := cat.Counts(); p != 1 || c != 1 {
		t.Errorf("Counts() after Replace = (%d, %d), want (1, 1)", p, c)
	}
}
