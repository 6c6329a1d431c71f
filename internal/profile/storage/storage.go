// Vendcraft - Storefront Personalization and Feed Ranking
// Copyright 2026 Vendcraft Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vendcraft/vendcraft

// Package storage provides blob persistence backends for profile state.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no blob exists for a profile.
var ErrNotFound = errors.New("profile blob not found")

// BlobStore persists one opaque blob per profile. Implementations must
// be safe for concurrent use.
type BlobStore interface {
	// Load returns the stored blob, or ErrNotFound.
	Load(ctx context.Context, profileID string) ([]byte, error)

	// Save stores the blob, replacing any previous value.
	Save(ctx context.Context, profileID string, data []byte) error

	// Delete removes the blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, profileID string) error

	// List returns the IDs of all stored profiles.
	List(ctx context.Context) ([]string, error)

	// Close releases backend resources.
	Close() error
}
