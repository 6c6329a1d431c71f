// Vendcraft - Storefront Personalization and Feed Ranking
// Copyright 2026 Vendcraft Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vendcraft/vendcraft

package storage

import (
	"context"
	"sync"
)

// MemoryStore implements BlobStore with an in-memory map. State is lost
// on restart; intended for tests and ephemeral deployments.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte

	// FailSaves makes every Save return an error. Tests use it to
	// exercise the swallowed write-through failure path.
	FailSaves error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Load returns the stored blob for a profile.
func (s *MemoryStore) Load(_ context.Context, profileID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.blobs[profileID]
	if !ok {
		return nil, ErrNotFound
	}

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Save stores the blob, replacing any previous value.
func (s *MemoryStore) Save(_ context.Context, profileID string, data []byte) error {
	if s.FailSaves != nil {
		return s.FailSaves
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	s.blobs[profileID] = stored
	return nil
}

// Delete removes the blob for a profile.
func (s *MemoryStore) Delete(_ context.Context, profileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.blobs, profileID)
	return nil
}

// List returns the IDs of all stored profiles.
func (s *MemoryStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.blobs))
	for id := range s.blobs {
		ids = append(ids, id)
	}
	return ids, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

// Ensure MemoryStore implements the interface.
var _ BlobStore = (*MemoryStore)(nil)
