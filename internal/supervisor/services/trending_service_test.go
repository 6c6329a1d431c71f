// Vendcraft - Storefront Personalization and Feed Ranking
// Copyright 2026 Vendcraft Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vendcraft/vendcraft

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// mockRefresher implements TrendingRefresher for testing.
type mockRefresher struct {
	mu        sync.Mutex
	refreshed map[string]int
	err       error
}

func (m *mockRefresher) RefreshTrending(_ context.Context, profileID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if m.refreshed == nil {
		m.refreshed = make(map[string]int)
	}
	m.refreshed[profileID]++
	return true, nil
}

func (m *mockRefresher) calls(profileID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshed[profileID]
}

// mockLister implements ProfileLister for testing.
type mockLister struct {
	ids []string
	err error
}

func (m *mockLister) ProfileIDs(_ context.Context) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.ids, nil
}

func TestTrendingRefreshServiceSweeps(t *testing.T) {
	refresher := &mockRefresher{}
	lister := &mockLister{ids: []string{"u1", "u2"}}
	svc := NewTrendingRefreshService(refresher, lister, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	// Wait for at least one tick to land.
	deadline := time.After(2 * time.Second)
	for refresher.calls("u1") == 0 || refresher.calls("u2") == 0 {
		select {
		case <-deadline:
			t.Fatal("sweep never refreshed both profiles")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after cancellation")
	}
}

func TestTrendingRefreshServiceSurvivesErrors(t *testing.T) {
	refresher := &mockRefresher{err: errors.New("catalog down")}
	lister := &mockLister{ids: []string{"u1"}}
	svc := NewTrendingRefreshService(refresher, lister, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// Per-profile failures must not end the service; only the context
	// cancellation does.
	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve() = %v, want context.DeadlineExceeded", err)
	}
}

func TestTrendingRefreshServiceListerFailure(t *testing.T) {
	refresher := &mockRefresher{}
	lister := &mockLister{err: errors.New("store down")}
	svc := NewTrendingRefreshService(refresher, lister, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve() = %v, want context.DeadlineExceeded", err)
	}
}

func TestTrendingRefreshServiceDefaults(t *testing.T) {
	svc := NewTrendingRefreshService(&mockRefresher{}, &mockLister{}, 0, zerolog.Nop())
	if svc.interval != 5*time.Minute {
		t.Errorf("default interval = %v, want 5m", svc.interval)
	}
	if got := svc.String(); got != "trending-refresh" {
		t.Errorf("String() = %q, want trending-refresh", got)
	}
}
