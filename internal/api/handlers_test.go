// Vendcraft - Storefront Personalization and Feed Ranking
// Copyright 2026 Vendcraft Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vendcraft/vendcraft

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/vendcraft/vendcraft/internal/catalog"
	"github.com/vendcraft/vendcraft/internal/personalize"
	"github.com/vendcraft/vendcraft/internal/profile"
	"github.com/vendcraft/vendcraft/internal/profile/storage"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cat := catalog.NewStatic([]personalize.Product{
		{ID: "p1", Name: "Running Shoes", Category: "Shoes", Price: 90, Rating: 4.2},
		{ID: "p2", Name: "Leather Boots", Category: "Shoes", Price: 150, Rating: 4.5},
		{ID: "p3", Name: "Canvas Tote", Category: "Bags", Price: 40, Rating: 3.5},
	}, []personalize.Creator{
		{ID: "c1", Name: "Ari", Followers: 5000},
	})

	store, err := profile.NewStore(profile.DefaultConfig(), zerolog.Nop(), storage.NewMemoryStore())
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}

	engine, err := personalize.NewEngine(personalize.DefaultConfig(), zerolog.Nop(), cat, store)
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}

	handler := NewHandler(engine, store, zerolog.Nop())
	router := NewRouter(handler, []string{"*"}, 100, time.Minute, true)
	return router.Setup()
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestStartSessionEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/profiles/u1/session", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		ProfileID    string `json:"profile_id"`
		SessionCount int    `json:"session_count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ProfileID != "u1" || resp.SessionCount != 1 {
		t.Errorf("response = %+v", resp)
	}
}

func TestTrackEventEndpoints(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{
			name: "view accepted",
			path: "/api/v1/profiles/u1/events/view",
			body: `{"item_id": "p1", "item_type": "product", "category": "Shoes"}`,
			want: http.StatusAccepted,
		},
		{
			name: "click accepted",
			path: "/api/v1/profiles/u1/events/click",
			body: `{"item_id": "p1", "item_type": "product"}`,
			want: http.StatusAccepted,
		},
		{
			name: "purchase accepted",
			path: "/api/v1/profiles/u1/events/purchase",
			body: `{"item_id": "p1", "price": 90, "category": "Shoes"}`,
			want: http.StatusAccepted,
		},
		{
			name: "search accepted",
			path: "/api/v1/profiles/u1/events/search",
			body: `{"term": "boots"}`,
			want: http.StatusAccepted,
		},
		{
			name: "filters accepted",
			path: "/api/v1/profiles/u1/events/filters",
			body: `{"filters": {"category": "Shoes"}}`,
			want: http.StatusAccepted,
		},
		{
			name: "view missing item id",
			path: "/api/v1/profiles/u1/events/view",
			body: `{"item_type": "product"}`,
			want: http.StatusBadRequest,
		},
		{
			name: "view bad item type",
			path: "/api/v1/profiles/u1/events/view",
			body: `{"item_id": "p1", "item_type": "banner"}`,
			want: http.StatusBadRequest,
		},
		{
			name: "purchase without price",
			path: "/api/v1/profiles/u1/events/purchase",
			body: `{"item_id": "p1"}`,
			want: http.StatusBadRequest,
		},
		{
			name: "filters empty map",
			path: "/api/v1/profiles/u1/events/filters",
			body: `{"filters": {}}`,
			want: http.StatusBadRequest,
		},
		{
			name: "unknown field rejected",
			path: "/api/v1/profiles/u1/events/view",
			body: `{"item_id": "p1", "item_type": "product", "bogus": 1}`,
			want: http.StatusBadRequest,
		},
		{
			name: "malformed json",
			path: "/api/v1/profiles/u1/events/view",
			body: `{item_id`,
			want: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestFeedEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/profiles/u1/feed?limit=2&creators=false", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var feed personalize.Feed
	if err := json.Unmarshal(rec.Body.Bytes(), &feed); err != nil {
		t.Fatalf("decode feed: %v", err)
	}
	if len(feed.Items) != 2 {
		t.Errorf("feed items = %d, want 2", len(feed.Items))
	}
	if feed.Metadata.ProfileID != "u1" {
		t.Errorf("metadata profile = %q, want u1", feed.Metadata.ProfileID)
	}
	if feed.TotalCandidates != 3 {
		t.Errorf("total candidates = %d, want 3", feed.TotalCandidates)
	}
}

func TestFeedEndpointBadParams(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{
		"/api/v1/profiles/u1/feed?limit=abc",
		"/api/v1/profiles/u1/feed?limit=0",
		"/api/v1/profiles/u1/feed?limit=-5",
		"/api/v1/profiles/u1/feed?creators=maybe",
	} {
		rec := doRequest(t, router, http.MethodGet, path, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, rec.Code)
		}
	}
}

func TestSearchEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/profiles/u1/search?q=running", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp personalize.SearchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Product.ID != "p1" {
		t.Errorf("results = %+v, want p1", resp.Results)
	}

	// The query is recorded in the profile's search history.
	rec = doRequest(t, router, http.MethodGet, "/api/v1/profiles/u1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("profile status = %d", rec.Code)
	}
	var state profile.State
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if len(state.Log.Searches) != 1 || state.Log.Searches[0].Term != "running" {
		t.Errorf("search history = %+v", state.Log.Searches)
	}
}

func TestSearchEndpointRequiresQuery(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/profiles/u1/search", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestTrendingEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/profiles/u1/trending", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var state personalize.TrendingState
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if len(state.GlobalTrending) != 3 {
		t.Errorf("global trending = %v, want all 3 products", state.GlobalTrending)
	}
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{
		"/api/v1/health",
		"/api/v1/health/live",
		"/api/v1/health/ready",
	} {
		rec := doRequest(t, router, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", path, rec.Code)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Errorf("/metrics status = %d, want 200", rec.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/health/live", "")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("response missing X-Request-ID header")
	}

	// A caller-supplied ID is echoed back.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil)
	req.Header.Set("X-Request-ID", "trace-123")
	echo := httptest.NewRecorder()
	router.ServeHTTP(echo, req)
	if got := echo.Header().Get("X-Request-ID"); got != "trace-123" {
		t.Errorf("X-Request-ID = %q, want trace-123", got)
	}
}

func TestSecurityHeaders(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/profiles/u1/trending", "")
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
}
