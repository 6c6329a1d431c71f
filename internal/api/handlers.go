// Vendcraft - Storefront Personalization and Feed Ranking
// Copyright 2026 Vendcraft Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vendcraft/vendcraft

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/vendcraft/vendcraft/internal/logging"
	"github.com/vendcraft/vendcraft/internal/metrics"
	"github.com/vendcraft/vendcraft/internal/personalize"
	"github.com/vendcraft/vendcraft/internal/profile"
)

// Handler implements the HTTP endpoints over the personalization
// engine and profile store.
type Handler struct {
	engine   *personalize.Engine
	profiles *profile.Store
	logger   zerolog.Logger
	validate *validator.Validate
	started  time.Time
}

// NewHandler creates the endpoint handler set.
//
//nolint:gocritic // hugeParam: logger passed by value is acceptable for zerolog
func NewHandler(engine *personalize.Engine, profiles *profile.Store, logger zerolog.Logger) *Handler {
	return &Handler{
		engine:   engine,
		profiles: profiles,
		logger:   logger.With().Str("component", "api").Logger(),
		validate: validator.New(),
		started:  time.Now(),
	}
}

// viewEventRequest is the body for view and click events.
type viewEventRequest struct {
	ItemID      string `json:"item_id" validate:"required"`
	ItemType    string `json:"item_type" validate:"required,oneof=product creator"`
	Category    string `json:"category,omitempty"`
	CreatorID   string `json:"creator_id,omitempty"`
	Brand       string `json:"brand,omitempty"`
	TimeSpentMS int64  `json:"time_spent_ms,omitempty" validate:"min=0"`
}

// purchaseEventRequest is the body for purchase events.
type purchaseEventRequest struct {
	ItemID    string  `json:"item_id" validate:"required"`
	Price     float64 `json:"price" validate:"gt=0"`
	Category  string  `json:"category,omitempty"`
	CreatorID string  `json:"creator_id,omitempty"`
	Brand     string  `json:"brand,omitempty"`
}

// searchEventRequest is the body for search events.
type searchEventRequest struct {
	Term string `json:"term" validate:"required"`
}

// filtersEventRequest is the body for filter selection events.
type filtersEventRequest struct {
	Filters map[string]string `json:"filters" validate:"required,min=1"`
}

// sessionResponse is the reply to a session start.
type sessionResponse struct {
	ProfileID    string `json:"profile_id"`
	SessionCount int    `json:"session_count"`
}

// StartSession handles POST /profiles/{id}/session.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "id")

	count := h.profiles.StartSession(r.Context(), profileID)
	metrics.RecordProfileEvent("session")

	RespondJSON(w, http.StatusOK, sessionResponse{ProfileID: profileID, SessionCount: count})
}

// TrackView handles POST /profiles/{id}/events/view.
func (h *Handler) TrackView(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "id")

	var req viewEventRequest
	if !h.decode(w, r, &req) {
		return
	}

	h.profiles.TrackView(r.Context(), profileID, req.ItemID, req.ItemType, profile.Metadata{
		Category:  req.Category,
		CreatorID: req.CreatorID,
		Brand:     req.Brand,
		TimeSpent: time.Duration(req.TimeSpentMS) * time.Millisecond,
	})
	metrics.RecordProfileEvent("view")

	RespondJSON(w, http.StatusAccepted, nil)
}

// TrackClick handles POST /profiles/{id}/events/click.
func (h *Handler) TrackClick(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "id")

	var req viewEventRequest
	if !h.decode(w, r, &req) {
		return
	}

	h.profiles.TrackClick(r.Context(), profileID, req.ItemID, req.ItemType, profile.Metadata{
		Category:  req.Category,
		CreatorID: req.CreatorID,
		Brand:     req.Brand,
	})
	metrics.RecordProfileEvent("click")

	RespondJSON(w, http.StatusAccepted, nil)
}

// TrackPurchase handles POST /profiles/{id}/events/purchase.
func (h *Handler) TrackPurchase(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "id")

	var req purchaseEventRequest
	if !h.decode(w, r, &req) {
		return
	}

	h.profiles.TrackPurchase(r.Context(), profileID, req.ItemID, req.Price, profile.Metadata{
		Category:  req.Category,
		CreatorID: req.CreatorID,
		Brand:     req.Brand,
	})
	metrics.RecordProfileEvent("purchase")

	RespondJSON(w, http.StatusAccepted, nil)
}

// TrackSearch handles POST /profiles/{id}/events/search.
// Short terms are accepted and ignored, matching the store's contract
// that tracking never fails.
func (h *Handler) TrackSearch(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "id")

	var req searchEventRequest
	if !h.decode(w, r, &req) {
		return
	}

	h.profiles.TrackSearch(r.Context(), profileID, req.Term)
	metrics.RecordProfileEvent("search")

	RespondJSON(w, http.StatusAccepted, nil)
}

// TrackFilters handles POST /profiles/{id}/events/filters.
func (h *Handler) TrackFilters(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "id")

	var req filtersEventRequest
	if !h.decode(w, r, &req) {
		return
	}

	h.profiles.TrackFilters(r.Context(), profileID, req.Filters)
	metrics.RecordProfileEvent("filters")

	RespondJSON(w, http.StatusAccepted, nil)
}

// Feed handles GET /profiles/{id}/feed.
//
// Query parameters:
//   - limit: maximum items to return (default and cap from config)
//   - creators: include interleaved creator cards (default true)
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "id")
	start := time.Now()

	opts := personalize.FeedOptions{IncludeCreators: true}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			RespondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		opts.Limit = limit
	}
	if v := r.URL.Query().Get("creators"); v != "" {
		include, err := strconv.ParseBool(v)
		if err != nil {
			RespondError(w, http.StatusBadRequest, "creators must be a boolean")
			return
		}
		opts.IncludeCreators = include
	}

	feed, err := h.engine.Feed(r.Context(), profileID, opts)
	if err != nil {
		logging.Ctx(r.Context()).Err(err).Str("profile_id", profileID).Msg("feed composition failed")
		RespondError(w, http.StatusInternalServerError, "feed unavailable")
		return
	}

	metrics.RecordFeed(time.Since(start), len(feed.Items))
	RespondJSON(w, http.StatusOK, feed)
}

// Search handles GET /profiles/{id}/search?q=term.
// The query is also recorded in the profile's search history.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "id")

	query := r.URL.Query().Get("q")
	if query == "" {
		RespondError(w, http.StatusBadRequest, "q parameter is required")
		return
	}

	resp, err := h.engine.Search(r.Context(), profileID, query)
	if err != nil {
		logging.Ctx(r.Context()).Err(err).Str("profile_id", profileID).Msg("search failed")
		RespondError(w, http.StatusInternalServerError, "search unavailable")
		return
	}

	h.profiles.TrackSearch(r.Context(), profileID, query)

	mode := "exact"
	switch {
	case len(resp.Results) == 0:
		mode = "empty"
	case resp.Semantic:
		mode = "semantic"
	}
	metrics.RecordSearch(mode, len(resp.Results))

	RespondJSON(w, http.StatusOK, resp)
}

// Trending handles GET /profiles/{id}/trending.
func (h *Handler) Trending(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "id")

	state, err := h.engine.Trending(r.Context(), profileID)
	if err != nil {
		logging.Ctx(r.Context()).Err(err).Str("profile_id", profileID).Msg("trending failed")
		RespondError(w, http.StatusInternalServerError, "trending unavailable")
		return
	}

	RespondJSON(w, http.StatusOK, state)
}

// Profile handles GET /profiles/{id}.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "id")

	state := h.profiles.Get(r.Context(), profileID)
	RespondJSON(w, http.StatusOK, state)
}

// healthResponse is the reply to health checks.
type healthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Requests      int64  `json:"requests"`
	Errors        int64  `json:"errors"`
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		Requests:      h.engine.RequestCount(),
		Errors:        h.engine.ErrorCount(),
	})
}

// HealthLive handles GET /health/live.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// HealthReady handles GET /health/ready.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// decode decodes and validates a JSON body, writing the error reply
// itself. Returns false when the request was rejected.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := DecodeJSON(r, dst); err != nil {
		RespondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		RespondError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return false
	}
	return true
}
