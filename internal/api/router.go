// Vendcraft - Storefront Personalization and Feed Ranking
// Copyright 2026 Vendcraft Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vendcraft/vendcraft

// Package api provides HTTP routing using the chi router.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router assembles the HTTP surface.
type Router struct {
	handler    *Handler
	middleware *Middleware
}

// NewRouter creates a router over the given handler set.
func NewRouter(handler *Handler, corsOrigins []string, rateLimitReqs int, rateLimitWindow time.Duration, rateLimitDisabled bool) *Router {
	mwConfig := DefaultMiddlewareConfig()
	mwConfig.CORSAllowedOrigins = corsOrigins
	mwConfig.RateLimitRequests = rateLimitReqs
	mwConfig.RateLimitWindow = rateLimitWindow
	mwConfig.RateLimitDisabled = rateLimitDisabled

	return &Router{
		handler:    handler,
		middleware: NewMiddleware(mwConfig),
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware stack, applied to all routes in order
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.middleware.CORS())

	// Health endpoints with permissive rate limiting so monitoring
	// tools can poll frequently
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.middleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Profile endpoints
	r.Route("/api/v1/profiles/{id}", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(PrometheusMetrics())

		// Event tracking gets a doubled rate budget: trackers fire on
		// every storefront interaction
		r.Group(func(r chi.Router) {
			r.Use(router.middleware.RateLimitEvents())
			r.Post("/session", router.handler.StartSession)
			r.Post("/events/view", router.handler.TrackView)
			r.Post("/events/click", router.handler.TrackClick)
			r.Post("/events/purchase", router.handler.TrackPurchase)
			r.Post("/events/search", router.handler.TrackSearch)
			r.Post("/events/filters", router.handler.TrackFilters)
		})

		// Read endpoints
		r.Group(func(r chi.Router) {
			r.Use(router.middleware.RateLimit())
			r.Get("/", router.handler.Profile)
			r.Get("/feed", router.handler.Feed)
			r.Get("/search", router.handler.Search)
			r.Get("/trending", router.handler.Trending)
		})
	})

	// Observability
	r.Handle("/metrics", promhttp.Handler())

	return r
}
