// Vendcraft - Storefront Personalization and Feed Ranking
// Copyright 2026 Vendcraft Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vendcraft/vendcraft

// Package api exposes the personalization engine and profile store
// over HTTP.
//
// # Routes
//
// Event tracking (write path, fire-and-forget semantics):
//
//	POST /api/v1/profiles/{id}/session
//	POST /api/v1/profiles/{id}/events/view
//	POST /api/v1/profiles/{id}/events/click
//	POST /api/v1/profiles/{id}/events/purchase
//	POST /api/v1/profiles/{id}/events/search
//	POST /api/v1/profiles/{id}/events/filters
//
// Read path:
//
//	GET /api/v1/profiles/{id}
//	GET /api/v1/profiles/{id}/feed?limit=20&creators=true
//	GET /api/v1/profiles/{id}/search?q=term
//	GET /api/v1/profiles/{id}/trending
//
// Operational:
//
//	GET /api/v1/health
//	GET /api/v1/health/live
//	GET /api/v1/health/ready
//	GET /metrics
//
// Tracking endpoints return 202 Accepted: the write-through to storage
// is best effort and the in-memory state is authoritative, so the
// client never sees a persistence failure.
//
// Middleware is built from the chi ecosystem: go-chi/cors for CORS,
// go-chi/httprate for IP-keyed rate limiting, and chi's RealIP and
// Recoverer. Every request carries an X-Request-ID propagated into the
// logging context.
package api
