// Vendcraft - Storefront Personalization and Feed Ranking
// Copyright 2026 Vendcraft Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vendcraft/vendcraft

// Package metrics provides Prometheus instrumentation for the API
// surface, the personalization engine, and profile persistence.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Feed Composition Metrics
	FeedRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_requests_total",
			Help: "Total number of feed composition requests",
		},
	)

	FeedCompositionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_composition_duration_seconds",
			Help:    "Duration of feed composition in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	FeedItemsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_items_returned",
			Help:    "Number of items in composed feeds",
			Buckets: []float64{1, 5, 10, 20, 50, 100},
		},
	)

	// Trending Metrics
	TrendingRefreshesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trending_refreshes_total",
			Help: "Total number of trending set recomputations",
		},
	)

	TrendingGateHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trending_gate_hits_total",
			Help: "Total number of trending requests served from the cached set",
		},
	)

	// Search Metrics
	SearchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_requests_total",
			Help: "Total number of search requests",
		},
		[]string{"mode"}, // "exact", "semantic", "empty"
	)

	SearchResultsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_results_returned",
			Help:    "Number of results per search request",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		},
	)

	// Profile Event Metrics
	ProfileEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_events_total",
			Help: "Total number of tracked profile events",
		},
		[]string{"event"}, // "view", "click", "purchase", "search", "filters", "session"
	)

	ProfilePersistFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "profile_persist_failures_total",
			Help: "Total number of swallowed profile write-through failures",
		},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordFeed records one feed composition.
func RecordFeed(duration time.Duration, itemCount int) {
	FeedRequestsTotal.Inc()
	FeedCompositionDuration.Observe(duration.Seconds())
	FeedItemsReturned.Observe(float64(itemCount))
}

// RecordTrending records whether a trending request recomputed the set
// or hit the hourly gate.
func RecordTrending(refreshed bool) {
	if refreshed {
		TrendingRefreshesTotal.Inc()
	} else {
		TrendingGateHits.Inc()
	}
}

// RecordSearch records one search request. Mode is "exact" for the
// strict pass, "semantic" for the relaxed fallback, "empty" for no
// results.
func RecordSearch(mode string, resultCount int) {
	SearchRequestsTotal.WithLabelValues(mode).Inc()
	SearchResultsReturned.Observe(float64(resultCount))
}

// RecordProfileEvent records one tracked profile event.
func RecordProfileEvent(event string) {
	ProfileEventsTotal.WithLabelValues(event).Inc()
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
