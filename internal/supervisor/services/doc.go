// Vendcraft - Storefront Personalization and Feed Ranking
// Copyright 2026 Vendcraft Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vendcraft/vendcraft

// Package services wraps Vendcraft's long-running components as
// suture.Service implementations. Each wrapper adapts a component's
// native lifecycle (blocking ListenAndServe, ticker loops) to suture's
// context-aware Serve contract and takes its dependency as a small
// interface so tests can substitute mocks.
package services
