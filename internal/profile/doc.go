// Vendcraft - Storefront Personalization and Feed Ranking
// Copyright 2026 Vendcraft Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vendcraft/vendcraft

// Package profile implements the interaction store: the durable,
// best-effort record of user behavior and the sole writer of profile
// state.
//
// Every tracked event (view, click, purchase, search, filter use)
// mutates the in-memory state and writes it through to the blob store
// as one JSON document per profile. Persistence failures are swallowed
// and logged; tracking never fails and the in-memory state stays
// authoritative for the life of the process.
//
// Preference weights accumulate per action according to a configured
// weight table, and the affordability price bracket widens
// multiplicatively around each purchase price. Search and filter
// histories are bounded with oldest-first eviction.
//
// The store satisfies personalize.ProfileSource, giving the
// personalization engine a read-only snapshot view without a
// dependency from this package on scoring internals.
package profile
