// Vendcraft - Storefront Personalization and Feed Ranking
// Copyright 2026 Vendcraft Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vendcraft/vendcraft

// Package supervisor builds the suture service tree that keeps the
// long-running parts of Vendcraft alive.
//
// The tree has two child supervisors under the root:
//
//	vendcraft
//	├── background-layer   trending refresh loop
//	└── api-layer          HTTP server
//
// Supervisor events are logged through sutureslog, bridged into the
// zerolog pipeline by the logging package's slog adapter.
package supervisor
