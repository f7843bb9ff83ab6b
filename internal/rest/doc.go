// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-notevault.
//
// go-notevault is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package rest provides the HTTP server for go-notevault.
//
// The server exposes three route groups on a chi router:
//
//   - /auth: passkey registration and login ceremonies. Ceremony state
//     travels in an encrypted challengeSession cookie scoped to the verify
//     endpoint; a successful login sets the token session cookie.
//   - /api: note, category, and quick-note operations. Every /api route is
//     behind the session middleware, which resolves the token cookie to a
//     user ID and stores it in the request context.
//   - /health and /metrics: liveness and Prometheus instrumentation.
//
// Middleware order is recovery, correlation ID, request logging, metrics.
package rest
