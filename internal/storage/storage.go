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

// Package storage defines the persistence surface the server wires
// together: account and credential stores for authentication plus the
// note store for the domain. Two implementations exist, sqlite for
// production and memory for development and tests.
package storage

import (
	"context"

	"github.com/jeremyhahn/go-notevault/internal/note"
	"github.com/jeremyhahn/go-notevault/pkg/passkey"
)

// Store is the full persistence surface backing the server.
type Store interface {
	passkey.UserStore
	passkey.CredentialStore
	note.Store

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend.
	Close() error
}
