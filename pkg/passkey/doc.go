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

// Package passkey provides passwordless authentication built on
// WebAuthn discoverable credentials, with stateless challenge and
// session handling.
//
// This package wraps the go-webauthn/webauthn library and provides:
//   - Registration and login ceremonies for passkeys
//   - Sealed, self-expiring challenge values and session tokens
//     (AES-256-GCM over JSON envelopes) so the server holds no
//     per-ceremony or per-session state
//   - Pluggable storage interfaces for users and credentials
//   - In-memory storage implementations for development/testing
//   - Replay detection via strictly-increasing signature counters
//
// # Architecture
//
// The package is designed with a layered architecture:
//
//  1. Service layer (Service) - Ceremony orchestration and the auth gate
//  2. Codec layer (Codec) - Sealing and opening of client-held state
//  3. Storage layer (UserStore, CredentialStore) - Pluggable persistence
//
// # Usage
//
// Basic usage with in-memory storage (for development):
//
//	codec, err := passkey.NewCodec(key) // 32-byte key
//	svc, err := passkey.NewService(passkey.ServiceParams{
//	    Config: &passkey.Config{
//	        RPID:          "localhost",
//	        RPDisplayName: "NoteVault",
//	        RPOrigins:     []string{"https://localhost:3000"},
//	    },
//	    Codec:           codec,
//	    UserStore:       passkey.NewMemoryUserStore(),
//	    CredentialStore: passkey.NewMemoryCredentialStore(),
//	})
//
// For production, implement the storage interfaces with your database.
//
// # Security Model
//
// Challenge values and session tokens are opaque to clients. Their
// expiry travels inside the authenticated ciphertext, so it cannot be
// stripped or extended without the key. A session token that fails to
// open for any reason is treated identically to a missing one.
//
// Assertions must present a signature counter strictly greater than
// the stored value; the counter update is a single conditional write,
// so concurrent replays cannot both succeed.
//
// Note: WebAuthn requires HTTPS for all operations. Browsers will only
// expose the WebAuthn API in secure contexts.
package passkey
