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

package passkey

import "context"

// UserStore persists user accounts.
type UserStore interface {
	// CreateUser persists a new account. The caller supplies the
	// identifier so account creation can be deferred until a
	// registration ceremony completes.
	CreateUser(ctx context.Context, user *User) error

	// GetUser retrieves an account by identifier. Returns ErrUserNotFound
	// if no account exists.
	GetUser(ctx context.Context, id string) (*User, error)
}

// CredentialStore persists registered passkeys.
type CredentialStore interface {
	// CreateCredential stores a new credential. Returns
	// ErrCredentialExists if the user already has a credential with the
	// same name.
	CreateCredential(ctx context.Context, cred *Credential) error

	// GetCredentialByExternalID retrieves a credential by the identifier
	// the authenticator minted. Returns ErrCredentialNotFound if no
	// credential matches.
	GetCredentialByExternalID(ctx context.Context, externalID []byte) (*Credential, error)

	// GetUserCredentials retrieves all credentials owned by a user.
	GetUserCredentials(ctx context.Context, userID string) ([]*Credential, error)

	// UpdateCounter advances a credential's signature counter to
	// newCounter only if newCounter is strictly greater than the stored
	// value. The comparison and write are a single atomic step. Returns
	// ErrReplayDetected when the counter does not advance.
	UpdateCounter(ctx context.Context, externalID []byte, newCounter uint32) error
}
