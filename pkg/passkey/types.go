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

import (
	"time"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
)

// User is an account that can own passkeys and notes.
type User struct {
	// ID is the stable account identifier. It doubles as the WebAuthn
	// user handle, so it must never be reused across accounts.
	ID string `json:"id"`

	// DisplayName is the human-readable name chosen at registration.
	DisplayName string `json:"displayName"`

	// CreatedAt is when the account was created.
	CreatedAt time.Time `json:"createdAt"`
}

// Credential is a registered passkey bound to a user.
type Credential struct {
	// ID is the internal row identifier.
	ID string `json:"id"`

	// ExternalID is the credential ID minted by the authenticator,
	// unique across all users.
	ExternalID []byte `json:"externalId"`

	// Name is the user-chosen label, unique per user.
	Name string `json:"name"`

	// UserID is the owning account.
	UserID string `json:"userId"`

	// PublicKey is the COSE-encoded credential public key.
	PublicKey []byte `json:"publicKey"`

	// Transports lists the transports the authenticator reported.
	Transports []string `json:"transports,omitempty"`

	// Counter is the last accepted signature counter. Assertions must
	// present a strictly greater value.
	Counter uint32 `json:"counter"`

	// AAGUID identifies the authenticator model, when attested.
	AAGUID []byte `json:"aaguid,omitempty"`

	// BackupEligible and BackupState carry the authenticator's sync flags.
	BackupEligible bool `json:"backupEligible"`
	BackupState    bool `json:"backupState"`

	// CreatedAt is when the credential was registered.
	CreatedAt time.Time `json:"createdAt"`
}

// webauthnCredential converts the stored credential into the library's
// representation for assertion verification.
func (c *Credential) webauthnCredential() webauthn.Credential {
	transports := make([]protocol.AuthenticatorTransport, 0, len(c.Transports))
	for _, t := range c.Transports {
		transports = append(transports, protocol.AuthenticatorTransport(t))
	}
	return webauthn.Credential{
		ID:        c.ExternalID,
		PublicKey: c.PublicKey,
		Transport: transports,
		Flags: webauthn.CredentialFlags{
			UserPresent:    true,
			BackupEligible: c.BackupEligible,
			BackupState:    c.BackupState,
		},
		Authenticator: webauthn.Authenticator{
			AAGUID:    c.AAGUID,
			SignCount: c.Counter,
		},
	}
}

// webauthnUser adapts a User and their credentials to the interface the
// ceremony library expects.
type webauthnUser struct {
	user        *User
	credentials []*Credential
}

var _ webauthn.User = (*webauthnUser)(nil)

func (u *webauthnUser) WebAuthnID() []byte {
	return []byte(u.user.ID)
}

func (u *webauthnUser) WebAuthnName() string {
	return u.user.DisplayName
}

func (u *webauthnUser) WebAuthnDisplayName() string {
	return u.user.DisplayName
}

func (u *webauthnUser) WebAuthnCredentials() []webauthn.Credential {
	creds := make([]webauthn.Credential, 0, len(u.credentials))
	for _, c := range u.credentials {
		creds = append(creds, c.webauthnCredential())
	}
	return creds
}
