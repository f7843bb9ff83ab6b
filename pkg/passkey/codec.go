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
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
)

// KeySize is the required length of the codec key in bytes (AES-256).
const KeySize = 32

// Ceremony purposes bound into challenge envelopes. A challenge minted
// for one ceremony cannot be replayed against the other.
const (
	purposeRegistration = "registration"
	purposeLogin        = "login"
	purposeSession      = "session"
)

// Codec seals and opens the opaque values the service hands to clients:
// ceremony challenges and session tokens. Values are AES-256-GCM
// sealed JSON envelopes, so clients can neither read nor forge them,
// and the embedded expiry cannot be stripped without breaking the
// authentication tag.
type Codec struct {
	aead cipher.AEAD
	now  func() time.Time
}

// NewCodec creates a Codec from a 32-byte key.
func NewCodec(key []byte) (*Codec, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("codec key must be %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize GCM: %w", err)
	}
	return &Codec{
		aead: aead,
		now:  time.Now,
	}, nil
}

// challengeEnvelope is the plaintext carried inside a challenge value.
// Registration challenges also carry the pending account identity so
// the server holds no per-ceremony state.
type challengeEnvelope struct {
	Purpose     string                `json:"purpose"`
	Session     *webauthn.SessionData `json:"session"`
	UserID      string                `json:"userId,omitempty"`
	DisplayName string                `json:"displayName,omitempty"`
	PasskeyName string                `json:"passkeyName,omitempty"`
	ExpiresAt   int64                 `json:"expiresAt"`
}

// sessionEnvelope is the plaintext carried inside a session token. The
// purpose tag keeps a challenge value from ever opening as a session.
type sessionEnvelope struct {
	Purpose   string `json:"purpose"`
	UserID    string `json:"userId"`
	ExpiresAt int64  `json:"expiresAt"`
}

// IssueChallenge seals ceremony state into an opaque challenge value
// valid for ttl. Registration challenges carry the pending account
// identity and passkey name so no row is written until the ceremony
// completes.
func (c *Codec) IssueChallenge(purpose string, session *webauthn.SessionData, userID, displayName, passkeyName string, ttl time.Duration) (string, error) {
	env := challengeEnvelope{
		Purpose:     purpose,
		Session:     session,
		UserID:      userID,
		DisplayName: displayName,
		PasskeyName: passkeyName,
		ExpiresAt:   c.now().Add(ttl).Unix(),
	}
	plaintext, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("failed to encode challenge: %w", err)
	}
	return c.seal(plaintext)
}

// OpenChallenge authenticates and decrypts a challenge value, checking
// its purpose and expiry. All failures collapse to ErrChallengeInvalid.
func (c *Codec) OpenChallenge(value, wantPurpose string) (*challengeEnvelope, error) {
	plaintext, err := c.open(value)
	if err != nil {
		return nil, ErrChallengeInvalid
	}
	var env challengeEnvelope
	if err := json.Unmarshal(plaintext, &env); err != nil {
		return nil, ErrChallengeInvalid
	}
	if env.Purpose != wantPurpose || env.Session == nil {
		return nil, ErrChallengeInvalid
	}
	if c.now().Unix() > env.ExpiresAt {
		return nil, ErrChallengeInvalid
	}
	return &env, nil
}

// IssueSession seals a user identity into an opaque session token
// valid for ttl.
func (c *Codec) IssueSession(userID string, ttl time.Duration) (string, error) {
	env := sessionEnvelope{
		Purpose:   purposeSession,
		UserID:    userID,
		ExpiresAt: c.now().Add(ttl).Unix(),
	}
	plaintext, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("failed to encode session: %w", err)
	}
	return c.seal(plaintext)
}

// OpenSession authenticates and decrypts a session token and returns
// the user identifier it carries. Expired or malformed tokens return
// ErrSessionInvalid.
func (c *Codec) OpenSession(token string) (string, error) {
	plaintext, err := c.open(token)
	if err != nil {
		return "", ErrSessionInvalid
	}
	var env sessionEnvelope
	if err := json.Unmarshal(plaintext, &env); err != nil {
		return "", ErrSessionInvalid
	}
	if env.Purpose != purposeSession || env.UserID == "" {
		return "", ErrSessionInvalid
	}
	if c.now().Unix() > env.ExpiresAt {
		return "", ErrSessionInvalid
	}
	return env.UserID, nil
}

// seal encrypts plaintext and encodes nonce||ciphertext as unpadded
// URL-safe base64, the alphabet cookies tolerate without quoting.
func (c *Codec) seal(plaintext []byte) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// open decodes and decrypts a sealed value.
func (c *Codec) open(value string) ([]byte, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("failed to decode value: %w", err)
	}
	if len(sealed) < c.aead.NonceSize() {
		return nil, fmt.Errorf("sealed value too short")
	}
	nonce, ciphertext := sealed[:c.aead.NonceSize()], sealed[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate value: %w", err)
	}
	return plaintext, nil
}
