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
	"crypto/rand"
	"encoding/base64"
	"testing"
	"time"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T) *Codec {
	key := make([]byte, KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)

	codec, err := NewCodec(key)
	require.NoError(t, err)
	return codec
}

func testSessionData() *webauthn.SessionData {
	return &webauthn.SessionData{
		Challenge:        "dGVzdC1jaGFsbGVuZ2U",
		UserID:           []byte("user-1"),
		Expires:          time.Now().Add(time.Minute),
		UserVerification: protocol.VerificationPreferred,
	}
}

func TestNewCodec(t *testing.T) {
	tests := []struct {
		name    string
		keyLen  int
		wantErr bool
	}{
		{name: "valid 32-byte key", keyLen: 32, wantErr: false},
		{name: "short key", keyLen: 16, wantErr: true},
		{name: "long key", keyLen: 64, wantErr: true},
		{name: "empty key", keyLen: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := make([]byte, tt.keyLen)
			codec, err := NewCodec(key)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, codec)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, codec)
			}
		})
	}
}

func TestCodec_ChallengeRoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	value, err := codec.IssueChallenge(purposeRegistration, testSessionData(), "user-1", "Alice", "laptop", time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, value)

	env, err := codec.OpenChallenge(value, purposeRegistration)
	require.NoError(t, err)
	assert.Equal(t, "user-1", env.UserID)
	assert.Equal(t, "Alice", env.DisplayName)
	assert.Equal(t, "laptop", env.PasskeyName)
	assert.Equal(t, "dGVzdC1jaGFsbGVuZ2U", env.Session.Challenge)
}

func TestCodec_ChallengeWrongPurpose(t *testing.T) {
	codec := newTestCodec(t)

	value, err := codec.IssueChallenge(purposeLogin, testSessionData(), "", "", "", time.Minute)
	require.NoError(t, err)

	// A login challenge must not open as a registration challenge.
	_, err = codec.OpenChallenge(value, purposeRegistration)
	assert.ErrorIs(t, err, ErrChallengeInvalid)
}

func TestCodec_ChallengeExpiry(t *testing.T) {
	codec := newTestCodec(t)

	value, err := codec.IssueChallenge(purposeLogin, testSessionData(), "", "", "", time.Minute)
	require.NoError(t, err)

	// Still valid just inside the window.
	codec.now = func() time.Time { return time.Now().Add(59 * time.Second) }
	_, err = codec.OpenChallenge(value, purposeLogin)
	assert.NoError(t, err)

	// Rejected once past it.
	codec.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = codec.OpenChallenge(value, purposeLogin)
	assert.ErrorIs(t, err, ErrChallengeInvalid)
}

func TestCodec_ChallengeTamper(t *testing.T) {
	codec := newTestCodec(t)

	value, err := codec.IssueChallenge(purposeRegistration, testSessionData(), "user-1", "Alice", "laptop", time.Minute)
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(value)
	require.NoError(t, err)

	// Flip one bit anywhere in nonce or ciphertext.
	raw[len(raw)/2] ^= 0x01
	tampered := base64.RawURLEncoding.EncodeToString(raw)

	_, err = codec.OpenChallenge(tampered, purposeRegistration)
	assert.ErrorIs(t, err, ErrChallengeInvalid)
}

func TestCodec_ChallengeGarbage(t *testing.T) {
	codec := newTestCodec(t)

	for _, value := range []string{"", "not base64 !!!", "c2hvcnQ", base64.RawURLEncoding.EncodeToString(make([]byte, 64))} {
		_, err := codec.OpenChallenge(value, purposeLogin)
		assert.ErrorIs(t, err, ErrChallengeInvalid)
	}
}

func TestCodec_ChallengeWrongKey(t *testing.T) {
	codec := newTestCodec(t)
	other := newTestCodec(t)

	value, err := codec.IssueChallenge(purposeLogin, testSessionData(), "", "", "", time.Minute)
	require.NoError(t, err)

	_, err = other.OpenChallenge(value, purposeLogin)
	assert.ErrorIs(t, err, ErrChallengeInvalid)
}

func TestCodec_SessionRoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	token, err := codec.IssueSession("user-42", 30*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := codec.OpenSession(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)
}

func TestCodec_SessionOpaque(t *testing.T) {
	codec := newTestCodec(t)

	token, err := codec.IssueSession("user-42", 30*time.Minute)
	require.NoError(t, err)

	// The token must not leak its contents to anyone without the key.
	raw, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "user-42")
}

func TestCodec_SessionExpiry(t *testing.T) {
	codec := newTestCodec(t)

	token, err := codec.IssueSession("user-42", 30*time.Minute)
	require.NoError(t, err)

	codec.now = func() time.Time { return time.Now().Add(31 * time.Minute) }
	_, err = codec.OpenSession(token)
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestCodec_SessionTamper(t *testing.T) {
	codec := newTestCodec(t)

	token, err := codec.IssueSession("user-42", 30*time.Minute)
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0x80
	tampered := base64.RawURLEncoding.EncodeToString(raw)

	_, err = codec.OpenSession(tampered)
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestCodec_SessionNotChallenge(t *testing.T) {
	codec := newTestCodec(t)

	// A session token must not open as a challenge and vice versa.
	token, err := codec.IssueSession("user-42", 30*time.Minute)
	require.NoError(t, err)
	_, err = codec.OpenChallenge(token, purposeLogin)
	assert.ErrorIs(t, err, ErrChallengeInvalid)

	// Registration challenges carry a userId, so this is the case that
	// matters.
	value, err := codec.IssueChallenge(purposeRegistration, testSessionData(), "user-1", "Alice", "laptop", time.Minute)
	require.NoError(t, err)
	_, err = codec.OpenSession(value)
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestCodec_NoncesUnique(t *testing.T) {
	codec := newTestCodec(t)

	a, err := codec.IssueSession("user-42", time.Minute)
	require.NoError(t, err)
	b, err := codec.IssueSession("user-42", time.Minute)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
