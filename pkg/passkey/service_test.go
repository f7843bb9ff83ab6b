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
	"context"
	"crypto/rand"
	"testing"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testRPID   = "example.com"
	testOrigin = "https://example.com"
)

func validTestConfig() *Config {
	return &Config{
		RPID:          testRPID,
		RPDisplayName: "Example",
		RPOrigins:     []string{testOrigin},
	}
}

func validTestParams(t *testing.T) ServiceParams {
	key := make([]byte, KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)

	codec, err := NewCodec(key)
	require.NoError(t, err)

	return ServiceParams{
		Config:          validTestConfig(),
		Codec:           codec,
		UserStore:       NewMemoryUserStore(),
		CredentialStore: NewMemoryCredentialStore(),
	}
}

func newTestService(t *testing.T) *Service {
	svc, err := NewService(validTestParams(t))
	require.NoError(t, err)
	return svc
}

func TestNewService(t *testing.T) {
	valid := validTestParams(t)

	tests := []struct {
		name    string
		params  ServiceParams
		wantErr string
	}{
		{
			name:    "nil config",
			params:  ServiceParams{},
			wantErr: "config is required",
		},
		{
			name: "nil codec",
			params: ServiceParams{
				Config: validTestConfig(),
			},
			wantErr: "codec is required",
		},
		{
			name: "nil user store",
			params: ServiceParams{
				Config: validTestConfig(),
				Codec:  valid.Codec,
			},
			wantErr: "user store is required",
		},
		{
			name: "nil credential store",
			params: ServiceParams{
				Config:    validTestConfig(),
				Codec:     valid.Codec,
				UserStore: NewMemoryUserStore(),
			},
			wantErr: "credential store is required",
		},
		{
			name: "invalid config",
			params: ServiceParams{
				Config:          &Config{}, // missing required fields
				Codec:           valid.Codec,
				UserStore:       NewMemoryUserStore(),
				CredentialStore: NewMemoryCredentialStore(),
			},
			wantErr: "invalid config",
		},
		{
			name:    "valid params",
			params:  valid,
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewService(tt.params)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, svc)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, svc)
				assert.NotNil(t, svc.Config())
			}
		})
	}
}

func TestBeginRegistration_Validation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.BeginRegistration(ctx, "", "laptop")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "display name is required")

	_, _, err = svc.BeginRegistration(ctx, "Alice", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "passkey name is required")
}

func TestBeginRegistration_Options(t *testing.T) {
	svc := newTestService(t)

	options, challenge, err := svc.BeginRegistration(context.Background(), "Alice", "laptop")
	require.NoError(t, err)
	require.NotNil(t, options)
	require.NotEmpty(t, challenge)

	assert.Equal(t, testRPID, options.Response.RelyingParty.ID)
	assert.Equal(t, "Alice", options.Response.User.DisplayName)
	assert.NotEmpty(t, options.Response.Challenge)
	assert.Equal(t, protocol.ResidentKeyRequirementRequired, options.Response.AuthenticatorSelection.ResidentKey)
}

// registerMockUser runs a full registration ceremony with the mock
// authenticator and returns the user and authenticator.
func registerMockUser(t *testing.T, svc *Service, displayName, passkeyName string) (*User, *MockAuthenticator) {
	t.Helper()
	ctx := context.Background()

	options, challenge, err := svc.BeginRegistration(ctx, displayName, passkeyName)
	require.NoError(t, err)

	auth, err := NewMockAuthenticator(testRPID)
	require.NoError(t, err)

	response, err := auth.CreateAttestationResponse(options.Response.Challenge, testOrigin)
	require.NoError(t, err)

	user, err := svc.FinishRegistration(ctx, challenge, response)
	require.NoError(t, err)
	require.NotNil(t, user)
	return user, auth
}

// loginMockUser runs a full login ceremony and returns the session
// token or error.
func loginMockUser(t *testing.T, svc *Service, user *User, auth *MockAuthenticator) (string, error) {
	t.Helper()
	ctx := context.Background()

	options, challenge, err := svc.BeginLogin(ctx)
	require.NoError(t, err)

	response, err := auth.CreateAssertionResponse(options.Response.Challenge, []byte(user.ID), testOrigin)
	require.NoError(t, err)

	token, _, err := svc.FinishLogin(ctx, challenge, response)
	return token, err
}

func TestRegistration_FullCeremony(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, auth := registerMockUser(t, svc, "Alice", "laptop")

	// Account and credential were persisted.
	stored, err := svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", stored.DisplayName)

	creds, err := svc.GetCredentials(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, creds, 1)
	assert.Equal(t, "laptop", creds[0].Name)
	assert.NotEmpty(t, creds[0].PublicKey)

	// Registration issues no session; login does.
	token, err := loginMockUser(t, svc, user, auth)
	require.NoError(t, err)
	userID, err := svc.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestRegistration_AccountCreatedAtBegin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, challenge, err := svc.BeginRegistration(ctx, "Bob", "phone")
	require.NoError(t, err)
	require.NotEmpty(t, challenge)

	// The account row exists as soon as the ceremony starts, with no
	// credential attached. Abandoning the ceremony leaves it inert.
	env, err := svc.codec.OpenChallenge(challenge, purposeRegistration)
	require.NoError(t, err)

	user, err := svc.GetUser(ctx, env.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Bob", user.DisplayName)

	creds, err := svc.GetCredentials(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, creds)
}

func TestRegistration_BadChallenge(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	options, _, err := svc.BeginRegistration(ctx, "Alice", "laptop")
	require.NoError(t, err)

	auth, err := NewMockAuthenticator(testRPID)
	require.NoError(t, err)
	response, err := auth.CreateAttestationResponse(options.Response.Challenge, testOrigin)
	require.NoError(t, err)

	_, err = svc.FinishRegistration(ctx, "garbage-challenge", response)
	assert.ErrorIs(t, err, ErrChallengeInvalid)
}

func TestRegistration_LoginChallengeRejected(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	options, _, err := svc.BeginRegistration(ctx, "Alice", "laptop")
	require.NoError(t, err)

	// A challenge minted for login must not complete a registration.
	_, loginChallenge, err := svc.BeginLogin(ctx)
	require.NoError(t, err)

	auth, err := NewMockAuthenticator(testRPID)
	require.NoError(t, err)
	response, err := auth.CreateAttestationResponse(options.Response.Challenge, testOrigin)
	require.NoError(t, err)

	_, err = svc.FinishRegistration(ctx, loginChallenge, response)
	assert.ErrorIs(t, err, ErrChallengeInvalid)
}

func TestRegistration_WrongCeremonyChallenge(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, challenge, err := svc.BeginRegistration(ctx, "Alice", "laptop")
	require.NoError(t, err)

	// An attestation over a different challenge fails verification.
	auth, err := NewMockAuthenticator(testRPID)
	require.NoError(t, err)
	response, err := auth.CreateAttestationResponse([]byte("some-other-challenge-value------"), testOrigin)
	require.NoError(t, err)

	_, err = svc.FinishRegistration(ctx, challenge, response)
	assert.ErrorIs(t, err, ErrRegistrationFailed)
}

func TestLogin_FullCeremony(t *testing.T) {
	svc := newTestService(t)

	user, auth := registerMockUser(t, svc, "Alice", "laptop")

	token, err := loginMockUser(t, svc, user, auth)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := svc.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestLogin_UnknownCredential(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	options, challenge, err := svc.BeginLogin(ctx)
	require.NoError(t, err)

	// An authenticator the service has never seen.
	auth, err := NewMockAuthenticator(testRPID)
	require.NoError(t, err)
	response, err := auth.CreateAssertionResponse(options.Response.Challenge, []byte("ghost-user"), testOrigin)
	require.NoError(t, err)

	_, _, err = svc.FinishLogin(ctx, challenge, response)
	assert.ErrorIs(t, err, ErrCredentialNotFound)
}

func TestLogin_BadChallenge(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, auth := registerMockUser(t, svc, "Alice", "laptop")

	options, _, err := svc.BeginLogin(ctx)
	require.NoError(t, err)
	response, err := auth.CreateAssertionResponse(options.Response.Challenge, []byte(user.ID), testOrigin)
	require.NoError(t, err)

	_, _, err = svc.FinishLogin(ctx, "not-a-challenge", response)
	assert.ErrorIs(t, err, ErrChallengeInvalid)
}

func TestLogin_CounterAdvances(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, auth := registerMockUser(t, svc, "Alice", "laptop")

	for i := 0; i < 3; i++ {
		_, err := loginMockUser(t, svc, user, auth)
		require.NoError(t, err)
	}

	creds, err := svc.GetCredentials(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, creds, 1)
	assert.Equal(t, uint32(3), creds[0].Counter)
}

func TestLogin_ReplayDetected(t *testing.T) {
	svc := newTestService(t)

	user, auth := registerMockUser(t, svc, "Alice", "laptop")

	_, err := loginMockUser(t, svc, user, auth)
	require.NoError(t, err)

	// Rewind the authenticator so the next assertion repeats the
	// accepted counter value.
	auth.SetSignCount(0)
	_, err = loginMockUser(t, svc, user, auth)
	assert.ErrorIs(t, err, ErrReplayDetected)
}

func TestLogin_StaleCounterRejected(t *testing.T) {
	svc := newTestService(t)

	user, auth := registerMockUser(t, svc, "Alice", "laptop")

	auth.SetSignCount(9)
	_, err := loginMockUser(t, svc, user, auth)
	require.NoError(t, err)

	// A counter below the stored high-water mark is a replay even
	// when it is above zero.
	auth.SetSignCount(4)
	_, err = loginMockUser(t, svc, user, auth)
	assert.ErrorIs(t, err, ErrReplayDetected)
}

func TestLogin_MismatchedChallengeUnauthorized(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, auth := registerMockUser(t, svc, "Alice", "laptop")

	// Sign over one ceremony's challenge but submit the other's sealed
	// state. The credential resolves, verification fails, and the
	// outcome must stay a typed authentication failure.
	optionsA, _, err := svc.BeginLogin(ctx)
	require.NoError(t, err)
	_, challengeB, err := svc.BeginLogin(ctx)
	require.NoError(t, err)

	response, err := auth.CreateAssertionResponse(optionsA.Response.Challenge, []byte(user.ID), testOrigin)
	require.NoError(t, err)

	_, _, err = svc.FinishLogin(ctx, challengeB, response)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.True(t, IsUnauthorized(err))
}

func TestAuthenticate(t *testing.T) {
	svc := newTestService(t)

	user, auth := registerMockUser(t, svc, "Alice", "laptop")
	token, err := loginMockUser(t, svc, user, auth)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantID  string
		wantErr error
	}{
		{name: "valid token", token: token, wantID: user.ID},
		{name: "empty token", token: "", wantErr: ErrUnauthorized},
		{name: "garbage token", token: "zzzz not a token", wantErr: ErrUnauthorized},
		{name: "truncated token", token: token[:len(token)/2], wantErr: ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID, err := svc.Authenticate(tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, userID)
			}
		})
	}
}

func TestAuthenticate_ChallengeNotASession(t *testing.T) {
	svc := newTestService(t)

	// A registration challenge value must never authenticate.
	_, challenge, err := svc.BeginRegistration(context.Background(), "Alice", "laptop")
	require.NoError(t, err)

	_, err = svc.Authenticate(challenge)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
