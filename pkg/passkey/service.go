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
	"fmt"
	"log/slog"
	"time"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"
)

// Service provides passkey registration, login, and session operations.
// All ceremony state lives in sealed values held by the client; the
// server persists only users and credentials.
type Service struct {
	webauthn   *webauthn.WebAuthn
	codec      *Codec
	config     *Config
	users      UserStore
	creds      CredentialStore
	logger     *slog.Logger
	configured bool
}

// ServiceParams contains dependencies for creating a passkey service.
type ServiceParams struct {
	// Config is the passkey configuration (required).
	Config *Config

	// Codec seals challenges and session tokens (required).
	Codec *Codec

	// UserStore is the user persistence layer (required).
	UserStore UserStore

	// CredentialStore is the credential persistence layer (required).
	CredentialStore CredentialStore

	// Logger receives security events. Defaults to slog.Default().
	Logger *slog.Logger
}

// NewService creates a new passkey service with the provided dependencies.
func NewService(params ServiceParams) (*Service, error) {
	if params.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if params.Codec == nil {
		return nil, fmt.Errorf("codec is required")
	}
	if params.UserStore == nil {
		return nil, fmt.Errorf("user store is required")
	}
	if params.CredentialStore == nil {
		return nil, fmt.Errorf("credential store is required")
	}

	// Set defaults and validate
	params.Config.SetDefaults()
	if err := params.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Create the go-webauthn instance
	wa, err := webauthn.New(params.Config.ToWebAuthnConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create webauthn instance: %w", err)
	}

	return &Service{
		webauthn:   wa,
		codec:      params.Codec,
		config:     params.Config,
		users:      params.UserStore,
		creds:      params.CredentialStore,
		logger:     logger,
		configured: true,
	}, nil
}

// BeginRegistration starts the registration ceremony for a new account.
// Returns the creation options for the client and a sealed challenge
// value. The account row is created here, before the ceremony
// completes; an abandoned ceremony leaves the row behind. A display
// name alone carries no credential, so the row is inert until a
// passkey is attached.
func (s *Service) BeginRegistration(ctx context.Context, displayName, passkeyName string) (*protocol.CredentialCreation, string, error) {
	if !s.configured {
		return nil, "", ErrNotConfigured
	}
	if displayName == "" {
		return nil, "", NewError("begin registration", fmt.Errorf("display name is required"))
	}
	if passkeyName == "" {
		return nil, "", NewError("begin registration", fmt.Errorf("passkey name is required"))
	}

	// The account identity becomes the WebAuthn user handle, so it is
	// fixed before the ceremony starts.
	user := &User{
		ID:          uuid.NewString(),
		DisplayName: displayName,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, "", WrapError("create user", err)
	}

	options, session, err := s.webauthn.BeginRegistration(&webauthnUser{user: user})
	if err != nil {
		return nil, "", WrapError("begin registration", err)
	}

	challenge, err := s.codec.IssueChallenge(purposeRegistration, session, user.ID, displayName, passkeyName, s.config.ChallengeTTL)
	if err != nil {
		return nil, "", WrapError("issue challenge", err)
	}

	return options, challenge, nil
}

// FinishRegistration completes the registration ceremony. On success
// the credential is persisted under the account created at begin and
// the user is returned. No session is issued; the client authenticates
// through the login ceremony.
func (s *Service) FinishRegistration(ctx context.Context, challenge string, response *protocol.ParsedCredentialCreationData) (*User, error) {
	if !s.configured {
		return nil, ErrNotConfigured
	}

	env, err := s.codec.OpenChallenge(challenge, purposeRegistration)
	if err != nil {
		return nil, WrapError("open challenge", err)
	}

	user, err := s.users.GetUser(ctx, env.UserID)
	if err != nil {
		return nil, WrapError("load pending account", err)
	}

	credential, err := s.webauthn.CreateCredential(&webauthnUser{user: user}, *env.Session, response)
	if err != nil {
		return nil, NewError("create credential", ErrRegistrationFailed)
	}

	cred := &Credential{
		ID:             uuid.NewString(),
		ExternalID:     credential.ID,
		Name:           env.PasskeyName,
		UserID:         user.ID,
		PublicKey:      credential.PublicKey,
		Counter:        credential.Authenticator.SignCount,
		AAGUID:         credential.Authenticator.AAGUID,
		BackupEligible: credential.Flags.BackupEligible,
		BackupState:    credential.Flags.BackupState,
		CreatedAt:      time.Now().UTC(),
	}
	for _, t := range credential.Transport {
		cred.Transports = append(cred.Transports, string(t))
	}

	if err := s.creds.CreateCredential(ctx, cred); err != nil {
		return nil, WrapError("save credential", err)
	}

	return user, nil
}

// BeginLogin starts the discoverable login ceremony. Returns the
// assertion options for the client and a sealed challenge value.
func (s *Service) BeginLogin(ctx context.Context) (*protocol.CredentialAssertion, string, error) {
	if !s.configured {
		return nil, "", ErrNotConfigured
	}

	options, session, err := s.webauthn.BeginDiscoverableLogin()
	if err != nil {
		return nil, "", WrapError("begin login", err)
	}

	challenge, err := s.codec.IssueChallenge(purposeLogin, session, "", "", "", s.config.ChallengeTTL)
	if err != nil {
		return nil, "", WrapError("issue challenge", err)
	}

	return options, challenge, nil
}

// FinishLogin completes the discoverable login ceremony. On success the
// credential's signature counter advances atomically and a session
// token is returned alongside the authenticated user.
func (s *Service) FinishLogin(ctx context.Context, challenge string, response *protocol.ParsedCredentialAssertionData) (string, *User, error) {
	if !s.configured {
		return "", nil, ErrNotConfigured
	}

	env, err := s.codec.OpenChallenge(challenge, purposeLogin)
	if err != nil {
		return "", nil, WrapError("open challenge", err)
	}

	var user *User
	var lookupErr error
	credential, err := s.webauthn.ValidateDiscoverableLogin(
		func(rawID, userHandle []byte) (webauthn.User, error) {
			cred, credErr := s.creds.GetCredentialByExternalID(ctx, rawID)
			if credErr != nil {
				lookupErr = credErr
				return nil, credErr
			}
			user, credErr = s.users.GetUser(ctx, cred.UserID)
			if credErr != nil {
				lookupErr = credErr
				return nil, credErr
			}
			return &webauthnUser{user: user, credentials: []*Credential{cred}}, nil
		},
		*env.Session,
		response,
	)
	if err != nil {
		switch {
		case IsCredentialNotFound(lookupErr) || IsUserNotFound(lookupErr):
			return "", nil, NewError("validate login", ErrCredentialNotFound)
		case lookupErr != nil:
			// Store failure, not a protocol outcome.
			return "", nil, WrapError("validate login", lookupErr)
		default:
			// Signature or challenge verification failed with the
			// credential found. A typed outcome, never a fault.
			return "", nil, NewError("validate login", ErrUnauthorized)
		}
	}

	// The library reports a non-advancing counter as a clone warning
	// instead of failing. Both that flag and the store's conditional
	// update enforce the strictly-greater rule.
	if credential.Authenticator.CloneWarning {
		s.logSecurityEvent(credential.ID, credential.Authenticator.SignCount)
		return "", nil, NewError("validate login", ErrReplayDetected)
	}
	if err := s.creds.UpdateCounter(ctx, credential.ID, credential.Authenticator.SignCount); err != nil {
		if IsReplayDetected(err) {
			s.logSecurityEvent(credential.ID, credential.Authenticator.SignCount)
		}
		return "", nil, WrapError("update counter", err)
	}

	token, err := s.codec.IssueSession(user.ID, s.config.SessionTTL)
	if err != nil {
		return "", nil, WrapError("issue session", err)
	}

	return token, user, nil
}

// Authenticate validates a session token and returns the user
// identifier it carries. Missing, malformed, tampered, and expired
// tokens are indistinguishable to the caller: all return
// ErrUnauthorized.
func (s *Service) Authenticate(token string) (string, error) {
	if !s.configured {
		return "", ErrNotConfigured
	}
	if token == "" {
		return "", ErrUnauthorized
	}
	userID, err := s.codec.OpenSession(token)
	if err != nil {
		return "", ErrUnauthorized
	}
	return userID, nil
}

// GetUser retrieves a user by identifier.
func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	if !s.configured {
		return nil, ErrNotConfigured
	}
	return s.users.GetUser(ctx, id)
}

// GetCredentials retrieves all credentials registered by a user.
func (s *Service) GetCredentials(ctx context.Context, userID string) ([]*Credential, error) {
	if !s.configured {
		return nil, ErrNotConfigured
	}
	return s.creds.GetUserCredentials(ctx, userID)
}

// Config returns the service configuration.
func (s *Service) Config() *Config {
	return s.config
}

func (s *Service) logSecurityEvent(credentialID []byte, signCount uint32) {
	s.logger.Warn("replay detected",
		slog.String("credential_id", fmt.Sprintf("%x", credentialID)),
		slog.Uint64("sign_count", uint64(signCount)))
}
