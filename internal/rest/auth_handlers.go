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

package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-webauthn/webauthn/protocol"

	"github.com/jeremyhahn/go-notevault/pkg/metrics"
	"github.com/jeremyhahn/go-notevault/pkg/passkey"
)

const (
	// challengeCookieName carries sealed ceremony state between the
	// request and verify endpoints.
	challengeCookieName = "challengeSession"

	// sessionCookieName carries the sealed session token.
	sessionCookieName = "token"

	verifyRegistrationPath = "/auth/verify-registration"
	verifyLoginPath        = "/auth/verify-login"
	apiPath                = "/api"

	// defaultPasskeyName labels a credential when the client does not
	// name it.
	defaultPasskeyName = "Primary"
)

// setChallengeCookie scopes the sealed ceremony state to the single verify
// endpoint that may consume it.
func (s *Server) setChallengeCookie(w http.ResponseWriter, value, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:     challengeCookieName,
		Value:    value,
		Path:     path,
		MaxAge:   int(s.passkeys.Config().ChallengeTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.config.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearChallengeCookie removes a consumed challenge cookie.
func (s *Server) clearChallengeCookie(w http.ResponseWriter, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:     challengeCookieName,
		Value:    "",
		Path:     path,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.config.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

// setSessionCookie installs the session token on the /api scope.
func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     apiPath,
		MaxAge:   int(s.passkeys.Config().SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.config.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearSessionCookie removes the session token cookie.
func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     apiPath,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.config.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

// handleRegisterRequest handles POST /auth/register-request.
//
// Request body:
//
//	{
//	    "displayName": "Alice",
//	    "passkeyName": "MacBook Touch ID" // optional
//	}
//
// Response: WebAuthn PublicKeyCredentialCreationOptions. The sealed
// ceremony state is set as the challengeSession cookie. The account
// row is created here, before the ceremony completes.
func (s *Server) handleRegisterRequest(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorWithMessage(w, ErrInvalidRequest, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.DisplayName == "" {
		s.writeErrorWithMessage(w, ErrInvalidRequest, "displayName is required", http.StatusBadRequest)
		return
	}
	if req.PasskeyName == "" {
		req.PasskeyName = defaultPasskeyName
	}

	options, challenge, err := s.passkeys.BeginRegistration(r.Context(), req.DisplayName, req.PasskeyName)
	if err != nil {
		s.handleError(w, err)
		return
	}

	s.setChallengeCookie(w, challenge, verifyRegistrationPath)
	s.writeJSON(w, options, http.StatusOK)
}

// handleVerifyRegistration handles POST /auth/verify-registration.
//
// Cookie: challengeSession (from register-request)
// Request body: attestation response from the authenticator
// Response: VerifyResponse. No session is issued; the client runs the
// login ceremony to authenticate.
func (s *Server) handleVerifyRegistration(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	cookie, err := r.Cookie(challengeCookieName)
	if err != nil {
		metrics.RecordCeremony(metrics.CeremonyRegistration, metrics.StatusError, time.Since(start).Seconds())
		s.handleError(w, passkey.ErrChallengeInvalid)
		return
	}

	response, err := protocol.ParseCredentialCreationResponseBody(r.Body)
	if err != nil {
		metrics.RecordCeremony(metrics.CeremonyRegistration, metrics.StatusError, time.Since(start).Seconds())
		s.writeErrorWithMessage(w, ErrInvalidRequest, "invalid attestation response", http.StatusBadRequest)
		return
	}

	user, err := s.passkeys.FinishRegistration(r.Context(), cookie.Value, response)
	if err != nil {
		metrics.RecordCeremony(metrics.CeremonyRegistration, metrics.StatusError, time.Since(start).Seconds())
		s.handleError(w, err)
		return
	}

	metrics.RecordCeremony(metrics.CeremonyRegistration, metrics.StatusSuccess, time.Since(start).Seconds())

	s.clearChallengeCookie(w, verifyRegistrationPath)
	s.writeJSON(w, VerifyResponse{UserID: user.ID, DisplayName: user.DisplayName}, http.StatusOK)
}

// handleLoginRequest handles GET /auth/login-request.
//
// Uses the discoverable credentials flow; no user is identified until the
// authenticator presents a credential. Response: WebAuthn
// PublicKeyCredentialRequestOptions plus the challengeSession cookie.
func (s *Server) handleLoginRequest(w http.ResponseWriter, r *http.Request) {
	options, challenge, err := s.passkeys.BeginLogin(r.Context())
	if err != nil {
		s.handleError(w, err)
		return
	}

	s.setChallengeCookie(w, challenge, verifyLoginPath)
	s.writeJSON(w, options, http.StatusOK)
}

// handleVerifyLogin handles POST /auth/verify-login.
//
// Cookie: challengeSession (from login-request)
// Request body: assertion response from the authenticator
// Response: VerifyResponse; the session token is set as the token cookie.
func (s *Server) handleVerifyLogin(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	cookie, err := r.Cookie(challengeCookieName)
	if err != nil {
		metrics.RecordCeremony(metrics.CeremonyLogin, metrics.StatusError, time.Since(start).Seconds())
		s.handleError(w, passkey.ErrChallengeInvalid)
		return
	}

	response, err := protocol.ParseCredentialRequestResponseBody(r.Body)
	if err != nil {
		metrics.RecordCeremony(metrics.CeremonyLogin, metrics.StatusError, time.Since(start).Seconds())
		s.writeErrorWithMessage(w, ErrInvalidRequest, "invalid assertion response", http.StatusBadRequest)
		return
	}

	token, user, err := s.passkeys.FinishLogin(r.Context(), cookie.Value, response)
	if err != nil {
		if passkey.IsReplayDetected(err) {
			metrics.RecordReplayDetected()
		}
		metrics.RecordCeremony(metrics.CeremonyLogin, metrics.StatusError, time.Since(start).Seconds())
		s.handleError(w, err)
		return
	}

	metrics.RecordCeremony(metrics.CeremonyLogin, metrics.StatusSuccess, time.Since(start).Seconds())
	metrics.RecordSessionIssued()

	s.clearChallengeCookie(w, verifyLoginPath)
	s.setSessionCookie(w, token)
	s.writeJSON(w, VerifyResponse{UserID: user.ID, DisplayName: user.DisplayName}, http.StatusOK)
}

// handleLogout handles GET /auth/logout. Logout is purely client-side
// state removal; sealed tokens remain valid until they expire.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearSessionCookie(w)
	s.writeJSON(w, LogoutResponse{LoggedOut: true}, http.StatusOK)
}
