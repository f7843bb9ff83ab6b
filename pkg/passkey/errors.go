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
	"errors"
	"fmt"
)

// Sentinel errors for passkey operations. Every ceremony failure is
// reported as one of these so the HTTP layer can map them to status
// codes by exhaustive matching rather than type probing.
var (
	// ErrChallengeInvalid is returned when a challenge cookie cannot be
	// decrypted, fails authentication, has the wrong purpose, does not
	// parse, or has expired.
	ErrChallengeInvalid = errors.New("challenge invalid")

	// ErrRegistrationFailed is returned when attestation verification
	// fails during the registration ceremony.
	ErrRegistrationFailed = errors.New("registration failed")

	// ErrCredentialNotFound is returned when no credential matches the
	// external credential identifier presented in an assertion.
	ErrCredentialNotFound = errors.New("credential not found")

	// ErrCredentialExists is returned when a user attempts to register a
	// second passkey with a name they already use.
	ErrCredentialExists = errors.New("credential already exists")

	// ErrReplayDetected is returned when an assertion carries a signature
	// counter that is not strictly greater than the stored counter. A
	// non-increasing counter indicates a cloned authenticator or a
	// replayed assertion; it is treated as a security event.
	ErrReplayDetected = errors.New("replay detected")

	// ErrSessionInvalid is returned when a session token cannot be
	// decrypted, fails authentication, does not parse, or has expired.
	ErrSessionInvalid = errors.New("session invalid")

	// ErrUnauthorized is returned by the auth gate for any missing,
	// invalid, or expired session token. The reasons are deliberately
	// indistinguishable to the caller.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUserNotFound is returned when a user cannot be found.
	ErrUserNotFound = errors.New("user not found")

	// ErrNotConfigured is returned when the service is not properly configured.
	ErrNotConfigured = errors.New("passkey service not configured")
)

// Error wraps an error with the operation that produced it.
type Error struct {
	Op  string // Operation that failed
	Err error  // Underlying error
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewError creates a new Error with the given operation and error.
func NewError(op string, err error) error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// WrapError wraps an error with an operation name if it's not nil.
func WrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(op, err)
}

// IsChallengeInvalid returns true if the error indicates an unusable challenge cookie.
func IsChallengeInvalid(err error) bool {
	return errors.Is(err, ErrChallengeInvalid)
}

// IsCredentialNotFound returns true if the error indicates a credential was not found.
func IsCredentialNotFound(err error) bool {
	return errors.Is(err, ErrCredentialNotFound)
}

// IsReplayDetected returns true if the error indicates a counter replay.
func IsReplayDetected(err error) bool {
	return errors.Is(err, ErrReplayDetected)
}

// IsUnauthorized returns true if the error indicates a rejected session token.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsUserNotFound returns true if the error indicates a user was not found.
func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}
