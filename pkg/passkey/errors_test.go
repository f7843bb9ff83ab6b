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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Wrapping(t *testing.T) {
	err := NewError("finish login", ErrReplayDetected)

	assert.Equal(t, "finish login: replay detected", err.Error())
	assert.ErrorIs(t, err, ErrReplayDetected)
	assert.True(t, IsReplayDetected(err))

	var opErr *Error
	assert.True(t, errors.As(err, &opErr))
	assert.Equal(t, "finish login", opErr.Op)
}

func TestError_NoOp(t *testing.T) {
	err := &Error{Err: ErrSessionInvalid}
	assert.Equal(t, "session invalid", err.Error())
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError("op", nil))

	wrapped := WrapError("op", fmt.Errorf("boom"))
	assert.EqualError(t, wrapped, "op: boom")
}

func TestErrorPredicates(t *testing.T) {
	assert.True(t, IsChallengeInvalid(WrapError("open", ErrChallengeInvalid)))
	assert.True(t, IsCredentialNotFound(WrapError("get", ErrCredentialNotFound)))
	assert.True(t, IsUnauthorized(ErrUnauthorized))
	assert.True(t, IsUserNotFound(WrapError("get", ErrUserNotFound)))

	assert.False(t, IsReplayDetected(ErrSessionInvalid))
	assert.False(t, IsChallengeInvalid(nil))
}
