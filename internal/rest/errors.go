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
	"errors"
	"log/slog"
	"net/http"

	"github.com/jeremyhahn/go-notevault/internal/note"
	"github.com/jeremyhahn/go-notevault/pkg/passkey"
)

// Common errors
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternalError  = errors.New("internal server error")
	ErrUnauthorized   = errors.New("unauthorized")
)

// writeError writes an error response to the client.
func (s *Server) writeError(w http.ResponseWriter, err error, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := ErrorResponse{
		Error: err.Error(),
		Code:  statusCode,
	}

	if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
		s.logger.Error("Failed to encode error response", slog.Any("error", encErr))
	}
}

// writeErrorWithMessage writes an error response with a custom message.
func (s *Server) writeErrorWithMessage(w http.ResponseWriter, err error, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := ErrorResponse{
		Error:   err.Error(),
		Message: message,
		Code:    statusCode,
	}

	if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
		s.logger.Error("Failed to encode error response", slog.Any("error", encErr))
	}
}

// mapErrorToStatusCode maps service errors to HTTP status codes.
// Authentication failures all collapse to 401 so a caller cannot
// distinguish an unknown credential from a stale counter.
func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, passkey.ErrUnauthorized),
		errors.Is(err, passkey.ErrSessionInvalid),
		errors.Is(err, passkey.ErrReplayDetected),
		errors.Is(err, passkey.ErrCredentialNotFound),
		errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, passkey.ErrChallengeInvalid),
		errors.Is(err, passkey.ErrRegistrationFailed),
		errors.Is(err, note.ErrValidation),
		errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, passkey.ErrCredentialExists),
		errors.Is(err, note.ErrNoteExists),
		errors.Is(err, note.ErrCategoryExists):
		return http.StatusConflict
	case errors.Is(err, note.ErrNoteNotFound),
		errors.Is(err, note.ErrCategoryNotFound),
		errors.Is(err, passkey.ErrUserNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// handleError maps the error to a status code and writes the error
// response. Internal errors are not echoed to the client.
func (s *Server) handleError(w http.ResponseWriter, err error) {
	statusCode := mapErrorToStatusCode(err)
	if statusCode == http.StatusInternalServerError {
		s.writeError(w, ErrInternalError, statusCode)
		return
	}
	s.writeError(w, err, statusCode)
}

// writeJSON writes a JSON response with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode JSON response", slog.Any("error", err))
	}
}
