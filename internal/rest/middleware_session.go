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
	"context"
	"log/slog"
	"net/http"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

// userIDKey is the context key under which the session middleware stores
// the authenticated user ID.
const userIDKey contextKey = "user-id"

// withUserID stores the authenticated user ID in the context.
func withUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext retrieves the authenticated user ID from the context.
// Returns an empty string if the request is not authenticated.
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

// SessionMiddleware authenticates requests by resolving the token cookie
// to a user ID. Missing, malformed, and expired tokens are rejected
// identically with 401.
func (s *Server) SessionMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookieName)
			if err != nil {
				s.writeErrorWithMessage(w, ErrUnauthorized, "Unauthorized", http.StatusUnauthorized)
				return
			}

			userID, err := s.passkeys.Authenticate(cookie.Value)
			if err != nil {
				s.logger.Warn("Authentication failed",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("remote_addr", r.RemoteAddr))
				s.writeErrorWithMessage(w, ErrUnauthorized, "Unauthorized", http.StatusUnauthorized)
				return
			}

			r = r.WithContext(withUserID(r.Context(), userID))
			next.ServeHTTP(w, r)
		})
	}
}
