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

// RegisterRequest is the body of POST /auth/register-request.
type RegisterRequest struct {
	DisplayName string `json:"displayName"`
	PasskeyName string `json:"passkeyName,omitempty"`
}

// VerifyResponse is returned after a successful ceremony. The session
// token itself travels in the token cookie, never in the body.
type VerifyResponse struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

// LogoutResponse is returned by GET /auth/logout.
type LogoutResponse struct {
	LoggedOut bool `json:"loggedOut"`
}

// QuickNoteRequest is the body of PUT /api/me/quick-note.
type QuickNoteRequest struct {
	Content string `json:"content"`
}

// PromoteQuickNoteRequest is the body of POST /api/me/promote-quick-note.
type PromoteQuickNoteRequest struct {
	Title      string `json:"title"`
	CategoryID string `json:"categoryId"`
}

// NoteRequest is the body of POST /api/note/create and PUT /api/note/{noteID}.
type NoteRequest struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	CategoryID string `json:"categoryId"`
}

// CategoryRequest is the body of POST /api/note/create-category.
type CategoryRequest struct {
	Name     string `json:"name"`
	IconName string `json:"iconName"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the JSON shape of all error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}
