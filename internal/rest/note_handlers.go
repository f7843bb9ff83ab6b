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

	"github.com/go-chi/chi/v5"
)

// handleMe handles GET /api/me and returns the authenticated user.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.passkeys.GetUser(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.writeJSON(w, user, http.StatusOK)
}

// handleGetQuickNote handles GET /api/me/quick-note.
func (s *Server) handleGetQuickNote(w http.ResponseWriter, r *http.Request) {
	quickNote, err := s.notes.QuickNote(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.writeJSON(w, quickNote, http.StatusOK)
}

// handlePutQuickNote handles PUT /api/me/quick-note and replaces the
// scratch pad content.
func (s *Server) handlePutQuickNote(w http.ResponseWriter, r *http.Request) {
	var req QuickNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorWithMessage(w, ErrInvalidRequest, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.notes.SetQuickNote(r.Context(), UserIDFromContext(r.Context()), req.Content); err != nil {
		s.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePromoteQuickNote handles POST /api/me/promote-quick-note. The
// scratch pad content becomes a titled note and the scratch pad is cleared.
func (s *Server) handlePromoteQuickNote(w http.ResponseWriter, r *http.Request) {
	var req PromoteQuickNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorWithMessage(w, ErrInvalidRequest, "invalid request body", http.StatusBadRequest)
		return
	}

	created, err := s.notes.PromoteQuickNote(r.Context(), UserIDFromContext(r.Context()), req.Title, req.CategoryID)
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.writeJSON(w, created, http.StatusCreated)
}

// handleCreateNote handles POST /api/note/create.
func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var req NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorWithMessage(w, ErrInvalidRequest, "invalid request body", http.StatusBadRequest)
		return
	}

	created, err := s.notes.CreateNote(r.Context(), UserIDFromContext(r.Context()), req.Title, req.Content, req.CategoryID)
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.writeJSON(w, created, http.StatusCreated)
}

// handleTree handles GET /api/note/tree and returns every category with
// its notes nested under it.
func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	tree, err := s.notes.Tree(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.writeJSON(w, tree, http.StatusOK)
}

// handleCategories handles GET /api/note/categories.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.notes.Categories(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.writeJSON(w, categories, http.StatusOK)
}

// handleCreateCategory handles POST /api/note/create-category.
func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorWithMessage(w, ErrInvalidRequest, "invalid request body", http.StatusBadRequest)
		return
	}

	created, err := s.notes.CreateCategory(r.Context(), UserIDFromContext(r.Context()), req.Name, req.IconName)
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.writeJSON(w, created, http.StatusCreated)
}

// handleGetNote handles GET /api/note/{noteID}.
func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	noteID := chi.URLParam(r, "noteID")

	found, err := s.notes.GetNote(r.Context(), UserIDFromContext(r.Context()), noteID)
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.writeJSON(w, found, http.StatusOK)
}

// handleUpdateNote handles PUT /api/note/{noteID}.
func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	noteID := chi.URLParam(r, "noteID")

	var req NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorWithMessage(w, ErrInvalidRequest, "invalid request body", http.StatusBadRequest)
		return
	}

	updated, err := s.notes.UpdateNote(r.Context(), UserIDFromContext(r.Context()), noteID, req.Title, req.Content, req.CategoryID)
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.writeJSON(w, updated, http.StatusOK)
}

// handleDeleteNote handles DELETE /api/note/{noteID}.
func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	noteID := chi.URLParam(r, "noteID")

	if err := s.notes.DeleteNote(r.Context(), UserIDFromContext(r.Context()), noteID); err != nil {
		s.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
