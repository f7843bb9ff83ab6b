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

// Package memory implements the storage.Store interface with
// mutex-guarded maps. It backs tests and the dev-mode server.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jeremyhahn/go-notevault/internal/note"
	"github.com/jeremyhahn/go-notevault/internal/storage"
	"github.com/jeremyhahn/go-notevault/pkg/passkey"
)

// Store is an in-memory implementation of storage.Store.
type Store struct {
	*passkey.MemoryUserStore
	*passkey.MemoryCredentialStore

	mu         sync.RWMutex
	notes      map[string]*note.Note
	categories map[string]*note.Category
	quickNotes map[string]*note.QuickNote
}

var _ storage.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		MemoryUserStore:       passkey.NewMemoryUserStore(),
		MemoryCredentialStore: passkey.NewMemoryCredentialStore(),
		notes:                 make(map[string]*note.Note),
		categories:            make(map[string]*note.Category),
		quickNotes:            make(map[string]*note.QuickNote),
	}
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// Close releases nothing.
func (s *Store) Close() error {
	return nil
}

// CreateCategory stores a new category.
func (s *Store) CreateCategory(ctx context.Context, cat *note.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.categories {
		if existing.UserID == cat.UserID && existing.Name == cat.Name {
			return note.ErrCategoryExists
		}
	}
	c := *cat
	s.categories[cat.ID] = &c
	return nil
}

// ListCategories returns the user's categories ordered by name.
func (s *Store) ListCategories(ctx context.Context, userID string) ([]*note.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var cats []*note.Category
	for _, cat := range s.categories {
		if cat.UserID == userID {
			c := *cat
			cats = append(cats, &c)
		}
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
	return cats, nil
}

// GetCategory retrieves one of the user's categories.
func (s *Store) GetCategory(ctx context.Context, userID, id string) (*note.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cat, ok := s.categories[id]
	if !ok || cat.UserID != userID {
		return nil, note.ErrCategoryNotFound
	}
	c := *cat
	return &c, nil
}

// CreateNote stores a new note.
func (s *Store) CreateNote(ctx context.Context, n *note.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cat, ok := s.categories[n.CategoryID]
	if !ok || cat.UserID != n.UserID {
		return note.ErrCategoryNotFound
	}
	for _, existing := range s.notes {
		if existing.CategoryID == n.CategoryID && existing.Title == n.Title {
			return note.ErrNoteExists
		}
	}
	c := *n
	s.notes[n.ID] = &c
	return nil
}

// GetNote retrieves one of the user's notes.
func (s *Store) GetNote(ctx context.Context, userID, id string) (*note.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notes[id]
	if !ok || n.UserID != userID {
		return nil, note.ErrNoteNotFound
	}
	c := *n
	return &c, nil
}

// UpdateNote rewrites a note's title, content, and category.
func (s *Store) UpdateNote(ctx context.Context, n *note.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.notes[n.ID]
	if !ok || existing.UserID != n.UserID {
		return note.ErrNoteNotFound
	}
	cat, ok := s.categories[n.CategoryID]
	if !ok || cat.UserID != n.UserID {
		return note.ErrCategoryNotFound
	}
	for _, other := range s.notes {
		if other.ID != n.ID && other.CategoryID == n.CategoryID && other.Title == n.Title {
			return note.ErrNoteExists
		}
	}
	c := *n
	s.notes[n.ID] = &c
	return nil
}

// DeleteNote removes one of the user's notes.
func (s *Store) DeleteNote(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notes[id]
	if !ok || n.UserID != userID {
		return note.ErrNoteNotFound
	}
	delete(s.notes, id)
	return nil
}

// ListNotes returns all the user's notes ordered by title.
func (s *Store) ListNotes(ctx context.Context, userID string) ([]*note.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var notes []*note.Note
	for _, n := range s.notes {
		if n.UserID == userID {
			c := *n
			notes = append(notes, &c)
		}
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].Title < notes[j].Title })
	return notes, nil
}

// GetQuickNote returns the user's quick note.
func (s *Store) GetQuickNote(ctx context.Context, userID string) (*note.QuickNote, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	qn, ok := s.quickNotes[userID]
	if !ok {
		return &note.QuickNote{}, nil
	}
	c := *qn
	return &c, nil
}

// SetQuickNote replaces the user's quick note content.
func (s *Store) SetQuickNote(ctx context.Context, userID, content string) error {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	s.quickNotes[userID] = &note.QuickNote{Content: content, UpdatedAt: &now}
	return nil
}
