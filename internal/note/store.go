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

package note

import "context"

// Store persists notes, categories, and the per-user quick note. All
// reads and writes are scoped to a user; a row owned by someone else
// behaves as if it does not exist.
type Store interface {
	// CreateCategory stores a new category. Returns ErrCategoryExists
	// when the user already has a category with the same name.
	CreateCategory(ctx context.Context, cat *Category) error

	// ListCategories returns the user's categories ordered by name.
	ListCategories(ctx context.Context, userID string) ([]*Category, error)

	// GetCategory retrieves one of the user's categories. Returns
	// ErrCategoryNotFound if absent or owned by another user.
	GetCategory(ctx context.Context, userID, id string) (*Category, error)

	// CreateNote stores a new note. Returns ErrNoteExists when the
	// title collides within the category, ErrCategoryNotFound when the
	// category is absent or owned by another user.
	CreateNote(ctx context.Context, n *Note) error

	// GetNote retrieves one of the user's notes.
	GetNote(ctx context.Context, userID, id string) (*Note, error)

	// UpdateNote rewrites a note's title, content, and category.
	UpdateNote(ctx context.Context, n *Note) error

	// DeleteNote removes one of the user's notes.
	DeleteNote(ctx context.Context, userID, id string) error

	// ListNotes returns all the user's notes ordered by title.
	ListNotes(ctx context.Context, userID string) ([]*Note, error)

	// GetQuickNote returns the user's quick note.
	GetQuickNote(ctx context.Context, userID string) (*QuickNote, error)

	// SetQuickNote replaces the user's quick note content.
	SetQuickNote(ctx context.Context, userID, content string) error
}
