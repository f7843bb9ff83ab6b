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

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jeremyhahn/go-notevault/internal/note"
	"github.com/jeremyhahn/go-notevault/pkg/passkey"
)

// CreateCategory stores a new category.
func (s *Store) CreateCategory(ctx context.Context, cat *note.Category) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO note_categories (id, name, icon_name, user_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		cat.ID, cat.Name, cat.IconName, cat.UserID,
		toMillis(cat.CreatedAt), toMillis(cat.UpdatedAt))
	if isUniqueViolation(err) {
		return note.ErrCategoryExists
	}
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// ListCategories returns the user's categories ordered by name.
func (s *Store) ListCategories(ctx context.Context, userID string) ([]*note.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, name, icon_name, user_id, created_at, updated_at
FROM note_categories WHERE user_id = ? ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []*note.Category
	for rows.Next() {
		cat, err := scanCategory(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// GetCategory retrieves one of the user's categories.
func (s *Store) GetCategory(ctx context.Context, userID, id string) (*note.Category, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, name, icon_name, user_id, created_at, updated_at
FROM note_categories WHERE id = ? AND user_id = ?`, id, userID)

	cat, err := scanCategory(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, note.ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return cat, nil
}

// CreateNote stores a new note after verifying the category belongs to
// the user.
func (s *Store) CreateNote(ctx context.Context, n *note.Note) error {
	if _, err := s.GetCategory(ctx, n.UserID, n.CategoryID); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO notes (id, title, content, category_id, user_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.Title, n.Content, n.CategoryID, n.UserID,
		toMillis(n.CreatedAt), toMillis(n.UpdatedAt))
	if isUniqueViolation(err) {
		return note.ErrNoteExists
	}
	if isForeignKeyViolation(err) {
		return note.ErrCategoryNotFound
	}
	if err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	return nil
}

// GetNote retrieves one of the user's notes.
func (s *Store) GetNote(ctx context.Context, userID, id string) (*note.Note, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, title, content, category_id, user_id, created_at, updated_at
FROM notes WHERE id = ? AND user_id = ?`, id, userID)

	n, err := scanNote(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, note.ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return n, nil
}

// UpdateNote rewrites a note's title, content, and category.
func (s *Store) UpdateNote(ctx context.Context, n *note.Note) error {
	if _, err := s.GetCategory(ctx, n.UserID, n.CategoryID); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
UPDATE notes SET title = ?, content = ?, category_id = ?, updated_at = ?
WHERE id = ? AND user_id = ?`,
		n.Title, n.Content, n.CategoryID, toMillis(n.UpdatedAt), n.ID, n.UserID)
	if isUniqueViolation(err) {
		return note.ErrNoteExists
	}
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	if affected == 0 {
		return note.ErrNoteNotFound
	}
	return nil
}

// DeleteNote removes one of the user's notes.
func (s *Store) DeleteNote(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `
DELETE FROM notes WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if affected == 0 {
		return note.ErrNoteNotFound
	}
	return nil
}

// ListNotes returns all the user's notes ordered by title.
func (s *Store) ListNotes(ctx context.Context, userID string) ([]*note.Note, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, title, content, category_id, user_id, created_at, updated_at
FROM notes WHERE user_id = ? ORDER BY title`, userID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []*note.Note
	for rows.Next() {
		n, err := scanNote(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

// GetQuickNote returns the user's quick note from the user row.
func (s *Store) GetQuickNote(ctx context.Context, userID string) (*note.QuickNote, error) {
	var qn note.QuickNote
	var updatedAt sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
SELECT quick_note_content, quick_note_updated_at FROM users WHERE id = ?`, userID).
		Scan(&qn.Content, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, passkey.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get quick note: %w", err)
	}
	if updatedAt.Valid {
		value := fromMillis(updatedAt.Int64)
		qn.UpdatedAt = &value
	}
	return &qn, nil
}

// SetQuickNote replaces the user's quick note content.
func (s *Store) SetQuickNote(ctx context.Context, userID, content string) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE users SET quick_note_content = ?, quick_note_updated_at = ? WHERE id = ?`,
		content, toMillis(timeNow()), userID)
	if err != nil {
		return fmt.Errorf("set quick note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set quick note: %w", err)
	}
	if affected == 0 {
		return passkey.ErrUserNotFound
	}
	return nil
}

func scanCategory(scan func(dest ...any) error) (*note.Category, error) {
	var cat note.Category
	var createdAt, updatedAt int64
	if err := scan(&cat.ID, &cat.Name, &cat.IconName, &cat.UserID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	cat.CreatedAt = fromMillis(createdAt)
	cat.UpdatedAt = fromMillis(updatedAt)
	return &cat, nil
}

func scanNote(scan func(dest ...any) error) (*note.Note, error) {
	var n note.Note
	var createdAt, updatedAt int64
	if err := scan(&n.ID, &n.Title, &n.Content, &n.CategoryID, &n.UserID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	n.CreatedAt = fromMillis(createdAt)
	n.UpdatedAt = fromMillis(updatedAt)
	return &n, nil
}
