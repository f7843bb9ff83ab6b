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

package memory

import (
	"context"
	"testing"
	"time"

	"github.com/jeremyhahn/go-notevault/internal/note"
	"github.com/jeremyhahn/go-notevault/pkg/passkey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, userIDs ...string) *Store {
	store := New()
	ctx := context.Background()
	for _, id := range userIDs {
		require.NoError(t, store.CreateUser(ctx, &passkey.User{
			ID:          id,
			DisplayName: "User " + id,
			CreatedAt:   time.Now().UTC(),
		}))
	}
	return store
}

func testCategory(userID, name string) *note.Category {
	now := time.Now().UTC()
	return &note.Category{
		ID:        "cat-" + userID + "-" + name,
		Name:      name,
		IconName:  "folder",
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func testNote(userID, categoryID, title string) *note.Note {
	now := time.Now().UTC()
	return &note.Note{
		ID:         "note-" + userID + "-" + title,
		Title:      title,
		Content:    "content of " + title,
		CategoryID: categoryID,
		UserID:     userID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestCategories(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, "u1", "u2")

	require.NoError(t, store.CreateCategory(ctx, testCategory("u1", "Work")))
	require.NoError(t, store.CreateCategory(ctx, testCategory("u1", "Home")))

	// Duplicate name for the same user is refused; fine for another.
	assert.ErrorIs(t, store.CreateCategory(ctx, testCategory("u1", "Work")), note.ErrCategoryExists)
	require.NoError(t, store.CreateCategory(ctx, testCategory("u2", "Work")))

	cats, err := store.ListCategories(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Home", cats[0].Name)
	assert.Equal(t, "Work", cats[1].Name)

	// Ownership scoping.
	_, err = store.GetCategory(ctx, "u2", cats[0].ID)
	assert.ErrorIs(t, err, note.ErrCategoryNotFound)
	got, err := store.GetCategory(ctx, "u1", cats[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Home", got.Name)
}

func TestNotes(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, "u1", "u2")

	cat := testCategory("u1", "Work")
	require.NoError(t, store.CreateCategory(ctx, cat))

	n := testNote("u1", cat.ID, "Plan")
	require.NoError(t, store.CreateNote(ctx, n))

	// Duplicate title within the category is refused.
	assert.ErrorIs(t, store.CreateNote(ctx, testNote("u1", cat.ID, "Plan")), note.ErrNoteExists)

	// A note cannot land in someone else's category.
	assert.ErrorIs(t, store.CreateNote(ctx, testNote("u2", cat.ID, "Steal")), note.ErrCategoryNotFound)

	// Ownership scoping on reads.
	_, err := store.GetNote(ctx, "u2", n.ID)
	assert.ErrorIs(t, err, note.ErrNoteNotFound)
	got, err := store.GetNote(ctx, "u1", n.ID)
	require.NoError(t, err)
	assert.Equal(t, "Plan", got.Title)

	// Update.
	got.Content = "updated"
	require.NoError(t, store.UpdateNote(ctx, got))
	got, err = store.GetNote(ctx, "u1", n.ID)
	require.NoError(t, err)
	assert.Equal(t, "updated", got.Content)

	// Delete is scoped too.
	assert.ErrorIs(t, store.DeleteNote(ctx, "u2", n.ID), note.ErrNoteNotFound)
	require.NoError(t, store.DeleteNote(ctx, "u1", n.ID))
	_, err = store.GetNote(ctx, "u1", n.ID)
	assert.ErrorIs(t, err, note.ErrNoteNotFound)
}

func TestQuickNote(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, "u1")

	// Empty before first write.
	qn, err := store.GetQuickNote(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, qn.Content)
	assert.Nil(t, qn.UpdatedAt)

	require.NoError(t, store.SetQuickNote(ctx, "u1", "remember the milk"))
	qn, err = store.GetQuickNote(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "remember the milk", qn.Content)
	require.NotNil(t, qn.UpdatedAt)

	// Unknown user.
	_, err = store.GetQuickNote(ctx, "ghost")
	assert.ErrorIs(t, err, passkey.ErrUserNotFound)
	assert.ErrorIs(t, store.SetQuickNote(ctx, "ghost", "x"), passkey.ErrUserNotFound)
}
