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
	"path/filepath"
	"testing"
	"time"

	"github.com/jeremyhahn/go-notevault/internal/note"
	"github.com/jeremyhahn/go-notevault/pkg/passkey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	store, err := Open(filepath.Join(t.TempDir(), "notevault.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func createTestUser(t *testing.T, store *Store, id string) *passkey.User {
	user := &passkey.User{
		ID:          id,
		DisplayName: "User " + id,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func testCredential(userID, name string, externalID []byte) *passkey.Credential {
	return &passkey.Credential{
		ID:         "cred-" + userID + "-" + name,
		ExternalID: externalID,
		Name:       name,
		UserID:     userID,
		PublicKey:  []byte{0x01, 0x02, 0x03},
		Transports: []string{"internal", "hybrid"},
		Counter:    0,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestOpen(t *testing.T) {
	_, err := Open("")
	require.Error(t, err)

	store := openTestStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	createTestUser(t, store, "u1")

	got, err := store.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "User u1", got.DisplayName)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = store.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, passkey.ErrUserNotFound)
}

func TestCredentials(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	createTestUser(t, store, "u1")

	cred := testCredential("u1", "laptop", []byte{0xAA, 0x01})
	require.NoError(t, store.CreateCredential(ctx, cred))

	// Same name for the same user violates UNIQUE(name, user_id).
	dup := testCredential("u1", "laptop", []byte{0xBB, 0x02})
	assert.ErrorIs(t, store.CreateCredential(ctx, dup), passkey.ErrCredentialExists)

	got, err := store.GetCredentialByExternalID(ctx, []byte{0xAA, 0x01})
	require.NoError(t, err)
	assert.Equal(t, "laptop", got.Name)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, []string{"internal", "hybrid"}, got.Transports)
	assert.Equal(t, uint32(0), got.Counter)

	_, err = store.GetCredentialByExternalID(ctx, []byte{0xEE})
	assert.ErrorIs(t, err, passkey.ErrCredentialNotFound)

	require.NoError(t, store.CreateCredential(ctx, testCredential("u1", "phone", []byte{0xCC, 0x03})))
	creds, err := store.GetUserCredentials(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, creds, 2)
}

func TestUpdateCounter(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	createTestUser(t, store, "u1")

	require.NoError(t, store.CreateCredential(ctx, testCredential("u1", "laptop", []byte{0xAA})))

	require.NoError(t, store.UpdateCounter(ctx, []byte{0xAA}, 7))

	// Equal and lower counters are replays; the row is untouched.
	assert.ErrorIs(t, store.UpdateCounter(ctx, []byte{0xAA}, 7), passkey.ErrReplayDetected)
	assert.ErrorIs(t, store.UpdateCounter(ctx, []byte{0xAA}, 3), passkey.ErrReplayDetected)

	got, err := store.GetCredentialByExternalID(ctx, []byte{0xAA})
	require.NoError(t, err)
	assert.Equal(t, uint32(7), got.Counter)

	assert.ErrorIs(t, store.UpdateCounter(ctx, []byte{0xEE}, 1), passkey.ErrCredentialNotFound)
}

func testCategoryRow(userID, name string) *note.Category {
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

func testNoteRow(userID, categoryID, title string) *note.Note {
	now := time.Now().UTC()
	return &note.Note{
		ID:         "note-" + userID + "-" + title,
		Title:      title,
		Content:    "content",
		CategoryID: categoryID,
		UserID:     userID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestCategoriesAndNotes(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	createTestUser(t, store, "u1")
	createTestUser(t, store, "u2")

	cat := testCategoryRow("u1", "Work")
	require.NoError(t, store.CreateCategory(ctx, cat))
	assert.ErrorIs(t, store.CreateCategory(ctx, testCategoryRow("u1", "Work")), note.ErrCategoryExists)
	require.NoError(t, store.CreateCategory(ctx, testCategoryRow("u2", "Work")))

	cats, err := store.ListCategories(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, cats, 1)

	n := testNoteRow("u1", cat.ID, "Plan")
	require.NoError(t, store.CreateNote(ctx, n))
	assert.ErrorIs(t, store.CreateNote(ctx, testNoteRow("u1", cat.ID, "Plan")), note.ErrNoteExists)

	// A note cannot land in another user's category.
	assert.ErrorIs(t, store.CreateNote(ctx, testNoteRow("u2", cat.ID, "Steal")), note.ErrCategoryNotFound)

	// Ownership scoping on reads and deletes.
	_, err = store.GetNote(ctx, "u2", n.ID)
	assert.ErrorIs(t, err, note.ErrNoteNotFound)

	got, err := store.GetNote(ctx, "u1", n.ID)
	require.NoError(t, err)
	assert.Equal(t, "Plan", got.Title)

	got.Content = "revised"
	got.UpdatedAt = time.Now().UTC()
	require.NoError(t, store.UpdateNote(ctx, got))
	got, err = store.GetNote(ctx, "u1", n.ID)
	require.NoError(t, err)
	assert.Equal(t, "revised", got.Content)

	assert.ErrorIs(t, store.DeleteNote(ctx, "u2", n.ID), note.ErrNoteNotFound)
	require.NoError(t, store.DeleteNote(ctx, "u1", n.ID))
	_, err = store.GetNote(ctx, "u1", n.ID)
	assert.ErrorIs(t, err, note.ErrNoteNotFound)
}

func TestQuickNoteColumns(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	createTestUser(t, store, "u1")

	qn, err := store.GetQuickNote(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, qn.Content)
	assert.Nil(t, qn.UpdatedAt)

	require.NoError(t, store.SetQuickNote(ctx, "u1", "remember"))
	qn, err = store.GetQuickNote(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "remember", qn.Content)
	require.NotNil(t, qn.UpdatedAt)

	_, err = store.GetQuickNote(ctx, "ghost")
	assert.ErrorIs(t, err, passkey.ErrUserNotFound)
	assert.ErrorIs(t, store.SetQuickNote(ctx, "ghost", "x"), passkey.ErrUserNotFound)
}
