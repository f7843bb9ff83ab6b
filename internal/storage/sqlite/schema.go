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

// schema is the bootstrap DDL. Timestamps are stored as millisecond
// unix integers. Transports are stored as a comma-joined list.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	display_name TEXT NOT NULL,
	quick_note_content TEXT NOT NULL DEFAULT '',
	quick_note_updated_at INTEGER,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS passkeys (
	id TEXT PRIMARY KEY,
	external_id BLOB NOT NULL UNIQUE,
	name TEXT NOT NULL,
	user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	public_key BLOB NOT NULL,
	transports TEXT NOT NULL DEFAULT '',
	counter INTEGER NOT NULL DEFAULT 0,
	aaguid BLOB,
	backup_eligible INTEGER NOT NULL DEFAULT 0,
	backup_state INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	UNIQUE(name, user_id)
);

CREATE INDEX IF NOT EXISTS idx_passkeys_user_id ON passkeys(user_id);

CREATE TABLE IF NOT EXISTS note_categories (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	icon_name TEXT NOT NULL DEFAULT '',
	user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	UNIQUE(name, user_id)
);

CREATE INDEX IF NOT EXISTS idx_note_categories_user_id ON note_categories(user_id);

CREATE TABLE IF NOT EXISTS notes (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	content TEXT NOT NULL DEFAULT '',
	category_id TEXT NOT NULL REFERENCES note_categories(id) ON DELETE CASCADE,
	user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	UNIQUE(title, category_id)
);

CREATE INDEX IF NOT EXISTS idx_notes_user_id ON notes(user_id);
`
