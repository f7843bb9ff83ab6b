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
	"strings"

	"github.com/jeremyhahn/go-notevault/pkg/passkey"
)

// CreateUser persists a new account.
func (s *Store) CreateUser(ctx context.Context, user *passkey.User) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO users (id, display_name, created_at) VALUES (?, ?, ?)`,
		user.ID, user.DisplayName, toMillis(user.CreatedAt))
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUser retrieves an account by identifier.
func (s *Store) GetUser(ctx context.Context, id string) (*passkey.User, error) {
	var user passkey.User
	var createdAt int64
	err := s.db.QueryRowContext(ctx, `
SELECT id, display_name, created_at FROM users WHERE id = ?`, id).
		Scan(&user.ID, &user.DisplayName, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, passkey.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	user.CreatedAt = fromMillis(createdAt)
	return &user, nil
}

// CreateCredential stores a new passkey row.
func (s *Store) CreateCredential(ctx context.Context, cred *passkey.Credential) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO passkeys (
	id, external_id, name, user_id, public_key, transports,
	counter, aaguid, backup_eligible, backup_state, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cred.ID,
		cred.ExternalID,
		cred.Name,
		cred.UserID,
		cred.PublicKey,
		strings.Join(cred.Transports, ","),
		cred.Counter,
		cred.AAGUID,
		boolToInt(cred.BackupEligible),
		boolToInt(cred.BackupState),
		toMillis(cred.CreatedAt),
	)
	if isUniqueViolation(err) {
		return passkey.ErrCredentialExists
	}
	if err != nil {
		return fmt.Errorf("create credential: %w", err)
	}
	return nil
}

// GetCredentialByExternalID retrieves a passkey by the identifier the
// authenticator minted.
func (s *Store) GetCredentialByExternalID(ctx context.Context, externalID []byte) (*passkey.Credential, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, external_id, name, user_id, public_key, transports,
	counter, aaguid, backup_eligible, backup_state, created_at
FROM passkeys WHERE external_id = ?`, externalID)

	cred, err := scanCredential(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, passkey.ErrCredentialNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get credential: %w", err)
	}
	return cred, nil
}

// GetUserCredentials retrieves all passkeys owned by a user.
func (s *Store) GetUserCredentials(ctx context.Context, userID string) ([]*passkey.Credential, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, external_id, name, user_id, public_key, transports,
	counter, aaguid, backup_eligible, backup_state, created_at
FROM passkeys WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	var creds []*passkey.Credential
	for rows.Next() {
		cred, err := scanCredential(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		creds = append(creds, cred)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	return creds, nil
}

// UpdateCounter advances the signature counter only when the new value
// is strictly greater. The guard lives in the WHERE clause, so two
// racing logins cannot both claim the same value.
func (s *Store) UpdateCounter(ctx context.Context, externalID []byte, newCounter uint32) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE passkeys SET counter = ? WHERE external_id = ? AND counter < ?`,
		newCounter, externalID, newCounter)
	if err != nil {
		return fmt.Errorf("update counter: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update counter: %w", err)
	}
	if affected == 1 {
		return nil
	}

	// Nothing advanced: distinguish a missing credential from a replay.
	var exists int
	err = s.db.QueryRowContext(ctx, `
SELECT 1 FROM passkeys WHERE external_id = ?`, externalID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return passkey.ErrCredentialNotFound
	}
	if err != nil {
		return fmt.Errorf("update counter: %w", err)
	}
	return passkey.ErrReplayDetected
}

func scanCredential(scan func(dest ...any) error) (*passkey.Credential, error) {
	var cred passkey.Credential
	var transports string
	var backupEligible, backupState int
	var createdAt int64
	if err := scan(
		&cred.ID,
		&cred.ExternalID,
		&cred.Name,
		&cred.UserID,
		&cred.PublicKey,
		&transports,
		&cred.Counter,
		&cred.AAGUID,
		&backupEligible,
		&backupState,
		&createdAt,
	); err != nil {
		return nil, err
	}
	if transports != "" {
		cred.Transports = strings.Split(transports, ",")
	}
	cred.BackupEligible = backupEligible != 0
	cred.BackupState = backupState != 0
	cred.CreatedAt = fromMillis(createdAt)
	return &cred, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
