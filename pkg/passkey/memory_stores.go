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

package passkey

import (
	"context"
	"encoding/hex"
	"sync"
)

// MemoryUserStore is an in-memory implementation of UserStore.
// This is intended for development and testing only.
type MemoryUserStore struct {
	mu   sync.RWMutex
	byID map[string]*User
}

// NewMemoryUserStore creates a new in-memory user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		byID: make(map[string]*User),
	}
}

// CreateUser persists a new account.
func (s *MemoryUserStore) CreateUser(ctx context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := *user
	s.byID[user.ID] = &u
	return nil
}

// GetUser retrieves an account by identifier.
func (s *MemoryUserStore) GetUser(ctx context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := *user
	return &u, nil
}

// MemoryCredentialStore is an in-memory implementation of CredentialStore.
// This is intended for development and testing only.
type MemoryCredentialStore struct {
	mu           sync.RWMutex
	byExternalID map[string]*Credential
	byUser       map[string][]string
}

// NewMemoryCredentialStore creates a new in-memory credential store.
func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{
		byExternalID: make(map[string]*Credential),
		byUser:       make(map[string][]string),
	}
}

// CreateCredential stores a new credential.
func (s *MemoryCredentialStore) CreateCredential(ctx context.Context, cred *Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range s.byUser[cred.UserID] {
		if existing := s.byExternalID[key]; existing != nil && existing.Name == cred.Name {
			return ErrCredentialExists
		}
	}

	key := hex.EncodeToString(cred.ExternalID)
	c := *cred
	s.byExternalID[key] = &c
	s.byUser[cred.UserID] = append(s.byUser[cred.UserID], key)
	return nil
}

// GetCredentialByExternalID retrieves a credential by authenticator ID.
func (s *MemoryCredentialStore) GetCredentialByExternalID(ctx context.Context, externalID []byte) (*Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, ok := s.byExternalID[hex.EncodeToString(externalID)]
	if !ok {
		return nil, ErrCredentialNotFound
	}
	c := *cred
	return &c, nil
}

// GetUserCredentials retrieves all credentials owned by a user.
func (s *MemoryCredentialStore) GetUserCredentials(ctx context.Context, userID string) ([]*Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := s.byUser[userID]
	creds := make([]*Credential, 0, len(keys))
	for _, key := range keys {
		if cred, ok := s.byExternalID[key]; ok {
			c := *cred
			creds = append(creds, &c)
		}
	}
	return creds, nil
}

// UpdateCounter advances a credential's signature counter under the
// store lock. The compare and the write happen in one critical
// section, so two racing logins cannot both advance to the same value.
func (s *MemoryCredentialStore) UpdateCounter(ctx context.Context, externalID []byte, newCounter uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred, ok := s.byExternalID[hex.EncodeToString(externalID)]
	if !ok {
		return ErrCredentialNotFound
	}
	if newCounter <= cred.Counter {
		return ErrReplayDetected
	}
	cred.Counter = newCounter
	return nil
}
