// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth persists login credentials on disk.
//
// Tokens live in ~/.opsdeck/credentials.json with 0600 permissions.
// The store is the single TokenSource for the HTTP transport; clearing it
// signs the user out for every subsequent request.
package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/opsdeck/opsdeck-tui/internal/util"
)

const credentialsFile = "credentials.json"

// Credentials is the persisted token pair plus account identity.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Username     string `json:"username,omitempty"`
	Email        string `json:"email,omitempty"`
}

// Store loads and saves credentials. Safe for concurrent use; the transport
// reads the token from whatever goroutine runs the request.
type Store struct {
	mu    sync.RWMutex
	path  string
	creds Credentials
}

// NewStore creates a store rooted in the default config directory and loads
// any existing credentials. A missing or unreadable file means signed out,
// not an error.
func NewStore() (*Store, error) {
	dir, err := configDir()
	if err != nil {
		return nil, err
	}
	return NewStoreAt(filepath.Join(dir, credentialsFile)), nil
}

// NewStoreAt creates a store backed by an explicit file path. Used by tests.
func NewStoreAt(path string) *Store {
	s := &Store{path: path}
	s.load()
	return s
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	// Corrupt credentials are treated as absent; the user logs in again.
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return
	}
	s.creds = creds
}

// Save persists credentials and makes them the active token.
func (s *Store) Save(creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(s.path, data, 0600, 0700); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	s.creds = creds
	return nil
}

// Clear removes the credentials file and forgets the in-memory token.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds = Credentials{}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	return nil
}

// Token returns the current access token, or "" when signed out.
// Implements api.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.AccessToken
}

// Username returns the signed-in account name, or "".
func (s *Store) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.Username
}

// IsAuthenticated reports whether an access token is present. It says
// nothing about whether the server still accepts it.
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// configDir returns the opsdeck configuration directory path.
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".opsdeck"), nil
}
