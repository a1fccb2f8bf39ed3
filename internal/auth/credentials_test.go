// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")

	store := NewStoreAt(path)
	require.False(t, store.IsAuthenticated(), "fresh store should not be authenticated")

	creds := Credentials{
		AccessToken:  "at-123",
		RefreshToken: "rt-456",
		Username:     "ops",
		Email:        "ops@example.com",
	}
	require.NoError(t, store.Save(creds))
	require.Equal(t, "at-123", store.Token())

	// A second store sees the persisted credentials.
	reloaded := NewStoreAt(path)
	require.True(t, reloaded.IsAuthenticated())
	require.Equal(t, "ops", reloaded.Username())
}

func TestStore_FilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "credentials.json")

	store := NewStoreAt(path)
	require.NoError(t, store.Save(Credentials{AccessToken: "tok"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm(), "credentials file mode")

	dirInfo, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0700), dirInfo.Mode().Perm(), "credentials dir mode")
}

func TestStore_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")

	store := NewStoreAt(path)
	require.NoError(t, store.Save(Credentials{AccessToken: "tok"}))
	require.NoError(t, store.Clear())
	require.False(t, store.IsAuthenticated(), "store should be signed out after Clear")

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err), "credentials file should be gone after Clear")

	// Clearing an already-clear store is not an error.
	require.NoError(t, store.Clear())
}

func TestStore_CorruptFileMeansSignedOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	store := NewStoreAt(path)
	require.False(t, store.IsAuthenticated(), "corrupt credentials should read as signed out")
}

// TestStore_ConcurrentAccess exercises the store from many goroutines. The
// transport reads Token on every request while the UI may save or clear.
func TestStore_ConcurrentAccess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	store := NewStoreAt(path)
	require.NoError(t, store.Save(Credentials{AccessToken: "tok", Username: "ops"}))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Token()
			_ = store.IsAuthenticated()
			_ = store.Username()
		}()
	}
	wg.Wait()
}
