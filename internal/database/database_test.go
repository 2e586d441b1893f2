package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	store, err := Open(Config{Path: filepath.Join(dir, "test.db")})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestMigrationsAreIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	store, err := Open(Config{Path: path})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening must not re-run named migrations
	store, err = Open(Config{Path: path})
	require.NoError(t, err)
	defer store.Close()

	var count int
	err = store.DB().QueryRow("SELECT COUNT(*) FROM migrations").Scan(&count)
	require.NoError(t, err)
	require.Equal(t, len(migrations), count)
}

func TestDefaultSettingsSeeded(t *testing.T) {
	store := tempStore(t)
	settings := NewSettingsRepo(store)

	ttl, err := settings.GetInt(SettingTokenTTLSeconds)
	require.NoError(t, err)
	require.Equal(t, 120, ttl)

	limit, err := settings.GetInt(SettingCheckoutLimit)
	require.NoError(t, err)
	require.Equal(t, 3, limit)
}
