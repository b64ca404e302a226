package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/threadlens/threadlens/internal/config"
)

func TestBuildDSN(t *testing.T) {
	dsn, err := buildDSN(config.StoreConfig{Path: ":memory:"})
	require.NoError(t, err)
	require.Equal(t, ":memory:", dsn)

	dir := t.TempDir()
	path := filepath.Join(dir, "data", "threadlens.db")
	dsn, err = buildDSN(config.StoreConfig{Path: path})
	require.NoError(t, err)
	require.Equal(t, "file:"+path, dsn)

	_, err = buildDSN(config.StoreConfig{})
	require.Error(t, err)
}

func TestBuildDSNRemoteURL(t *testing.T) {
	dsn, err := buildDSN(config.StoreConfig{
		URL:       "libsql://db.example.turso.io",
		AuthToken: "secret",
	})
	require.NoError(t, err)
	require.Contains(t, dsn, "authToken=secret")

	// An explicit token in the URL wins.
	dsn, err = buildDSN(config.StoreConfig{
		URL:       "libsql://db.example.turso.io?authToken=inline",
		AuthToken: "secret",
	})
	require.NoError(t, err)
	require.Contains(t, dsn, "authToken=inline")
	require.NotContains(t, dsn, "secret")
}
