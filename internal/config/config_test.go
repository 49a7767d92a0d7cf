package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "sqlite", cfg.Storage.Driver)
	require.Equal(t, "herdcore.db", cfg.Storage.Path)
	require.Equal(t, "fs", cfg.Blob.Driver)
	require.Equal(t, "./blobdata", cfg.Blob.Root)
	require.Equal(t, "info", cfg.Log.Level)
	require.False(t, cfg.Log.JSON)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "herdcore.yaml")
	contents := `
storage:
  driver: postgres
  dsn: postgres://db.internal/herd
log:
  level: debug
  json: true
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "postgres", cfg.Storage.Driver)
	require.Equal(t, "postgres://db.internal/herd", cfg.Storage.DSN)
	require.Equal(t, "debug", cfg.Log.Level)
	require.True(t, cfg.Log.JSON)
	// Unset keys keep their defaults.
	require.Equal(t, "fs", cfg.Blob.Driver)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HERDCORE_STORAGE_DRIVER", "memory")
	t.Setenv("HERDCORE_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "memory", cfg.Storage.Driver)
	require.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
