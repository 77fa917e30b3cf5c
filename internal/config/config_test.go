package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "medicines.dat", cfg.Store.DataFile)
	assert.Equal(t, "backups", cfg.Backup.Dir)
	assert.Equal(t, "Rs", cfg.Store.Currency)
	assert.Equal(t, "MEDICAL STORE", cfg.Store.Name)
	assert.True(t, cfg.Backup.AutoOnStart)
	assert.False(t, cfg.Otel.Enabled)
	assert.Equal(t, 8080, cfg.Application.Port)
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "medstore.yaml")
	content := []byte(`
store:
  data_file: /tmp/pharmacy.dat
  currency: USD
backup:
  dir: /tmp/pharmacy-backups
  schedule: "@daily"
  auto_on_start: false
application:
  port: 9090
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("MEDSTORE_STORE_NAME", "CITY PHARMACY")

	cfg, err := Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/pharmacy.dat", cfg.Store.DataFile)
	assert.Equal(t, "USD", cfg.Store.Currency)
	assert.Equal(t, "CITY PHARMACY", cfg.Store.Name)
	assert.Equal(t, "/tmp/pharmacy-backups", cfg.Backup.Dir)
	assert.Equal(t, "@daily", cfg.Backup.Schedule)
	assert.False(t, cfg.Backup.AutoOnStart)
	assert.Equal(t, 9090, cfg.Application.Port)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
