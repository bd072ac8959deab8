package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func TestLoadBaseConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.json"), `{
		"apiurl": "https://example.leading2lean.com/api/1.0/",
		"apikey": "secret",
		"verbose": true,
		"logdirectory": "/var/log/export",
		"csvdirectory": "/var/spool/export"
	}`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "https://example.leading2lean.com/api/1.0/", cfg.APIURL)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "/var/log/export", cfg.LogDirectory)
	assert.Equal(t, "/var/spool/export", cfg.CSVDirectory)
	assert.Empty(t, cfg.ExportFormat)
}

func TestLoadDevOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.json"), `{
		"apiurl": "https://prod.leading2lean.com/api/1.0/",
		"apikey": "prod-key"
	}`)
	writeFile(t, filepath.Join(dir, "config-dev.json"), `{
		"apiurl": "https://sandbox.leading2lean.com/api/1.0/"
	}`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "https://sandbox.leading2lean.com/api/1.0/", cfg.APIURL, "dev file wins")
	assert.Equal(t, "prod-key", cfg.APIKey, "unset dev keys keep the base value")
}

func TestLoadDevOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config-dev.json"), `{"apikey": "dev-key"}`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "dev-key", cfg.APIKey)
}

func TestLoadSearchesParentDirectory(t *testing.T) {
	parent := t.TempDir()
	child := filepath.Join(parent, "ChecklistAnswers")
	require.NoError(t, os.Mkdir(child, 0o755))
	writeFile(t, filepath.Join(parent, "config.json"), `{"apikey": "parent-key"}`)

	cfg, err := Load(child)
	require.NoError(t, err)
	assert.Equal(t, "parent-key", cfg.APIKey)
}

func TestLoadMissingConfigFails(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config.json")
}

func TestLoadAcceptsJSON5(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.json"), `{
		// development server
		apiurl: "https://sandbox.leading2lean.com/api/1.0/",
		apikey: "secret",
	}`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.APIKey)
}
