package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "epicsync.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen_addr = ":9090"
redcap_url = "https://redcap.example.edu"
batch_size = 25
hook_secret = "s3cret"

[[project]]
id = "17"
api_token = "abc123"
enabled = true
force_update = true

[[project]]
id = "22"
api_token = "def456"
enabled = false
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "https://redcap.example.edu", cfg.RedcapURL)
	assert.Equal(t, 25, cfg.BatchSize)

	require.Len(t, cfg.Projects, 2)
	assert.Equal(t, "17", cfg.Projects[0].ID)
	assert.True(t, cfg.Projects[0].ForceUpdate)
	assert.False(t, cfg.Projects[1].Enabled)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("EPICSYNC_ADDR", ":7070")
	t.Setenv("EPICSYNC_REDCAP_URL", "https://redcap.override.edu")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.ListenAddr)
	assert.Equal(t, "https://redcap.override.edu", cfg.RedcapURL)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/does/not/exist.toml")
	assert.Error(t, err)
}
