package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.ServerURL)
	assert.Equal(t, 120*time.Second, cfg.RequestTimeout.Duration())
	assert.Equal(t, 30*time.Second, cfg.Polling.LoadedHubs.Duration())
	assert.Equal(t, 60*time.Second, cfg.Polling.Health.Duration())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NotEmpty(t, cfg.DataDir)
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.ServerURL)
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `server_url: http://hubs.internal:9000
request_timeout: 45s
polling:
  loaded_hubs: 10s
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://hubs.internal:9000", cfg.ServerURL)
	assert.Equal(t, 45*time.Second, cfg.RequestTimeout.Duration())
	assert.Equal(t, 10*time.Second, cfg.Polling.LoadedHubs.Duration())
	// Absent fields keep their defaults.
	assert.Equal(t, 60*time.Second, cfg.Polling.Health.Duration())
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\tnot yaml"), 0644))
	_, err := Load(path)
	require.Error(t, err)
}
