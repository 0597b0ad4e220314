package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logger:
  verbosity: debug
gpu:
  powerPreference: low-power
  maxBatchSize: 32
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Verbosity)
	assert.Equal(t, "low-power", cfg.GPU.PowerPreference)
	assert.Equal(t, 32, cfg.GPU.MaxBatchSize)
}

func TestLoadConfig_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gpu:\n  maxBatchSize: 8\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logger.Verbosity)
	assert.Equal(t, 8, cfg.GPU.MaxBatchSize)
	assert.Empty(t, cfg.GPU.PowerPreference)
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "info", cfg.Logger.Verbosity)
	assert.Zero(t, cfg.GPU.MaxBatchSize)
}
