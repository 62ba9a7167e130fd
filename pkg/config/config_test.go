package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadEnvOverridesYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	content, err := yaml.Marshal(map[string]any{
		"bind_addr":        "0.0.0.0",
		"port":             "9000",
		"env":              "test",
		"max_upload_bytes": 1024,
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(configPath, content, 0o644))

	t.Setenv("PORT", "9100")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load(configPath, "test-version")
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Port, "env must override YAML")
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "0.0.0.0", cfg.BindAddr, "YAML value must survive where env is unset")
	assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
	assert.Equal(t, "test-version", cfg.Version)
	assert.Equal(t, "0.0.0.0:9100", cfg.Addr())
}

func TestLoadMissingFileFallsBackToEnv(t *testing.T) {
	t.Setenv("PORT", "9200")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), "dev")
	require.NoError(t, err)

	assert.Equal(t, "9200", cfg.Port)
	assert.Equal(t, "127.0.0.1", cfg.BindAddr)
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, int64(16777216), cfg.MaxUploadBytes)
}

func TestLoadRejectsNonPositiveUploadCap(t *testing.T) {
	t.Setenv("MAX_UPLOAD_BYTES", "-1")

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), "dev")
	require.Error(t, err)
}
