package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupConfigHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("KORA_HOME", dir)
	t.Setenv("MODEL", "")
	t.Setenv("API_KEY", "")
	t.Setenv("API_BASE", "")
	return dir
}

func TestLoadConfigCreatesDefault(t *testing.T) {
	dir := setupConfigHome(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "default", cfg.ActiveProfile)
	assert.Equal(t, "gpt-4o-mini", cfg.GetModel())
	assert.False(t, cfg.IsValid(), "default profile has no API key")

	_, err = os.Stat(filepath.Join(dir, "config.json"))
	assert.NoError(t, err, "default config file should be written")
}

func TestLoadConfigExistingProfile(t *testing.T) {
	dir := setupConfigHome(t)

	data := `{
  "profiles": {
    "work": {"api_key": "sk-test", "base_url": "https://llm.example.com/v1", "model": "gpt-4o"}
  },
  "active_profile": "work"
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(data), 0600))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsValid())
	assert.Equal(t, "sk-test", cfg.GetAPIKey())
	assert.Equal(t, "gpt-4o", cfg.GetModel())
	assert.Equal(t, "https://llm.example.com/v1", cfg.GetBaseURL())
}

func TestEnvOverridesTakePrecedence(t *testing.T) {
	dir := setupConfigHome(t)

	data := `{
  "profiles": {"default": {"api_key": "profile-key", "model": "gpt-4o-mini"}},
  "active_profile": "default"
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(data), 0600))

	t.Setenv("MODEL", "gpt-4.1")
	t.Setenv("API_KEY", "env-key")
	t.Setenv("API_BASE", "http://localhost:8080/v1")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "gpt-4.1", cfg.GetModel())
	assert.Equal(t, "env-key", cfg.GetAPIKey())
	assert.Equal(t, "http://localhost:8080/v1", cfg.GetBaseURL())
}

func TestMissingActiveProfileFallsBack(t *testing.T) {
	dir := setupConfigHome(t)

	data := `{
  "profiles": {"only": {"api_key": "k", "model": "gpt-4o"}},
  "active_profile": "gone"
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(data), 0600))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "only", cfg.ActiveProfile)
}

func TestSaveRoundTrip(t *testing.T) {
	setupConfigHome(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	cfg.Profiles["new"] = Profile{APIKey: "abc", Model: "gpt-4o"}
	cfg.ActiveProfile = "new"
	require.NoError(t, cfg.Save())

	reloaded, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "new", reloaded.ActiveProfile)
	assert.Equal(t, "abc", reloaded.GetAPIKey())
}
