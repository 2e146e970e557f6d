package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, int32(10), cfg.Store.Pool.MaxConns)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "https://api.gdeltproject.org/api/v2/doc/doc", cfg.GDELT.BaseURL)
	assert.InDelta(t, 0.2, cfg.GDELT.RatePerSec, 0.001)
	assert.Equal(t, int64(100), cfg.Google.DailyQuota)
	assert.Equal(t, 4000, cfg.Anthropic.MaxTokens)
	assert.Equal(t, "Michigan", cfg.Collect.QueryContext)
	assert.Equal(t, []string{"gdelt"}, cfg.Collect.Backends)
	assert.Equal(t, 10, cfg.Collect.PerBackendLimit)
	assert.Equal(t, 1*time.Second, cfg.Collect.BackendDelay)
	assert.Equal(t, 3*time.Second, cfg.Collect.OrgDelay)
	assert.Equal(t, 3, cfg.Collect.AgentPerDomain)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chTempDir(t)

	yaml := `
store:
  driver: sqlite
  database_url: mentions.db
log:
  level: debug
  format: console
collect:
  backends: [gdelt, google]
  query_context: "Michigan environment"
  org_delay: 5s
  agent_domains:
    - planetdetroit.org
    - bridgemi.com
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "mentions.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"gdelt", "google"}, cfg.Collect.Backends)
	assert.Equal(t, "Michigan environment", cfg.Collect.QueryContext)
	assert.Equal(t, 5*time.Second, cfg.Collect.OrgDelay)
	assert.Equal(t, []string{"planetdetroit.org", "bridgemi.com"}, cfg.Collect.AgentDomains)
	// Defaults still apply for unset values
	assert.Equal(t, int64(100), cfg.Google.DailyQuota)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chTempDir(t)

	yaml := `
google:
  daily_quota: 50
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("ECOCENSUS_GOOGLE_DAILY_QUOTA", "25")
	t.Setenv("ECOCENSUS_GOOGLE_KEY", "env-key")
	t.Setenv("ECOCENSUS_GOOGLE_ENGINE_ID", "env-engine")
	t.Setenv("ECOCENSUS_ANTHROPIC_KEY", "env-anthropic")
	t.Setenv("ECOCENSUS_STORE_DATABASE_URL", "postgres://env-host/mentions")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(25), cfg.Google.DailyQuota)
	assert.Equal(t, "env-key", cfg.Google.Key)
	assert.Equal(t, "env-engine", cfg.Google.EngineID)
	assert.Equal(t, "env-anthropic", cfg.Anthropic.Key)
	assert.Equal(t, "postgres://env-host/mentions", cfg.Store.DatabaseURL)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.True(t, zap.L().Core().Enabled(zap.DebugLevel))

	require.NoError(t, InitLogger(LogConfig{Level: "warn", Format: "json"}))
	assert.False(t, zap.L().Core().Enabled(zap.InfoLevel))
}

func TestInitLogger_BadLevel(t *testing.T) {
	assert.Error(t, InitLogger(LogConfig{Level: "shouting", Format: "json"}))
}
