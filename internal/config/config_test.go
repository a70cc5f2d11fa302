package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Auth.SessionStore)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowOrigins)
	assert.False(t, cfg.Remote.Enabled)
	assert.False(t, cfg.UsesRedis())
	assert.Equal(t, 30*24*time.Hour, cfg.Notifications.Retention)
	assert.Equal(t, time.Hour, cfg.Notifications.CleanupInterval)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
auth:
  session_store: redis
  session_ttl: 2h
remote:
  enabled: true
  base_url: http://remote.internal/api
`), 0o600))

	t.Setenv("FACILITY_SERVER_PORT", "9191")
	t.Setenv("FACILITY_LOG_LEVEL", "debug")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 2*time.Hour, cfg.Auth.SessionTTL)
	assert.True(t, cfg.UsesRedis())
	assert.Equal(t, "http://remote.internal/api", cfg.APIClient().BaseURL)
}

func TestLoadConfigAPIEnvOverridesRemote(t *testing.T) {
	t.Setenv("FACILITY_API_URL", "http://env.example/api")
	t.Setenv("FACILITY_API_TIMEOUT", "3s")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "http://env.example/api", cfg.Remote.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Remote.Timeout)
}

func TestValidate(t *testing.T) {
	t.Setenv("FACILITY_AUTH_SESSION_STORE", "etcd")
	_, err := LoadConfig("")
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateNotificationCleanup(t *testing.T) {
	t.Setenv("FACILITY_NOTIFICATIONS_CLEANUP_INTERVAL", "0s")
	_, err := LoadConfig("")
	assert.Error(t, err)

	t.Setenv("FACILITY_NOTIFICATIONS_RETENTION", "0s")
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Zero(t, cfg.Notifications.Retention)
}
