package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("ENV", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, 20, cfg.Search.DefaultLimit)
	assert.Equal(t, 100, cfg.Search.MaxLimit)
	assert.Equal(t, 2*time.Second, cfg.Remote.HealthTimeout)
	assert.Equal(t, 10*time.Second, cfg.Remote.QueryTimeout)
	assert.True(t, cfg.Remote.FallbackEnabled)
	assert.Equal(t, 4, cfg.Sync.Concurrency)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := chdirTemp(t)
	t.Setenv("ENV", "")
	yaml := `
server:
  port: 9000
db:
  driver: oracle
  dsn: oracle://u:p@localhost:1521/FREE
remote:
  fallback_enabled: false
  health_timeout: 500ms
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	t.Setenv("QUESTA_SERVER_PORT", "9100")
	t.Setenv("QUESTA_AUTH_JWT_SECRET", "s3cret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "oracle", cfg.DB.Driver)
	assert.Equal(t, "oracle://u:p@localhost:1521/FREE", cfg.DB.DSN)
	assert.False(t, cfg.Remote.FallbackEnabled)
	assert.Equal(t, 500*time.Millisecond, cfg.Remote.HealthTimeout)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	dir := chdirTemp(t)
	t.Setenv("ENV", "")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [port"), 0o644))

	_, err := LoadConfig()
	assert.Error(t, err)
}
