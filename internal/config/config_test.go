package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfigFile(t, `
database:
  dsn: postgres://localhost:5432/windpark
http:
  addr: ":9090"
tenant:
  id: tenant-acme
auth:
  jwtSecret: s3cret
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost:5432/windpark", cfg.Database.DSN)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "tenant-acme", cfg.Tenant.ID)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Unset fields pick up defaults.
	assert.Equal(t, "EUR", cfg.Tenant.Currency)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfigFile(t, `
database:
  dsn: postgres://localhost:5432/windpark
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "tenant-demo", cfg.Tenant.ID)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Auth.JWTSecret)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
database:
  dsn: postgres://file-host/db
`)
	t.Setenv("WPC_DATABASE__DSN", "postgres://env-host/db")
	t.Setenv("WPC_LOGGING__LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://env-host/db", cfg.Database.DSN)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("WPC_DATABASE__DSN", "postgres://env-host/db")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://env-host/db", cfg.Database.DSN)
}

func TestLoad_MissingDSN(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.dsn")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
