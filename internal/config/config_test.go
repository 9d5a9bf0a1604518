package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tropicaldog17/folio/internal/db"
)

// chdir into an empty directory so no stray .env is picked up
func isolate(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv(EnvConfigPath, "")
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, db.DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "folio.db", cfg.Database.Path)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Feeds.Timeout)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "folio.yaml")
	content := `
database:
  driver: postgres
  host: db.internal
  name: portfolio
server:
  port: "9090"
feeds:
  timeout: 5s
  crypto_base_url: http://crypto.local
log:
  env: production
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("DB_HOST", "override.internal")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, db.DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "override.internal", cfg.Database.Host)
	assert.Equal(t, "portfolio", cfg.Database.Name)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Feeds.Timeout)
	assert.Equal(t, "http://crypto.local", cfg.Feeds.CryptoBaseURL)
	assert.Equal(t, "https://query1.finance.yahoo.com", cfg.Feeds.EquityBaseURL)
	assert.Equal(t, "production", cfg.Log.Env)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_DotEnv(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(".env", []byte("DB_PATH=from-dotenv.db\nFEED_TIMEOUT=3s\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("DB_PATH")
		os.Unsetenv("FEED_TIMEOUT")
	})

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.db", cfg.Database.Path)
	assert.Equal(t, 3*time.Second, cfg.Feeds.Timeout)
}

func TestLoad_InvalidTimeout(t *testing.T) {
	isolate(t)
	t.Setenv("FEED_TIMEOUT", "soon")

	_, err := Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Database.Driver = "mysql"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Feeds.Timeout = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Database.Path = ""
	assert.Error(t, cfg.Validate())
}
