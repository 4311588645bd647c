package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(args ...string) (Config, error) {
	return Parse(flag.NewFlagSet("test", flag.ContinueOnError), args)
}

func TestParseDefaults(t *testing.T) {
	cfg, err := parse("-token-secret", "s3cret")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:80", cfg.Addr)
	assert.Equal(t, "http://localhost:80", cfg.Url())
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, 120*time.Second, cfg.TokenTTL)
	assert.Equal(t, time.Minute, cfg.DuplicateWindow)
	assert.Empty(t, cfg.RedisAddr)
}

func TestParseRequiresSecret(t *testing.T) {
	_, err := parse()
	assert.EqualError(t, err, "missing parameter -token-secret")
}

func TestParseRejectsDriver(t *testing.T) {
	_, err := parse("-token-secret", "x", "-db-driver", "mysql")
	assert.Error(t, err)
}

func TestParseConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 8080
db-driver: pgx
db-url: postgres://user:pw@localhost/surveys
token-secret: from-file
duplicate-window: 30s
debug: true
log-format: json
`), 0o600))

	cfg, err := parse("-config", path, "-port", "9090")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Addr)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, "postgres://user:pw@localhost/surveys", cfg.DBUrl)
	assert.Equal(t, "from-file", cfg.TokenSecret)
	assert.Equal(t, 30*time.Second, cfg.DuplicateWindow)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestParseConfigFileUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("colour: blue\n"), 0o600))

	_, err := parse("-config", path, "-token-secret", "x")
	assert.ErrorContains(t, err, "unknown key")
}
