package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DB_DSN", "file:test?mode=memory")
	t.Setenv("JWT_ACCESS_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, 7090, cfg.HTTP.Port)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.InDelta(t, 8.1, cfg.Invoices.DefaultVATRate, 1e-9)
	assert.Equal(t, "Stk", cfg.Invoices.DefaultUnit)
	assert.Equal(t, 3, cfg.Invoices.NumberRetries)
}

func TestLoadFromEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_DSN", "postgres://faktura@localhost/faktura")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("HTTP_PORT", "8088")
	t.Setenv("DB_CONN_MAX_LIFETIME", "5m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.ch, ,https://admin.example.ch")
	t.Setenv("INVOICE_DEFAULT_VAT_RATE", "7.7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8088, cfg.HTTP.Port)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 5*time.Minute, cfg.DB.ConnMaxLifetime)
	assert.Equal(t, []string{"https://app.example.ch", "https://admin.example.ch"}, cfg.HTTP.AllowedOrigins)
	assert.InDelta(t, 7.7, cfg.Invoices.DefaultVATRate, 1e-9)
}

func TestLoadRequiresSecrets(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DB_DSN", "")
	t.Setenv("JWT_ACCESS_SECRET", "")

	_, err := Load()
	require.EqualError(t, err, "DB_DSN is required")

	t.Setenv("DB_DSN", "file:test?mode=memory")
	_, err = Load()
	require.EqualError(t, err, "JWT_ACCESS_SECRET is required")
}

func TestParseList(t *testing.T) {
	assert.Nil(t, parseList("  "))
	assert.Equal(t, []string{"a", "b"}, parseList("a, b,"))
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
