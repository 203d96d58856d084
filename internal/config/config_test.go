package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"ADDR", "PORT", "APP_ENV", "DATABASE_URL", "AUTH_SECRET", "TOKEN_TTL_HOURS", "WORDS_DIR",
		"WORD_WEIGHTS", "ALLOWED_ORIGINS", "DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME_SECONDS", "SHUTDOWN_TIMEOUT_SECONDS"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("ADDR", ":9000")
	t.Setenv("APP_ENV", "production")
	t.Setenv("WORD_WEIGHTS", "words=1, animals=2.5")
	t.Setenv("ALLOWED_ORIGINS", "example.com, *.example.org")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, map[string]float64{"words": 1, "animals": 2.5}, cfg.WordWeights)
	assert.Equal(t, []string{"example.com", "*.example.org"}, cfg.AllowedOrigins)
	assert.Equal(t, Default().DBMaxOpenConns, cfg.DBMaxOpenConns)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestParseWeights_Rejects(t *testing.T) {
	tests := []string{"words", "=1", "words=abc", "words=-1"}
	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseWeights(raw)
			assert.Error(t, err)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DECRYPTO_TEST_VALUE=from-file\n"), 0o600))
	t.Setenv("DECRYPTO_TEST_VALUE", "")
	os.Unsetenv("DECRYPTO_TEST_VALUE")
	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("DECRYPTO_TEST_VALUE"))
}
