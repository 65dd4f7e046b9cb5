package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unset clears key for the duration of the test, restoring it afterwards.
func unset(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadConfigReadsEnvFile(t *testing.T) {
	unset(t, "SESSION_SECRET", "CSRF_SECRET", "IFSC_CACHE_TTL", "RATE_LIMIT_PER_MINUTE", "APP_ENV")
	t.Setenv("APP_ENV", "production")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SESSION_SECRET=from-file\nCSRF_SECRET=csrf\nIFSC_CACHE_TTL=2h\nAPP_ENV=development\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.SessionSecret)
	assert.Equal(t, 2*time.Hour, cfg.IFSCCacheTTL)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.True(t, cfg.IsProduction(), "process environment wins over the file")
}

func TestLoadConfigMissingFileIsIgnored(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("CSRF_SECRET", "c")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.False(t, cfg.MigrateOnStart)
}

func TestLoadConfigRequiresSecrets(t *testing.T) {
	unset(t, "SESSION_SECRET")
	t.Setenv("CSRF_SECRET", "c")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestLoadConfigRejectsZeroRateLimit(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("CSRF_SECRET", "c")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "0")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
