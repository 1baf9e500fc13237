package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	pkgerrors "supplier-pricing-backend/internal/errors"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{KeyPort, KeyAllowedOrigins, KeyMaxUploadMB, KeyBidMarkupDefault,
		KeyCatalogMarkupDefault, KeySessionTTL, KeyLogLevel, KeyLogFormat} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, int64(32), cfg.MaxUploadMB)
	assert.Equal(t, int64(32<<20), cfg.MaxUploadBytes())
	assert.Equal(t, 35.0, cfg.BidMarkup)
	assert.Equal(t, 0.0, cfg.CatalogMarkup)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv(KeyPort, ":9090")
	t.Setenv(KeyAllowedOrigins, "https://a.example, https://b.example,")
	t.Setenv(KeyBidMarkupDefault, "40")
	t.Setenv(KeySessionTTL, "30m")
	t.Setenv(KeyLogFormat, "json")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 40.0, cfg.BidMarkup)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadRejectsBadMarkup(t *testing.T) {
	t.Setenv(KeyCatalogMarkupDefault, "250")

	_, err := Load(viper.New())
	assert.True(t, pkgerrors.IsValidationError(err))
}

func TestLoadRejectsUploadLimit(t *testing.T) {
	t.Setenv(KeyMaxUploadMB, "0")

	_, err := Load(viper.New())
	assert.ErrorContains(t, err, KeyMaxUploadMB)
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("PRICESHEET_TEST_VALUE=from-file\n"), 0o600))
	t.Setenv("PRICESHEET_TEST_VALUE", "")
	require.NoError(t, os.Unsetenv("PRICESHEET_TEST_VALUE"))

	LoadEnvFiles(path, filepath.Join(dir, "missing.env"))
	assert.Equal(t, "from-file", os.Getenv("PRICESHEET_TEST_VALUE"))
}
