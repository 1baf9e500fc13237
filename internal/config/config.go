// Package config loads server settings from .env files and the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"supplier-pricing-backend/internal/models"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment keys.
const (
	KeyPort                 = "PORT"
	KeyAllowedOrigins       = "ALLOWED_ORIGINS"
	KeyMaxUploadMB          = "MAX_UPLOAD_MB"
	KeyBidMarkupDefault     = "BID_MARKUP_DEFAULT"
	KeyCatalogMarkupDefault = "CATALOG_MARKUP_DEFAULT"
	KeySessionTTL           = "SESSION_TTL"
	KeyLogLevel             = "LOG_LEVEL"
	KeyLogFormat            = "LOG_FORMAT"
)

// Config holds the server configuration.
type Config struct {
	Port           string
	AllowedOrigins []string
	MaxUploadMB    int64

	BidMarkup     float64
	CatalogMarkup float64
	SessionTTL    time.Duration

	LogLevel  string
	LogFormat string
}

// MaxUploadBytes is the request body limit derived from MaxUploadMB.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyPort, "8080")
	v.SetDefault(KeyAllowedOrigins, "http://localhost:3000")
	v.SetDefault(KeyMaxUploadMB, 32)
	v.SetDefault(KeyBidMarkupDefault, models.DefaultBidMarkup)
	v.SetDefault(KeyCatalogMarkupDefault, models.DefaultCatalogMarkup)
	v.SetDefault(KeySessionTTL, 2*time.Hour)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
}

// LoadEnvFiles loads .env then .env.local into the process environment.
// Missing files are ignored.
func LoadEnvFiles(files ...string) {
	if len(files) == 0 {
		files = []string{".env", ".env.local"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// Load reads the configuration from the environment through v.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Port:           strings.TrimPrefix(strings.TrimSpace(v.GetString(KeyPort)), ":"),
		AllowedOrigins: splitList(v.GetString(KeyAllowedOrigins)),
		MaxUploadMB:    v.GetInt64(KeyMaxUploadMB),
		BidMarkup:      v.GetFloat64(KeyBidMarkupDefault),
		CatalogMarkup:  v.GetFloat64(KeyCatalogMarkupDefault),
		SessionTTL:     v.GetDuration(KeySessionTTL),
		LogLevel:       v.GetString(KeyLogLevel),
		LogFormat:      v.GetString(KeyLogFormat),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("%s must not be empty", KeyPort)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("%s must be positive, got %d", KeyMaxUploadMB, c.MaxUploadMB)
	}
	if err := models.ValidateMarkup(KeyBidMarkupDefault, c.BidMarkup); err != nil {
		return err
	}
	if err := models.ValidateMarkup(KeyCatalogMarkupDefault, c.CatalogMarkup); err != nil {
		return err
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("%s must not be negative", KeySessionTTL)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
