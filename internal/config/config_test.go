package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ITEMVAULT_AUTH_SIGNING_SECRET", testSecret)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr())
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "HS256", cfg.Auth.Algorithm)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Metrics.Enabled)
	assert.NotEmpty(t, cfg.CORS.AllowedOrigins)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ITEMVAULT_AUTH_SIGNING_SECRET", testSecret)
	t.Setenv("ITEMVAULT_SERVER_PORT", "9000")
	t.Setenv("ITEMVAULT_DATABASE_DRIVER", "sqlite")
	t.Setenv("ITEMVAULT_DATABASE_PATH", "/tmp/test.db")
	t.Setenv("ITEMVAULT_LOGGING_FORMAT", "console")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.True(t, cfg.Database.IsEmbedded())
	assert.Equal(t, "/tmp/test.db", cfg.Database.Path)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadRequiresSigningSecret(t *testing.T) {
	t.Setenv("ITEMVAULT_AUTH_SIGNING_SECRET", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signing_secret")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Port: 8000},
			Database: DatabaseConfig{
				Driver: "sqlite",
				Path:   "/tmp/test.db",
			},
			Auth: AuthConfig{
				SigningSecret: testSecret,
				Algorithm:     "HS256",
				TokenTTL:      time.Minute,
			},
			Logging: LoggingConfig{Level: "info"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"bad driver", func(c *Config) { c.Database.Driver = "mysql" }, "database.driver"},
		{"sqlite without path", func(c *Config) { c.Database.Path = "" }, "database.path"},
		{"short secret", func(c *Config) { c.Auth.SigningSecret = "short" }, "signing_secret"},
		{"bad algorithm", func(c *Config) { c.Auth.Algorithm = "RS256" }, "algorithm"},
		{"zero ttl", func(c *Config) { c.Auth.TokenTTL = 0 }, "token_ttl"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
