package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "crm", cfg.DB.Name)
	assert.Equal(t, 30*time.Minute, cfg.DB.ConnMaxLifetime)
	assert.True(t, cfg.DB.AutoMigrate)
	assert.Equal(t, "8080", cfg.App.HTTPPort)
	assert.Equal(t, 10*time.Second, cfg.App.ShutdownTimeout)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "crm-service", cfg.Logger.ServiceName)
	assert.Equal(t, "console", cfg.Logger.Format)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	content := "DB_DRIVER=SQLite\nDB_SQLITE_PATH=/tmp/crm.db\nHTTP_PORT=9090\nREDIS_ENABLED=true\nJWT_SECRET=" + testSecret + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600))
	t.Setenv("HTTP_PORT", "7070")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "/tmp/crm.db", cfg.DB.SQLitePath)
	assert.Equal(t, "7070", cfg.App.HTTPPort, "environment overrides the file")
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.RedisAddr())
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET is required")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			DB:        DatabaseConfig{Driver: "postgres"},
			Auth:      AuthConfig{JWTSecret: testSecret, TokenTTL: time.Hour},
			RateLimit: RateLimitConfig{Enabled: true, RequestsPerSecond: 1, Burst: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"unknown driver", func(c *Config) { c.DB.Driver = "mysql" }, "unsupported DB_DRIVER"},
		{"sqlite without path", func(c *Config) { c.DB.Driver = "sqlite" }, "DB_SQLITE_PATH"},
		{"short secret", func(c *Config) { c.Auth.JWTSecret = "short" }, "at least 32"},
		{"zero ttl", func(c *Config) { c.Auth.TokenTTL = 0 }, "JWT_TOKEN_TTL"},
		{"bad rate limit", func(c *Config) { c.RateLimit.Burst = 0 }, "RATE_LIMIT_RPS"},
		{"rate limit off", func(c *Config) { c.RateLimit = RateLimitConfig{} }, ""},
		{"cache without ttl", func(c *Config) { c.Redis.Enabled = true }, "REDIS_CACHE_TTL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", User: "u", Password: "p", Name: "crm", Port: "5432", SSLMode: "disable"}
	assert.Equal(t, "host=db user=u password=p dbname=crm port=5432 sslmode=disable", db.DSN())
}
