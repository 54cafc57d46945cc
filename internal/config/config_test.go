package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	configPath := writeConfig(t, `
server:
  port: 9090
  host: "0.0.0.0"
  static_dir: "./dist/public"
  cors_allowed_origins: ["https://agency.example"]

log:
  level: debug
  format: text

storage:
  type: postgres
  database_url: "postgres://localhost/site?sslmode=disable"

catalog:
  seed_path: "./seed.yaml"

ses:
  enabled: true
  region: eu-west-1
  from: "site@agency.example"
  to: ["hello@agency.example"]
  timeout_seconds: 5

archive:
  s3_bucket: "agency-contacts"
  prefix: "inbox"
`)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "./dist/public", cfg.Server.StaticDir)
	assert.Equal(t, []string{"https://agency.example"}, cfg.Server.CORSAllowedOrigins)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)

	assert.Equal(t, StoragePostgres, cfg.Storage.Type)
	assert.Equal(t, "postgres://localhost/site?sslmode=disable", cfg.Storage.DatabaseURL)
	assert.Equal(t, "./seed.yaml", cfg.Catalog.SeedPath)

	assert.True(t, cfg.SES.Enabled)
	assert.Equal(t, "eu-west-1", cfg.SES.Region)
	assert.Equal(t, 5*time.Second, cfg.SES.Timeout())

	assert.True(t, cfg.Archive.Enabled())
	assert.Equal(t, "inbox", cfg.Archive.Prefix)
	require.NoError(t, cfg.Validate())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "log:\n  level: warn\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout())
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, StorageMemory, cfg.Storage.Type)
	assert.Equal(t, 30, cfg.SES.TimeoutSeconds)
	assert.Equal(t, "contact-submissions", cfg.Archive.Prefix)
	assert.False(t, cfg.Archive.Enabled())
}

func TestLoadFromEnv(t *testing.T) {
	configPath := writeConfig(t, `
server:
  port: 9090
storage:
  type: memory
`)
	t.Setenv("PORT", "3000")
	t.Setenv("STORAGE_TYPE", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("SES_TO", "x@agency.example,y@agency.example")
	t.Setenv("ARCHIVE_S3_BUCKET", "bucket")

	cfg, err := LoadFromEnv(configPath)
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, StorageRedis, cfg.Storage.Type)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Storage.RedisURL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, []string{"x@agency.example", "y@agency.example"}, cfg.SES.To)
	assert.Equal(t, "bucket", cfg.Archive.S3Bucket)
}

func TestLoadFromEnvWithoutFile(t *testing.T) {
	t.Setenv("PORT", "5000")
	cfg, err := LoadFromEnv(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, StorageMemory, cfg.Storage.Type)
}

func TestLoadFromEnvBadPort(t *testing.T) {
	t.Setenv("PORT", "eighty")
	_, err := LoadFromEnv(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"unknown storage", func(c *Config) { c.Storage.Type = "sqlite" }, `unknown storage.type "sqlite"`},
		{"postgres without dsn", func(c *Config) { c.Storage.Type = StoragePostgres }, "database_url"},
		{"redis without url", func(c *Config) { c.Storage.Type = StorageRedis }, "redis_url"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "out of range"},
		{"ses without recipients", func(c *Config) { c.SES.Enabled = true; c.SES.From = "a@b.co" }, "ses.to"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
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

func TestGetHostOnECS(t *testing.T) {
	t.Setenv("ECS_CONTAINER_METADATA_URI", "http://169.254.170.2/v4")
	assert.Equal(t, "0.0.0.0", ServerConfig{Host: "localhost"}.GetHost())
	assert.Equal(t, "", ArchiveConfig{AWSProfile: "dev"}.GetAWSProfile())
}
