package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 3, cfg.HTTP.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.HTTP.Delay)
	assert.Len(t, cfg.HTTP.UserAgents, 3)
	assert.Equal(t, 100, cfg.Validation.BatchSize)
	assert.Equal(t, "test.com", cfg.Validation.HeloDomain)
	assert.InDelta(t, 0.7, cfg.Quality.HighMin, 1e-9)
	assert.Equal(t, "postgres://postgres@localhost:5432/business_contacts?sslmode=disable", cfg.DSN())
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
storage:
  driver: memory
server:
  port: 9090
http:
  delay: 500ms
  user_agents:
    - test-agent
validation:
  batch_size: 25
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("LEADS_SERVER_PORT", "9191")
	t.Setenv("LEADS_VALIDATION_HELO_DOMAIN", "probe.example")

	cfg, err := Load(path, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 9191, cfg.Server.Port, "env beats file")
	assert.Equal(t, 500*time.Millisecond, cfg.HTTP.Delay)
	assert.Equal(t, []string{"test-agent"}, cfg.HTTP.UserAgents)
	assert.Equal(t, 25, cfg.Validation.BatchSize)
	assert.Equal(t, "probe.example", cfg.Validation.HeloDomain)

	fc := cfg.FetcherConfig()
	assert.Equal(t, []string{"test-agent"}, fc.UserAgents)
	assert.Equal(t, 500*time.Millisecond, fc.RetryDelay)
	assert.Equal(t, 3, fc.MaxRetries)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("LEADS_DB_DSN=postgres://u:p@db:5432/leads\n"), 0o600))
	// Restores the variable after godotenv sets it.
	t.Setenv("LEADS_DB_DSN", "")
	require.NoError(t, os.Unsetenv("LEADS_DB_DSN"))

	cfg, err := Load("", envPath)
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/leads", cfg.DSN())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}

func TestDSNFromParts(t *testing.T) {
	t.Parallel()
	cfg := Config{DB: DBConfig{Host: "db", Port: 6543, Name: "leads", User: "app", Password: "s3cr@t", SSLMode: "require"}}
	assert.Equal(t, "postgres://app:s3cr%40t@db:6543/leads?sslmode=require", cfg.DSN())

	cfg.DB.DSN = "postgres://override"
	assert.Equal(t, "postgres://override", cfg.DSN())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() Config {
		return Config{
			Server:     ServerConfig{Port: 8080},
			Storage:    StorageConfig{Driver: DriverMemory},
			HTTP:       HTTPConfig{Timeout: time.Second, MaxRetries: 1},
			Scraper:    ScraperConfig{MaxPages: 5},
			Validation: ValidationConfig{BatchSize: 10, SMTPTimeout: time.Second, DNSTimeout: time.Second},
			Quality:    QualityConfig{HighMin: 0.7, SpamMin: 0.5},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "sqlite" }},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Storage.Driver = DriverPostgres }},
		{name: "min conns above max", mutate: func(c *Config) {
			c.Storage.Driver = DriverPostgres
			c.DB = DBConfig{DSN: "postgres://x", MaxConns: 1, MinConns: 2}
		}},
		{name: "port", mutate: func(c *Config) { c.Server.Port = 0 }},
		{name: "timeout", mutate: func(c *Config) { c.HTTP.Timeout = 0 }},
		{name: "retries", mutate: func(c *Config) { c.HTTP.MaxRetries = 0 }},
		{name: "negative delay", mutate: func(c *Config) { c.HTTP.Delay = -time.Second }},
		{name: "max pages", mutate: func(c *Config) { c.Scraper.MaxPages = 0 }},
		{name: "batch size", mutate: func(c *Config) { c.Validation.BatchSize = 0 }},
		{name: "record delay", mutate: func(c *Config) { c.Validation.RecordDelay = -1 }},
		{name: "smtp timeout", mutate: func(c *Config) { c.Validation.SMTPTimeout = 0 }},
		{name: "threshold range", mutate: func(c *Config) { c.Quality.SpamMin = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid()
			tt.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
