// Package config loads and validates lead harvester configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	collyfetcher "github.com/JakeFAU/lead-harvester/internal/fetcher/colly"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// EnvPrefix namespaces environment overrides, e.g. LEADS_DB_DSN.
const EnvPrefix = "LEADS"

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Storage    StorageConfig    `mapstructure:"storage"`
	DB         DBConfig         `mapstructure:"db"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Scraper    ScraperConfig    `mapstructure:"scraper"`
	Validation ValidationConfig `mapstructure:"validation"`
	Quality    QualityConfig    `mapstructure:"quality"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// ServerConfig controls the read API.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// StorageConfig selects the repository backend.
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
}

// DBConfig controls access to Postgres. DSN wins over the individual
// connection fields.
type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	Migrations      bool          `mapstructure:"migrations"`
}

// HTTPConfig configures page fetching.
type HTTPConfig struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxRetries    int           `mapstructure:"max_retries"`
	Delay         time.Duration `mapstructure:"delay"`
	UserAgents    []string      `mapstructure:"user_agents"`
	RespectRobots bool          `mapstructure:"respect_robots"`
}

// ScraperConfig bounds per-company work.
type ScraperConfig struct {
	MaxPages    int    `mapstructure:"max_pages"`
	MaxResults  int    `mapstructure:"max_results"`
	PhoneRegion string `mapstructure:"phone_region"`
}

// ValidationConfig tunes batch email validation.
type ValidationConfig struct {
	BatchSize   int           `mapstructure:"batch_size"`
	RecordDelay time.Duration `mapstructure:"record_delay"`
	SMTPTimeout time.Duration `mapstructure:"smtp_timeout"`
	DNSTimeout  time.Duration `mapstructure:"dns_timeout"`
	HeloDomain  string        `mapstructure:"helo_domain"`
}

// QualityConfig sets the default thresholds of the lead reports.
type QualityConfig struct {
	HighMin float64 `mapstructure:"high_min"`
	SpamMin float64 `mapstructure:"spam_min"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load builds a Config from .env files, an optional config file and the
// environment, in increasing order of precedence.
func Load(path string, envFiles ...string) (Config, error) {
	if err := LoadDotEnv(envFiles...); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadDotEnv copies variables from the given files (default ".env") into
// the process environment without overriding what is already set. Missing
// files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", true)
	v.SetDefault("storage.driver", DriverPostgres)
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "business_contacts")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("db.min_conns", 0)
	v.SetDefault("db.max_conn_lifetime", time.Hour)
	v.SetDefault("db.migrations", true)
	v.SetDefault("http.timeout", 30*time.Second)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.delay", 2*time.Second)
	v.SetDefault("http.user_agents", collyfetcher.DefaultUserAgents)
	v.SetDefault("http.respect_robots", true)
	v.SetDefault("scraper.max_pages", 5)
	v.SetDefault("scraper.max_results", 100)
	v.SetDefault("scraper.phone_region", "US")
	v.SetDefault("validation.batch_size", 100)
	v.SetDefault("validation.record_delay", 100*time.Millisecond)
	v.SetDefault("validation.smtp_timeout", 10*time.Second)
	v.SetDefault("validation.dns_timeout", 5*time.Second)
	v.SetDefault("validation.helo_domain", "test.com")
	v.SetDefault("quality.high_min", 0.7)
	v.SetDefault("quality.spam_min", 0.5)
	v.SetDefault("metrics.enabled", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case DriverPostgres:
		if c.DSN() == "" {
			return fmt.Errorf("db.dsn or db.host/db.name must be set for the postgres driver")
		}
		if c.DB.MinConns > c.DB.MaxConns && c.DB.MaxConns > 0 {
			return fmt.Errorf("db.min_conns must not exceed db.max_conns")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("storage.driver must be %q or %q, got %q", DriverPostgres, DriverMemory, c.Storage.Driver)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be > 0")
	}
	if c.HTTP.MaxRetries <= 0 {
		return fmt.Errorf("http.max_retries must be > 0")
	}
	if c.HTTP.Delay < 0 {
		return fmt.Errorf("http.delay must be >= 0")
	}
	if c.Scraper.MaxPages <= 0 {
		return fmt.Errorf("scraper.max_pages must be > 0")
	}
	if c.Validation.BatchSize <= 0 {
		return fmt.Errorf("validation.batch_size must be > 0")
	}
	if c.Validation.RecordDelay < 0 {
		return fmt.Errorf("validation.record_delay must be >= 0")
	}
	if c.Validation.SMTPTimeout <= 0 || c.Validation.DNSTimeout <= 0 {
		return fmt.Errorf("validation.smtp_timeout and validation.dns_timeout must be > 0")
	}
	for name, v := range map[string]float64{"quality.high_min": c.Quality.HighMin, "quality.spam_min": c.Quality.SpamMin} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be within [0, 1]", name)
		}
	}
	return nil
}

// DSN returns db.dsn, or a postgres URL assembled from the connection
// fields when it is empty.
func (c Config) DSN() string {
	if c.DB.DSN != "" {
		return c.DB.DSN
	}
	if c.DB.Host == "" || c.DB.Name == "" {
		return ""
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.DB.Host, strconv.Itoa(c.DB.Port)),
		Path:   "/" + c.DB.Name,
	}
	if c.DB.User != "" {
		if c.DB.Password != "" {
			u.User = url.UserPassword(c.DB.User, c.DB.Password)
		} else {
			u.User = url.User(c.DB.User)
		}
	}
	if c.DB.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.DB.SSLMode}}.Encode()
	}
	return u.String()
}

// FetcherConfig maps the HTTP section onto the colly fetcher settings.
// Retries back off by the request delay.
func (c Config) FetcherConfig() collyfetcher.Config {
	return collyfetcher.Config{
		UserAgents:    c.HTTP.UserAgents,
		RespectRobots: c.HTTP.RespectRobots,
		Timeout:       c.HTTP.Timeout,
		MaxRetries:    c.HTTP.MaxRetries,
		RetryDelay:    c.HTTP.Delay,
	}
}
