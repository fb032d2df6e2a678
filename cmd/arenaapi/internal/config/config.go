package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every configuration key when read from the environment.
const EnvPrefix = "ARENA"

// Config holds the application configuration
type Config struct {
	// Database connection string (DSN). postgres:// URLs use PostgreSQL,
	// anything else is treated as a SQLite DSN.
	DatabaseURL string

	// Server bind address (host:port)
	ServerAddr string

	// Public base URL, used for CORS and absolute links
	ServerURL string

	// Maximum database connection pool size
	MaxDBConnections int

	// Enable debug logging
	Debug bool

	// Session token signing and cookie settings
	Session SessionConfig

	// Image generation backend
	Generator GeneratorConfig

	// Number of profiles returned by the leaderboard when no limit is given
	LeaderboardLimit int

	Observability ObservabilityConfig
}

// SessionConfig controls how session tokens are issued.
type SessionConfig struct {
	// Secret is the HMAC key used to sign session tokens
	Secret string

	// TTL is the lifetime of a session
	TTL time.Duration

	// CookieSecure marks the session and role cookies Secure
	CookieSecure bool
}

// GeneratorConfig points at the image-generation backend.
type GeneratorConfig struct {
	// URL of the backend exposing POST /generate-image. Empty disables
	// remote generation and serves cached sample images only.
	URL string

	Timeout time.Duration

	// SampleCacheSize bounds the in-memory cache of generated images keyed by prompt
	SampleCacheSize int
}

// ObservabilityConfig configures tracing export.
type ObservabilityConfig struct {
	// OTLPEndpoint is the OTLP/HTTP collector endpoint. Empty disables export.
	OTLPEndpoint string
	ServiceName  string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database_url", "file:arena.db?cache=shared")
	v.SetDefault("server_addr", "localhost:8080")
	v.SetDefault("server_url", "http://localhost:8080")
	v.SetDefault("max_db_connections", 25)
	v.SetDefault("debug", false)
	v.SetDefault("session_secret", "")
	v.SetDefault("session_ttl", "168h")
	v.SetDefault("cookie_secure", false)
	v.SetDefault("generator_url", "")
	v.SetDefault("generator_timeout", "60s")
	v.SetDefault("sample_cache_size", 128)
	v.SetDefault("leaderboard_limit", 10)
	v.SetDefault("observability.otlp_endpoint", "")
	v.SetDefault("observability.service_name", "arenaapi")
}

// Load reads configuration from the global viper instance. Values come from,
// in order of precedence: bound command line flags that were set, ARENA_
// prefixed environment variables, the config file (if one was read), and
// defaults.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads configuration from a specific viper instance.
func LoadFrom(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		DatabaseURL:      v.GetString("database_url"),
		ServerAddr:       v.GetString("server_addr"),
		ServerURL:        v.GetString("server_url"),
		MaxDBConnections: v.GetInt("max_db_connections"),
		Debug:            v.GetBool("debug"),
		Session: SessionConfig{
			Secret:       v.GetString("session_secret"),
			TTL:          v.GetDuration("session_ttl"),
			CookieSecure: v.GetBool("cookie_secure"),
		},
		Generator: GeneratorConfig{
			URL:             strings.TrimRight(v.GetString("generator_url"), "/"),
			Timeout:         v.GetDuration("generator_timeout"),
			SampleCacheSize: v.GetInt("sample_cache_size"),
		},
		LeaderboardLimit: v.GetInt("leaderboard_limit"),
		Observability: ObservabilityConfig{
			OTLPEndpoint: v.GetString("observability.otlp_endpoint"),
			ServiceName:  v.GetString("observability.service_name"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required values and ranges.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("database_url is required (env: %s_DATABASE_URL)", EnvPrefix)
	}
	if c.ServerURL == "" {
		return fmt.Errorf("server_url is required (env: %s_SERVER_URL)", EnvPrefix)
	}
	if c.MaxDBConnections < 1 {
		return fmt.Errorf("max_db_connections must be positive, got %d", c.MaxDBConnections)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session_ttl must be positive, got %s", c.Session.TTL)
	}
	// Empty is allowed: serve generates an ephemeral secret and warns.
	if c.Session.Secret != "" && len(c.Session.Secret) < 32 {
		return fmt.Errorf("session_secret must be at least 32 bytes")
	}
	if c.Generator.Timeout <= 0 {
		return fmt.Errorf("generator_timeout must be positive, got %s", c.Generator.Timeout)
	}
	if c.Generator.SampleCacheSize < 1 {
		return fmt.Errorf("sample_cache_size must be positive, got %d", c.Generator.SampleCacheSize)
	}
	if c.LeaderboardLimit < 1 || c.LeaderboardLimit > 100 {
		return fmt.Errorf("leaderboard_limit must be between 1 and 100, got %d", c.LeaderboardLimit)
	}
	return nil
}
