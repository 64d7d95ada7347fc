package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Genre match modes accepted by FILTER_GENRE_MATCH
const (
	GenreMatchExploded = "exploded"
	GenreMatchRaw      = "raw"
)

// Supported store drivers
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Config holds all application configuration
type Config struct {
	Data   DataConfig
	Filter FilterConfig
	Fetch  FetchConfig
	DB     DBConfig
	Bot    BotConfig
	Digest DigestConfig
	Server ServerConfig
	Log    LogConfig
}

// DataConfig holds dataset source configuration
type DataConfig struct {
	Path      string `envconfig:"DATA_PATH" default:"mymoviedb.csv"`
	URL       string `envconfig:"DATA_URL"`
	Delimiter string `envconfig:"DATA_DELIMITER" default:","`
}

// FilterConfig holds the defaults applied to dashboard filter controls
type FilterConfig struct {
	DefaultMinYear int    `envconfig:"FILTER_DEFAULT_MIN_YEAR" default:"2010"`
	DefaultMaxYear int    `envconfig:"FILTER_DEFAULT_MAX_YEAR" default:"2020"`
	GenreMatch     string `envconfig:"FILTER_GENRE_MATCH" default:"exploded"`
}

// FetchConfig holds remote dataset download configuration
type FetchConfig struct {
	RateLimit  float64       `envconfig:"FETCH_RATE_LIMIT" default:"1"`
	Timeout    time.Duration `envconfig:"FETCH_TIMEOUT" default:"30s"`
	MaxRetries int           `envconfig:"FETCH_MAX_RETRIES" default:"3"`
	Backoff    time.Duration `envconfig:"FETCH_BACKOFF" default:"1s"`
	UserAgent  string        `envconfig:"FETCH_USER_AGENT" default:"moviedash/1.0"`
	ProxyURL   string        `envconfig:"FETCH_PROXY_URL"`
}

// DBConfig holds database configuration
type DBConfig struct {
	Driver   string `envconfig:"DB_DRIVER" default:"sqlite"`
	Path     string `envconfig:"DB_PATH" default:"moviedash.db"`
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"3306"`
	User     string `envconfig:"DB_USER" default:"root"`
	Password string `envconfig:"DB_PASSWORD"`
	Database string `envconfig:"DB_NAME" default:"moviedash"`
	MaxConns int    `envconfig:"DB_MAX_CONNS" default:"10"`
}

// BotConfig holds Telegram bot configuration
type BotConfig struct {
	Token string `envconfig:"BOT_TOKEN"`
}

// DigestConfig holds scheduled digest configuration
type DigestConfig struct {
	Enabled      bool          `envconfig:"DIGEST_ENABLED" default:"false"`
	Interval     time.Duration `envconfig:"DIGEST_INTERVAL" default:"24h"`
	InitialDelay time.Duration `envconfig:"DIGEST_INITIAL_DELAY" default:"5s"`
	RateLimit    float64       `envconfig:"DIGEST_RATE_LIMIT" default:"30"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int `envconfig:"SERVER_PORT" default:"8080"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

// Enabled reports whether the Telegram surface should start
func (c *BotConfig) Enabled() bool {
	return c.Token != ""
}

// DelimiterRune returns the configured delimiter as a rune
func (c *DataConfig) DelimiterRune() rune {
	if c.Delimiter == "" {
		return ','
	}
	if c.Delimiter == `\t` {
		return '\t'
	}
	return []rune(c.Delimiter)[0]
}

// DSN returns the data source name for the configured driver
func (c *DBConfig) DSN() string {
	if c.Driver == DriverMySQL {
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.User, c.Password, c.Host, c.Port, c.Database)
	}
	return c.Path
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg.Data); err != nil {
		return nil, fmt.Errorf("failed to load data config: %w", err)
	}

	if err := envconfig.Process("", &cfg.Filter); err != nil {
		return nil, fmt.Errorf("failed to load filter config: %w", err)
	}

	if err := envconfig.Process("", &cfg.Fetch); err != nil {
		return nil, fmt.Errorf("failed to load fetch config: %w", err)
	}

	if err := envconfig.Process("", &cfg.DB); err != nil {
		return nil, fmt.Errorf("failed to load db config: %w", err)
	}

	if err := envconfig.Process("", &cfg.Bot); err != nil {
		return nil, fmt.Errorf("failed to load bot config: %w", err)
	}

	if err := envconfig.Process("", &cfg.Digest); err != nil {
		return nil, fmt.Errorf("failed to load digest config: %w", err)
	}

	if err := envconfig.Process("", &cfg.Server); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}

	if err := envconfig.Process("", &cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to load log config: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Data.Path == "" {
		return fmt.Errorf("DATA_PATH is required")
	}
	if len([]rune(c.Data.Delimiter)) > 1 && c.Data.Delimiter != `\t` {
		return fmt.Errorf("DATA_DELIMITER must be a single character")
	}
	if c.Filter.DefaultMinYear > c.Filter.DefaultMaxYear {
		return fmt.Errorf("FILTER_DEFAULT_MIN_YEAR must not exceed FILTER_DEFAULT_MAX_YEAR")
	}
	if c.Filter.GenreMatch != GenreMatchExploded && c.Filter.GenreMatch != GenreMatchRaw {
		return fmt.Errorf("FILTER_GENRE_MATCH must be %q or %q", GenreMatchExploded, GenreMatchRaw)
	}
	if c.Fetch.RateLimit <= 0 {
		return fmt.Errorf("FETCH_RATE_LIMIT must be positive")
	}
	if c.Fetch.MaxRetries < 0 {
		return fmt.Errorf("FETCH_MAX_RETRIES must not be negative")
	}
	switch c.DB.Driver {
	case DriverSQLite:
		if c.DB.Path == "" {
			return fmt.Errorf("DB_PATH is required for sqlite")
		}
	case DriverMySQL:
		if c.DB.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required for mysql")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q", DriverSQLite, DriverMySQL)
	}
	if c.Digest.Enabled {
		if c.Digest.Interval <= 0 {
			return fmt.Errorf("DIGEST_INTERVAL must be positive")
		}
		if c.Digest.RateLimit <= 0 {
			return fmt.Errorf("DIGEST_RATE_LIMIT must be positive")
		}
		if !c.Bot.Enabled() {
			return fmt.Errorf("BOT_TOKEN is required when DIGEST_ENABLED is set")
		}
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535")
	}
	return nil
}
