package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	HTTP     HTTPConfig     `yaml:"http" envconfig:"HTTP"`
	Weather  WeatherConfig  `yaml:"weather" envconfig:"WEATHER"`
	Currency CurrencyConfig `yaml:"currency" envconfig:"CURRENCY"`
	Mail     MailConfig     `yaml:"mail" envconfig:"MAIL"`
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"text" validate:"oneof=text json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/taskninja.log"`
}

// HTTPConfig controls the shared outbound HTTP client.
type HTTPConfig struct {
	Timeout   time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"10s"`
	Retries   int           `yaml:"retries" envconfig:"RETRIES" default:"2" validate:"min=0,max=10"`
	RateLimit float64       `yaml:"rate_limit" envconfig:"RATE_LIMIT" default:"2"`
	RateBurst int           `yaml:"rate_burst" envconfig:"RATE_BURST" default:"4"`
	UserAgent string        `yaml:"user_agent" envconfig:"USER_AGENT" default:"taskninja/1.0"`
}

// WeatherConfig configures the weather client.
type WeatherConfig struct {
	BaseURL  string        `yaml:"base_url" envconfig:"BASE_URL" default:"https://api.openweathermap.org/data/2.5"`
	APIKey   string        `yaml:"api_key" envconfig:"API_KEY"`
	Units    string        `yaml:"units" envconfig:"UNITS" default:"metric" validate:"oneof=metric imperial standard"`
	CacheTTL time.Duration `yaml:"cache_ttl" envconfig:"CACHE_TTL" default:"10m"`
}

// CurrencyConfig configures the exchange-rate client.
type CurrencyConfig struct {
	PrimaryURL  string        `yaml:"primary_url" envconfig:"PRIMARY_URL" default:"https://api.exchangerate.host"`
	FallbackURL string        `yaml:"fallback_url" envconfig:"FALLBACK_URL" default:"https://www.floatrates.com"`
	CacheTTL    time.Duration `yaml:"cache_ttl" envconfig:"CACHE_TTL" default:"5m"`
}

// MailConfig holds SMTP settings for the email sender.
type MailConfig struct {
	Host     string `yaml:"host" envconfig:"HOST" default:"smtp.gmail.com"`
	Port     int    `yaml:"port" envconfig:"PORT" default:"587" validate:"min=1,max=65535"`
	Username string `yaml:"username" envconfig:"USERNAME"`
	Password string `yaml:"password" envconfig:"PASSWORD"`
	From     string `yaml:"from" envconfig:"FROM" validate:"omitempty,email"`
}

// ServerConfig contains the dashboard HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8050" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	KPIInterval     time.Duration `yaml:"kpi_interval" envconfig:"KPI_INTERVAL" default:"5s"`
}

// PathsConfig allows overriding the base directory for all generated files.
type PathsConfig struct {
	BaseDir string `yaml:"base_dir" envconfig:"BASE_DIR"`
}

// Load builds the configuration: defaults, then the YAML file at configPath
// if it exists, then TASKNINJA_* environment overrides.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	// envconfig applies struct defaults even when no variables are set
	if err := envconfig.Process("TASKNINJA", cfg); err != nil {
		return nil, fmt.Errorf("failed to process defaults: %w", err)
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	// Environment wins over the file
	if err := envconfig.Process("TASKNINJA", cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against the struct validation tags.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Default returns a configuration with defaults applied and no file or
// environment input. Used by tests and as a fallback when Load fails.
func Default() *Config {
	cfg := &Config{}
	_ = envconfig.Process("taskninja_defaults_unused", cfg)
	return cfg
}
