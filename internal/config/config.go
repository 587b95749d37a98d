package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Backend  BackendConfig  `yaml:"backend" envconfig:"BACKEND"`
	SMTP     SMTPConfig     `yaml:"smtp" envconfig:"SMTP"`
	Alerts   AlertsConfig   `yaml:"alerts" envconfig:"ALERTS"`
	Comments CommentsConfig `yaml:"comments" envconfig:"COMMENTS"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// BackendConfig points at the hosted table store. URL and Key are the only
// required settings in the whole configuration surface.
type BackendConfig struct {
	URL string `yaml:"url" envconfig:"SUPABASE_URL"`
	Key string `yaml:"key" envconfig:"SUPABASE_KEY"`
}

// SMTPConfig configures the outbound mail relay. All fields are optional;
// an incomplete block disables notification features without failing the
// rest of the app.
type SMTPConfig struct {
	Host      string        `yaml:"host" envconfig:"HOST"`
	Port      int           `yaml:"port" envconfig:"PORT" default:"587"`
	Username  string        `yaml:"username" envconfig:"USERNAME"`
	Password  string        `yaml:"password" envconfig:"PASSWORD"`
	Recipient string        `yaml:"recipient" envconfig:"RECIPIENT"`
	Timeout   time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"10s"`
}

// Configured reports whether the relay is fully configured; every piece is
// required before any notification is attempted.
func (s SMTPConfig) Configured() bool {
	return s.Host != "" && s.Port > 0 && s.Username != "" && s.Password != "" && s.Recipient != ""
}

// AlertsConfig holds alerting policy. The expiry window is a fixed policy
// constant by default; the user-set amount/delay thresholds arrive per
// request, not here.
type AlertsConfig struct {
	PendingStatus    string `yaml:"pending_status" envconfig:"PENDING_STATUS" default:"En attente"`
	ExpiryWindowDays int    `yaml:"expiry_window_days" envconfig:"EXPIRY_WINDOW_DAYS" default:"60"`
}

// CommentsConfig locates the embedded comment store.
type CommentsConfig struct {
	DBPath string `yaml:"db_path" envconfig:"DB_PATH" default:"comments.db"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"stdout"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// SecurityConfig contains CORS and rate limit settings.
type SecurityConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	RateLimitRPS   float64  `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" default:"50"`
	RateLimitBurst int      `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST" default:"25"`
}

// Load builds the configuration from environment variables layered over an
// optional config.yaml. Environment values win. Missing required backend
// settings fail with a message naming each missing variable.
func Load() (*Config, error) {
	return LoadFrom("config.yaml")
}

// LoadFrom is Load with an explicit config file path, used by tests.
func LoadFrom(configFile string) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(configFile); err == nil {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// envconfig overwrites only fields present in the environment, so file
	// values survive as defaults underneath it.
	if err := envconfig.Process("DASH", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.Backend.URL == "" {
		missing = append(missing, "DASH_BACKEND_SUPABASE_URL")
	}
	if c.Backend.Key == "" {
		missing = append(missing, "DASH_BACKEND_SUPABASE_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Alerts.ExpiryWindowDays < 0 {
		return fmt.Errorf("expiry window must not be negative: %d", c.Alerts.ExpiryWindowDays)
	}
	return nil
}
