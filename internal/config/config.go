package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	Smartlead SmartleadConfig `yaml:"smartlead"`
	ReplyIO   ReplyIOConfig   `yaml:"replyio"`
	Sync      SyncConfig      `yaml:"sync"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
	// BaseURL is the externally reachable URL of this service. The sync
	// orchestrator posts self-continuations to it.
	BaseURL string `yaml:"base_url"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// In a container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	// Allow override via environment
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// DatabaseConfig holds Postgres connection configuration
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig holds the optional Redis connection used for distributed
// sync locks. When empty, locks fall back to Postgres advisory locks.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// AuthConfig holds bearer-token authentication configuration.
// ServiceRoleKey is the internal service credential used by
// self-continuations and the worker; AnonKey is the public client
// credential; JWTSecret verifies signed caller tokens.
type AuthConfig struct {
	ServiceRoleKey string `yaml:"service_role_key"`
	AnonKey        string `yaml:"anon_key"`
	JWTSecret      string `yaml:"jwt_secret"`
}

// SmartleadConfig holds Smartlead API configuration
type SmartleadConfig struct {
	BaseURL           string `yaml:"base_url"`
	TimeoutSeconds    int    `yaml:"timeout_seconds"`
	SpacingMillis     int    `yaml:"spacing_millis"`
	WebhookSecret     string `yaml:"webhook_secret"`
	SignatureEncoding string `yaml:"signature_encoding"` // "hex" or "base64"
}

// Timeout returns the configured timeout as a duration
func (c SmartleadConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Spacing returns the minimum interval between Smartlead API calls
func (c SmartleadConfig) Spacing() time.Duration {
	return time.Duration(c.SpacingMillis) * time.Millisecond
}

// ReplyIOConfig holds Reply.io API configuration. Reply.io enforces much
// stricter quotas on its stats endpoint than on list endpoints, so the two
// spacings are configured independently.
type ReplyIOConfig struct {
	BaseURL            string `yaml:"base_url"`
	TimeoutSeconds     int    `yaml:"timeout_seconds"`
	ListSpacingMillis  int    `yaml:"list_spacing_millis"`
	StatsSpacingMillis int    `yaml:"stats_spacing_millis"`
	WebhookSecret      string `yaml:"webhook_secret"`
	SignatureEncoding  string `yaml:"signature_encoding"`
}

// Timeout returns the configured timeout as a duration
func (c ReplyIOConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ListSpacing returns the minimum interval between list-level calls
func (c ReplyIOConfig) ListSpacing() time.Duration {
	return time.Duration(c.ListSpacingMillis) * time.Millisecond
}

// StatsSpacing returns the minimum interval between stats calls
func (c ReplyIOConfig) StatsSpacing() time.Duration {
	return time.Duration(c.StatsSpacingMillis) * time.Millisecond
}

// SyncConfig holds orchestrator tuning
type SyncConfig struct {
	SmartleadBudgetSeconds int `yaml:"smartlead_budget_seconds"`
	ReplyIOBudgetSeconds   int `yaml:"replyio_budget_seconds"`
	SmartleadMaxBatches    int `yaml:"smartlead_max_batches"`
	ReplyIOMaxBatches      int `yaml:"replyio_max_batches"`
	HeartbeatEvery         int `yaml:"heartbeat_every"`
	AggregateWindowDays    int `yaml:"aggregate_window_days"`
	// Scheduler settings for cmd/worker
	PollIntervalSeconds    int `yaml:"poll_interval_seconds"`
	RefreshIntervalMinutes int `yaml:"refresh_interval_minutes"`
}

// SmartleadBudget returns the wall-clock budget of one Smartlead batch
func (c SyncConfig) SmartleadBudget() time.Duration {
	return time.Duration(c.SmartleadBudgetSeconds) * time.Second
}

// ReplyIOBudget returns the wall-clock budget of one Reply.io batch
func (c SyncConfig) ReplyIOBudget() time.Duration {
	return time.Duration(c.ReplyIOBudgetSeconds) * time.Second
}

// PollInterval returns how often the worker scans for due connections
func (c SyncConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// RefreshInterval returns the maximum staleness before a connection is due
func (c SyncConfig) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalMinutes) * time.Minute
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Smartlead.BaseURL == "" {
		cfg.Smartlead.BaseURL = "https://server.smartlead.ai/api/v1"
	}
	if cfg.Smartlead.TimeoutSeconds == 0 {
		cfg.Smartlead.TimeoutSeconds = 30
	}
	if cfg.Smartlead.SpacingMillis == 0 {
		cfg.Smartlead.SpacingMillis = 250
	}
	if cfg.Smartlead.SignatureEncoding == "" {
		cfg.Smartlead.SignatureEncoding = "hex"
	}
	if cfg.ReplyIO.BaseURL == "" {
		cfg.ReplyIO.BaseURL = "https://api.reply.io"
	}
	if cfg.ReplyIO.TimeoutSeconds == 0 {
		cfg.ReplyIO.TimeoutSeconds = 30
	}
	if cfg.ReplyIO.ListSpacingMillis == 0 {
		cfg.ReplyIO.ListSpacingMillis = 3000
	}
	if cfg.ReplyIO.StatsSpacingMillis == 0 {
		cfg.ReplyIO.StatsSpacingMillis = 10500
	}
	if cfg.ReplyIO.SignatureEncoding == "" {
		cfg.ReplyIO.SignatureEncoding = "hex"
	}
	if cfg.Sync.SmartleadBudgetSeconds == 0 {
		cfg.Sync.SmartleadBudgetSeconds = 50
	}
	if cfg.Sync.ReplyIOBudgetSeconds == 0 {
		cfg.Sync.ReplyIOBudgetSeconds = 55
	}
	if cfg.Sync.SmartleadMaxBatches == 0 {
		cfg.Sync.SmartleadMaxBatches = 100
	}
	if cfg.Sync.ReplyIOMaxBatches == 0 {
		cfg.Sync.ReplyIOMaxBatches = 250
	}
	if cfg.Sync.HeartbeatEvery == 0 {
		cfg.Sync.HeartbeatEvery = 5
	}
	if cfg.Sync.AggregateWindowDays == 0 {
		cfg.Sync.AggregateWindowDays = 90
	}
	if cfg.Sync.PollIntervalSeconds == 0 {
		cfg.Sync.PollIntervalSeconds = 60
	}
	if cfg.Sync.RefreshIntervalMinutes == 0 {
		cfg.Sync.RefreshIntervalMinutes = 360
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars in production.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("BASE_URL"); v != "" {
		cfg.Server.BaseURL = v
	} else if v := os.Getenv("SUPABASE_URL"); v != "" {
		// Deployments migrated from the edge-function stack still carry
		// the old variable names.
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("SERVICE_ROLE_KEY"); v != "" {
		cfg.Auth.ServiceRoleKey = v
	} else if v := os.Getenv("SUPABASE_SERVICE_ROLE_KEY"); v != "" {
		cfg.Auth.ServiceRoleKey = v
	}
	if v := os.Getenv("ANON_KEY"); v != "" {
		cfg.Auth.AnonKey = v
	} else if v := os.Getenv("SUPABASE_ANON_KEY"); v != "" {
		cfg.Auth.AnonKey = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("SMARTLEAD_BASE_URL"); v != "" {
		cfg.Smartlead.BaseURL = v
	}
	if v := os.Getenv("SMARTLEAD_WEBHOOK_SECRET"); v != "" {
		cfg.Smartlead.WebhookSecret = v
	}
	if v := os.Getenv("REPLYIO_BASE_URL"); v != "" {
		cfg.ReplyIO.BaseURL = v
	}
	if v := os.Getenv("REPLYIO_WEBHOOK_SECRET"); v != "" {
		cfg.ReplyIO.WebhookSecret = v
	}

	return cfg, nil
}
