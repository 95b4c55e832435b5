// Package config provides configuration management for the caseflow server.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultStandardModel is the model used when no override is configured.
// The premium tier falls back to the standard tier's model.
const DefaultStandardModel = "gpt-4o-mini"

// Config is the root configuration for the caseflow server.
type Config struct {
	// Port is the HTTP listen port.
	Port int `yaml:"port" json:"port"`

	// Debug enables debug-level logging.
	Debug bool `yaml:"debug" json:"debug"`

	// LoggingToFile mirrors logs to a rotated file under ./logs.
	LoggingToFile bool `yaml:"logging-to-file" json:"logging-to-file"`

	// APIKeys lists credentials accepted on inbound requests.
	// Empty means authentication is handled upstream (reverse proxy) and
	// requests are keyed by origin only.
	APIKeys []string `yaml:"api-keys,omitempty" json:"api-keys,omitempty"`

	// AI configures the narrative gateway and its upstream model service.
	AI AIConfig `yaml:"ai" json:"ai"`

	// Audit configures the optional usage audit trail.
	Audit AuditConfig `yaml:"audit" json:"audit"`
}

// AIConfig holds upstream model service settings and usage governance.
type AIConfig struct {
	// APIKey authenticates against the upstream model service.
	// Empty disables upstream calls; all requests fall back locally.
	APIKey string `yaml:"api-key,omitempty" json:"api-key,omitempty"`

	// BaseURL is the upstream endpoint root (OpenAI-compatible).
	BaseURL string `yaml:"base-url,omitempty" json:"base-url,omitempty"`

	// StandardModel overrides the model used for the standard tier.
	StandardModel string `yaml:"standard-model,omitempty" json:"standard-model,omitempty"`

	// PremiumModel overrides the model used for the premium tier.
	// Falls back to the standard tier's model when unset.
	PremiumModel string `yaml:"premium-model,omitempty" json:"premium-model,omitempty"`

	// MaxTokens caps completion length per upstream call.
	MaxTokens int `yaml:"max-tokens,omitempty" json:"max-tokens,omitempty"`

	// Temperature is the sampling temperature for upstream calls.
	Temperature float64 `yaml:"temperature,omitempty" json:"temperature,omitempty"`

	// TimeoutSeconds bounds a single upstream call.
	TimeoutSeconds int `yaml:"timeout-seconds,omitempty" json:"timeout-seconds,omitempty"`

	// CacheCapacity is the maximum number of cached responses.
	CacheCapacity int `yaml:"cache-capacity,omitempty" json:"cache-capacity,omitempty"`

	// Quotas holds the daily usage limits. Fixed after process start.
	Quotas QuotaConfig `yaml:"quotas" json:"quotas"`
}

// QuotaConfig defines daily admission limits at global and per-client scope.
type QuotaConfig struct {
	GlobalDailyRequests    int64 `yaml:"global-daily-requests,omitempty" json:"global-daily-requests,omitempty"`
	GlobalDailyTokens      int64 `yaml:"global-daily-tokens,omitempty" json:"global-daily-tokens,omitempty"`
	PerClientDailyRequests int64 `yaml:"per-client-daily-requests,omitempty" json:"per-client-daily-requests,omitempty"`
	PerClientDailyTokens   int64 `yaml:"per-client-daily-tokens,omitempty" json:"per-client-daily-tokens,omitempty"`
}

// AuditConfig configures the optional persisted usage audit trail.
// The audit trail is diagnostic only; admission decisions never read it.
type AuditConfig struct {
	// DSN is the database connection string (sqlite://... or postgres://...).
	// Empty disables the audit trail.
	DSN string `yaml:"dsn,omitempty" json:"dsn,omitempty"`

	// BatchSize is the number of records batched per write.
	BatchSize int `yaml:"batch-size,omitempty" json:"batch-size,omitempty"`

	// FlushInterval is how often pending records are flushed (duration string).
	FlushInterval string `yaml:"flush-interval,omitempty" json:"flush-interval,omitempty"`

	// RetentionDays is how many days of audit records to keep.
	RetentionDays int `yaml:"retention-days,omitempty" json:"retention-days,omitempty"`
}

// NewDefaultConfig returns a Config with production-sane defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Port: 8742,
		AI: AIConfig{
			BaseURL:        "https://api.openai.com/v1",
			MaxTokens:      1200,
			Temperature:    0.4,
			TimeoutSeconds: 45,
			CacheCapacity:  200,
			Quotas: QuotaConfig{
				GlobalDailyRequests:    1000,
				GlobalDailyTokens:      500000,
				PerClientDailyRequests: 100,
				PerClientDailyTokens:   50000,
			},
		},
		Audit: AuditConfig{
			BatchSize:     100,
			FlushInterval: "5s",
			RetentionDays: 30,
		},
	}
}

// LoadConfig reads and parses the config file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := NewDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.sanitize()
	return cfg, nil
}

// LoadConfigOptional is like LoadConfig but tolerates a missing file when
// allowMissing is true, returning defaults instead.
func LoadConfigOptional(path string, allowMissing bool) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		if allowMissing && errors.Is(err, os.ErrNotExist) {
			return NewDefaultConfig(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// sanitize normalizes fields and clamps nonsensical values back to defaults.
func (cfg *Config) sanitize() {
	def := NewDefaultConfig()

	if cfg.Port <= 0 || cfg.Port > 65535 {
		cfg.Port = def.Port
	}

	keys := make([]string, 0, len(cfg.APIKeys))
	for _, k := range cfg.APIKeys {
		if trimmed := strings.TrimSpace(k); trimmed != "" {
			keys = append(keys, trimmed)
		}
	}
	cfg.APIKeys = keys

	cfg.AI.APIKey = strings.TrimSpace(cfg.AI.APIKey)
	cfg.AI.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.AI.BaseURL), "/")
	if cfg.AI.BaseURL == "" {
		cfg.AI.BaseURL = def.AI.BaseURL
	}
	cfg.AI.StandardModel = strings.TrimSpace(cfg.AI.StandardModel)
	cfg.AI.PremiumModel = strings.TrimSpace(cfg.AI.PremiumModel)
	if cfg.AI.MaxTokens <= 0 {
		cfg.AI.MaxTokens = def.AI.MaxTokens
	}
	if cfg.AI.Temperature < 0 || cfg.AI.Temperature > 2 {
		cfg.AI.Temperature = def.AI.Temperature
	}
	if cfg.AI.TimeoutSeconds <= 0 {
		cfg.AI.TimeoutSeconds = def.AI.TimeoutSeconds
	}
	if cfg.AI.CacheCapacity <= 0 {
		cfg.AI.CacheCapacity = def.AI.CacheCapacity
	}

	q := &cfg.AI.Quotas
	dq := def.AI.Quotas
	if q.GlobalDailyRequests <= 0 {
		q.GlobalDailyRequests = dq.GlobalDailyRequests
	}
	if q.GlobalDailyTokens <= 0 {
		q.GlobalDailyTokens = dq.GlobalDailyTokens
	}
	if q.PerClientDailyRequests <= 0 {
		q.PerClientDailyRequests = dq.PerClientDailyRequests
	}
	if q.PerClientDailyTokens <= 0 {
		q.PerClientDailyTokens = dq.PerClientDailyTokens
	}

	cfg.Audit.DSN = strings.TrimSpace(cfg.Audit.DSN)
	if cfg.Audit.BatchSize <= 0 {
		cfg.Audit.BatchSize = def.Audit.BatchSize
	}
	if cfg.Audit.RetentionDays <= 0 {
		cfg.Audit.RetentionDays = def.Audit.RetentionDays
	}
	if _, err := time.ParseDuration(cfg.Audit.FlushInterval); err != nil {
		cfg.Audit.FlushInterval = def.Audit.FlushInterval
	}
}

// UpstreamConfigured reports whether an upstream model service is usable.
func (cfg *Config) UpstreamConfigured() bool {
	return cfg != nil && cfg.AI.APIKey != ""
}

// UpstreamTimeout returns the per-call upstream timeout as a duration.
func (cfg *Config) UpstreamTimeout() time.Duration {
	return time.Duration(cfg.AI.TimeoutSeconds) * time.Second
}

// GenerateDefaultConfigYAML renders the default config as a commented
// starting point for first-run installs.
func GenerateDefaultConfigYAML() []byte {
	return []byte(`# caseflow server configuration
port: 8742
debug: false
logging-to-file: false

# Credentials accepted on inbound requests. Leave empty when running
# behind an authenticating reverse proxy.
api-keys: []

ai:
  # Upstream model service credential. Empty disables upstream calls and
  # serves locally generated narratives only.
  api-key: ""
  base-url: "https://api.openai.com/v1"
  standard-model: "` + DefaultStandardModel + `"
  premium-model: ""
  max-tokens: 1200
  temperature: 0.4
  timeout-seconds: 45
  cache-capacity: 200
  quotas:
    global-daily-requests: 1000
    global-daily-tokens: 500000
    per-client-daily-requests: 100
    per-client-daily-tokens: 50000

audit:
  # Optional usage audit trail: sqlite:///path/to/audit.db or postgres://...
  dsn: ""
  batch-size: 100
  flush-interval: 5s
  retention-days: 30
`)
}
