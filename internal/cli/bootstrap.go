package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/ridgeline/caseflow/internal/cli/env"
	"github.com/ridgeline/caseflow/internal/config"
	log "github.com/ridgeline/caseflow/internal/logging"
	"github.com/ridgeline/caseflow/internal/usage"
	"github.com/ridgeline/caseflow/internal/util"
)

const defaultConfigPath = "config.yaml"

// BootstrapResult carries everything serve needs to start.
type BootstrapResult struct {
	Config         *config.Config
	ConfigFilePath string
	Audit          usage.Backend
}

// Bootstrap loads environment files, configuration and the optional
// audit backend. A missing config file is not an error; defaults plus
// environment overrides apply.
func Bootstrap(configPath string) (*BootstrapResult, error) {
	if err := godotenv.Load(); err == nil {
		log.Debugf("loaded environment from .env")
	}

	if configPath == "" {
		configPath = defaultConfigPath
	}
	configPath, err := resolveConfigPath(configPath)
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfigOptional(configPath, true)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	applyEnvOverrides(cfg)
	util.SetLogLevel(cfg)

	result := &BootstrapResult{
		Config:         cfg,
		ConfigFilePath: configPath,
	}

	if cfg.Audit.DSN != "" {
		backend, err := initAudit(cfg)
		if err != nil {
			// The audit trail is diagnostic; a broken DSN should not keep
			// the gateway down.
			log.Warnf("audit backend unavailable: %v", err)
		} else {
			result.Audit = backend
		}
	}

	return result, nil
}

// resolveConfigPath expands a leading tilde and anchors relative paths
// under WRITABLE_PATH when that is set.
func resolveConfigPath(path string) (string, error) {
	resolved, err := util.ResolveDataDir(path)
	if err != nil {
		return "", err
	}
	if base := util.WritablePath(); base != "" && !filepath.IsAbs(resolved) {
		resolved = filepath.Join(base, resolved)
	}
	return resolved, nil
}

func initAudit(cfg *config.Config) (usage.Backend, error) {
	flushInterval, _ := time.ParseDuration(cfg.Audit.FlushInterval)
	backend, err := usage.NewBackend(usage.BackendConfig{
		DSN:           cfg.Audit.DSN,
		BatchSize:     cfg.Audit.BatchSize,
		FlushInterval: flushInterval,
		RetentionDays: cfg.Audit.RetentionDays,
	})
	if err != nil {
		return nil, err
	}
	if err := backend.Start(); err != nil {
		return nil, err
	}
	return backend, nil
}

// applyEnvOverrides layers environment variables over file config.
// CASEFLOW_* keys win; common upstream keys are accepted as fallbacks.
func applyEnvOverrides(cfg *config.Config) {
	if v, ok := env.LookupEnvInt("CASEFLOW_PORT", "PORT"); ok {
		cfg.Port = v
	}
	if v, ok := env.LookupEnvBool("CASEFLOW_DEBUG"); ok {
		cfg.Debug = v
	}
	if v, ok := env.LookupEnvBool("CASEFLOW_LOG_TO_FILE"); ok {
		cfg.LoggingToFile = v
	}
	if v, ok := env.LookupEnv("CASEFLOW_AI_API_KEY", "OPENAI_API_KEY"); ok {
		cfg.AI.APIKey = v
	}
	if v, ok := env.LookupEnv("CASEFLOW_AI_BASE_URL", "OPENAI_BASE_URL"); ok {
		cfg.AI.BaseURL = v
	}
	if v, ok := env.LookupEnv("CASEFLOW_STANDARD_MODEL"); ok {
		cfg.AI.StandardModel = v
	}
	if v, ok := env.LookupEnv("CASEFLOW_PREMIUM_MODEL"); ok {
		cfg.AI.PremiumModel = v
	}
	if v, ok := env.LookupEnvInt("CASEFLOW_MAX_TOKENS"); ok && v > 0 {
		cfg.AI.MaxTokens = v
	}
	if v, ok := env.LookupEnvFloat("CASEFLOW_TEMPERATURE"); ok && v >= 0 && v <= 2 {
		cfg.AI.Temperature = v
	}
	if v, ok := env.LookupEnv("CASEFLOW_AUDIT_DSN"); ok {
		cfg.Audit.DSN = v
	}
}

// WriteDefaultConfig creates a commented config file at path unless one
// already exists.
func WriteDefaultConfig(path string, force bool) error {
	if path == "" {
		path = defaultConfigPath
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
		}
	}
	if err := os.WriteFile(path, config.GenerateDefaultConfigYAML(), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	log.Infof("wrote default config to %s", path)
	return nil
}
