package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
port: 9001
debug: true
api-keys: ["secret-1", "  ", "secret-2"]
ai:
  api-key: sk-test
  base-url: "https://llm.internal/v1/"
  standard-model: gpt-4o-mini
  premium-model: gpt-4o
  quotas:
    per-client-daily-requests: 25
audit:
  dsn: "sqlite:///tmp/audit.db"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != 9001 || !cfg.Debug {
		t.Errorf("port/debug = %d/%v", cfg.Port, cfg.Debug)
	}
	if len(cfg.APIKeys) != 2 {
		t.Errorf("api keys = %v, blank entry not dropped", cfg.APIKeys)
	}
	if cfg.AI.BaseURL != "https://llm.internal/v1" {
		t.Errorf("base url = %q, trailing slash kept", cfg.AI.BaseURL)
	}
	if cfg.AI.Quotas.PerClientDailyRequests != 25 {
		t.Errorf("per-client requests = %d", cfg.AI.Quotas.PerClientDailyRequests)
	}
	// Unset quota fields keep defaults.
	if cfg.AI.Quotas.GlobalDailyRequests != 1000 {
		t.Errorf("global requests = %d, want default", cfg.AI.Quotas.GlobalDailyRequests)
	}
	if !cfg.UpstreamConfigured() {
		t.Error("upstream not configured with api key set")
	}
}

func TestLoadConfigOptionalMissingFile(t *testing.T) {
	cfg, err := LoadConfigOptional(filepath.Join(t.TempDir(), "absent.yaml"), true)
	if err != nil {
		t.Fatalf("LoadConfigOptional: %v", err)
	}
	if cfg.Port != 8742 {
		t.Errorf("port = %d, want default", cfg.Port)
	}
	if cfg.UpstreamConfigured() {
		t.Error("upstream configured without credential")
	}

	if _, err := LoadConfigOptional(filepath.Join(t.TempDir(), "absent.yaml"), false); err == nil {
		t.Error("missing file allowed with allowMissing=false")
	}
}

func TestSanitizeClampsBadValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
port: -1
ai:
  max-tokens: -5
  temperature: 9.5
  timeout-seconds: 0
  cache-capacity: -2
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	def := NewDefaultConfig()
	if cfg.Port != def.Port {
		t.Errorf("port = %d", cfg.Port)
	}
	if cfg.AI.MaxTokens != def.AI.MaxTokens {
		t.Errorf("max tokens = %d", cfg.AI.MaxTokens)
	}
	if cfg.AI.Temperature != def.AI.Temperature {
		t.Errorf("temperature = %v", cfg.AI.Temperature)
	}
	if cfg.AI.CacheCapacity != def.AI.CacheCapacity {
		t.Errorf("cache capacity = %d", cfg.AI.CacheCapacity)
	}
}

func TestParseDSN(t *testing.T) {
	tests := []struct {
		name        string
		dsn         string
		wantBackend string
		wantErr     bool
		wantNil     bool
	}{
		{"empty disables", "", "", false, true},
		{"sqlite path", "sqlite:///var/lib/caseflow/audit.db", "sqlite", false, false},
		{"sqlite with params", "sqlite://data/audit.db?cache=shared", "sqlite", false, false},
		{"postgres", "postgres://user:pass@db:5432/caseflow", "postgres", false, false},
		{"postgresql scheme", "postgresql://db/caseflow", "postgres", false, false},
		{"unknown scheme", "mysql://db/caseflow", "", true, false},
		{"sqlite without path", "sqlite://", "", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := ParseDSN(tt.dsn)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantNil {
				if parsed != nil {
					t.Fatalf("parsed = %+v, want nil", parsed)
				}
				return
			}
			if parsed.Backend != tt.wantBackend {
				t.Errorf("backend = %q, want %q", parsed.Backend, tt.wantBackend)
			}
		})
	}
}
