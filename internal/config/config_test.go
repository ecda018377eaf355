package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	mistral, ok := cfg.GetLLMProvider("mistral")
	if !ok {
		t.Fatal("expected default mistral provider")
	}
	if mistral.APIKey != "${MISTRAL_API_KEY}" {
		t.Errorf("expected mistral API key placeholder, got %s", mistral.APIKey)
	}
	if !mistral.Enabled {
		t.Error("expected default mistral provider to be enabled")
	}
	if cfg.Defaults.LLMProvider != "mistral" {
		t.Errorf("expected default llm_provider mistral, got %s", cfg.Defaults.LLMProvider)
	}
	if cfg.Defaults.Oracle != "llm" {
		t.Errorf("expected default oracle llm, got %s", cfg.Defaults.Oracle)
	}
	if cfg.Segmenter.OracleRetries != 2 {
		t.Errorf("expected 2 oracle retries, got %d", cfg.Segmenter.OracleRetries)
	}
	if cfg.Title.MaxLength != 150 {
		t.Errorf("expected title max length 150, got %d", cfg.Title.MaxLength)
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Run("resolves environment variable", func(t *testing.T) {
		t.Setenv("TEST_API_KEY", "secret123")

		result := ResolveEnvVars("${TEST_API_KEY}")
		if result != "secret123" {
			t.Errorf("expected secret123, got %s", result)
		}
	})

	t.Run("returns empty for missing env var", func(t *testing.T) {
		result := ResolveEnvVars("${DEFINITELY_NOT_SET_12345}")
		if result != "" {
			t.Errorf("expected empty string, got %s", result)
		}
	})

	t.Run("leaves literal values unchanged", func(t *testing.T) {
		result := ResolveEnvVars("literal-value")
		if result != "literal-value" {
			t.Errorf("expected literal-value, got %s", result)
		}
	})
}

func TestLoad(t *testing.T) {
	t.Run("defaults when no config file exists", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())

		cfg, err := Load("")
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}
		if cfg.Defaults.MaxWorkers != 4 {
			t.Errorf("expected default max_workers 4, got %d", cfg.Defaults.MaxWorkers)
		}
		if _, ok := cfg.GetLLMProvider("mistral"); !ok {
			t.Error("expected default mistral provider")
		}
	})

	t.Run("loads from config file", func(t *testing.T) {
		configFile := filepath.Join(t.TempDir(), "config.yaml")
		configContent := `
llm_providers:
  corp:
    type: openai
    model: gpt-4o-mini
    api_key: "${CORP_API_KEY}"
    base_url: "https://llm.corp.example/v1"
    enabled: true
segmenter:
  break_confidence: high
`
		if err := os.WriteFile(configFile, []byte(configContent), 0o644); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}

		cfg, err := Load(configFile)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		corp, ok := cfg.GetLLMProvider("corp")
		if !ok {
			t.Fatal("expected corp provider from file")
		}
		if corp.Model != "gpt-4o-mini" {
			t.Errorf("expected model gpt-4o-mini, got %s", corp.Model)
		}
		if cfg.Segmenter.BreakConfidence != "high" {
			t.Errorf("expected break_confidence high, got %s", cfg.Segmenter.BreakConfidence)
		}
	})

	t.Run("leaf defaults survive a partial file", func(t *testing.T) {
		configFile := filepath.Join(t.TempDir(), "config.yaml")
		configContent := `
segmenter:
  break_confidence: high
`
		if err := os.WriteFile(configFile, []byte(configContent), 0o644); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}

		cfg, err := Load(configFile)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}
		if cfg.Segmenter.BreakConfidence != "high" {
			t.Errorf("expected break_confidence high, got %s", cfg.Segmenter.BreakConfidence)
		}
		if cfg.Segmenter.OracleRetries != 2 {
			t.Errorf("expected default oracle_retries 2, got %d", cfg.Segmenter.OracleRetries)
		}
		if cfg.Title.MaxLength != 150 {
			t.Errorf("expected default title max_length 150, got %d", cfg.Title.MaxLength)
		}
	})

	t.Run("providers in a file replace the default set", func(t *testing.T) {
		configFile := filepath.Join(t.TempDir(), "config.yaml")
		configContent := `
llm_providers:
  corp:
    type: openai
    enabled: true
`
		if err := os.WriteFile(configFile, []byte(configContent), 0o644); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}

		cfg, err := Load(configFile)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}
		if _, ok := cfg.GetLLMProvider("mistral"); ok {
			t.Error("expected file providers to replace the default set")
		}
		if _, ok := cfg.GetLLMProvider("corp"); !ok {
			t.Error("expected corp provider from file")
		}
	})

	t.Run("environment overrides file and defaults", func(t *testing.T) {
		t.Setenv("REXSEG_DEFAULTS_MAX_WORKERS", "8")
		t.Setenv("REXSEG_SEGMENTER_BREAK_CONFIDENCE", "high")

		configFile := filepath.Join(t.TempDir(), "config.yaml")
		configContent := `
segmenter:
  break_confidence: low
`
		if err := os.WriteFile(configFile, []byte(configContent), 0o644); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}

		cfg, err := Load(configFile)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}
		if cfg.Defaults.MaxWorkers != 8 {
			t.Errorf("expected max_workers 8 from env, got %d", cfg.Defaults.MaxWorkers)
		}
		if cfg.Segmenter.BreakConfidence != "high" {
			t.Errorf("expected break_confidence high from env, got %s", cfg.Segmenter.BreakConfidence)
		}
	})

	t.Run("explicit missing file errors", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		if err == nil {
			t.Fatal("expected error for missing explicit config file")
		}
	})
}

func TestToClientConfigs(t *testing.T) {
	t.Setenv("TEST_CORP_KEY", "sk-corp-123")

	cfg := &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"corp": {
				Type:           "openai",
				Model:          "gpt-4o-mini",
				APIKey:         "${TEST_CORP_KEY}",
				BaseURL:        "https://llm.corp.example/v1",
				RateLimit:      30,
				TimeoutSeconds: 45,
				Enabled:        true,
			},
		},
	}

	clients := cfg.ToClientConfigs()
	corp, ok := clients["corp"]
	if !ok {
		t.Fatal("expected corp client config")
	}
	if corp.Name != "corp" {
		t.Errorf("expected name corp, got %s", corp.Name)
	}
	if corp.APIKey != "sk-corp-123" {
		t.Errorf("expected resolved API key, got %s", corp.APIKey)
	}
	if corp.Timeout != 45*time.Second {
		t.Errorf("expected timeout 45s, got %s", corp.Timeout)
	}
	if corp.RateLimit != 30 {
		t.Errorf("expected rate limit 30, got %d", corp.RateLimit)
	}
}

func TestEnabledLLMProviders(t *testing.T) {
	cfg := &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"on":  {Type: "openai", Enabled: true},
			"off": {Type: "openai", Enabled: false},
		},
	}

	enabled := cfg.EnabledLLMProviders()
	if len(enabled) != 1 {
		t.Fatalf("expected 1 enabled provider, got %d", len(enabled))
	}
	if _, ok := enabled["on"]; !ok {
		t.Error("expected provider on to be enabled")
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	if err := WriteDefault(path); err != nil {
		t.Fatalf("failed to write default config: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read written config: %v", err)
	}
	if !strings.HasPrefix(string(data), "# rexseg configuration") {
		t.Error("expected header comment in written config")
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load written config: %v", err)
	}

	want := DefaultConfig()
	if cfg.Defaults != want.Defaults {
		t.Errorf("defaults round-trip mismatch: got %+v, want %+v", cfg.Defaults, want.Defaults)
	}
	if cfg.Segmenter != want.Segmenter {
		t.Errorf("segmenter round-trip mismatch: got %+v, want %+v", cfg.Segmenter, want.Segmenter)
	}
	if got := cfg.LLMProviders["mistral"]; got != want.LLMProviders["mistral"] {
		t.Errorf("mistral provider round-trip mismatch: got %+v, want %+v", got, want.LLMProviders["mistral"])
	}
}
