// Package config loads rexseg configuration from defaults, an optional
// YAML file, and REXSEG_-prefixed environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/jackzampolin/rexseg/internal/providers"
)

// Load reads configuration. When cfgFile is empty the usual locations are
// searched and a missing file is not an error; an explicit path must exist.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Environment variables with REXSEG_ prefix,
	// e.g. REXSEG_DEFAULTS_MAX_WORKERS=8.
	v.SetEnvPrefix("REXSEG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.rexseg")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers leaf-level defaults so partial config files and
// environment overrides merge with them key by key.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("llm_providers", d.LLMProviders)
	v.SetDefault("defaults.llm_provider", d.Defaults.LLMProvider)
	v.SetDefault("defaults.oracle", d.Defaults.Oracle)
	v.SetDefault("defaults.max_workers", d.Defaults.MaxWorkers)
	v.SetDefault("segmenter.break_confidence", d.Segmenter.BreakConfidence)
	v.SetDefault("segmenter.back_matter_confidence", d.Segmenter.BackMatterConfidence)
	v.SetDefault("segmenter.oracle_timeout_seconds", d.Segmenter.OracleTimeoutSeconds)
	v.SetDefault("segmenter.oracle_retries", d.Segmenter.OracleRetries)
	v.SetDefault("title.max_length", d.Title.MaxLength)
	v.SetDefault("title.detector_confidence", d.Title.DetectorConfidence)
	v.SetDefault("schema.path", d.Schema.Path)
	v.SetDefault("prompts.dir", d.Prompts.Dir)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	pattern := regexp.MustCompile(`\$\{([^}]+)\}`)
	return pattern.ReplaceAllStringFunc(value, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// ToClientConfigs converts configured providers into registry client configs.
// It resolves all ${ENV_VAR} references in API keys.
func (c *Config) ToClientConfigs() map[string]providers.ClientConfig {
	out := make(map[string]providers.ClientConfig, len(c.LLMProviders))
	for name, p := range c.LLMProviders {
		out[name] = providers.ClientConfig{
			Type:      p.Type,
			Name:      name,
			APIKey:    ResolveEnvVars(p.APIKey),
			BaseURL:   p.BaseURL,
			Model:     p.Model,
			RateLimit: p.RateLimit,
			Timeout:   time.Duration(p.TimeoutSeconds) * time.Second,
			Enabled:   p.Enabled,
		}
	}
	return out
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# rexseg configuration
# API keys use ${ENV_VAR} syntax to reference environment variables
# Set these in your shell: export MISTRAL_API_KEY=xxx

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
