package config

// Config holds rexseg configuration.
// Loaded from ./config.yaml or ~/.rexseg/config.yaml unless a path is given.
type Config struct {
	LLMProviders map[string]LLMProviderCfg `mapstructure:"llm_providers" yaml:"llm_providers"`
	Defaults     DefaultsCfg               `mapstructure:"defaults" yaml:"defaults"`
	Segmenter    SegmenterCfg              `mapstructure:"segmenter" yaml:"segmenter"`
	Title        TitleCfg                  `mapstructure:"title" yaml:"title"`
	Schema       SchemaCfg                 `mapstructure:"schema" yaml:"schema"`
	Prompts      PromptsCfg                `mapstructure:"prompts" yaml:"prompts"`
	Logging      LoggingCfg                `mapstructure:"logging" yaml:"logging"`
}

// LLMProviderCfg configures an OpenAI-compatible chat endpoint.
type LLMProviderCfg struct {
	Type           string `mapstructure:"type" yaml:"type"`                       // "openai" or "mock"
	Model          string `mapstructure:"model" yaml:"model"`                     // Model name
	APIKey         string `mapstructure:"api_key" yaml:"api_key"`                 // API key (supports ${ENV_VAR} syntax)
	BaseURL        string `mapstructure:"base_url" yaml:"base_url"`               // API base URL
	RateLimit      int    `mapstructure:"rate_limit" yaml:"rate_limit"`           // Requests per minute
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"` // HTTP timeout
	Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultsCfg specifies default selections for segmentation runs.
type DefaultsCfg struct {
	LLMProvider string `mapstructure:"llm_provider" yaml:"llm_provider"` // Default LLM provider name
	Oracle      string `mapstructure:"oracle" yaml:"oracle"`             // "llm" or "heuristic"
	MaxWorkers  int    `mapstructure:"max_workers" yaml:"max_workers"`   // Max documents processed concurrently
}

// SegmenterCfg tunes state machine decisions and oracle calls.
type SegmenterCfg struct {
	BreakConfidence      string `mapstructure:"break_confidence" yaml:"break_confidence"`             // Minimum confidence to honor a break verdict
	BackMatterConfidence string `mapstructure:"back_matter_confidence" yaml:"back_matter_confidence"` // Minimum confidence to enter back matter
	OracleTimeoutSeconds int    `mapstructure:"oracle_timeout_seconds" yaml:"oracle_timeout_seconds"` // Per-judgment timeout
	OracleRetries        int    `mapstructure:"oracle_retries" yaml:"oracle_retries"`                 // Retries per judgment (0 disables)
}

// TitleCfg tunes title extraction.
type TitleCfg struct {
	MaxLength          int    `mapstructure:"max_length" yaml:"max_length"`                   // Max title length in runes
	DetectorConfidence string `mapstructure:"detector_confidence" yaml:"detector_confidence"` // Minimum confidence to accept a detector candidate
}

// SchemaCfg selects the output JSON schema.
type SchemaCfg struct {
	Path string `mapstructure:"path" yaml:"path"` // Schema file path (empty = embedded default)
}

// PromptsCfg selects prompt overrides for the LLM oracle.
type PromptsCfg struct {
	Dir string `mapstructure:"dir" yaml:"dir"` // Prompt override directory (empty = embedded defaults)
}

// LoggingCfg configures the logger.
type LoggingCfg struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // text or json
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"mistral": {
				Type:           "openai",
				Model:          "mistral-medium-latest",
				APIKey:         "${MISTRAL_API_KEY}",
				BaseURL:        "https://api.mistral.ai/v1",
				RateLimit:      60,
				TimeoutSeconds: 60,
				Enabled:        true,
			},
		},
		Defaults: DefaultsCfg{
			LLMProvider: "mistral",
			Oracle:      "llm",
			MaxWorkers:  4,
		},
		Segmenter: SegmenterCfg{
			BreakConfidence:      "medium",
			BackMatterConfidence: "low",
			OracleTimeoutSeconds: 60,
			OracleRetries:        2,
		},
		Title: TitleCfg{
			MaxLength:          150,
			DetectorConfidence: "medium",
		},
		Logging: LoggingCfg{
			Level:  "info",
			Format: "text",
		},
	}
}

// GetLLMProvider returns an LLM provider config by name.
func (c *Config) GetLLMProvider(name string) (LLMProviderCfg, bool) {
	cfg, ok := c.LLMProviders[name]
	return cfg, ok
}

// EnabledLLMProviders returns all enabled LLM providers.
func (c *Config) EnabledLLMProviders() map[string]LLMProviderCfg {
	result := make(map[string]LLMProviderCfg)
	for name, cfg := range c.LLMProviders {
		if cfg.Enabled {
			result[name] = cfg
		}
	}
	return result
}
