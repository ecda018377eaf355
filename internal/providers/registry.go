package providers

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// ClientConfig describes one configured LLM endpoint.
type ClientConfig struct {
	// Type selects the implementation: "openai" (any OpenAI-compatible
	// endpoint) or "mock".
	Type string
	// Name is the registry key; defaults to the map key it was configured
	// under.
	Name    string
	APIKey  string
	BaseURL string
	Model   string
	// RateLimit is requests per minute.
	RateLimit int
	Timeout   time.Duration
	Enabled   bool
}

// Registry holds the configured LLM clients by name. Thread-safe.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]LLMClient
	logger  *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		clients: make(map[string]LLMClient),
		logger:  logger,
	}
}

// NewRegistryFromConfig builds clients for every enabled configuration.
// Disabled entries and openai entries without an API key are skipped.
func NewRegistryFromConfig(cfgs map[string]ClientConfig, logger *slog.Logger) *Registry {
	r := NewRegistry(logger)
	for name, cfg := range cfgs {
		if cfg.Name == "" {
			cfg.Name = name
		}
		if !cfg.Enabled {
			continue
		}
		client, err := newClient(cfg, r.logger)
		if err != nil {
			r.logger.Warn("skipping LLM client", "name", cfg.Name, "reason", err)
			continue
		}
		r.Register(cfg.Name, client)
	}
	return r
}

func newClient(cfg ClientConfig, logger *slog.Logger) (LLMClient, error) {
	switch cfg.Type {
	case "openai", "":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("no API key configured")
		}
		return NewOpenAIClient(OpenAIConfig{
			Name:      cfg.Name,
			APIKey:    cfg.APIKey,
			BaseURL:   cfg.BaseURL,
			Model:     cfg.Model,
			RateLimit: cfg.RateLimit,
			Timeout:   cfg.Timeout,
		}, logger), nil
	case "mock":
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unknown client type %q", cfg.Type)
	}
}

// Register adds or replaces a client by name.
func (r *Registry) Register(name string, client LLMClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[name] = client
	r.logger.Info("registered LLM client", "name", name)
}

// Get returns a client by name.
func (r *Registry) Get(name string) (LLMClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.clients[name]
	if !ok {
		return nil, fmt.Errorf("LLM client not found: %s", name)
	}
	return client, nil
}

// Has reports whether a client is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.clients[name]
	return ok
}

// Names returns the registered client names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
