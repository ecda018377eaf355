package prompts

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Resolver resolves prompt keys against embedded defaults and an optional
// override directory.
type Resolver struct {
	dir      string
	embedded map[string]EmbeddedPrompt
	mu       sync.RWMutex
	logger   *slog.Logger
}

// NewResolver creates a resolver. overrideDir may be empty, in which case
// only embedded defaults are served.
func NewResolver(overrideDir string, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		dir:      overrideDir,
		embedded: make(map[string]EmbeddedPrompt),
		logger:   logger,
	}
}

// Register adds an embedded prompt. Each prompt pack calls this during
// wiring.
func (r *Resolver) Register(prompt EmbeddedPrompt) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prompt.Hash == "" {
		prompt.Hash = HashText(prompt.Text)
	}
	if prompt.Variables == nil {
		prompt.Variables = ExtractVariables(prompt.Text)
	}

	r.embedded[prompt.Key] = prompt
	r.logger.Debug("registered embedded prompt", "key", prompt.Key, "vars", prompt.Variables)
}

// Resolve returns the prompt text for a key: the override file when present,
// otherwise the embedded default.
func (r *Resolver) Resolve(key string) (ResolvedPrompt, error) {
	if r.dir != "" {
		path := filepath.Join(r.dir, key+".md")
		if text, err := os.ReadFile(path); err == nil {
			return ResolvedPrompt{
				Key:        key,
				Text:       string(text),
				Variables:  ExtractVariables(string(text)),
				IsOverride: true,
			}, nil
		}
	}

	r.mu.RLock()
	embedded, ok := r.embedded[key]
	r.mu.RUnlock()
	if !ok {
		return ResolvedPrompt{}, fmt.Errorf("prompt not found: %s", key)
	}

	return ResolvedPrompt{
		Key:       key,
		Text:      embedded.Text,
		Variables: embedded.Variables,
	}, nil
}

// Render resolves a key and executes it as a template with data.
func (r *Resolver) Render(key string, data any) (string, error) {
	resolved, err := r.Resolve(key)
	if err != nil {
		return "", err
	}
	out, err := RenderTemplate(resolved.Key, resolved.Text, data)
	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", key, err)
	}
	return out, nil
}

// AllEmbedded returns the registered embedded prompts sorted by key.
func (r *Resolver) AllEmbedded() []EmbeddedPrompt {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]EmbeddedPrompt, 0, len(r.embedded))
	for _, p := range r.embedded {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
