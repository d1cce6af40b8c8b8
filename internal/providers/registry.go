package providers

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// GeneratorConfig describes one configured generation provider.
type GeneratorConfig struct {
	Type    string // "openai" or "openrouter"
	Model   string
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Enabled bool
}

// RegistryConfig is the full provider configuration.
type RegistryConfig struct {
	Default    string
	Generators map[string]GeneratorConfig
}

// Registry holds the configured generation providers. It is safe for
// concurrent use and supports hot reload from config changes.
type Registry struct {
	mu         sync.RWMutex
	generators map[string]Generator
	defName    string
	logger     *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		generators: make(map[string]Generator),
		logger:     slog.Default(),
	}
}

// SetLogger sets the logger used for reload diagnostics.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if logger != nil {
		r.logger = logger
	}
}

// Reload replaces the registered generators from config.
// Unknown or disabled providers are skipped with a log line, never an error,
// so a bad config entry cannot take down the server.
func (r *Registry) Reload(cfg RegistryConfig) {
	generators := make(map[string]Generator, len(cfg.Generators))

	r.mu.RLock()
	logger := r.logger
	r.mu.RUnlock()

	for name, gc := range cfg.Generators {
		if !gc.Enabled {
			continue
		}

		switch gc.Type {
		case OpenAIName:
			generators[name] = NewOpenAIClient(OpenAIConfig{
				APIKey:  gc.APIKey,
				BaseURL: gc.BaseURL,
				Model:   gc.Model,
				Timeout: gc.Timeout,
			})
		case OpenRouterName:
			generators[name] = NewOpenRouterClient(OpenRouterConfig{
				APIKey:  gc.APIKey,
				BaseURL: gc.BaseURL,
				Model:   gc.Model,
				Timeout: gc.Timeout,
			})
		default:
			logger.Warn("unknown generator type, skipping", "name", name, "type", gc.Type)
		}
	}

	r.mu.Lock()
	r.generators = generators
	r.defName = cfg.Default
	r.mu.Unlock()

	logger.Debug("generator registry reloaded", "count", len(generators))
}

// Register adds a generator directly (used in tests).
func (r *Registry) Register(name string, g Generator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generators[name] = g
	if r.defName == "" {
		r.defName = name
	}
}

// Get returns a generator by name.
func (r *Registry) Get(name string) (Generator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.generators[name]
	if !ok {
		return nil, fmt.Errorf("generator %q not registered", name)
	}
	return g, nil
}

// Default returns the configured default generator.
func (r *Registry) Default() (Generator, error) {
	r.mu.RLock()
	name := r.defName
	r.mu.RUnlock()

	if name == "" {
		return nil, fmt.Errorf("no default generator configured")
	}
	return r.Get(name)
}

// List returns the names of all registered generators, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.generators))
	for name := range r.generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
