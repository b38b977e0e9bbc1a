// Package llm sends classification prompts to a remote text-generation model.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	ProviderOllama    = "ollama"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"
)

// Generator returns the raw text a model produced for prompt. Every error is
// a *CallError.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config selects and configures a backend.
type Config struct {
	Provider string

	OllamaURL   string
	OllamaModel string

	AnthropicAPIKey  string
	AnthropicModel   string
	AnthropicBaseURL string

	// Timeout bounds the underlying HTTP client. Callers still bound each
	// call with a context deadline.
	Timeout time.Duration

	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// Factory builds a Generator from cfg.
type Factory func(cfg Config) (Generator, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a backend available to New under name.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = f
}

// Providers lists the registered backend names plus ProviderNone.
func Providers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry)+1)
	for name := range registry {
		names = append(names, name)
	}
	names = append(names, ProviderNone)
	sort.Strings(names)
	return names
}

// New builds the configured backend. An empty provider means ollama.
// ProviderNone yields a nil Generator, which disables the remote stage.
func New(cfg Config) (Generator, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if name == "" {
		name = ProviderOllama
	}
	if name == ProviderNone {
		return nil, nil //nolint:nilnil // nil Generator means disabled
	}

	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}

	gen, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("create %s generator: %w", name, err)
	}
	return gen, nil
}
