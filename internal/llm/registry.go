package llm

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/soyeahso/toolchat/internal/config"
	"github.com/soyeahso/toolchat/internal/logging"
)

// ProviderError is returned when an LLM provider fails.
type ProviderError struct {
	Provider string
	Message  string
	Code     int // HTTP-like status code (401, 429, 500, etc.)
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("%s: %d %s", e.Provider, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Registry manages LLM provider clients and resolves model references to clients.
type Registry struct {
	mu       sync.RWMutex
	clients  map[string]Client // provider name → client
	aliases  map[string]string // model name prefix → provider name
	fallback string            // default provider name
	log      *logging.Logger
}

// NewRegistry creates an empty provider registry.
func NewRegistry(log *logging.Logger) *Registry {
	return &Registry{
		clients: make(map[string]Client),
		aliases: make(map[string]string),
		log:     log.Sub("llm.registry"),
	}
}

// Register adds a client under the given provider name.
func (r *Registry) Register(name string, client Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[name] = client
	r.log.Debug().Str("provider", name).Msg("registered LLM provider")
}

// Alias maps model names starting with prefix to a provider.
// e.g., Alias("gpt-", "openai") sends "gpt-4o-mini" to the openai provider.
func (r *Registry) Alias(prefix, provider string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases[prefix] = provider
}

// SetFallback sets the default provider used when no model/provider match is found.
func (r *Registry) SetFallback(provider string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = provider
}

// Resolve returns the Client for a model reference and the model id to send
// to it. Resolution order: "provider/model" prefix → bare provider name
// (provider default model) → longest alias prefix → fallback.
func (r *Registry) Resolve(ref string) (Client, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if provider, model, ok := strings.Cut(ref, "/"); ok {
		if c, ok := r.clients[provider]; ok {
			return c, model, nil
		}
		if _, known := defaultAliases[provider]; known {
			return nil, "", fmt.Errorf("LLM provider %q is not configured (model %q)", provider, ref)
		}
	}

	if c, ok := r.clients[ref]; ok {
		return c, "", nil
	}

	best := ""
	for prefix := range r.aliases {
		if strings.HasPrefix(ref, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best != "" {
		if c, ok := r.clients[r.aliases[best]]; ok {
			return c, ref, nil
		}
	}

	if r.fallback != "" {
		if c, ok := r.clients[r.fallback]; ok {
			return c, ref, nil
		}
	}

	return nil, "", fmt.Errorf("no LLM provider for model %q", ref)
}

// List returns all registered provider names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.clients))
	for n := range r.clients {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Close releases providers that hold connections.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var firstErr error
	for name, c := range r.clients {
		if cl, ok := c.(io.Closer); ok {
			if err := cl.Close(); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("closing %s: %w", name, err)
			}
		}
	}
	return firstErr
}

var defaultAliases = map[string][]string{
	"openai":    {"gpt-", "o1", "o3", "o4", "chatgpt-"},
	"anthropic": {"claude-"},
	"gemini":    {"gemini-"},
	"ollama":    {"llama", "mistral", "qwen", "phi", "gemma", "deepseek"},
}

// NewRegistryFromConfig registers every provider that has what it needs to
// run. Ollama needs no credentials and is always registered. The fallback is
// openai when configured, otherwise ollama.
func NewRegistryFromConfig(ctx context.Context, cfg config.ProvidersConfig, log *logging.Logger) (*Registry, error) {
	reg := NewRegistry(log)

	if cfg.OpenAI.APIKey != "" || cfg.OpenAI.BaseURL != "" {
		reg.Register("openai", NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL))
	}
	if cfg.Anthropic.APIKey != "" {
		reg.Register("anthropic", NewAnthropicClient(cfg.Anthropic.APIKey, cfg.Anthropic.BaseURL))
	}
	if cfg.Gemini.APIKey != "" {
		gc, err := NewGeminiClient(ctx, cfg.Gemini.APIKey)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		reg.Register("gemini", gc)
	}
	oc, err := NewOllamaClient(cfg.Ollama.Host)
	if err != nil {
		return nil, fmt.Errorf("ollama: %w", err)
	}
	reg.Register("ollama", oc)

	for provider, prefixes := range defaultAliases {
		for _, p := range prefixes {
			reg.Alias(p, provider)
		}
	}

	if _, ok := reg.clients["openai"]; ok {
		reg.SetFallback("openai")
	} else {
		reg.SetFallback("ollama")
	}

	reg.log.Info().Strs("providers", reg.List()).Str("fallback", reg.fallback).Msg("LLM providers ready")
	return reg, nil
}
