package config

// Config is the root configuration for toolchat.
type Config struct {
	Profile   string                   `yaml:"profile,omitempty"` // default chat profile
	Profiles  map[string]ProfileConfig `yaml:"profiles,omitempty"`
	Providers ProvidersConfig          `yaml:"providers,omitempty"`
	News      NewsConfig               `yaml:"news,omitempty"`
	Wikipedia WikipediaConfig          `yaml:"wikipedia,omitempty"`
	Logging   LoggingConfig            `yaml:"logging,omitempty"`
}

// ProfileConfig is one chat driver variant: the agents it runs and the
// tool servers each agent can reach.
type ProfileConfig struct {
	Description string       `yaml:"description,omitempty"`
	Agents      []AgentEntry `yaml:"agents"`
}

// AgentEntry defines a single agent.
type AgentEntry struct {
	ID           string           `yaml:"id"`
	Name         string           `yaml:"name,omitempty"`
	Instructions string           `yaml:"instructions,omitempty"` // system prompt
	Model        string           `yaml:"model"`                  // "gpt-4o-mini", "ollama/llama3.2", ...
	Fallbacks    []string         `yaml:"fallbacks,omitempty"`
	MaxTokens    int              `yaml:"maxTokens,omitempty"`
	Temperature  *float64         `yaml:"temperature,omitempty"`
	MCP          []MCPServerEntry `yaml:"mcp,omitempty"`
}

// MCPServerEntry points an agent at an external tool process.
// Exactly one of Command or URL must be set.
type MCPServerEntry struct {
	Name    string            `yaml:"name,omitempty"`
	Command string            `yaml:"command,omitempty"` // may contain args: "npx pkg --flag"
	Args    []string          `yaml:"args,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`
	URL     string            `yaml:"url,omitempty"` // SSE endpoint, e.g. http://127.0.0.1:8000/sse
}

// ProvidersConfig holds LLM provider credentials and endpoints.
type ProvidersConfig struct {
	OpenAI    OpenAIConfig    `yaml:"openai,omitempty"`
	Anthropic AnthropicConfig `yaml:"anthropic,omitempty"`
	Gemini    GeminiConfig    `yaml:"gemini,omitempty"`
	Ollama    OllamaConfig    `yaml:"ollama,omitempty"`
}

// OpenAIConfig configures the OpenAI provider.
type OpenAIConfig struct {
	APIKey  string `yaml:"apiKey,omitempty"`
	BaseURL string `yaml:"baseUrl,omitempty"`
}

// AnthropicConfig configures the Anthropic provider.
type AnthropicConfig struct {
	APIKey  string `yaml:"apiKey,omitempty"`
	BaseURL string `yaml:"baseUrl,omitempty"`
}

// GeminiConfig configures the Google Gemini provider.
type GeminiConfig struct {
	APIKey string `yaml:"apiKey,omitempty"`
}

// OllamaConfig configures the local Ollama provider.
type OllamaConfig struct {
	Host string `yaml:"host,omitempty"` // default http://localhost:11434
}

// NewsConfig configures the news tool server.
type NewsConfig struct {
	APIKey     string `yaml:"apiKey,omitempty"`
	BaseURL    string `yaml:"baseUrl,omitempty"`
	MaxResults int    `yaml:"maxResults,omitempty"`
	Addr       string `yaml:"addr,omitempty"` // SSE listen address
}

// WikipediaConfig configures the Wikipedia tool server.
type WikipediaConfig struct {
	BaseURL    string `yaml:"baseUrl,omitempty"` // "https://{lang}.wikipedia.org/w/api.php"
	MaxOptions int    `yaml:"maxOptions,omitempty"`
	Sentences  int    `yaml:"sentences,omitempty"`
	Addr       string `yaml:"addr,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"`        // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "json"
}
