package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

const (
	DefaultProfile        = "news-ollama"
	DefaultNewsMaxResults = 10
	DefaultNewsAddr       = "127.0.0.1:8000"
	DefaultWikiMaxOptions = 10
	DefaultWikiSentences  = 3
	DefaultWikiAddr       = "127.0.0.1:8001"
	DefaultNewsBaseURL    = "https://newsapi.org"
	DefaultWikiBaseURL    = "https://{lang}.wikipedia.org/w/api.php"
)

const (
	toolOnRequestPrompt = "You are a helpful assistant. Only call the tool if the user asks for it."
	toolAccessPrompt    = "You are a helpful assistant with access to a tool. Call it when the user asks for it."
)

// Defaults returns a Config with sensible defaults applied.
// The built-in profiles mirror the three original chat drivers.
func Defaults() Config {
	return Config{
		Profile: DefaultProfile,
		Profiles: map[string]ProfileConfig{
			"news-ollama": {
				Description: "single local agent with the news tool",
				Agents: []AgentEntry{{
					ID:           "news",
					Name:         "News",
					Instructions: toolOnRequestPrompt,
					Model:        "ollama/llama3.2",
					MCP:          []MCPServerEntry{{Name: "daily_news", Command: "mcp-news"}},
				}},
			},
			"airbnb-openai": {
				Description: "single OpenAI agent with the Airbnb MCP server",
				Agents: []AgentEntry{{
					ID:           "airbnb",
					Name:         "Airbnb",
					Instructions: toolOnRequestPrompt,
					Model:        "gpt-4o-mini",
					MCP: []MCPServerEntry{{
						Name:    "airbnb",
						Command: "npx @openbnb/mcp-server-airbnb --ignore-robots-txt",
					}},
				}},
			},
			"multi-tools": {
				Description: "news and Wikipedia agents working as a team",
				Agents: []AgentEntry{
					{
						ID:           "news",
						Name:         "News",
						Instructions: toolAccessPrompt,
						Model:        "gpt-4o-mini",
						MCP:          []MCPServerEntry{{Name: "daily_news", Command: "mcp-news"}},
					},
					{
						ID:           "wikipedia",
						Name:         "Wikipedia",
						Instructions: toolAccessPrompt,
						Model:        "gpt-4o-mini",
						MCP:          []MCPServerEntry{{Name: "wikipedia_summary", Command: "mcp-wikipedia"}},
					},
				},
			},
		},
		News: NewsConfig{
			BaseURL:    DefaultNewsBaseURL,
			MaxResults: DefaultNewsMaxResults,
			Addr:       DefaultNewsAddr,
		},
		Wikipedia: WikipediaConfig{
			BaseURL:    DefaultWikiBaseURL,
			MaxOptions: DefaultWikiMaxOptions,
			Sentences:  DefaultWikiSentences,
			Addr:       DefaultWikiAddr,
		},
		Logging: LoggingConfig{
			Level:        "info",
			ConsoleStyle: "pretty",
		},
	}
}

// ActiveProfile returns the named profile, falling back to cfg.Profile when
// name is empty.
func (c *Config) ActiveProfile(name string) (string, ProfileConfig, error) {
	if name == "" {
		name = c.Profile
	}
	p, ok := c.Profiles[name]
	if !ok {
		return name, ProfileConfig{}, &ConfigError{Message: fmt.Sprintf("unknown profile %q", name)}
	}
	return name, p, nil
}
