package config

import (
	"errors"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandSensitiveFields processes environment variable references in
// credential fields so keys can be stored as ${ENV_VAR}.
func expandSensitiveFields(cfg *Config) {
	cfg.Providers.OpenAI.APIKey = expandEnvVars(cfg.Providers.OpenAI.APIKey)
	cfg.Providers.Anthropic.APIKey = expandEnvVars(cfg.Providers.Anthropic.APIKey)
	cfg.Providers.Gemini.APIKey = expandEnvVars(cfg.Providers.Gemini.APIKey)
	cfg.News.APIKey = expandEnvVars(cfg.News.APIKey)
	for name, p := range cfg.Profiles {
		for i := range p.Agents {
			for j := range p.Agents[i].MCP {
				env := p.Agents[i].MCP[j].Env
				for k, v := range env {
					env[k] = expandEnvVars(v)
				}
			}
		}
		cfg.Profiles[name] = p
	}
}

// LoadDotEnv loads KEY=VALUE files into the process environment. Variables
// that are already set win. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return &ConfigError{Message: "failed to load " + f + ": " + err.Error()}
		}
	}
	return nil
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. Missing files produce defaults only. Profiles declared in
// the file are added to (or replace) the built-in ones.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	expandSensitiveFields(&cfg)
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.Profile == "" {
		cfg.Profile = DefaultProfile
	}
	if cfg.News.BaseURL == "" {
		cfg.News.BaseURL = DefaultNewsBaseURL
	}
	if cfg.News.MaxResults == 0 {
		cfg.News.MaxResults = DefaultNewsMaxResults
	}
	if cfg.News.Addr == "" {
		cfg.News.Addr = DefaultNewsAddr
	}
	if cfg.Wikipedia.BaseURL == "" {
		cfg.Wikipedia.BaseURL = DefaultWikiBaseURL
	}
	if cfg.Wikipedia.MaxOptions == 0 {
		cfg.Wikipedia.MaxOptions = DefaultWikiMaxOptions
	}
	if cfg.Wikipedia.Sentences == 0 {
		cfg.Wikipedia.Sentences = DefaultWikiSentences
	}
	if cfg.Wikipedia.Addr == "" {
		cfg.Wikipedia.Addr = DefaultWikiAddr
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.ConsoleStyle == "" {
		cfg.Logging.ConsoleStyle = "pretty"
	}
}

// applyEnvOverrides reads TOOLCHAT_* variables and the well-known provider
// credential variables. Credentials from the environment only fill gaps; the
// TOOLCHAT_* variables always win.
func applyEnvOverrides(cfg *Config) {
	fill := func(dst *string, envName string) {
		if *dst == "" {
			*dst = os.Getenv(envName)
		}
	}
	fill(&cfg.News.APIKey, "NEWSAPI_KEY")
	fill(&cfg.Providers.OpenAI.APIKey, "OPENAI_API_KEY")
	fill(&cfg.Providers.OpenAI.BaseURL, "OPENAI_BASE_URL")
	fill(&cfg.Providers.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	fill(&cfg.Providers.Gemini.APIKey, "GEMINI_API_KEY")
	fill(&cfg.Providers.Ollama.Host, "OLLAMA_HOST")

	if v := os.Getenv("TOOLCHAT_PROFILE"); v != "" {
		cfg.Profile = v
	}
	if v := os.Getenv("TOOLCHAT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("TOOLCHAT_NEWS_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.News.MaxResults = n
		}
	}
}
