package config

import (
	"fmt"
	"slices"
	"sort"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	validConsoleStyles := []string{"pretty", "json"}
	if cfg.Logging.ConsoleStyle != "" && !slices.Contains(validConsoleStyles, cfg.Logging.ConsoleStyle) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.consoleStyle",
			Message: fmt.Sprintf("must be one of %v, got %q", validConsoleStyles, cfg.Logging.ConsoleStyle),
		})
	}

	if cfg.Profile != "" {
		if _, ok := cfg.Profiles[cfg.Profile]; !ok {
			issues = append(issues, ValidationIssue{
				Path:    "profile",
				Message: fmt.Sprintf("unknown profile %q", cfg.Profile),
			})
		}
	}

	// Sorted so issue order is stable across runs.
	names := make([]string, 0, len(cfg.Profiles))
	for name := range cfg.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		issues = append(issues, validateProfile(name, cfg.Profiles[name])...)
	}

	if cfg.News.MaxResults < 1 {
		issues = append(issues, ValidationIssue{
			Path:    "news.maxResults",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.News.MaxResults),
		})
	}
	if cfg.Wikipedia.MaxOptions < 1 {
		issues = append(issues, ValidationIssue{
			Path:    "wikipedia.maxOptions",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.Wikipedia.MaxOptions),
		})
	}
	if cfg.Wikipedia.Sentences < 1 || cfg.Wikipedia.Sentences > 10 {
		issues = append(issues, ValidationIssue{
			Path:    "wikipedia.sentences",
			Message: fmt.Sprintf("must be 1-10, got %d", cfg.Wikipedia.Sentences),
		})
	}

	return issues
}

func validateProfile(name string, p ProfileConfig) []ValidationIssue {
	var issues []ValidationIssue
	base := "profiles." + name

	if len(p.Agents) == 0 {
		return append(issues, ValidationIssue{Path: base + ".agents", Message: "at least one agent is required"})
	}

	seen := make(map[string]bool)
	for i, a := range p.Agents {
		path := fmt.Sprintf("%s.agents[%d]", base, i)
		if a.ID == "" {
			issues = append(issues, ValidationIssue{Path: path + ".id", Message: "id is required"})
		} else if seen[a.ID] {
			issues = append(issues, ValidationIssue{Path: path + ".id", Message: fmt.Sprintf("duplicate agent id %q", a.ID)})
		}
		seen[a.ID] = true

		if a.Model == "" {
			issues = append(issues, ValidationIssue{Path: path + ".model", Message: "model is required"})
		}
		if a.MaxTokens < 0 {
			issues = append(issues, ValidationIssue{Path: path + ".maxTokens", Message: "must not be negative"})
		}

		for j, m := range a.MCP {
			mpath := fmt.Sprintf("%s.mcp[%d]", path, j)
			switch {
			case m.Command == "" && m.URL == "":
				issues = append(issues, ValidationIssue{Path: mpath, Message: "command or url is required"})
			case m.Command != "" && m.URL != "":
				issues = append(issues, ValidationIssue{Path: mpath, Message: "command and url are mutually exclusive"})
			}
		}
	}
	return issues
}

// ValidateNewsServer checks what the news tool server needs before it starts
// serving. A missing API key is reported here instead of on the first call.
func ValidateNewsServer(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue
	if cfg.News.APIKey == "" {
		issues = append(issues, ValidationIssue{
			Path:    "news.apiKey",
			Message: "required (set NEWSAPI_KEY or news.apiKey)",
		})
	}
	if cfg.News.MaxResults < 1 {
		issues = append(issues, ValidationIssue{
			Path:    "news.maxResults",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.News.MaxResults),
		})
	}
	return issues
}

// ValidateWikipediaServer checks the wikipedia tool server's defaults. A bad
// sentences default would otherwise fail every call that omits it.
func ValidateWikipediaServer(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue
	if cfg.Wikipedia.MaxOptions < 1 {
		issues = append(issues, ValidationIssue{
			Path:    "wikipedia.maxOptions",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.Wikipedia.MaxOptions),
		})
	}
	if cfg.Wikipedia.Sentences < 1 || cfg.Wikipedia.Sentences > 10 {
		issues = append(issues, ValidationIssue{
			Path:    "wikipedia.sentences",
			Message: fmt.Sprintf("must be 1-10, got %d", cfg.Wikipedia.Sentences),
		})
	}
	return issues
}
