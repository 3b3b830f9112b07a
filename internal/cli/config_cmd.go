package cli

import (
	"fmt"
	"slices"
	"sort"

	"github.com/soyeahso/toolchat/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and validate configuration",
	}

	cmd.AddCommand(newConfigValidateCmd())
	cmd.AddCommand(newConfigPathCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigProfilesCmd())

	return cmd
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration for problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			issues := config.Validate(&cfg)
			if len(issues) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", paths.Config)
				return nil
			}
			for _, is := range issues {
				fmt.Fprintln(cmd.OutOrStdout(), is.String())
			}
			return &config.ConfigError{Message: fmt.Sprintf("%d validation issue(s)", len(issues))}
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), paths.Config)
		},
	}
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with credentials redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := yaml.Marshal(redacted(cfg))
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newConfigProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List the available chat profiles",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			names := make([]string, 0, len(cfg.Profiles))
			for name := range cfg.Profiles {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				p := cfg.Profiles[name]
				def := ""
				if name == cfg.Profile {
					def = " (default)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %-14s %d agent(s)  %s%s\n", name, len(p.Agents), p.Description, def)
			}
		},
	}
}

// redacted returns a copy of c with every credential masked.
func redacted(c config.Config) config.Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "********"
	}
	c.Providers.OpenAI.APIKey = mask(c.Providers.OpenAI.APIKey)
	c.Providers.Anthropic.APIKey = mask(c.Providers.Anthropic.APIKey)
	c.Providers.Gemini.APIKey = mask(c.Providers.Gemini.APIKey)
	c.News.APIKey = mask(c.News.APIKey)

	// MCP env blocks usually carry API keys. Profiles share maps and slices
	// with the live config, so copy before masking.
	profiles := make(map[string]config.ProfileConfig, len(c.Profiles))
	for name, p := range c.Profiles {
		p.Agents = slices.Clone(p.Agents)
		for i := range p.Agents {
			a := &p.Agents[i]
			a.MCP = slices.Clone(a.MCP)
			for j := range a.MCP {
				m := &a.MCP[j]
				if m.Env == nil {
					continue
				}
				env := make(map[string]string, len(m.Env))
				for k, v := range m.Env {
					env[k] = mask(v)
				}
				m.Env = env
			}
		}
		profiles[name] = p
	}
	c.Profiles = profiles
	return c
}
