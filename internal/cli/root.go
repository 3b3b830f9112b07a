package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/soyeahso/toolchat/internal/config"
	"github.com/soyeahso/toolchat/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string

	// loaded at init time
	paths config.Paths
	cfg   config.Config
	log   *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toolchat",
		Short: "Chat with LLM agents that use MCP tools",
		Long: "toolchat runs a console chat with one agent or a team of agents. " +
			"Agents reach their tools (news headlines, Wikipedia, or any MCP server) over the Model Context Protocol.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}
			if err := config.LoadDotEnv(".env", paths.DotEnv); err != nil {
				return err
			}
			cfg, err = config.Load(paths.Config)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Logging.Level = logLevel
			}
			log = newLogger(cfg.Logging)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.toolchat/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newToolsCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

func newLogger(lc config.LoggingConfig) *logging.Logger {
	if lc.ConsoleStyle == "json" {
		return logging.New(os.Stderr, lc.Level)
	}
	return logging.New(nil, lc.Level)
}

// validateConfig logs every issue and fails when there are any.
func validateConfig() error {
	issues := config.Validate(&cfg)
	if len(issues) == 0 {
		return nil
	}
	for _, is := range issues {
		log.Error().Str("path", is.Path).Msg(is.Message)
	}
	return &config.ConfigError{Message: fmt.Sprintf("%d validation issue(s) in %s", len(issues), paths.Config)}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}
