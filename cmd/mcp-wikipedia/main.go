// Command mcp-wikipedia serves the get_wikipedia_summary tool over MCP.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/soyeahso/toolchat/internal/config"
	"github.com/soyeahso/toolchat/internal/logging"
	"github.com/soyeahso/toolchat/internal/mcp"
	"github.com/soyeahso/toolchat/internal/tools/wikipedia"
	"github.com/soyeahso/toolchat/internal/version"
	"github.com/spf13/cobra"
	"github.com/tillberg/autorestart"
)

type options struct {
	configFile string
	transport  string
	addr       string
	logLevel   string
	maxOptions int
	watch      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "mcp-wikipedia:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "mcp-wikipedia",
		Short:         "MCP server exposing Wikipedia article summaries",
		Version:       version.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, paths, err := loadConfig(opts.configFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("max-options") {
				cfg.Wikipedia.MaxOptions = opts.maxOptions
			}
			if opts.addr != "" {
				cfg.Wikipedia.Addr = opts.addr
			}
			if opts.logLevel != "" {
				cfg.Logging.Level = opts.logLevel
			}

			log, closeLog := logging.NewServer("mcp-wikipedia", paths.Logs, cfg.Logging.Level)
			defer closeLog()

			if issues := config.ValidateWikipediaServer(&cfg); len(issues) > 0 {
				for _, is := range issues {
					log.Error().Str("path", is.Path).Msg(is.Message)
				}
				return &config.ConfigError{Message: issues[0].String()}
			}

			if opts.watch && opts.transport == mcp.TransportSSE {
				go autorestart.RestartOnChange()
			}

			srv, err := newServer(cfg, wikipedia.NewAPIClient(cfg.Wikipedia.BaseURL), log)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Serve(ctx, opts.transport, cfg.Wikipedia.Addr)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configFile, "config", "", "config file (default ~/.toolchat/config.yaml)")
	f.StringVar(&opts.transport, "transport", mcp.TransportStdio, "transport: stdio or sse")
	f.StringVar(&opts.addr, "addr", "", "listen address for sse (default 127.0.0.1:8001)")
	f.StringVar(&opts.logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")
	f.IntVar(&opts.maxOptions, "max-options", config.DefaultWikiMaxOptions, "maximum disambiguation options returned")
	f.BoolVar(&opts.watch, "watch", false, "restart when the binary is rebuilt (sse only)")
	return cmd
}

func loadConfig(file string) (config.Config, config.Paths, error) {
	paths, err := config.ResolvePaths()
	if err != nil {
		return config.Config{}, paths, err
	}
	if file != "" {
		paths.Config = file
	}
	if err := config.LoadDotEnv(".env", paths.DotEnv); err != nil {
		return config.Config{}, paths, err
	}
	cfg, err := config.Load(paths.Config)
	return cfg, paths, err
}

func newServer(cfg config.Config, client wikipedia.Client, log *logging.Logger) (*mcp.Server, error) {
	srv := mcp.NewServer(wikipedia.ServerName, version.Version, log)
	adapter := wikipedia.NewAdapter(client, cfg.Wikipedia.MaxOptions, cfg.Wikipedia.Sentences, log)
	if err := wikipedia.Register(srv, adapter); err != nil {
		return nil, err
	}
	return srv, nil
}
