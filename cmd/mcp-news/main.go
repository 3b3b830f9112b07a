// Command mcp-news serves the get_top_headlines tool over MCP.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/soyeahso/toolchat/internal/config"
	"github.com/soyeahso/toolchat/internal/logging"
	"github.com/soyeahso/toolchat/internal/mcp"
	"github.com/soyeahso/toolchat/internal/tools/news"
	"github.com/soyeahso/toolchat/internal/version"
	"github.com/spf13/cobra"
	"github.com/tillberg/autorestart"
)

type options struct {
	configFile string
	transport  string
	addr       string
	logLevel   string
	maxResults int
	watch      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "mcp-news:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "mcp-news",
		Short:         "MCP server exposing NewsAPI top headlines",
		Version:       version.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, paths, err := loadConfig(opts.configFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("max-results") {
				cfg.News.MaxResults = opts.maxResults
			}
			if opts.addr != "" {
				cfg.News.Addr = opts.addr
			}
			if opts.logLevel != "" {
				cfg.Logging.Level = opts.logLevel
			}

			log, closeLog := logging.NewServer("mcp-news", paths.Logs, cfg.Logging.Level)
			defer closeLog()

			if issues := config.ValidateNewsServer(&cfg); len(issues) > 0 {
				for _, is := range issues {
					log.Error().Str("path", is.Path).Msg(is.Message)
				}
				return &config.ConfigError{Message: issues[0].String()}
			}

			if opts.watch && opts.transport == mcp.TransportSSE {
				go autorestart.RestartOnChange()
			}

			srv, err := newServer(cfg, news.NewAPIClient(cfg.News.APIKey, cfg.News.BaseURL), log)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Serve(ctx, opts.transport, cfg.News.Addr)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configFile, "config", "", "config file (default ~/.toolchat/config.yaml)")
	f.StringVar(&opts.transport, "transport", mcp.TransportStdio, "transport: stdio or sse")
	f.StringVar(&opts.addr, "addr", "", "listen address for sse (default 127.0.0.1:8000)")
	f.StringVar(&opts.logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")
	f.IntVar(&opts.maxResults, "max-results", config.DefaultNewsMaxResults, "maximum headlines per call")
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

func newServer(cfg config.Config, client news.Client, log *logging.Logger) (*mcp.Server, error) {
	srv := mcp.NewServer(news.ServerName, version.Version, log)
	adapter := news.NewAdapter(client, cfg.News.MaxResults, log)
	if err := news.Register(srv, adapter); err != nil {
		return nil, err
	}
	return srv, nil
}
