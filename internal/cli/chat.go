package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soyeahso/toolchat/internal/chat"
	"github.com/soyeahso/toolchat/internal/hooks"
	"github.com/soyeahso/toolchat/internal/logging"
	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	var (
		profile string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat",
		Long: "Start an interactive chat with the agents of a profile. " +
			"Type 'exit' or 'quit' to leave; Ctrl-C interrupts.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateConfig(); err != nil {
				return err
			}
			name, prof, err := cfg.ActiveProfile(profile)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			hm := hooks.NewManager(log)
			registerHooks(hm, cmd.OutOrStdout(), verbose, log)

			rt, err := buildRuntime(ctx, cfg, name, prof, hm, log)
			if err != nil {
				return err
			}
			defer func() {
				if err := rt.Close(); err != nil {
					log.Warn().Err(err).Msg("closing runtime")
				}
			}()

			return chat.NewLoop(rt.agent, cmd.InOrStdin(), cmd.OutOrStdout(), hm, log).Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&profile, "profile", "p", "", "profile to run (default from config)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print tool calls as they happen")
	return cmd
}

// registerHooks logs chat, agent, tool and server activity. With verbose
// set, tool calls are also printed to out.
func registerHooks(hm *hooks.Manager, out io.Writer, verbose bool, log *logging.Logger) {
	clog := log.Sub("chat")
	tlog := log.Sub("tools")

	hm.On(hooks.EventChatStart, "log", func(ctx context.Context, p hooks.Payload) error {
		clog.Debug().Msg("chat started")
		return nil
	})

	hm.On(hooks.EventChatEnd, "log", func(ctx context.Context, p hooks.Payload) error {
		clog.Debug().Any("turns", p.Data["turns"]).Msg("chat ended")
		return nil
	})

	hm.On(hooks.EventBeforeAgentRun, "log", func(ctx context.Context, p hooks.Payload) error {
		clog.Trace().Any("agent", p.Data["agent"]).Any("input", p.Data["input"]).Msg("agent run")
		return nil
	})

	hm.On(hooks.EventAfterAgentRun, "log", func(ctx context.Context, p hooks.Payload) error {
		d, _ := p.Data["duration"].(time.Duration)
		ev := clog.Debug().Any("agent", p.Data["agent"]).Dur("duration", d)
		if msg, ok := p.Data["error"].(string); ok {
			ev.Str("error", msg).Msg("agent run failed")
			return nil
		}
		ev.Msg("agent run done")
		return nil
	})

	hm.On(hooks.EventServerConnect, "log", func(ctx context.Context, p hooks.Payload) error {
		tlog.Debug().
			Any("agent", p.Data["agent"]).
			Any("server", p.Data["server"]).
			Any("tools", p.Data["tools"]).
			Msg("tool server connected")
		return nil
	})

	hm.On(hooks.EventToolStart, "log", func(ctx context.Context, p hooks.Payload) error {
		tlog.Debug().Any("agent", p.Data["agent"]).Any("tool", p.Data["tool"]).Msg("tool call")
		if verbose {
			_, err := fmt.Fprintf(out, "🔧 %v(%v)\n", p.Data["tool"], p.Data["input"])
			return err
		}
		return nil
	})

	hm.On(hooks.EventToolEnd, "log", func(ctx context.Context, p hooks.Payload) error {
		d, _ := p.Data["duration"].(time.Duration)
		ev := tlog.Debug().Any("agent", p.Data["agent"]).Any("tool", p.Data["tool"]).Dur("duration", d)
		if msg, ok := p.Data["error"].(string); ok {
			ev.Str("error", msg).Msg("tool failed")
			if verbose {
				_, err := fmt.Fprintf(out, "🔧 %v failed: %s\n", p.Data["tool"], msg)
				return err
			}
			return nil
		}
		ev.Msg("tool done")
		if verbose {
			_, err := fmt.Fprintf(out, "🔧 %v done in %s\n", p.Data["tool"], d.Round(time.Millisecond))
			return err
		}
		return nil
	})
}
