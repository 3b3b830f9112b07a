package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/soyeahso/toolchat/internal/agent"
	"github.com/soyeahso/toolchat/internal/config"
	"github.com/soyeahso/toolchat/internal/hooks"
	"github.com/soyeahso/toolchat/internal/llm"
	"github.com/soyeahso/toolchat/internal/logging"
	"github.com/soyeahso/toolchat/internal/mcp"
)

// profileRuntime is everything a profile needs to chat: providers, tool server
// sessions, and the agents built on them.
type profileRuntime struct {
	profile  string
	registry *llm.Registry
	sessions []*mcp.Session
	runners  []*agent.Runner
	agent    agent.Agent
	log      *logging.Logger
}

// buildRuntime connects every MCP server named by the profile and builds one
// runner per agent entry. More than one agent makes a team.
func buildRuntime(ctx context.Context, c config.Config, name string, prof config.ProfileConfig, hm *hooks.Manager, log *logging.Logger) (_ *profileRuntime, err error) {
	if len(prof.Agents) == 0 {
		return nil, &config.ConfigError{Message: fmt.Sprintf("profile %q has no agents", name)}
	}

	registry, err := llm.NewRegistryFromConfig(ctx, c.Providers, log)
	if err != nil {
		return nil, err
	}

	rt := &profileRuntime{profile: name, registry: registry, log: log}
	defer func() {
		if err != nil {
			_ = rt.Close()
		}
	}()

	store := agent.NewMemorySessionStore()
	for _, entry := range prof.Agents {
		tools := agent.NewToolRegistry()
		for _, m := range entry.MCP {
			sess, err := mcp.Connect(ctx, mcp.ServerConfig{
				Name:    m.Name,
				Command: m.Command,
				Args:    m.Args,
				Env:     m.Env,
				URL:     m.URL,
			}, log)
			if err != nil {
				return nil, fmt.Errorf("agent %s: %w", entry.ID, err)
			}
			rt.sessions = append(rt.sessions, sess)

			remote, err := sess.Tools(ctx)
			if err != nil {
				return nil, fmt.Errorf("agent %s: %w", entry.ID, err)
			}
			tools.Register(remote...)

			hm.Emit(ctx, hooks.EventServerConnect, map[string]any{
				"agent":  entry.ID,
				"server": sess.Name(),
				"tools":  len(remote),
			})
		}

		log.Debug().Str("agent", entry.ID).Int("tools", tools.Len()).Msg("agent tools registered")
		rt.runners = append(rt.runners, agent.NewRunner(agent.RunnerConfig{
			AgentID:      entry.ID,
			AgentName:    entry.Name,
			Instructions: entry.Instructions,
			Model:        entry.Model,
			Fallbacks:    entry.Fallbacks,
			MaxTokens:    entry.MaxTokens,
			Temperature:  entry.Temperature,
		}, registry, store, tools, hm, log))
	}

	if len(rt.runners) == 1 {
		rt.agent = rt.runners[0]
	} else {
		rt.agent = agent.NewTeam(rt.runners, log)
	}

	log.Info().
		Str("profile", name).
		Int("agents", len(rt.runners)).
		Int("servers", len(rt.sessions)).
		Strs("providers", registry.List()).
		Msg("runtime ready")
	return rt, nil
}

// Close stops every tool server session and releases provider clients.
func (rt *profileRuntime) Close() error {
	var errs []error
	for _, s := range rt.sessions {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("mcp %s: %w", s.Name(), err))
		}
	}
	if err := rt.registry.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
