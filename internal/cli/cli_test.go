package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/soyeahso/toolchat/internal/config"
	"github.com/soyeahso/toolchat/internal/hooks"
	"github.com/soyeahso/toolchat/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the root command with an isolated home directory.
func runCLI(t *testing.T, configYAML string, args ...string) (string, error) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("TOOLCHAT_HOME", home)
	t.Setenv("TOOLCHAT_PROFILE", "")
	t.Setenv("TOOLCHAT_LOG_LEVEL", "silent")
	if configYAML != "" {
		require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte(configYAML), 0o600))
	}
	t.Cleanup(func() { cfgFile, logLevel = "", "" })

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := runCLI(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "toolchat")
}

func TestConfigPathCmd(t *testing.T) {
	out, err := runCLI(t, "", "config", "path")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "config.yaml"))
}

func TestConfigValidateDefaults(t *testing.T) {
	out, err := runCLI(t, "", "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, ": ok")
}

func TestConfigValidateReportsIssues(t *testing.T) {
	out, err := runCLI(t, "logging:\n  consoleStyle: fancy\n", "config", "validate")
	require.Error(t, err)
	var cfgErr *config.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, out, "logging.consoleStyle")
}

func TestConfigShowRedacts(t *testing.T) {
	out, err := runCLI(t, "news:\n  apiKey: secret-key\n", "config", "show")
	require.NoError(t, err)
	assert.NotContains(t, out, "secret-key")
	assert.Contains(t, out, "********")
	assert.Contains(t, out, "multi-tools")
}

func TestConfigShowRedactsMCPEnv(t *testing.T) {
	yml := `profiles:
  mine:
    agents:
      - id: news
        model: ollama/llama3.2
        mcp:
          - command: mcp-news
            env:
              NEWSAPI_KEY: env-secret
`
	out, err := runCLI(t, yml, "config", "show")
	require.NoError(t, err)
	assert.NotContains(t, out, "env-secret")
	assert.Contains(t, out, "NEWSAPI_KEY:")
	assert.Contains(t, out, "********")

	// The live config keeps the real value.
	assert.Equal(t, "env-secret", cfg.Profiles["mine"].Agents[0].MCP[0].Env["NEWSAPI_KEY"])
}

func TestConfigProfilesCmd(t *testing.T) {
	out, err := runCLI(t, "", "config", "profiles")
	require.NoError(t, err)
	assert.Contains(t, out, "airbnb-openai")
	assert.Contains(t, out, "multi-tools")
	assert.Contains(t, out, "news-ollama")
	assert.Contains(t, out, "(default)")
}

func TestChatUnknownProfile(t *testing.T) {
	_, err := runCLI(t, "", "chat", "--profile", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown profile "nope"`)
}

func TestBuildRuntimeRejectsEmptyProfile(t *testing.T) {
	log := logging.New(nil, "silent")
	_, err := buildRuntime(context.Background(), config.Defaults(), "empty", config.ProfileConfig{}, hooks.NewManager(log), log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no agents")
}

func TestBuildRuntimeSingleAgentWithoutTools(t *testing.T) {
	log := logging.New(nil, "silent")
	prof := config.ProfileConfig{Agents: []config.AgentEntry{{ID: "plain", Model: "ollama/llama3.2"}}}
	rt, err := buildRuntime(context.Background(), config.Defaults(), "plain", prof, hooks.NewManager(log), log)
	require.NoError(t, err)
	defer rt.Close()

	require.Len(t, rt.runners, 1)
	assert.Same(t, rt.runners[0], rt.agent)
}

func TestBuildRuntimeTeam(t *testing.T) {
	log := logging.New(nil, "silent")
	prof := config.ProfileConfig{Agents: []config.AgentEntry{
		{ID: "a", Model: "ollama/llama3.2"},
		{ID: "b", Model: "ollama/llama3.2"},
	}}
	rt, err := buildRuntime(context.Background(), config.Defaults(), "pair", prof, hooks.NewManager(log), log)
	require.NoError(t, err)
	defer rt.Close()

	assert.Len(t, rt.runners, 2)
	assert.NotSame(t, rt.runners[0], rt.agent)
}

func TestBuildRuntimeConnectFailure(t *testing.T) {
	log := logging.New(nil, "silent")
	prof := config.ProfileConfig{Agents: []config.AgentEntry{{
		ID:    "broken",
		Model: "ollama/llama3.2",
		MCP:   []config.MCPServerEntry{{Name: "missing"}},
	}}}
	_, err := buildRuntime(context.Background(), config.Defaults(), "broken", prof, hooks.NewManager(log), log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agent broken:")
}

func TestToolHooksVerbose(t *testing.T) {
	log := logging.New(nil, "silent")
	hm := hooks.NewManager(log)
	var out bytes.Buffer
	registerHooks(hm, &out, true, log)

	ctx := context.Background()
	hm.Emit(ctx, hooks.EventToolStart, map[string]any{"tool": "get_top_headlines", "input": `{"country":"us"}`})
	hm.Emit(ctx, hooks.EventToolEnd, map[string]any{"tool": "get_top_headlines", "duration": 1500 * time.Millisecond})
	hm.Emit(ctx, hooks.EventToolEnd, map[string]any{"tool": "get_wikipedia_summary", "error": "timeout"})

	assert.Equal(t,
		"🔧 get_top_headlines({\"country\":\"us\"})\n"+
			"🔧 get_top_headlines done in 1.5s\n"+
			"🔧 get_wikipedia_summary failed: timeout\n",
		out.String())
}

func TestToolHooksQuiet(t *testing.T) {
	log := logging.New(nil, "silent")
	hm := hooks.NewManager(log)
	var out bytes.Buffer
	registerHooks(hm, &out, false, log)

	hm.Emit(context.Background(), hooks.EventToolStart, map[string]any{"tool": "x"})
	hm.Emit(context.Background(), hooks.EventToolEnd, map[string]any{"tool": "x"})
	assert.Empty(t, out.String())
}

func TestHooksLogRunsAndChat(t *testing.T) {
	var logs bytes.Buffer
	log := logging.New(&logs, "trace")
	hm := hooks.NewManager(log)
	var out bytes.Buffer
	registerHooks(hm, &out, false, log)

	ctx := context.Background()
	hm.Emit(ctx, hooks.EventChatStart, nil)
	hm.Emit(ctx, hooks.EventBeforeAgentRun, map[string]any{"agent": "news", "input": "hi"})
	hm.Emit(ctx, hooks.EventAfterAgentRun, map[string]any{"agent": "news", "duration": time.Second, "error": "boom"})
	hm.Emit(ctx, hooks.EventAfterAgentRun, map[string]any{"agent": "news", "duration": time.Second})
	hm.Emit(ctx, hooks.EventChatEnd, map[string]any{"turns": 2})

	got := logs.String()
	assert.Contains(t, got, "chat started")
	assert.Contains(t, got, "agent run failed")
	assert.Contains(t, got, "boom")
	assert.Contains(t, got, "agent run done")
	assert.Contains(t, got, "chat ended")
	assert.Empty(t, out.String())
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "Fetch top headlines.", firstLine("\nFetch top headlines.\nMore detail."))
	assert.Equal(t, "one", firstLine("one"))
}
