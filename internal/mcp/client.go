package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/client"
	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/soyeahso/toolchat/internal/agent"
	"github.com/soyeahso/toolchat/internal/logging"
	"github.com/soyeahso/toolchat/internal/version"
)

// ServerConfig points at one external MCP server. Exactly one of Command or
// URL is set.
type ServerConfig struct {
	Name    string
	Command string // may include arguments, split honouring quotes
	Args    []string
	Env     map[string]string
	URL     string // SSE endpoint
}

// Session is an initialized connection to an MCP server.
type Session struct {
	name   string
	client *client.Client
	info   mcpgo.Implementation
	log    *logging.Logger
}

// Connect starts (stdio) or dials (SSE) the server and performs the
// initialize handshake.
func Connect(ctx context.Context, cfg ServerConfig, log *logging.Logger) (*Session, error) {
	log = log.Sub("mcp.client")

	var (
		c   *client.Client
		err error
	)
	switch {
	case cfg.URL != "":
		c, err = client.NewSSEMCPClient(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("mcp %s: %w", cfg.displayName(), err)
		}
		if err := c.Start(ctx); err != nil {
			return nil, fmt.Errorf("mcp %s: starting sse transport: %w", cfg.displayName(), err)
		}

	case cfg.Command != "":
		argv, err := splitCommandLine(cfg.Command)
		if err != nil {
			return nil, fmt.Errorf("mcp %s: %w", cfg.displayName(), err)
		}
		argv = append(argv, cfg.Args...)
		// The stdio transport spawns the process here.
		c, err = client.NewStdioMCPClient(argv[0], envList(cfg.Env), argv[1:]...)
		if err != nil {
			return nil, fmt.Errorf("mcp %s: launching %s: %w", cfg.displayName(), argv[0], err)
		}
		if stderr, ok := client.GetStderr(c); ok {
			go forwardStderr(stderr, log.Sub(cfg.displayName()))
		}

	default:
		return nil, fmt.Errorf("mcp %s: command or url is required", cfg.displayName())
	}

	s, err := newSession(ctx, cfg.displayName(), c, log)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	return s, nil
}

// ConnectInProcess connects to a server living in this process.
func ConnectInProcess(ctx context.Context, srv *Server, log *logging.Logger) (*Session, error) {
	c, err := client.NewInProcessClient(srv.MCPServer())
	if err != nil {
		return nil, fmt.Errorf("mcp %s: %w", srv.name, err)
	}
	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("mcp %s: %w", srv.name, err)
	}
	s, err := newSession(ctx, srv.name, c, log.Sub("mcp.client"))
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	return s, nil
}

func newSession(ctx context.Context, name string, c *client.Client, log *logging.Logger) (*Session, error) {
	req := mcpgo.InitializeRequest{}
	req.Params.ProtocolVersion = mcpgo.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = mcpgo.Implementation{Name: "toolchat", Version: version.Version}

	res, err := c.Initialize(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("mcp %s: initialize: %w", name, err)
	}

	log.Info().
		Str("server", name).
		Str("remote", res.ServerInfo.Name).
		Str("protocol", res.ProtocolVersion).
		Msg("connected")

	return &Session{name: name, client: c, info: res.ServerInfo, log: log}, nil
}

// Name returns the configured server name.
func (s *Session) Name() string { return s.name }

// Tools lists the server's tools as agent tools.
func (s *Session) Tools(ctx context.Context) ([]agent.Tool, error) {
	res, err := s.client.ListTools(ctx, mcpgo.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("mcp %s: list tools: %w", s.name, err)
	}

	out := make([]agent.Tool, 0, len(res.Tools))
	for _, t := range res.Tools {
		out = append(out, &remoteTool{
			session:     s,
			name:        t.Name,
			description: t.Description,
			schema:      schemaString(t),
		})
	}
	return out, nil
}

// Close shuts down the connection and, for stdio, the server process.
func (s *Session) Close() error {
	return s.client.Close()
}

// remoteTool adapts one MCP tool to agent.Tool.
type remoteTool struct {
	session     *Session
	name        string
	description string
	schema      string
}

func (t *remoteTool) Name() string        { return t.name }
func (t *remoteTool) Description() string { return t.description }
func (t *remoteTool) InputSchema() string { return t.schema }

// Execute calls the remote tool. Results flagged isError are returned as
// text so the model can read the failure.
func (t *remoteTool) Execute(ctx context.Context, input string) (string, error) {
	args := map[string]any{}
	if in := strings.TrimSpace(input); in != "" && in != "null" {
		if err := json.Unmarshal([]byte(in), &args); err != nil {
			return "", fmt.Errorf("tool %s: input must be a JSON object: %w", t.name, err)
		}
	}

	req := mcpgo.CallToolRequest{}
	req.Params.Name = t.name
	req.Params.Arguments = args

	res, err := t.session.client.CallTool(ctx, req)
	if err != nil {
		return "", fmt.Errorf("tool %s: %w", t.name, err)
	}

	text := contentText(res.Content)
	if res.IsError {
		t.session.log.Warn().Str("tool", t.name).Str("result", text).Msg("tool reported an error")
	}
	return text, nil
}

func contentText(content []mcpgo.Content) string {
	var parts []string
	for _, c := range content {
		switch v := c.(type) {
		case mcpgo.TextContent:
			parts = append(parts, v.Text)
		case *mcpgo.TextContent:
			parts = append(parts, v.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func schemaString(t mcpgo.Tool) string {
	if len(t.RawInputSchema) > 0 {
		return string(t.RawInputSchema)
	}
	data, err := json.Marshal(t.InputSchema)
	if err != nil {
		return ""
	}
	return string(data)
}

func (c ServerConfig) displayName() string {
	switch {
	case c.Name != "":
		return c.Name
	case c.URL != "":
		return c.URL
	default:
		return c.Command
	}
}

func envList(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

// forwardStderr drains a child's stderr into the log; an undrained pipe
// would eventually block the child.
func forwardStderr(r io.Reader, log *logging.Logger) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		log.Debug().Str("stderr", sc.Text()).Msg("server output")
	}
}

// splitCommandLine splits a command string into words. Single and double
// quotes group words; a backslash escapes the next character outside single
// quotes.
func splitCommandLine(s string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)
	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case r == ' ' || r == '\t' || r == '\n':
			if inWord {
				args = append(args, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote in %q", quote, s)
	}
	if escaped {
		return nil, fmt.Errorf("trailing backslash in %q", s)
	}
	if inWord {
		args = append(args, cur.String())
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	return args, nil
}
