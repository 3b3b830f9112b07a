// Package mcp bridges toolchat to the Model Context Protocol: it hosts tool
// adapters as MCP servers and connects agents to external MCP servers.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	stdlog "log"
	"os"

	"github.com/invopop/jsonschema"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/soyeahso/toolchat/internal/logging"
)

// Transports a Server can be served over.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// ToolHandler handles one tool call. args is the raw JSON object the caller
// sent. The returned text becomes the tool result; handlers report failures
// inside the text rather than as errors.
type ToolHandler func(ctx context.Context, args json.RawMessage) string

// Server hosts tools over MCP.
type Server struct {
	name string
	srv  *server.MCPServer
	log  *logging.Logger
}

// NewServer creates an MCP server with tool support.
func NewServer(name, version string, log *logging.Logger) *Server {
	return &Server{
		name: name,
		srv: server.NewMCPServer(name, version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
		log: log.Sub("mcp.server"),
	}
}

// MCPServer exposes the underlying server, e.g. for in-process clients.
func (s *Server) MCPServer() *server.MCPServer { return s.srv }

// AddTool registers a tool. Its input schema is reflected from input, which
// should be a pointer to the tool's request struct.
func (s *Server) AddTool(name, description string, input any, handler ToolHandler) error {
	schema, err := ReflectSchema(input)
	if err != nil {
		return fmt.Errorf("tool %s: %w", name, err)
	}

	tool := mcpgo.NewToolWithRawSchema(name, description, schema)
	s.srv.AddTool(tool, func(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
		args, err := json.Marshal(req.Params.Arguments)
		if err != nil || string(args) == "null" {
			args = []byte("{}")
		}
		s.log.Debug().Str("tool", name).RawJSON("args", args).Msg("tool call")
		return mcpgo.NewToolResultText(handler(ctx, args)), nil
	})

	s.log.Debug().Str("tool", name).Msg("registered tool")
	return nil
}

// ReflectSchema builds a JSON Schema object for a request struct.
func ReflectSchema(v any) (json.RawMessage, error) {
	r := &jsonschema.Reflector{
		DoNotReference:             true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  true,
		RequiredFromJSONSchemaTags: true,
	}
	schema := r.Reflect(v)
	schema.Version = ""
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshaling schema: %w", err)
	}
	return data, nil
}

// Serve runs the server until ctx is cancelled or the transport closes.
// stdio uses the process's stdin/stdout; sse listens on addr.
func (s *Server) Serve(ctx context.Context, transport, addr string) error {
	switch transport {
	case "", TransportStdio:
		s.log.Info().Str("server", s.name).Msg("serving over stdio")
		stdio := server.NewStdioServer(s.srv)
		stdio.SetErrorLogger(stdlog.New(s.log.Zerolog(), "", 0))
		err := stdio.Listen(ctx, os.Stdin, os.Stdout)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err

	case TransportSSE:
		sse := server.NewSSEServer(s.srv, server.WithBaseURL("http://"+addr))
		errCh := make(chan error, 1)
		go func() {
			s.log.Info().Str("server", s.name).Str("addr", addr).Msg("serving over sse")
			errCh <- sse.Start(addr)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			s.log.Info().Msg("shutting down sse server")
			return sse.Shutdown(context.Background())
		}

	default:
		return fmt.Errorf("unknown transport %q (want %s or %s)", transport, TransportStdio, TransportSSE)
	}
}
