package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/soyeahso/toolchat/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func silentLog() *logging.Logger {
	return logging.New(nil, "silent")
}

func TestSplitCommandLine(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"mcp-news", []string{"mcp-news"}},
		{"npx @openbnb/mcp-server-airbnb --ignore-robots-txt", []string{"npx", "@openbnb/mcp-server-airbnb", "--ignore-robots-txt"}},
		{`python "my server.py"  --flag`, []string{"python", "my server.py", "--flag"}},
		{`sh -c 'echo "hi there"'`, []string{"sh", "-c", `echo "hi there"`}},
		{`a\ b c`, []string{"a b", "c"}},
		{`cmd ""`, []string{"cmd", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := splitCommandLine(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitCommandLineErrors(t *testing.T) {
	for _, in := range []string{"", "   ", `npx "unterminated`, `trailing\`} {
		_, err := splitCommandLine(in)
		assert.Error(t, err, in)
	}
}

func TestEnvList(t *testing.T) {
	assert.Equal(t, []string{"A=1", "B=2"}, envList(map[string]string{"B": "2", "A": "1"}))
	assert.Empty(t, envList(nil))
}

type echoRequest struct {
	Text  string `json:"text" jsonschema:"required,description=Text to echo"`
	Times int    `json:"times,omitempty"`
}

func TestReflectSchema(t *testing.T) {
	raw, err := ReflectSchema(&echoRequest{})
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(raw, &schema))
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []any{"text"}, schema["required"])
	props := schema["properties"].(map[string]any)
	assert.Contains(t, props, "text")
	assert.Contains(t, props, "times")
	assert.NotContains(t, schema, "$ref")
}

func TestInProcessRoundTrip(t *testing.T) {
	srv := NewServer("echo", "test", silentLog())
	err := srv.AddTool("echo", "Echo text back", &echoRequest{}, func(_ context.Context, args json.RawMessage) string {
		var req echoRequest
		if err := json.Unmarshal(args, &req); err != nil {
			return `{"error":"bad args"}`
		}
		return req.Text
	})
	require.NoError(t, err)

	ctx := context.Background()
	sess, err := ConnectInProcess(ctx, srv, silentLog())
	require.NoError(t, err)
	defer sess.Close()
	assert.Equal(t, "echo", sess.Name())

	tools, err := sess.Tools(ctx)
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "echo", tools[0].Name())
	assert.Equal(t, "Echo text back", tools[0].Description())
	assert.Contains(t, tools[0].InputSchema(), `"text"`)

	out, err := tools[0].Execute(ctx, `{"text":"hello"}`)
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	_, err = tools[0].Execute(ctx, `not json`)
	assert.Error(t, err)
}

func TestConnectRequiresTarget(t *testing.T) {
	_, err := Connect(context.Background(), ServerConfig{Name: "empty"}, silentLog())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command or url is required")
}

func TestServeUnknownTransport(t *testing.T) {
	srv := NewServer("x", "test", silentLog())
	err := srv.Serve(context.Background(), "carrier-pigeon", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown transport")
}
