package wikipedia

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/soyeahso/toolchat/internal/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolOverInProcessMCP(t *testing.T) {
	client := &stubClient{page: &Page{Title: "Mercury (planet)", Extract: "Mercury is the first planet.", URL: "https://en.wikipedia.org/wiki/Mercury_(planet)"}}
	srv := mcp.NewServer(ServerName, "test", silentLog())
	require.NoError(t, Register(srv, NewAdapter(client, 10, 3, silentLog())))

	ctx := context.Background()
	sess, err := mcp.ConnectInProcess(ctx, srv, silentLog())
	require.NoError(t, err)
	defer sess.Close()

	ts, err := sess.Tools(ctx)
	require.NoError(t, err)
	require.Len(t, ts, 1)
	assert.Equal(t, ToolName, ts[0].Name())
	assert.Contains(t, ts[0].InputSchema(), `"query"`)

	out, err := ts[0].Execute(ctx, `{"query":"Mercury (planet)","lang":"fr"}`)
	require.NoError(t, err)

	var s Summary
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, "Mercury (planet)", s.Title)
	require.Len(t, client.calls, 1)
	assert.Equal(t, summaryCall{"fr", "Mercury (planet)", 3}, client.calls[0])
}

func TestToolBadArguments(t *testing.T) {
	srv := mcp.NewServer(ServerName, "test", silentLog())
	require.NoError(t, Register(srv, NewAdapter(&stubClient{}, 10, 3, silentLog())))

	ctx := context.Background()
	sess, err := mcp.ConnectInProcess(ctx, srv, silentLog())
	require.NoError(t, err)
	defer sess.Close()

	ts, err := sess.Tools(ctx)
	require.NoError(t, err)

	out, err := ts[0].Execute(ctx, `{"query": 42}`)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Equal(t, "Exception", m["error"])
}
