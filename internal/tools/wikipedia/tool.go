package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/soyeahso/toolchat/internal/mcp"
	"github.com/soyeahso/toolchat/internal/tools"
)

const (
	ServerName = "wikipedia_summary"
	ToolName   = "get_wikipedia_summary"
)

const toolDescription = `Fetch a summary of a topic from Wikipedia.
Returns {"title", "summary", "url"}. When the query is ambiguous the result is
{"error": "DisambiguationError", "message", "options"}; pick one of the options and call again.
A missing article yields {"error": "PageError"}.`

// Register adds get_wikipedia_summary to s.
func Register(s *mcp.Server, a *Adapter) error {
	return s.AddTool(ToolName, toolDescription, &Request{}, func(ctx context.Context, args json.RawMessage) string {
		req := DefaultRequest()
		if err := json.Unmarshal(args, &req); err != nil {
			return tools.JSON(tools.NewFailure(tools.KindOther, fmt.Sprintf("invalid arguments: %v", err)))
		}
		return tools.JSON(a.GetSummary(ctx, req))
	})
}
