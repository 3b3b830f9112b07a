package news

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/soyeahso/toolchat/internal/mcp"
	"github.com/soyeahso/toolchat/internal/tools"
)

// ServerName is the MCP server name of the news tool.
const ServerName = "daily_news"

// ToolName is the name the tool is registered under.
const ToolName = "get_top_headlines"

const toolDescription = `Fetch top headlines from NewsAPI.
Returns a list of headlines with title, description, url, source and publishedAt.
country is a 2-letter code (default "us") and cannot be combined with sources; when sources is given, country is ignored.
category is one of business, entertainment, general, health, science, sports, technology.`

// Register adds get_top_headlines to s.
func Register(s *mcp.Server, a *Adapter) error {
	return s.AddTool(ToolName, toolDescription, &Request{}, func(ctx context.Context, args json.RawMessage) string {
		req := DefaultRequest()
		if err := json.Unmarshal(args, &req); err != nil {
			return tools.JSON(tools.MessageFailure(fmt.Errorf("invalid arguments: %w", err)))
		}
		return tools.JSON(a.GetTopHeadlines(ctx, req))
	})
}
