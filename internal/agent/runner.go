package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/soyeahso/toolchat/internal/domain"
	"github.com/soyeahso/toolchat/internal/hooks"
	"github.com/soyeahso/toolchat/internal/llm"
	"github.com/soyeahso/toolchat/internal/logging"
)

// maxToolIterations limits how many tool call rounds the agent can perform.
const maxToolIterations = 5

// consoleConversation names the single conversation an interactive chat has
// with each agent.
const consoleConversation = "console"

// RunnerConfig configures the agent runner.
type RunnerConfig struct {
	AgentID      string
	AgentName    string
	Instructions string
	Model        string
	Fallbacks    []string
	MaxTokens    int
	Temperature  *float64
}

// RunResult is the outcome of processing a message.
type RunResult struct {
	Response  string            `json:"response"`
	SessionID string            `json:"sessionId"`
	Model     string            `json:"model,omitempty"`
	Usage     llm.Usage         `json:"usage"`
	ToolCalls []domain.ToolCall `json:"toolCalls,omitempty"`
	Duration  time.Duration     `json:"duration"`
}

// Runner is the agent orchestration loop.
// It takes user input, builds context, calls the LLM, runs the tools the
// model asks for, and returns the final answer.
type Runner struct {
	cfg      RunnerConfig
	client   *FailoverClient
	sessions SessionStore
	tools    *ToolRegistry
	hooks    *hooks.Manager
	log      *logging.Logger
}

// NewRunner creates an agent runner. tools and hm may be nil.
func NewRunner(
	cfg RunnerConfig,
	registry *llm.Registry,
	sessions SessionStore,
	tools *ToolRegistry,
	hm *hooks.Manager,
	log *logging.Logger,
) *Runner {
	if tools == nil {
		tools = NewToolRegistry()
	}
	fc := NewFailoverClient(registry, cfg.Model, cfg.Fallbacks, log)
	return &Runner{
		cfg:      cfg,
		client:   fc,
		sessions: sessions,
		tools:    tools,
		hooks:    hm,
		log:      log.Sub("agent." + cfg.AgentID),
	}
}

// ID returns the agent id.
func (r *Runner) ID() string { return r.cfg.AgentID }

// Name returns the display name, falling back to the id.
func (r *Runner) Name() string {
	if r.cfg.AgentName != "" {
		return r.cfg.AgentName
	}
	return r.cfg.AgentID
}

// Tools returns the agent's tool registry.
func (r *Runner) Tools() *ToolRegistry { return r.tools }

// Start answers one chat turn and returns the response text.
func (r *Runner) Start(ctx context.Context, input string) (string, error) {
	res, err := r.Run(ctx, input)
	if err != nil {
		return "", err
	}
	return res.Response, nil
}

// Run processes one user input and returns the agent's response. The turn
// is committed to the session only when it succeeds, so a failed or
// interrupted turn leaves no half-finished exchange in the history.
func (r *Runner) Run(ctx context.Context, input string) (res *RunResult, err error) {
	start := time.Now()

	session := r.sessions.GetOrCreate(domain.SessionKey{
		AgentID:      r.cfg.AgentID,
		Conversation: consoleConversation,
	})
	history := r.sessions.History(session.ID)

	r.log.Info().
		Str("sessionId", session.ID).
		Int("historyLen", len(history)).
		Msg("processing message")

	r.hooks.Emit(ctx, hooks.EventBeforeAgentRun, map[string]any{
		"agent": r.cfg.AgentID,
		"input": input,
	})
	defer func() {
		data := map[string]any{
			"agent":    r.cfg.AgentID,
			"duration": time.Since(start),
		}
		if err != nil {
			data["error"] = err.Error()
		} else {
			data["response"] = res.Response
		}
		r.hooks.Emit(ctx, hooks.EventAfterAgentRun, data)
	}()

	system := BuildSystemPrompt(PromptConfig{
		AgentName:    r.cfg.AgentName,
		Instructions: r.cfg.Instructions,
		Tools:        r.tools.Definitions(),
	})

	turn := []domain.Message{{Role: llm.RoleUser, Content: input, Timestamp: start}}
	var (
		finalResp *llm.CompletionResponse
		usage     llm.Usage
		records   []domain.ToolCall
	)

	// Tool execution loop
	for i := 0; i < maxToolIterations; i++ {
		req := llm.CompletionRequest{
			System:      system,
			Messages:    slices.Concat(history, toLLMMessages(turn)),
			MaxTokens:   r.cfg.MaxTokens,
			Temperature: r.cfg.Temperature,
		}

		resp, err := r.client.Complete(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("LLM completion: %w", err)
		}
		finalResp = resp
		usage.InputTokens += resp.Usage.InputTokens
		usage.OutputTokens += resp.Usage.OutputTokens

		calls := parseToolCalls(resp.Content)
		if len(calls) == 0 {
			break
		}

		r.log.Info().Int("toolCalls", len(calls)).Int("round", i+1).Msg("executing tool calls")

		results := r.executeToolCalls(ctx, calls)
		records = append(records, results.records()...)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		turn = append(turn,
			domain.Message{Role: llm.RoleAssistant, Content: resp.Content, Timestamp: time.Now()},
			domain.Message{Role: llm.RoleUser, Content: formatToolResults(results), Timestamp: time.Now()},
		)
	}

	if finalResp == nil {
		return nil, errors.New("no response from LLM")
	}

	cleanResponse := stripToolCalls(finalResp.Content, r.log)

	turn = append(turn, domain.Message{
		Role:      llm.RoleAssistant,
		Content:   cleanResponse,
		Timestamp: time.Now(),
		ToolCalls: records,
	})
	r.sessions.Append(session.ID, turn...)

	r.log.Info().
		Str("sessionId", session.ID).
		Str("model", finalResp.Model).
		Int("inputTokens", usage.InputTokens).
		Int("outputTokens", usage.OutputTokens).
		Dur("duration", time.Since(start)).
		Msg("response generated")

	return &RunResult{
		Response:  cleanResponse,
		SessionID: session.ID,
		Model:     finalResp.Model,
		Usage:     usage,
		ToolCalls: records,
		Duration:  time.Since(start),
	}, nil
}

// toolCall is a parsed tool invocation from the LLM response.
type toolCall struct {
	Tool  string          `json:"tool"`
	Input json.RawMessage `json:"input"`
}

// toolResult holds the output from executing a tool.
type toolResult struct {
	Tool   string
	Input  string
	Output string
	Err    error
}

type toolResults []toolResult

func (rs toolResults) records() []domain.ToolCall {
	out := make([]domain.ToolCall, 0, len(rs))
	for _, r := range rs {
		rec := domain.ToolCall{Name: r.Tool, Input: r.Input, Output: r.Output}
		if r.Err != nil {
			rec.Error = r.Err.Error()
		}
		out = append(out, rec)
	}
	return out
}

// toolCallRe matches ```tool_call\n{...}\n``` blocks in LLM output.
var toolCallRe = regexp.MustCompile("(?s)```tool_call\\s*\n(\\{.*?\\})\n\\s*```")

// xmlFuncCallRe matches <function_calls>...</function_calls> XML blocks in LLM output.
var xmlFuncCallRe = regexp.MustCompile(`(?s)<function_calls>.*?</function_calls>`)

// xmlBlockLevelRe matches self-contained XML blocks that LLMs emit for tool use
// (block-level, replaced with paragraph break).
var xmlBlockLevelRe = regexp.MustCompile(`(?s)(?:` +
	`<invoke\b[^>]*>.*?</invoke>` +
	`|<tool_call\b[^>]*>.*?</tool_call>` +
	`|<tool_use\b[^>]*>.*?</tool_use>` +
	`)`)

// xmlInlineTagRe matches parameter tags that can appear inline within text.
var xmlInlineTagRe = regexp.MustCompile(`(?s)<parameter\b[^>]*>.*?</parameter>`)

// codeFenceRe matches fenced code block opening/closing markers on their own line.
// Only the markers are stripped; content between fences is preserved.
var codeFenceRe = regexp.MustCompile(`(?m)^\s*` + "```" + `\w*\s*$`)

// whitespaceLineRe matches lines containing only horizontal whitespace.
var whitespaceLineRe = regexp.MustCompile(`(?m)^[ \t]+$`)

// blankLineCollapseRe collapses 3+ consecutive newlines to a single blank line.
var blankLineCollapseRe = regexp.MustCompile(`\n{3,}`)

// parseToolCalls extracts tool_call blocks from LLM response text.
func parseToolCalls(text string) []toolCall {
	matches := toolCallRe.FindAllStringSubmatch(text, -1)
	var calls []toolCall
	for _, match := range matches {
		if len(match) < 2 {
			continue
		}
		var tc toolCall
		if err := json.Unmarshal([]byte(match[1]), &tc); err != nil {
			continue
		}
		if tc.Tool != "" {
			calls = append(calls, tc)
		}
	}
	return calls
}

// executeToolCalls runs each tool in order and returns results.
func (r *Runner) executeToolCalls(ctx context.Context, calls []toolCall) toolResults {
	var results toolResults
	for _, tc := range calls {
		input := string(tc.Input)
		if input == "" {
			input = "{}"
		}

		tool, ok := r.tools.Get(tc.Tool)
		if !ok {
			results = append(results, toolResult{
				Tool:  tc.Tool,
				Input: input,
				Err:   fmt.Errorf("unknown tool: %s", tc.Tool),
			})
			continue
		}

		r.hooks.Emit(ctx, hooks.EventToolStart, map[string]any{
			"agent": r.cfg.AgentID,
			"tool":  tc.Tool,
			"input": input,
		})

		started := time.Now()
		r.log.Debug().Str("tool", tc.Tool).RawJSON("input", []byte(input)).Msg("executing tool")
		output, err := tool.Execute(ctx, input)
		results = append(results, toolResult{
			Tool:   tc.Tool,
			Input:  input,
			Output: output,
			Err:    err,
		})

		data := map[string]any{
			"agent":    r.cfg.AgentID,
			"tool":     tc.Tool,
			"output":   output,
			"duration": time.Since(started),
		}
		if err != nil {
			data["error"] = err.Error()
			r.log.Warn().Str("tool", tc.Tool).Err(err).Msg("tool failed")
		}
		r.hooks.Emit(ctx, hooks.EventToolEnd, data)

		if ctx.Err() != nil {
			break
		}
	}
	return results
}

// formatToolResults renders tool execution results for the LLM.
func formatToolResults(results toolResults) string {
	var b strings.Builder
	b.WriteString("Tool execution results:\n\n")
	for _, r := range results {
		fmt.Fprintf(&b, "### %s\n", r.Tool)
		if r.Err != nil {
			fmt.Fprintf(&b, "Error: %s\n", r.Err)
		} else {
			b.WriteString(r.Output)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// stripToolCalls removes tool_call code blocks and XML function_calls blocks
// from the response, leaving surrounding text. Stripped XML blocks are logged
// to the console so they remain visible for debugging.
func stripToolCalls(text string, log *logging.Logger) string {
	// Block-level elements are replaced with a paragraph break so
	// surrounding text stays visually separated (e.g. a list item
	// followed by a closing sentence). Inline tags use a space.

	// Strip ```tool_call``` code blocks (block-level)
	cleaned := toolCallRe.ReplaceAllString(text, "\n\n")

	// Strip <function_calls>...</function_calls> XML blocks (block-level)
	xmlMatches := xmlFuncCallRe.FindAllString(cleaned, -1)
	if len(xmlMatches) > 0 && log != nil {
		for _, m := range xmlMatches {
			log.Info().Str("xml", m).Msg("stripped XML function_calls from LLM response")
		}
	}
	cleaned = xmlFuncCallRe.ReplaceAllString(cleaned, "\n\n")

	// Strip known block-level XML tags
	cleaned = xmlBlockLevelRe.ReplaceAllString(cleaned, "\n\n")

	// Strip inline parameter tags
	cleaned = xmlInlineTagRe.ReplaceAllString(cleaned, " ")

	// Strip code fence markers (``` and ```language) but keep content between them.
	// The terminal doesn't render markdown, so fence markers appear as glitches.
	cleaned = codeFenceRe.ReplaceAllString(cleaned, "")

	// Clean up whitespace artifacts left by replacements:
	// Lines that are now only spaces/tabs become empty lines.
	cleaned = whitespaceLineRe.ReplaceAllString(cleaned, "")
	// Collapse 3+ consecutive newlines into one blank line.
	cleaned = blankLineCollapseRe.ReplaceAllString(cleaned, "\n\n")

	return strings.TrimSpace(cleaned)
}
