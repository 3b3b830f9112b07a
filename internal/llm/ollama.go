package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

// DefaultOllamaHost is used when no host is configured.
const DefaultOllamaHost = "http://localhost:11434"

// OllamaClient talks to a local Ollama server.
type OllamaClient struct {
	client       *api.Client
	defaultModel string
}

// NewOllamaClient creates an Ollama provider. host may omit the scheme.
func NewOllamaClient(host string) (*OllamaClient, error) {
	if host == "" {
		host = DefaultOllamaHost
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	u, err := url.Parse(strings.TrimSuffix(host, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid host %q: %w", host, err)
	}
	// Local models can take a while to load on first use.
	httpClient := &http.Client{Timeout: 5 * time.Minute}
	return &OllamaClient{
		client:       api.NewClient(u, httpClient),
		defaultModel: "llama3.2",
	}, nil
}

// Name returns the provider name.
func (c *OllamaClient) Name() string { return "ollama" }

// Complete sends a non-streaming chat request.
func (c *OllamaClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	msgs := make([]api.Message, 0, len(req.Messages)+1)
	if req.System != "" {
		msgs = append(msgs, api.Message{Role: RoleSystem, Content: req.System})
	}
	for _, m := range req.Messages {
		msgs = append(msgs, api.Message{Role: m.Role, Content: m.Content})
	}

	stream := false
	creq := &api.ChatRequest{
		Model:    orDefault(req.Model, c.defaultModel),
		Messages: msgs,
		Stream:   &stream,
		Options:  map[string]any{},
	}
	if req.Temperature != nil {
		creq.Options["temperature"] = *req.Temperature
	}
	if req.MaxTokens > 0 {
		creq.Options["num_predict"] = req.MaxTokens
	}

	var (
		content strings.Builder
		last    api.ChatResponse
	)
	err := c.client.Chat(ctx, creq, func(r api.ChatResponse) error {
		content.WriteString(r.Message.Content)
		last = r
		return nil
	})
	if err != nil {
		var se api.StatusError
		if errors.As(err, &se) {
			return nil, &ProviderError{Provider: "ollama", Code: se.StatusCode, Message: se.ErrorMessage, Err: err}
		}
		return nil, &ProviderError{Provider: "ollama", Message: err.Error(), Err: err}
	}

	return &CompletionResponse{
		Content:    content.String(),
		StopReason: last.DoneReason,
		Usage: Usage{
			InputTokens:  last.PromptEvalCount,
			OutputTokens: last.EvalCount,
		},
		Model:    last.Model,
		Duration: time.Since(start),
	}, nil
}
