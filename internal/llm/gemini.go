package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GeminiClient talks to the Google Gemini API.
type GeminiClient struct {
	client       *genai.Client
	defaultModel string
}

// NewGeminiClient creates a Gemini provider. Extra options are passed to the
// SDK after the API key.
func NewGeminiClient(ctx context.Context, apiKey string, opts ...option.ClientOption) (*GeminiClient, error) {
	c, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, err
	}
	return &GeminiClient{client: c, defaultModel: "gemini-1.5-flash"}, nil
}

// Name returns the provider name.
func (c *GeminiClient) Name() string { return "gemini" }

// Close releases the underlying connection.
func (c *GeminiClient) Close() error { return c.client.Close() }

// Complete replays the history into a chat session and sends the last user
// message.
func (c *GeminiClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	history, last, err := geminiHistory(req.Messages)
	if err != nil {
		return nil, &ProviderError{Provider: "gemini", Message: err.Error()}
	}

	model := orDefault(req.Model, c.defaultModel)
	m := c.client.GenerativeModel(model)
	if req.System != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}
	if req.Temperature != nil {
		m.SetTemperature(float32(*req.Temperature))
	}
	if req.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(req.MaxTokens))
	}

	cs := m.StartChat()
	cs.History = history
	resp, err := cs.SendMessage(ctx, genai.Text(last))
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			return nil, &ProviderError{Provider: "gemini", Code: gerr.Code, Message: gerr.Message, Err: err}
		}
		return nil, &ProviderError{Provider: "gemini", Message: err.Error(), Err: err}
	}

	out := &CompletionResponse{Model: model, Duration: time.Since(start)}
	if len(resp.Candidates) > 0 {
		cand := resp.Candidates[0]
		out.StopReason = cand.FinishReason.String()
		if cand.Content != nil {
			out.Content = geminiText(cand.Content.Parts)
		}
	}
	if resp.UsageMetadata != nil {
		out.Usage = Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	return out, nil
}

// geminiHistory splits messages into prior turns and the final user text.
// Gemini names the assistant role "model".
func geminiHistory(msgs []Message) ([]*genai.Content, string, error) {
	if len(msgs) == 0 {
		return nil, "", fmt.Errorf("no messages")
	}
	final := msgs[len(msgs)-1]
	if final.Role != RoleUser {
		return nil, "", fmt.Errorf("last message must be from the user, got %q", final.Role)
	}

	history := make([]*genai.Content, 0, len(msgs)-1)
	for _, m := range msgs[:len(msgs)-1] {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(m.Content)}})
	}
	return history, final.Content, nil
}

func geminiText(parts []genai.Part) string {
	var b strings.Builder
	for _, p := range parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}
