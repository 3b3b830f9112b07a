package agent

import (
	"context"
	"errors"
	"strings"

	"github.com/soyeahso/toolchat/internal/llm"
	"github.com/soyeahso/toolchat/internal/logging"
)

// FailoverClient wraps an LLM registry to try fallback models on failure.
type FailoverClient struct {
	registry  *llm.Registry
	primary   string
	fallbacks []string
	log       *logging.Logger
}

// NewFailoverClient creates a client that tries the primary model first,
// then falls back through the list on retryable errors (401, 403, 429, 5xx).
func NewFailoverClient(registry *llm.Registry, primary string, fallbacks []string, log *logging.Logger) *FailoverClient {
	return &FailoverClient{
		registry:  registry,
		primary:   primary,
		fallbacks: fallbacks,
		log:       log.Sub("failover"),
	}
}

// Complete tries the primary model, falling back on retryable errors.
// req.Model is ignored; each attempt sets the model id its provider expects.
func (f *FailoverClient) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	refs := append([]string{f.primary}, f.fallbacks...)

	var lastErr error
	for _, ref := range refs {
		client, model, err := f.registry.Resolve(ref)
		if err != nil {
			f.log.Debug().Str("model", ref).Err(err).Msg("no provider for model, skipping")
			lastErr = err
			continue
		}

		req.Model = model
		resp, err := client.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}

		lastErr = err
		if ctx.Err() != nil {
			return nil, err
		}

		if isRetryable(err) {
			f.log.Warn().
				Str("model", ref).
				Str("provider", client.Name()).
				Err(err).
				Msg("retryable error, trying next model")
			continue
		}

		// Non-retryable error, stop here
		return nil, err
	}

	return nil, lastErr
}

// isRetryable checks if the error suggests trying another provider.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	var provErr *llm.ProviderError
	if errors.As(err, &provErr) {
		switch provErr.Code {
		case 401, 403, 429, 500, 502, 503, 529:
			return true
		}
	}

	msg := err.Error()
	return strings.Contains(msg, "overloaded") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "capacity") ||
		strings.Contains(msg, "connection refused")
}
