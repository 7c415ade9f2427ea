package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openaigo "github.com/sashabaranov/go-openai"

	"classroom-backend/internal/llm"
	"classroom-backend/internal/shared/metrics"
	"classroom-backend/internal/shared/telemetry"
)

const defaultTemperature = float32(0.7)

// Client implements llm.Provider using Chat Completions on any OpenAI-compatible endpoint.
type Client struct {
	model  string
	client *openaigo.Client
}

// Options configures NewClient. BaseURL is optional.
type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient constructs a new OpenAI client.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Model) == "" {
		return nil, fmt.Errorf("%w: LLM_MODEL is required for OpenAI", llm.ErrNotConfigured)
	}
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY is required", llm.ErrNotConfigured)
	}
	cfg := openaigo.DefaultConfig(opts.APIKey)
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		cfg.BaseURL = strings.TrimRight(base, "/")
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}
	return &Client{
		model:  strings.TrimSpace(opts.Model),
		client: openaigo.NewClientWithConfig(cfg),
	}, nil
}

// Complete sends one chat completion request and returns the first choice.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	messages := make([]openaigo.ChatCompletionMessage, 0, 2)
	if system := strings.TrimSpace(req.System); system != "" {
		messages = append(messages, openaigo.ChatCompletionMessage{
			Role:    openaigo.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openaigo.ChatCompletionMessage{
		Role:    openaigo.ChatMessageRoleUser,
		Content: req.Instruction,
	})

	chatReq := openaigo.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = req.MaxTokens
	}
	if !isReasoningModel(c.model) {
		chatReq.Temperature = defaultTemperature
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	metrics.ObserveProviderDuration(req.Kind, time.Since(start))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("openai request timeout: %w", err)
		}
		var apiErr *openaigo.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("openai error: %s (status %d)", apiErr.Message, apiErr.HTTPStatusCode)
		}
		return "", fmt.Errorf("openai request: %w", err)
	}

	telemetry.Info("llm.response", map[string]any{
		"model":             c.model,
		"kind":              req.Kind,
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
		"total_tokens":      resp.Usage.TotalTokens,
	})

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai response missing choices: %w", llm.ErrEmptyResponse)
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", llm.ErrEmptyResponse
	}
	return content, nil
}

// reasoning models reject a non-default temperature.
func isReasoningModel(model string) bool {
	m := strings.ToLower(strings.TrimSpace(model))
	return strings.HasPrefix(m, "gpt-5") || strings.HasPrefix(m, "o1") || strings.HasPrefix(m, "o3")
}

var _ llm.Provider = (*Client)(nil)
