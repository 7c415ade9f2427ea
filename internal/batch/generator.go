package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"classroom-backend/internal/llm"
	"classroom-backend/internal/prompts"
	"classroom-backend/internal/shared/metrics"
	"classroom-backend/internal/shared/telemetry"
)

// DefaultTimeout bounds a single provider call when Generator.Timeout is unset.
const DefaultTimeout = 60 * time.Second

// ItemGenerator turns one item into an outcome. It never returns an error.
type ItemGenerator interface {
	Generate(ctx context.Context, settings Settings, item Item) Outcome
}

// Generator wraps exactly one provider call per item.
type Generator struct {
	Provider llm.Provider
	Prompts  *prompts.Registry
	Timeout  time.Duration
}

// NewGenerator returns a Generator over the default prompt registry.
func NewGenerator(provider llm.Provider, timeout time.Duration) *Generator {
	return &Generator{Provider: provider, Prompts: prompts.Default(), Timeout: timeout}
}

// Generate builds the prompt, calls the provider once and classifies the result.
func (g *Generator) Generate(ctx context.Context, settings Settings, item Item) Outcome {
	out := g.generate(ctx, settings, item)
	metrics.ObserveOutcome(settings.Kind, string(out.Status))
	if out.Status == StatusFailed {
		telemetry.Warn("batch.item.failed", map[string]any{
			"kind":       settings.Kind,
			"identifier": item.Identifier,
			"detail":     out.ErrorDetail,
		})
	}
	return out
}

func (g *Generator) generate(ctx context.Context, settings Settings, item Item) Outcome {
	if item.IsEmpty() {
		return skipped(item)
	}
	registry := g.Prompts
	if registry == nil {
		registry = prompts.Default()
	}
	tmpl, ok := registry.Get(settings.Kind)
	if !ok {
		return failed(item, fmt.Sprintf("unknown content kind %q", settings.Kind))
	}
	prompt, err := registry.Build(settings.Kind, item.Identifier, settings.Values, item.Fields)
	if err != nil {
		return failed(item, "could not build the request: "+err.Error())
	}
	if g.Provider == nil {
		return failed(item, "no generation provider is configured")
	}

	timeout := g.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	text, err := g.Provider.Complete(callCtx, llm.Request{
		System:      prompt.System,
		Instruction: prompt.Instruction,
		MaxTokens:   prompt.MaxTokens,
		Kind:        settings.Kind,
	})
	if err != nil {
		return failed(item, describeError(ctx, callCtx, err, timeout))
	}
	text = TrimProviderText(text)
	if text == "" {
		return failed(item, "the provider returned an empty response")
	}

	out := Outcome{Identifier: item.Identifier, Status: StatusCompleted, Text: text}
	if tmpl.SecondaryField != "" {
		out.Secondary = strings.TrimSpace(item.Fields[tmpl.SecondaryField])
	}
	return out
}

func describeError(parent, call context.Context, err error, timeout time.Duration) string {
	switch {
	case parent.Err() != nil && errors.Is(parent.Err(), context.Canceled):
		return DetailCancelled
	case errors.Is(call.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("generation timed out after %s", timeout)
	case errors.Is(err, llm.ErrEmptyResponse):
		return "the provider returned an empty response"
	case errors.Is(err, llm.ErrNotConfigured):
		return "the generation provider is not configured"
	default:
		return "generation failed: " + err.Error()
	}
}

var _ ItemGenerator = (*Generator)(nil)
