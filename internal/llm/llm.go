package llm

import (
	"context"
	"errors"
)

// Provider produces a completion for a single instruction. Implementations make
// exactly one upstream call per Complete and never retry.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Request is one provider call.
type Request struct {
	System      string
	Instruction string
	MaxTokens   int
	// Kind is used for logging and metrics only.
	Kind string
}

var (
	// ErrEmptyResponse is returned when the provider answered without usable text.
	ErrEmptyResponse = errors.New("provider returned an empty response")
	// ErrNotConfigured is returned when the provider is missing credentials or a model.
	ErrNotConfigured = errors.New("provider not configured")
)

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, req Request) (string, error)

// Complete calls f.
func (f ProviderFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
