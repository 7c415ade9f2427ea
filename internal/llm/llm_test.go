package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestDemoProviderEchoesInstruction(t *testing.T) {
	out, err := DemoProvider{}.Complete(context.Background(), Request{
		Kind:        "parent-email",
		Instruction: "Student: Ana\n\nTopic: reading",
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !strings.HasPrefix(out, "[demo draft for parent-email]") {
		t.Fatalf("unexpected prefix: %q", out)
	}
	for _, want := range []string{"Student: Ana", "Topic: reading"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestDemoProviderEmptyInstruction(t *testing.T) {
	_, err := DemoProvider{}.Complete(context.Background(), Request{Instruction: "   "})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestDemoProviderHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := DemoProvider{}.Complete(ctx, Request{Instruction: "x"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestProviderFunc(t *testing.T) {
	var got Request
	p := ProviderFunc(func(ctx context.Context, req Request) (string, error) {
		got = req
		return "ok", nil
	})
	out, err := p.Complete(context.Background(), Request{Instruction: "hi", MaxTokens: 10})
	if err != nil || out != "ok" {
		t.Fatalf("unexpected result %q %v", out, err)
	}
	if got.MaxTokens != 10 || got.Instruction != "hi" {
		t.Fatalf("request not forwarded: %+v", got)
	}
}
