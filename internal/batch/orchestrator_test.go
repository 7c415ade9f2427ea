package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classroom-backend/internal/llm"
	"classroom-backend/internal/prompts"
)

// echoProvider returns the instruction and counts calls.
type echoProvider struct {
	calls   atomic.Int32
	failOn  map[string]bool
	mu      sync.Mutex
	seen    []string
	onCall  func(req llm.Request)
	latency time.Duration
}

func (p *echoProvider) Complete(ctx context.Context, req llm.Request) (string, error) {
	p.calls.Add(1)
	p.mu.Lock()
	p.seen = append(p.seen, req.Instruction)
	p.mu.Unlock()
	if p.onCall != nil {
		p.onCall(req)
	}
	if p.latency > 0 {
		select {
		case <-time.After(p.latency):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	for marker := range p.failOn {
		if strings.Contains(req.Instruction, marker) {
			return "", errors.New("upstream 500")
		}
	}
	return "ECHO: " + req.Instruction, nil
}

func newOrchestrator(p llm.Provider, concurrency int) *Orchestrator {
	return &Orchestrator{
		Generator:   &Generator{Provider: p, Prompts: prompts.Default(), Timeout: time.Second},
		Concurrency: concurrency,
	}
}

func emailSettings() Settings {
	return Settings{Kind: prompts.KindParentEmail, Values: map[string]string{"tone": "warm"}}
}

func item(id string, fields map[string]string) Item {
	return Item{Identifier: id, Fields: fields}
}

func TestRunSkipsBlankMiddleItem(t *testing.T) {
	p := &echoProvider{}
	o := newOrchestrator(p, 1)
	items := []Item{
		item("A", map[string]string{"positives": "Great work"}),
		item("B", map[string]string{"positives": "", "concerns": "  "}),
		item("C", map[string]string{"concerns": "Missing homework"}),
	}

	out := o.Run(context.Background(), emailSettings(), items, nil)

	require.Len(t, out, 3)
	assert.Equal(t, StatusCompleted, out[0].Status)
	assert.Contains(t, out[0].Text, "Great work")
	assert.Equal(t, StatusSkipped, out[1].Status)
	assert.Equal(t, StatusCompleted, out[2].Status)
	assert.Contains(t, out[2].Text, "Missing homework")
	assert.EqualValues(t, 2, p.calls.Load())
}

func TestRunPreservesOrderAndLength(t *testing.T) {
	for _, concurrency := range []int{1, 4} {
		concurrency := concurrency
		t.Run(fmt.Sprintf("concurrency=%d", concurrency), func(t *testing.T) {
			p := &echoProvider{latency: time.Millisecond}
			o := newOrchestrator(p, concurrency)
			var items []Item
			for i := 0; i < 12; i++ {
				fields := map[string]string{"positives": fmt.Sprintf("note %d", i)}
				if i%5 == 0 {
					fields = map[string]string{}
				}
				items = append(items, item(fmt.Sprintf("student-%02d", i), fields))
			}

			out := o.Run(context.Background(), emailSettings(), items, nil)

			require.Len(t, out, len(items))
			for i := range items {
				assert.Equal(t, items[i].Identifier, out[i].Identifier)
				if i%5 == 0 {
					assert.Equal(t, StatusSkipped, out[i].Status)
				} else {
					assert.Contains(t, out[i].Text, fmt.Sprintf("note %d", i))
				}
			}
		})
	}
}

func TestRunSkipsEmptyItemsWithoutProviderCalls(t *testing.T) {
	p := &echoProvider{}
	o := newOrchestrator(p, 1)
	items := []Item{
		item("a", nil),
		item("b", map[string]string{"positives": " \t\n"}),
		item("c", map[string]string{"positives": "", "concerns": ""}),
	}

	out := o.Run(context.Background(), emailSettings(), items, nil)

	for _, oc := range out {
		assert.Equal(t, StatusSkipped, oc.Status)
		assert.Empty(t, oc.ErrorDetail)
	}
	assert.Zero(t, p.calls.Load())
}

func TestRunIsolatesFailures(t *testing.T) {
	p := &echoProvider{failOn: map[string]bool{"FAIL-ME": true}}
	o := newOrchestrator(p, 1)
	items := []Item{
		item("one", map[string]string{"positives": "ok"}),
		item("two", map[string]string{"positives": "FAIL-ME"}),
		item("three", map[string]string{"positives": "ok too"}),
	}

	out := o.Run(context.Background(), emailSettings(), items, nil)

	assert.Equal(t, StatusCompleted, out[0].Status)
	assert.Equal(t, StatusFailed, out[1].Status)
	assert.Contains(t, out[1].ErrorDetail, "upstream 500")
	assert.Equal(t, StatusCompleted, out[2].Status)
	assert.EqualValues(t, 3, p.calls.Load())
}

func TestRunReportsProgressMonotonically(t *testing.T) {
	for _, concurrency := range []int{1, 3} {
		concurrency := concurrency
		t.Run(fmt.Sprintf("concurrency=%d", concurrency), func(t *testing.T) {
			p := &echoProvider{latency: time.Millisecond}
			o := newOrchestrator(p, concurrency)
			items := []Item{
				item("a", map[string]string{"positives": "x"}),
				item("b", nil),
				item("c", map[string]string{"positives": "y"}),
				item("d", map[string]string{"positives": "z"}),
				item("e", map[string]string{"positives": "w"}),
			}

			var got []int
			var totals []int
			o.Run(context.Background(), emailSettings(), items, func(done, total int) {
				got = append(got, done)
				totals = append(totals, total)
			})

			assert.Equal(t, []int{1, 2, 3, 4, 5}, got)
			for _, total := range totals {
				assert.Equal(t, 5, total)
			}
		})
	}
}

func TestRunCancellationStopsBetweenItems(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := &echoProvider{}
	p.onCall = func(req llm.Request) {
		if strings.Contains(req.Instruction, "second") {
			cancel()
		}
	}
	o := newOrchestrator(p, 1)
	items := []Item{
		item("1", map[string]string{"positives": "first"}),
		item("2", map[string]string{"positives": "second"}),
		item("3", map[string]string{"positives": "third"}),
		item("4", map[string]string{"positives": "fourth"}),
	}

	var progress []int
	out := o.Run(ctx, emailSettings(), items, func(done, total int) { progress = append(progress, done) })

	require.Len(t, out, 4)
	assert.Equal(t, StatusCompleted, out[0].Status)
	assert.Equal(t, StatusFailed, out[2].Status)
	assert.Equal(t, DetailCancelled, out[2].ErrorDetail)
	assert.Equal(t, StatusFailed, out[3].Status)
	assert.Equal(t, DetailCancelled, out[3].ErrorDetail)
	assert.EqualValues(t, 2, p.calls.Load())
	assert.Equal(t, []int{1, 2, 3, 4}, progress)
}

func TestRunTimeoutFailsItemAndContinues(t *testing.T) {
	p := llm.ProviderFunc(func(ctx context.Context, req llm.Request) (string, error) {
		if strings.Contains(req.Instruction, "slow") {
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "fine", nil
	})
	o := &Orchestrator{Generator: &Generator{Provider: p, Prompts: prompts.Default(), Timeout: 20 * time.Millisecond}}
	items := []Item{
		item("slow", map[string]string{"positives": "slow"}),
		item("fast", map[string]string{"positives": "fast"}),
	}

	out := o.Run(context.Background(), emailSettings(), items, nil)

	assert.Equal(t, StatusFailed, out[0].Status)
	assert.Contains(t, out[0].ErrorDetail, "timed out")
	assert.Equal(t, StatusCompleted, out[1].Status)
	assert.Equal(t, "fine", out[1].Text)
}

func TestRunDoesNotMutateSettings(t *testing.T) {
	settings := emailSettings()
	gen := generatorFunc(func(ctx context.Context, s Settings, it Item) Outcome {
		s.Values["tone"] = "changed"
		return Outcome{Identifier: it.Identifier, Status: StatusCompleted, Text: "x"}
	})
	o := &Orchestrator{Generator: gen}

	o.Run(context.Background(), settings, []Item{item("a", map[string]string{"positives": "p"})}, nil)

	assert.Equal(t, "warm", settings.Values["tone"])
}

func TestRegenerateOne(t *testing.T) {
	p := &echoProvider{}
	o := newOrchestrator(p, 1)

	got := o.RegenerateOne(context.Background(), emailSettings(), item("Ana", map[string]string{"positives": "Helps peers"}))
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Contains(t, got.Text, "Helps peers")

	empty := o.RegenerateOne(context.Background(), emailSettings(), item("Ben", map[string]string{"positives": ""}))
	assert.Equal(t, StatusSkipped, empty.Status)
	assert.EqualValues(t, 1, p.calls.Load())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		items []Item
		max   int
		want  error
	}{
		{name: "no items", items: nil, want: ErrNoItems},
		{name: "all empty", items: []Item{item("a", nil), item("b", map[string]string{"x": " "})}, want: ErrNoContent},
		{name: "too many", items: []Item{item("a", nil), item("b", nil)}, max: 1, want: ErrTooManyItems},
		{name: "ok", items: []Item{item("a", nil), item("b", map[string]string{"x": "y"})}, max: 5},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.items, tt.max)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSummarizeAndDrafts(t *testing.T) {
	outcomes := []Outcome{
		{Identifier: "a", Status: StatusCompleted, Text: "one"},
		{Identifier: "b", Status: StatusSkipped, Text: skippedPlaceholder},
		{Identifier: "c", Status: StatusFailed, Text: failedPlaceholder, ErrorDetail: "x"},
	}
	assert.Equal(t, Summary{Total: 3, Completed: 1, Skipped: 1, Failed: 1}, Summarize(outcomes))
	assert.Equal(t, []string{"one", "", ""}, NewDrafts(outcomes))
}

type generatorFunc func(ctx context.Context, s Settings, it Item) Outcome

func (f generatorFunc) Generate(ctx context.Context, s Settings, it Item) Outcome {
	return f(ctx, s, it)
}
