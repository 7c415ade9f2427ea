package batch

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ProgressFunc receives the number of processed items and the batch size.
type ProgressFunc func(done, total int)

// Orchestrator runs a batch through an ItemGenerator.
//
// With Concurrency <= 1 items are processed strictly one after another.
// Larger values fan out up to Concurrency provider calls at once; outcomes
// stay in input order and progress is still reported as 1..n.
type Orchestrator struct {
	Generator   ItemGenerator
	Concurrency int
}

// Run attempts every item exactly once and returns one outcome per item in
// input order. Items not started before ctx is cancelled fail with DetailCancelled.
func (o *Orchestrator) Run(ctx context.Context, settings Settings, items []Item, onProgress ProgressFunc) []Outcome {
	settings = settings.Clone()
	if onProgress == nil {
		onProgress = func(int, int) {}
	}
	if o.Concurrency > 1 && len(items) > 1 {
		return o.runConcurrent(ctx, settings, items, onProgress)
	}

	total := len(items)
	outcomes := make([]Outcome, 0, total)
	for i, item := range items {
		outcomes = append(outcomes, o.attempt(ctx, settings, item))
		onProgress(i+1, total)
	}
	return outcomes
}

// RegenerateOne retries a single item.
func (o *Orchestrator) RegenerateOne(ctx context.Context, settings Settings, item Item) Outcome {
	return o.attempt(ctx, settings.Clone(), item)
}

func (o *Orchestrator) attempt(ctx context.Context, settings Settings, item Item) Outcome {
	if item.IsEmpty() {
		return skipped(item)
	}
	if ctx.Err() != nil {
		return failed(item, DetailCancelled)
	}
	return o.Generator.Generate(ctx, settings, item)
}

func (o *Orchestrator) runConcurrent(ctx context.Context, settings Settings, items []Item, onProgress ProgressFunc) []Outcome {
	total := len(items)
	outcomes := make([]Outcome, total)

	var (
		mu   sync.Mutex
		done = make([]bool, total)
		next int
	)
	finish := func(i int) {
		mu.Lock()
		defer mu.Unlock()
		done[i] = true
		for next < total && done[next] {
			next++
			onProgress(next, total)
		}
	}

	var g errgroup.Group
	g.SetLimit(o.Concurrency)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			outcomes[i] = o.attempt(ctx, settings, item)
			finish(i)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}
