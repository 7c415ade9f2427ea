package runs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"classroom-backend/internal/batch"
	"classroom-backend/internal/documents"
	"classroom-backend/internal/prompts"
	"classroom-backend/internal/queue"
	"classroom-backend/internal/results"
	"classroom-backend/internal/shared/metrics"
	"classroom-backend/internal/shared/telemetry"
	"classroom-backend/internal/workerproc"
)

// DocumentSaver persists combined batch output without blocking the run.
type DocumentSaver interface {
	SaveAsync(ctx context.Context, doc documents.Document, timeout time.Duration) <-chan error
}

// SubmitInput is a new async run request.
type SubmitInput struct {
	OwnerID   string
	RequestID string
	Settings  batch.Settings
	Items     []batch.Item
	Save      bool
}

// Service owns the run lifecycle: submit, process, cancel.
type Service struct {
	Store        Store
	Queue        queue.Client
	Orchestrator *batch.Orchestrator
	Documents    DocumentSaver
	SaveTimeout  time.Duration
	MaxItems     int
	Now          func() time.Time
}

var errSkipRun = errors.New("run does not need processing")

// Submit validates the batch, records a queued run and enqueues it.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (Run, error) {
	if strings.TrimSpace(in.OwnerID) == "" {
		return Run{}, fmt.Errorf("%w: owner id required", ErrInvalidInput)
	}
	if _, ok := prompts.Default().Get(in.Settings.Kind); !ok {
		return Run{}, fmt.Errorf("%w: %w", ErrInvalidInput, batch.ErrUnknownKind)
	}
	if err := batch.Validate(in.Items, s.MaxItems); err != nil {
		return Run{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	now := s.now()
	run := Run{
		ID:        uuid.NewString(),
		OwnerID:   in.OwnerID,
		RequestID: in.RequestID,
		State:     StateQueued,
		Settings:  in.Settings.Clone(),
		Items:     in.Items,
		Save:      in.Save,
		Progress:  Progress{Total: len(in.Items)},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.Create(ctx, run); err != nil {
		return Run{}, err
	}

	msg := queue.Message{
		RunID:      run.ID,
		RequestID:  in.RequestID,
		EnqueuedAt: now.Format(time.RFC3339),
		Version:    queue.MessageVersion,
	}
	if err := s.Queue.Send(ctx, msg); err != nil {
		_, _ = s.Store.Update(ctx, run.ID, func(r *Run) error {
			r.Error = "could not enqueue run"
			return r.Transition(StateFailed, s.now())
		})
		return Run{}, fmt.Errorf("enqueue run: %w", err)
	}

	telemetry.Info("run.queued", map[string]any{
		"run_id":     run.ID,
		"kind":       run.Settings.Kind,
		"items":      len(run.Items),
		"request_id": in.RequestID,
	})
	return run, nil
}

// Get returns a run owned by ownerID.
func (s *Service) Get(ctx context.Context, ownerID, runID string) (Run, error) {
	run, err := s.Store.Get(ctx, runID)
	if err != nil {
		return Run{}, err
	}
	if run.OwnerID != ownerID {
		return Run{}, ErrNotFound
	}
	return run, nil
}

// Cancel stops a run. A queued run is cancelled immediately; a running run
// stops before its next item.
func (s *Service) Cancel(ctx context.Context, ownerID, runID string) (Run, error) {
	return s.Store.Update(ctx, runID, func(r *Run) error {
		if r.OwnerID != ownerID {
			return ErrNotFound
		}
		switch r.State {
		case StateQueued:
			r.CancelRequested = true
			return r.Transition(StateCancelled, s.now())
		case StateRunning:
			r.CancelRequested = true
			r.UpdatedAt = s.now()
			return nil
		default:
			return fmt.Errorf("%w: run already %s", ErrInvalidTransition, r.State)
		}
	})
}

// ProcessRun executes a queued run. Runs that are already finished are skipped
// so redelivered messages are harmless.
func (s *Service) ProcessRun(ctx context.Context, runID string) error {
	run, err := s.Store.Update(ctx, runID, func(r *Run) error {
		switch r.State {
		case StateQueued:
			return r.Transition(StateRunning, s.now())
		case StateRunning:
			// redelivery after a worker died mid-run
			r.Progress = Progress{Total: len(r.Items)}
			r.UpdatedAt = s.now()
			return nil
		default:
			return errSkipRun
		}
	})
	if err != nil {
		if errors.Is(err, errSkipRun) {
			telemetry.Info("run.skipped", map[string]any{"run_id": runID})
			return nil
		}
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	var cancelled atomic.Bool

	start := time.Now()
	outcomes := s.Orchestrator.Run(runCtx, run.Settings, run.Items, func(done, total int) {
		updated, err := s.Store.Update(ctx, runID, func(r *Run) error {
			r.Progress = Progress{Done: done, Total: total}
			r.UpdatedAt = s.now()
			return nil
		})
		if err != nil {
			telemetry.Warn("run.progress_failed", map[string]any{"run_id": runID, "error": err})
			return
		}
		if updated.CancelRequested && !cancelled.Load() {
			cancelled.Store(true)
			cancel()
		}
	})

	summary := batch.Summarize(outcomes)
	final := StateSucceeded
	errMsg := ""
	switch {
	case cancelled.Load() && anyCancelled(outcomes):
		final = StateCancelled
	case ctx.Err() != nil:
		final = StateFailed
		errMsg = "processing interrupted"
	case summary.Completed == 0:
		final = StateFailed
		errMsg = "no item completed"
	}

	finished, err := s.Store.Update(context.WithoutCancel(ctx), runID, func(r *Run) error {
		r.Outcomes = outcomes
		r.Error = errMsg
		return r.Transition(final, s.now())
	})
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}

	metrics.ObserveBatch(run.Settings.Kind, string(final), len(run.Items))
	telemetry.Info("run.finished", map[string]any{
		"run_id":      runID,
		"kind":        run.Settings.Kind,
		"state":       final,
		"completed":   summary.Completed,
		"skipped":     summary.Skipped,
		"failed":      summary.Failed,
		"duration_ms": time.Since(start).Milliseconds(),
		"request_id":  workerproc.RequestIDFromContext(ctx),
	})

	if finished.Save && final == StateSucceeded && s.Documents != nil {
		s.Documents.SaveAsync(ctx, documents.Document{
			OwnerID:  finished.OwnerID,
			Title:    results.Title(finished.Settings.Kind),
			Category: results.Category(finished.Settings.Kind),
			Content:  results.BuildExportText(finished.Settings, outcomes, nil, s.now()),
			Metadata: map[string]string{
				"kind":      finished.Settings.Kind,
				"runId":     finished.ID,
				"itemCount": fmt.Sprint(summary.Completed),
			},
		}, s.SaveTimeout)
	}
	return nil
}

func anyCancelled(outcomes []batch.Outcome) bool {
	for _, o := range outcomes {
		if o.Status == batch.StatusFailed && o.ErrorDetail == batch.DetailCancelled {
			return true
		}
	}
	return false
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

var _ workerproc.Processor = (*Service)(nil)
