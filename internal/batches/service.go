package batches

import (
	"context"
	"errors"
	"fmt"
	"time"

	"classroom-backend/internal/batch"
	"classroom-backend/internal/documents"
	"classroom-backend/internal/exports"
	"classroom-backend/internal/prompts"
	"classroom-backend/internal/results"
	"classroom-backend/internal/shared/metrics"
	"classroom-backend/internal/shared/telemetry"
	"classroom-backend/internal/shared/util"
)

// DocumentSaver persists combined batch output without blocking the caller.
type DocumentSaver interface {
	SaveAsync(ctx context.Context, doc documents.Document, timeout time.Duration) <-chan error
}

// ExportCreator stores rendered files.
type ExportCreator interface {
	Create(ctx context.Context, in exports.CreateInput) (exports.Export, error)
}

// RunInput is one synchronous batch request.
type RunInput struct {
	OwnerID  string
	Settings batch.Settings
	Items    []batch.Item
	Save     bool
}

// RunResult is what a finished synchronous batch returns.
type RunResult struct {
	Outcomes []batch.Outcome `json:"outcomes"`
	Drafts   []string        `json:"drafts"`
	Summary  batch.Summary   `json:"summary"`
}

// DocxResult is a rendered Word export.
type DocxResult struct {
	FileName string
	Data     []byte
	// Export is set when the file was also stored.
	Export *exports.Export
}

// Service runs batches in-request and formats their results.
type Service struct {
	Orchestrator *batch.Orchestrator
	Prompts      *prompts.Registry
	Documents    DocumentSaver
	Exports      ExportCreator
	MaxItems     int
	SaveTimeout  time.Duration
	Now          func() time.Time
}

// Kinds lists the registered content kinds.
func (s *Service) Kinds() []prompts.Template {
	return s.registry().List()
}

// Run validates and executes a batch, reporting progress after every item.
// Saving is fire-and-forget and never changes the result.
func (s *Service) Run(ctx context.Context, in RunInput, onProgress batch.ProgressFunc) (RunResult, error) {
	if err := s.checkKind(in.Settings.Kind); err != nil {
		return RunResult{}, err
	}
	if err := batch.Validate(in.Items, s.MaxItems); err != nil {
		return RunResult{}, err
	}

	start := time.Now()
	outcomes := s.Orchestrator.Run(ctx, in.Settings, in.Items, onProgress)
	summary := batch.Summarize(outcomes)

	state := "succeeded"
	switch {
	case ctx.Err() != nil:
		state = "cancelled"
	case summary.Completed == 0:
		state = "failed"
	}
	metrics.ObserveBatch(in.Settings.Kind, state, len(in.Items))
	telemetry.Info("batch.finished", map[string]any{
		"kind":        in.Settings.Kind,
		"state":       state,
		"completed":   summary.Completed,
		"skipped":     summary.Skipped,
		"failed":      summary.Failed,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if in.Save && summary.Completed > 0 && s.Documents != nil {
		s.Documents.SaveAsync(ctx, documents.Document{
			OwnerID:  in.OwnerID,
			Title:    results.Title(in.Settings.Kind),
			Category: results.Category(in.Settings.Kind),
			Content:  results.BuildExportText(in.Settings, outcomes, nil, s.now()),
			Metadata: map[string]string{
				"kind":      in.Settings.Kind,
				"itemCount": fmt.Sprint(summary.Completed),
			},
		}, s.SaveTimeout)
	}

	return RunResult{Outcomes: outcomes, Drafts: batch.NewDrafts(outcomes), Summary: summary}, nil
}

// Regenerate retries one item with the same settings.
func (s *Service) Regenerate(ctx context.Context, settings batch.Settings, item batch.Item) (batch.Outcome, error) {
	if err := s.checkKind(settings.Kind); err != nil {
		return batch.Outcome{}, err
	}
	return s.Orchestrator.RegenerateOne(ctx, settings, item), nil
}

// Text formats outcomes for export or clipboard use.
func (s *Service) Text(style results.Style, settings batch.Settings, outcomes []batch.Outcome, drafts []string) (string, error) {
	if err := checkDrafts(outcomes, drafts); err != nil {
		return "", err
	}
	return results.Format(style, settings, outcomes, drafts, s.now()), nil
}

// Docx renders the export text as a Word document. When an export store is
// configured the file is kept as well; storage failures are logged only.
func (s *Service) Docx(ctx context.Context, ownerID string, settings batch.Settings, outcomes []batch.Outcome, drafts []string) (DocxResult, error) {
	if err := checkDrafts(outcomes, drafts); err != nil {
		return DocxResult{}, err
	}
	title := results.Title(settings.Kind)
	category := results.Category(settings.Kind)
	content := results.BuildExportText(settings, outcomes, drafts, s.now())
	data, err := results.RenderDocx(title, category, content)
	if err != nil {
		return DocxResult{}, fmt.Errorf("render docx: %w", err)
	}

	out := DocxResult{FileName: util.FileNameFromTitle(title, ".docx"), Data: data}
	if s.Exports == nil || ownerID == "" {
		return out, nil
	}
	export, err := s.Exports.Create(ctx, exports.CreateInput{
		OwnerID:     ownerID,
		Title:       title,
		Category:    category,
		ContentType: results.DocxContentType,
		Ext:         ".docx",
		Data:        data,
		ItemCount:   batch.Summarize(outcomes).Completed,
	})
	if err != nil {
		telemetry.Warn("export.store_failed", map[string]any{"kind": settings.Kind, "error": err})
		return out, nil
	}
	out.FileName = export.FileName
	out.Export = &export
	return out, nil
}

func (s *Service) checkKind(kind string) error {
	if _, ok := s.registry().Get(kind); !ok {
		return batch.ErrUnknownKind
	}
	return nil
}

func (s *Service) registry() *prompts.Registry {
	if s.Prompts != nil {
		return s.Prompts
	}
	return prompts.Default()
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func checkDrafts(outcomes []batch.Outcome, drafts []string) error {
	if len(drafts) != 0 && len(drafts) != len(outcomes) {
		return batch.ErrInvalidDrafts
	}
	return nil
}

// IsValidation reports whether err is a request problem rather than a server fault.
func IsValidation(err error) bool {
	return errors.Is(err, batch.ErrUnknownKind) ||
		errors.Is(err, batch.ErrNoItems) ||
		errors.Is(err, batch.ErrNoContent) ||
		errors.Is(err, batch.ErrTooManyItems) ||
		errors.Is(err, batch.ErrInvalidDrafts)
}
