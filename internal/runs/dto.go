package runs

import (
	"time"

	"classroom-backend/internal/batch"
)

// ItemRequest is one batch row in a request body.
type ItemRequest struct {
	Identifier string            `json:"identifier" binding:"max=200"`
	Fields     map[string]string `json:"fields"`
}

// SubmitRequest is the body of POST /runs.
type SubmitRequest struct {
	Kind     string            `json:"kind" binding:"required"`
	Settings map[string]string `json:"settings"`
	Items    []ItemRequest     `json:"items" binding:"required,min=1,dive"`
	Save     bool              `json:"save"`
}

// ToItems converts request rows to batch items.
func ToItems(in []ItemRequest) []batch.Item {
	out := make([]batch.Item, 0, len(in))
	for _, it := range in {
		out = append(out, batch.Item{Identifier: it.Identifier, Fields: it.Fields})
	}
	return out
}

// RunResponse is the outward-facing view of a run.
type RunResponse struct {
	RunID           string          `json:"runId"`
	Kind            string          `json:"kind"`
	State           State           `json:"state"`
	Progress        Progress        `json:"progress"`
	CancelRequested bool            `json:"cancelRequested"`
	Summary         *batch.Summary  `json:"summary,omitempty"`
	Outcomes        []batch.Outcome `json:"outcomes,omitempty"`
	Drafts          []string        `json:"drafts,omitempty"`
	Error           string          `json:"error,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	StartedAt       *time.Time      `json:"startedAt,omitempty"`
	FinishedAt      *time.Time      `json:"finishedAt,omitempty"`
}

func toResponse(r Run) RunResponse {
	resp := RunResponse{
		RunID:           r.ID,
		Kind:            r.Settings.Kind,
		State:           r.State,
		Progress:        r.Progress,
		CancelRequested: r.CancelRequested,
		Error:           r.Error,
		CreatedAt:       r.CreatedAt,
		StartedAt:       r.StartedAt,
		FinishedAt:      r.FinishedAt,
	}
	if r.Outcomes != nil {
		summary := batch.Summarize(r.Outcomes)
		resp.Summary = &summary
		resp.Outcomes = r.Outcomes
		resp.Drafts = batch.NewDrafts(r.Outcomes)
	}
	return resp
}
