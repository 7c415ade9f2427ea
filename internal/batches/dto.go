package batches

import (
	"classroom-backend/internal/batch"
	"classroom-backend/internal/prompts"
)

// ItemRequest is one batch row in a request body.
type ItemRequest struct {
	Identifier string            `json:"identifier" binding:"max=200"`
	Fields     map[string]string `json:"fields"`
}

// RunRequest is the body of POST /batches/:kind.
type RunRequest struct {
	Settings map[string]string `json:"settings"`
	Items    []ItemRequest     `json:"items" binding:"required,min=1,dive"`
	Save     bool              `json:"save"`
}

// RegenerateRequest is the body of POST /batches/:kind/regenerate.
type RegenerateRequest struct {
	Settings map[string]string `json:"settings"`
	Item     ItemRequest       `json:"item"`
}

// FormatRequest is the body of the text and docx endpoints.
type FormatRequest struct {
	Settings map[string]string `json:"settings"`
	Outcomes []batch.Outcome   `json:"outcomes" binding:"required,dive"`
	Drafts   []string          `json:"drafts"`
	Style    string            `json:"style" binding:"omitempty,oneof=export clipboard"`
}

// TextResponse carries formatted text.
type TextResponse struct {
	Style string `json:"style"`
	Text  string `json:"text"`
}

// KindResponse describes one registered content kind.
type KindResponse struct {
	Kind           string          `json:"kind"`
	Title          string          `json:"title"`
	Category       string          `json:"category"`
	Fields         []prompts.Field `json:"fields"`
	Settings       []prompts.Field `json:"settings"`
	SecondaryField string          `json:"secondaryField,omitempty"`
}

// ProgressEvent is streamed after each processed item.
type ProgressEvent struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

func toItem(in ItemRequest) batch.Item {
	return batch.Item{Identifier: in.Identifier, Fields: in.Fields}
}

func toItems(in []ItemRequest) []batch.Item {
	out := make([]batch.Item, 0, len(in))
	for _, it := range in {
		out = append(out, toItem(it))
	}
	return out
}

func toKindResponse(t prompts.Template) KindResponse {
	return KindResponse{
		Kind:           t.Kind,
		Title:          t.Title,
		Category:       t.Category,
		Fields:         t.Fields,
		Settings:       t.Settings,
		SecondaryField: t.SecondaryField,
	}
}
