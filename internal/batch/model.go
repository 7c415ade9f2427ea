package batch

import (
	"errors"
	"strings"
)

// Status is the terminal state of one item.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

const (
	skippedPlaceholder = "Skipped: no details were provided for this item."
	failedPlaceholder  = "Generation failed for this item."

	// DetailCancelled is the failure detail for items not attempted after cancellation.
	DetailCancelled = "cancelled"
)

var (
	ErrNoItems       = errors.New("at least one item is required")
	ErrNoContent     = errors.New("every item is empty")
	ErrTooManyItems  = errors.New("too many items")
	ErrUnknownKind   = errors.New("unknown content kind")
	ErrInvalidDrafts = errors.New("drafts must align with outcomes")
)

// Item is one row of a batch, such as one student or one letter recipient.
type Item struct {
	Identifier string            `json:"identifier"`
	Fields     map[string]string `json:"fields"`
}

// IsEmpty reports whether every field is empty or whitespace.
func (it Item) IsEmpty() bool {
	for _, v := range it.Fields {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Settings apply to every item of one run.
type Settings struct {
	Kind   string            `json:"kind"`
	Values map[string]string `json:"values"`
}

// Clone returns a copy that does not share the values map.
func (s Settings) Clone() Settings {
	out := Settings{Kind: s.Kind, Values: make(map[string]string, len(s.Values))}
	for k, v := range s.Values {
		out.Values[k] = v
	}
	return out
}

// Outcome is the recorded result of attempting one item.
type Outcome struct {
	Identifier  string `json:"identifier"`
	Status      Status `json:"status"`
	Text        string `json:"text"`
	ErrorDetail string `json:"errorDetail,omitempty"`
	Secondary   string `json:"secondary,omitempty"`
}

// Exportable reports whether the outcome belongs in export and clipboard text.
func (o Outcome) Exportable() bool {
	return o.Status == StatusCompleted
}

// Summary counts outcomes by status.
type Summary struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Summarize counts outcomes by status.
func Summarize(outcomes []Outcome) Summary {
	s := Summary{Total: len(outcomes)}
	for _, o := range outcomes {
		switch o.Status {
		case StatusCompleted:
			s.Completed++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}

// NewDrafts seeds editable drafts from outcome text, index aligned.
func NewDrafts(outcomes []Outcome) []string {
	drafts := make([]string, len(outcomes))
	for i, o := range outcomes {
		if o.Status == StatusCompleted {
			drafts[i] = o.Text
		}
	}
	return drafts
}

// Validate performs the whole-batch checks done before a run starts.
// maxItems <= 0 disables the size limit.
func Validate(items []Item, maxItems int) error {
	if len(items) == 0 {
		return ErrNoItems
	}
	if maxItems > 0 && len(items) > maxItems {
		return ErrTooManyItems
	}
	for _, it := range items {
		if !it.IsEmpty() {
			return nil
		}
	}
	return ErrNoContent
}

func skipped(item Item) Outcome {
	return Outcome{Identifier: item.Identifier, Status: StatusSkipped, Text: skippedPlaceholder}
}

func failed(item Item, detail string) Outcome {
	return Outcome{Identifier: item.Identifier, Status: StatusFailed, Text: failedPlaceholder, ErrorDetail: detail}
}
