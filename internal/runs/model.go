package runs

import (
	"errors"
	"fmt"
	"time"

	"classroom-backend/internal/batch"
)

// State is the lifecycle state of an async batch run.
type State string

const (
	StateQueued    State = "queued"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

var (
	// ErrNotFound indicates the run does not exist or belongs to someone else.
	ErrNotFound = errors.New("run not found")
	// ErrInvalidInput indicates the submission failed validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidTransition is returned for a state change the lifecycle does not allow.
	ErrInvalidTransition = errors.New("invalid run state transition")
)

var transitions = map[State][]State{
	StateQueued:  {StateRunning, StateCancelled, StateFailed},
	StateRunning: {StateSucceeded, StateFailed, StateCancelled},
}

// CanTransition reports whether from -> to is allowed.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateCancelled
}

// Progress counts processed items.
type Progress struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

// Run is one asynchronously processed batch.
type Run struct {
	ID              string          `json:"id"`
	OwnerID         string          `json:"ownerId"`
	RequestID       string          `json:"requestId,omitempty"`
	State           State           `json:"state"`
	Settings        batch.Settings  `json:"settings"`
	Items           []batch.Item    `json:"items"`
	Save            bool            `json:"save"`
	Progress        Progress        `json:"progress"`
	Outcomes        []batch.Outcome `json:"outcomes,omitempty"`
	Error           string          `json:"error,omitempty"`
	CancelRequested bool            `json:"cancelRequested"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	StartedAt       *time.Time      `json:"startedAt,omitempty"`
	FinishedAt      *time.Time      `json:"finishedAt,omitempty"`
}

// Transition moves the run to next, stamping timestamps.
func (r *Run) Transition(next State, now time.Time) error {
	if !CanTransition(r.State, next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.State, next)
	}
	r.State = next
	r.UpdatedAt = now
	switch {
	case next == StateRunning:
		r.StartedAt = &now
	case next.Terminal():
		r.FinishedAt = &now
	}
	return nil
}
