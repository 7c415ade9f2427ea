package main

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-lambda-go/events"

	"classroom-backend/internal/queue"
)

type stubProcessor struct {
	fail map[string]bool
	seen []string
}

func (s *stubProcessor) ProcessRun(_ context.Context, runID string) error {
	s.seen = append(s.seen, runID)
	if s.fail[runID] {
		return errors.New("store unavailable")
	}
	return nil
}

func record(t *testing.T, id, runID string) events.SQSMessage {
	t.Helper()
	body, err := queue.EncodeMessage(queue.Message{RunID: runID, Version: queue.MessageVersion})
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}
	return events.SQSMessage{MessageId: id, Body: string(body)}
}

func TestHandleEventReportsOnlyRetryableFailures(t *testing.T) {
	proc := &stubProcessor{fail: map[string]bool{"run-2": true}}
	event := events.SQSEvent{Records: []events.SQSMessage{
		record(t, "m1", "run-1"),
		record(t, "m2", "run-2"),
		{MessageId: "m3", Body: "not json"},
	}}

	resp := handleEvent(context.Background(), proc, event)

	if len(resp.BatchItemFailures) != 1 || resp.BatchItemFailures[0].ItemIdentifier != "m2" {
		t.Fatalf("unexpected failures %+v", resp.BatchItemFailures)
	}
	if len(proc.seen) != 2 {
		t.Fatalf("expected 2 processed runs, got %v", proc.seen)
	}
}
