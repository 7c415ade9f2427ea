package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestLocalQueueDeliversToWorkers(t *testing.T) {
	q := NewLocalQueue(8)
	var mu sync.Mutex
	seen := map[string]bool{}
	q.Start(context.Background(), 2, func(ctx context.Context, msg Message) error {
		mu.Lock()
		seen[msg.RunID] = true
		mu.Unlock()
		return nil
	})

	for _, id := range []string{"a", "b", "c"} {
		if err := q.Send(context.Background(), Message{RunID: id}); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}
	q.Close()

	if len(seen) != 3 {
		t.Fatalf("expected 3 messages handled, got %v", seen)
	}
}

func TestLocalQueueFullAndClosed(t *testing.T) {
	q := NewLocalQueue(1)
	if err := q.Send(context.Background(), Message{RunID: "1"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := q.Send(context.Background(), Message{RunID: "2"}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	q.Close()
	if err := q.Send(context.Background(), Message{RunID: "3"}); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("expected ErrQueueClosed, got %v", err)
	}
}
