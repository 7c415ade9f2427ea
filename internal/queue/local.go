package queue

import (
	"context"
	"errors"
	"sync"

	"classroom-backend/internal/shared/telemetry"
)

// ErrQueueClosed is returned by Send after Close.
var ErrQueueClosed = errors.New("queue closed")

// ErrQueueFull is returned when the local buffer has no room.
var ErrQueueFull = errors.New("queue full")

// HandlerFunc processes one message.
type HandlerFunc func(ctx context.Context, msg Message) error

// LocalQueue is an in-process queue drained by a fixed worker pool. It is used
// when no SQS queue is configured.
type LocalQueue struct {
	ch      chan Message
	mu      sync.RWMutex
	closed  bool
	wg      sync.WaitGroup
	started bool
}

// NewLocalQueue returns a queue with room for buffer pending messages.
func NewLocalQueue(buffer int) *LocalQueue {
	if buffer <= 0 {
		buffer = 64
	}
	return &LocalQueue{ch: make(chan Message, buffer)}
}

// Send enqueues msg without blocking.
func (q *LocalQueue) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.ch <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Start launches workers goroutines that call handle for each message until
// Close is called. ctx is passed to handle.
func (q *LocalQueue) Start(ctx context.Context, workers int, handle HandlerFunc) {
	if workers <= 0 {
		workers = 1
	}
	q.mu.Lock()
	if q.started {
		q.mu.Unlock()
		return
	}
	q.started = true
	q.mu.Unlock()

	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go func(worker int) {
			defer q.wg.Done()
			for msg := range q.ch {
				if err := handle(ctx, msg); err != nil {
					telemetry.Error("queue.local.failed", map[string]any{
						"run_id":     msg.RunID,
						"request_id": msg.RequestID,
						"worker":     worker,
						"error":      err,
					})
				}
			}
		}(i)
	}
}

// Close stops accepting messages and waits for workers to drain the buffer.
func (q *LocalQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()
	q.wg.Wait()
}

var _ Client = (*LocalQueue)(nil)
