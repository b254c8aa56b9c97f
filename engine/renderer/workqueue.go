package renderer

import (
	"context"
	"fmt"

	"github.com/spaghettifunk/triangle/engine/containers"
	"github.com/spaghettifunk/triangle/engine/core"
)

// Upload is work that must run on the thread owning the graphics context.
type Upload func(ctx Context)

/**
 * @brief Hand-off from background goroutines to the GPU thread. Producers
 * enqueue from anywhere; the GPU thread drains once per frame.
 */
type WorkQueue struct {
	ch chan Upload
}

func NewWorkQueue(capacity int) (*WorkQueue, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("work queue capacity %d: %w", capacity, core.ErrInvalidArgument)
	}
	return &WorkQueue{ch: make(chan Upload, capacity)}, nil
}

// Enqueue blocks while the queue is full unless ctx is done first.
func (q *WorkQueue) Enqueue(ctx context.Context, fn Upload) error {
	select {
	case q.ch <- fn:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *WorkQueue) TryEnqueue(fn Upload) error {
	select {
	case q.ch <- fn:
		return nil
	default:
		return containers.ErrQueueFull
	}
}

func (q *WorkQueue) Len() int {
	return len(q.ch)
}

/**
 * @brief Runs the uploads queued when the call starts, in FIFO order.
 * Uploads enqueued while draining wait for the next frame.
 * @return The number of uploads executed.
 */
func (q *WorkQueue) Drain(gpu Context) int {
	pending := len(q.ch)
	for i := 0; i < pending; i++ {
		fn := <-q.ch
		fn(gpu)
	}
	return pending
}
