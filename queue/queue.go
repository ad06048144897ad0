package queue

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrEmpty is returned by Get when no item became available before the timeout.
	ErrEmpty = errors.New("queue is empty")

	// ErrFull is returned by TryPut when the queue is at capacity.
	ErrFull = errors.New("queue is full")

	// ErrTaskDoneTooMany is returned when TaskDone is called more times
	// than there were items put on the queue.
	ErrTaskDoneTooMany = errors.New("task done called too many times")
)

// Queue is a thread-safe blocking FIFO that tracks outstanding work.
type Queue[T any] interface {
	// Get removes and returns the head of the Queue, waiting up to timeout for
	// an item. A timeout <= 0 waits until ctx is done. It returns ErrEmpty on
	// timeout and ctx.Err() if ctx ends first.
	Get(ctx context.Context, timeout time.Duration) (T, error)

	// Put adds an item to the Queue, blocking while the Queue is at capacity.
	Put(ctx context.Context, item T) error

	// TryPut adds an item to the Queue without blocking.
	TryPut(item T) error

	// TaskDone acknowledges that one item returned by Get has been handled.
	TaskDone() error

	// Join blocks until every item put on the Queue has been acknowledged.
	Join(ctx context.Context) error

	// Len returns the number of items waiting in the Queue.
	Len() int
}
