// Package memory provides an in-process implementation of queue.Queue.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jirevwe/liteworker/queue"
)

// Queue is a FIFO guarded by a mutex. Waiters block on channels that are
// closed and replaced whenever the state they wait on changes.
type Queue[T any] struct {
	mu sync.Mutex

	items []T

	// maximum number of queued items, 0 means unbounded
	capacity int

	// items put but not yet acknowledged with TaskDone
	unfinished int

	notEmpty chan struct{}
	notFull  chan struct{}
	allDone  chan struct{}
}

var _ queue.Queue[int] = (*Queue[int])(nil)

// New creates a Queue. A capacity <= 0 makes the Queue unbounded.
func New[T any](capacity int) *Queue[T] {
	if capacity < 0 {
		capacity = 0
	}

	return &Queue[T]{
		capacity: capacity,
		notEmpty: make(chan struct{}),
		notFull:  make(chan struct{}),
		allDone:  make(chan struct{}),
	}
}

func broadcast(ch chan struct{}) chan struct{} {
	close(ch)
	return make(chan struct{})
}

func (q *Queue[T]) Get(ctx context.Context, timeout time.Duration) (T, error) {
	var zero T

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			item := q.items[0]
			q.items[0] = zero
			q.items = q.items[1:]
			q.notFull = broadcast(q.notFull)
			q.mu.Unlock()
			return item, nil
		}
		wait := q.notEmpty
		q.mu.Unlock()

		select {
		case <-wait:
		case <-expired:
			return zero, queue.ErrEmpty
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

func (q *Queue[T]) Put(ctx context.Context, item T) error {
	for {
		q.mu.Lock()
		if q.hasRoom() {
			q.push(item)
			q.mu.Unlock()
			return nil
		}
		wait := q.notFull
		q.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (q *Queue[T]) TryPut(item T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.hasRoom() {
		return queue.ErrFull
	}

	q.push(item)
	return nil
}

func (q *Queue[T]) TaskDone() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.unfinished <= 0 {
		return queue.ErrTaskDoneTooMany
	}

	q.unfinished--
	if q.unfinished == 0 {
		q.allDone = broadcast(q.allDone)
	}

	return nil
}

func (q *Queue[T]) Join(ctx context.Context) error {
	for {
		q.mu.Lock()
		if q.unfinished == 0 {
			q.mu.Unlock()
			return nil
		}
		wait := q.allDone
		q.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Unfinished returns the number of items that have not been acknowledged yet.
func (q *Queue[T]) Unfinished() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.unfinished
}

// hasRoom must be called with mu held.
func (q *Queue[T]) hasRoom() bool {
	return q.capacity == 0 || len(q.items) < q.capacity
}

// push must be called with mu held.
func (q *Queue[T]) push(item T) {
	q.items = append(q.items, item)
	q.unfinished++
	q.notEmpty = broadcast(q.notEmpty)
}
