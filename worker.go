// Package liteworker provides workers that pull items from a queue.Queue,
// apply a function to each one and optionally forward the result to an
// output queue.
//
// A worker runs on its own goroutine until its StopFlag is set. Every item
// it dequeues is acknowledged with TaskDone exactly once, whether the
// function forwarded a result, suppressed it with ErrSuppress, failed or
// panicked. Failures are logged, counted, passed to the optional error
// handler and dead-letter store, and the loop carries on with the next item.
package liteworker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/jirevwe/liteworker/deadletter"
	"github.com/jirevwe/liteworker/queue"
)

// deadLetterTimeout bounds a single dead-letter write.
const deadLetterTimeout = 5 * time.Second

// worker holds the polling loop shared by TransformWorker and SinkWorker.
type worker[In any] struct {
	// the worker id
	id string

	// queue from which the worker consumes items
	in queue.Queue[In]

	// flag that signals the worker to stop working
	stop *StopFlag

	opts *options

	log *slog.Logger

	stats counters

	start sync.Once

	// closed when the loop has returned
	done chan struct{}
}

func newWorker[In any](in queue.Queue[In], stop *StopFlag, opts *options) *worker[In] {
	return &worker[In]{
		id:   opts.name,
		in:   in,
		stop: stop,
		opts: opts,
		log:  opts.log,
		done: make(chan struct{}),
	}
}

// Name returns the worker id.
func (w *worker[In]) Name() string { return w.id }

// Stats returns a snapshot of the worker's counters.
func (w *worker[In]) Stats() Stats { return w.stats.snapshot() }

// Done returns a channel that is closed once the worker has stopped.
func (w *worker[In]) Done() <-chan struct{} { return w.done }

// Wait blocks until the worker has stopped. The worker stops only after
// Start was called and its stop flag was set.
func (w *worker[In]) Wait() { <-w.done }

func (w *worker[In]) launch(handle func(ctx context.Context, item In) error) {
	w.start.Do(func() {
		go w.run(handle)
	})
}

func (w *worker[In]) run(handle func(ctx context.Context, item In) error) {
	w.log.Info(fmt.Sprintf("starting worker %s", w.id))

	// ctx is cancelled by the stop flag and interrupts waits on the queues
	ctx, cancel := w.stop.context()

	defer func() {
		cancel()
		close(w.done)
		w.log.Info(fmt.Sprintf("worker %s has been stopped", w.id))
	}()

	for !w.stop.IsSet() {
		item, err := w.in.Get(ctx, w.opts.pollTimeout)
		if err != nil {
			if errors.Is(err, queue.ErrEmpty) || ctx.Err() != nil {
				continue
			}

			w.log.Error(fmt.Sprintf("worker %s failed to get an item: %s", w.id, err.Error()))
			w.pause()
			continue
		}

		if err = handle(ctx, item); err != nil {
			w.fail(item, err)
		}

		// Stats must already count the item when Join observes its ack
		w.stats.processed.Add(1)
		if err = w.in.TaskDone(); err != nil {
			w.log.Error(fmt.Sprintf("worker %s failed to acknowledge an item: %s", w.id, err.Error()))
		}
	}

	w.log.Info(fmt.Sprintf("stopping worker %s with stop flag", w.id))
}

// pause waits one poll interval or until the stop flag is set.
func (w *worker[In]) pause() {
	select {
	case <-w.stop.Done():
	case <-time.After(w.opts.pollTimeout):
	}
}

// call runs fn with panic recovery and the configured retries. Functions
// receive a context that the stop flag does not cancel, so an in-flight
// call is never interrupted.
func (w *worker[In]) call(ctx context.Context, fn func(context.Context) error) error {
	r := NewRetry(w.opts.retries, w.opts.retryBackoff, func() error {
		return protect(func() error { return fn(context.WithoutCancel(ctx)) })
	})

	retried, err := r.Do(ctx)
	if retried > 0 {
		w.stats.retried.Add(uint64(retried))
	}

	return err
}

func (w *worker[In]) fail(item In, err error) {
	w.stats.failed.Add(1)
	w.log.Error(fmt.Sprintf("worker %s failed to process item: %s", w.id, err.Error()))

	if w.opts.onError != nil {
		handlerErr := protect(func() error {
			w.opts.onError(w.id, item, err)
			return nil
		})
		if handlerErr != nil {
			w.log.Error(fmt.Sprintf("worker %s error handler failed: %s", w.id, handlerErr.Error()))
		}
	}

	if w.opts.deadLetter == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), deadLetterTimeout)
	defer cancel()

	recordErr := protect(func() error {
		return w.opts.deadLetter.Record(ctx, deadletter.New(w.id, item, err))
	})
	if recordErr != nil {
		w.log.Error(fmt.Sprintf("worker %s failed to record dead letter: %s", w.id, recordErr.Error()))
	}
}

func protect(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &PanicError{Value: rec, Stack: debug.Stack()}
		}
	}()

	return fn()
}
