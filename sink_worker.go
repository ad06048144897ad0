package liteworker

import (
	"context"
	"errors"

	"github.com/jirevwe/liteworker/queue"
)

// SinkWorker takes items from an input queue and hands each one to a
// function that produces no output.
type SinkWorker[In any] struct {
	*worker[In]

	fn     SinkFunc[In]
	daemon bool
}

// NewSinkWorker creates a managed SinkWorker that runs until stop is set.
// A nil stop returns ErrMissingStopFlag; use NewDaemonSinkWorker for a
// worker that is never stopped.
func NewSinkWorker[In any](fn SinkFunc[In], in queue.Queue[In], stop *StopFlag, opts ...Option) (*SinkWorker[In], error) {
	if stop == nil {
		return nil, ErrMissingStopFlag
	}

	return newSinkWorker(fn, in, stop, false, opts)
}

// NewDaemonSinkWorker creates a SinkWorker with a private stop flag that is
// never set. It runs until the process exits.
func NewDaemonSinkWorker[In any](fn SinkFunc[In], in queue.Queue[In], opts ...Option) (*SinkWorker[In], error) {
	return newSinkWorker(fn, in, NewStopFlag(), true, opts)
}

func newSinkWorker[In any](fn SinkFunc[In], in queue.Queue[In], stop *StopFlag, daemon bool, opts []Option) (*SinkWorker[In], error) {
	if fn == nil {
		return nil, ErrNilFunc
	}

	if in == nil {
		return nil, ErrNilQueue
	}

	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}

	return &SinkWorker[In]{
		worker: newWorker(in, stop, o),
		fn:     fn,
		daemon: daemon,
	}, nil
}

// Daemon reports whether the worker was created with NewDaemonSinkWorker.
func (w *SinkWorker[In]) Daemon() bool { return w.daemon }

// Start runs the worker loop on a new goroutine. Calls after the first are no-ops.
func (w *SinkWorker[In]) Start() {
	w.launch(w.handle)
}

func (w *SinkWorker[In]) handle(ctx context.Context, item In) error {
	err := w.call(ctx, func(fnCtx context.Context) error {
		return w.fn(fnCtx, item, w.opts.args...)
	})

	// ErrSuppress from a sink is counted, not treated as a failure
	if errors.Is(err, ErrSuppress) {
		w.stats.suppressed.Add(1)
		return nil
	}

	return err
}
