package liteworker

import (
	"context"
	"errors"
	"fmt"

	"github.com/jirevwe/liteworker/queue"
)

// TransformWorker takes items from an input queue, transforms them and puts
// every result that was not suppressed on an output queue.
type TransformWorker[In, Out any] struct {
	*worker[In]

	fn  TransformFunc[In, Out]
	out queue.Queue[Out]
}

// NewTransformWorker creates a TransformWorker that runs until stop is set.
// stop is owned by the caller and may be shared with other workers.
func NewTransformWorker[In, Out any](fn TransformFunc[In, Out], in queue.Queue[In], out queue.Queue[Out], stop *StopFlag, opts ...Option) (*TransformWorker[In, Out], error) {
	if fn == nil {
		return nil, ErrNilFunc
	}

	if in == nil || out == nil {
		return nil, ErrNilQueue
	}

	if stop == nil {
		return nil, ErrMissingStopFlag
	}

	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}

	return &TransformWorker[In, Out]{
		worker: newWorker(in, stop, o),
		fn:     fn,
		out:    out,
	}, nil
}

// Start runs the worker loop on a new goroutine. Calls after the first are no-ops.
func (w *TransformWorker[In, Out]) Start() {
	w.launch(w.handle)
}

func (w *TransformWorker[In, Out]) handle(ctx context.Context, item In) error {
	var result Out
	err := w.call(ctx, func(fnCtx context.Context) (innerErr error) {
		result, innerErr = w.fn(fnCtx, item, w.opts.args...)
		return innerErr
	})

	if errors.Is(err, ErrSuppress) {
		w.stats.suppressed.Add(1)
		w.log.Debug(fmt.Sprintf("worker %s suppressed an item", w.id))
		return nil
	}

	if err != nil {
		return err
	}

	// blocks while the output queue is full
	if err = w.out.Put(ctx, result); err != nil {
		return fmt.Errorf("cannot forward result: %w", err)
	}
	w.stats.forwarded.Add(1)

	return nil
}
