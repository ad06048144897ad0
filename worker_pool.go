package liteworker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/jirevwe/liteworker/queue"
)

// runner is the part of a worker the pool drives.
type runner interface {
	Start()
	Wait()
	Name() string
	Stats() Stats
}

// WorkerPool runs a fixed number of workers that share one input queue and
// one stop flag.
type WorkerPool[In any] struct {
	// queue from which workers consume work
	in queue.Queue[In]

	// ensure the pool can only be started once
	start sync.Once

	// ensure the pool can only be stopped once
	stop sync.Once

	started atomic.Bool

	// flag to signal all the workers to stop
	globalQuit *StopFlag

	workers []runner

	log *slog.Logger
}

var _ Pool[int] = (*WorkerPool[int])(nil)

// NewTransformPool creates a pool of n TransformWorkers. WithName sets the
// prefix of the worker names, which default to worker_1 .. worker_n.
func NewTransformPool[In, Out any](n int, fn TransformFunc[In, Out], in queue.Queue[In], out queue.Queue[Out], opts ...Option) (*WorkerPool[In], error) {
	return newWorkerPool(n, in, opts, func(stop *StopFlag, workerOpts []Option) (runner, error) {
		return NewTransformWorker(fn, in, out, stop, workerOpts...)
	})
}

// NewSinkPool creates a pool of n managed SinkWorkers.
func NewSinkPool[In any](n int, fn SinkFunc[In], in queue.Queue[In], opts ...Option) (*WorkerPool[In], error) {
	return newWorkerPool(n, in, opts, func(stop *StopFlag, workerOpts []Option) (runner, error) {
		return NewSinkWorker(fn, in, stop, workerOpts...)
	})
}

func newWorkerPool[In any](n int, in queue.Queue[In], opts []Option, newRunner func(*StopFlag, []Option) (runner, error)) (*WorkerPool[In], error) {
	if n < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidWorkerCount, n)
	}

	// only the name and logger matter here, workers validate the rest
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	prefix := o.name
	if prefix == "" {
		prefix = "worker"
	}

	log := o.log
	if log == nil {
		log = slog.New(slog.NewTextHandler(os.Stdout, nil))
	}

	p := &WorkerPool[In]{
		in:         in,
		globalQuit: NewStopFlag(),
		workers:    make([]runner, n),
		log:        log,
	}

	for i := 0; i < n; i++ {
		workerOpts := append(append([]Option{}, opts...), WithName(fmt.Sprintf("%s_%d", prefix, i+1)), WithLogger(log))

		w, err := newRunner(p.globalQuit, workerOpts)
		if err != nil {
			return nil, err
		}
		p.workers[i] = w
	}

	return p, nil
}

func (p *WorkerPool[In]) Start() {
	p.start.Do(func() {
		p.log.Info("starting worker pool")
		for _, w := range p.workers {
			w.Start()
		}
		p.started.Store(true)
	})
}

func (p *WorkerPool[In]) Stop() error {
	p.stop.Do(func() {
		p.log.Info("stopping worker pool")

		// tell each worker to stop processing items
		p.globalQuit.Set()

		// waits for a concurrent Start, and keeps later ones from starting workers
		p.start.Do(func() {})

		// wait for all of them to clean themselves up
		if p.started.Load() {
			for _, w := range p.workers {
				w.Wait()
			}
		}

		p.log.Info("worker pool has been stopped")
	})
	return nil
}

// AddWork puts an item on the input queue. If the queue is bounded and full
// this blocks until a worker takes an item or ctx is done.
func (p *WorkerPool[In]) AddWork(ctx context.Context, item In) error {
	if p.globalQuit.IsSet() {
		return ErrWorkerPoolClosed
	}

	return p.in.Put(ctx, item)
}

// Size returns the number of workers in the pool.
func (p *WorkerPool[In]) Size() int { return len(p.workers) }

// StopFlag returns the flag shared by the pool's workers.
func (p *WorkerPool[In]) StopFlag() *StopFlag { return p.globalQuit }

// Names returns the worker names in start order.
func (p *WorkerPool[In]) Names() []string {
	names := make([]string, len(p.workers))
	for i, w := range p.workers {
		names[i] = w.Name()
	}
	return names
}

// Stats sums the counters of every worker in the pool.
func (p *WorkerPool[In]) Stats() Stats {
	var s Stats
	for _, w := range p.workers {
		s = s.add(w.Stats())
	}
	return s
}
