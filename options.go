package liteworker

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jirevwe/liteworker/deadletter"
	"github.com/oklog/ulid/v2"
)

// DefaultPollTimeout bounds each dequeue attempt, and with it shutdown latency.
const DefaultPollTimeout = time.Second

// ErrorHandler is called with the worker name, the failed item and the error.
type ErrorHandler func(worker string, item any, err error)

// Option configures a worker or a pool.
type Option func(*options)

type options struct {
	name         string
	pollTimeout  time.Duration
	log          *slog.Logger
	args         []any
	onError      ErrorHandler
	deadLetter   deadletter.Store
	retries      int
	retryBackoff time.Duration
}

// WithPollTimeout sets how long a worker waits on an empty queue before
// checking its stop flag again.
func WithPollTimeout(d time.Duration) Option {
	return func(o *options) { o.pollTimeout = d }
}

// WithName sets the worker name used in logs and dead letters. On a pool it
// sets the prefix of the worker names.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithArgs binds extra arguments passed to the worker function on every call.
func WithArgs(args ...any) Option {
	return func(o *options) { o.args = args }
}

func WithErrorHandler(h ErrorHandler) Option {
	return func(o *options) { o.onError = h }
}

// WithDeadLetter records every failed item in store.
func WithDeadLetter(store deadletter.Store) Option {
	return func(o *options) { o.deadLetter = store }
}

// WithRetry calls a failing worker function up to attempts times in total,
// sleeping backoff between calls.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(o *options) {
		o.retries = attempts
		o.retryBackoff = backoff
	}
}

func newOptions(opts []Option) (*options, error) {
	o := &options{
		pollTimeout: DefaultPollTimeout,
		retries:     1,
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.pollTimeout <= 0 {
		return nil, fmt.Errorf("%w: poll timeout must be positive, got %s", ErrInvalidOption, o.pollTimeout)
	}

	if o.retries < 1 {
		return nil, fmt.Errorf("%w: retry attempts must be at least 1, got %d", ErrInvalidOption, o.retries)
	}

	if o.retryBackoff < 0 {
		return nil, fmt.Errorf("%w: retry backoff must not be negative, got %s", ErrInvalidOption, o.retryBackoff)
	}

	if o.log == nil {
		o.log = slog.New(slog.NewTextHandler(os.Stdout, nil))
	}

	if o.name == "" {
		o.name = fmt.Sprintf("worker_%s", ulid.Make().String())
	}

	return o, nil
}
