package liteworker

import (
	"context"
	"errors"
)

// ErrSuppress is returned by a TransformFunc, possibly wrapped, when no
// result should be forwarded for the item. The item is still acknowledged
// and is not counted as a failure.
var ErrSuppress = errors.New("suppress output")

// A TransformFunc turns one input item into one output item. args are the
// values bound with WithArgs and are passed on every call.
type TransformFunc[In, Out any] func(ctx context.Context, item In, args ...any) (Out, error)

// A SinkFunc consumes one input item and produces no output.
type SinkFunc[In any] func(ctx context.Context, item In, args ...any) error
