package liteworker

import (
	"errors"
	"fmt"
)

var (
	ErrNilFunc            = errors.New("worker function is nil")
	ErrNilQueue           = errors.New("worker queue is nil")
	ErrMissingStopFlag    = errors.New("a managed worker requires a stop flag")
	ErrInvalidOption      = errors.New("invalid worker option")
	ErrInvalidWorkerCount = errors.New("worker count must be at least 1")
	ErrWorkerPoolClosed   = errors.New("worker pool is not active")
)

// PanicError wraps a value recovered from a panicking worker function or
// failure hook.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
