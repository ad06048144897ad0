package liteworker

import (
	"context"
	"errors"
	"time"
)

type Retry struct {
	sleepDuration time.Duration
	RetryFunc     func() error
	numTries      int
}

func NewRetry(numTries int, sleepDuration time.Duration, retryFunc func() error) *Retry {
	return &Retry{
		sleepDuration: sleepDuration,
		RetryFunc:     retryFunc,
		numTries:      numTries,
	}
}

// Do calls RetryFunc until it succeeds, returns ErrSuppress, or numTries calls
// have been made. The sleep between calls is cut short when ctx is done. It
// returns the number of calls made after the first one, and the last error.
func (r *Retry) Do(ctx context.Context) (retried int, err error) {
	for i := 0; i < r.numTries; i++ {
		if i > 0 {
			retried++
		}

		err = r.RetryFunc()
		if err == nil || errors.Is(err, ErrSuppress) || i == r.numTries-1 {
			return retried, err
		}

		if r.sleepDuration <= 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return retried, err
		case <-time.After(r.sleepDuration):
		}
	}

	return retried, err
}
