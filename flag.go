package liteworker

import (
	"context"
	"sync"
	"sync/atomic"
)

// StopFlag is a cancellation signal shared by the workers that must stop
// together. The zero value is ready to use; it is safe for concurrent use.
type StopFlag struct {
	set  atomic.Bool
	once sync.Once
	init sync.Once
	done chan struct{}
}

func NewStopFlag() *StopFlag {
	return &StopFlag{}
}

// Set requests shutdown. Calls after the first are no-ops.
func (f *StopFlag) Set() {
	f.once.Do(func() {
		f.set.Store(true)
		close(f.channel())
	})
}

// IsSet reports whether Set has been called.
func (f *StopFlag) IsSet() bool {
	return f.set.Load()
}

// Done returns a channel that is closed once Set has been called.
func (f *StopFlag) Done() <-chan struct{} {
	return f.channel()
}

func (f *StopFlag) channel() chan struct{} {
	f.init.Do(func() {
		f.done = make(chan struct{})
	})
	return f.done
}

// context returns a context that is cancelled when the flag is set.
func (f *StopFlag) context() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	done := f.channel()
	go func() {
		select {
		case <-done:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
