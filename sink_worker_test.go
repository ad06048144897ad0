package liteworker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jirevwe/liteworker/queue/memory"
	"github.com/stretchr/testify/require"
)

type collector struct {
	mu    sync.Mutex
	items []int
}

func (c *collector) sink(_ context.Context, item int, _ ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, item)
	return nil
}

func (c *collector) seen() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int{}, c.items...)
}

func TestSinkWorker_Managed(t *testing.T) {
	in := memory.New[int](0)
	fill(t, in, 1, 2, 3, 4)

	c := &collector{}
	stop := NewStopFlag()
	w, err := NewSinkWorker(c.sink, in, stop, WithLogger(slogger), WithPollTimeout(testPoll))
	require.NoError(t, err)
	require.False(t, w.Daemon())

	w.Start()
	join(t, in)

	stop.Set()
	waitStopped(t, w.Done(), time.Second)

	require.Equal(t, []int{1, 2, 3, 4}, c.seen())
	require.Equal(t, Stats{Processed: 4}, w.Stats())
}

func TestSinkWorker_MissingStopFlag(t *testing.T) {
	c := &collector{}
	w, err := NewSinkWorker(c.sink, memory.New[int](0), nil)
	require.ErrorIs(t, err, ErrMissingStopFlag)
	require.Nil(t, w)
}

func TestSinkWorker_Validation(t *testing.T) {
	c := &collector{}

	_, err := NewSinkWorker[int](nil, memory.New[int](0), NewStopFlag())
	require.ErrorIs(t, err, ErrNilFunc)

	_, err = NewSinkWorker(c.sink, nil, NewStopFlag())
	require.ErrorIs(t, err, ErrNilQueue)

	_, err = NewDaemonSinkWorker(c.sink, nil)
	require.ErrorIs(t, err, ErrNilQueue)

	_, err = NewDaemonSinkWorker(c.sink, memory.New[int](0), WithPollTimeout(-time.Second))
	require.ErrorIs(t, err, ErrInvalidOption)
}

func TestSinkWorker_Daemon(t *testing.T) {
	in := memory.New[int](0)
	c := &collector{}

	w, err := NewDaemonSinkWorker(c.sink, in, WithLogger(slogger), WithPollTimeout(10*time.Millisecond))
	require.NoError(t, err)
	require.True(t, w.Daemon())

	w.Start()

	// an unrelated flag has no effect on a daemon worker
	unrelated := NewStopFlag()
	unrelated.Set()

	// several poll intervals go by with nothing to do
	time.Sleep(50 * time.Millisecond)

	select {
	case <-w.Done():
		t.Fatal("daemon worker stopped")
	default:
	}

	fill(t, in, 1, 2)
	join(t, in)
	require.Equal(t, []int{1, 2}, c.seen())

	select {
	case <-w.Done():
		t.Fatal("daemon worker stopped")
	default:
	}
}

func TestSinkWorker_Failures(t *testing.T) {
	in := memory.New[int](0)
	fill(t, in, 1, 2, 3)

	fn := func(_ context.Context, item int, _ ...any) error {
		switch item {
		case 1:
			return errors.New("bad item")
		case 2:
			panic("worse item")
		case 3:
			return ErrSuppress
		}
		return nil
	}

	store := &memoryStore{}
	stop := NewStopFlag()
	w, err := NewSinkWorker(fn, in, stop, WithLogger(slogger), WithPollTimeout(testPoll), WithDeadLetter(store))
	require.NoError(t, err)

	w.Start()
	join(t, in)
	stop.Set()
	w.Wait()

	require.Equal(t, Stats{Processed: 3, Failed: 2, Suppressed: 1}, w.Stats())
	require.Len(t, store.all(), 2)
}

func TestSinkWorker_Args(t *testing.T) {
	in := memory.New[int](0)
	fill(t, in, 1)

	var got []any
	fn := func(_ context.Context, _ int, args ...any) error {
		got = args
		return nil
	}

	stop := NewStopFlag()
	w, err := NewSinkWorker(fn, in, stop, WithLogger(slogger), WithPollTimeout(testPoll), WithArgs("a", 2))
	require.NoError(t, err)

	w.Start()
	join(t, in)
	stop.Set()
	w.Wait()

	require.Equal(t, []any{"a", 2}, got)
}
