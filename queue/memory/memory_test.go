package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jirevwe/liteworker/queue"
	"github.com/stretchr/testify/require"
)

func TestQueue_FIFO(t *testing.T) {
	ctx := context.Background()
	q := New[int](0)

	for i := 1; i <= 4; i++ {
		require.NoError(t, q.Put(ctx, i))
	}
	require.Equal(t, 4, q.Len())

	for i := 1; i <= 4; i++ {
		v, err := q.Get(ctx, time.Second)
		require.NoError(t, err)
		require.Equal(t, i, v)
	}
	require.Equal(t, 0, q.Len())
	require.Equal(t, 4, q.Unfinished())
}

func TestQueue_GetTimesOut(t *testing.T) {
	q := New[string](0)

	start := time.Now()
	_, err := q.Get(context.Background(), 50*time.Millisecond)
	require.ErrorIs(t, err, queue.ErrEmpty)
	require.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestQueue_GetContextCancelled(t *testing.T) {
	q := New[string](0)
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := q.Get(ctx, 0)
	require.ErrorIs(t, err, context.Canceled)
}

func TestQueue_GetWakesOnPut(t *testing.T) {
	q := New[int](0)

	go func() {
		time.Sleep(20 * time.Millisecond)
		require.NoError(t, q.TryPut(7))
	}()

	v, err := q.Get(context.Background(), time.Second)
	require.NoError(t, err)
	require.Equal(t, 7, v)
}

func TestQueue_BoundedPutBlocks(t *testing.T) {
	ctx := context.Background()
	q := New[int](1)

	require.NoError(t, q.Put(ctx, 1))
	require.ErrorIs(t, q.TryPut(2), queue.ErrFull)

	put := make(chan struct{})
	go func() {
		require.NoError(t, q.Put(ctx, 2))
		close(put)
	}()

	select {
	case <-put:
		t.Fatal("put should block while the queue is full")
	case <-time.After(50 * time.Millisecond):
	}

	v, err := q.Get(ctx, time.Second)
	require.NoError(t, err)
	require.Equal(t, 1, v)

	select {
	case <-put:
	case <-time.After(time.Second):
		t.Fatal("put did not unblock after a get")
	}
}

func TestQueue_PutContextCancelled(t *testing.T) {
	q := New[int](1)
	require.NoError(t, q.TryPut(1))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	require.ErrorIs(t, q.Put(ctx, 2), context.DeadlineExceeded)
}

func TestQueue_TaskDoneTooMany(t *testing.T) {
	q := New[int](0)
	require.ErrorIs(t, q.TaskDone(), queue.ErrTaskDoneTooMany)

	require.NoError(t, q.TryPut(1))
	require.NoError(t, q.TaskDone())
	require.ErrorIs(t, q.TaskDone(), queue.ErrTaskDoneTooMany)
}

func TestQueue_Join(t *testing.T) {
	ctx := context.Background()
	q := New[int](0)

	for i := 0; i < 10; i++ {
		require.NoError(t, q.Put(ctx, i))
	}

	go func() {
		for i := 0; i < 10; i++ {
			_, err := q.Get(ctx, time.Second)
			require.NoError(t, err)
			require.NoError(t, q.TaskDone())
		}
	}()

	joinCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, q.Join(joinCtx))
	require.Equal(t, 0, q.Unfinished())
}

func TestQueue_JoinContextCancelled(t *testing.T) {
	q := New[int](0)
	require.NoError(t, q.TryPut(1))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, q.Join(ctx), context.DeadlineExceeded)
}

func TestQueue_ConcurrentGetters(t *testing.T) {
	ctx := context.Background()
	q := New[int](0)
	const n = 500

	for i := 0; i < n; i++ {
		require.NoError(t, q.Put(ctx, i))
	}

	var (
		mu   sync.Mutex
		seen = make(map[int]int)
		wg   sync.WaitGroup
	)

	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				v, err := q.Get(ctx, 50*time.Millisecond)
				if err != nil {
					return
				}
				mu.Lock()
				seen[v]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, n)
	for v, c := range seen {
		require.Equal(t, 1, c, "item %d delivered %d times", v, c)
	}
}
