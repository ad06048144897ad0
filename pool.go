package liteworker

import "context"

type Pool[In any] interface {
	// Start starts every worker in the pool, and should only be called once
	Start()

	// Stop sets the pool's stop flag and waits for every worker to return,
	// and should only be called once
	Stop() error

	// AddWork puts an item on the pool's input queue. It is only valid
	// before Stop() has been called.
	AddWork(context.Context, In) error
}
