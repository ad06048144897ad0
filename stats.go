package liteworker

import "sync/atomic"

// Stats is a snapshot of a worker's counters.
type Stats struct {
	// items taken from the input queue and acknowledged
	Processed uint64

	// results put on the output queue
	Forwarded uint64

	// items whose function returned ErrSuppress
	Suppressed uint64

	// items whose function failed or panicked, or whose result could not be forwarded
	Failed uint64

	// extra calls made by WithRetry
	Retried uint64
}

func (s Stats) add(o Stats) Stats {
	return Stats{
		Processed:  s.Processed + o.Processed,
		Forwarded:  s.Forwarded + o.Forwarded,
		Suppressed: s.Suppressed + o.Suppressed,
		Failed:     s.Failed + o.Failed,
		Retried:    s.Retried + o.Retried,
	}
}

type counters struct {
	processed  atomic.Uint64
	forwarded  atomic.Uint64
	suppressed atomic.Uint64
	failed     atomic.Uint64
	retried    atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Processed:  c.processed.Load(),
		Forwarded:  c.forwarded.Load(),
		Suppressed: c.suppressed.Load(),
		Failed:     c.failed.Load(),
		Retried:    c.retried.Load(),
	}
}
