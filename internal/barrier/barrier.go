// Package barrier provides the two rendezvous primitives PolyHJ's worker
// threads use, ported from util/util.c: a coarse collective barrier for
// phase transitions (Barrier-A, pthread_barrier_t in the C reference) and
// a lock-free rotating barrier for the hot inner build/probe loops
// (Barrier-B, util.c's sbarrier()). Go's goroutines stand in for pthreads
// throughout; Barrier is a sync.Cond generation counter, and SBarrier
// keeps the C sbarrier's atomic-ring design intact because its exact
// step-rotation behavior is part of the join algorithm's contract, not an
// implementation detail to paper over with a channel.
package barrier

import "sync"

// Barrier is a reusable N-way rendezvous point, the Go analogue of
// pthread_barrier_t plus barrier_init()/barrier(). Unlike sync.WaitGroup,
// it can be waited on repeatedly without re-construction.
type Barrier struct {
	mu      sync.Mutex
	cond    *sync.Cond
	n       int
	waiting int
	gen     uint64
}

// New creates a Barrier for n participants. n must be >= 1.
func New(n int) *Barrier {
	b := &Barrier{n: n}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks until all n participants have called Wait, then releases
// them all together, matching pthread_barrier_wait's semantics.
func (b *Barrier) Wait() {
	b.mu.Lock()
	defer b.mu.Unlock()

	gen := b.gen
	b.waiting++
	if b.waiting == b.n {
		b.waiting = 0
		b.gen++
		b.cond.Broadcast()
		return
	}
	for gen == b.gen {
		b.cond.Wait()
	}
}
