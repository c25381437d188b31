package barrier

import "sync/atomic"

// MagicNum is the size of the slot ring SBarrier rotates through, ported
// verbatim from util.c's MAGICNUM. A ring of 8 lets one worker prepare the
// next rendezvous slot while another is still draining the previous one,
// without a full barrier_init()-style reset between calls.
const MagicNum = 8

// SBarrier is PolyHJ's hot-loop barrier (util.c's sbarrier()): an N-way
// rendezvous built from a ring of atomic counters instead of a
// pthread_barrier_t, so it can be called thousands of times per second
// inside ICP and ColBP without syscall overhead. Each participant tracks
// its own position in the ring via Wait's tid argument; tid must be a
// dense [0, n) worker index, matching the C reference's use of the
// thread's own tid as the ring cursor.
type SBarrier struct {
	n     int
	slots [MagicNum]atomic.Uint32
	steps []uint8
}

// NewSBarrier builds an SBarrier for n participants.
func NewSBarrier(n int) *SBarrier {
	return &SBarrier{n: n, steps: make([]uint8, n)}
}

// Wait blocks tid until all n participants have called Wait for the
// current ring slot, then advances tid to the next slot. The slot
// rotation means a participant that calls Wait again immediately is
// rendezvousing on a fresh counter, not the one it just drained.
func (b *SBarrier) Wait(tid int) {
	step := b.steps[tid]
	slot := &b.slots[step]

	w := slot.Add(1)
	for w != uint32(b.n) {
		w = slot.Load()
	}

	if tid == 0 {
		prev := step
		if prev == 0 {
			prev = MagicNum - 1
		} else {
			prev--
		}
		b.slots[prev].Store(0)
	}
	b.steps[tid] = (step + 1) % MagicNum
}
