package colbp

import "github.com/ja7ad/polyhj/internal/barrier"

// ModelIV handles Radix.R > Radix.S > 0: R is ICP'd finer (radix R) than S
// (radix S), so every S partition corresponds to several R partitions.
//
// PolyHJ never shipped a buildprobe_IV.c — run.c's own dispatch asserts
// false rather than calling one. This implementation is a documented
// generalization, not a recovered original: R is built through
// the same group-swap schedule as Model II (NumGroups tables, one writer
// group per table per iteration), but since S was ICP'd coarser with a
// single sub-block per block (see internal/icp's RadixS branch), a
// build/probe iteration can't interleave the way Model II's does — one
// coarse S partition spans several R partitions built in different
// iterations. A full build pass therefore precedes a single probe scan
// over S, which means every R partition a group builds must stay resident
// in its table for the whole probe: each group's table is laid out as
// iters consecutive partition segments of partSlots buckets each, indexed
// by (p % iters)*partSlots + key>>RadixR, rather than Model II's single
// per-iteration segment that each new partition overwrites. ICP's coarse
// S ordering exists for the probe scan's cache locality, not for
// correctness; the probe recovers each tuple's table and bucket directly
// from its own key.
type ModelIV struct{}

func (ModelIV) Run(c *Context, w *WorkerContext) (Result, error) {
	r, _ := c.Radix.Snapshot()
	fanoutR := uint32(1) << r
	maskR := fanoutR - 1

	iters := fanoutR / uint32(c.NumGroups)
	avgPartition := (c.RelRSize >> r) + 1
	partSlots := uint32(1) << barrier.LgCeil(avgPartition)
	tableSize := iters * partSlots

	if w.Tid == 0 {
		c.mu.Lock()
		c.groupTables = make([][]uint32, c.NumGroups)
		c.mu.Unlock()
	}
	c.BarrierA.Wait()

	if w.Tid == w.Group {
		c.groupTables[w.Group] = make([]uint32, tableSize)
	}
	c.BarrierA.Wait()

	for g := 0; g < c.NumGroups; g++ {
		zeroShare(c.groupTables[g], w.Tid, c.Threads)
	}
	c.BarrierA.Wait()

	var checksum uint64

	for i := uint32(0); i < iters; i++ {
		for g := 0; g < c.NumGroups; g++ {
			h := uint32(g+w.Group) % uint32(c.NumGroups)
			p := h*iters + i
			table := c.groupTables[h]
			segment := i * partSlots

			for b, blocks := range w.BlocksR.Pos {
				blk := &blocks[h]
				idx, end := blk.Start, blk.End
				for idx < end && p == hashx(w.SubR.Tuples[idx].Key, maskR, 0) {
					t := w.SubR.Tuples[idx]
					table[segment+t.Key>>r] = t.Payload
					checksum += uint64(t.Key)
					idx++
				}
				w.BlocksR.Pos[b][h].Start = idx
			}

			c.SBarrier.Wait(w.Tid)
		}
	}

	// Every R partition must be fully built before any S tuple is probed,
	// since one coarse S partition spans several fine R partitions built
	// in different iterations above.
	c.BarrierA.Wait()

	var matches uint64
	for _, t := range w.SubS.Tuples {
		k := t.Key
		p := k & maskR
		h := p / iters
		segment := (p % iters) * partSlots
		checksum += uint64(c.groupTables[h][segment+k>>r])
		matches++
	}

	return Result{Matches: matches, Checksum: checksum}, nil
}
