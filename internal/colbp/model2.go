package colbp

import "github.com/ja7ad/polyhj/internal/barrier"

// ModelII is the fully partitioned build/probe: Radix.R == Radix.S > 0, so
// R and S were ICP'd to the same fanout and NumGroups hash tables (one per
// LLC group) are built and probed through a rotating group-swap schedule.
// Ported from buildprobe_II.c.
type ModelII struct{}

func (ModelII) Run(c *Context, w *WorkerContext) (Result, error) {
	r, _ := c.Radix.Snapshot()
	fanoutR := uint32(1) << r
	maskR := fanoutR - 1

	avgPartition := (c.RelRSize >> r) + 1
	tableSize := uint32(1) << barrier.LgCeil(avgPartition)

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

	var matches, checksum uint64
	iters := fanoutR / uint32(c.NumGroups)

	for i := uint32(0); i < iters; i++ {
		for g := 0; g < c.NumGroups; g++ {
			h := uint32(g+w.Group) % uint32(c.NumGroups)
			p := h*iters + i
			table := c.groupTables[h]

			for b, blocks := range w.BlocksR.Pos {
				blk := &blocks[h]
				idx, end := blk.Start, blk.End
				for idx < end && p == hashx(w.SubR.Tuples[idx].Key, maskR, 0) {
					t := w.SubR.Tuples[idx]
					table[t.Key>>r] = t.Payload
					checksum += uint64(t.Key)
					idx++
				}
				w.BlocksR.Pos[b][h].Start = idx
			}

			c.SBarrier.Wait(w.Tid)
		}

		for g := c.NumGroups - 1; g >= 0; g-- {
			h := uint32(g+w.Group) % uint32(c.NumGroups)
			p := h*iters + i
			table := c.groupTables[h]

			for b, blocks := range w.BlocksS.Pos {
				blk := &blocks[h]
				idx, end := blk.Start, blk.End
				for idx < end && p == hashx(w.SubS.Tuples[idx].Key, maskR, 0) {
					t := w.SubS.Tuples[idx]
					checksum += uint64(table[t.Key>>r])
					matches++
					idx++
				}
				w.BlocksS.Pos[b][h].Start = idx
			}
		}

		c.SBarrier.Wait(w.Tid)
	}

	return Result{Matches: matches, Checksum: checksum}, nil
}
