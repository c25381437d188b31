package colbp

// ModelIII is the skew-triggered build/probe: Radix.R > 0 but Radix.S == 0,
// so R alone was ICP'd (at a radix one higher than the join started with,
// per the skew switch in internal/icp) and built, via the same group-swap
// schedule as Model II, into one GLOBAL table sized |R|+1 and indexed by
// the full key rather than a partition-local quotient. S is never
// partitioned; the probe phase is a single unpartitioned scan over all of
// S. Ported from buildprobe_III.c.
type ModelIII struct{}

func (ModelIII) Run(c *Context, w *WorkerContext) (Result, error) {
	r, _ := c.Radix.Snapshot()
	fanoutR := uint32(1) << r
	maskR := fanoutR - 1

	size := c.RelRSize + 1

	if w.Tid == 0 {
		c.mu.Lock()
		c.globalTable = make([]uint32, size)
		c.mu.Unlock()
	}
	c.BarrierA.Wait()

	table := c.globalTable
	zeroShare(table, w.Tid, c.Threads)
	c.BarrierA.Wait()

	iters := fanoutR / uint32(c.NumGroups)

	var checksum uint64

	for i := uint32(0); i < iters; i++ {
		for g := 0; g < c.NumGroups; g++ {
			h := uint32(g+w.Group) % uint32(c.NumGroups)
			p := h*iters + i

			for b, blocks := range w.BlocksR.Pos {
				blk := &blocks[h]
				idx, end := blk.Start, blk.End
				for idx < end && p == hashx(w.SubR.Tuples[idx].Key, maskR, c.ModelIIIShift) {
					t := w.SubR.Tuples[idx]
					table[t.Key] = t.Payload
					checksum += uint64(t.Key)
					idx++
				}
				w.BlocksR.Pos[b][h].Start = idx
			}

			c.SBarrier.Wait(w.Tid)
		}
	}
	c.BarrierA.Wait()

	var matches uint64
	for _, t := range w.SubS.Tuples {
		checksum += uint64(table[t.Key])
		matches++
	}
	c.BarrierA.Wait()

	return Result{Matches: matches, Checksum: checksum}, nil
}
