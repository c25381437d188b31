package colbp

// ModelI is the unpartitioned build/probe: Radix.R == Radix.S == 0, so
// every key already addresses a single shared hash table of size |R|+1
// directly (no partition id, no shift). Ported from buildprobe_I.c.
type ModelI struct{}

func (ModelI) Run(c *Context, w *WorkerContext) (Result, error) {
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

	var matches, checksum uint64

	// R's keys are a permutation of [1,|R|] split into disjoint,
	// contiguous worker ranges, so each worker's build writes into a
	// region of table no other worker touches.
	for _, t := range w.SubR.Tuples {
		table[t.Key] = t.Payload
		checksum += uint64(t.Key)
	}
	c.BarrierA.Wait()

	// Every S tuple carries a foreign key into R's range, so every probe
	// finds a match; matches counts S tuples processed, not successful
	// lookups.
	for _, t := range w.SubS.Tuples {
		checksum += uint64(table[t.Key])
		matches++
	}

	return Result{Matches: matches, Checksum: checksum}, nil
}
