package icp

import (
	"log/slog"
	"sync/atomic"
)

// Thresholds controlling the embedded skew detector, named rather than
// inlined so the arbitrary cutoffs PolyHJ's partition.c keeps as bare
// literals are visible at a glance. Values are unchanged from the
// reference.
const (
	// skewSRatioThreshold is the minimum |S|/|R| ratio (integer division)
	// before skew detection runs at all.
	skewSRatioThreshold = 3

	// skewFractionThreshold is the fraction of a block the two most
	// frequent partitions must together exceed, when fanout > 4.
	skewFractionThreshold = 0.35

	// skewSmallFanoutThreshold is the fanout at/below which a different,
	// single-partition threshold applies instead of the A+B fraction.
	skewSmallFanoutThreshold = 4

	// skewSmallFanoutSlack is the flat slack added to half the block size
	// for the single-partition threshold when fanout <= 4.
	skewSmallFanoutSlack = 10
)

// skewState is the process-wide skew-vote tally shared by every worker
// partitioning relation S, the Go analogue of the global HighSkewObserved
// counter and ChangedRadixS flag in partition.c.
type skewState struct {
	highObserved atomic.Uint32
	changed      atomic.Bool
}

// estimateSkew examines one worker's histogram of relation S's first
// block and votes on whether the join should switch to Model III. It
// requires |S|/|R| >= skewSRatioThreshold; below that, skew in S can't
// cost enough (relative to R, which the switch makes global) to be worth
// the switch, so every worker returns false immediately without voting
// or synchronizing.
//
// Workers that do vote pass through the sbarrier pair together: the
// first rendezvous ensures every vote has been tallied before worker 0
// inspects the total; the second ensures every worker observes the
// possibly-updated radix before any of them acts on the verdict.
func (c *Context) estimateSkew(tid int, histo []uint32, blockSize uint32) bool {
	if c.RelSSize/c.RelRSize < skewSRatioThreshold {
		return false
	}

	var maxA, maxB uint32
	for _, h := range histo {
		switch {
		case h > maxA:
			maxB = maxA
			maxA = h
		case h > maxB:
			maxB = h
		}
	}

	fanout := uint32(len(histo))
	skewThreshold := uint32(float64(blockSize) * skewFractionThreshold)

	trigger := (fanout > skewSmallFanoutThreshold && maxA+maxB > skewThreshold) ||
		(fanout <= skewSmallFanoutThreshold && maxA > blockSize/2+skewSmallFanoutSlack)
	if trigger {
		c.skew.highObserved.Add(1)
	}

	c.SBarrier.Wait(tid)

	if tid == 0 && c.skew.highObserved.Load() == uint32(c.Threads) {
		c.skew.changed.Store(true)
		r, _ := c.Radix.Snapshot()
		c.Radix.S.Store(0)
		c.Radix.R.Store(r + 1)
		slog.Info("high skew observed, switching to Model III", "f_R", r+1, "f_S", 0)
	}

	c.SBarrier.Wait(tid)

	return c.skew.highObserved.Load() == uint32(c.Threads)
}
