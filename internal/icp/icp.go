// Package icp implements In-place Cache-aware Partitioning: each worker
// reorders its own contiguous sub-relation, in place, into 2^radix
// partitions sized to fit the LLC, processing one cache-sized block at a
// time with a single auxiliary block buffer absorbing the one lookahead
// the in-place scatter needs. It is a direct port of PolyHJ's
// partition.c, including the skew detector embedded in relation S's
// first block (skew.go).
package icp

import (
	"fmt"

	"github.com/ja7ad/polyhj/internal/barrier"
	"github.com/ja7ad/polyhj/internal/types"
)

// ChunkSize is the tuple count per block, ported verbatim from
// common.h's ChunkSize = (1<<15)-10: large enough to amortize
// per-block overhead, small enough that a block's working set (plus the
// hash table it feeds) fits in an LLC group's share of cache.
const ChunkSize = (1 << 15) - 10

// Context is the state ICP shares across a join's worker goroutines: the
// radix configuration the skew detector may mutate, the relation sizes
// needed for the skew precondition and the Model III shift, and the
// sbarrier pair used to synchronize a skew-triggered switch to Model III.
type Context struct {
	Radix     *types.RadixConfig
	Threads   int
	NumGroups int
	RelRSize  uint32
	RelSSize  uint32
	SBarrier  *barrier.SBarrier

	skew skewState
}

// NewContext builds an ICP Context for a join with the given worker count,
// number of LLC groups, and relation sizes.
func NewContext(radix *types.RadixConfig, threads, numGroups int, relRSize, relSSize uint32) *Context {
	return &Context{
		Radix:     radix,
		Threads:   threads,
		NumGroups: numGroups,
		RelRSize:  relRSize,
		RelSSize:  relSSize,
		SBarrier:  barrier.NewSBarrier(threads),
	}
}

func hashx(key, mask uint32, shift uint32) uint32 {
	return (key >> shift) & mask
}

// Partition reorders sub.Tuples in place into 2^radix partitions, where
// radix is the current Radix.R or Radix.S for sub.ID, returning the
// per-block/sub-block position metadata Build/Probe needs. A radix of 0
// is a no-op returning nil, matching the C reference's early return.
//
// When sub is relation S's first block and the skew detector (skew.go)
// observes unanimous high skew, Radix.S is switched to 0 and Radix.R is
// incremented under an sbarrier pair, and Partition restarts itself with
// the new radix — which, being 0, returns nil on the retry.
func (c *Context) Partition(tid int, sub *types.SubRelation) (*types.BlockMeta, error) {
	r, s := c.Radix.Snapshot()

	var radix uint32
	if sub.ID == types.RelationR {
		radix = r
	} else {
		radix = s
	}
	if radix == 0 {
		return nil, nil
	}

	fanout := uint32(1) << radix
	mask := fanout - 1

	// Under Model III, R is hashed with a high-bit shift so its single
	// global table spreads R's whole keyspace across Radix.R bits beyond
	// what partitioning alone would use (ModelIII_shift in the C
	// reference). Under Model IV, S is partitioned coarser than R; it is
	// hashed over the *high* bits of R's own partition id (a shift of
	// RadixR-RadixS) so that an S partition's id equals the shared high
	// bits of every R partition it should be probed against — see
	// internal/colbp.ModelIV and the Model IV design note in DESIGN.md.
	var shift uint32
	switch {
	case sub.ID == types.RelationR && s == 0 && r > 0:
		shift = barrier.LgCeil(c.RelRSize) - r - 1
	case sub.ID == types.RelationS && r > s && s > 0:
		shift = r - s
	}

	T := sub.Tuples
	n := sub.Size

	numBlocks := barrier.DivCeil(n, ChunkSize)
	avgBlockSize := n / numBlocks
	remainder := n % numBlocks
	firstBlockSize := avgBlockSize
	if remainder > 0 {
		firstBlockSize++
	}

	numSubBlocks := uint32(c.NumGroups)
	if sub.ID == types.RelationS && r > s {
		numSubBlocks = 1
	}
	if fanout%numSubBlocks != 0 {
		panic(fmt.Sprintf("icp: fanout %d not divisible by %d sub-blocks", fanout, numSubBlocks))
	}
	subBlockPartitions := fanout / numSubBlocks

	pos := make([][]types.Block, numBlocks)
	posArray := make([]types.Block, numBlocks*numSubBlocks)
	for i := uint32(0); i < numBlocks; i++ {
		pos[i] = posArray[i*numSubBlocks : (i+1)*numSubBlocks]
	}

	histo := make([]uint32, fanout)
	tmp := make([]types.Tuple, firstBlockSize)

	usingTmp := true
	var tOffset uint32 // offset into T once the directory becomes T itself

	block := uint32(0)
	i := uint32(0)
	rem := remainder
	for i < n {
		from := i
		length := avgBlockSize
		if rem > 0 {
			length++
			rem--
		}
		to := from + length

		for j := range histo {
			histo[j] = 0
		}
		for j := from; j < to; j++ {
			histo[hashx(T[j].Key, mask, shift)]++
		}

		if sub.ID == types.RelationS && block == 0 && !c.Radix.UserDefined {
			if !c.skew.changed.Load() && c.estimateSkew(tid, histo, firstBlockSize) {
				return c.Partition(tid, sub)
			}
		}

		accum := uint32(0)
		for j := range histo {
			pre := histo[j]
			histo[j] = accum
			accum += pre
		}

		for m := uint32(0); m < numSubBlocks; m++ {
			p := m * subBlockPartitions
			q := p + subBlockPartitions

			var base uint32
			if block == 0 {
				base = n - firstBlockSize
			} else {
				base = from - firstBlockSize
			}
			end := length
			if q != fanout {
				end = histo[q]
			}
			pos[block][m] = types.Block{Start: base + histo[p], End: base + end}
		}

		for ; i < to; i++ {
			t := T[i]
			h := hashx(t.Key, mask, shift)
			if usingTmp {
				tmp[histo[h]] = t
			} else {
				T[tOffset+histo[h]] = t
			}
			histo[h]++
		}

		if usingTmp {
			usingTmp = false
			tOffset = 0
		} else {
			tOffset += histo[fanout-1]
		}
		block++
	}

	copy(T[n-firstBlockSize:], tmp)

	return &types.BlockMeta{Pos: pos}, nil
}
