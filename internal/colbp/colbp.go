// Package colbp implements the four Collaborative Build/Probe (ColBP)
// models that follow ICP: each worker builds a shared hash table from its
// share of relation R and probes it with its share of relation S, with the
// table layout and group-swap schedule varying by model. It is a port of
// PolyHJ's buildprobe_{I,II,III}.c (Model IV has no corresponding C
// source; model4.go documents the generalization this repository uses in
// its place).
//
// The join never materializes a result: every probe only locates a
// matching payload and folds it into a checksum, exactly as the reference
// does for comparability with the result-count-only hash join literature
// it cites.
package colbp

import (
	"sync"

	"github.com/ja7ad/polyhj/internal/barrier"
	"github.com/ja7ad/polyhj/internal/types"
)

// Context is the state a ColBP model shares across a join's worker
// goroutines: the radix configuration the model was selected from, the
// group/barrier topology, and the lazily allocated hash table(s) every
// worker reads and writes. Exactly one Context is built per join and
// handed to every worker's Run call.
type Context struct {
	Radix     *types.RadixConfig
	Threads   int
	NumGroups int
	RelRSize  uint32

	// ModelIIIShift is partition.c's ModelIII_shift: set by the engine
	// from RelRSize and the settled Radix.R once ICP has finished, with
	// the same formula internal/icp uses when it partitions R, so Model
	// III's build hashes R identically to how ICP already partitioned it.
	ModelIIIShift uint32

	BarrierA *barrier.Barrier
	SBarrier *barrier.SBarrier

	mu          sync.Mutex
	globalTable []uint32
	groupTables [][]uint32
}

// NewContext builds a ColBP Context for a join with the given worker and
// LLC-group counts.
func NewContext(radix *types.RadixConfig, threads, numGroups int, relRSize uint32, modelIIIShift uint32) *Context {
	return &Context{
		Radix:         radix,
		Threads:       threads,
		NumGroups:     numGroups,
		RelRSize:      relRSize,
		ModelIIIShift: modelIIIShift,
		BarrierA:      barrier.New(threads),
		SBarrier:      barrier.NewSBarrier(threads),
	}
}

// WorkerContext is one worker's share of the join: its sub-relations and
// the ICP block metadata produced for each (BlocksS is nil under Model I,
// since relation S is never partitioned in that model).
type WorkerContext struct {
	Tid     int
	Group   int
	SubR    *types.SubRelation
	SubS    *types.SubRelation
	BlocksR *types.BlockMeta
	BlocksS *types.BlockMeta
}

// Result is one worker's contribution to the join's running totals,
// combined across all workers by internal/aggregate.Sum.
type Result struct {
	Matches  uint64
	Checksum uint64
}

// Model runs one worker's share of a join's build and probe phases.
type Model interface {
	Run(c *Context, w *WorkerContext) (Result, error)
}

// hashx matches internal/icp's partitioning hash exactly: Build/Probe must
// compute the same partition id ICP already sorted each sub-relation by.
func hashx(key, mask, shift uint32) uint32 {
	return (key >> shift) & mask
}

// zeroShare cooperatively zero-touches this worker's [offset, offset+share)
// slice of table, the first-touch NUMA-distribution loop every model
// performs right after allocation. Go's make([]uint32, n) already returns
// zeroed memory, so this loop changes no value; it exists only so each
// worker's access pattern to the table matches the C reference's
// memset(Table+tid*share, ...) placement, per the design note recorded in
// DESIGN.md.
func zeroShare(table []uint32, tid, participants int) {
	share := uint32(len(table)) / uint32(participants)
	offset := uint32(tid) * share
	end := offset + share
	if end > uint32(len(table)) {
		end = uint32(len(table))
	}
	for i := offset; i < end; i++ {
		table[i] = 0
	}
}
