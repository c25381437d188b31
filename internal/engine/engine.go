// Package engine orchestrates a full join run: generating the two
// relations, running the Model Selector, partitioning with ICP, running
// the chosen ColBP model across pinned worker goroutines, and aggregating
// the result. It is the Go analogue of util/threads.c's
// prepare_threads_meta/run_threads plus join/run.c's execute_join/
// join_thread, with goroutines plus runtime.LockOSThread and
// golang.org/x/sys/unix.SchedSetaffinity standing in for a
// pthread-per-hardware-context.
package engine

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/ja7ad/polyhj/internal/aggregate"
	"github.com/ja7ad/polyhj/internal/barrier"
	"github.com/ja7ad/polyhj/internal/colbp"
	"github.com/ja7ad/polyhj/internal/config"
	"github.com/ja7ad/polyhj/internal/generate"
	"github.com/ja7ad/polyhj/internal/icp"
	"github.com/ja7ad/polyhj/internal/selector"
	"github.com/ja7ad/polyhj/internal/topology"
	"github.com/ja7ad/polyhj/internal/types"
)

// Result is a completed join's totals plus the settled radix and LLC
// group count, so callers (internal/report) can describe what the run
// actually did, not just what was requested.
type Result struct {
	Matches         uint64
	Checksum        uint64
	NumGroups       int
	Radix           *types.RadixConfig
	PartitioningSec float64
	BuildProbeSec   float64
}

// Run executes one join end to end against p and the discovered topology.
// It returns a configuration error immediately, before generating
// relations or spawning workers, if p is invalid, more threads are
// requested than there are usable hardware contexts, or the Model
// Selector's initial radix can't be evenly divided across the chosen LLC
// groups; once workers are spawned, every remaining invariant is
// guaranteed by those upfront checks (a radix the skew detector bumps
// stays evenly divisible, since it only ever doubles an already-divisible
// fanout) and a violation there is a bug, not a configuration error, so it
// panics instead of being threaded back up as an error.
func Run(p *config.Params, topo *topology.Info) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}

	threads := int(p.Threads)
	contexts := topology.AllowedContexts(topo)
	if threads > len(contexts) {
		return Result{}, fmt.Errorf("engine: %d threads requested, %d hardware contexts usable: %w",
			threads, len(contexts), topology.ErrTooFewContexts)
	}
	numGroups := chooseNumGroups(topo, threads)

	radixR, radixS, userDefined := p.ResolveRadix()
	radix := types.NewRadixConfig(radixR, radixS, userDefined)
	selector.PreICP(uint32(p.RSize), topo.LLCSizeBytes, radix)
	if _, err := selector.PostICP(radix, numGroups); err != nil {
		return Result{}, fmt.Errorf("engine: %w", err)
	}

	relR := &types.Relation{ID: types.RelationR, Tuples: make([]types.Tuple, p.RSize), Size: uint32(p.RSize), Seed: p.SeedR}
	relS := &types.Relation{ID: types.RelationS, Tuples: make([]types.Tuple, p.SSize), Size: uint32(p.SSize), Seed: p.SeedS, Skew: p.Skew}

	generate.FillPrimaryKeys(relR)
	generate.Fill(relR, relS)

	subsR := generate.Split(relR, threads)
	subsS := generate.Split(relS, threads)

	icpCtx := icp.NewContext(radix, threads, numGroups, relR.Size, relS.Size)
	colbpCtx := colbp.NewContext(radix, threads, numGroups, relR.Size, 0)
	partitionDone := barrier.New(threads)

	// One distinct hardware context per worker, in the topology's
	// discovery order. FavorHyperthreading is accepted but not yet
	// consulted here; it would only reorder this list, never change
	// which model runs or its result.
	pinTargets := contexts[:threads]

	results := make([]colbp.Result, threads)
	var partitioningSec, buildProbeSec float64

	var wg sync.WaitGroup
	for tid := 0; tid < threads; tid++ {
		wg.Add(1)
		go func(tid int) {
			defer wg.Done()
			runtime.LockOSThread()
			pin(pinTargets[tid])

			group := tid % numGroups

			// tid 0's own wall-clock stands in for the phase as a whole,
			// matching global_timer_start/global_timer_report's
			// single-thread-reports-for-all convention.
			var timer barrier.Timer
			if tid == 0 {
				timer.Start()
			}

			// Partitioning is skipped entirely when the join starts
			// unpartitioned (Model I), matching join_thread's
			// `if(Radix.R > 0)` guard. Relation S is partitioned before
			// R, since the skew detector embedded in S's first block may
			// raise Radix.R before R is ever partitioned.
			var blocksR, blocksS *types.BlockMeta
			if r0, _ := radix.Snapshot(); r0 > 0 {
				blocksS, _ = icpCtx.Partition(tid, &subsS[tid])
				blocksR, _ = icpCtx.Partition(tid, &subsR[tid])
			}

			partitionDone.Wait()
			if tid == 0 {
				if r, s := radix.Snapshot(); r > 0 && s == 0 {
					colbpCtx.ModelIIIShift = selector.ModelIIIShift(relR.Size, r)
				}
			}
			partitionDone.Wait()

			if tid == 0 {
				timer.Stop()
				partitioningSec = timer.ElapsedSec()
				timer.Start()
			}

			model, err := selector.PostICP(radix, numGroups)
			if err != nil {
				// Unreachable: the upfront PostICP check above already
				// proved the initial radix divides evenly, and a
				// skew-triggered bump only ever doubles it.
				panic(fmt.Sprintf("engine: radix became invalid mid-run: %v", err))
			}

			w := &colbp.WorkerContext{
				Tid: tid, Group: group,
				SubR: &subsR[tid], SubS: &subsS[tid],
				BlocksR: blocksR, BlocksS: blocksS,
			}
			res, err := model.Run(colbpCtx, w)
			if err != nil {
				panic(fmt.Sprintf("engine: worker %d: %v", tid, err))
			}
			results[tid] = res

			if tid == 0 {
				timer.Stop()
				buildProbeSec = timer.ElapsedSec()
			}
		}(tid)
	}
	wg.Wait()

	matches, checksum := aggregate.Sum(results)
	return Result{
		Matches: matches, Checksum: checksum, NumGroups: numGroups, Radix: radix,
		PartitioningSec: partitioningSec, BuildProbeSec: buildProbeSec,
	}, nil
}

// chooseNumGroups picks how many LLC groups Models II/III/IV's group-swap
// loop divides the fanout across: as many LLCs as the topology exposes,
// capped at the thread count (a single-threaded run can't swap groups).
// This is a simplification of threads.c's prepare_threads_meta, which
// additionally accounts for favor_physical_cores and packs hyperthreads
// onto as few LLCs as possible before spilling to the next one; that
// packing affects only cache locality, not which model runs or its
// correctness, so it is not reproduced here (see DESIGN.md).
func chooseNumGroups(topo *topology.Info, threads int) int {
	n := topo.NumLLCs()
	if n < 1 {
		n = 1
	}
	if n > threads {
		n = threads
	}
	return n
}

