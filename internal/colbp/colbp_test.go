package colbp

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ja7ad/polyhj/internal/generate"
	"github.com/ja7ad/polyhj/internal/icp"
	"github.com/ja7ad/polyhj/internal/types"
)

// buildRelations constructs a small R (a dense key permutation, payload ==
// key) and an S whose foreign keys reference R uniformly, the same shape
// internal/generate produces for a real run.
func buildRelations(rSize, sSize uint32) (*types.Relation, *types.Relation) {
	r := &types.Relation{ID: types.RelationR, Tuples: make([]types.Tuple, rSize), Size: rSize, Seed: 1}
	generate.FillPrimaryKeys(r)
	s := &types.Relation{ID: types.RelationS, Tuples: make([]types.Tuple, sSize), Size: sSize, Seed: 2}
	generate.FillForeignKeysUniform(r, s)
	return r, s
}

func expectedChecksum(r, s *types.Relation) uint64 {
	var checksum uint64
	for _, t := range r.Tuples {
		checksum += uint64(t.Key)
	}
	for _, t := range s.Tuples {
		checksum += uint64(t.Key) // payload == key, so a matched gather adds t.Key again
	}
	return checksum
}

func runWorkers(n int, run func(tid int) Result) Result {
	var wg sync.WaitGroup
	results := make([]Result, n)
	for tid := 0; tid < n; tid++ {
		wg.Add(1)
		go func(tid int) {
			defer wg.Done()
			results[tid] = run(tid)
		}(tid)
	}
	wg.Wait()

	var total Result
	for _, res := range results {
		total.Matches += res.Matches
		total.Checksum += res.Checksum
	}
	return total
}

func TestModelI_MatchesAndChecksum(t *testing.T) {
	const rSize, sSize, threads = 200, 600, 4
	r, s := buildRelations(rSize, sSize)
	radix := types.NewRadixConfig(0, 0, true)

	subsR := generate.Split(r, threads)
	subsS := generate.Split(s, threads)
	ctx := NewContext(radix, threads, 1, rSize, 0)

	total := runWorkers(threads, func(tid int) Result {
		w := &WorkerContext{Tid: tid, SubR: &subsR[tid], SubS: &subsS[tid]}
		res, err := ModelI{}.Run(ctx, w)
		require.NoError(t, err)
		return res
	})

	assert.EqualValues(t, sSize, total.Matches)
	assert.Equal(t, expectedChecksum(r, s), total.Checksum)
}

func TestModelII_MatchesAndChecksum(t *testing.T) {
	const rSize, sSize, threads, numGroups, radixBits = 400, 1200, 4, 2, 3
	r, s := buildRelations(rSize, sSize)
	radix := types.NewRadixConfig(radixBits, radixBits, true)

	subsR := generate.Split(r, threads)
	subsS := generate.Split(s, threads)

	icpCtx := icp.NewContext(radix, threads, numGroups, rSize, sSize)
	blocksR := make([]*types.BlockMeta, threads)
	blocksS := make([]*types.BlockMeta, threads)
	for tid := 0; tid < threads; tid++ {
		meta, err := icpCtx.Partition(tid, &subsR[tid])
		require.NoError(t, err)
		blocksR[tid] = meta
		meta, err = icpCtx.Partition(tid, &subsS[tid])
		require.NoError(t, err)
		blocksS[tid] = meta
	}

	ctx := NewContext(radix, threads, numGroups, rSize, 0)
	total := runWorkers(threads, func(tid int) Result {
		w := &WorkerContext{
			Tid: tid, Group: tid % numGroups,
			SubR: &subsR[tid], SubS: &subsS[tid],
			BlocksR: blocksR[tid], BlocksS: blocksS[tid],
		}
		res, err := ModelII{}.Run(ctx, w)
		require.NoError(t, err)
		return res
	})

	assert.EqualValues(t, sSize, total.Matches)
	assert.Equal(t, expectedChecksum(r, s), total.Checksum)
}

func TestModelIII_MatchesAndChecksum(t *testing.T) {
	const rSize, sSize, threads, numGroups, radixBits = 400, 1600, 4, 2, 3
	r, s := buildRelations(rSize, sSize)
	radix := types.NewRadixConfig(radixBits, 0, true)

	subsR := generate.Split(r, threads)
	subsS := generate.Split(s, threads)

	icpCtx := icp.NewContext(radix, threads, numGroups, rSize, sSize)
	blocksR := make([]*types.BlockMeta, threads)
	for tid := 0; tid < threads; tid++ {
		meta, err := icpCtx.Partition(tid, &subsR[tid])
		require.NoError(t, err)
		blocksR[tid] = meta
	}

	shift := barrierModelIIIShift(rSize, radixBits)
	ctx := NewContext(radix, threads, numGroups, rSize, shift)
	total := runWorkers(threads, func(tid int) Result {
		w := &WorkerContext{
			Tid: tid, Group: tid % numGroups,
			SubR: &subsR[tid], SubS: &subsS[tid],
			BlocksR: blocksR[tid],
		}
		res, err := ModelIII{}.Run(ctx, w)
		require.NoError(t, err)
		return res
	})

	assert.EqualValues(t, sSize, total.Matches)
	assert.Equal(t, expectedChecksum(r, s), total.Checksum)
}

func TestModelIV_MatchesAndChecksum(t *testing.T) {
	const rSize, sSize, threads, numGroups = 400, 1200, 4, 2
	const radixR, radixS = 4, 2
	r, s := buildRelations(rSize, sSize)
	radix := types.NewRadixConfig(radixR, radixS, true)

	subsR := generate.Split(r, threads)
	subsS := generate.Split(s, threads)

	icpCtx := icp.NewContext(radix, threads, numGroups, rSize, sSize)
	blocksR := make([]*types.BlockMeta, threads)
	blocksS := make([]*types.BlockMeta, threads)
	for tid := 0; tid < threads; tid++ {
		meta, err := icpCtx.Partition(tid, &subsR[tid])
		require.NoError(t, err)
		blocksR[tid] = meta
		meta, err = icpCtx.Partition(tid, &subsS[tid])
		require.NoError(t, err)
		blocksS[tid] = meta
	}

	ctx := NewContext(radix, threads, numGroups, rSize, 0)
	total := runWorkers(threads, func(tid int) Result {
		w := &WorkerContext{
			Tid: tid, Group: tid % numGroups,
			SubR: &subsR[tid], SubS: &subsS[tid],
			BlocksR: blocksR[tid], BlocksS: blocksS[tid],
		}
		res, err := ModelIV{}.Run(ctx, w)
		require.NoError(t, err)
		return res
	})

	assert.EqualValues(t, sSize, total.Matches)
	assert.Equal(t, expectedChecksum(r, s), total.Checksum)
}

func barrierModelIIIShift(relRSize, radixR uint32) uint32 {
	// Mirrors selector.ModelIIIShift without importing internal/selector
	// (which imports internal/colbp, so the reverse import would cycle).
	shift := uint32(0)
	for n := relRSize; n > 1; n >>= 1 {
		shift++
	}
	if uint32(1)<<shift != relRSize {
		shift++
	}
	return shift - radixR - 1
}
