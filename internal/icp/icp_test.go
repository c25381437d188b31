package icp

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ja7ad/polyhj/internal/types"
)

func buildSub(id types.RelationID, keys []uint32) *types.SubRelation {
	tuples := make([]types.Tuple, len(keys))
	for i, k := range keys {
		tuples[i] = types.Tuple{Key: k, Payload: k * 10}
	}
	return &types.SubRelation{ID: id, Size: uint32(len(keys)), Tuples: tuples}
}

func keysOf(tuples []types.Tuple) []uint32 {
	out := make([]uint32, len(tuples))
	for i, t := range tuples {
		out[i] = t.Key
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestPartition_RadixZeroIsNoop(t *testing.T) {
	radix := types.NewRadixConfig(0, 0, true)
	ctx := NewContext(radix, 1, 1, 100, 100)
	sub := buildSub(types.RelationR, []uint32{5, 1, 3, 2, 4})
	before := append([]types.Tuple(nil), sub.Tuples...)

	meta, err := ctx.Partition(0, sub)
	require.NoError(t, err)
	assert.Nil(t, meta)
	assert.Equal(t, before, sub.Tuples)
}

func TestPartition_IsInPlacePermutation(t *testing.T) {
	keys := make([]uint32, 500)
	for i := range keys {
		keys[i] = uint32(i + 1)
	}
	radix := types.NewRadixConfig(4, 4, true)
	ctx := NewContext(radix, 1, 1, 2000, 2000)
	sub := buildSub(types.RelationR, keys)
	want := keysOf(sub.Tuples)

	meta, err := ctx.Partition(0, sub)
	require.NoError(t, err)
	require.NotNil(t, meta)

	assert.Equal(t, want, keysOf(sub.Tuples))
}

func TestPartition_TuplesLandInTheirHashedPartition(t *testing.T) {
	keys := make([]uint32, 300)
	for i := range keys {
		keys[i] = uint32(i)
	}
	const radixBits = 3
	radix := types.NewRadixConfig(radixBits, radixBits, true)
	ctx := NewContext(radix, 1, 1<<radixBits, 1000, 1000) // one sub-block per partition
	sub := buildSub(types.RelationR, keys)

	meta, err := ctx.Partition(0, sub)
	require.NoError(t, err)
	require.NotNil(t, meta)

	mask := uint32(1<<radixBits) - 1
	for _, blockPos := range meta.Pos {
		for m, blk := range blockPos {
			for idx := blk.Start; idx < blk.End; idx++ {
				h := sub.Tuples[idx].Key & mask
				assert.EqualValues(t, m, h, "tuple at %d landed in sub-block %d but hashes to %d", idx, m, h)
			}
		}
	}
}

func TestPartition_IsInPlacePermutationAcrossMultipleBlocks(t *testing.T) {
	n := ChunkSize*2 + 137
	keys := make([]uint32, n)
	for i := range keys {
		keys[i] = uint32(i + 1)
	}
	radix := types.NewRadixConfig(2, 2, true)
	ctx := NewContext(radix, 1, 1, uint32(n)*4, uint32(n)*4)
	sub := buildSub(types.RelationR, keys)
	want := keysOf(sub.Tuples)

	meta, err := ctx.Partition(0, sub)
	require.NoError(t, err)
	assert.Greater(t, meta.NumBlocks(), 1)
	assert.Equal(t, want, keysOf(sub.Tuples))
}

func TestPartition_SkewTriggersModelIIISwitch(t *testing.T) {
	const relRSize, relSSize = 100, 400 // ratio 4 >= skewSRatioThreshold
	radix := types.NewRadixConfig(3, 3, false)
	ctx := NewContext(radix, 1, 1, relRSize, relSSize)

	keys := make([]uint32, relSSize)
	for i := range keys {
		keys[i] = 8 // hashx(8, mask=7, shift=0) == 0 for every tuple
	}
	sub := buildSub(types.RelationS, keys)

	meta, err := ctx.Partition(0, sub)
	require.NoError(t, err)
	assert.Nil(t, meta, "after the switch, Radix.S == 0 so the restarted Partition is a no-op")

	r, s := radix.Snapshot()
	assert.EqualValues(t, 4, r, "Radix.R should have been incremented")
	assert.EqualValues(t, 0, s, "Radix.S should have been zeroed")
}

func TestPartition_NoSkewWhenRatioBelowThreshold(t *testing.T) {
	const relRSize, relSSize = 100, 150 // ratio 1, below skewSRatioThreshold
	radix := types.NewRadixConfig(3, 3, false)
	ctx := NewContext(radix, 1, 1, relRSize, relSSize)

	keys := make([]uint32, relSSize)
	for i := range keys {
		keys[i] = 8
	}
	sub := buildSub(types.RelationS, keys)

	meta, err := ctx.Partition(0, sub)
	require.NoError(t, err)
	require.NotNil(t, meta)

	r, s := radix.Snapshot()
	assert.EqualValues(t, 3, r)
	assert.EqualValues(t, 3, s)
}
