package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ja7ad/polyhj/internal/colbp"
	"github.com/ja7ad/polyhj/internal/types"
)

func TestPreICP_SkipsWhenUserDefined(t *testing.T) {
	radix := types.NewRadixConfig(2, 2, true)
	PreICP(1_000_000, 2<<20, radix)
	r, s := radix.Snapshot()
	assert.EqualValues(t, 2, r)
	assert.EqualValues(t, 2, s)
}

func TestPreICP_SkipsWhenRelationFitsLLC(t *testing.T) {
	radix := types.NewRadixConfig(0, 0, false)
	PreICP(1000, 2<<20, radix) // tiny relation against a 2 MiB LLC
	r, s := radix.Snapshot()
	assert.EqualValues(t, 0, r)
	assert.EqualValues(t, 0, s)
}

func TestPreICP_SetsRadixWhenRelationExceedsLLC(t *testing.T) {
	radix := types.NewRadixConfig(0, 0, false)
	PreICP(10_000_000, 2<<20, radix)
	r, s := radix.Snapshot()
	assert.Greater(t, r, uint32(0))
	assert.Equal(t, r, s)
}

func TestPostICP_DispatchesModelI(t *testing.T) {
	radix := types.NewRadixConfig(0, 0, true)
	m, err := PostICP(radix, 4)
	require.NoError(t, err)
	assert.IsType(t, colbp.ModelI{}, m)
}

func TestPostICP_DispatchesModelII(t *testing.T) {
	radix := types.NewRadixConfig(3, 3, true)
	m, err := PostICP(radix, 4)
	require.NoError(t, err)
	assert.IsType(t, colbp.ModelII{}, m)
}

func TestPostICP_DispatchesModelIII(t *testing.T) {
	radix := types.NewRadixConfig(3, 0, true)
	m, err := PostICP(radix, 4)
	require.NoError(t, err)
	assert.IsType(t, colbp.ModelIII{}, m)
}

func TestPostICP_DispatchesModelIV(t *testing.T) {
	radix := types.NewRadixConfig(4, 2, true)
	m, err := PostICP(radix, 4)
	require.NoError(t, err)
	assert.IsType(t, colbp.ModelIV{}, m)
}

func TestPostICP_ErrorsWhenFanoutNotDivisibleByGroups(t *testing.T) {
	radix := types.NewRadixConfig(3, 3, true) // fanout 8, 3 groups
	_, err := PostICP(radix, 3)
	require.Error(t, err)
}

func TestPostICP_ErrorsWhenSExceedsR(t *testing.T) {
	radix := types.NewRadixConfig(2, 3, true)
	_, err := PostICP(radix, 4)
	require.Error(t, err)
}

func TestModelIIIShift_MatchesLgCeilFormula(t *testing.T) {
	// lg_ceil(400) == 9 (2^9 == 512 >= 400); shift = 9 - radixR - 1.
	assert.EqualValues(t, 5, ModelIIIShift(400, 3))
}
