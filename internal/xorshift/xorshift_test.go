package xorshift

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Deterministic(t *testing.T) {
	a := New(12345)
	b := New(12345)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Next(), b.Next(), "same seed must reproduce the same stream")
	}
}

func TestGenerator_DifferentSeedsDiverge(t *testing.T) {
	a := New(12345)
	b := New(54321)
	same := true
	for i := 0; i < 20; i++ {
		if a.Next() != b.Next() {
			same = false
			break
		}
	}
	assert.False(t, same, "different seeds should not produce an identical stream")
}

func TestGenerator_IntnWithinBounds(t *testing.T) {
	g := New(1)
	for i := 0; i < 10000; i++ {
		v := g.Intn(7)
		assert.Less(t, v, uint32(7))
	}
}

func TestGenerator_IntnZeroMax(t *testing.T) {
	g := New(1)
	assert.Equal(t, uint32(0), g.Intn(0))
}

func TestGenerator_IntnOneAlwaysZero(t *testing.T) {
	g := New(1)
	for i := 0; i < 50; i++ {
		assert.Equal(t, uint32(0), g.Intn(1))
	}
}
