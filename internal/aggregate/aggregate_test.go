package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ja7ad/polyhj/internal/colbp"
)

func TestSum_CombinesAllWorkers(t *testing.T) {
	results := []colbp.Result{
		{Matches: 10, Checksum: 100},
		{Matches: 20, Checksum: 50},
		{Matches: 0, Checksum: 0},
	}
	matches, checksum := Sum(results)
	assert.EqualValues(t, 30, matches)
	assert.EqualValues(t, 150, checksum)
}

func TestSum_EmptyIsZero(t *testing.T) {
	matches, checksum := Sum(nil)
	assert.Zero(t, matches)
	assert.Zero(t, checksum)
}
