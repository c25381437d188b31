package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ja7ad/polyhj/internal/config"
	"github.com/ja7ad/polyhj/internal/topology"
	"github.com/ja7ad/polyhj/internal/types"
)

func TestBanner_IncludesRelationSizesAndRadix(t *testing.T) {
	var buf bytes.Buffer
	p := &config.Params{RSize: 100, SSize: 400, Skew: 1.2, Threads: 4}
	radix := types.NewRadixConfig(3, 2, true)

	Banner(&buf, p, radix, 2)

	out := buf.String()
	assert.Contains(t, out, "|R| = 100")
	assert.Contains(t, out, "|S| = 400")
	assert.Contains(t, out, "z = 1.20")
	assert.Contains(t, out, "f_R = 2^3")
	assert.Contains(t, out, "f_S = 2^2")
	assert.Contains(t, out, "Relations: R = 800 B, S = 3.12 KB.")
	assert.Contains(t, out, "Running 4 threads across 2 LLC group(s)")
}

func TestTopology_ReportsCounts(t *testing.T) {
	var buf bytes.Buffer
	info := &topology.Info{
		LLCSizeBytes: 2 << 20,
		LLCs: []topology.LLC{{
			Cores: []topology.Core{{Contexts: []int{0, 1}}, {Contexts: []int{2, 3}}},
		}},
	}

	Topology(&buf, info)

	out := buf.String()
	assert.Contains(t, out, "1 LLC(s)")
	assert.Contains(t, out, "2 core(s)")
	assert.Contains(t, out, "4 hardware context(s)")
}

func TestSummary_PrintsChecksumAndMatches(t *testing.T) {
	var buf bytes.Buffer
	Summary(&buf, 12345, 67890)

	out := buf.String()
	assert.Contains(t, out, "Checksum: 67890.")
	assert.Contains(t, out, "Total Matches: 12345.")
}
