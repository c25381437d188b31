// Package report prints the join's console output: a startup banner
// describing the relations and topology a run chose, per-phase timing
// lines, and the final checksum/match-count summary. The wording follows
// main.c's and run.c's own printf lines; the timing lines go through a
// text/tabwriter table.
package report

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/ja7ad/polyhj/internal/config"
	"github.com/ja7ad/polyhj/internal/topology"
	"github.com/ja7ad/polyhj/internal/types"
)

const banner = `PolyHJ - Polymorphic Hash Join
A NUMA-aware, cache-conscious radix hash join over two in-memory relations.

Join Info: |R| = %d, |S| = %d (z = %.2f), f_R = 2^%d, f_S = 2^%d.
Relations: R = %s, S = %s.
Running %d threads across %d LLC group(s).

`

// Banner prints the join-info line main.c prints just before spawning
// worker threads, once the Model Selector has settled the starting
// radix.
func Banner(w io.Writer, p *config.Params, radix *types.RadixConfig, numGroups int) {
	r, s := radix.Snapshot()
	fmt.Fprintf(w, banner, p.RSize, p.SSize, p.Skew, r, s,
		types.TupleBytes(uint32(p.RSize)).Humanized(), types.TupleBytes(uint32(p.SSize)).Humanized(),
		p.Threads, numGroups)
}

// Topology prints the LLC layout the run pinned its workers to, the Go
// analogue of main.c's "Running %d threads, pinned to..." line.
func Topology(w io.Writer, info *topology.Info) {
	fmt.Fprintf(w, "Topology: %d LLC(s), %d core(s), %d hardware context(s), %s per LLC.\n\n",
		info.NumLLCs(), info.NumCores(), info.NumContexts(), types.Bytes(info.LLCSizeBytes).Humanized())
}

// PhaseTable is the tabwriter wrapper this package reports per-phase
// elapsed time through.
type PhaseTable struct {
	tw *tabwriter.Writer
}

// NewPhaseTable opens a phase-timing table on stdout and writes its
// header.
func NewPhaseTable() *PhaseTable {
	t := &PhaseTable{tw: tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)}
	fmt.Fprintln(t.tw, "PHASE\tELAPSED (s)")
	fmt.Fprintln(t.tw, "-----\t-----------")
	t.tw.Flush()
	return t
}

// Row reports one phase's elapsed time, e.g. "Total Partitioning" or
// "Total Build/Probe", matching global_timer_report's phase labels.
func (t *PhaseTable) Row(phase string, elapsedSec float64) {
	fmt.Fprintf(t.tw, "%s\t%.6f\n", phase, elapsedSec)
	t.tw.Flush()
}

// Summary prints the final checksum/match-count lines, verbatim in spirit
// from execute_join's own printf calls.
func Summary(w io.Writer, matches, checksum uint64) {
	fmt.Fprintf(w, "\nChecksum: %d.\n", checksum)
	fmt.Fprintf(w, "Total Matches: %d.\n", matches)
}
