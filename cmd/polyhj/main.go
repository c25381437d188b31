// Command polyhj runs one PolyHJ join: it generates relations R and S in
// memory, lets the Model Selector and In-place Cache-aware Partitioner
// settle on a radix and partitioning plan, runs the matching Collaborative
// Build/Probe model across pinned worker goroutines, and reports the
// resulting match count and checksum. It is the Go analogue of main.c's
// own argument parsing, banner, and timer-report sequence, rebuilt on
// cobra.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ja7ad/polyhj/internal/config"
	"github.com/ja7ad/polyhj/internal/engine"
	"github.com/ja7ad/polyhj/internal/report"
	"github.com/ja7ad/polyhj/internal/selector"
	"github.com/ja7ad/polyhj/internal/topology"
	"github.com/ja7ad/polyhj/internal/types"
)

func main() {
	topo, err := topology.Discover()
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	p := config.DefaultParams(topo)

	root := &cobra.Command{
		Use:   "polyhj",
		Short: "Polymorphic, NUMA-aware, cache-conscious radix hash join",
		Long: `polyhj joins two in-memory relations, R (a permutation of its own primary
key) and S (uniform or Zipf-skewed foreign keys into R), entirely in
memory. It never materializes the join result: each match only advances a
running count and an order-independent checksum, so arbitrarily large
relations can be joined without ever exceeding memory for the output.

* GitHub: https://github.com/ja7ad/polyhj

Examples:
  polyhj --r 10000000 --s 10000000 --threads 8
  polyhj --r 1000000 --s 4000000 --skew 1.2 --radix-r 6 --radix-s 4`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), p, topo)
		},
	}

	root.Flags().UintVarP(&p.Threads, "threads", "t", p.Threads, "number of worker threads")
	root.Flags().UintVar(&p.RSize, "r", p.RSize, "number of tuples in relation R")
	root.Flags().UintVar(&p.SSize, "s", p.SSize, "number of tuples in relation S")
	root.Flags().Float64Var(&p.Skew, "skew", 0.0, "S's foreign-key Zipf skew factor (0 = uniform)")
	root.Flags().UintVar(&p.Radix, "radix", 0, "user-defined radix bits for both R and S (overrides the Model Selector)")
	root.Flags().UintVar(&p.RadixR, "radix-r", 0, "user-defined radix bits for R (overrides --radix for R only)")
	root.Flags().UintVar(&p.RadixS, "radix-s", 0, "user-defined radix bits for S (overrides --radix for S only)")
	root.Flags().BoolVar(&p.FavorHyperthreading, "favor-hyperthreading", false, "has no effect: workers are always pinned in discovery order, filling a core's hyperthreads before the next core")

	root.PreRun = func(cmd *cobra.Command, _ []string) {
		if cmd.Flags().Changed("radix") || cmd.Flags().Changed("radix-r") || cmd.Flags().Changed("radix-s") {
			p.RadixUserDefined = true
		}
	}

	if err := root.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, p *config.Params, topo *topology.Info) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := p.Validate(); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	radixR, radixS, userDefined := p.ResolveRadix()
	previewRadix := types.NewRadixConfig(radixR, radixS, userDefined)
	selector.PreICP(uint32(p.RSize), topo.LLCSizeBytes, previewRadix)

	report.Topology(os.Stdout, topo)
	report.Banner(os.Stdout, p, previewRadix, chooseNumGroupsForBanner(topo, int(p.Threads)))

	res, err := engine.Run(p, topo)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	pt := report.NewPhaseTable()
	pt.Row("Total Partitioning", res.PartitioningSec)
	pt.Row("Total Build/Probe", res.BuildProbeSec)

	report.Summary(os.Stdout, res.Matches, res.Checksum)
	return nil
}

// chooseNumGroupsForBanner mirrors engine.chooseNumGroups so the banner
// printed before engine.Run reflects the same LLC group count the run
// itself will use; it's duplicated rather than exported from engine since
// it's a one-line topology query, not join state.
func chooseNumGroupsForBanner(topo *topology.Info, threads int) int {
	n := topo.NumLLCs()
	if n < 1 {
		n = 1
	}
	if n > threads {
		n = threads
	}
	return n
}
