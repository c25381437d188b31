// Package aggregate folds each worker's ColBP result into the join's final
// totals, the Go analogue of execute_join()'s summation loop in PolyHJ's
// run.c.
package aggregate

import "github.com/ja7ad/polyhj/internal/colbp"

// Sum combines every worker's Result into the join's total match count and
// checksum. The checksum's exact value depends on whether a worker's
// Result folded in payloads or keys (see internal/generate's
// payload-equals-key note); Sum itself is a plain, order-independent sum,
// matching the original's own comment that the checksum is meaningful
// only relative to that choice.
func Sum(results []colbp.Result) (totalMatches, totalChecksum uint64) {
	for _, r := range results {
		totalMatches += r.Matches
		totalChecksum += r.Checksum
	}
	return totalMatches, totalChecksum
}
