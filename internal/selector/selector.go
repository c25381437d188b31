// Package selector implements the Model Selector: a pre-ICP heuristic
// choosing an initial radix from the LLC capacity ratio when the user
// hasn't pinned one, and a post-ICP dispatcher mapping the radix ICP
// settled on (possibly changed by the embedded skew detector) to one of
// the four ColBP models. Ported from main.c's ratio/ratiox heuristic and
// run.c's model dispatch.
package selector

import (
	"fmt"

	"github.com/ja7ad/polyhj/internal/barrier"
	"github.com/ja7ad/polyhj/internal/colbp"
	"github.com/ja7ad/polyhj/internal/types"
)

// bucketBytes is sizeof(bucket_t): a hash table entry is one tpayload_t,
// i.e. one uint32.
const bucketBytes = 4

// PreICP sets radix.R and radix.S to an initial value derived from how
// many LLCs relation R's build-side hash table would need to span,
// exactly matching main.c's ratiox/ratio heuristic: a "soft" threshold
// (llc_size*6/5) decides whether to partition at all, and a "hard" one
// (llc_size*2/3) sets how finely. If radix was already user-defined, this
// is a no-op — the heuristic only ever proposes a starting point for ICP
// and the embedded skew detector to revise.
func PreICP(relRSize uint32, llcSizeBytes uint64, radix *types.RadixConfig) {
	if radix.UserDefined {
		return
	}

	ratiox := uint64(bucketBytes) * uint64(relRSize) / (llcSizeBytes * 6 / 5)
	if ratiox < 1 {
		return
	}

	ratio := uint64(bucketBytes) * uint64(relRSize) / (llcSizeBytes * 2 / 3)
	v := barrier.LgCeil(uint32(ratio))
	radix.R.Store(v)
	radix.S.Store(v)
}

// ModelIIIShift computes partition.c's ModelIII_shift for a join whose
// radix has just been bumped to radixR by the skew detector: the amount
// Model III's build phase right-shifts a key by before masking, so its
// group-swap loop still sees radixR bits of spread despite R being fully
// global rather than partitioned to Radix.R on the probe side too.
func ModelIIIShift(relRSize, radixR uint32) uint32 {
	return barrier.LgCeil(relRSize) - radixR - 1
}

// PostICP maps the radix ICP settled on to the ColBP model that join
// should run, generalizing run.c's dispatch
// (if(Radix.R==Radix.S){I or II} else if(Radix.S==0){III} else
// assert(false)) to also recognize Radix.R > Radix.S > 0 as Model IV — the
// case run.c's own dispatch never reaches because buildprobe_IV.c was
// never written (see internal/colbp.ModelIV's doc comment).
//
// numGroups is the LLC group count Models II/III/IV's group-swap loop
// divides FanoutR by; a radix whose fanout doesn't divide evenly across
// the groups is rejected here as a configuration error rather than
// surfacing as a panic deep inside internal/colbp, since this is reachable
// from a user-supplied --radix/--threads combination.
func PostICP(radix *types.RadixConfig, numGroups int) (colbp.Model, error) {
	r, s := radix.Snapshot()

	switch {
	case r == s:
		if r == 0 {
			return colbp.ModelI{}, nil
		}
		if err := checkFanout(r, numGroups); err != nil {
			return nil, err
		}
		return colbp.ModelII{}, nil
	case s == 0:
		if err := checkFanout(r, numGroups); err != nil {
			return nil, err
		}
		return colbp.ModelIII{}, nil
	case r > s:
		if err := checkFanout(r, numGroups); err != nil {
			return nil, err
		}
		return colbp.ModelIV{}, nil
	default:
		return nil, fmt.Errorf("selector: radix.S (%d) > radix.R (%d) has no corresponding model", s, r)
	}
}

func checkFanout(radixR uint32, numGroups int) error {
	fanoutR := uint32(1) << radixR
	if fanoutR%uint32(numGroups) != 0 {
		return fmt.Errorf("selector: fanout 2^%d (%d) not evenly divisible by %d LLC groups", radixR, fanoutR, numGroups)
	}
	return nil
}
