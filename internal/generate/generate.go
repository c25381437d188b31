// Package generate builds the two input relations: a primary-key
// permutation for R, and a foreign-key relation S that is either uniform
// or Zipfian-skewed, deterministically from a seed. It is a direct port
// of PolyHJ generate.c's fill_primary_keys,
// fill_foreign_keys and fill_skewed_keys, minus the NUMA-distribute/
// localize dance around them — Go's goroutine scheduler and allocator
// don't expose the first-touch NUMA placement the C reference manages by
// hand with memset+barrier+realloc, so sub-relation slicing here is plain
// slice aliasing (see Split).
package generate

import (
	"math"
	"math/rand"

	"github.com/ja7ad/polyhj/internal/types"
	"github.com/ja7ad/polyhj/internal/xorshift"
)

// permutation fills tuples[0:n] with a random permutation of [1, n],
// matching generate.c's permutation(). n == 0 is a no-op.
//
// generate.c never assigns tuple_t.payload (create_rel memsets it to 0 and
// leaves it there); its build/probe routines only materialize payload
// under a TEST_KEY_INPLACEOF_PAYLOAD build flag that substitutes the key
// for it specifically so the join's checksum is independently verifiable.
// This port always runs in that mode — payload is set equal to key here,
// not left zero — since with a zero payload ColBP's checksum would reduce
// to the build phase's sum of R's keys whatever S holds, and testable
// property 6 (an order-independent checksum over matched tuples)
// would be unverifiable.
func permutation(tuples []types.Tuple, g *xorshift.Generator) {
	n := uint32(len(tuples))
	if n == 0 {
		return
	}
	for i := uint32(0); i < n; i++ {
		tuples[i].Key = i + 1
	}
	for i := n - 1; i > 0; i-- {
		j := g.Intn(i)
		tuples[i].Key, tuples[j].Key = tuples[j].Key, tuples[i].Key
	}
	for i := range tuples {
		tuples[i].Payload = tuples[i].Key
	}
}

// FillPrimaryKeys shuffles rel's tuples into a primary-key permutation of
// [1, rel.Size], seeded from rel.Seed. rel.Tuples must already be sized
// to rel.Size.
func FillPrimaryKeys(rel *types.Relation) {
	g := xorshift.New(rel.Seed)
	permutation(rel.Tuples, g)
}

// FillForeignKeysUniform fills relS with uniformly distributed foreign
// keys referencing relR's primary-key range, by tiling independent
// permutations of [1, |R|] across relS (plus one partial permutation for
// the remainder), matching generate.c's fill_foreign_keys().
func FillForeignKeysUniform(relR, relS *types.Relation) {
	g := xorshift.New(relS.Seed)

	rSize := relR.Size
	if rSize == 0 {
		return
	}
	ratio := relS.Size / rSize
	for i := uint32(0); i < ratio; i++ {
		permutation(relS.Tuples[i*rSize:(i+1)*rSize], g)
	}
	remainder := relS.Size % rSize
	permutation(relS.Tuples[ratio*rSize:ratio*rSize+remainder], g)
}

// FillForeignKeysSkewed fills relS with foreign keys drawn from a Zipfian
// distribution over relR's key range with skew z = relS.Skew, matching
// generate.c's fill_skewed_keys(). The C reference draws its per-tuple
// selector from libc's rand()/srand() (a second, separate generator from
// the xorshift128 used for the key permutation) rather than randgen; that
// generator's output is implementation-defined across libc versions, so
// this port uses math/rand seeded from relS.Seed in its place — the
// algorithm (permuted key table + Zipfian CDF + binary search) is ported
// exactly, only the uniform-draw source differs, precisely the swap the
// original's own commented-out alternative already suggests.
func FillForeignKeysSkewed(relR, relS *types.Relation) {
	xg := xorshift.New(relS.Seed)
	rr := rand.New(rand.NewSource(int64(relS.Seed)))

	n := relR.Size
	if n == 0 {
		return
	}

	keys := make([]uint32, n)
	for i := uint32(0); i < n; i++ {
		keys[i] = i + 1
	}
	for i := n - 1; i > 0; i-- {
		j := xg.Intn(i)
		keys[i], keys[j] = keys[j], keys[i]
	}

	z := relS.Skew
	table := make([]float64, n)
	var d, s float64
	for i := uint32(0); i < n; i++ {
		d += 1.0 / math.Pow(float64(i+1), z)
	}
	for i := uint32(0); i < n; i++ {
		s += 1.0 / math.Pow(float64(i+1), z)
		table[i] = s / d
	}

	for i := range relS.Tuples {
		l, r := uint32(0), n-1
		x := rr.Float64()

		if table[0] >= x {
			r = 0
		}
		for r-l > 1 {
			m := l + (r-l)/2
			if table[m] < x {
				l = m
			} else {
				r = m
			}
		}
		relS.Tuples[i].Key = keys[r]
	}
}

// Fill populates relS according to its Skew field: a skew of 0 produces a
// uniform foreign-key distribution, matching create_rel()'s dispatch
// between fill_foreign_keys and fill_skewed_keys.
func Fill(relR, relS *types.Relation) {
	if relS.Skew > 0.0 {
		FillForeignKeysSkewed(relR, relS)
	} else {
		FillForeignKeysUniform(relR, relS)
	}
}

// Split divides rel into n contiguous sub-relations of roughly equal
// size, the Go analogue of the {offset, size} slicing
// prepare_threads_meta() computes per thread before create_rel's NUMA
// localization loop. The sub-relations alias rel.Tuples; callers that
// need truly independent backing storage per worker (the NUMA-locality
// effect the C reference achieves with SafeMalloc+memcpy) should copy
// explicitly — see the package comment for why that locality can't be
// portably requested from Go's allocator.
func Split(rel *types.Relation, n int) []types.SubRelation {
	subs := make([]types.SubRelation, n)
	base := rel.Size / uint32(n)
	rem := rel.Size % uint32(n)
	var offset uint32
	for i := 0; i < n; i++ {
		size := base
		if uint32(i) < rem {
			size++
		}
		subs[i] = types.SubRelation{
			ID:     rel.ID,
			Offset: offset,
			Size:   size,
			Tuples: rel.Tuples[offset : offset+size],
		}
		offset += size
	}
	return subs
}
