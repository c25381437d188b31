// Package xorshift implements the xorshift128 generator the join engine
// uses to shuffle relation R into a primary-key permutation and to build
// the key permutation behind relation S's Zipfian distribution. It is a
// direct, deterministic port of the generator in PolyHJ's `common.h`,
// kept separate from Go's math/rand so that fixed seeds reproduce the
// same tuple layout the reference implementation does.
package xorshift

// Generator is a four-register xorshift128 state. The zero value is not
// usable; construct with New.
type Generator struct {
	w, x, y, z uint32
}

// New seeds a Generator the same way PolyHJ's generate.c:seed() does.
func New(seed uint32) *Generator {
	return &Generator{
		w: 67819 + seed,
		x: 2 + seed,
		y: 138 + seed,
		z: 9127 + seed,
	}
}

// Next returns the next pseudo-random uint32.
// https://en.wikipedia.org/wiki/Xorshift
func (g *Generator) Next() uint32 {
	t := g.x
	t ^= t << 11
	t ^= t >> 8
	g.x, g.y, g.z = g.y, g.z, g.w
	g.w ^= g.w >> 19
	g.w ^= t
	return g.w
}

// Intn returns a value in [0, max) with no modulo bias, via a
// threshold-reject loop.
// http://funloop.org/post/2015-02-27-removing-modulo-bias-redux.html
func (g *Generator) Intn(max uint32) uint32 {
	if max == 0 {
		return 0
	}
	threshold := -max % max
	for {
		r := g.Next()
		if r >= threshold {
			return r % max
		}
	}
}
