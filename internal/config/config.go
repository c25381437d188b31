// Package config holds the join's run parameters: the Go analogue of
// PolyHJ's global Threads/Radix structs in main.c, populated from defaults
// and overwritten by command-line flags exactly the way cmd_args.c does,
// minus the hand-rolled argv scanner — cobra/pflag own that part (see
// cmd/polyhj).
package config

import (
	"fmt"

	"github.com/ja7ad/polyhj/internal/topology"
)

// Params is the full set of user-tunable join parameters, combining what
// PolyHJ keeps in params_t (thread count, favor_physical_cores) and
// radix_info_t (R, S, user_defined) with the two relation sizes and the
// skew factor that live on relation_t in the C struct layout but are
// simple scalars here since relation generation hasn't happened yet.
type Params struct {
	Threads             uint
	RSize               uint
	SSize               uint
	Skew                float64
	Radix               uint
	RadixR              uint
	RadixS              uint
	RadixUserDefined    bool
	FavorHyperthreading bool

	SeedR uint32
	SeedS uint32
}

// Default relation sizes match main.c's 128*1000*100 tuples per side
// (12.8M 8-byte tuples each); seeds match RelR.seed/RelS.seed.
const (
	DefaultRelationSize = 128 * 1000 * 100
	DefaultSeedR        = 12345
	DefaultSeedS        = 54321
)

// DefaultParams returns a Params pre-filled the way main.c initializes
// Threads and Radix before extract_cmd_args runs, except Threads defaults
// to a topology-derived context count rather than SysInfo.num_cpus, since
// that's the first topology.Info field available in this port.
func DefaultParams(topo *topology.Info) *Params {
	return &Params{
		Threads: uint(topo.NumContexts()),
		RSize:   DefaultRelationSize,
		SSize:   DefaultRelationSize,
		Skew:    0.0,
		SeedR:   DefaultSeedR,
		SeedS:   DefaultSeedS,
	}
}

// Validate checks invariants extract_cmd_args never enforced in the
// original (it silently accepted garbage sscanf results) but which this
// port surfaces as configuration errors per the ambient error-handling
// design: zero threads, zero-size relations and a negative skew all fail
// fast instead of producing undefined behavior deep inside ICP or ColBP.
// A radix whose fanout doesn't divide evenly across the LLC groups is not
// checked here; engine.Run rejects it through selector.PostICP.
func (p *Params) Validate() error {
	if p.Threads == 0 {
		return fmt.Errorf("config: threads must be > 0")
	}
	if p.RSize == 0 || p.SSize == 0 {
		return fmt.Errorf("config: relation sizes must be > 0")
	}
	if p.Skew < 0 {
		return fmt.Errorf("config: skew must be >= 0")
	}
	return nil
}

// ResolveRadix applies --radix/--radix-r/--radix-s the way extract_cmd_args
// layers them: --radix sets both R and S, then --radix-r/--radix-s
// override individually, and supplying any of the three marks the radix
// as user-defined so the Model Selector's pre-ICP heuristic (§6.1) is
// skipped.
func (p *Params) ResolveRadix() (r, s uint32, userDefined bool) {
	if !p.RadixUserDefined {
		return 0, 0, false
	}
	r, s = uint32(p.Radix), uint32(p.Radix)
	if p.RadixR != 0 {
		r = uint32(p.RadixR)
	}
	if p.RadixS != 0 {
		s = uint32(p.RadixS)
	}
	return r, s, true
}
