// Package topology discovers the machine's cache hierarchy and exposes it
// as a Core/LLC tree the thread orchestrator schedules workers onto. It is
// the Go analogue of PolyHJ's sys_info.c: where that module populates a
// sys_info_t by walking /sys/devices/system/cpu on Linux, this package does
// the same walk, with an env-var escape hatch so tests never depend on the
// host's real cache layout.
package topology

import (
	"os"
	"runtime"
	"strconv"
)

// Core is one physical core: the set of hardware (SMT) context IDs sharing
// it, suitable for passing to unix.SchedSetaffinity.
type Core struct {
	Contexts []int
}

// LLC is one last-level-cache domain: the physical cores sharing it.
type LLC struct {
	Cores []Core
}

// Info is the discovered topology of the host.
type Info struct {
	LLCSizeBytes  uint64
	LineSizeBytes uint64
	PageSizeBytes uint64
	LLCs          []LLC
}

// NumLLCs reports how many LLC domains were discovered.
func (in *Info) NumLLCs() int { return len(in.LLCs) }

// NumCores reports the total physical core count across all LLCs.
func (in *Info) NumCores() int {
	n := 0
	for _, llc := range in.LLCs {
		n += len(llc.Cores)
	}
	return n
}

// NumContexts reports the total hardware context count across all cores.
func (in *Info) NumContexts() int {
	n := 0
	for _, llc := range in.LLCs {
		for _, c := range llc.Cores {
			n += len(c.Contexts)
		}
	}
	return n
}

// Contexts flattens every hardware context ID across the whole topology,
// in LLC-major, core-minor order — the order internal/engine assigns
// worker N to a context in, so a core's hardware contexts, and an LLC's
// cores, are all filled before the next one.
func (in *Info) Contexts() []int {
	out := make([]int, 0, in.NumContexts())
	for _, llc := range in.LLCs {
		for _, c := range llc.Cores {
			out = append(out, c.Contexts...)
		}
	}
	return out
}

const (
	envPageSizeOverride = "POLYHJ_PAGE_SIZE_OVERRIDE"
	envLLCSizeOverride  = "POLYHJ_LLC_SIZE_OVERRIDE"
	envLLCCountOverride = "POLYHJ_LLC_COUNT_OVERRIDE"

	defaultLLCSizeBytes  = 2 << 20 // 2 MiB, per the "unreliable cache discovery" fallback
	defaultLineSizeBytes = 64
)

// Discover builds the Info for the running host. On Linux it walks
// /sys/devices/system/cpu; anywhere that fails (permissions, containerized
// hosts with a masked sysfs, non-Linux GOOS) it falls back to a single
// synthetic LLC sized from runtime.NumCPU() and the defaults above. The
// three POLYHJ_*_OVERRIDE env vars always win, so tests never depend on the
// host's actual cache layout.
func Discover() (*Info, error) {
	info, err := discoverSysfs()
	if err != nil || info == nil || len(info.LLCs) == 0 {
		info = fallbackInfo()
	}
	applyOverrides(info)
	if info.NumContexts() == 0 {
		return nil, ErrNoContexts
	}
	return info, nil
}

func fallbackInfo() *Info {
	n := runtime.NumCPU()
	contexts := make([]int, n)
	for i := range contexts {
		contexts[i] = i
	}
	return &Info{
		LLCSizeBytes:  defaultLLCSizeBytes,
		LineSizeBytes: defaultLineSizeBytes,
		PageSizeBytes: uint64(os.Getpagesize()),
		LLCs: []LLC{{
			Cores: coresFromContexts(contexts),
		}},
	}
}

// coresFromContexts treats every context as its own single-context core,
// the conservative assumption when SMT topology cannot be discovered.
func coresFromContexts(contexts []int) []Core {
	cores := make([]Core, len(contexts))
	for i, ctx := range contexts {
		cores[i] = Core{Contexts: []int{ctx}}
	}
	return cores
}

func applyOverrides(info *Info) {
	if v, ok := envUint(envPageSizeOverride); ok {
		info.PageSizeBytes = v
	}
	if v, ok := envUint(envLLCSizeOverride); ok {
		info.LLCSizeBytes = v
	}
	if v, ok := envUint(envLLCCountOverride); ok && v > 0 {
		info.LLCs = redistributeLLCs(info, int(v))
	}
}

// redistributeLLCs collapses or splits the discovered cores evenly across
// n synthetic LLCs, used by tests that want to exercise a specific fanout
// without depending on the host's real socket count.
func redistributeLLCs(info *Info, n int) []LLC {
	contexts := info.Contexts()
	if n <= 0 {
		n = 1
	}
	out := make([]LLC, n)
	per := (len(contexts) + n - 1) / n
	if per == 0 {
		per = 1
	}
	for i := 0; i < n; i++ {
		start := i * per
		if start >= len(contexts) {
			out[i] = LLC{}
			continue
		}
		end := start + per
		if end > len(contexts) {
			end = len(contexts)
		}
		out[i] = LLC{Cores: coresFromContexts(contexts[start:end])}
	}
	return out
}

func envUint(name string) (uint64, bool) {
	s := os.Getenv(name)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return v, true
}
