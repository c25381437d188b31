//go:build linux

package topology

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var cpuDirRe = regexp.MustCompile(`^cpu(\d+)$`)

// discoverSysfs walks /sys/devices/system/cpu/cpu*/cache/index* to find,
// for every online CPU, its last-level cache (the highest-numbered "level"
// entry) and the sibling CPUs sharing it, then groups siblings sharing a
// cache into an LLC and siblings sharing a core_id into a Core — the same
// information sys_info_prepare() extracts by parsing the equivalent sysfs
// files in the C reference.
func discoverSysfs() (*Info, error) {
	const base = "/sys/devices/system/cpu"

	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, fmt.Errorf("topology: read %s: %w", base, err)
	}

	var cpus []int
	for _, e := range entries {
		m := cpuDirRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		id, _ := strconv.Atoi(m[1])
		cpus = append(cpus, id)
	}
	if len(cpus) == 0 {
		return nil, fmt.Errorf("topology: no cpu* entries under %s", base)
	}
	sort.Ints(cpus)

	type llcGroup struct {
		members  []int
		sizeB    uint64
		lineB    uint64
	}
	groups := map[string]*llcGroup{}
	coreOf := map[int]int{}

	for _, cpu := range cpus {
		cpuDir := filepath.Join(base, fmt.Sprintf("cpu%d", cpu))

		if id, err := readIntFile(filepath.Join(cpuDir, "topology", "core_id")); err == nil {
			coreOf[cpu] = id
		} else {
			coreOf[cpu] = cpu
		}

		cacheDir := filepath.Join(cpuDir, "cache")
		idxEntries, err := os.ReadDir(cacheDir)
		if err != nil {
			continue
		}

		bestLevel := -1
		var bestShared string
		var bestSize, bestLine uint64
		for _, idx := range idxEntries {
			if !strings.HasPrefix(idx.Name(), "index") {
				continue
			}
			idxDir := filepath.Join(cacheDir, idx.Name())
			level, err := readIntFile(filepath.Join(idxDir, "level"))
			if err != nil {
				continue
			}
			typ, _ := readStringFile(filepath.Join(idxDir, "type"))
			if typ == "Instruction" {
				continue
			}
			if level <= bestLevel {
				continue
			}
			shared, err := readStringFile(filepath.Join(idxDir, "shared_cpu_list"))
			if err != nil {
				continue
			}
			size, _ := readSizeFile(filepath.Join(idxDir, "size"))
			line, _ := readIntFile(filepath.Join(idxDir, "coherency_line_size"))
			bestLevel = level
			bestShared = shared
			bestSize = size
			bestLine = uint64(line)
		}
		if bestShared == "" {
			bestShared = strconv.Itoa(cpu)
		}
		g, ok := groups[bestShared]
		if !ok {
			g = &llcGroup{sizeB: bestSize, lineB: bestLine}
			groups[bestShared] = g
		}
		g.members = append(g.members, cpu)
	}

	if len(groups) == 0 {
		return nil, fmt.Errorf("topology: no cache information found")
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return minInt(groups[keys[i]].members) < minInt(groups[keys[j]].members)
	})

	var llcs []LLC
	var llcSize, lineSize uint64
	for _, k := range keys {
		g := groups[k]
		if llcSize == 0 {
			llcSize = g.sizeB
		}
		if lineSize == 0 {
			lineSize = g.lineB
		}
		byCore := map[int][]int{}
		for _, cpu := range g.members {
			byCore[coreOf[cpu]] = append(byCore[coreOf[cpu]], cpu)
		}
		coreIDs := make([]int, 0, len(byCore))
		for id := range byCore {
			coreIDs = append(coreIDs, id)
		}
		sort.Ints(coreIDs)
		cores := make([]Core, 0, len(coreIDs))
		for _, id := range coreIDs {
			ctxs := byCore[id]
			sort.Ints(ctxs)
			cores = append(cores, Core{Contexts: ctxs})
		}
		llcs = append(llcs, LLC{Cores: cores})
	}

	if llcSize == 0 {
		llcSize = defaultLLCSizeBytes
	}
	if lineSize == 0 {
		lineSize = defaultLineSizeBytes
	}

	return &Info{
		LLCSizeBytes:  llcSize,
		LineSizeBytes: lineSize,
		PageSizeBytes: uint64(os.Getpagesize()),
		LLCs:          llcs,
	}, nil
}

func minInt(xs []int) int {
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func readStringFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func readIntFile(path string) (int, error) {
	s, err := readStringFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(s)
}

// readSizeFile parses sysfs cache "size" files, which look like "8192K".
func readSizeFile(path string) (uint64, error) {
	s, err := readStringFile(path)
	if err != nil {
		return 0, err
	}
	mult := uint64(1)
	switch {
	case strings.HasSuffix(s, "K"):
		mult = 1024
		s = strings.TrimSuffix(s, "K")
	case strings.HasSuffix(s, "M"):
		mult = 1024 * 1024
		s = strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "G"):
		mult = 1024 * 1024 * 1024
		s = strings.TrimSuffix(s, "G")
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return v * mult, nil
}

// expandCPUList expands a sysfs "N-M,K,..." range list into individual
// CPU IDs. Unused directly by discoverSysfs (shared_cpu_list is only used
// as a grouping key here), kept for callers that need the explicit set —
// e.g. affinity.go's cgroup cpuset intersection.
func expandCPUList(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if i := strings.IndexByte(part, '-'); i >= 0 {
			lo, err := strconv.Atoi(part[:i])
			if err != nil {
				return nil, err
			}
			hi, err := strconv.Atoi(part[i+1:])
			if err != nil {
				return nil, err
			}
			for v := lo; v <= hi; v++ {
				out = append(out, v)
			}
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
