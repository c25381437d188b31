//go:build linux

package topology

import (
	"os"
	"strings"
)

// cpusetPaths are tried in order; the first one that exists and parses
// wins. v2 publishes the effective set directly; v1 requires following
// the process's own cpuset cgroup, which most containers mount at one of
// these fixed paths.
var cpusetPaths = []string{
	"/sys/fs/cgroup/cpuset.cpus.effective",
	"/sys/fs/cgroup/cpuset/cpuset.cpus",
}

// AllowedContexts restricts the hardware contexts discovered by Discover
// to those the process is actually permitted to run on, per the cpuset
// cgroup (container CPU pinning, taskset, etc). If no cpuset restriction
// can be read, it returns every context Discover found.
func AllowedContexts(info *Info) []int {
	all := info.Contexts()
	for _, p := range cpusetPaths {
		b, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		allowed, err := expandCPUList(strings.TrimSpace(string(b)))
		if err != nil || len(allowed) == 0 {
			continue
		}
		set := make(map[int]struct{}, len(allowed))
		for _, c := range allowed {
			set[c] = struct{}{}
		}
		out := all[:0:0]
		for _, c := range all {
			if _, ok := set[c]; ok {
				out = append(out, c)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return all
}
