//go:build !linux

package topology

// AllowedContexts on non-Linux hosts has no cpuset cgroup to consult, so it
// simply returns every context Discover found.
func AllowedContexts(info *Info) []int {
	return info.Contexts()
}
