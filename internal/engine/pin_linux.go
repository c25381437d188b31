//go:build linux

package engine

import "golang.org/x/sys/unix"

// pin binds the calling OS thread (already locked via runtime.LockOSThread)
// to a single hardware context, the Go analogue of threads.c's
// pthread_attr_setaffinity_np/CPU_SET pinning. Best-effort: a failure here
// (e.g. running inside a restrictive container) degrades to unpinned
// scheduling rather than aborting the join, since affinity only affects
// cache locality, never correctness.
func pin(cpu int) {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	_ = unix.SchedSetaffinity(0, &set)
}
