//go:build !linux

package engine

// pin is a no-op outside Linux: CPU affinity pinning has no portable
// equivalent, and the join is correct without it, only less cache-local.
func pin(cpu int) {}
