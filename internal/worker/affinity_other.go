//go:build !linux

package worker

// pinToCPU is a no-op on platforms without sched_setaffinity; the worker
// pool still runs, just without CPU pinning.
func pinToCPU(cpu int) error { return nil }

func affinitySupported() bool { return false }
