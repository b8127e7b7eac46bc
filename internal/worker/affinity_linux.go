//go:build linux

package worker

import "golang.org/x/sys/unix"

// pinToCPU restricts the calling OS thread to a single logical CPU, so an
// encoder worker's child process inherits a scheduling affinity that keeps
// it from bouncing across cores mid-chunk. Errors are non-fatal: a failed
// pin just leaves the thread on the default scheduling mask.
func pinToCPU(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}

func affinitySupported() bool { return true }
