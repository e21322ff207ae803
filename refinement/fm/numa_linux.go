//go:build linux

package fm

import "golang.org/x/sys/unix"

// defaultNumSockets estimates a socket count from the calling thread's
// current CPU affinity mask rather than runtime.NumCPU(), since NumCPU
// reports logical cores regardless of cgroup/affinity restrictions — on a
// machine where this process is pinned to a subset of cores (common in
// containerized deployment), NumCPU overstates the parallelism actually
// available to size work-queue buckets for. Go's standard library has no
// NUMA topology query, so the socket count is simulated as one bucket per
// four affine CPUs (floor 1); this is documented as a deliberate
// approximation, not a precise topology read.
func defaultNumSockets() int {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return 1
	}
	var n = set.Count() / 4
	if n < 1 {
		n = 1
	}
	return n
}
