//go:build !linux

package fm

import "runtime"

// defaultNumSockets falls back to a quarter of GOMAXPROCS on platforms
// without a CPU-affinity query (see numa_linux.go).
func defaultNumSockets() int {
	var n = runtime.GOMAXPROCS(0) / 4
	if n < 1 {
		n = 1
	}
	return n
}
