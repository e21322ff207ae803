package fm

import "github.com/micropuma/mt-kahypar-leon/hypergraph"

// socketOf assigns u to one of numSockets buckets. Without a real NUMA
// topology query (see numa_linux.go/numa_other.go), this is a fixed hash of
// the vertex id rather than a round-robin counter, so that a vertex and its
// hyperedge neighbors (nearby ids after a locality-preserving build) spread
// across buckets instead of landing in a contiguous run on one socket.
func socketOf(u hypergraph.HypernodeID, numSockets int) int {
	if numSockets <= 1 {
		return 0
	}
	var h = uint64(u)
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	return int(h % uint64(numSockets))
}
