// Package spin provides the per-entity CAS ownership flag used to serialize
// structural or accounting updates against one net (or vertex) while
// leaving every other net (or vertex) fully parallel — the same primitive
// shape at every layer that needs it: hypergraph contraction, partition
// pin-count bookkeeping, and the gain cache.
package spin

import "sync/atomic"

// Lock spins until flags[i] transitions 0 -> 1, then returns holding it.
// Callers must not suspend (block on I/O, channel receive, or anything
// else that can be scheduled away indefinitely) while holding the flag.
func Lock(flags []int32, i int) {
	for !atomic.CompareAndSwapInt32(&flags[i], 0, 1) {
	}
}

// Unlock releases a flag acquired by Lock.
func Unlock(flags []int32, i int) {
	atomic.StoreInt32(&flags[i], 0)
}
