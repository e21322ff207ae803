package fm

import (
	"math/rand"
	"sync/atomic"

	"github.com/micropuma/mt-kahypar-leon/hypergraph"
)

// bucket is a single socket's unordered LIFO work container: an atomic
// size counter guards a flat slice the same way the original source's
// ConcurrentDataContainer does (push via fetch_add, pop via fetch_sub),
// trading strict FIFO order for a lock-free push/pop pair.
type bucket struct {
	size     atomic.Int64
	elements []hypergraph.HypernodeID
}

func newBucket(capacity int) *bucket {
	return &bucket{elements: make([]hypergraph.HypernodeID, capacity)}
}

func (b *bucket) push(u hypergraph.HypernodeID) {
	var i = b.size.Add(1) - 1
	b.elements[i] = u
}

func (b *bucket) tryPop() (hypergraph.HypernodeID, bool) {
	for {
		var n = b.size.Load()
		if n <= 0 {
			return 0, false
		}
		if b.size.CompareAndSwap(n, n-1) {
			return b.elements[n-1], true
		}
	}
}

func (b *bucket) unsafeSize() int { return int(b.size.Load()) }

func (b *bucket) shuffle(rng *rand.Rand) {
	var n = b.unsafeSize()
	rng.Shuffle(n, func(i, j int) { b.elements[i], b.elements[j] = b.elements[j], b.elements[i] })
}

// WorkQueue is a per-socket bucketed work queue, ported from the original
// NumaWorkQueue: vertices are pushed into the bucket their socket hashes
// to, a worker prefers popping from its own socket's bucket, and falls back
// to stealing from whichever other bucket currently holds the most work —
// stealing from the largest bucket (rather than the first non-empty one)
// minimizes the chance two idle workers immediately collide on the same
// steal target.
type WorkQueue struct {
	buckets []*bucket
}

// NewWorkQueue allocates a queue with numSockets buckets, each able to hold
// up to capacity elements without reallocating.
func NewWorkQueue(numSockets, capacity int) *WorkQueue {
	if numSockets < 1 {
		numSockets = 1
	}
	var q = &WorkQueue{buckets: make([]*bucket, numSockets)}
	for i := range q.buckets {
		q.buckets[i] = newBucket(capacity)
	}
	return q
}

// NumSockets returns the bucket count.
func (q *WorkQueue) NumSockets() int { return len(q.buckets) }

// Push adds u to the bucket for socket.
func (q *WorkQueue) Push(u hypergraph.HypernodeID, socket int) {
	q.buckets[socket%len(q.buckets)].push(u)
}

// TryPop removes and returns a vertex, preferring preferredSocket's own
// bucket before stealing from the largest other bucket. Returns false once
// every bucket is empty.
func (q *WorkQueue) TryPop(preferredSocket int) (hypergraph.HypernodeID, bool) {
	if u, ok := q.buckets[preferredSocket%len(q.buckets)].tryPop(); ok {
		return u, true
	}
	var maxIdx = -1
	var maxSize = 0
	for i, b := range q.buckets {
		if s := b.unsafeSize(); s > maxSize {
			maxSize, maxIdx = s, i
		}
	}
	if maxIdx < 0 {
		return 0, false
	}
	return q.buckets[maxIdx].tryPop()
}

// Empty reports whether every bucket is currently empty. It is a snapshot,
// not a guarantee, since concurrent pushes/pops may be in flight.
func (q *WorkQueue) Empty() bool {
	for _, b := range q.buckets {
		if b.unsafeSize() > 0 {
			return false
		}
	}
	return true
}

// Size returns the total number of queued vertices across all buckets.
func (q *WorkQueue) Size() int {
	var n int
	for _, b := range q.buckets {
		n += b.unsafeSize()
	}
	return n
}

// Shuffle randomizes the visit order within each bucket independently,
// seeded per-bucket from its own size and index so repeated calls within
// one process don't all draw from the same global generator.
func (q *WorkQueue) Shuffle(seed int64) {
	for i, b := range q.buckets {
		var rng = rand.New(rand.NewSource(seed + int64(b.unsafeSize()) + int64(i)))
		b.shuffle(rng)
	}
}
