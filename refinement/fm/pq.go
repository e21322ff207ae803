package fm

import (
	"container/heap"

	"github.com/micropuma/mt-kahypar-leon/hypergraph"
	"github.com/micropuma/mt-kahypar-leon/partition"
)

// vertexEntry is one vertex PQ's element: u's current best destination and
// the gain of moving there.
type vertexEntry struct {
	node hypergraph.HypernodeID
	to   partition.ID
	gain partition.Weight
	pos  int
}

// vertexPQ is a max-heap on gain, keyed by vertex id, supporting the
// decrease/increase-key and arbitrary-remove operations a localized search
// needs (insert a neighbor, adjust its key on restaging, delete the vertex
// once its move is applied).
type vertexPQ struct {
	entries []*vertexEntry
	index   map[hypergraph.HypernodeID]*vertexEntry
}

func newVertexPQ() *vertexPQ {
	return &vertexPQ{index: make(map[hypergraph.HypernodeID]*vertexEntry)}
}

func (q *vertexPQ) Len() int { return len(q.entries) }
func (q *vertexPQ) Less(i, j int) bool {
	return q.entries[i].gain > q.entries[j].gain
}
func (q *vertexPQ) Swap(i, j int) {
	q.entries[i], q.entries[j] = q.entries[j], q.entries[i]
	q.entries[i].pos, q.entries[j].pos = i, j
}
func (q *vertexPQ) Push(x any) {
	var e = x.(*vertexEntry)
	e.pos = len(q.entries)
	q.entries = append(q.entries, e)
}
func (q *vertexPQ) Pop() any {
	var n = len(q.entries)
	var e = q.entries[n-1]
	q.entries = q.entries[:n-1]
	return e
}

func (q *vertexPQ) Empty() bool { return len(q.entries) == 0 }

func (q *vertexPQ) Contains(u hypergraph.HypernodeID) bool {
	_, ok := q.index[u]
	return ok
}

// Get returns u's currently staged destination and gain, if queued.
func (q *vertexPQ) Get(u hypergraph.HypernodeID) (partition.ID, partition.Weight, bool) {
	if e, ok := q.index[u]; ok {
		return e.to, e.gain, true
	}
	return 0, 0, false
}

// Insert adds u with the given destination/gain, or overwrites its entry
// (adjusting the heap) if u is already present.
func (q *vertexPQ) Insert(u hypergraph.HypernodeID, to partition.ID, gain partition.Weight) {
	if e, ok := q.index[u]; ok {
		e.to, e.gain = to, gain
		heap.Fix(q, e.pos)
		return
	}
	var e = &vertexEntry{node: u, to: to, gain: gain}
	q.index[u] = e
	heap.Push(q, e)
}

// Top returns the current best vertex, its destination, and its gain.
// Panics if the queue is empty; callers must check Empty first.
func (q *vertexPQ) Top() (hypergraph.HypernodeID, partition.ID, partition.Weight) {
	var e = q.entries[0]
	return e.node, e.to, e.gain
}

// DeleteTop removes the current best vertex from the queue entirely.
func (q *vertexPQ) DeleteTop() hypergraph.HypernodeID {
	var e = q.entries[0]
	delete(q.index, e.node)
	heap.Pop(q)
	return e.node
}

// Remove deletes u from the queue, wherever it currently sits.
func (q *vertexPQ) Remove(u hypergraph.HypernodeID) {
	if e, ok := q.index[u]; ok {
		delete(q.index, u)
		heap.Remove(q, e.pos)
	}
}

// Vertices returns every vertex id currently queued, in no particular
// order — used to release unclaimed nodes when a search ends.
func (q *vertexPQ) Vertices() []hypergraph.HypernodeID {
	var out = make([]hypergraph.HypernodeID, len(q.entries))
	for i, e := range q.entries {
		out[i] = e.node
	}
	return out
}

// blockPQ tracks, for each block, the top gain of its vertexPQ. Since the
// number of blocks k is always small (one entry per partition block, not
// per vertex), an O(k) linear scan for the maximum is simpler than a heap
// and no slower in practice — the teacher's own BlockPriorityQueue exists
// because its k can be in the thousands for item/member assignment; here k
// is the partition width, which this module already assumes fits in an
// int32 and is never more than a few hundred.
type blockPQ struct {
	present []bool
	key     []partition.Weight
}

func newBlockPQ(k int) *blockPQ {
	return &blockPQ{present: make([]bool, k), key: make([]partition.Weight, k)}
}

func (b *blockPQ) InsertOrAdjust(block partition.ID, key partition.Weight) {
	b.present[block] = true
	b.key[block] = key
}

func (b *blockPQ) Remove(block partition.ID) { b.present[block] = false }

func (b *blockPQ) Empty() bool {
	for _, p := range b.present {
		if p {
			return false
		}
	}
	return true
}

// Top returns the block with the current highest key.
func (b *blockPQ) Top() partition.ID {
	var best partition.ID = -1
	var bestKey partition.Weight
	for i, p := range b.present {
		if p && (best == -1 || b.key[i] > bestKey) {
			best, bestKey = partition.ID(i), b.key[i]
		}
	}
	return best
}
