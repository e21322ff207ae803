package fm

import (
	"sync/atomic"

	"github.com/micropuma/mt-kahypar-leon/hypergraph"
)

// NodeTracker prevents two concurrent localized searches from inserting or
// moving the same vertex: a vertex is "claimed" by the search that first
// touches it (inserts it into a vertex PQ), and released back to
// unclaimed if that search ends without ever applying a move that used it
// (the multitry policy — a node is free to be picked up again by a later
// search in the same or a later round).
type NodeTracker struct {
	owner        []int64 // 0 == unclaimed, else 1+searchID
	nextSearchID atomic.Int64
}

// NewNodeTracker allocates a tracker over n vertex ids.
func NewNodeTracker(n int) *NodeTracker {
	return &NodeTracker{owner: make([]int64, n)}
}

// NewSearchID hands out a fresh, globally unique search id.
func (t *NodeTracker) NewSearchID() int64 { return t.nextSearchID.Add(1) }

// TryClaim attempts to mark u as owned by searchID, succeeding only if u
// was unclaimed.
func (t *NodeTracker) TryClaim(u hypergraph.HypernodeID, searchID int64) bool {
	return atomic.CompareAndSwapInt64(&t.owner[u], 0, searchID+1)
}

// Release clears u's claim unconditionally, making it eligible for the
// next search to pick up. Used for nodes a search inserted into its PQ but
// never got around to moving before it ran out of positive-gain moves.
func (t *NodeTracker) Release(u hypergraph.HypernodeID) {
	atomic.StoreInt64(&t.owner[u], 0)
}

// IsClaimed reports whether u is currently owned by any search.
func (t *NodeTracker) IsClaimed(u hypergraph.HypernodeID) bool {
	return atomic.LoadInt64(&t.owner[u]) != 0
}

// Reset clears every claim, called between multitry rounds.
func (t *NodeTracker) Reset() {
	for i := range t.owner {
		t.owner[i] = 0
	}
}
