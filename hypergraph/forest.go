package hypergraph

// NetCase classifies, for one net incident to a contracted vertex v, which
// of the two uncontraction cases applies when v is later restored:
//   - BothIncident (case a): u was already a pin of the net, so contracting
//     v removed v's pin and shrank the net; restoring v re-adds its pin.
//   - !BothIncident (case b): u was not a pin of the net, so contracting v
//     handed its pin slot to u; restoring v hands the slot back.
type NetCase struct {
	Edge         HyperedgeID
	BothIncident bool
}

// Memento records that vertex v was contracted into (absorbed by) vertex u,
// together with v's incident nets at the moment of contraction and how each
// must be reversed on uncontraction.
type Memento struct {
	U, V HypernodeID
	Nets []NetCase
}

// Batch is an ordered list of Mementos that may be released (uncontracted)
// in parallel: no two Mementos in a Batch share a vertex, and a Batch is
// only ever applied after every Batch containing an ancestor of its vertices.
type Batch []Memento

// Forest is a persistent contraction forest over a fixed vertex id space:
// parent[v] names the vertex v was contracted into, or v itself if v was
// never contracted; uncontraction does not reset it.
// Uncontractions visit forest edges in reverse topological (LIFO) batches.
type Forest struct {
	parent []HypernodeID
	// history is the full, ordered sequence of Mementos recorded during
	// coarsening; n-level batching slices this sequence in reverse.
	history []Memento
}

// NewForest returns a Forest over n vertices, each initially its own root.
func NewForest(n int) *Forest {
	var f = &Forest{parent: make([]HypernodeID, n)}
	for i := range f.parent {
		f.parent[i] = HypernodeID(i)
	}
	return f
}

// Find returns the current root of u's contraction chain.
func (f *Forest) Find(u HypernodeID) HypernodeID {
	for f.parent[u] != u {
		u = f.parent[u]
	}
	return u
}

// RecordContraction records that v was contracted into u and returns the
// Memento appended to the Forest's history.
func (f *Forest) RecordContraction(u, v HypernodeID, nets []NetCase) Memento {
	f.parent[v] = u
	var m = Memento{U: u, V: v, Nets: nets}
	f.history = append(f.history, m)
	return m
}

// History returns the full, coarsening-order sequence of Mementos.
func (f *Forest) History() []Memento { return f.history }

// Batches partitions History() into the largest batches consistent with
// the Batch invariant (no two Mementos share a vertex within a batch,
// ancestors released before descendants), by walking history in reverse
// and greedily grouping consecutive, vertex-disjoint Mementos. This
// produces the batch sequence consumed by n-level uncoarsening.
func (f *Forest) Batches() []Batch {
	var n = len(f.history)
	var batches []Batch
	var i = n

	for i > 0 {
		var seen = make(map[HypernodeID]bool)
		var j = i
		for j > 0 {
			var m = f.history[j-1]
			if seen[m.U] || seen[m.V] {
				break
			}
			seen[m.U] = true
			seen[m.V] = true
			j--
		}
		var batch = make(Batch, 0, i-j)
		for k := j; k < i; k++ {
			batch = append(batch, f.history[k])
		}
		batches = append(batches, batch)
		i = j
	}
	return batches
}
