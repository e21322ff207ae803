package partition

import (
	"sync/atomic"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"

	"github.com/micropuma/mt-kahypar-leon/hypergraph"
	"github.com/micropuma/mt-kahypar-leon/internal/par"
	"github.com/micropuma/mt-kahypar-leon/internal/spin"
)

// DeltaFunc observes a pin-count change on one net during change_node_part,
// after the move has committed but before the net's update-ownership flag
// is released. newFrom and newTo are the post-update pin counts.
type DeltaFunc func(e hypergraph.HyperedgeID, edgeWeight Weight, edgeSize int, newFrom, newTo int32)

// State owns the block assignment of a hypergraph: part_id, per-block
// weight totals, per-net pin-count tables, and connectivity sets. It holds
// a non-owning reference to the hypergraph, which must outlive it.
type State struct {
	g hypergraph.Graph
	k int

	partID     []atomic.Int32
	partWeight []atomic.Int64

	// pinsInPart is a flat [numEdges*k] table; updates to a given net's row
	// are serialized by netLock, so plain int32 suffices.
	pinsInPart []int32
	conn       []connSet
	netLock    []int32

	initialized atomic.Bool

	gain *GainCache
}

// New returns a State bound to g with k blocks, all vertices unassigned.
func New(g hypergraph.Graph, k int) *State {
	var n, m = g.NumNodes(), g.NumEdges()
	var s = &State{
		g:          g,
		k:          k,
		partID:     make([]atomic.Int32, n),
		partWeight: make([]atomic.Int64, k),
		pinsInPart: make([]int32, m*k),
		conn:       make([]connSet, m),
		netLock:    make([]int32, m),
	}
	for u := 0; u < n; u++ {
		s.partID[u].Store(int32(Unassigned))
	}
	for e := 0; e < m; e++ {
		s.conn[e] = newConnSet(k)
	}

	log.WithFields(log.Fields{
		"pinsInPart": humanize.Bytes(uint64(len(s.pinsInPart) * 4)),
		"connSet":    humanize.Bytes(uint64(m * k * 4)),
		"nodes":      n,
		"edges":      m,
		"blocks":     k,
	}).Debug("partition: allocated state")

	return s
}

// K returns the number of blocks.
func (s *State) K() int { return s.k }

// PartID returns u's current block, or Unassigned.
func (s *State) PartID(u hypergraph.HypernodeID) ID { return ID(s.partID[u].Load()) }

// PartWeight returns the current total vertex weight assigned to block p.
func (s *State) PartWeight(p ID) Weight { return Weight(s.partWeight[p].Load()) }

// PinsInPart returns pins_in_part[e][p].
func (s *State) PinsInPart(e hypergraph.HyperedgeID, p ID) int32 {
	return s.pinsInPart[int(e)*s.k+int(p)]
}

// Connectivity returns λ(e), the number of distinct blocks e touches.
func (s *State) Connectivity(e hypergraph.HyperedgeID) int { return s.conn[e].Size() }

// ConnectivitySet returns the blocks currently touching e. The caller must
// not retain the slice past the next mutating call on e.
func (s *State) ConnectivitySet(e hypergraph.HyperedgeID) []ID { return s.conn[e].Blocks() }

// IsBorderNode reports whether any net incident to u has connectivity > 1.
func (s *State) IsBorderNode(u hypergraph.HypernodeID) bool {
	for _, e := range s.g.IncidentNets(u) {
		if s.Connectivity(e) > 1 {
			return true
		}
	}
	return false
}

// GainCache returns the state's lazily-allocated gain cache, or nil if
// EnableGainCache has not been called.
func (s *State) GainCache() *GainCache { return s.gain }

// EnableGainCache allocates (but does not populate) a km1 gain cache over
// this state. Call GainCache().Init afterward.
func (s *State) EnableGainCache() *GainCache {
	s.gain = newGainCache(s.g.NumNodes(), s.k)
	return s.gain
}

// SetOnlyNodePart bulk-assigns u to block p without touching part_weight or
// pins_in_part; used before InitializePartition to stage an initial
// assignment computed externally (e.g. by the initial-partitioning oracle).
func (s *State) SetOnlyNodePart(u hypergraph.HypernodeID, p ID) error {
	if ID(s.partID[u].Load()) != Unassigned {
		return ErrAlreadyAssigned
	}
	s.partID[u].Store(int32(p))
	return nil
}

// InitializePartition computes part_weight and pins_in_part from the
// part_id assignment staged by SetOnlyNodePart, in parallel: each worker
// accumulates thread-local histograms which are merged into the global
// tables, then conn_set[e] is derived from the merged pins_in_part row.
func (s *State) InitializePartition() error {
	var n, m = s.g.NumNodes(), s.g.NumEdges()
	var workers = par.Workers(0)

	// Per-block weight totals: each worker accumulates a thread-local
	// histogram over its slice of vertices, merged into partWeight once
	// all workers finish, avoiding atomic contention on shared counters.
	// chunkWorkers/chunk mirror par.Range's own chunking exactly so that
	// begin/chunk indexes the histogram the same worker will write to.
	if n > 0 {
		var chunkWorkers = workers
		if chunkWorkers > n {
			chunkWorkers = n
		}
		var chunk = (n + chunkWorkers - 1) / chunkWorkers

		type histogram struct{ weight []int64 }
		var hists = make([]histogram, chunkWorkers)
		for i := range hists {
			hists[i].weight = make([]int64, s.k)
		}

		if err := par.Range(n, workers, func(begin, end int) error {
			var h = &hists[begin/chunk]
			for u := begin; u < end; u++ {
				var p = ID(s.partID[u].Load())
				if p == Unassigned {
					continue
				}
				h.weight[p] += int64(s.g.NodeWeight(hypergraph.HypernodeID(u)))
			}
			return nil
		}); err != nil {
			return err
		}
		for _, h := range hists {
			for p, w := range h.weight {
				if w != 0 {
					s.partWeight[p].Add(w)
				}
			}
		}
	}

	if err := par.ForEach(m, workers, func(ei int) error {
		var e = hypergraph.HyperedgeID(ei)
		var row = s.pinsInPart[ei*s.k : ei*s.k+s.k]
		for _, u := range s.g.Pins(e) {
			var p = ID(s.partID[u].Load())
			if p != Unassigned {
				row[p]++
			}
		}
		for p, c := range row {
			if c > 0 {
				s.conn[ei].add(ID(p))
			}
		}
		return nil
	}); err != nil {
		return err
	}

	s.initialized.Store(true)
	return nil
}

// Cut returns the cut objective: Σ{w(e) : e enabled, λ(e) ≥ 2}.
func (s *State) Cut() Weight {
	var total Weight
	for ei := 0; ei < s.g.NumEdges(); ei++ {
		var e = hypergraph.HyperedgeID(ei)
		if !s.g.EdgeEnabled(e) {
			continue
		}
		if s.Connectivity(e) >= 2 {
			total += s.g.EdgeWeight(e)
		}
	}
	return total
}

// KM1 returns the km1 objective: Σ{w(e)·(λ(e)−1) : e enabled}.
func (s *State) KM1() Weight {
	var total Weight
	for ei := 0; ei < s.g.NumEdges(); ei++ {
		var e = hypergraph.HyperedgeID(ei)
		if !s.g.EdgeEnabled(e) {
			continue
		}
		if lam := s.Connectivity(e); lam > 0 {
			total += s.g.EdgeWeight(e) * Weight(lam-1)
		}
	}
	return total
}

// ChangeNodePart speculatively moves u from "from" to "to" under a weight
// ceiling on the destination block. It returns false, leaving all state
// unchanged, if the move would push part_weight[to] above maxWeightTo or if
// part_weight[from] is not actually w(u) or more (a stale "from" argument).
// On success, part_id[u] is updated, onSuccess is invoked, and for every
// net incident to u, deltaFn observes the net's new pin counts once this
// call has exclusive ownership of that net's update flag.
//
// The caller must ensure no other goroutine concurrently calls
// ChangeNodePart for the same u; the node tracker used by multitry FM
// (refinement/fm) is what provides that guarantee above this layer.
func (s *State) ChangeNodePart(u hypergraph.HypernodeID, from, to ID, maxWeightTo Weight, onSuccess func(), deltaFn DeltaFunc) bool {
	var w = int64(s.g.NodeWeight(u))

	var newTo = s.partWeight[to].Add(w)
	var newFrom = s.partWeight[from].Add(-w)

	if newTo > int64(maxWeightTo) || newFrom < 0 {
		s.partWeight[to].Add(-w)
		s.partWeight[from].Add(w)
		return false
	}

	s.partID[u].Store(int32(to))
	if onSuccess != nil {
		onSuccess()
	}

	for _, e := range s.g.IncidentNets(u) {
		spin.Lock(s.netLock, int(e))

		var row = s.pinsInPart[int(e)*s.k : int(e)*s.k+s.k]
		row[from]--
		var nf = row[from]
		if nf == 0 {
			s.conn[e].remove(from)
		}
		row[to]++
		var nt = row[to]
		if nt == 1 {
			s.conn[e].add(to)
		}

		if deltaFn != nil {
			deltaFn(e, s.g.EdgeWeight(e), s.g.EdgeSize(e), nf, nt)
		}

		spin.Unlock(s.netLock, int(e))
	}

	return true
}
