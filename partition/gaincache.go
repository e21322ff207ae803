package partition

import (
	"sync/atomic"

	"github.com/micropuma/mt-kahypar-leon/hypergraph"
	"github.com/micropuma/mt-kahypar-leon/internal/par"
	"github.com/micropuma/mt-kahypar-leon/internal/spin"
)

// GainCache maintains, for the km1 objective, benefit[u][p] and penalty[u]
// as defined over a State:
//
//	benefit[u][p] = Σ{w(e) : e ∈ incident_nets(u), pins_in_part[e][p] ≥ 1}
//	penalty[u]    = Σ{w(e) : e ∈ incident_nets(u), pins_in_part[e][part_id[u]] > 1}
//
// so that km1-gain(u, from→to) = benefit[u][to] − penalty[u] in O(1), for
// from = part_id[u]. It is allocated lazily via State.EnableGainCache and
// is *initialized* only after Init completes a full scan; queries before
// that return stale zero values.
//
// benefit and penalty are arrays of relaxed atomics, not plain Weight: a
// vertex x can be a bystander of two different nets updated by two
// different concurrent movers (each holding only that net's spinlock), so
// two goroutines can legitimately add to the same x's row at once. Every
// writer therefore uses Add, never a plain read-modify-write or Store,
// so concurrent contributions compose instead of racing.
type GainCache struct {
	k int

	benefit []atomic.Int64 // flat [n*k]
	penalty []atomic.Int64 // [n]

	initialized atomic.Bool
}

func newGainCache(n, k int) *GainCache {
	return &GainCache{k: k, benefit: make([]atomic.Int64, n*k), penalty: make([]atomic.Int64, n)}
}

// Initialized reports whether Init has completed.
func (c *GainCache) Initialized() bool { return c.initialized.Load() }

// Benefit returns benefit[u][p].
func (c *GainCache) Benefit(u hypergraph.HypernodeID, p ID) Weight {
	return Weight(c.benefit[int(u)*c.k+int(p)].Load())
}

// Penalty returns penalty[u].
func (c *GainCache) Penalty(u hypergraph.HypernodeID) Weight {
	return Weight(c.penalty[u].Load())
}

// KM1Gain returns the objective delta of moving u to block to, assuming u
// currently sits in part_id[u] = from.
func (c *GainCache) KM1Gain(u hypergraph.HypernodeID, to ID) Weight {
	return c.Benefit(u, to) - c.Penalty(u)
}

func (c *GainCache) addBenefit(u hypergraph.HypernodeID, p ID, delta Weight) {
	c.benefit[int(u)*c.k+int(p)].Add(int64(delta))
}

func (c *GainCache) addPenalty(u hypergraph.HypernodeID, delta Weight) {
	c.penalty[u].Add(int64(delta))
}

// Init performs a full parallel scan over every enabled vertex, computing
// benefit and penalty from the current state of s from scratch. Must be
// called (and completed) once after State.InitializePartition, before any
// incremental update via ChangeNodePart.
func (c *GainCache) Init(g hypergraph.Graph, s *State) error {
	var n = g.NumNodes()

	if err := par.ForEach(n, par.Workers(0), func(ui int) error {
		var u = hypergraph.HypernodeID(ui)
		if !g.NodeEnabled(u) {
			return nil
		}
		var row = c.benefit[ui*c.k : ui*c.k+c.k]
		var local = make([]Weight, c.k)
		var pid = s.PartID(u)
		var pen Weight
		for _, e := range g.IncidentNets(u) {
			var w = g.EdgeWeight(e)
			for p := 0; p < c.k; p++ {
				if s.PinsInPart(e, ID(p)) >= 1 {
					local[p] += w
				}
			}
			if pid != Unassigned && s.PinsInPart(e, pid) > 1 {
				pen += w
			}
		}
		for p := range row {
			row[p].Store(int64(local[p]))
		}
		c.penalty[ui].Store(int64(pen))
		return nil
	}); err != nil {
		return err
	}

	c.initialized.Store(true)
	return nil
}

// recomputeVertex rebuilds benefit[u][*] and penalty[u] from scratch over
// u's current incident nets, the same per-vertex computation Init performs,
// but run on demand for a single vertex rather than the whole graph. Used by
// State.Uncontract: after a Memento's pins_in_part adjustments are applied,
// only the two vertices whose own incident-net membership just changed (u
// and v) can have a stale row — every other pin of an affected net either
// saw no presence-threshold crossing (§4.2 case (a), already accounted for
// by u's own recompute) or no pins_in_part change at all (case (b)).
func (c *GainCache) recomputeVertex(g hypergraph.Graph, s *State, u hypergraph.HypernodeID) {
	if !g.NodeEnabled(u) {
		return
	}
	var row = c.benefit[int(u)*c.k : int(u)*c.k+c.k]
	var local = make([]Weight, c.k)
	var pid = s.PartID(u)
	var pen Weight
	for _, e := range g.IncidentNets(u) {
		spin.Lock(s.netLock, int(e))
		var w = g.EdgeWeight(e)
		for p := 0; p < c.k; p++ {
			if s.PinsInPart(e, ID(p)) >= 1 {
				local[p] += w
			}
		}
		if pid != Unassigned && s.PinsInPart(e, pid) > 1 {
			pen += w
		}
		spin.Unlock(s.netLock, int(e))
	}
	for p := range row {
		row[p].Store(int64(local[p]))
	}
	c.penalty[u].Store(int64(pen))
}

// findOccupant returns a pin of e currently assigned to block p, other than
// exclude, or (0, false) if none exists. Used by applyNetDelta to locate
// the single remaining (or newly-joined) occupant whose penalty entry must
// flip when a net's pin count for p crosses the "> 1" threshold.
func findOccupant(g hypergraph.Graph, s *State, e hypergraph.HyperedgeID, p ID, exclude hypergraph.HypernodeID) (hypergraph.HypernodeID, bool) {
	for _, x := range g.Pins(e) {
		if x != exclude && s.PartID(x) == p {
			return x, true
		}
	}
	return 0, false
}

// applyNetDelta updates benefit/penalty entries affected by one net's pin
// count change during a move of v from "from" to "to", per the invariant
// in the GainCache doc comment: benefit[x][p] flips for every pin x of e
// exactly when e's presence in block p (pins_in_part[e][p] ≥ 1) flips;
// penalty[x] flips for the lone other occupant of a block exactly when that
// block's count in e crosses the ">1" threshold in either direction.
//
// v's own penalty entry is folded in here too, as a per-net delta rather
// than a post-loop recompute-and-overwrite: e contributed to v's old
// penalty (under "from") iff its pre-move count there was >1, i.e.
// newFrom ≥ 1, and contributes to v's new penalty (under "to") iff
// newTo > 1. Both v's own update and every bystander's run under e's
// spinlock here, so they compose with whatever other nets are doing the
// same to v or x concurrently under their own locks.
func (c *GainCache) applyNetDelta(g hypergraph.Graph, s *State, v hypergraph.HypernodeID, e hypergraph.HyperedgeID, w Weight, from, to ID, newFrom, newTo int32) {
	if newFrom == 0 {
		for _, x := range g.Pins(e) {
			c.addBenefit(x, from, -w)
		}
	}
	if newTo == 1 {
		for _, x := range g.Pins(e) {
			c.addBenefit(x, to, w)
		}
	}
	if newFrom == 1 {
		if x, ok := findOccupant(g, s, e, from, v); ok {
			c.addPenalty(x, -w)
		}
	}
	if newTo == 2 {
		if y, ok := findOccupant(g, s, e, to, v); ok {
			c.addPenalty(y, w)
		}
	}

	var delta Weight
	if newTo > 1 {
		delta += w
	}
	if newFrom >= 1 {
		delta -= w
	}
	if delta != 0 {
		c.addPenalty(v, delta)
	}
}

// ChangeNodePart moves u from "from" to "to" under s.ChangeNodePart's usual
// weight-ceiling semantics, maintaining the gain cache as the delta_fn of
// §4.2's change_node_part. Every entry touched, including u's own penalty,
// is updated via applyNetDelta's atomic adds rather than collected locally
// and stored once: u can be a bystander of one of its own incident nets
// under a concurrent mover's lock at the same time its own move is in
// flight, so only commutative per-net deltas are safe here.
func (c *GainCache) ChangeNodePart(g hypergraph.Graph, s *State, u hypergraph.HypernodeID, from, to ID, maxWeightTo Weight, onSuccess func()) bool {
	return s.ChangeNodePart(u, from, to, maxWeightTo, onSuccess, func(e hypergraph.HyperedgeID, w Weight, size int, newFrom, newTo int32) {
		c.applyNetDelta(g, s, u, e, w, from, to, newFrom, newTo)
	})
}
