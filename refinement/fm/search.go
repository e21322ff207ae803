package fm

import (
	"sync/atomic"

	"github.com/micropuma/mt-kahypar-leon/hypergraph"
	"github.com/micropuma/mt-kahypar-leon/partition"
)

// Move is one accepted change_node_part call, tagged with the global
// sequence number it was applied at — the order rollback walks all
// workers' private move logs in, since that order (not per-worker log
// order) is what a global best-prefix scan needs.
type Move struct {
	Node hypergraph.HypernodeID
	From partition.ID
	To   partition.ID
	Gain partition.Weight
	Seq  int64
}

// localSearch is one worker's private pair of priority queues (a vertex PQ
// per block, and a block PQ over their top keys) plus the move log the
// search accumulates — grounded directly on FMDetails/LocalizedKWayFM's
// split of "which vertex is the best candidate in each block" from "which
// block currently holds the single best candidate overall".
type localSearch struct {
	g         hypergraph.Graph
	s         *partition.State
	objective partition.Objective
	maxWeight []partition.Weight
	tracker   *NodeTracker
	searchID  int64
	seq       *atomic.Int64

	blockQ  *blockPQ
	vertexQ []*vertexPQ
}

func newLocalSearch(g hypergraph.Graph, s *partition.State, objective partition.Objective,
	maxWeight []partition.Weight, tracker *NodeTracker, searchID int64, seq *atomic.Int64) *localSearch {
	var k = s.K()
	var vq = make([]*vertexPQ, k)
	for i := range vq {
		vq[i] = newVertexPQ()
	}
	return &localSearch{
		g: g, s: s, objective: objective, maxWeight: maxWeight,
		tracker: tracker, searchID: searchID, seq: seq,
		blockQ: newBlockPQ(k), vertexQ: vq,
	}
}

// gainOf returns the move gain of u -> to (positive means the move
// improves the objective).
func (ls *localSearch) gainOf(u hypergraph.HypernodeID, to partition.ID) partition.Weight {
	if ls.objective == partition.ObjectiveKM1 {
		return ls.s.GainCache().KM1Gain(u, to)
	}
	return cutMoveGain(ls.g, ls.s, u, ls.s.PartID(u), to)
}

// bestDestinationBlock scans every block other than u's current one and
// returns the feasible block with the highest gain, breaking ties toward
// the lighter resulting block — an explicit secondary objective the
// teacher's own bestDestinationBlock also applies, to favor balance when
// multiple blocks tie on gain.
func (ls *localSearch) bestDestinationBlock(u hypergraph.HypernodeID) (partition.ID, partition.Weight, bool) {
	var candidates = make([]partition.ID, ls.s.K())
	for p := range candidates {
		candidates[p] = partition.ID(p)
	}
	return ls.bestAmong(u, candidates)
}

// bestOfThree restricts the same search to three candidate blocks: the
// vertex's currently designated target plus the from/to of the most
// recent move elsewhere in the graph, since only those three can have
// changed gain since u was last staged.
func (ls *localSearch) bestOfThree(u hypergraph.HypernodeID, candidates [3]partition.ID) (partition.ID, partition.Weight, bool) {
	return ls.bestAmong(u, candidates[:])
}

func (ls *localSearch) bestAmong(u hypergraph.HypernodeID, candidates []partition.ID) (partition.ID, partition.Weight, bool) {
	var from = ls.s.PartID(u)
	var wu = ls.g.NodeWeight(u)
	var fromWeight = ls.s.PartWeight(from)

	var found = false
	var to partition.ID
	var bestGain partition.Weight
	var bestToWeight = fromWeight - wu
	var seen = make(map[partition.ID]bool, len(candidates))
	for _, cand := range candidates {
		if cand < 0 || cand == from || seen[cand] {
			continue
		}
		seen[cand] = true
		var toWeight = ls.s.PartWeight(cand)
		if ls.maxWeight != nil && toWeight+wu > ls.maxWeight[cand] {
			continue
		}
		var gain = ls.gainOf(u, cand)
		if !found || gain > bestGain || (gain == bestGain && toWeight < bestToWeight) {
			found, to, bestGain, bestToWeight = true, cand, gain, toWeight
		}
	}
	return to, bestGain, found
}

func (ls *localSearch) updateBlock(block partition.ID) {
	var vq = ls.vertexQ[block]
	if vq.Empty() {
		ls.blockQ.Remove(block)
		return
	}
	var _, _, gain = vq.Top()
	ls.blockQ.InsertOrAdjust(block, gain)
}

// insertFresh stages u for the first time this search: computes its best
// destination from scratch and claims it in the shared tracker. Returns
// false (without staging) if u is already claimed by another search or has
// no feasible destination at all.
func (ls *localSearch) insertFresh(u hypergraph.HypernodeID) bool {
	if !ls.tracker.TryClaim(u, ls.searchID) {
		return false
	}
	var to, gain, ok = ls.bestDestinationBlock(u)
	if !ok {
		ls.tracker.Release(u)
		return false
	}
	var from = ls.s.PartID(u)
	ls.vertexQ[from].Insert(u, to, gain)
	ls.updateBlock(from)
	return true
}

// updateGain restages an already-queued vertex after some other move
// changed its gain landscape, using the cheap 3-candidate recompute when
// only the designated target or the move's own endpoints could have
// changed, falling back to a full rescan otherwise (mirrors
// FMDetails::updateGain).
func (ls *localSearch) updateGain(v hypergraph.HypernodeID, move Move) {
	var block = ls.s.PartID(v)
	var vq = ls.vertexQ[block]
	var designated, _, ok = vq.Get(v)
	if !ok {
		return
	}

	var to partition.ID
	var gain partition.Weight
	var found bool
	if ls.s.K() < 4 || designated == move.From || designated == move.To {
		to, gain, found = ls.bestDestinationBlock(v)
	} else {
		to, gain, found = ls.bestOfThree(v, [3]partition.ID{designated, move.From, move.To})
	}
	if !found {
		vq.Remove(v)
	} else {
		vq.Insert(v, to, gain)
	}
	ls.updateBlock(block)
}

// findNextMove extracts the globally best candidate move, verifying its
// gain is still current (a fresh, full bestDestinationBlock recompute)
// before accepting it; a stale candidate is restaged with its corrected
// gain and the search tries again.
func (ls *localSearch) findNextMove() (Move, bool) {
	for !ls.blockQ.Empty() {
		var from = ls.blockQ.Top()
		var u, _, estimatedGain = ls.vertexQ[from].Top()

		var to, gain, ok = ls.bestDestinationBlock(u)
		if ok && gain >= estimatedGain {
			ls.vertexQ[from].DeleteTop()
			ls.updateBlock(from)
			return Move{Node: u, From: from, To: to, Gain: gain}, true
		}
		if !ok {
			ls.vertexQ[from].DeleteTop()
		} else {
			ls.vertexQ[from].Insert(u, to, gain)
		}
		ls.updateBlock(from)
	}
	return Move{}, false
}

// expandNeighbors stages every unclaimed pin incident to move.Node's
// hyperedges and restages already-queued ones, mirroring the teacher's
// "insert each neighbor into the vertex PQ with its best destination" step.
func (ls *localSearch) expandNeighbors(move Move) {
	for _, e := range ls.g.IncidentNets(move.Node) {
		if !ls.g.EdgeEnabled(e) {
			continue
		}
		for _, v := range ls.g.Pins(e) {
			if v == move.Node {
				continue
			}
			var block = ls.s.PartID(v)
			if ls.vertexQ[block].Contains(v) {
				ls.updateGain(v, move)
			} else if !ls.tracker.IsClaimed(v) {
				ls.insertFresh(v)
			}
		}
	}
}

// releaseUnused releases every vertex still sitting in a vertex PQ when the
// search ends — it was claimed and staged but never moved, so the multitry
// policy returns it to the pool for a later search to pick up.
func (ls *localSearch) releaseUnused() {
	for _, vq := range ls.vertexQ {
		for _, u := range vq.Vertices() {
			ls.tracker.Release(u)
		}
	}
}

// FindMoves runs one localized search seeded at u, applying moves until no
// positive-gain candidate remains or budget moves have been made. It
// returns the accepted move log, each tagged with a globally unique
// sequence number via seq.
func FindMoves(g hypergraph.Graph, s *partition.State, objective partition.Objective,
	maxWeight []partition.Weight, tracker *NodeTracker, seed hypergraph.HypernodeID,
	searchID int64, seq *atomic.Int64, budget int) []Move {

	var ls = newLocalSearch(g, s, objective, maxWeight, tracker, searchID, seq)
	if !ls.insertFresh(seed) {
		return nil
	}

	var moves []Move
	for budget <= 0 || len(moves) < budget {
		var mv, ok = ls.findNextMove()
		if !ok {
			break
		}
		if mv.Gain <= 0 {
			ls.tracker.Release(mv.Node)
			break
		}

		var ceiling partition.Weight
		if maxWeight != nil {
			ceiling = maxWeight[mv.To]
		}
		var applied bool
		if objective == partition.ObjectiveKM1 {
			applied = s.GainCache().ChangeNodePart(g, s, mv.Node, mv.From, mv.To, ceiling, nil)
		} else {
			applied = s.ChangeNodePart(mv.Node, mv.From, mv.To, ceiling, nil, nil)
		}
		if !applied {
			// Balance ceiling rejected it even though the gain looked
			// good; drop this vertex from consideration this search.
			ls.tracker.Release(mv.Node)
			continue
		}

		mv.Seq = ls.seq.Add(1)
		moves = append(moves, mv)
		ls.expandNeighbors(mv)
	}

	ls.releaseUnused()
	return moves
}
