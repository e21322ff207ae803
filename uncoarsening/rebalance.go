package uncoarsening

import (
	"sort"

	"github.com/micropuma/mt-kahypar-leon/hypergraph"
	"github.com/micropuma/mt-kahypar-leon/internal/par"
	"github.com/micropuma/mt-kahypar-leon/metrics"
	"github.com/micropuma/mt-kahypar-leon/partition"
	"github.com/micropuma/mt-kahypar-leon/refinement/labelprop"
)

// overweightBlocks returns every block whose weight exceeds its ceiling,
// heaviest first: rebalancing drains the worst offender before moving on
// to the next, rather than round-robining between them.
func overweightBlocks(s *partition.State, maxPartWeight []partition.Weight) []partition.ID {
	var over []partition.ID
	for p := 0; p < s.K(); p++ {
		if s.PartWeight(partition.ID(p)) > maxPartWeight[p] {
			over = append(over, partition.ID(p))
		}
	}
	sort.Slice(over, func(i, j int) bool { return s.PartWeight(over[i]) > s.PartWeight(over[j]) })
	return over
}

// bestRebalanceMove picks u's destination among every block still under
// its own ceiling: the highest-gain feasible one, ties broken by the
// destination left with the lowest resulting weight (Open Question #1's
// decision), since both reduce imbalance fastest when every gain on offer
// is negative.
func bestRebalanceMove(g hypergraph.Graph, s *partition.State, maxPartWeight []partition.Weight, objective partition.Objective, u hypergraph.HypernodeID, from partition.ID) (partition.ID, partition.Weight, bool) {
	var uw = g.NodeWeight(u)
	var bestTo partition.ID
	var bestGain partition.Weight
	var bestResulting partition.Weight
	var found bool

	for p := 0; p < s.K(); p++ {
		var to = partition.ID(p)
		if to == from {
			continue
		}
		var resulting = s.PartWeight(to) + uw
		if resulting > maxPartWeight[to] {
			continue
		}

		var gain partition.Weight
		if objective == partition.ObjectiveKM1 {
			gain = s.GainCache().KM1Gain(u, to)
		} else {
			gain = labelprop.CutGain(g, s, u, from, to)
		}

		if !found || gain > bestGain || (gain == bestGain && resulting < bestResulting) {
			bestTo, bestGain, bestResulting, found = to, gain, resulting, true
		}
	}
	return bestTo, bestGain, found
}

// Rebalance implements §4.6's post-refinement balancer: as long as some
// block exceeds maxPartWeight, it repeatedly picks the overweight block's
// highest-gain vertex and moves it to the best feasible destination under
// its own ceiling, accepting a negative-gain move when that is the only
// way to drain an overweight block (refinement has already exhausted every
// positive-gain move, so a purely greedy acceptance criterion would never
// make progress here). It returns the number of moves applied.
//
// Unlike labelprop/FM, moves are applied one at a time (only the candidate
// scan within a block runs in parallel), each chosen against the current
// (post-move) weights, since a move's
// feasibility and its destination's attractiveness both depend on exactly
// how overweight the source block still is after every prior move.
func Rebalance(g hypergraph.Graph, s *partition.State, maxPartWeight []partition.Weight, objective partition.Objective) (int, error) {
	if objective == partition.ObjectiveKM1 && (s.GainCache() == nil || !s.GainCache().Initialized()) {
		return 0, labelprop.ErrGainCacheRequired
	}

	var moves int
	for {
		var over = overweightBlocks(s, maxPartWeight)
		if len(over) == 0 {
			break
		}
		metrics.RebalanceInvocationsTotal.Inc()

		var moved bool
		for _, from := range over {
			var u, to, _, ok = bestCandidateInBlock(g, s, maxPartWeight, objective, from)
			if !ok {
				continue
			}
			var accepted bool
			if objective == partition.ObjectiveKM1 {
				accepted = s.GainCache().ChangeNodePart(g, s, u, from, to, maxPartWeight[to], nil)
			} else {
				accepted = s.ChangeNodePart(u, from, to, maxPartWeight[to], nil, nil)
			}
			if accepted {
				moves++
				moved = true
				metrics.RebalanceMovesTotal.Inc()
				break
			}
		}
		if !moved {
			// Every overweight block's every vertex is pinned (no feasible
			// destination exists anywhere), so further looping cannot help.
			break
		}
	}
	return moves, nil
}

type rebalanceCandidate struct {
	u    hypergraph.HypernodeID
	to   partition.ID
	gain partition.Weight
	ok   bool
}

// bestCandidateInBlock scans from's vertices in parallel for each one's own
// best feasible destination, then reduces to the single highest-gain move
// across the whole block — the "highest-gain vertex" of §4.6's greedy loop
// description, restricted to vertices currently assigned to the overweight
// block being drained.
func bestCandidateInBlock(g hypergraph.Graph, s *partition.State, maxPartWeight []partition.Weight, objective partition.Objective, from partition.ID) (hypergraph.HypernodeID, partition.ID, partition.Weight, bool) {
	var n = g.NumNodes()
	var workers = par.Workers(0)
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}
	var chunk = (n + workers - 1) / workers
	var perWorker = make([]rebalanceCandidate, workers)

	if err := par.Range(n, workers, func(begin, end int) error {
		var w = begin / chunk
		var local rebalanceCandidate
		for ui := begin; ui < end; ui++ {
			var u = hypergraph.HypernodeID(ui)
			if !g.NodeEnabled(u) || s.PartID(u) != from {
				continue
			}
			var to, gain, ok = bestRebalanceMove(g, s, maxPartWeight, objective, u, from)
			if !ok {
				continue
			}
			if !local.ok || gain > local.gain {
				local = rebalanceCandidate{u, to, gain, true}
			}
		}
		perWorker[w] = local
		return nil
	}); err != nil {
		return 0, 0, 0, false
	}

	var best rebalanceCandidate
	for _, c := range perWorker {
		if c.ok && (!best.ok || c.gain > best.gain) {
			best = c
		}
	}
	if !best.ok {
		return 0, 0, 0, false
	}
	return best.u, best.to, best.gain, true
}
