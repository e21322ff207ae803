package fm

import (
	"math"
	"sort"

	"github.com/micropuma/mt-kahypar-leon/hypergraph"
	"github.com/micropuma/mt-kahypar-leon/partition"
)

// unboundedWeight lets a rollback's reverse moves bypass the weight
// ceiling entirely — §4.5 explicitly forgives balance violations among
// rolled-back moves, since the vertex is returning to the block it
// started the round in, which was feasible before any move touched it.
const unboundedWeight partition.Weight = math.MaxInt64

// GlobalRollback merges every worker's move log from one multitry round,
// replays them in the single global order they were actually applied in
// (by Move.Seq, not per-worker log order), and finds the prefix of that
// order whose cumulative gain is maximal — the point at which the round's
// objective was at its lowest. Every move after that prefix is reverted,
// in reverse application order.
func GlobalRollback(g hypergraph.Graph, s *partition.State, objective partition.Objective, logs [][]Move) (improvement partition.Weight, surviving int) {
	var all []Move
	for _, log := range logs {
		all = append(all, log...)
	}
	if len(all) == 0 {
		return 0, 0
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Seq < all[j].Seq })

	var best = 0
	var bestCum partition.Weight
	var cum partition.Weight
	for i, mv := range all {
		cum += mv.Gain
		if cum > bestCum {
			bestCum, best = cum, i+1
		}
	}

	for i := len(all) - 1; i >= best; i-- {
		var mv = all[i]
		if objective == partition.ObjectiveKM1 {
			s.GainCache().ChangeNodePart(g, s, mv.Node, mv.To, mv.From, unboundedWeight, nil)
		} else {
			s.ChangeNodePart(mv.Node, mv.To, mv.From, unboundedWeight, nil, nil)
		}
	}
	return bestCum, best
}
