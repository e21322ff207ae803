package fm

import (
	"github.com/micropuma/mt-kahypar-leon/hypergraph"
	"github.com/micropuma/mt-kahypar-leon/partition"
)

// cutMoveGain predicts the cut objective's delta of moving u from "from" to
// "to" without mutating s, since there is no cut-specific gain cache (the
// km1 objective has partition.GainCache instead). Identical in spirit to
// labelprop's cutGain: a block leaves a net's connectivity set exactly when
// its pin count in that net would drop to zero, and joins exactly when it
// would rise to one; the net contributes its weight to cut iff its
// connectivity is at least 2.
func cutMoveGain(g hypergraph.Graph, s *partition.State, u hypergraph.HypernodeID, from, to partition.ID) partition.Weight {
	var gain partition.Weight
	for _, e := range g.IncidentNets(u) {
		if !g.EdgeEnabled(e) {
			continue
		}
		var lamBefore = s.Connectivity(e)
		var lamAfter = lamBefore
		if s.PinsInPart(e, from)-1 == 0 {
			lamAfter--
		}
		if s.PinsInPart(e, to)+1 == 1 {
			lamAfter++
		}

		var w = g.EdgeWeight(e)
		var cutBefore, cutAfter partition.Weight
		if lamBefore >= 2 {
			cutBefore = w
		}
		if lamAfter >= 2 {
			cutAfter = w
		}
		gain += cutBefore - cutAfter
	}
	return gain
}
