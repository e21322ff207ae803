package uncoarsening_test

import (
	"github.com/micropuma/mt-kahypar-leon/coarsening"
	"github.com/micropuma/mt-kahypar-leon/hypergraph"
	"github.com/micropuma/mt-kahypar-leon/partition"
	"github.com/micropuma/mt-kahypar-leon/refinement/fm"
	"github.com/micropuma/mt-kahypar-leon/refinement/labelprop"
	"github.com/micropuma/mt-kahypar-leon/uncoarsening"
)

func buildCliques(numCliques, cliqueSize int) *hypergraph.Static {
	var edges [][]hypergraph.HypernodeID
	var n = numCliques * cliqueSize
	for c := 0; c < numCliques; c++ {
		var pins []hypergraph.HypernodeID
		for i := 0; i < cliqueSize; i++ {
			pins = append(pins, hypergraph.HypernodeID(c*cliqueSize+i))
		}
		edges = append(edges, pins)
	}
	var g, err = hypergraph.Build(n, edges, nil, nil, hypergraph.BuildOptions{})
	if err != nil {
		panic(err)
	}
	return g
}

func coarseningConfig(k int) coarsening.Config {
	return coarsening.Config{
		HeavyNodePenalty:                coarsening.PenaltyMultiplicative,
		Acceptance:                      coarsening.AcceptBestPreferUnmatched,
		ContractionLimitMultiplier:      4,
		MaxCoarseVertexWeightMultiplier: 4,
		K:                               k,
		RatingCacheSize:                 256,
	}
}

func unboundedCeiling(g hypergraph.Graph, k int) []partition.Weight {
	var m = make([]partition.Weight, k)
	for p := range m {
		m[p] = g.TotalWeight()
	}
	return m
}

func defaultRefineConfig(objective partition.Objective) uncoarsening.Config {
	return uncoarsening.Config{
		Objective: objective,
		LabelProp: labelprop.Config{MaxIterations: 4},
		FM:        fm.Config{MultitryRounds: 2},
	}
}
