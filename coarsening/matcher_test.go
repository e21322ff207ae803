package coarsening_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/micropuma/mt-kahypar-leon/coarsening"
	"github.com/micropuma/mt-kahypar-leon/hypergraph"
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

func defaultConfig(k int) coarsening.Config {
	return coarsening.Config{
		HeavyNodePenalty:                coarsening.PenaltyMultiplicative,
		Acceptance:                      coarsening.AcceptBestPreferUnmatched,
		ContractionLimitMultiplier:      4,
		MaxCoarseVertexWeightMultiplier: 4,
		K:                               k,
		RatingCacheSize:                 256,
	}
}

func TestRunReducesVertexCountToLimit(t *testing.T) {
	var g = buildCliques(4, 8)
	var cfg = defaultConfig(2)

	var levels, coarsest, err = coarsening.Run(g, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, levels)
	require.LessOrEqual(t, coarsest.NumNodes(), cfg.ContractionLimit())
	require.Less(t, coarsest.NumNodes(), g.NumNodes())
}

func TestRunConservesTotalWeight(t *testing.T) {
	var g = buildCliques(4, 8)
	var cfg = defaultConfig(2)

	var _, coarsest, err = coarsening.Run(g, cfg)
	require.NoError(t, err)
	require.Equal(t, g.TotalWeight(), coarsest.TotalWeight())
}

func TestProjectRoundTripsIdentityLevel(t *testing.T) {
	var g = buildCliques(2, 8)
	var cfg = defaultConfig(2)
	var levels, _, err = coarsening.Run(g, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, levels)

	var level = levels[0]
	var coarsePart = make([]int32, level.Coarse.NumNodes())
	for c := range coarsePart {
		coarsePart[c] = int32(c % 2)
	}
	var fine = coarsening.Project(level, coarsePart)
	require.Len(t, fine, level.Fine.NumNodes())
	for u, c := range level.Mapping {
		require.Equal(t, coarsePart[c], fine[u])
	}
}

func TestRunNLevelProducesReversibleForest(t *testing.T) {
	var g = buildCliques(4, 8)
	var dyn = hypergraph.NewDynamic(g)
	var cfg = defaultConfig(2)

	require.NoError(t, coarsening.RunNLevel(dyn, cfg))

	var enabled int
	for u := 0; u < dyn.NumNodes(); u++ {
		if dyn.NodeEnabled(hypergraph.HypernodeID(u)) {
			enabled++
		}
	}
	require.LessOrEqual(t, enabled, cfg.ContractionLimit())

	var batches = dyn.Forest().Batches()
	require.NotEmpty(t, batches)

	for i := 0; i < len(batches); i++ {
		for _, m := range batches[i] {
			dyn.Uncontract(m)
		}
	}

	for u := 0; u < dyn.NumNodes(); u++ {
		require.True(t, dyn.NodeEnabled(hypergraph.HypernodeID(u)))
	}
	require.Equal(t, g.TotalWeight(), dyn.TotalWeight())
}
