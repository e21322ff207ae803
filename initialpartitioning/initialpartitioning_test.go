package initialpartitioning_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/micropuma/mt-kahypar-leon/hypergraph"
	"github.com/micropuma/mt-kahypar-leon/initialpartitioning"
	"github.com/micropuma/mt-kahypar-leon/partition"
)

func buildGrid(rows, cols int) *hypergraph.Static {
	var n = rows * cols
	var idx = func(r, c int) hypergraph.HypernodeID { return hypergraph.HypernodeID(r*cols + c) }
	var edges [][]hypergraph.HypernodeID
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if c+1 < cols {
				edges = append(edges, []hypergraph.HypernodeID{idx(r, c), idx(r, c+1)})
			}
			if r+1 < rows {
				edges = append(edges, []hypergraph.HypernodeID{idx(r, c), idx(r+1, c)})
			}
		}
	}
	var g, err = hypergraph.Build(n, edges, nil, nil, hypergraph.BuildOptions{})
	if err != nil {
		panic(err)
	}
	return g
}

func assertFullyAssigned(t *testing.T, g hypergraph.Graph, k int, assignment []int32, maxPartWeight []hypergraph.Weight) {
	var partWeight = make([]hypergraph.Weight, k)
	for u := 0; u < g.NumNodes(); u++ {
		var uid = hypergraph.HypernodeID(u)
		if !g.NodeEnabled(uid) {
			continue
		}
		require.GreaterOrEqual(t, assignment[u], int32(0))
		require.Less(t, assignment[u], int32(k))
		partWeight[assignment[u]] += g.NodeWeight(uid)
	}
	if maxPartWeight != nil {
		for p, w := range partWeight {
			require.LessOrEqual(t, w, maxPartWeight[p], "block %d over capacity", p)
		}
	}
}

func TestGreedyBFSAssignsEveryVertex(t *testing.T) {
	var g = buildGrid(6, 6)
	var k = 4
	var maxPartWeight = make([]hypergraph.Weight, k)
	for p := range maxPartWeight {
		maxPartWeight[p] = g.TotalWeight() // no binding cap; test feasibility only
	}

	var gr = &initialpartitioning.GreedyBFS{}
	var assignment, err = gr.Run(g, k, maxPartWeight, 7)
	require.NoError(t, err)
	assertFullyAssigned(t, g, k, assignment, maxPartWeight)
}

func TestFlowBalanceAssignsEveryVertex(t *testing.T) {
	var g = buildGrid(6, 6)
	var k = 4
	var maxPartWeight = make([]hypergraph.Weight, k)
	for p := range maxPartWeight {
		maxPartWeight[p] = g.TotalWeight()
	}

	var fb = &initialpartitioning.FlowBalance{}
	var assignment, err = fb.Run(g, k, maxPartWeight, 11)
	require.NoError(t, err)
	assertFullyAssigned(t, g, k, assignment, maxPartWeight)
}

func TestFlowBalanceKeepsBlockWeightsNearTarget(t *testing.T) {
	var g = buildGrid(8, 8)
	var k = 4
	var maxPartWeight = make([]hypergraph.Weight, k)
	for p := range maxPartWeight {
		maxPartWeight[p] = g.TotalWeight()
	}

	var fb = &initialpartitioning.FlowBalance{}
	var assignment, err = fb.Run(g, k, maxPartWeight, 3)
	require.NoError(t, err)

	var partWeight = make([]hypergraph.Weight, k)
	for u := range assignment {
		partWeight[assignment[u]] += g.NodeWeight(hypergraph.HypernodeID(u))
	}
	var target = g.TotalWeight() / hypergraph.Weight(k)
	for p, w := range partWeight {
		var diff = w - target
		if diff < 0 {
			diff = -diff
		}
		require.LessOrEqual(t, diff, target, "block %d weight %d far from target %d", p, w, target)
	}
}

func TestPoolPicksBestScoringAssignment(t *testing.T) {
	var g = buildGrid(6, 6)
	var k = 3
	var maxPartWeight = make([]hypergraph.Weight, k)
	for p := range maxPartWeight {
		maxPartWeight[p] = g.TotalWeight()
	}

	var pool = initialpartitioning.DefaultPool()
	var assignment, err = pool.Run(g, k, maxPartWeight, initialpartitioning.Config{
		Trials:    3,
		Seed:      42,
		Objective: partition.ObjectiveKM1,
	})
	require.NoError(t, err)
	assertFullyAssigned(t, g, k, assignment, maxPartWeight)
}

func TestPoolInfeasibleWhenCapacityTooTight(t *testing.T) {
	var g = buildGrid(4, 4)
	var k = 2
	// Capacity far below what's needed to hold even one vertex's share.
	var maxPartWeight = []hypergraph.Weight{0, 0}

	var pool = initialpartitioning.NewPool(&initialpartitioning.GreedyBFS{})
	var _, err = pool.Run(g, k, maxPartWeight, initialpartitioning.Config{Trials: 1})
	require.ErrorIs(t, err, initialpartitioning.ErrInfeasible)
}
