package uncoarsening_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/micropuma/mt-kahypar-leon/hypergraph"
	"github.com/micropuma/mt-kahypar-leon/partition"
	"github.com/micropuma/mt-kahypar-leon/uncoarsening"
)

// stageAllInBlockZero builds a k-block State over g with every vertex
// assigned to block 0, regardless of k — an intentionally infeasible
// starting point for Rebalance to fix.
func stageAllInBlockZero(t *testing.T, g hypergraph.Graph, k int) *partition.State {
	var s = partition.New(g, k)
	for u := 0; u < g.NumNodes(); u++ {
		require.NoError(t, s.SetOnlyNodePart(hypergraph.HypernodeID(u), 0))
	}
	require.NoError(t, s.InitializePartition())
	return s
}

func tightCeiling(g hypergraph.Graph, k int) []partition.Weight {
	var perfect = (int64(g.TotalWeight()) + int64(k) - 1) / int64(k)
	var ceiling = make([]partition.Weight, k)
	for p := range ceiling {
		ceiling[p] = partition.Weight(perfect)
	}
	return ceiling
}

// TestRebalanceDrainsOverweightBlockKM1 checks that an intentionally
// infeasible km1 assignment (every vertex in block 0) is restored to
// feasibility under a tight, evenly-divided ceiling.
func TestRebalanceDrainsOverweightBlockKM1(t *testing.T) {
	var k = 4
	var g = buildCliques(8, 6)
	var s = stageAllInBlockZero(t, g, k)

	var gc = s.EnableGainCache()
	require.NoError(t, gc.Init(g, s))

	var ceiling = tightCeiling(g, k)
	var moves, err = uncoarsening.Rebalance(g, s, ceiling, partition.ObjectiveKM1)
	require.NoError(t, err)
	require.Greater(t, moves, 0)

	for p := 0; p < k; p++ {
		require.LessOrEqual(t, s.PartWeight(partition.ID(p)), ceiling[p], "block %d", p)
	}

	var total partition.Weight
	for p := 0; p < k; p++ {
		total += s.PartWeight(partition.ID(p))
	}
	require.Equal(t, g.TotalWeight(), total)
}

// TestRebalanceDrainsOverweightBlockCut checks the same scenario under the
// cut objective, which has no gain cache and instead scores moves via
// labelprop.CutGain.
func TestRebalanceDrainsOverweightBlockCut(t *testing.T) {
	var k = 3
	var g = buildCliques(6, 5)
	var s = stageAllInBlockZero(t, g, k)

	var ceiling = tightCeiling(g, k)
	var moves, err = uncoarsening.Rebalance(g, s, ceiling, partition.ObjectiveCut)
	require.NoError(t, err)
	require.Greater(t, moves, 0)

	for p := 0; p < k; p++ {
		require.LessOrEqual(t, s.PartWeight(partition.ID(p)), ceiling[p], "block %d", p)
	}
}

// TestRebalanceNoOpWhenAlreadyFeasible checks that Rebalance makes no
// moves and reports no error against an already-feasible partition.
func TestRebalanceNoOpWhenAlreadyFeasible(t *testing.T) {
	var k = 2
	var g = buildCliques(4, 4)
	var s = partition.New(g, k)
	for u := 0; u < g.NumNodes(); u++ {
		require.NoError(t, s.SetOnlyNodePart(hypergraph.HypernodeID(u), partition.ID(u%k)))
	}
	require.NoError(t, s.InitializePartition())

	var gc = s.EnableGainCache()
	require.NoError(t, gc.Init(g, s))

	var ceiling = unboundedCeiling(g, k)
	var moves, err = uncoarsening.Rebalance(g, s, ceiling, partition.ObjectiveKM1)
	require.NoError(t, err)
	require.Equal(t, 0, moves)
}
