package partition_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/micropuma/mt-kahypar-leon/hypergraph"
	"github.com/micropuma/mt-kahypar-leon/partition"
)

// TestUncontractRestoresPinsInPart checks that, for a State built over an
// already-contracted graph (the n-level scenario: one coarse vertex u
// standing in for itself and v), uncontracting v afterward leaves
// pins_in_part consistent with a from-scratch computation over the
// restored structure, for both NetCase branches.
func TestUncontractRestoresPinsInPart(t *testing.T) {
	var n, m, k = 64, 80, 4
	var static = buildRandomHypergraph(t, n, m, 3)
	var dyn = hypergraph.NewDynamic(static)

	var u, v = hypergraph.HypernodeID(0), hypergraph.HypernodeID(1)
	var memento, err = dyn.Contract(u, v)
	require.NoError(t, err)

	var s = partition.New(dyn, k)
	var r = rand.New(rand.NewSource(5))
	for ui := 0; ui < n; ui++ {
		var uid = hypergraph.HypernodeID(ui)
		if !dyn.NodeEnabled(uid) {
			continue
		}
		require.NoError(t, s.SetOnlyNodePart(uid, partition.ID(r.Intn(k))))
	}
	require.NoError(t, s.InitializePartition())

	var before = s.KM1()

	dyn.Uncontract(memento)
	s.Uncontract(dyn, memento)

	require.Equal(t, partition.Weight(before), s.KM1())
	require.Equal(t, s.PartID(u), s.PartID(v))

	for ei := 0; ei < dyn.NumEdges(); ei++ {
		var e = hypergraph.HyperedgeID(ei)
		for p := 0; p < k; p++ {
			var want int32
			for _, x := range dyn.Pins(e) {
				if s.PartID(x) == partition.ID(p) {
					want++
				}
			}
			require.Equal(t, want, s.PinsInPart(e, partition.ID(p)), "edge %d block %d", ei, p)
		}
	}
}

// TestUncontractKeepsGainCacheConsistent checks that after uncontracting v
// back into a State built over the contracted graph, u and v's benefit and
// penalty rows match an independent recomputation.
func TestUncontractKeepsGainCacheConsistent(t *testing.T) {
	var n, m, k = 64, 80, 4
	var static = buildRandomHypergraph(t, n, m, 9)
	var dyn = hypergraph.NewDynamic(static)

	var u, v = hypergraph.HypernodeID(2), hypergraph.HypernodeID(3)
	var memento, err = dyn.Contract(u, v)
	require.NoError(t, err)

	var s = partition.New(dyn, k)
	var r = rand.New(rand.NewSource(13))
	for ui := 0; ui < n; ui++ {
		var uid = hypergraph.HypernodeID(ui)
		if !dyn.NodeEnabled(uid) {
			continue
		}
		require.NoError(t, s.SetOnlyNodePart(uid, partition.ID(r.Intn(k))))
	}
	require.NoError(t, s.InitializePartition())

	var gc = s.EnableGainCache()
	require.NoError(t, gc.Init(dyn, s))

	dyn.Uncontract(memento)
	s.Uncontract(dyn, memento)

	for _, x := range []hypergraph.HypernodeID{u, v} {
		var wantBenefit, wantPenalty = recompute(dyn, s, x, k)
		for p := 0; p < k; p++ {
			require.Equal(t, wantBenefit[p], gc.Benefit(x, partition.ID(p)), "benefit[%d][%d]", x, p)
		}
		require.Equal(t, wantPenalty, gc.Penalty(x), "penalty[%d]", x)
	}
}
