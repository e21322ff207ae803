package fm_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/micropuma/mt-kahypar-leon/hypergraph"
	"github.com/micropuma/mt-kahypar-leon/partition"
	"github.com/micropuma/mt-kahypar-leon/refinement/fm"
)

func buildClusters(numClusters, clusterSize int) *hypergraph.Static {
	var n = numClusters * clusterSize
	var edges [][]hypergraph.HypernodeID
	for c := 0; c < numClusters; c++ {
		var pins []hypergraph.HypernodeID
		for i := 0; i < clusterSize; i++ {
			pins = append(pins, hypergraph.HypernodeID(c*clusterSize+i))
		}
		edges = append(edges, pins)
	}
	var g, err = hypergraph.Build(n, edges, nil, nil, hypergraph.BuildOptions{})
	if err != nil {
		panic(err)
	}
	return g
}

func roundRobinState(g hypergraph.Graph, k int) *partition.State {
	var s = partition.New(g, k)
	for u := 0; u < g.NumNodes(); u++ {
		var uid = hypergraph.HypernodeID(u)
		if err := s.SetOnlyNodePart(uid, partition.ID(u%k)); err != nil {
			panic(err)
		}
	}
	if err := s.InitializePartition(); err != nil {
		panic(err)
	}
	return s
}

func unboundedCeiling(g hypergraph.Graph, k int) []hypergraph.Weight {
	var m = make([]hypergraph.Weight, k)
	for p := range m {
		m[p] = g.TotalWeight()
	}
	return m
}

func TestFMImprovesKM1OrHolds(t *testing.T) {
	var g = buildClusters(4, 6)
	var k = 4
	var s = roundRobinState(g, k)
	s.EnableGainCache()
	require.NoError(t, s.GainCache().Init(g, s))

	var before = s.KM1()
	var moves, err = fm.Run(context.Background(), g, s, unboundedCeiling(g, k), fm.Config{
		MultitryRounds: 5,
		Objective:      partition.ObjectiveKM1,
		Shuffle:        true,
		Seed:           1,
	})
	require.NoError(t, err)
	require.GreaterOrEqual(t, moves, 0)
	require.LessOrEqual(t, s.KM1(), before)
}

func TestFMImprovesCutOrHolds(t *testing.T) {
	var g = buildClusters(3, 5)
	var k = 3
	var s = roundRobinState(g, k)

	var before = s.Cut()
	var _, err = fm.Run(context.Background(), g, s, unboundedCeiling(g, k), fm.Config{
		MultitryRounds: 5,
		Objective:      partition.ObjectiveCut,
		Shuffle:        true,
		Seed:           2,
	})
	require.NoError(t, err)
	require.LessOrEqual(t, s.Cut(), before)
}

func TestFMRejectsWithoutGainCacheForKM1(t *testing.T) {
	var g = buildClusters(2, 4)
	var k = 2
	var s = roundRobinState(g, k)

	var _, err = fm.Run(context.Background(), g, s, unboundedCeiling(g, k), fm.Config{
		Objective: partition.ObjectiveKM1,
	})
	require.ErrorIs(t, err, fm.ErrGainCacheRequired)
}

func TestFMRespectsWeightCeiling(t *testing.T) {
	var g = buildClusters(4, 6)
	var k = 4
	var s = roundRobinState(g, k)
	s.EnableGainCache()
	require.NoError(t, s.GainCache().Init(g, s))

	var ceiling = make([]hypergraph.Weight, k)
	for p := 0; p < k; p++ {
		ceiling[p] = s.PartWeight(partition.ID(p))
	}

	var _, err = fm.Run(context.Background(), g, s, ceiling, fm.Config{
		MultitryRounds: 3,
		Objective:      partition.ObjectiveKM1,
		Seed:           3,
	})
	require.NoError(t, err)
	for p := 0; p < k; p++ {
		require.LessOrEqual(t, s.PartWeight(partition.ID(p)), ceiling[p])
	}
}

// TestGlobalRollbackMonotonicity is this package's property-6 test: after
// GlobalRollback, the resulting objective is never worse than it was
// before any move in the merged logs was applied.
func TestGlobalRollbackMonotonicity(t *testing.T) {
	var g = buildClusters(4, 6)
	var k = 4
	var s = roundRobinState(g, k)
	s.EnableGainCache()
	require.NoError(t, s.GainCache().Init(g, s))

	var before = s.KM1()

	var tracker = fm.NewNodeTracker(g.NumNodes())
	var seq atomic.Int64
	var ceiling = unboundedCeiling(g, k)

	var logs [][]fm.Move
	for ui := 0; ui < g.NumNodes(); ui++ {
		var u = hypergraph.HypernodeID(ui)
		if !s.IsBorderNode(u) {
			continue
		}
		if tracker.IsClaimed(u) {
			continue
		}
		var searchID = tracker.NewSearchID()
		var moves = fm.FindMoves(g, s, partition.ObjectiveKM1, ceiling, tracker, u, searchID, &seq, 0)
		if len(moves) > 0 {
			logs = append(logs, moves)
		}
	}

	var improvement, surviving = fm.GlobalRollback(g, s, partition.ObjectiveKM1, logs)
	require.GreaterOrEqual(t, improvement, partition.Weight(0))
	require.GreaterOrEqual(t, surviving, 0)
	require.LessOrEqual(t, s.KM1(), before)
	require.Equal(t, before-improvement, s.KM1())
}
