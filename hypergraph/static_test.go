package hypergraph_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/micropuma/mt-kahypar-leon/hypergraph"
)

func smallEdges() [][]hypergraph.HypernodeID {
	return [][]hypergraph.HypernodeID{
		{0, 1, 2},
		{1, 2, 3},
		{3, 4},
		{0, 4},
	}
}

func TestBuildRejectsEmptyNet(t *testing.T) {
	var edges = [][]hypergraph.HypernodeID{{0, 1}, {}}
	_, err := hypergraph.Build(2, edges, nil, nil, hypergraph.BuildOptions{})
	require.ErrorIs(t, err, hypergraph.ErrEmptyNet)
}

func TestBuildRejectsOutOfRangePin(t *testing.T) {
	var edges = [][]hypergraph.HypernodeID{{0, 5}}
	_, err := hypergraph.Build(2, edges, nil, nil, hypergraph.BuildOptions{})
	require.ErrorIs(t, err, hypergraph.ErrInvalidPin)
}

func TestBuildRejectsNegativeWeight(t *testing.T) {
	var edges = smallEdges()
	_, err := hypergraph.Build(5, edges, nil, []hypergraph.Weight{1, 1, 1, 1, -1}, hypergraph.BuildOptions{})
	require.ErrorIs(t, err, hypergraph.ErrNegativeWeight)
}

func TestBuildDefaultsWeightsToOne(t *testing.T) {
	var g, err = hypergraph.Build(5, smallEdges(), nil, nil, hypergraph.BuildOptions{})
	require.NoError(t, err)
	require.EqualValues(t, 5, g.TotalWeight())
	for e := 0; e < g.NumEdges(); e++ {
		require.EqualValues(t, 1, g.EdgeWeight(hypergraph.HyperedgeID(e)))
	}
}

// TestBidirectionalPinIncidence checks that every (net, pin) relationship
// recorded in the flat pin arena has a matching (pin, net) entry in the
// flat incident-net arena, and vice versa.
func TestBidirectionalPinIncidence(t *testing.T) {
	var edges = smallEdges()
	var g, err = hypergraph.Build(5, edges, nil, nil, hypergraph.BuildOptions{})
	require.NoError(t, err)

	for e := 0; e < g.NumEdges(); e++ {
		for _, u := range g.Pins(hypergraph.HyperedgeID(e)) {
			require.Contains(t, g.IncidentNets(u), hypergraph.HyperedgeID(e))
		}
	}
	for u := 0; u < g.NumNodes(); u++ {
		for _, e := range g.IncidentNets(hypergraph.HypernodeID(u)) {
			require.Contains(t, g.Pins(e), hypergraph.HypernodeID(u))
		}
	}
}

func TestEdgeHashIsOrderIndependent(t *testing.T) {
	var g1, err = hypergraph.Build(3, [][]hypergraph.HypernodeID{{0, 1, 2}}, nil, nil, hypergraph.BuildOptions{})
	require.NoError(t, err)
	var g2, err2 = hypergraph.Build(3, [][]hypergraph.HypernodeID{{2, 0, 1}}, nil, nil, hypergraph.BuildOptions{})
	require.NoError(t, err2)
	require.Equal(t, g1.EdgeHash(0), g2.EdgeHash(0))
}

func TestSortIncidentNets(t *testing.T) {
	var edges = [][]hypergraph.HypernodeID{{0}, {0}, {0}}
	var g, err = hypergraph.Build(1, edges, nil, nil, hypergraph.BuildOptions{SortIncidentNets: true})
	require.NoError(t, err)
	var nets = g.IncidentNets(0)
	require.Len(t, nets, 3)
	for i := 1; i < len(nets); i++ {
		require.Less(t, nets[i-1], nets[i])
	}
}
