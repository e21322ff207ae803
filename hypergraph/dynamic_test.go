package hypergraph_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/micropuma/mt-kahypar-leon/hypergraph"
)

func snapshot(d *hypergraph.Dynamic) map[hypergraph.HyperedgeID][]hypergraph.HypernodeID {
	var out = make(map[hypergraph.HyperedgeID][]hypergraph.HypernodeID)
	for e := 0; e < d.NumEdges(); e++ {
		var pins = append([]hypergraph.HypernodeID(nil), d.Pins(hypergraph.HyperedgeID(e))...)
		sort.Slice(pins, func(i, j int) bool { return pins[i] < pins[j] })
		out[hypergraph.HyperedgeID(e)] = pins
	}
	return out
}

// TestContractUncontractRoundTrip verifies that contracting a batch of
// vertices and then uncontracting the resulting Mementos in reverse order
// restores the exact pin structure the hypergraph had before contraction.
func TestContractUncontractRoundTrip(t *testing.T) {
	var edges = smallEdges()
	var g, err = hypergraph.Build(5, edges, nil, nil, hypergraph.BuildOptions{})
	require.NoError(t, err)

	var d = hypergraph.NewDynamic(g)
	var before = snapshot(d)

	var m1, err1 = d.Contract(0, 1)
	require.NoError(t, err1)
	var m2, err2 = d.Contract(0, 2)
	require.NoError(t, err2)

	require.False(t, d.NodeEnabled(1))
	require.False(t, d.NodeEnabled(2))
	require.EqualValues(t, 3, d.NodeWeight(0))

	// Reverse of contraction order.
	d.Uncontract(m2)
	d.Uncontract(m1)

	require.True(t, d.NodeEnabled(1))
	require.True(t, d.NodeEnabled(2))
	require.EqualValues(t, 1, d.NodeWeight(0))
	require.Equal(t, before, snapshot(d))
}

func TestContractRejectsSelfLoop(t *testing.T) {
	var g, err = hypergraph.Build(5, smallEdges(), nil, nil, hypergraph.BuildOptions{})
	require.NoError(t, err)
	var d = hypergraph.NewDynamic(g)
	_, err = d.Contract(0, 0)
	require.Error(t, err)
}

func TestContractRejectsDisabledVertex(t *testing.T) {
	var g, err = hypergraph.Build(5, smallEdges(), nil, nil, hypergraph.BuildOptions{})
	require.NoError(t, err)
	var d = hypergraph.NewDynamic(g)

	_, err = d.Contract(0, 1)
	require.NoError(t, err)

	_, err = d.Contract(2, 1)
	require.Error(t, err)
}

func TestForestBatchesAreVertexDisjoint(t *testing.T) {
	var g, err = hypergraph.Build(5, smallEdges(), nil, nil, hypergraph.BuildOptions{})
	require.NoError(t, err)
	var d = hypergraph.NewDynamic(g)

	_, err = d.Contract(0, 1)
	require.NoError(t, err)
	_, err = d.Contract(3, 4)
	require.NoError(t, err)
	_, err = d.Contract(0, 3)
	require.NoError(t, err)

	var batches = d.Forest().Batches()
	for _, b := range batches {
		var seen = map[hypergraph.HypernodeID]bool{}
		for _, m := range b {
			require.False(t, seen[m.U])
			require.False(t, seen[m.V])
			seen[m.U] = true
			seen[m.V] = true
		}
	}
}
