package maxflow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestWikipediaPushRelabelFixture reproduces the worked example from the
// Push-relabel Wikipedia article, confirming the solver still finds the
// unique maximum flow after the Rate widening and doc rewording.
// https://en.wikipedia.org/wiki/Push%E2%80%93relabel_maximum_flow_algorithm#Example
func TestWikipediaPushRelabelFixture(t *testing.T) {
	const (
		A = SinkID + 1
		B = A + 1
		C = B + 1
		D = C + 1
	)
	var arcs = fixedArcs{
		SourceID: {{
			{To: A, Capacity: 15},
			{To: C, Capacity: 4},
		}},
		A: {{{To: B, Capacity: 12}}},
		B: {
			{{To: C, Capacity: 3}},
			{{To: SinkID, Capacity: 7}},
		},
		C: {{{To: D, Capacity: 10}}},
		D: {{
			{To: A, Capacity: 5},
			{To: SinkID, Capacity: 10},
		}},
	}
	var mf = FindMaxFlow(testNetwork{nodes: 6, arcsFn: arcs.fn})

	require.Equal(t, map[Adjacency]Rate{
		{From: A, To: B}:        10,
		{From: B, To: C}:        3,
		{From: B, To: SinkID}:   7,
		{From: C, To: D}:        7,
		{From: D, To: SinkID}:   7,
		{From: SourceID, To: A}: 10,
		{From: SourceID, To: C}: 4,
	}, toMap(mf))
}

// TestBlockBalanceFixture mirrors the supply/demand shape
// initialpartitioning/flow.go actually builds: a handful of "overweight
// block" supply nodes feeding a handful of "underweight block" demand
// nodes, each bounded by its own capacity.
func TestBlockBalanceFixture(t *testing.T) {
	const (
		supply0 = SinkID + 1
		supply1 = supply0 + 1
		demand0 = supply1 + 1
		demand1 = demand0 + 1
	)
	var arcs = fixedArcs{
		SourceID: {{
			{To: supply0, Capacity: 6},
			{To: supply1, Capacity: 2},
		}},
		supply0: {{
			{To: demand0, Capacity: 100},
			{To: demand1, Capacity: 100},
		}},
		supply1: {{
			{To: demand0, Capacity: 100},
			{To: demand1, Capacity: 100},
		}},
		demand0: {{{To: SinkID, Capacity: 5}}},
		demand1: {{{To: SinkID, Capacity: 3}}},
	}
	var mf = FindMaxFlow(testNetwork{nodes: 6, arcsFn: arcs.fn})

	var totalOut, totalIn Rate
	mf.Flows(SourceID, func(f Flow) { totalOut += f.Rate })
	mf.Flows(demand0, func(f Flow) { totalIn += f.Rate })
	mf.Flows(demand1, func(f Flow) { totalIn += f.Rate })

	require.Equal(t, Rate(8), totalOut) // full supply of 6+2 is feasible
	require.Equal(t, Rate(8), totalIn)
}

func toMap(g *MaxFlow) map[Adjacency]Rate {
	var out = make(map[Adjacency]Rate)
	for _, f := range g.flows {
		if f.Rate != 0 {
			out[f.Adjacency] = f.Rate
		}
	}
	return out
}

type testNetwork struct {
	nodes  int
	arcsFn func(g *MaxFlow, id NodeID, token PageToken) ([]Arc, PageToken)
}

func (s testNetwork) Nodes() int                     { return s.nodes }
func (s testNetwork) InitialHeight(id NodeID) Height { return 0 }
func (s testNetwork) Arcs(g *MaxFlow, id NodeID, token PageToken) ([]Arc, PageToken) {
	return s.arcsFn(g, id, token)
}

type fixedArcs map[NodeID][][]Arc

func (f fixedArcs) fn(g *MaxFlow, id NodeID, token PageToken) ([]Arc, PageToken) {
	var pages, next = f[id][token], token+1
	if next == PageToken(len(f[id])) {
		return pages, PageEOF
	}
	return pages, next
}
