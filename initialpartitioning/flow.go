package initialpartitioning

import (
	"sort"

	"github.com/micropuma/mt-kahypar-leon/hypergraph"
	"github.com/micropuma/mt-kahypar-leon/initialpartitioning/maxflow"
)

// FlowBalance starts from a weight-balanced greedy assignment (longest-
// processing-time bin packing, ignoring adjacency) and then uses a max-flow
// solve to decide, in aggregate, how much weight should move from each
// overweight block to each underweight one; the actual vertices realizing
// each block-to-block amount are chosen afterward by a deterministic
// highest-adjacency-gain-first pass. This split mirrors the teacher's own
// sparseFlowNetwork/extractAssignments separation: the solver settles the
// aggregate capacity problem, a plain pass turns that into concrete
// assignments.
type FlowBalance struct{}

func (*FlowBalance) Name() string { return "flow-balance" }

func (*FlowBalance) Run(g hypergraph.Graph, k int, maxPartWeight []hypergraph.Weight, seed int64) ([]int32, error) {
	var assignment, partWeight = binPack(g, k, maxPartWeight)

	var target = make([]hypergraph.Weight, k)
	var total hypergraph.Weight
	for p := range partWeight {
		total += partWeight[p]
	}
	for p := range target {
		target[p] = total / hypergraph.Weight(k)
	}

	var moves = solveBlockMoves(partWeight, target, maxPartWeight, k)
	applyBlockMoves(g, assignment, partWeight, moves)

	return assignment, nil
}

// binPack assigns every enabled vertex, heaviest first, to the currently
// lightest feasible block (longest-processing-time greedy bin packing);
// adjacency plays no role here, by design — it is FlowBalance's later
// rebalancing pass that accounts for cut quality.
func binPack(g hypergraph.Graph, k int, maxPartWeight []hypergraph.Weight) ([]int32, []hypergraph.Weight) {
	var n = g.NumNodes()
	var assignment = make([]int32, n)
	for u := range assignment {
		assignment[u] = -1
	}

	var enabled []hypergraph.HypernodeID
	for u := 0; u < n; u++ {
		if g.NodeEnabled(hypergraph.HypernodeID(u)) {
			enabled = append(enabled, hypergraph.HypernodeID(u))
		}
	}
	sort.Slice(enabled, func(i, j int) bool {
		return g.NodeWeight(enabled[i]) > g.NodeWeight(enabled[j])
	})

	var partWeight = make([]hypergraph.Weight, k)
	for _, u := range enabled {
		var w = g.NodeWeight(u)
		var best = 0
		for p := 1; p < k; p++ {
			if partWeight[p] < partWeight[best] {
				best = p
			}
		}
		if maxPartWeight != nil {
			for p := range partWeight {
				if partWeight[p]+w <= maxPartWeight[p] && partWeight[p] < partWeight[best] {
					best = p
				}
			}
		}
		assignment[u] = int32(best)
		partWeight[best] += w
	}
	return assignment, partWeight
}

// blockMove is a prescribed aggregate weight transfer from block From to
// block To, solved by max-flow over block supply/demand nodes.
type blockMove struct {
	from, to int
	weight   hypergraph.Weight
}

// solveBlockMoves builds a tiny flow network with one supply node per
// overweight block and one demand node per underweight block (source feeds
// supply by each block's excess over target, demand feeds sink by each
// block's remaining room under its ceiling, maxPartWeight or target when
// maxPartWeight is nil; supply-to-demand arcs are unconstrained)
// and reads off the per-(from,to) transfer amounts from the solved flow.
func solveBlockMoves(partWeight, target, maxPartWeight []hypergraph.Weight, k int) []blockMove {
	var supply = make([]maxflow.NodeID, k)
	var demand = make([]maxflow.NodeID, k)
	var next = maxflow.SinkID + 1
	for p := 0; p < k; p++ {
		supply[p] = next
		next++
	}
	for p := 0; p < k; p++ {
		demand[p] = next
		next++
	}

	var ceiling = maxPartWeight
	if ceiling == nil {
		ceiling = target
	}

	var net = &blockNetwork{
		k:       k,
		supply:  supply,
		demand:  demand,
		nodes:   int(next),
		surplus: make([]maxflow.Rate, k),
		deficit: make([]maxflow.Rate, k),
	}
	for p := 0; p < k; p++ {
		if partWeight[p] > target[p] {
			net.surplus[p] = maxflow.Rate(partWeight[p] - target[p])
		}
		if partWeight[p] < ceiling[p] {
			net.deficit[p] = maxflow.Rate(ceiling[p] - partWeight[p])
		}
	}

	var mf = maxflow.FindMaxFlow(net)

	var moves []blockMove
	for p := 0; p < k; p++ {
		mf.Flows(supply[p], func(f maxflow.Flow) {
			for q := 0; q < k; q++ {
				if demand[q] == f.To && f.Rate > 0 {
					moves = append(moves, blockMove{from: p, to: q, weight: hypergraph.Weight(f.Rate)})
				}
			}
		})
	}
	return moves
}

// blockNetwork is the maxflow.Network for solveBlockMoves: Source -> supply
// nodes (capacity = surplus), supply -> demand (unconstrained, every pair
// but self), demand -> Sink (capacity = deficit).
type blockNetwork struct {
	k              int
	supply, demand []maxflow.NodeID
	nodes          int
	surplus        []maxflow.Rate
	deficit        []maxflow.Rate
}

func (n *blockNetwork) Nodes() int { return n.nodes }
func (n *blockNetwork) InitialHeight(maxflow.NodeID) maxflow.Height {
	return 0
}

func (n *blockNetwork) Arcs(_ *maxflow.MaxFlow, id maxflow.NodeID, _ maxflow.PageToken) ([]maxflow.Arc, maxflow.PageToken) {
	if id == maxflow.SourceID {
		var arcs []maxflow.Arc
		for p := 0; p < n.k; p++ {
			if n.surplus[p] > 0 {
				arcs = append(arcs, maxflow.Arc{To: n.supply[p], Capacity: n.surplus[p]})
			}
		}
		return arcs, maxflow.PageEOF
	}
	for p := 0; p < n.k; p++ {
		if n.supply[p] == id {
			var arcs []maxflow.Arc
			for q := 0; q < n.k; q++ {
				if q != p && n.deficit[q] > 0 {
					arcs = append(arcs, maxflow.Arc{To: n.demand[q], Capacity: maxflow.Rate(1 << 30)})
				}
			}
			return arcs, maxflow.PageEOF
		}
	}
	for q := 0; q < n.k; q++ {
		if n.demand[q] == id {
			return []maxflow.Arc{{To: maxflow.SinkID, Capacity: n.deficit[q]}}, maxflow.PageEOF
		}
	}
	return nil, maxflow.PageEOF
}

// applyBlockMoves realizes each prescribed block transfer by reassigning
// vertices from the "from" block to the "to" block, preferring vertices
// whose incident nets already touch "to" more than "from" (so the move
// reduces cut rather than just rebalancing weight blindly), stopping once
// the prescribed weight has moved or candidates run out.
func applyBlockMoves(g hypergraph.Graph, assignment []int32, partWeight []hypergraph.Weight, moves []blockMove) {
	for _, mv := range moves {
		var candidates []hypergraph.HypernodeID
		for u := 0; u < len(assignment); u++ {
			if assignment[u] == int32(mv.from) {
				candidates = append(candidates, hypergraph.HypernodeID(u))
			}
		}
		sort.Slice(candidates, func(i, j int) bool {
			return adjacencyGain(g, assignment, candidates[i], mv.from, mv.to) >
				adjacencyGain(g, assignment, candidates[j], mv.from, mv.to)
		})

		var moved hypergraph.Weight
		for _, u := range candidates {
			if moved >= mv.weight {
				break
			}
			var w = g.NodeWeight(u)
			assignment[u] = int32(mv.to)
			partWeight[mv.from] -= w
			partWeight[mv.to] += w
			moved += w
		}
	}
}

// adjacencyGain counts the other pins of u's incident nets that are already
// in "to", minus those already in "from" (a pin shared by several nets
// counts once per net) — a higher value means moving u
// from "from" to "to" is more likely to reduce the cut/km1 objective.
func adjacencyGain(g hypergraph.Graph, assignment []int32, u hypergraph.HypernodeID, from, to int) int {
	var gain int
	for _, e := range g.IncidentNets(u) {
		if !g.EdgeEnabled(e) {
			continue
		}
		for _, v := range g.Pins(e) {
			if v == u {
				continue
			}
			switch int(assignment[v]) {
			case to:
				gain++
			case from:
				gain--
			}
		}
	}
	return gain
}
