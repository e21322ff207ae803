package initialpartitioning

import (
	"math/rand"

	"github.com/micropuma/mt-kahypar-leon/hypergraph"
)

// GreedyBFS grows k blocks outward from k seed vertices in lockstep, each
// block always extending from the currently lightest-weight block's BFS
// frontier, until every reachable vertex is assigned; any vertex left over
// (a disconnected component with no block frontier to reach it) is dropped
// onto the lightest feasible block afterward.
type GreedyBFS struct{}

func (*GreedyBFS) Name() string { return "greedy-bfs" }

func (*GreedyBFS) Run(g hypergraph.Graph, k int, maxPartWeight []hypergraph.Weight, seed int64) ([]int32, error) {
	var n = g.NumNodes()
	var rng = rand.New(rand.NewSource(seed))

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
	if len(enabled) == 0 {
		return assignment, nil
	}

	var seeds = chooseSeeds(g, enabled, k, rng)
	var partWeight = make([]hypergraph.Weight, k)
	var frontier = make([][]hypergraph.HypernodeID, k)
	var queued = make([]bool, n)

	for p, s := range seeds {
		assignment[s] = int32(p)
		partWeight[p] += g.NodeWeight(s)
		frontier[p] = append(frontier[p], s)
		queued[s] = true
	}

	var remaining = len(enabled) - len(seeds)
	for remaining > 0 {
		var progressed bool

		// Process blocks lightest-first each round, so no single block's
		// frontier races ahead of the others while capacity remains evenly
		// available — mirroring the teacher's own preference for an even
		// balance over a first-come-first-served assignment.
		var order = lightestFirst(partWeight)
		for _, p := range order {
			for len(frontier[p]) > 0 {
				var u = frontier[p][0]
				frontier[p] = frontier[p][1:]

				for _, e := range g.IncidentNets(u) {
					if !g.EdgeEnabled(e) {
						continue
					}
					for _, v := range g.Pins(e) {
						if queued[v] || !g.NodeEnabled(v) {
							continue
						}
						var w = g.NodeWeight(v)
						if maxPartWeight != nil && partWeight[p]+w > maxPartWeight[p] {
							continue
						}
						assignment[v] = int32(p)
						partWeight[p] += w
						queued[v] = true
						frontier[p] = append(frontier[p], v)
						remaining--
						progressed = true
					}
				}
				break // one vertex's neighbors expanded per visit to this block this round
			}
		}
		if !progressed {
			break // no block's frontier can expand further under the weight caps
		}
	}

	// Any vertex left over (disconnected from every seeded frontier, or
	// blocked everywhere by maxPartWeight) goes to the lightest block that
	// can still take it.
	for _, u := range enabled {
		if assignment[u] >= 0 {
			continue
		}
		var w = g.NodeWeight(u)
		var best = -1
		for _, p := range lightestFirst(partWeight) {
			if maxPartWeight == nil || partWeight[p]+w <= maxPartWeight[p] {
				best = p
				break
			}
		}
		if best < 0 {
			best = 0 // every block is over cap; leave the balancer to fix it up later
		}
		assignment[u] = int32(best)
		partWeight[best] += w
	}

	return assignment, nil
}

// chooseSeeds picks k vertices via farthest-point sampling over hypergraph
// adjacency (pins sharing a net count as neighbors): the first seed is
// random, and each subsequent seed is the enabled vertex with the greatest
// BFS distance from the seeds chosen so far, spreading growth fronts apart.
func chooseSeeds(g hypergraph.Graph, enabled []hypergraph.HypernodeID, k int, rng *rand.Rand) []hypergraph.HypernodeID {
	if k > len(enabled) {
		k = len(enabled)
	}
	var seeds = make([]hypergraph.HypernodeID, 0, k)
	var dist = make([]int, g.NumNodes())
	for i := range dist {
		dist[i] = -1
	}

	var first = enabled[rng.Intn(len(enabled))]
	seeds = append(seeds, first)

	for len(seeds) < k {
		bfsDistanceFrom(g, seeds, dist)

		var farthest = hypergraph.HypernodeID(0)
		var farthestDist = -1
		for _, u := range enabled {
			if dist[u] > farthestDist && !alreadySeed(seeds, u) {
				farthest, farthestDist = u, dist[u]
			}
		}
		if farthestDist < 0 {
			break // no enabled non-seed vertex is reachable from the seeds
		}
		seeds = append(seeds, farthest)
	}
	return seeds
}

func alreadySeed(seeds []hypergraph.HypernodeID, u hypergraph.HypernodeID) bool {
	for _, s := range seeds {
		if s == u {
			return true
		}
	}
	return false
}

// bfsDistanceFrom fills dist with the multi-source BFS distance from seeds
// over hypergraph adjacency (dist remains -1 for unreached vertices).
func bfsDistanceFrom(g hypergraph.Graph, seeds []hypergraph.HypernodeID, dist []int) {
	for i := range dist {
		dist[i] = -1
	}
	var queue = make([]hypergraph.HypernodeID, len(seeds))
	copy(queue, seeds)
	for _, s := range seeds {
		dist[s] = 0
	}

	for len(queue) > 0 {
		var u = queue[0]
		queue = queue[1:]
		for _, e := range g.IncidentNets(u) {
			if !g.EdgeEnabled(e) {
				continue
			}
			for _, v := range g.Pins(e) {
				if dist[v] != -1 || !g.NodeEnabled(v) {
					continue
				}
				dist[v] = dist[u] + 1
				queue = append(queue, v)
			}
		}
	}
}

// lightestFirst returns block indices sorted ascending by current weight.
func lightestFirst(partWeight []hypergraph.Weight) []int {
	var order = make([]int, len(partWeight))
	for i := range order {
		order[i] = i
	}
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && partWeight[order[j]] < partWeight[order[j-1]]; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
	return order
}
