package coarsening

import (
	"github.com/micropuma/mt-kahypar-leon/hypergraph"
	"github.com/micropuma/mt-kahypar-leon/internal/par"
	"github.com/micropuma/mt-kahypar-leon/metrics"
)

// Level records one step of a multilevel coarsening hierarchy: the finer
// graph, the coarser graph contracted from it, and the fine→coarse vertex
// mapping needed to project a partition of Coarse back onto Fine.
type Level struct {
	Fine    hypergraph.Graph
	Coarse  *hypergraph.Static
	Mapping []hypergraph.HypernodeID // len(Fine vertices); fine u -> coarse id
}

// candidate is one vertex's best match proposal for the current pass.
type candidate struct {
	target hypergraph.HypernodeID
	score  float64
	valid  bool
}

// pass runs one matching round over g, returning vertex-disjoint pairs
// (u absorbs v) chosen by rating + acceptance policy. Each vertex computes
// its best candidate independently and in parallel (a read-only scan of
// the current graph); pairs are then resolved by a single sequential scan
// that greedily accepts mutually-available pairs in vertex-id order — a
// deliberate simplification of the source's lock-based concurrent matcher,
// trading some parallelism in the (cheap, O(n)) resolution step for a
// matcher with no races to reason about, while keeping the expensive part
// (rating every candidate pair) fully parallel.
func pass(g hypergraph.Graph, cfg Config, stats degreeStats, cache *ratingCache, matched []bool) [][2]hypergraph.HypernodeID {
	var n = g.NumNodes()
	var candidates = make([]candidate, n)
	var maxNodeWeight hypergraph.Weight
	if cfg.MaxCoarseVertexWeightMultiplier > 0 {
		maxNodeWeight = hypergraph.Weight(cfg.MaxCoarseVertexWeightMultiplier * float64(g.TotalWeight()) / float64(cfg.ContractionLimit()))
	}

	par.ForEach(n, cfg.Workers, func(ui int) error {
		var u = hypergraph.HypernodeID(ui)
		if !g.NodeEnabled(u) || matched[u] {
			return nil
		}
		var best = candidate{}
		var seen = make(map[hypergraph.HypernodeID]bool, g.NodeDegree(u))
		for _, e := range g.IncidentNets(u) {
			if !g.EdgeEnabled(e) {
				continue
			}
			for _, v := range g.Pins(e) {
				if v == u || matched[v] || seen[v] || !g.NodeEnabled(v) {
					continue
				}
				seen[v] = true
				if maxNodeWeight > 0 && g.NodeWeight(u)+g.NodeWeight(v) > maxNodeWeight {
					continue
				}
				var score = cache.rate(g, stats, cfg.HeavyNodePenalty, u, v)
				if betterCandidate(score, v, best, cfg.Acceptance, matched) {
					best = candidate{target: v, score: score, valid: true}
				}
			}
		}
		candidates[ui] = best
		return nil
	})

	var pairs [][2]hypergraph.HypernodeID
	for u := 0; u < n; u++ {
		if matched[u] || !candidates[u].valid {
			continue
		}
		var v = candidates[u].target
		if matched[v] {
			continue
		}
		matched[u] = true
		matched[v] = true
		pairs = append(pairs, [2]hypergraph.HypernodeID{hypergraph.HypernodeID(u), v})
	}
	return pairs
}

func betterCandidate(score float64, v hypergraph.HypernodeID, cur candidate, acc Acceptance, matched []bool) bool {
	if !cur.valid {
		return true
	}
	if score > cur.score {
		return true
	}
	if score < cur.score {
		return false
	}
	if acc == AcceptBestPreferUnmatched {
		if !matched[v] && matched[cur.target] {
			return true
		}
		if matched[v] && !matched[cur.target] {
			return false
		}
	}
	return v < cur.target
}

// Run drives multilevel coarsening: each pass contracts a vertex-disjoint
// matching into a fresh hypergraph.Static, recorded as a Level, until the
// live vertex count reaches cfg.ContractionLimit() or a pass matches
// nothing.
func Run(g *hypergraph.Static, cfg Config) ([]*Level, *hypergraph.Static, error) {
	var current hypergraph.Graph = g
	var levels []*Level
	var limit = cfg.ContractionLimit()
	var passes int

	for current.NumNodes() > limit {
		if cfg.MaxPasses > 0 && passes >= cfg.MaxPasses {
			break
		}
		var stats = computeDegreeStats(current)
		var cache = newRatingCache(cfg.RatingCacheSize)
		var matched = make([]bool, current.NumNodes())

		var pairs = pass(current, cfg, stats, cache, matched)
		if len(pairs) == 0 {
			break
		}

		var coarse, mapping, err = contractPairs(current, pairs)
		if err != nil {
			return nil, nil, err
		}
		levels = append(levels, &Level{Fine: current, Coarse: coarse, Mapping: mapping})
		current = coarse
		passes++

		metrics.CoarseningPassesTotal.Inc()
		metrics.CoarseningContractionsTotal.Add(float64(len(pairs)))
	}

	return levels, current.(*hypergraph.Static), nil
}

// contractPairs builds the coarse hypergraph.Static resulting from
// contracting each pair (u absorbs v) of fine, returning the fine->coarse
// vertex id mapping.
func contractPairs(fine hypergraph.Graph, pairs [][2]hypergraph.HypernodeID) (*hypergraph.Static, []hypergraph.HypernodeID, error) {
	var n = fine.NumNodes()
	var root = make([]hypergraph.HypernodeID, n)
	for u := range root {
		root[u] = hypergraph.HypernodeID(u)
	}
	for _, pr := range pairs {
		root[pr[1]] = pr[0]
	}

	// Every vertex maps to its ultimate representative by walking root
	// links (no path compression; pairs are vertex-disjoint within a pass,
	// so this is already a single hop, but the walk keeps this correct even
	// if pairs ever formed a chain).
	var find func(hypergraph.HypernodeID) hypergraph.HypernodeID
	find = func(u hypergraph.HypernodeID) hypergraph.HypernodeID {
		for root[u] != u {
			u = root[u]
		}
		return u
	}

	var coarseID = make([]int32, n)
	for i := range coarseID {
		coarseID[i] = -1
	}
	var numCoarse int32
	var mapping = make([]hypergraph.HypernodeID, n)
	for u := 0; u < n; u++ {
		var r = find(hypergraph.HypernodeID(u))
		if coarseID[r] < 0 {
			coarseID[r] = numCoarse
			numCoarse++
		}
		mapping[u] = hypergraph.HypernodeID(coarseID[r])
	}

	var nodeWeight = make([]hypergraph.Weight, numCoarse)
	var community = make([]hypergraph.CommunityID, numCoarse)
	for u := 0; u < n; u++ {
		var uid = hypergraph.HypernodeID(u)
		nodeWeight[mapping[u]] += fine.NodeWeight(uid)
		community[mapping[u]] = fine.Community(uid)
	}

	var seen = make(map[hypergraph.HypernodeID]bool)
	var edges [][]hypergraph.HypernodeID
	var edgeWeights []hypergraph.Weight
	for e := 0; e < fine.NumEdges(); e++ {
		var eid = hypergraph.HyperedgeID(e)
		if !fine.EdgeEnabled(eid) {
			continue
		}
		for k := range seen {
			delete(seen, k)
		}
		var pins []hypergraph.HypernodeID
		for _, p := range fine.Pins(eid) {
			var c = mapping[p]
			if !seen[c] {
				seen[c] = true
				pins = append(pins, c)
			}
		}
		if len(pins) < 2 {
			continue // single-pin nets are removed from the coarse graph
		}
		edges = append(edges, pins)
		edgeWeights = append(edgeWeights, fine.EdgeWeight(eid))
	}

	var coarse, err = hypergraph.Build(int(numCoarse), edges, edgeWeights, nodeWeight, hypergraph.BuildOptions{})
	if err != nil {
		return nil, nil, err
	}
	for c := 0; c < int(numCoarse); c++ {
		coarse.SetCommunity(hypergraph.HypernodeID(c), community[c])
	}
	return coarse, mapping, nil
}

// Project maps a coarse partition assignment onto the fine vertex space of
// a Level: fine vertex u inherits the block of its coarse representative.
func Project(level *Level, coarsePart []int32) []int32 {
	var fine = make([]int32, len(level.Mapping))
	for u, c := range level.Mapping {
		fine[u] = coarsePart[c]
	}
	return fine
}

// RunNLevel drives n-level coarsening over a Dynamic hypergraph: each pass
// contracts a vertex-disjoint matching directly into g via g.Contract,
// growing g's contraction forest in place. g's own enabled-node count never
// shrinks the underlying id space (only disables vertices), so live is
// tracked alongside it rather than re-derived from g.NumNodes() each pass.
func RunNLevel(g *hypergraph.Dynamic, cfg Config) error {
	var live = g.NumNodes()
	var limit = cfg.ContractionLimit()
	var passes int

	for live > limit {
		if cfg.MaxPasses > 0 && passes >= cfg.MaxPasses {
			break
		}
		var stats = computeDegreeStats(g)
		var cache = newRatingCache(cfg.RatingCacheSize)
		var matched = make([]bool, g.NumNodes())

		var pairs = pass(g, cfg, stats, cache, matched)
		if len(pairs) == 0 {
			break
		}

		for _, pr := range pairs {
			if _, err := g.Contract(pr[0], pr[1]); err != nil {
				return err
			}
		}
		live -= len(pairs)
		passes++

		metrics.CoarseningPassesTotal.Inc()
		metrics.CoarseningContractionsTotal.Add(float64(len(pairs)))
	}

	return nil
}
