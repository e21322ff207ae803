package coarsening

import (
	"math"

	"github.com/hashicorp/golang-lru"

	"github.com/micropuma/mt-kahypar-leon/hypergraph"
)

// degreeStats holds the heavy-node degree threshold for one pass,
// recomputed at the start of every pass (Open Question #2's decision:
// degrees shift materially across passes as contraction proceeds, so a
// threshold computed once on the finest graph would be stale almost
// immediately).
type degreeStats struct {
	threshold float64
}

func computeDegreeStats(g hypergraph.Graph) degreeStats {
	var n, sum, sumSq float64
	for u := 0; u < g.NumNodes(); u++ {
		var uid = hypergraph.HypernodeID(u)
		if !g.NodeEnabled(uid) {
			continue
		}
		var d = float64(g.NodeDegree(uid))
		n++
		sum += d
		sumSq += d * d
	}
	if n == 0 {
		return degreeStats{threshold: 0}
	}
	var mean = sum / n
	var variance = sumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	return degreeStats{threshold: mean + 5*math.Sqrt(variance)}
}

// ratingCache memoizes heavy_edge(u,v) scores keyed by the unordered pair,
// bounded to Config.RatingCacheSize entries, with a fresh cache for every
// pass — a performance aid
// only, grounded on the teacher's RouteCache (hashicorp/golang-lru wrapped
// with a small struct); correctness never depends on cache residency.
type ratingCache struct {
	cache *lru.Cache
}

func newRatingCache(size int) *ratingCache {
	if size <= 0 {
		return nil
	}
	var c, err = lru.New(size)
	if err != nil {
		panic(err.Error()) // only errors on size <= 0, already excluded
	}
	return &ratingCache{cache: c}
}

type pairKey struct{ a, b hypergraph.HypernodeID }

func pairKeyOf(u, v hypergraph.HypernodeID) pairKey {
	if u < v {
		return pairKey{u, v}
	}
	return pairKey{v, u}
}

// rate computes heavy_edge(u, v), optionally memoized.
func (rc *ratingCache) rate(g hypergraph.Graph, stats degreeStats, penalty HeavyNodePenalty, u, v hypergraph.HypernodeID) float64 {
	if rc != nil {
		if val, ok := rc.cache.Get(pairKeyOf(u, v)); ok {
			return val.(float64)
		}
	}
	var score = rawHeavyEdge(g, u, v)
	score = applyPenalty(g, stats, penalty, u, v, score)
	if rc != nil {
		rc.cache.Add(pairKeyOf(u, v), score)
	}
	return score
}

// rawHeavyEdge computes Σ_{e ∋ u,v} w(e) / (size(e)−1) by scanning u's
// (shorter, in expectation) incident net list and checking pin membership
// of v via the net's (typically small) pin list.
func rawHeavyEdge(g hypergraph.Graph, u, v hypergraph.HypernodeID) float64 {
	var score float64
	for _, e := range g.IncidentNets(u) {
		if !g.EdgeEnabled(e) {
			continue
		}
		var size = g.EdgeSize(e)
		if size < 2 {
			continue
		}
		for _, p := range g.Pins(e) {
			if p == v {
				score += float64(g.EdgeWeight(e)) / float64(size-1)
				break
			}
		}
	}
	return score
}

func applyPenalty(g hypergraph.Graph, stats degreeStats, penalty HeavyNodePenalty, u, v hypergraph.HypernodeID, score float64) float64 {
	if stats.threshold <= 0 || score == 0 {
		return score
	}
	var du, dv = float64(g.NodeDegree(u)), float64(g.NodeDegree(v))

	switch penalty {
	case PenaltyMultiplicative:
		if du > stats.threshold || dv > stats.threshold {
			var factor = (du * dv) / (stats.threshold * stats.threshold)
			if factor < 1 {
				factor = 1
			}
			return score / factor
		}
	case PenaltyEdgeFrequency:
		var avg = (du + dv) / (2 * stats.threshold)
		if avg > 1 {
			return score / avg
		}
	}
	return score
}
