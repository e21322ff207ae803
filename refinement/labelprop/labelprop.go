// Package labelprop implements bounded-iteration, vertex-wise label
// propagation refinement: every active vertex looks for its single best
// destination block and moves there if the move strictly improves the
// objective, repeating until an iteration makes no move or a cap is hit.
package labelprop

import (
	"math/rand"
	"sort"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/micropuma/mt-kahypar-leon/hypergraph"
	"github.com/micropuma/mt-kahypar-leon/internal/par"
	"github.com/micropuma/mt-kahypar-leon/metrics"
	"github.com/micropuma/mt-kahypar-leon/partition"
)

// VertexOrder selects how each iteration's active-vertex list is ordered
// before being split across workers.
type VertexOrder int

const (
	// OrderRandom shuffles the active list every iteration.
	OrderRandom VertexOrder = iota
	// OrderIncreasingDegree visits low-degree vertices first, the cheaper
	// moves to evaluate and the ones least likely to destabilize a later,
	// higher-degree neighbor's own best move.
	OrderIncreasingDegree
)

// Config controls one Run.
type Config struct {
	// MaxIterations bounds the number of passes; 0 defaults to 1.
	MaxIterations int
	// VertexOrder selects the per-iteration visit order.
	VertexOrder VertexOrder
	// Objective selects which gain function drives move selection: km1
	// moves read s.GainCache() (which must already be enabled and
	// initialized); cut moves recompute their gain directly from
	// s.PinsInPart/s.Connectivity since there is no cut gain cache.
	Objective partition.Objective
	// Workers bounds the goroutines used per iteration; 0 selects
	// GOMAXPROCS.
	Workers int
	// Seed drives OrderRandom's shuffle.
	Seed int64
}

// ErrGainCacheRequired is returned by Run when cfg.Objective is km1 but s
// has no initialized gain cache to read moves from.
var ErrGainCacheRequired = errors.New("labelprop: km1 objective requires an initialized gain cache")

// Run executes label propagation over s, returning the total number of
// accepted moves across all iterations.
//
// Each iteration computes and applies moves for disjoint slices of the
// active-vertex list concurrently — never the same vertex from two
// goroutines at once — which is exactly the exclusivity
// partition.State.ChangeNodePart requires of its caller. Unlike the
// spec's thread-local-histogram-flushed-periodically description of part
// weight bookkeeping, partition.State already keeps part_weight exact via
// atomics on every single move, which strictly subsumes a periodic flush
// (always at least as accurate, no batching window where balance can drift
// further than one vertex's weight) — so there is no separate
// part_weight_update_frequency knob here.
func Run(g hypergraph.Graph, s *partition.State, maxPartWeight []partition.Weight, cfg Config) (int, error) {
	if cfg.Objective == partition.ObjectiveKM1 {
		if s.GainCache() == nil || !s.GainCache().Initialized() {
			return 0, ErrGainCacheRequired
		}
	}

	var maxIter = cfg.MaxIterations
	if maxIter <= 0 {
		maxIter = 1
	}
	var rng = rand.New(rand.NewSource(cfg.Seed))
	var workers = par.Workers(cfg.Workers)

	var totalMoves int
	for iter := 0; iter < maxIter; iter++ {
		metrics.LabelPropagationIterationsTotal.Inc()
		var active = activeVertices(g, s, cfg.Objective)
		orderVertices(g, active, cfg.VertexOrder, rng)

		var moved int32
		if err := par.Range(len(active), workers, func(begin, end int) error {
			for i := begin; i < end; i++ {
				if tryMove(g, s, maxPartWeight, cfg.Objective, active[i]) {
					atomic.AddInt32(&moved, 1)
				}
			}
			return nil
		}); err != nil {
			return totalMoves, err
		}

		totalMoves += int(moved)
		metrics.LabelPropagationMovesTotal.Add(float64(moved))
		if moved == 0 {
			break
		}
	}
	return totalMoves, nil
}

// activeVertices returns border vertices only for km1 (a vertex whose move
// cannot affect the objective unless some incident net already spans more
// than one block), or every enabled vertex for cut (no border filter; a
// vertex with only internal nets never has a positive cut gain, so tryMove
// finds no candidate for it).
func activeVertices(g hypergraph.Graph, s *partition.State, objective partition.Objective) []hypergraph.HypernodeID {
	var active []hypergraph.HypernodeID
	for ui := 0; ui < g.NumNodes(); ui++ {
		var u = hypergraph.HypernodeID(ui)
		if !g.NodeEnabled(u) {
			continue
		}
		if objective == partition.ObjectiveKM1 && !s.IsBorderNode(u) {
			continue
		}
		active = append(active, u)
	}
	return active
}

func orderVertices(g hypergraph.Graph, active []hypergraph.HypernodeID, order VertexOrder, rng *rand.Rand) {
	switch order {
	case OrderIncreasingDegree:
		sort.Slice(active, func(i, j int) bool {
			return g.NodeDegree(active[i]) < g.NodeDegree(active[j])
		})
	default:
		rng.Shuffle(len(active), func(i, j int) { active[i], active[j] = active[j], active[i] })
	}
}

type candidate struct {
	to   partition.ID
	gain partition.Weight
}

// tryMove finds u's best strictly-positive-gain destination and attempts
// it, falling back to the next-best candidate if the move is rejected by
// s.ChangeNodePart's weight ceiling (the candidate's gain was computed
// against u's own incident nets, not against destination capacity).
func tryMove(g hypergraph.Graph, s *partition.State, maxPartWeight []partition.Weight, objective partition.Objective, u hypergraph.HypernodeID) bool {
	var from = s.PartID(u)
	if from == partition.Unassigned {
		return false
	}

	var candidates []candidate
	for p := 0; p < s.K(); p++ {
		var to = partition.ID(p)
		if to == from {
			continue
		}
		var gain partition.Weight
		if objective == partition.ObjectiveKM1 {
			gain = s.GainCache().KM1Gain(u, to)
		} else {
			gain = CutGain(g, s, u, from, to)
		}
		if gain > 0 {
			candidates = append(candidates, candidate{to, gain})
		}
	}
	if len(candidates) == 0 {
		return false
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].gain > candidates[j].gain })

	for _, c := range candidates {
		var ceiling partition.Weight
		if maxPartWeight != nil {
			ceiling = maxPartWeight[c.to]
		}
		var ok bool
		if objective == partition.ObjectiveKM1 {
			ok = s.GainCache().ChangeNodePart(g, s, u, from, c.to, ceiling, nil)
		} else {
			ok = s.ChangeNodePart(u, from, c.to, ceiling, nil, nil)
		}
		if ok {
			return true
		}
	}
	return false
}

// CutGain predicts the cut objective's delta (positive means cut shrinks)
// of moving u from "from" to "to", without mutating s: for each incident
// net e, a block leaves e's connectivity set exactly when that block's pin
// count would drop to zero, and a block joins exactly when its pin count
// would rise to one; the cut contributes w(e) whenever connectivity is at
// least 2.
func CutGain(g hypergraph.Graph, s *partition.State, u hypergraph.HypernodeID, from, to partition.ID) partition.Weight {
	var gain partition.Weight
	for _, e := range g.IncidentNets(u) {
		if !g.EdgeEnabled(e) {
			continue
		}
		var lamBefore = s.Connectivity(e)
		var lamAfter = lamBefore
		if s.PinsInPart(e, from)-1 == 0 {
			lamAfter--
		}
		if s.PinsInPart(e, to)+1 == 1 {
			lamAfter++
		}

		var w = g.EdgeWeight(e)
		var cutBefore, cutAfter partition.Weight
		if lamBefore >= 2 {
			cutBefore = w
		}
		if lamAfter >= 2 {
			cutAfter = w
		}
		gain += cutBefore - cutAfter
	}
	return gain
}
