// Package initialpartitioning computes a valid k-way assignment of a
// (typically coarsest-level) hypergraph's vertices, internally picking among
// a small pool of flat strategies rather than exposing any one of them as
// the only option — mirroring the way gazette's allocator.go picks among
// several balancing passes (current-assignment-preserving, then uniform,
// then unconstrained) rather than committing to a single fixed algorithm.
package initialpartitioning

import (
	"math/rand"
	"time"

	"github.com/pkg/errors"

	"github.com/micropuma/mt-kahypar-leon/hypergraph"
	"github.com/micropuma/mt-kahypar-leon/metrics"
	"github.com/micropuma/mt-kahypar-leon/partition"
)

// ErrInfeasible is returned by an Oracle (or the Pool) when no assignment
// respecting maxPartWeight could be produced.
var ErrInfeasible = errors.New("initialpartitioning: no feasible assignment found")

// Oracle returns some valid k-way assignment of g's enabled vertices, each
// entry in the returned slice (indexed by HypernodeID) holding a block in
// [0, k). Disabled vertex slots are left at partition.Unassigned. seed
// parameterizes any internal randomness so a Pool can run an Oracle
// multiple times with varied outcomes.
type Oracle interface {
	Name() string
	Run(g hypergraph.Graph, k int, maxPartWeight []hypergraph.Weight, seed int64) ([]int32, error)
}

// Config controls a Pool's search over its Oracle strategies.
type Config struct {
	// Trials is the number of times each Oracle is invoked (with a distinct
	// seed derived from Config.Seed); the lowest-objective result wins.
	Trials int
	// Seed is the base seed for trial variation. Reusing the same Seed
	// across runs reproduces the same search.
	Seed int64
	// Objective selects which of partition.State's objective functions
	// scores a candidate assignment.
	Objective partition.Objective
}

// Pool runs every registered Oracle for cfg.Trials each, scoring every
// resulting assignment by building a throwaway partition.State over it, and
// returns the best-scoring assignment found.
type Pool struct {
	oracles []Oracle
}

// NewPool returns a Pool over the given oracles, in the order given.
func NewPool(oracles ...Oracle) *Pool {
	return &Pool{oracles: oracles}
}

// DefaultPool returns the standard pool: a greedy BFS-growing strategy and
// an independent flow-balanced strategy that starts from its own bin
// packing.
func DefaultPool() *Pool {
	return NewPool(&GreedyBFS{}, &FlowBalance{})
}

// Run tries every oracle in the pool cfg.Trials times and returns the
// lowest-objective feasible assignment found, or ErrInfeasible if none of
// them produced one.
func (p *Pool) Run(g hypergraph.Graph, k int, maxPartWeight []hypergraph.Weight, cfg Config) ([]int32, error) {
	var start = time.Now()
	defer func() { metrics.InitialPartitioningRuntimeSeconds.Observe(time.Since(start).Seconds()) }()

	if cfg.Trials < 1 {
		cfg.Trials = 1
	}
	var rng = rand.New(rand.NewSource(cfg.Seed))

	var bestAssignment []int32
	var bestScore partition.Weight
	var found bool

	for _, oracle := range p.oracles {
		for t := 0; t < cfg.Trials; t++ {
			var seed = rng.Int63()
			metrics.InitialPartitioningTrialsTotal.Inc()
			var assignment, err = oracle.Run(g, k, maxPartWeight, seed)
			if err != nil {
				continue
			}
			var score, ok = scoreAssignment(g, k, assignment, maxPartWeight, cfg.Objective)
			if !ok {
				continue
			}
			if !found || score < bestScore {
				bestAssignment, bestScore, found = assignment, score, true
			}
		}
	}

	if !found {
		return nil, ErrInfeasible
	}
	return bestAssignment, nil
}

// scoreAssignment stages assignment into a throwaway partition.State and
// evaluates cfg.Objective. ok is false if assignment leaves any enabled
// vertex unassigned or pushes any block over maxPartWeight.
func scoreAssignment(g hypergraph.Graph, k int, assignment []int32, maxPartWeight []hypergraph.Weight, objective partition.Objective) (partition.Weight, bool) {
	var s = partition.New(g, k)
	for u := 0; u < g.NumNodes(); u++ {
		var uid = hypergraph.HypernodeID(u)
		if !g.NodeEnabled(uid) {
			continue
		}
		if assignment[u] < 0 {
			return 0, false
		}
		if err := s.SetOnlyNodePart(uid, partition.ID(assignment[u])); err != nil {
			return 0, false
		}
	}
	if err := s.InitializePartition(); err != nil {
		return 0, false
	}
	if maxPartWeight != nil {
		for p := 0; p < k; p++ {
			if s.PartWeight(partition.ID(p)) > maxPartWeight[p] {
				return 0, false
			}
		}
	}
	if objective == partition.ObjectiveCut {
		return s.Cut(), true
	}
	return s.KM1(), true
}
