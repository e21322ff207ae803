// Package hyperpart ties the engine phases — coarsening, initial
// partitioning, and uncoarsening/refinement — into a single Partition call,
// the way cmd/gazette's main.go wires allocator.Allocate and the broker's
// QueueTasks calls behind one task.Group.
package hyperpart

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/micropuma/mt-kahypar-leon/coarsening"
	"github.com/micropuma/mt-kahypar-leon/hypergraph"
	"github.com/micropuma/mt-kahypar-leon/initialpartitioning"
	"github.com/micropuma/mt-kahypar-leon/metrics"
	"github.com/micropuma/mt-kahypar-leon/partition"
	"github.com/micropuma/mt-kahypar-leon/task"
	"github.com/micropuma/mt-kahypar-leon/uncoarsening"
)

// Config controls one end-to-end Partition call.
type Config struct {
	// K is the number of blocks to partition into.
	K int
	// Epsilon bounds block weight imbalance: a feasible assignment keeps
	// every block's weight at or below (1+Epsilon) * ceil(totalWeight/K).
	Epsilon float64
	// Objective selects cut or km1.
	Objective partition.Objective
	// Coarsening controls coarsening.Run.
	Coarsening coarsening.Config
	// InitialPartitioning controls the oracle pool's search.
	InitialPartitioning initialpartitioning.Config
	// Uncoarsening controls the refinement applied at every uncoarsening
	// level.
	Uncoarsening uncoarsening.Config
}

// Result is the outcome of a Partition call.
type Result struct {
	// Part holds every vertex's final block, indexed by HypernodeID.
	Part []int32
	// Cut and KM1 are both objective functions evaluated against the final
	// partition, regardless of which one drove refinement decisions.
	Cut, KM1 partition.Weight
	// MaxPartWeight is the heaviest block's final weight.
	MaxPartWeight partition.Weight
}

// ErrInvalidK is returned when cfg.K is not a positive integer.
var ErrInvalidK = errors.New("hyperpart: K must be positive")

// MaxPartWeights returns the per-block weight ceiling implied by cfg.K and
// cfg.Epsilon against g's total vertex weight: ceil(totalWeight/K) scaled by
// (1+Epsilon), identical for every block (this module does not support
// per-block custom weight targets).
func MaxPartWeights(g hypergraph.Graph, k int, epsilon float64) []partition.Weight {
	var total = g.TotalWeight()
	var perfect = (int64(total) + int64(k) - 1) / int64(k)
	var ceiling = partition.Weight(float64(perfect) * (1 + epsilon))
	var out = make([]partition.Weight, k)
	for i := range out {
		out[i] = ceiling
	}
	return out
}

// Partition runs the full multilevel pipeline over g: coarsen to a
// contraction-limit-bounded hierarchy, compute an initial k-way assignment
// of the coarsest level, then uncoarsen while refining. ctx is forwarded to
// uncoarsening, where FM checks it between multitry rounds; coarsening and
// initial partitioning do not observe it.
func Partition(ctx context.Context, g *hypergraph.Static, cfg Config) (*Result, error) {
	if cfg.K <= 0 {
		return nil, ErrInvalidK
	}

	var start = time.Now()
	defer func() { metrics.PartitionRuntimeSeconds.Observe(time.Since(start).Seconds()) }()

	var maxPartWeight = MaxPartWeights(g, cfg.K, cfg.Epsilon)

	var levels []*coarsening.Level
	var coarsest *hypergraph.Static
	var coarsePart []int32
	var final *partition.State

	var grp = task.NewGroup(ctx)
	grp.Queue("partition", func() error {
		var err error
		levels, coarsest, err = coarsening.Run(g, cfg.Coarsening)
		if err != nil {
			return errors.WithMessage(err, "coarsening")
		}

		var ipCfg = cfg.InitialPartitioning
		ipCfg.Objective = cfg.Objective
		coarsePart, err = initialpartitioning.DefaultPool().Run(coarsest, cfg.K, maxPartWeight, ipCfg)
		if err != nil {
			return errors.WithMessage(err, "initial partitioning")
		}

		var ucCfg = cfg.Uncoarsening
		ucCfg.Objective = cfg.Objective
		final, err = uncoarsening.Multilevel(ctx, levels, coarsest, cfg.K, coarsePart, maxPartWeight, ucCfg)
		if err != nil {
			return errors.WithMessage(err, "uncoarsening")
		}
		return nil
	})
	grp.GoRun()
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	var part = make([]int32, g.NumNodes())
	var maxWeight partition.Weight
	for u := 0; u < g.NumNodes(); u++ {
		part[u] = int32(final.PartID(hypergraph.HypernodeID(u)))
	}
	for p := 0; p < cfg.K; p++ {
		if w := final.PartWeight(partition.ID(p)); w > maxWeight {
			maxWeight = w
		}
	}

	metrics.FinalCutObjective.Set(float64(final.Cut()))
	metrics.FinalKM1Objective.Set(float64(final.KM1()))
	metrics.FinalMaxPartWeight.Set(float64(maxWeight))

	return &Result{
		Part:          part,
		Cut:           final.Cut(),
		KM1:           final.KM1(),
		MaxPartWeight: maxWeight,
	}, nil
}

