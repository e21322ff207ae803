// Package uncoarsening drives the two uncontraction strategies that mirror
// coarsening's own two modes: Multilevel walks a coarsening.Level hierarchy
// from coarsest to finest, projecting and refining a fresh partition.State
// at each level; NLevel walks a hypergraph.Dynamic's contraction forest one
// reversible batch at a time, restoring each Memento in place and refining
// the live state periodically rather than rebuilding it from scratch.
package uncoarsening

import (
	"context"

	"github.com/micropuma/mt-kahypar-leon/coarsening"
	"github.com/micropuma/mt-kahypar-leon/hypergraph"
	"github.com/micropuma/mt-kahypar-leon/internal/par"
	"github.com/micropuma/mt-kahypar-leon/metrics"
	"github.com/micropuma/mt-kahypar-leon/partition"
	"github.com/micropuma/mt-kahypar-leon/refinement/fm"
	"github.com/micropuma/mt-kahypar-leon/refinement/labelprop"
)

// Config controls the refinement applied at every level (Multilevel) or
// every refined batch (NLevel).
type Config struct {
	// Objective selects km1 (gain cache, enabled automatically here) or
	// cut.
	Objective partition.Objective
	// LabelProp is run first at every refinement point.
	LabelProp labelprop.Config
	// FM runs after LabelProp at every refinement point.
	FM fm.Config
	// RefineEveryBatches (NLevel only) runs a refinement pass after every
	// N uncontracted batches rather than every single one, since a batch
	// is typically small and full-graph refinement is not. 0 means every
	// batch. The final batch always refines regardless of this setting,
	// mirroring the source's guarantee that the finest level is never
	// left unrefined.
	RefineEveryBatches int
}

// refine runs one LabelProp pass followed by one FM pass against s,
// returning the combined move count. ctx is forwarded to FM, which checks
// it between multitry rounds; LabelProp has no comparable internal loop
// boundary to check it at; a caller that needs level-granularity
// cancellation should check ctx itself between refine calls.
func refine(ctx context.Context, g hypergraph.Graph, s *partition.State, maxPartWeight []partition.Weight, cfg Config) (int, error) {
	var total int

	var lpCfg = cfg.LabelProp
	lpCfg.Objective = cfg.Objective
	var n, err = labelprop.Run(g, s, maxPartWeight, lpCfg)
	if err != nil {
		return total, err
	}
	total += n

	var fmCfg = cfg.FM
	fmCfg.Objective = cfg.Objective
	n, err = fm.Run(ctx, g, s, maxPartWeight, fmCfg)
	if err != nil {
		return total, err
	}
	total += n

	return total, nil
}

// buildAndRefine stages part (indexed by g's vertex space, Unassigned-free
// for every enabled vertex) into a fresh partition.State bound to g,
// initializes a gain cache for the km1 objective, and runs one refine pass.
func buildAndRefine(ctx context.Context, g hypergraph.Graph, k int, part []int32, maxPartWeight []partition.Weight, cfg Config) (*partition.State, error) {
	var s = partition.New(g, k)
	for u := 0; u < g.NumNodes(); u++ {
		var uid = hypergraph.HypernodeID(u)
		if !g.NodeEnabled(uid) {
			continue
		}
		if err := s.SetOnlyNodePart(uid, partition.ID(part[u])); err != nil {
			return nil, err
		}
	}
	if err := s.InitializePartition(); err != nil {
		return nil, err
	}
	if cfg.Objective == partition.ObjectiveKM1 {
		s.EnableGainCache()
		if err := s.GainCache().Init(g, s); err != nil {
			return nil, err
		}
	}
	if _, err := refine(ctx, g, s, maxPartWeight, cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// Multilevel uncoarsens a coarsening.Run hierarchy: coarsePart is a k-way
// assignment of coarsest's vertices (as produced by initialpartitioning),
// and levels is the same slice coarsening.Run returned alongside coarsest.
// It returns the refined partition.State bound to the original (finest)
// graph, levels[0].Fine, or to coarsest itself when levels is empty (no
// coarsening occurred). Only the finest level's refine is followed by
// Rebalance; an intermediate level left imbalanced is still eligible for
// moves during its own refine at the next level up, so rebalancing there
// would just be redone.
func Multilevel(ctx context.Context, levels []*coarsening.Level, coarsest *hypergraph.Static, k int, coarsePart []int32, maxPartWeight []partition.Weight, cfg Config) (*partition.State, error) {
	if len(levels) == 0 {
		var s, err = buildAndRefine(ctx, coarsest, k, coarsePart, maxPartWeight, cfg)
		if err != nil {
			return nil, err
		}
		if _, err := Rebalance(coarsest, s, maxPartWeight, cfg.Objective); err != nil {
			return nil, err
		}
		return s, nil
	}

	var part = coarsePart
	for i := len(levels) - 1; i >= 0; i-- {
		var level = levels[i]
		part = coarsening.Project(level, part)

		var s, err = buildAndRefine(ctx, level.Fine, k, part, maxPartWeight, cfg)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			if _, err := Rebalance(level.Fine, s, maxPartWeight, cfg.Objective); err != nil {
				return nil, err
			}
			return s, nil
		}

		part = make([]int32, level.Fine.NumNodes())
		for u := range part {
			part[u] = int32(s.PartID(hypergraph.HypernodeID(u)))
		}
	}
	panic("uncoarsening: unreachable")
}

// NLevel uncoarsens g (already coarsened in place by coarsening.RunNLevel)
// one reversible batch at a time: initialPart is a k-way assignment of g's
// currently-enabled (coarsest) vertices. Every batch returned by
// g.Forest().Batches() is released by uncontracting its vertex-disjoint
// Mementos in parallel (structural restoration via g.Uncontract, then
// partition-state restoration via s.Uncontract), and a refine pass runs
// after every cfg.RefineEveryBatches batches and unconditionally after the
// last one; Rebalance runs once, immediately after that final refine. ctx
// is checked between batches; once it is done, the partially-uncontracted
// state (always internally consistent, since a batch's Mementos are fully
// applied or not started) is returned without error rather than
// uncontracting the remaining batches, and without rebalancing (ctx is
// already past its deadline).
func NLevel(ctx context.Context, g *hypergraph.Dynamic, k int, initialPart []int32, maxPartWeight []partition.Weight, cfg Config) (*partition.State, error) {
	var s, err = buildAndRefine(ctx, g, k, initialPart, maxPartWeight, cfg)
	if err != nil {
		return nil, err
	}

	var everyN = cfg.RefineEveryBatches
	if everyN <= 0 {
		everyN = 1
	}

	var batches = g.Forest().Batches()
	for bi, batch := range batches {
		select {
		case <-ctx.Done():
			return s, nil
		default:
		}

		if err := par.ForEach(len(batch), 0, func(i int) error {
			var m = batch[i]
			g.Uncontract(m)
			s.Uncontract(g, m)
			return nil
		}); err != nil {
			return nil, err
		}
		metrics.UncoarseningBatchesTotal.Inc()

		var last = bi == len(batches)-1
		if last || (bi+1)%everyN == 0 {
			if _, err := refine(ctx, g, s, maxPartWeight, cfg); err != nil {
				return nil, err
			}
			if last {
				if _, err := Rebalance(g, s, maxPartWeight, cfg.Objective); err != nil {
					return nil, err
				}
			}
		}
	}

	if len(batches) == 0 {
		if _, err := Rebalance(g, s, maxPartWeight, cfg.Objective); err != nil {
			return nil, err
		}
	}

	return s, nil
}
