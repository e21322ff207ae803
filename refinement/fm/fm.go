// Package fm implements parallel localized multitry Fiduccia-Mattheyses
// refinement: each round streams every border vertex into a NUMA-style
// work queue, a fixed pool of workers run independent localized searches
// (their own vertex/block priority queues and private move logs) seeded
// from whatever vertex they pop next, and a global rollback scan picks the
// best-performing prefix across every worker's combined move history
// before the next round starts.
package fm

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/micropuma/mt-kahypar-leon/hypergraph"
	"github.com/micropuma/mt-kahypar-leon/internal/par"
	"github.com/micropuma/mt-kahypar-leon/metrics"
	"github.com/micropuma/mt-kahypar-leon/partition"
	"github.com/micropuma/mt-kahypar-leon/task"
)

// ErrGainCacheRequired mirrors labelprop's: km1 moves read s.GainCache().
var ErrGainCacheRequired = errors.New("fm: km1 objective requires an initialized gain cache")

// Config controls one Run (one or more multitry rounds).
type Config struct {
	// MultitryRounds bounds the number of rounds; 0 defaults to 1. Rounds
	// stop early once a round's rollback improvement is not positive.
	MultitryRounds int
	// SearchBudget caps the number of moves a single localized search may
	// make before it stops on its own (independent of running out of
	// positive-gain candidates). 0 means unbounded.
	SearchBudget int
	// Workers bounds the goroutines used per round; 0 selects GOMAXPROCS.
	Workers int
	// NumSockets overrides the simulated NUMA socket count used to bucket
	// the work queue; 0 selects a platform default (see numa_linux.go).
	NumSockets int
	// Shuffle randomizes each bucket's visit order every round.
	Shuffle bool
	// Seed drives Shuffle.
	Seed int64
	// Objective selects km1 (gain cache) or cut (recomputed) gains.
	Objective partition.Objective
}

// Run executes up to cfg.MultitryRounds rounds of localized FM search
// against s, returning the number of moves that survived every round's
// rollback. ctx is checked between rounds (never mid-round): once it is
// done, the current round's in-flight moves have already been applied and
// rolled back consistently, and Run returns without starting another.
func Run(ctx context.Context, g hypergraph.Graph, s *partition.State, maxPartWeight []partition.Weight, cfg Config) (int, error) {
	if cfg.Objective == partition.ObjectiveKM1 {
		if s.GainCache() == nil || !s.GainCache().Initialized() {
			return 0, ErrGainCacheRequired
		}
	}

	var rounds = cfg.MultitryRounds
	if rounds <= 0 {
		rounds = 1
	}
	var sockets = cfg.NumSockets
	if sockets <= 0 {
		sockets = defaultNumSockets()
	}
	var workers = par.Workers(cfg.Workers)

	var tracker = NewNodeTracker(g.NumNodes())
	var totalMoves int

	for round := 0; round < rounds; round++ {
		select {
		case <-ctx.Done():
			return totalMoves, nil
		default:
		}
		var roundStart = time.Now()

		tracker.Reset()
		var queue = NewWorkQueue(sockets, g.NumNodes())
		for ui := 0; ui < g.NumNodes(); ui++ {
			var u = hypergraph.HypernodeID(ui)
			if g.NodeEnabled(u) && s.IsBorderNode(u) {
				queue.Push(u, socketOf(u, sockets))
			}
		}
		if cfg.Shuffle {
			queue.Shuffle(cfg.Seed + int64(round))
		}

		var seq atomic.Int64
		var logs = make([][]Move, workers)

		var grp = task.NewGroup(ctx)
		for w := 0; w < workers; w++ {
			var w = w
			var preferredSocket = w % sockets
			grp.Queue("fm-worker", func() error {
				for {
					var u, ok = queue.TryPop(preferredSocket)
					if !ok {
						return nil
					}
					if tracker.IsClaimed(u) {
						continue
					}
					var searchID = tracker.NewSearchID()
					var moves = FindMoves(g, s, cfg.Objective, maxPartWeight, tracker, u, searchID, &seq, cfg.SearchBudget)
					logs[w] = append(logs[w], moves...)
				}
			})
		}
		grp.GoRun()
		if err := grp.Wait(); err != nil {
			return totalMoves, err
		}

		var applied int
		for _, log := range logs {
			applied += len(log)
		}
		var improvement, surviving = GlobalRollback(g, s, cfg.Objective, logs)
		totalMoves += surviving

		metrics.FMMovesAppliedTotal.Add(float64(applied))
		metrics.FMMovesRolledBackTotal.Add(float64(applied - surviving))
		metrics.FMRoundRuntimeSeconds.Observe(time.Since(roundStart).Seconds())

		if improvement <= 0 {
			break
		}
	}

	return totalMoves, nil
}
