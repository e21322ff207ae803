// Package metrics exposes the Prometheus instruments this module's phases
// record against: one package-level promauto var per instrument, the same
// pattern allocator's own metrics use.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CoarseningPassesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hyperpart_coarsening_passes_total",
		Help: "Cumulative number of coarsening passes executed.",
	})
	CoarseningContractionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hyperpart_coarsening_contractions_total",
		Help: "Cumulative number of vertex pairs contracted during coarsening.",
	})

	InitialPartitioningTrialsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hyperpart_initial_partitioning_trials_total",
		Help: "Cumulative number of initial-partitioning oracle trials run.",
	})
	InitialPartitioningRuntimeSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "hyperpart_initial_partitioning_runtime_seconds",
		Help: "Duration of one initial-partitioning Pool.Run call.",
	})

	LabelPropagationMovesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hyperpart_label_propagation_moves_total",
		Help: "Cumulative number of vertex moves accepted by label propagation.",
	})
	LabelPropagationIterationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hyperpart_label_propagation_iterations_total",
		Help: "Cumulative number of label propagation iterations executed.",
	})

	FMMovesAppliedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hyperpart_fm_moves_applied_total",
		Help: "Cumulative number of moves applied by localized FM searches, before rollback.",
	})
	FMMovesRolledBackTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hyperpart_fm_moves_rolled_back_total",
		Help: "Cumulative number of FM moves reverted by the global rollback pass.",
	})
	FMRoundRuntimeSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "hyperpart_fm_round_runtime_seconds",
		Help: "Duration of one multitry FM round, including its rollback pass.",
	})

	UncoarseningBatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hyperpart_uncoarsening_batches_total",
		Help: "Cumulative number of contraction-forest batches released during n-level uncoarsening.",
	})

	RebalanceMovesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hyperpart_rebalance_moves_total",
		Help: "Cumulative number of vertex moves applied by the post-refinement rebalancer.",
	})
	RebalanceInvocationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hyperpart_rebalance_invocations_total",
		Help: "Cumulative number of rebalancer passes over the set of overweight blocks.",
	})

	PartitionRuntimeSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "hyperpart_partition_runtime_seconds",
		Help: "Duration of one end-to-end Partition call.",
	})
	FinalCutObjective = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hyperpart_final_cut_objective",
		Help: "Cut objective of the most recently produced partition.",
	})
	FinalKM1Objective = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hyperpart_final_km1_objective",
		Help: "km1 objective of the most recently produced partition.",
	})
	FinalMaxPartWeight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hyperpart_final_max_part_weight",
		Help: "Largest block weight in the most recently produced partition.",
	})
)
