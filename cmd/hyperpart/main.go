package main

import (
	"context"
	"fmt"

	"github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"

	hyperpart "github.com/micropuma/mt-kahypar-leon"
	"github.com/micropuma/mt-kahypar-leon/coarsening"
	"github.com/micropuma/mt-kahypar-leon/codecs"
	"github.com/micropuma/mt-kahypar-leon/hgraphio"
	"github.com/micropuma/mt-kahypar-leon/initialpartitioning"
	mbp "github.com/micropuma/mt-kahypar-leon/mainboilerplate"
	"github.com/micropuma/mt-kahypar-leon/partition"
	"github.com/micropuma/mt-kahypar-leon/refinement/fm"
	"github.com/micropuma/mt-kahypar-leon/refinement/labelprop"
	"github.com/micropuma/mt-kahypar-leon/uncoarsening"
)

const iniFilename = "hyperpart.ini"

// Config is the top-level configuration object of the hyperpart CLI.
var Config = new(struct {
	Partitioning struct {
		Input     string  `long:"input" required:"true" description:"Path to the input hypergraph, in hMETIS format"`
		K         int     `long:"k" required:"true" description:"Number of blocks to partition into"`
		Epsilon   float64 `long:"epsilon" default:"0.03" description:"Maximum allowed block weight imbalance"`
		Objective string  `long:"objective" default:"km1" choice:"cut" choice:"km1" description:"Partitioning objective"`
		Seed      int64   `long:"seed" default:"42" description:"Random seed"`
		Output    string  `long:"output" description:"Partition output path; defaults to the KaHyPar-standard name next to the input"`
		Codec     string  `long:"codec" default:"none" choice:"none" choice:"gzip" choice:"snappy" choice:"zstandard" description:"Partition file compression"`
	} `group:"Partitioning" namespace:"partitioning" env-namespace:"PARTITIONING"`

	Coarsening struct {
		ContractionLimitMultiplier      float64 `long:"contraction-limit-multiplier" default:"160" description:"Coarsening stops once live vertices reach this multiple of K"`
		MaxCoarseVertexWeightMultiplier float64 `long:"max-coarse-vertex-weight-multiplier" default:"4" description:"Caps a contracted vertex's weight relative to the ideal coarse vertex weight"`
		RatingCacheSize                 int     `long:"rating-cache-size" default:"4096" description:"Per-pass rating memoization cache size"`
		MaxPasses                       int     `long:"max-passes" default:"0" description:"Bounds coarsening passes (0 = unbounded)"`
	} `group:"Coarsening" namespace:"coarsening" env-namespace:"COARSENING"`

	InitialPartitioning struct {
		Trials int `long:"trials" default:"16" description:"Number of trials run per initial-partitioning strategy"`
	} `group:"InitialPartitioning" namespace:"initial-partitioning" env-namespace:"INITIAL_PARTITIONING"`

	Refinement struct {
		LabelPropMaxIterations int `long:"label-prop-max-iterations" default:"4" description:"Label propagation iteration cap per refinement pass"`
		FMMultitryRounds       int `long:"fm-multitry-rounds" default:"4" description:"Multitry FM round cap per refinement pass"`
		RefineEveryBatches     int `long:"refine-every-batches" default:"1" description:"N-level uncoarsening refines after every N released batches"`
	} `group:"Refinement" namespace:"refinement" env-namespace:"REFINEMENT"`

	Log     mbp.LogConfig `group:"Logging" namespace:"log" env-namespace:"LOG"`
	Metrics struct {
		Addr string `long:"addr" default:":9090" description:"Address to serve Prometheus metrics on"`
		Path string `long:"path" default:"/metrics" description:"HTTP path to serve Prometheus metrics at"`
	} `group:"Metrics" namespace:"metrics" env-namespace:"METRICS"`
})

type runPartition struct{}

func (runPartition) Execute(args []string) error {
	defer mbp.LogPanic()
	mbp.InitLog(Config.Log)
	mbp.ServeMetrics(Config.Metrics.Addr, Config.Metrics.Path)

	var objective = partition.ObjectiveKM1
	if Config.Partitioning.Objective == "cut" {
		objective = partition.ObjectiveCut
	}
	var codec, err = parseCodec(Config.Partitioning.Codec)
	mbp.Must(err, "parsing codec")

	log.WithField("input", Config.Partitioning.Input).Info("reading hypergraph")
	var g, readErr = hgraphio.ReadHypergraph(Config.Partitioning.Input)
	mbp.Must(readErr, "reading hypergraph")
	log.WithField("summary", hgraphio.Summary(g)).Debug("hypergraph loaded")

	var cfg = hyperpart.Config{
		K:         Config.Partitioning.K,
		Epsilon:   Config.Partitioning.Epsilon,
		Objective: objective,
		Coarsening: coarsening.Config{
			HeavyNodePenalty:                coarsening.PenaltyMultiplicative,
			Acceptance:                      coarsening.AcceptBestPreferUnmatched,
			ContractionLimitMultiplier:      Config.Coarsening.ContractionLimitMultiplier,
			MaxCoarseVertexWeightMultiplier: Config.Coarsening.MaxCoarseVertexWeightMultiplier,
			K:                               Config.Partitioning.K,
			RatingCacheSize:                 Config.Coarsening.RatingCacheSize,
			MaxPasses:                       Config.Coarsening.MaxPasses,
		},
		InitialPartitioning: initialpartitioning.Config{
			Trials: Config.InitialPartitioning.Trials,
			Seed:   Config.Partitioning.Seed,
		},
		Uncoarsening: uncoarsening.Config{
			LabelProp:          labelprop.Config{MaxIterations: Config.Refinement.LabelPropMaxIterations, Seed: Config.Partitioning.Seed},
			FM:                 fm.Config{MultitryRounds: Config.Refinement.FMMultitryRounds, Seed: Config.Partitioning.Seed},
			RefineEveryBatches: Config.Refinement.RefineEveryBatches,
		},
	}

	var result, partErr = hyperpart.Partition(context.Background(), g, cfg)
	mbp.Must(partErr, "partitioning")

	log.WithFields(log.Fields{
		"cut":           result.Cut,
		"km1":           result.KM1,
		"maxPartWeight": result.MaxPartWeight,
	}).Info("partitioning complete")

	var output = Config.Partitioning.Output
	if output == "" {
		output = hgraphio.PartitionFileName(Config.Partitioning.Input, Config.Partitioning.K, Config.Partitioning.Epsilon, Config.Partitioning.Seed, codec)
	}
	mbp.Must(hgraphio.WritePartition(output, result.Part, codec), "writing partition file")
	log.WithField("output", output).Info("wrote partition")

	return nil
}

func parseCodec(name string) (codecs.CompressionCodec, error) {
	switch name {
	case "none":
		return codecs.None, nil
	case "gzip":
		return codecs.Gzip, nil
	case "snappy":
		return codecs.Snappy, nil
	case "zstandard":
		return codecs.Zstandard, nil
	default:
		return codecs.None, fmt.Errorf("unrecognized codec %q", name)
	}
}

func main() {
	var parser = flags.NewParser(Config, flags.Default)

	_, _ = parser.AddCommand("partition", "Partition a hypergraph", `
Partition reads a hypergraph in hMETIS format, runs the multilevel
coarsen/initial-partition/uncoarsen pipeline, and writes the resulting
block assignment to a KaHyPar-style partition file.
`, &runPartition{})

	mbp.AddPrintConfigCmd(parser, iniFilename)
	mbp.MustParseConfig(parser, iniFilename)
}
