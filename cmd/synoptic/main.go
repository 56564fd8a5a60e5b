// Command synoptic infers a finite-state model from a log of execution
// traces: it mines temporal invariants, builds a partition graph, and
// refines/coarsens it until the model satisfies every invariant it can.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/synoptic-go/synoptic/internal/config"
	"github.com/synoptic-go/synoptic/internal/errs"
	"github.com/synoptic-go/synoptic/internal/logging"
	"github.com/synoptic-go/synoptic/internal/model"
	"github.com/synoptic-go/synoptic/pkg/export"
	"github.com/synoptic-go/synoptic/pkg/ingest"
	"github.com/synoptic-go/synoptic/pkg/synoptic"
)

var (
	inputPath    string
	configPath   string
	dotOutPath   string
	pngOutPath   string
	timeKindFlag string
	shapeFlag    string
	verbose      bool

	noRefinement bool
	noCoarsening bool
	kTailsK      int
	randomSeed   int64
)

func main() {
	root := &cobra.Command{
		Use:          "synoptic",
		Short:        "Infer a finite-state model from execution traces",
		SilenceUsage: true,
		RunE:         run,
	}

	root.Flags().StringVarP(&inputPath, "input", "i", "", "path to the newline-delimited JSON log (required)")
	root.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML configuration file")
	root.Flags().StringVar(&dotOutPath, "dot", "", "write the inferred model as Graphviz DOT to this path")
	root.Flags().StringVar(&pngOutPath, "png", "", "write the inferred model as PNG to this path")
	root.Flags().StringVar(&timeKindFlag, "time-kind", "counter", "time discriminator: counter|int|float|vector")
	root.Flags().StringVar(&shapeFlag, "shape", "chain", "trace shape: chain|dag")
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.Flags().BoolVar(&noRefinement, "no-refinement", false, "skip the refinement phase")
	root.Flags().BoolVar(&noCoarsening, "no-coarsening", false, "skip the coarsening phase")
	root.Flags().IntVar(&kTailsK, "k-tails-k", -1, "k-Tails equivalence depth (default from config)")
	root.Flags().Int64Var(&randomSeed, "random-seed", 0, "seed for deterministic counter-example ordering")
	root.MarkFlagRequired("input")

	if err := root.Execute(); err != nil {
		os.Exit(errs.ExitCode(err))
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("no-refinement") {
		cfg.NoRefinement = noRefinement
	}
	if cmd.Flags().Changed("no-coarsening") {
		cfg.NoCoarsening = noCoarsening
	}
	if cmd.Flags().Changed("k-tails-k") {
		cfg.KTailsK = kTailsK
	}
	if cmd.Flags().Changed("random-seed") {
		cfg.RandomSeed = randomSeed
	}

	logger := logging.New(verbose)
	defer logger.Sync()

	tk, err := parseTimeKind(timeKindFlag)
	if err != nil {
		return err
	}
	shape, err := parseShape(shapeFlag)
	if err != nil {
		return err
	}

	f, err := os.Open(inputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	log, err := ingest.Read(f, shape, tk)
	if err != nil {
		return err
	}

	result, err := synoptic.Infer(log, cfg, logger)
	if err != nil {
		return err
	}

	fmt.Printf("mined %d invariants, %d partitions, %d outstanding violations\n",
		result.Invariants.Len(), len(result.Partitions.Partitions()), len(result.Violations))

	if dotOutPath != "" {
		if err := os.WriteFile(dotOutPath, []byte(export.DOT(result.Partitions)), 0o644); err != nil {
			return err
		}
	}
	if pngOutPath != "" {
		out, err := os.Create(pngOutPath)
		if err != nil {
			return err
		}
		defer out.Close()
		if err := export.RenderTo(result.Partitions, export.PNG, out); err != nil {
			return err
		}
	}

	return nil
}

func parseTimeKind(s string) (ingest.TimeKind, error) {
	switch s {
	case "counter":
		return ingest.CounterTimeKind, nil
	case "int":
		return ingest.IntTimeKind, nil
	case "float":
		return ingest.FloatTimeKind, nil
	case "vector":
		return ingest.VectorTimeKind, nil
	default:
		return 0, fmt.Errorf("unknown time kind %q", s)
	}
}

func parseShape(s string) (model.Shape, error) {
	switch s {
	case "chain":
		return model.Chain, nil
	case "dag":
		return model.DAG, nil
	default:
		return 0, fmt.Errorf("unknown trace shape %q", s)
	}
}
