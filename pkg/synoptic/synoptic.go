// Package synoptic is the public entry point: given a parsed log (an
// ordered batch of event and edge records) and a run configuration, it
// mines invariants, builds the initial partition graph, and runs
// refinement and coarsening to produce the inferred model.
package synoptic

import (
	"go.uber.org/zap"

	"github.com/synoptic-go/synoptic/internal/bisim"
	"github.com/synoptic-go/synoptic/internal/closure"
	"github.com/synoptic-go/synoptic/internal/config"
	"github.com/synoptic-go/synoptic/internal/engine"
	"github.com/synoptic-go/synoptic/internal/fsm"
	"github.com/synoptic-go/synoptic/internal/invariant"
	"github.com/synoptic-go/synoptic/internal/model"
	"github.com/synoptic-go/synoptic/internal/partition"
)

// Log is the parsed input the core consumes: the shape of the traces, and
// the event/edge records a parser collaborator produced from raw text.
type Log struct {
	Shape  model.Shape
	Events []model.EventRecord
	Edges  []model.EdgeRecord
}

// Result is the inferred model: the partition graph, the mined invariant
// set, and (after refinement) a counter-example per invariant still
// violated when the configuration disabled refinement or coarsening
// couldn't fully converge.
type Result struct {
	Graph      *model.TraceGraph
	Partitions *partition.Graph
	Invariants *invariant.Set
	Violations []*fsm.CounterExamplePath
}

// Infer runs the full pipeline over log using cfg, logging progress to
// log. A nil cfg selects config.Default(); a nil logger selects zap.NewNop().
func Infer(l Log, cfg *config.Config, logger *zap.Logger) (*Result, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	builder := model.NewBuilder(l.Shape)
	for _, e := range l.Events {
		if err := builder.AddEvent(e); err != nil {
			return nil, err
		}
	}
	for _, e := range l.Edges {
		if err := builder.AddEdge(e); err != nil {
			return nil, err
		}
	}
	g, err := builder.Build()
	if err != nil {
		return nil, err
	}

	strategy := closure.Recursive
	if cfg.WarshallTransitiveClosure {
		strategy = closure.Warshall
	}
	invs := invariant.Mine(g, strategy)
	logger.Info("mined invariants", zap.Int("count", invs.Len()))

	pg := partition.ByLabel(g, invs)
	ctx := engine.New(cfg, logger)

	if !cfg.NoRefinement {
		if err := bisim.Refine(ctx, pg); err != nil {
			return nil, err
		}
	}
	if !cfg.NoCoarsening {
		if err := bisim.Coarsen(ctx, pg); err != nil {
			return nil, err
		}
	}

	return &Result{
		Graph:      g,
		Partitions: pg,
		Invariants: invs,
		Violations: fsm.CheckAll(pg, cfg.UseFSMChecker),
	}, nil
}
