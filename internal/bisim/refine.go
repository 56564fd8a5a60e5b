// Package bisim is the bisimulation engine: refinement (splitting
// partitions until every mined invariant holds) and coarsening (merging
// k-equivalent partitions back together without reintroducing a
// violation).
package bisim

import (
	"github.com/pkg/errors"

	"github.com/synoptic-go/synoptic/internal/engine"
	"github.com/synoptic-go/synoptic/internal/errs"
	"github.com/synoptic-go/synoptic/internal/fsm"
	"github.com/synoptic-go/synoptic/internal/invariant"
	"github.com/synoptic-go/synoptic/internal/partition"
)

// Refine splits partitions of g until the checker finds no counter-example
// for any invariant in g.Invariants(), or returns errs.ErrInvariantsUnsatisfiable
// if it runs out of candidate splits while counter-examples remain — which
// can only happen on partially ordered (DAG-shaped) input.
func Refine(ctx *engine.Context, g *partition.Graph) error {
	for {
		if ctx.Cancelled() {
			return errs.ErrCancelled
		}

		ces := fsm.CheckAll(g, ctx.Config.UseFSMChecker)
		if len(ces) == 0 {
			return nil
		}
		engine.Shuffle(ctx, ces)

		accepted := make(map[*partition.Partition]*partition.MultiSplit)
		var acceptedOrder []*partition.Partition
		var anyCandidate bool
		var fallback *partition.MultiSplit
		satisfied := make(map[invariant.BinaryInvariant]bool)

		for _, ce := range ces {
			if satisfied[ce.Invariant] {
				continue
			}
			for _, s := range candidateSplits(ce, ctx.Config.IncomingTransitionSplit) {
				anyCandidate = true
				if fallback == nil {
					fallback = s
				}
				if !satisfiesGlobally(g, s, ce.Invariant) {
					continue
				}
				if existing, ok := accepted[s.Partition]; ok {
					existing.Incorporate(s)
				} else {
					accepted[s.Partition] = s
					acceptedOrder = append(acceptedOrder, s.Partition)
				}
				satisfied[ce.Invariant] = true
				break
			}
		}

		if !anyCandidate {
			return errors.Wrap(errs.ErrInvariantsUnsatisfiable, "no candidate split exists for an outstanding counter-example")
		}

		if len(accepted) > 0 {
			for _, p := range acceptedOrder {
				if err := apply(ctx, g, accepted[p]); err != nil {
					return err
				}
			}
		} else if err := apply(ctx, g, fallback); err != nil {
			return err
		}
	}
}

// satisfiesGlobally applies s, checks whether inv still has a
// counter-example, then rewinds — leaving g exactly as it was.
func satisfiesGlobally(g *partition.Graph, s *partition.MultiSplit, inv invariant.BinaryInvariant) bool {
	inverse := g.Apply(s)
	ce := fsm.CheckOne(g, inv)
	g.Apply(inverse)
	return ce == nil
}

func apply(ctx *engine.Context, g *partition.Graph, op partition.Operation) error {
	g.Apply(op)
	if ctx.Config.PerformExtraChecks {
		if err := g.CheckSanity(); err != nil {
			return err
		}
	}
	return nil
}
