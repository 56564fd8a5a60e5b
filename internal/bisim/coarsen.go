package bisim

import (
	"github.com/synoptic-go/synoptic/internal/engine"
	"github.com/synoptic-go/synoptic/internal/errs"
	"github.com/synoptic-go/synoptic/internal/fsm"
	"github.com/synoptic-go/synoptic/internal/ktail"
	"github.com/synoptic-go/synoptic/internal/partition"
)

type pairKey struct{ p, q *partition.Partition }

// Coarsen merges k-equivalent partitions of g back together, one pass at a
// time, until a full pass over every ordered pair completes without a
// merge succeeding. A pair that would reintroduce a counter-example is
// rewound and blacklisted so it is never retried; this is routine and
// never propagated as an error.
func Coarsen(ctx *engine.Context, g *partition.Graph) error {
	blacklist := make(map[pairKey]bool)

	for {
		if ctx.Cancelled() {
			return errs.ErrCancelled
		}

		progressed, err := onePass(ctx, g, blacklist)
		if err != nil {
			return err
		}
		if !progressed {
			return nil
		}
	}
}

// onePass scans every ordered pair once, merging and keeping the first
// pair that both passes kEquals and doesn't reintroduce a violation. It
// returns true as soon as such a merge is applied, so the caller restarts
// the scan against the mutated graph.
func onePass(ctx *engine.Context, g *partition.Graph, blacklist map[pairKey]bool) (bool, error) {
	checker := ktail.NewChecker(g, false)
	k := ctx.Config.KTailsK

	partitions := g.Partitions()
	for _, p := range partitions {
		for _, q := range partitions {
			if p == q {
				continue
			}
			key := pairKey{p, q}
			if blacklist[key] {
				continue
			}
			if !checker.KEquals(p, q, k) {
				continue
			}

			merge := partition.Merge(p, q)
			inverse := g.Apply(merge)
			if ctx.Config.PerformExtraChecks {
				if err := g.CheckSanity(); err != nil {
					return false, err
				}
			}

			if violated := anyViolation(g); violated {
				g.Apply(inverse)
				blacklist[key] = true
				continue
			}

			return true, nil
		}
	}
	return false, nil
}

func anyViolation(g *partition.Graph) bool {
	return len(fsm.CheckAll(g, true)) > 0
}
