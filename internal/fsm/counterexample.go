package fsm

import (
	"github.com/synoptic-go/synoptic/internal/invariant"
	"github.com/synoptic-go/synoptic/internal/model"
	"github.com/synoptic-go/synoptic/internal/partition"
)

// CounterExamplePath is the shortest witness, found by tracing mode, that a
// single invariant is violated: the sequence of partitions visited from an
// initial partition to an accepting one where the invariant's automaton is
// in a failing state, plus the accumulated time delta along that path.
type CounterExamplePath struct {
	Invariant invariant.BinaryInvariant
	Path      []*partition.Partition
	Delta     model.ITime
}

// accumulate sums every Delta recorded along h, seeding the accumulator
// from the kind of the first non-nil delta seen.
func accumulate(h *HistoryNode) model.ITime {
	var acc model.ITime
	for n := h; n != nil; n = n.Predecessor {
		if n.Delta == nil {
			continue
		}
		if acc == nil {
			acc = n.Delta.Zero()
		}
		acc = acc.IncrBy(n.Delta)
	}
	if acc == nil {
		acc = model.CounterTime(0)
	}
	return acc
}
