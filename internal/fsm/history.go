// Package fsm implements the invariant-checking engine: a worklist driver
// shared by a bit-packed fast-path checker and a history-tracing checker
// that reconstructs the shortest counter-example for a single invariant.
package fsm

import (
	"github.com/synoptic-go/synoptic/internal/model"
	"github.com/synoptic-go/synoptic/internal/partition"
)

// HistoryNode is a persistent, backward-linked record of the shortest path
// seen so far to reach a given automaton state. Nodes are shared, not
// deep-copied, across merges: a HistoryNode's Predecessor may be pointed
// to by many later nodes, which is what keeps tracing mode's memory
// bounded by the graph size rather than the number of paths explored.
type HistoryNode struct {
	Partition   *partition.Partition
	Delta       model.ITime
	Predecessor *HistoryNode
	Length      int
}

// newHistory starts a length-1 history at p.
func newHistory(p *partition.Partition) *HistoryNode {
	return &HistoryNode{Partition: p, Length: 1}
}

// extend grows h by one step into p, or returns nil if h is nil (there is
// nothing to extend in a branch that was never reached).
func extend(p *partition.Partition, h *HistoryNode, delta model.ITime) *HistoryNode {
	if h == nil {
		return nil
	}
	return &HistoryNode{Partition: p, Delta: delta, Predecessor: h, Length: h.Length + 1}
}

// preferShorter returns whichever of a, b is non-nil and shorter; ties
// (including both nil) are broken deterministically in favor of a, so
// that repeated runs over the same graph and seed produce the same
// witness.
func preferShorter(a, b *HistoryNode) *HistoryNode {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if b.Length < a.Length {
		return b
	}
	return a
}

// Path replays h forward into the ordered list of partitions it visited,
// oldest first.
func (h *HistoryNode) Path() []*partition.Partition {
	if h == nil {
		return nil
	}
	var rev []*partition.Partition
	for n := h; n != nil; n = n.Predecessor {
		rev = append(rev, n.Partition)
	}
	out := make([]*partition.Partition, len(rev))
	for i, p := range rev {
		out[len(rev)-1-i] = p
	}
	return out
}
