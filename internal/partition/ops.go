package partition

import (
	"fmt"

	"github.com/synoptic-go/synoptic/internal/model"
)

// Operation is a reversible mutation of a Graph. commit performs the
// mutation and returns its inverse; applying an operation and then its
// inverse restores the graph to its prior partition set.
type Operation interface {
	commit(g *Graph) Operation
	String() string
}

// Apply commits op against g, invalidates every cache (adjacency is
// recomputed lazily on next access), records op in the history, and
// returns the inverse operation the caller may apply later to rewind.
func (g *Graph) Apply(op Operation) Operation {
	inverse := op.commit(g)
	g.adjCache = make(map[*Partition]map[string][]*PartitionTransition)
	g.history = append(g.history, op)
	return inverse
}

// MultiSplit splits a partition into k >= 2 non-empty, disjoint subsets
// that together cover the partition's current events. Subsets[0] is
// retained in the original Partition object; the rest become new
// partitions. This generalizes the simple two-way Split.
type MultiSplit struct {
	Partition *Partition
	Subsets   []map[*model.EventNode]bool

	// Reuse, when non-nil, is parallel to Subsets[1:]: a non-nil entry
	// names a previously-existing Partition object to reinstate (same ID,
	// same object identity) instead of allocating a fresh one. This is set
	// only on the MultiSplit a MultiMerge's commit returns as its inverse,
	// so that a merge-then-rewind round trip hands back the exact objects
	// that were merged away rather than lookalikes with new IDs. A
	// caller-built split (NewSplit, NewMultiSplit) always leaves this nil:
	// a genuine refinement split creates brand new partitions.
	Reuse []*Partition
}

// NewSplit builds the two-way split separating subset s out of p.
func NewSplit(p *Partition, s map[*model.EventNode]bool) *MultiSplit {
	remaining := make(map[*model.EventNode]bool, p.Len())
	for e := range p.events {
		if !s[e] {
			remaining[e] = true
		}
	}
	return &MultiSplit{Partition: p, Subsets: []map[*model.EventNode]bool{remaining, copySet(s)}}
}

// NewMultiSplit builds a k-way split of p into the given subsets. It
// panics if the subsets don't exactly partition p's current events, or if
// fewer than two non-empty subsets are given; callers in this module never
// build an invalid MultiSplit, so this is an assertion rather than a
// user-facing error.
func NewMultiSplit(p *Partition, subsets ...map[*model.EventNode]bool) *MultiSplit {
	var nonEmpty []map[*model.EventNode]bool
	covered := make(map[*model.EventNode]bool)
	for _, s := range subsets {
		if len(s) == 0 {
			continue
		}
		for e := range s {
			if covered[e] {
				panic("partition: multi-split subsets overlap")
			}
			covered[e] = true
		}
		nonEmpty = append(nonEmpty, copySet(s))
	}
	if len(covered) != p.Len() {
		panic("partition: multi-split subsets do not cover the partition")
	}
	if len(nonEmpty) < 2 {
		panic("partition: multi-split needs at least two non-empty subsets")
	}
	return &MultiSplit{Partition: p, Subsets: nonEmpty}
}

// IsValid reports whether this split, as currently incorporated, still has
// at least two non-empty cells and would therefore do something.
func (m *MultiSplit) IsValid() bool { return len(m.Subsets) > 1 }

// Incorporate refines this split by intersecting it, cell by cell, with
// another split of the same partition: the result is the common
// refinement of the two partitionings, with empty cells dropped. This is
// how the refinement loop combines two candidate splits discovered for
// different counter-examples on the same partition into one operation.
func (m *MultiSplit) Incorporate(other *MultiSplit) {
	if other.Partition != m.Partition {
		panic("partition: cannot incorporate a split of a different partition")
	}
	var joined []map[*model.EventNode]bool
	for _, a := range m.Subsets {
		for _, b := range other.Subsets {
			inter := intersect(a, b)
			if len(inter) > 0 {
				joined = append(joined, inter)
			}
		}
	}
	m.Subsets = joined
}

func (m *MultiSplit) commit(g *Graph) Operation {
	if len(m.Subsets) < 2 {
		panic("partition: cannot commit an invalid multi-split")
	}
	keep := m.Subsets[0]
	m.Partition.events = copySet(keep)
	for e := range keep {
		e.PartitionID = m.Partition.ID
	}

	created := make([]*Partition, 0, len(m.Subsets)-1)
	for i, subset := range m.Subsets[1:] {
		if m.Reuse != nil && m.Reuse[i] != nil {
			p := m.Reuse[i]
			p.events = copySet(subset)
			for e := range p.events {
				e.PartitionID = p.ID
			}
			g.partitions[p.ID] = p
			created = append(created, p)
			continue
		}
		created = append(created, g.addPartition(m.Partition.EventType, subset))
	}
	return &MultiMerge{Target: m.Partition, Others: created}
}

func (m *MultiSplit) String() string {
	return fmt.Sprintf("MultiSplit(%s into %d cells)", m.Partition, len(m.Subsets))
}

// MultiMerge moves every event owned by Others into Target and removes
// Others from the graph. It is the inverse of a MultiSplit, and also
// usable directly as a coarsening step over more than two partitions.
type MultiMerge struct {
	Target *Partition
	Others []*Partition
}

func (mm *MultiMerge) commit(g *Graph) Operation {
	split := &MultiSplit{
		Partition: mm.Target,
		Subsets:   []map[*model.EventNode]bool{copySet(mm.Target.events)},
		Reuse:     make([]*Partition, len(mm.Others)),
	}
	for i, other := range mm.Others {
		moved := copySet(other.events)
		for e := range moved {
			mm.Target.events[e] = true
			e.PartitionID = mm.Target.ID
		}
		delete(g.partitions, other.ID)
		split.Subsets = append(split.Subsets, moved)
		split.Reuse[i] = other
	}
	return split
}

func (mm *MultiMerge) String() string {
	return fmt.Sprintf("MultiMerge(%s <- %d partitions)", mm.Target, len(mm.Others))
}

// Merge moves Q's events into P and removes Q from the graph. It is
// sugar over MultiMerge for the common two-partition case used by
// coarsening.
func Merge(p, q *Partition) *MultiMerge {
	return &MultiMerge{Target: p, Others: []*Partition{q}}
}

func copySet(s map[*model.EventNode]bool) map[*model.EventNode]bool {
	out := make(map[*model.EventNode]bool, len(s))
	for e := range s {
		out[e] = true
	}
	return out
}

func intersect(a, b map[*model.EventNode]bool) map[*model.EventNode]bool {
	out := make(map[*model.EventNode]bool)
	small, big := a, b
	if len(b) < len(a) {
		small, big = b, a
	}
	for e := range small {
		if big[e] {
			out[e] = true
		}
	}
	return out
}
