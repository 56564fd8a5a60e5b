// Package partition implements the mutable partition graph: the coarse
// abstraction of a trace graph that the bisimulation engine refines and
// coarsens until it satisfies every mined invariant.
package partition

import (
	"sort"

	"github.com/synoptic-go/synoptic/internal/model"
)

// Partition is a non-empty set of EventNodes that all share one event
// type. It is a node of the PartitionGraph.
type Partition struct {
	ID        int
	EventType model.EventType
	events    map[*model.EventNode]bool
}

func newPartition(id int, t model.EventType, events map[*model.EventNode]bool) *Partition {
	return &Partition{ID: id, EventType: t, events: events}
}

// Len returns the number of event nodes owned by this partition.
func (p *Partition) Len() int { return len(p.events) }

// Contains reports whether e currently belongs to this partition.
func (p *Partition) Contains(e *model.EventNode) bool { return p.events[e] }

// Events returns the event nodes owned by this partition, in a stable
// (trace-then-line-number) order so that callers get deterministic
// iteration without depending on map order.
func (p *Partition) Events() []*model.EventNode {
	out := make([]*model.EventNode, 0, len(p.events))
	for e := range p.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TraceID != out[j].TraceID {
			return out[i].TraceID < out[j].TraceID
		}
		return out[i].Line < out[j].Line
	})
	return out
}

func (p *Partition) String() string { return p.EventType.String() }
