package partition

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/synoptic-go/synoptic/internal/invariant"
	"github.com/synoptic-go/synoptic/internal/model"
)

// ErrInconsistent is wrapped by every error checkSanity produces: the
// partitions no longer form a valid cover of the source trace graph's
// events. It signals an InternalInconsistency per the core's error model.
var ErrInconsistent = errors.New("partition graph inconsistent")

// PartitionTransition is an induced, partition-level edge: partition P has
// a transition to partition Q on relation r iff some event in P has an
// r-transition to some event in Q. Deltas aggregates every event-level
// delta that contributed to this induced edge.
type PartitionTransition struct {
	Target *Partition
	Deltas []model.ITime
}

// Graph is the mutable set of Partitions built from a source TraceGraph.
// All mutation happens through Apply, which commits an Operation and
// returns its inverse; nothing else may change the partition set.
type Graph struct {
	source     *model.TraceGraph
	partitions map[int]*Partition
	nextID     int

	invariants *invariant.Set

	initialEvents map[*model.EventNode]bool // one-hop successors of the dummy INITIAL node

	adjCache map[*Partition]map[string][]*PartitionTransition

	history []Operation
}

// ByLabel groups g's events by event type and creates one partition per
// group; the dummy INITIAL and TERMINAL nodes each get their own
// singleton partition, same as every other type (they happen to have
// unique types already, so no special-casing is needed beyond that).
func ByLabel(source *model.TraceGraph, invariants *invariant.Set) *Graph {
	groups := make(map[model.EventType]map[*model.EventNode]bool)
	var order []model.EventType
	for _, e := range source.Events {
		if _, ok := groups[e.Type]; !ok {
			groups[e.Type] = make(map[*model.EventNode]bool)
			order = append(order, e.Type)
		}
		groups[e.Type][e] = true
	}

	g := newGraph(source, invariants)
	for _, t := range order {
		g.addPartition(t, groups[t])
	}
	return g
}

// Separately puts every event node in its own singleton partition; useful
// when only coarsening is to be performed.
func Separately(source *model.TraceGraph, invariants *invariant.Set) *Graph {
	g := newGraph(source, invariants)
	for _, e := range source.Events {
		g.addPartition(e.Type, map[*model.EventNode]bool{e: true})
	}
	return g
}

func newGraph(source *model.TraceGraph, invariants *invariant.Set) *Graph {
	initialEvents := make(map[*model.EventNode]bool)
	for _, tr := range source.Initial.TransitionsOn(model.DefaultRelation) {
		initialEvents[tr.Target] = true
	}
	return &Graph{
		source:        source,
		partitions:    make(map[int]*Partition),
		invariants:    invariants,
		initialEvents: initialEvents,
		adjCache:      make(map[*Partition]map[string][]*PartitionTransition),
	}
}

func (g *Graph) addPartition(t model.EventType, events map[*model.EventNode]bool) *Partition {
	id := g.nextID
	g.nextID++
	p := newPartition(id, t, events)
	for e := range events {
		e.PartitionID = id
	}
	g.partitions[id] = p
	return p
}

// Invariants returns the invariant set this graph was built to satisfy.
func (g *Graph) Invariants() *invariant.Set { return g.invariants }

// Source returns the read-only trace graph this partition graph was built
// from.
func (g *Graph) Source() *model.TraceGraph { return g.source }

// Partitions returns every partition currently in the graph, in ascending
// ID order (oldest first; new partitions from splits sort after their
// parent).
func (g *Graph) Partitions() []*Partition {
	out := make([]*Partition, 0, len(g.partitions))
	for _, p := range g.partitions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PartitionOf returns the partition currently owning e.
func (g *Graph) PartitionOf(e *model.EventNode) *Partition {
	return g.partitions[e.PartitionID]
}

// IsInitial reports whether p contains an event that is a direct successor
// of the dummy INITIAL node.
func (g *Graph) IsInitial(p *Partition) bool {
	for e := range p.events {
		if g.initialEvents[e] {
			return true
		}
	}
	return false
}

// IsAccept reports whether p contains an event with a transition to the
// dummy TERMINAL node.
func (g *Graph) IsAccept(p *Partition) bool {
	for e := range p.events {
		if e.TransitionTo(g.source.Terminal, model.DefaultRelation) != nil {
			return true
		}
	}
	return false
}

// Adjacent returns p's induced successors on relation, computing and
// caching them on first access. The cache is invalidated wholesale by
// Apply, so callers never observe a stale entry.
func (g *Graph) Adjacent(p *Partition, relation string) []*PartitionTransition {
	byRelation, ok := g.adjCache[p]
	if !ok {
		byRelation = make(map[string][]*PartitionTransition)
		g.adjCache[p] = byRelation
	}
	if cached, ok := byRelation[relation]; ok {
		return cached
	}

	order := []*Partition{}
	byTarget := make(map[*Partition]*PartitionTransition)
	for e := range p.events {
		for _, tr := range e.TransitionsOn(relation) {
			target := g.partitions[tr.Target.PartitionID]
			if target == nil {
				continue
			}
			pt, ok := byTarget[target]
			if !ok {
				pt = &PartitionTransition{Target: target}
				byTarget[target] = pt
				order = append(order, target)
			}
			pt.Deltas = append(pt.Deltas, tr.Delta)
		}
	}

	out := make([]*PartitionTransition, 0, len(order))
	for _, t := range order {
		out = append(out, byTarget[t])
	}
	byRelation[relation] = out
	return out
}

// checkSanity validates the model invariants from the spec's data model:
// every partition is non-empty, and the union of partition events equals
// the full set of events in the source trace graph, with no overlap.
func (g *Graph) checkSanity() error {
	seen := make(map[*model.EventNode]bool)
	for _, p := range g.partitions {
		if p.Len() == 0 {
			return errors.Wrapf(ErrInconsistent, "partition %d (%s) is empty", p.ID, p.EventType)
		}
		for e := range p.events {
			if seen[e] {
				return errors.Wrapf(ErrInconsistent, "event on trace %s line %d owned by more than one partition", e.TraceID, e.Line)
			}
			seen[e] = true
		}
	}
	if len(seen) != len(g.source.Events) {
		return errors.Wrapf(ErrInconsistent, "partition cover has %d events, source graph has %d", len(seen), len(g.source.Events))
	}
	return nil
}

// CheckSanity runs checkSanity; exported so callers can opt into the
// perform-extra-checks configuration flag after every operation.
func (g *Graph) CheckSanity() error { return g.checkSanity() }

// History returns the operations applied so far, oldest first.
func (g *Graph) History() []Operation { return g.history }
