package model

import (
	"github.com/pkg/errors"

	"github.com/synoptic-go/synoptic/internal/errs"
)

// Shape describes whether a TraceGraph's traces are totally ordered chains
// or partially ordered DAGs.
type Shape int

const (
	// Chain traces are totally ordered: every non-terminal event has at
	// most one successor on the default relation.
	Chain Shape = iota
	// DAG traces are partially ordered, e.g. built from vector timestamps.
	DAG
)

func (s Shape) String() string {
	if s == DAG {
		return "dag"
	}
	return "chain"
}

// TraceGraph is the immutable container of EventNodes produced by the
// parser. It always owns exactly one dummy INITIAL node (a predecessor of
// every trace's first event) and one dummy TERMINAL node (a successor of
// every trace's last event). Once built it is never mutated.
type TraceGraph struct {
	Events    []*EventNode
	Initial   *EventNode
	Terminal  *EventNode
	Relations []string
	Shape     Shape

	traceIDs []string
}

// TraceIDs returns the distinct trace identifiers seen while building the
// graph, in first-seen order.
func (g *TraceGraph) TraceIDs() []string { return g.traceIDs }

// EventRecord is one parsed event occurrence, as handed to the core by the
// (out of scope) parser. It carries no partition information: partitioning
// happens after the trace graph is built.
type EventRecord struct {
	ID      string // opaque identifier, unique within the batch being built
	Type    EventType
	TraceID string
	Line    int
	Time    ITime
}

// EdgeRecord is a single direct-temporal edge between two EventRecords,
// identified by their EventRecord.ID.
type EdgeRecord struct {
	From, To string
	Relation string // empty means DefaultRelation
	Delta    ITime
}

// Builder assembles a TraceGraph from parsed records. It is the only
// supported way to construct a TraceGraph; once Build returns, the graph is
// read-only.
type Builder struct {
	shape   Shape
	byID    map[string]*EventNode
	order   []*EventNode
	traceIDs []string
	seenTrace map[string]bool
}

// NewBuilder starts a TraceGraph of the given shape.
func NewBuilder(shape Shape) *Builder {
	return &Builder{
		shape:     shape,
		byID:      make(map[string]*EventNode),
		seenTrace: make(map[string]bool),
	}
}

// ErrParse re-exports errs.ErrParse for convenience within this package.
var ErrParse = errs.ErrParse

// AddEvent registers one event occurrence.
func (b *Builder) AddEvent(r EventRecord) error {
	if r.ID == "" {
		return errors.Wrap(ErrParse, "event record missing id")
	}
	if _, dup := b.byID[r.ID]; dup {
		return errors.Wrapf(ErrParse, "duplicate event id %q", r.ID)
	}
	n := NewEventNode(r.Type, r.TraceID, r.Line, r.Time)
	b.byID[r.ID] = n
	b.order = append(b.order, n)
	if r.TraceID != "" && !b.seenTrace[r.TraceID] {
		b.seenTrace[r.TraceID] = true
		b.traceIDs = append(b.traceIDs, r.TraceID)
	}
	return nil
}

// AddEdge registers one direct-temporal edge between two already-added
// events.
func (b *Builder) AddEdge(e EdgeRecord) error {
	src, ok := b.byID[e.From]
	if !ok {
		return errors.Wrapf(ErrParse, "edge references unknown source %q", e.From)
	}
	dst, ok := b.byID[e.To]
	if !ok {
		return errors.Wrapf(ErrParse, "edge references unknown target %q", e.To)
	}
	relation := e.Relation
	if relation == "" {
		relation = DefaultRelation
	}
	delta := e.Delta
	if delta == nil {
		delta = CounterTime(1)
	}
	src.AddTransition(relation, dst, delta)
	return nil
}

// Build finalizes the graph: it wires the dummy INITIAL node to every
// trace's first event and every trace's last event to the dummy TERMINAL
// node, then freezes the result. An event with a TraceID counts as a first
// event when AddEdge gave it no incoming edge on any relation, and as a
// last event when AddEdge gave it no outgoing edge; a trace may have
// several of each.
func (b *Builder) Build() (*TraceGraph, error) {
	if len(b.order) == 0 {
		return nil, errors.Wrap(ErrParse, "no events added")
	}

	hasIncoming := make(map[*EventNode]bool)
	hasOutgoing := make(map[*EventNode]bool)
	for _, n := range b.order {
		for _, trs := range n.Transitions {
			for _, tr := range trs {
				hasOutgoing[n] = true
				hasIncoming[tr.Target] = true
			}
		}
	}

	initial := NewEventNode(Initial, "", 0, CounterTime(0))
	terminal := NewEventNode(Terminal, "", 0, CounterTime(0))

	byTrace := make(map[string][]*EventNode)
	for _, n := range b.order {
		if n.TraceID == "" {
			continue
		}
		byTrace[n.TraceID] = append(byTrace[n.TraceID], n)
	}
	for _, id := range b.traceIDs {
		events := byTrace[id]
		for _, n := range events {
			if !hasIncoming[n] {
				initial.AddTransition(DefaultRelation, n, CounterTime(1))
			}
			if !hasOutgoing[n] {
				n.AddTransition(DefaultRelation, terminal, CounterTime(1))
			}
		}
	}

	all := make([]*EventNode, 0, len(b.order)+2)
	all = append(all, initial)
	all = append(all, b.order...)
	all = append(all, terminal)

	relSet := map[string]bool{}
	for _, n := range all {
		for r := range n.Transitions {
			relSet[r] = true
		}
	}
	relations := make([]string, 0, len(relSet))
	for r := range relSet {
		relations = append(relations, r)
	}

	g := &TraceGraph{
		Events:    all,
		Initial:   initial,
		Terminal:  terminal,
		Relations: relations,
		Shape:     b.shape,
		traceIDs:  b.traceIDs,
	}
	return g, nil
}
