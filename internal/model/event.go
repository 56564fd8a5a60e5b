package model

// DefaultRelation is the relation name used for the temporal "happens
// before" edges that every parser produces; additional relations may
// coexist on the same graph.
const DefaultRelation = "t"

// noPartition is the sentinel PartitionID of an EventNode that has not yet
// been assigned to a Partition.
const noPartition = -1

// EventTransition is a directed, relation-labelled edge from one EventNode
// to another. The source is implicit: it is whichever EventNode holds the
// transition in its Transitions map.
type EventTransition struct {
	Target   *EventNode
	Relation string
	Delta    ITime
}

// EventNode is a single observed event occurrence. EventNodes are created
// once, at parse time, and are never mutated except for the PartitionID
// back-reference, which the partition package updates as partitions split
// and merge; the trace graph itself never changes shape after construction.
type EventNode struct {
	Type    EventType
	TraceID string
	Line    int
	Time    ITime

	// Transitions holds outgoing edges keyed by relation name.
	Transitions map[string][]*EventTransition

	// PartitionID is a weak back-reference into whatever Partition arena
	// currently owns this node; -1 means unassigned. It is exported so the
	// partition package (which imports model, not the reverse) can update
	// it directly without EventNode needing to know Partition exists.
	PartitionID int
}

// NewEventNode creates an EventNode with no outgoing transitions and no
// partition assignment.
func NewEventNode(t EventType, traceID string, line int, ts ITime) *EventNode {
	return &EventNode{
		Type:        t,
		TraceID:     traceID,
		Line:        line,
		Time:        ts,
		Transitions: make(map[string][]*EventTransition),
		PartitionID: noPartition,
	}
}

// IsInitial reports whether this is the distinguished dummy INITIAL node.
func (e *EventNode) IsInitial() bool { return e.Type == Initial }

// IsTerminal reports whether this is the distinguished dummy TERMINAL node.
func (e *EventNode) IsTerminal() bool { return e.Type == Terminal }

// AddTransition records an outgoing edge on the given relation.
func (e *EventNode) AddTransition(relation string, target *EventNode, delta ITime) {
	e.Transitions[relation] = append(e.Transitions[relation], &EventTransition{
		Target:   target,
		Relation: relation,
		Delta:    delta,
	})
}

// TransitionsOn returns the outgoing transitions on the given relation, or
// nil if there are none.
func (e *EventNode) TransitionsOn(relation string) []*EventTransition {
	return e.Transitions[relation]
}

// TransitionTo returns the transition (if any) from e to target on the
// given relation.
func (e *EventNode) TransitionTo(target *EventNode, relation string) *EventTransition {
	for _, tr := range e.Transitions[relation] {
		if tr.Target == target {
			return tr
		}
	}
	return nil
}
