package model

import "fmt"

// EventType identifies a kind of event. In the distributed case it also
// carries the id of the process that emitted it, so that the same label
// observed on two processes is treated as two distinct types.
type EventType struct {
	Label     string
	PID       string
	Distinct  bool // true when PID participates in equality (distributed run)
}

// NewEventType builds a plain, non-distributed event type.
func NewEventType(label string) EventType {
	return EventType{Label: label}
}

// NewDistributedEventType builds a (label, process-id) event type.
func NewDistributedEventType(label, pid string) EventType {
	return EventType{Label: label, PID: pid, Distinct: true}
}

// Initial and Terminal are the two distinguished event types. Every
// TraceGraph carries exactly one dummy EventNode of each.
var (
	Initial  = EventType{Label: "INITIAL"}
	Terminal = EventType{Label: "TERMINAL"}
)

// IsSpecial reports whether t is one of the distinguished INITIAL/TERMINAL
// types. Mined invariants with a special operand are tautological (Initial
// reaches everything, everything reaches Terminal) and are filtered out,
// except for the explicitly reconstructed "INITIAL AFby x" invariants.
func (t EventType) IsSpecial() bool {
	return t == Initial || t == Terminal
}

// Equal reports structural equality: same label, and same pid when the type
// participates in a distributed run.
func (t EventType) Equal(o EventType) bool {
	if t.Label != o.Label {
		return false
	}
	if t.Distinct || o.Distinct {
		return t.PID == o.PID
	}
	return true
}

func (t EventType) String() string {
	if t.Distinct {
		return fmt.Sprintf("%s@%s", t.Label, t.PID)
	}
	return t.Label
}
