package fsm

import (
	"github.com/synoptic-go/synoptic/internal/invariant"
	"github.com/synoptic-go/synoptic/internal/model"
	"github.com/synoptic-go/synoptic/internal/partition"
)

// TracingStateSet is the per-node automaton state for a single invariant,
// run through the generic worklist driver. Implementations carry a
// HistoryNode on each live branch so that, once a violation surfaces at an
// accepting partition, the shortest path that produced it can be replayed.
type TracingStateSet interface {
	// SetInitial seeds the state for a partition that is a direct successor
	// of the dummy INITIAL node.
	SetInitial(p *partition.Partition)
	// Transition advances the state by entering p.
	Transition(p *partition.Partition, delta model.ITime)
	// IsSubsetOf reports whether every branch alive in this state set is
	// also alive (with a history of equal or shorter length) in other.
	IsSubsetOf(other TracingStateSet) bool
	// MergeInto folds this state set into other in place, keeping the
	// shorter history on every branch that is alive in both.
	MergeInto(other TracingStateSet)
	// Copy returns an independent copy of this state set.
	Copy() TracingStateSet
	// FailWitness returns the history of the violating branch, or nil if
	// this state is not currently in a failing state.
	FailWitness() *HistoryNode
}

// NewTracingStateSet constructs the automaton for inv's kind.
func NewTracingStateSet(inv invariant.BinaryInvariant) TracingStateSet {
	switch inv.Kind {
	case invariant.AlwaysFollowedBy:
		return &afbySet{a: inv.A, b: inv.B}
	case invariant.NeverFollowedBy:
		return &nfbySet{a: inv.A, b: inv.B}
	case invariant.AlwaysPrecedes:
		return &apSet{a: inv.A, b: inv.B}
	default:
		panic("fsm: unknown invariant kind")
	}
}

// afbySet tracks AlwaysFollowedBy(a, b): states {notYetSeenA, sawA}. FAIL is
// not a distinct branch here: it is exactly "sawA is alive when an
// accepting partition is entered", since there's nothing further to do
// once that's observed along a path that is about to end.
type afbySet struct {
	a, b        model.EventType
	notYetSeenA *HistoryNode
	sawA        *HistoryNode
}

func (s *afbySet) SetInitial(p *partition.Partition) {
	if p.EventType.Equal(s.a) {
		s.sawA = newHistory(p)
		s.notYetSeenA = nil
	} else {
		s.notYetSeenA = newHistory(p)
		s.sawA = nil
	}
}

func (s *afbySet) Transition(p *partition.Partition, delta model.ITime) {
	if p.EventType.Equal(s.b) {
		s.notYetSeenA = preferShorter(s.notYetSeenA, s.sawA)
		s.sawA = nil
	}
	if p.EventType.Equal(s.a) {
		s.sawA = preferShorter(s.notYetSeenA, s.sawA)
		s.notYetSeenA = nil
	}
	s.notYetSeenA = extend(p, s.notYetSeenA, delta)
	s.sawA = extend(p, s.sawA, delta)
}

func (s *afbySet) IsSubsetOf(other TracingStateSet) bool {
	o := other.(*afbySet)
	return subsetBranch(s.notYetSeenA, o.notYetSeenA) && subsetBranch(s.sawA, o.sawA)
}

func (s *afbySet) MergeInto(other TracingStateSet) {
	o := other.(*afbySet)
	o.notYetSeenA = preferShorter(o.notYetSeenA, s.notYetSeenA)
	o.sawA = preferShorter(o.sawA, s.sawA)
}

func (s *afbySet) Copy() TracingStateSet {
	cp := *s
	return &cp
}

func (s *afbySet) FailWitness() *HistoryNode { return s.sawA }

// nfbySet tracks NeverFollowedBy(a, b): states {notYetSeenA, sawA, failed}.
// failed is absorbing: once a b follows an a, the violation persists to
// every later partition regardless of what else happens on that path.
type nfbySet struct {
	a, b        model.EventType
	notYetSeenA *HistoryNode
	sawA        *HistoryNode
	failed      *HistoryNode
}

func (s *nfbySet) SetInitial(p *partition.Partition) {
	if p.EventType.Equal(s.a) {
		s.sawA = newHistory(p)
	} else {
		s.notYetSeenA = newHistory(p)
	}
}

func (s *nfbySet) Transition(p *partition.Partition, delta model.ITime) {
	if p.EventType.Equal(s.b) && s.sawA != nil {
		s.failed = preferShorter(s.failed, s.sawA)
	}
	if p.EventType.Equal(s.a) {
		s.sawA = preferShorter(s.notYetSeenA, s.sawA)
		s.notYetSeenA = nil
	}
	s.notYetSeenA = extend(p, s.notYetSeenA, delta)
	s.sawA = extend(p, s.sawA, delta)
	s.failed = extend(p, s.failed, delta)
}

func (s *nfbySet) IsSubsetOf(other TracingStateSet) bool {
	o := other.(*nfbySet)
	return subsetBranch(s.notYetSeenA, o.notYetSeenA) &&
		subsetBranch(s.sawA, o.sawA) &&
		subsetBranch(s.failed, o.failed)
}

func (s *nfbySet) MergeInto(other TracingStateSet) {
	o := other.(*nfbySet)
	o.notYetSeenA = preferShorter(o.notYetSeenA, s.notYetSeenA)
	o.sawA = preferShorter(o.sawA, s.sawA)
	o.failed = preferShorter(o.failed, s.failed)
}

func (s *nfbySet) Copy() TracingStateSet {
	cp := *s
	return &cp
}

func (s *nfbySet) FailWitness() *HistoryNode { return s.failed }

// apSet tracks AlwaysPrecedes(a, b) — every b is preceded by some a — as
// states {notYetSeenA, sawA, failed}. failed is absorbing: an unguarded b
// is a permanent violation of this path regardless of any a seen later.
type apSet struct {
	a, b        model.EventType
	notYetSeenA *HistoryNode
	sawA        *HistoryNode
	failed      *HistoryNode
}

func (s *apSet) SetInitial(p *partition.Partition) {
	switch {
	case p.EventType.Equal(s.a):
		s.sawA = newHistory(p)
	case p.EventType.Equal(s.b):
		s.failed = newHistory(p)
	default:
		s.notYetSeenA = newHistory(p)
	}
}

func (s *apSet) Transition(p *partition.Partition, delta model.ITime) {
	if p.EventType.Equal(s.a) {
		s.sawA = preferShorter(s.notYetSeenA, s.sawA)
		s.notYetSeenA = nil
	}
	if p.EventType.Equal(s.b) && s.notYetSeenA != nil {
		s.failed = preferShorter(s.failed, s.notYetSeenA)
		s.notYetSeenA = nil
	}
	s.notYetSeenA = extend(p, s.notYetSeenA, delta)
	s.sawA = extend(p, s.sawA, delta)
	s.failed = extend(p, s.failed, delta)
}

func (s *apSet) IsSubsetOf(other TracingStateSet) bool {
	o := other.(*apSet)
	return subsetBranch(s.notYetSeenA, o.notYetSeenA) &&
		subsetBranch(s.sawA, o.sawA) &&
		subsetBranch(s.failed, o.failed)
}

func (s *apSet) MergeInto(other TracingStateSet) {
	o := other.(*apSet)
	o.notYetSeenA = preferShorter(o.notYetSeenA, s.notYetSeenA)
	o.sawA = preferShorter(o.sawA, s.sawA)
	o.failed = preferShorter(o.failed, s.failed)
}

func (s *apSet) Copy() TracingStateSet {
	cp := *s
	return &cp
}

func (s *apSet) FailWitness() *HistoryNode { return s.failed }

// subsetBranch reports whether candidate branch a contributes nothing new
// over the already-recorded branch b: a dead (nil) branch is trivially
// covered; otherwise b must already be alive with a history no longer than
// a's, since a longer-or-equal witness carries no new information.
func subsetBranch(a, b *HistoryNode) bool {
	if a == nil {
		return true
	}
	return b != nil && b.Length <= a.Length
}
