// Package invariant defines the binary temporal invariant types and the
// miner that extracts them from a trace graph's transitive closure.
package invariant

import (
	"fmt"

	"github.com/synoptic-go/synoptic/internal/model"
)

// Kind tags which of the three binary invariant shapes a BinaryInvariant
// represents. Using a tagged variant here, rather than one type per kind
// with shared interface dispatch, keeps the automaton-selection switch in
// the fsm package a single, exhaustive statement.
type Kind int

const (
	AlwaysFollowedBy Kind = iota
	AlwaysPrecedes
	NeverFollowedBy
)

func (k Kind) String() string {
	switch k {
	case AlwaysFollowedBy:
		return "AFby"
	case AlwaysPrecedes:
		return "AP"
	case NeverFollowedBy:
		return "NFby"
	default:
		return "?"
	}
}

// BinaryInvariant is a mined temporal property relating two event types
// under one relation. Structural equality is by (Kind, A, B, Relation).
type BinaryInvariant struct {
	Kind     Kind
	A, B     model.EventType
	Relation string
}

// New builds a BinaryInvariant, panicking if an AlwaysPrecedes invariant is
// given equal operands (A = B is forbidden for AP by definition: a type
// cannot be required to precede itself).
func New(kind Kind, a, b model.EventType, relation string) BinaryInvariant {
	if kind == AlwaysPrecedes && a.Equal(b) {
		panic("invariant: AlwaysPrecedes requires A != B")
	}
	return BinaryInvariant{Kind: kind, A: a, B: b, Relation: relation}
}

// Equal implements structural equality.
func (inv BinaryInvariant) Equal(o BinaryInvariant) bool {
	return inv.Kind == o.Kind && inv.A.Equal(o.A) && inv.B.Equal(o.B) && inv.Relation == o.Relation
}

func (inv BinaryInvariant) String() string {
	return fmt.Sprintf("%s(%s,%s,%s)", inv.Kind, inv.A, inv.B, inv.Relation)
}

// Set is an ordered collection of mined invariants, preserving first-seen
// order for deterministic iteration (refinement shuffles a copy for
// fairness, it never relies on map order).
type Set struct {
	items []BinaryInvariant
}

// NewSet builds a Set from the given invariants, skipping duplicates.
func NewSet(invs ...BinaryInvariant) *Set {
	s := &Set{}
	for _, inv := range invs {
		s.Add(inv)
	}
	return s
}

// Add inserts inv if it isn't already present.
func (s *Set) Add(inv BinaryInvariant) {
	for _, existing := range s.items {
		if existing.Equal(inv) {
			return
		}
	}
	s.items = append(s.items, inv)
}

// Items returns the invariants in first-seen order. Callers must not
// mutate the returned slice.
func (s *Set) Items() []BinaryInvariant { return s.items }

// Len returns the number of distinct invariants in the set.
func (s *Set) Len() int { return len(s.items) }
