package fsm

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/synoptic-go/synoptic/internal/invariant"
	"github.com/synoptic-go/synoptic/internal/partition"
)

// automaton state codes, packed two bits per invariant. codeNil is the
// all-zero default so a freshly allocated bitset already represents every
// invariant's start state.
const (
	codeNil    = 0
	codeSeen   = 1 // SAW_A (AFby, NFby) or SAW_A_OR_B (AP)
	codeFailed = 2
)

// fastState is the combined per-node automaton state for every invariant at
// once, packed two bits per invariant into a single bitset.BitSet. This is
// the fast-path checker: one pass over the partition graph decides every
// mined invariant together, at the cost of not retaining enough history to
// reconstruct a counter-example (tracing mode, run per-invariant, does
// that).
type fastState struct {
	bits *bitset.BitSet
}

func newFastState(n int) *fastState {
	return &fastState{bits: bitset.New(uint(2 * n))}
}

func (s *fastState) code(i int) uint {
	lo := s.bits.Test(uint(2 * i))
	hi := s.bits.Test(uint(2*i + 1))
	switch {
	case hi:
		return codeFailed
	case lo:
		return codeSeen
	default:
		return codeNil
	}
}

func (s *fastState) setCode(i int, code uint) {
	lo, hi := uint(2*i), uint(2*i+1)
	switch code {
	case codeNil:
		s.bits.Clear(lo)
		s.bits.Clear(hi)
	case codeSeen:
		s.bits.Set(lo)
		s.bits.Clear(hi)
	case codeFailed:
		s.bits.Clear(lo)
		s.bits.Set(hi)
	}
}

func (s *fastState) copy() *fastState {
	return &fastState{bits: s.bits.Clone()}
}

// rank orders inv's codes by how close a run in that code is to a
// violation: NIL < SEEN < FAILED for AFby and NFby, but SEEN < NIL < FAILED
// for AP, where a run that saw A can no longer fail and an unguarded one can.
func rank(inv invariant.BinaryInvariant, code uint) uint {
	if inv.Kind == invariant.AlwaysPrecedes && code != codeFailed {
		return 1 - code
	}
	return code
}

// mergeMax folds other into s along the FAILED-dominant lattice: for each
// invariant, the higher-ranked of the two codes wins.
func (s *fastState) mergeMax(other *fastState, invs []invariant.BinaryInvariant) {
	for i, inv := range invs {
		if rank(inv, other.code(i)) > rank(inv, s.code(i)) {
			s.setCode(i, other.code(i))
		}
	}
}

func (s *fastState) subsetOf(other *fastState, invs []invariant.BinaryInvariant) bool {
	for i, inv := range invs {
		if rank(inv, s.code(i)) > rank(inv, other.code(i)) {
			return false
		}
	}
	return true
}

// CheckFast decides every invariant in invs against g, on relation, in a
// single combined worklist pass. It returns the subset of invs that are
// violated; it does not produce counter-examples (use CheckOne for that).
func CheckFast(g *partition.Graph, relation string, invs []invariant.BinaryInvariant) *invariant.Set {
	n := len(invs)
	failed := make([]bool, n)

	step := func(s *fastState, p *partition.Partition) *fastState {
		next := s.copy()
		for i, inv := range invs {
			next.setCode(i, fastTransition(inv, p, next.code(i)))
		}
		return next
	}

	states := make(map[*partition.Partition]*fastState)
	var queue []*partition.Partition

	for _, p := range g.Partitions() {
		if !g.IsInitial(p) {
			continue
		}
		s := newFastState(n)
		for i, inv := range invs {
			s.setCode(i, fastInitial(inv, p))
		}
		states[p] = s
		queue = append(queue, p)
	}

	markFailures := func(s *fastState, p *partition.Partition) {
		if !g.IsAccept(p) {
			return
		}
		for i, inv := range invs {
			switch inv.Kind {
			case invariant.AlwaysFollowedBy:
				if s.code(i) == codeSeen {
					failed[i] = true
				}
			default:
				if s.code(i) == codeFailed {
					failed[i] = true
				}
			}
		}
	}
	for _, p := range queue {
		markFailures(states[p], p)
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, tr := range g.Adjacent(cur, relation) {
			m := tr.Target
			candidate := step(states[cur], m)

			existing, ok := states[m]
			if ok && candidate.subsetOf(existing, invs) {
				continue
			}
			if ok {
				existing.mergeMax(candidate, invs)
			} else {
				existing = candidate
				states[m] = existing
			}
			markFailures(existing, m)
			queue = append(queue, m)
		}
	}

	out := invariant.NewSet()
	for i, inv := range invs {
		if failed[i] {
			out.Add(inv)
		}
	}
	return out
}

func fastInitial(inv invariant.BinaryInvariant, p *partition.Partition) uint {
	switch inv.Kind {
	case invariant.AlwaysFollowedBy:
		if p.EventType.Equal(inv.A) {
			return codeSeen
		}
		return codeNil
	case invariant.NeverFollowedBy:
		if p.EventType.Equal(inv.A) {
			return codeSeen
		}
		return codeNil
	case invariant.AlwaysPrecedes:
		switch {
		case p.EventType.Equal(inv.A):
			return codeSeen
		case p.EventType.Equal(inv.B):
			return codeFailed
		default:
			return codeNil
		}
	default:
		return codeNil
	}
}

// fastTransition computes invariant inv's next automaton code on entering
// p, given its current code cur. This mirrors the per-branch logic in
// tracingset.go exactly, minus the history bookkeeping.
func fastTransition(inv invariant.BinaryInvariant, p *partition.Partition, cur uint) uint {
	switch inv.Kind {
	case invariant.AlwaysFollowedBy:
		if p.EventType.Equal(inv.B) {
			return codeNil
		}
		if p.EventType.Equal(inv.A) {
			return codeSeen
		}
		return cur
	case invariant.NeverFollowedBy:
		if p.EventType.Equal(inv.B) && cur == codeSeen {
			return codeFailed
		}
		if p.EventType.Equal(inv.A) && cur != codeFailed {
			return codeSeen
		}
		return cur
	case invariant.AlwaysPrecedes:
		if cur == codeFailed {
			return codeFailed
		}
		if p.EventType.Equal(inv.A) {
			return codeSeen
		}
		if p.EventType.Equal(inv.B) && cur == codeNil {
			return codeFailed
		}
		return cur
	default:
		return cur
	}
}
