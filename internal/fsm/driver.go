package fsm

import (
	"github.com/synoptic-go/synoptic/internal/model"
	"github.com/synoptic-go/synoptic/internal/partition"
)

// run drives a single TracingStateSet to fixpoint over g on relation,
// starting every partition reachable from INITIAL. It returns the failing
// HistoryNode with the shortest witness found at any accepting partition,
// or nil if the invariant holds everywhere the search reached.
//
// The driver is intentionally generic over the TracingStateSet interface
// rather than specialized per invariant kind, mirroring the fast-mode
// bitset checker's single combined pass: both are worklist fixpoints over
// the same partition graph, differing only in what they carry per node.
func run(g *partition.Graph, relation string, newState func() TracingStateSet) *HistoryNode {
	states := make(map[*partition.Partition]TracingStateSet)
	var queue []*partition.Partition

	for _, p := range g.Partitions() {
		if !g.IsInitial(p) {
			continue
		}
		s := newState()
		s.SetInitial(p)
		states[p] = s
		queue = append(queue, p)
	}

	var best *HistoryNode
	consider := func(s TracingStateSet, p *partition.Partition) {
		if !g.IsAccept(p) {
			return
		}
		best = preferShorter(best, s.FailWitness())
	}
	for _, p := range queue {
		consider(states[p], p)
	}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		for _, tr := range g.Adjacent(n, relation) {
			m := tr.Target
			delta := aggregateDelta(tr.Deltas)

			candidate := states[n].Copy()
			candidate.Transition(m, delta)

			existing, ok := states[m]
			if ok && candidate.IsSubsetOf(existing) {
				continue
			}

			if ok {
				candidate.MergeInto(existing)
			} else {
				existing = candidate
				states[m] = existing
			}
			consider(existing, m)
			queue = append(queue, m)
		}
	}

	return best
}

// aggregateDelta folds an induced partition-transition's per-event deltas
// into a single representative delta by summing them; Deltas is never
// empty for a real transition.
func aggregateDelta(deltas []model.ITime) model.ITime {
	if len(deltas) == 0 {
		return model.CounterTime(0)
	}
	acc := deltas[0].Zero()
	for _, d := range deltas {
		acc = acc.IncrBy(d)
	}
	return acc
}
