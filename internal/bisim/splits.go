package bisim

import (
	"github.com/synoptic-go/synoptic/internal/fsm"
	"github.com/synoptic-go/synoptic/internal/model"
	"github.com/synoptic-go/synoptic/internal/partition"
)

// candidateSplits walks ce's partition path in lockstep with the set of
// underlying event nodes consistent with that prefix, to find the pivot
// partition: the first point along the path where the live event set,
// followed forward by ce.Invariant's relation, empties out before reaching
// the next partition. It then emits an outgoing-based split of the pivot,
// and (if incomingSplit is set) an incoming-based split, for the caller to
// test against global invariant satisfaction.
func candidateSplits(ce *fsm.CounterExamplePath, incomingSplit bool) []*partition.MultiSplit {
	path := ce.Path
	if len(path) < 2 {
		return nil
	}
	relation := ce.Invariant.Relation

	live := make(map[*model.EventNode]bool)
	for _, e := range path[0].Events() {
		live[e] = true
	}

	pivotIdx := len(path) - 2 // fallback: split the partition just before the accepting one
	for i := 0; i+1 < len(path); i++ {
		next := path[i+1]
		follow := make(map[*model.EventNode]bool)
		for e := range live {
			for _, tr := range e.TransitionsOn(relation) {
				if next.Contains(tr.Target) {
					follow[tr.Target] = true
				}
			}
		}
		if len(follow) == 0 {
			pivotIdx = i
			break
		}
		live = follow
	}

	pivot := path[pivotIdx]
	next := path[pivotIdx+1]

	var out []*partition.MultiSplit

	withEdge := make(map[*model.EventNode]bool)
	for _, e := range pivot.Events() {
		for _, tr := range e.TransitionsOn(relation) {
			if next.Contains(tr.Target) {
				withEdge[e] = true
				break
			}
		}
	}
	if isProperNonEmptySubset(withEdge, pivot) {
		out = append(out, partition.NewSplit(pivot, withEdge))
	}

	if incomingSplit && pivotIdx > 0 {
		prev := path[pivotIdx-1]
		reached := make(map[*model.EventNode]bool)
		for _, e := range prev.Events() {
			for _, tr := range e.TransitionsOn(relation) {
				if pivot.Contains(tr.Target) {
					reached[tr.Target] = true
				}
			}
		}
		if isProperNonEmptySubset(reached, pivot) {
			out = append(out, partition.NewSplit(pivot, reached))
		}
	}

	return out
}

func isProperNonEmptySubset(s map[*model.EventNode]bool, p *partition.Partition) bool {
	return len(s) > 0 && len(s) < p.Len()
}
