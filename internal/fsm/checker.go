package fsm

import (
	"github.com/synoptic-go/synoptic/internal/invariant"
	"github.com/synoptic-go/synoptic/internal/partition"
)

// CheckOne runs tracing mode for a single invariant and returns its
// shortest counter-example, or nil if the invariant holds over every path
// reachable in g.
func CheckOne(g *partition.Graph, inv invariant.BinaryInvariant) *CounterExamplePath {
	witness := run(g, inv.Relation, func() TracingStateSet { return NewTracingStateSet(inv) })
	if witness == nil {
		return nil
	}
	return &CounterExamplePath{
		Invariant: inv,
		Path:      witness.Path(),
		Delta:     accumulate(witness),
	}
}

// CheckAll evaluates every invariant in g's invariant set against g,
// returning a counter-example for each one that fails. When useFast is
// true, CheckFast first narrows the set down to the invariants that
// actually fail, and tracing mode is only invoked for those, to reconstruct
// a witness. When useFast is false, tracing mode runs directly over every
// invariant.
func CheckAll(g *partition.Graph, useFast bool) []*CounterExamplePath {
	grouped := make(map[string][]invariant.BinaryInvariant)
	for _, inv := range g.Invariants().Items() {
		grouped[inv.Relation] = append(grouped[inv.Relation], inv)
	}

	var toTrace []invariant.BinaryInvariant
	if useFast {
		for relation, invs := range grouped {
			failed := CheckFast(g, relation, invs)
			toTrace = append(toTrace, failed.Items()...)
		}
	} else {
		toTrace = g.Invariants().Items()
	}

	var out []*CounterExamplePath
	for _, inv := range toTrace {
		if ce := CheckOne(g, inv); ce != nil {
			out = append(out, ce)
		}
	}
	return out
}

// PartitionSet is a convenience used by callers building a candidate split
// from a counter-example: the set of partitions visited along ce.Path.
func PartitionSet(ce *CounterExamplePath) map[*partition.Partition]bool {
	out := make(map[*partition.Partition]bool, len(ce.Path))
	for _, p := range ce.Path {
		out[p] = true
	}
	return out
}
