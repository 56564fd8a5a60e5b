package invariant

import (
	"github.com/synoptic-go/synoptic/internal/closure"
	"github.com/synoptic-go/synoptic/internal/model"
)

// Mine extracts the set of binary invariants that hold across all traces
// in g, one relation at a time, using the given transitive-closure
// strategy. The result is an over-approximation for partially ordered
// input: it never omits an invariant that holds, but on a DAG trace it may
// include one that a finer analysis would reject. On acyclic, totally
// ordered traces this over-approximation coincides exactly with the set of
// invariants that hold.
func Mine(g *model.TraceGraph, strategy closure.Strategy) *Set {
	raw := NewSet()
	for _, relation := range g.Relations {
		tc := closure.Compute(g, relation, strategy)
		for _, inv := range extractFromTC(g, tc, relation) {
			raw.Add(inv)
		}
	}

	result := filterTautological(raw)
	for _, inv := range eventualInvariants(g) {
		result.Add(inv)
	}
	return result
}

// byType groups g's event nodes by their EventType, preserving first-seen
// type order so that iteration over types, and with it the order in which
// extractFromTC mines invariants for a relation, is deterministic.
func byType(g *model.TraceGraph) ([]model.EventType, map[model.EventType][]*model.EventNode) {
	var order []model.EventType
	groups := make(map[model.EventType][]*model.EventNode)
	for _, n := range g.Events {
		if _, ok := groups[n.Type]; !ok {
			order = append(order, n.Type)
		}
		groups[n.Type] = append(groups[n.Type], n)
	}
	return order, groups
}

// extractFromTC mines AFby/AP/NFby invariants for one relation, following
// the same three-pass-per-pair scheme as the reference transitive-closure
// miner: for every ordered pair of event types (A, B), test whether every A
// is followed by some B (AFby), whether every A is preceded by some B (AP,
// reported as AlwaysPrecedes(B, A)), and whether no A ever reaches a B
// (NFby).
func extractFromTC(g *model.TraceGraph, tc *closure.TransitiveClosure, relation string) []BinaryInvariant {
	types, groups := byType(g)

	var out []BinaryInvariant
	for _, a := range types {
		for _, b := range types {
			neverFollowed := true
			alwaysFollowedBy := true
			alwaysPreceded := true

			for _, na := range groups[a] {
				followerFound := false
				predecessorFound := false
				for _, nb := range groups[b] {
					if tc.IsReachable(na, nb) {
						neverFollowed = false
						followerFound = true
					}
					if tc.IsReachable(nb, na) {
						predecessorFound = true
					}
				}
				if !followerFound {
					alwaysFollowedBy = false
				}
				if !predecessorFound {
					alwaysPreceded = false
				}
			}

			if neverFollowed {
				out = append(out, New(NeverFollowedBy, a, b, relation))
			}
			if alwaysFollowedBy {
				out = append(out, New(AlwaysFollowedBy, a, b, relation))
			}
			if alwaysPreceded && !a.Equal(b) {
				// Every a is preceded by some b: AlwaysPrecedes(b, a).
				out = append(out, New(AlwaysPrecedes, b, a, relation))
			}
		}
	}
	return out
}

// eventualInvariants computes the "INITIAL AFby x" invariants: the event
// types that appear, reachable from INITIAL, in every single trace. It
// intersects, across all traces, the set of types reachable from that
// trace's first events (excluding TERMINAL).
func eventualInvariants(g *model.TraceGraph) []BinaryInvariant {
	byTrace := make(map[string]map[model.EventType]bool)
	order := g.TraceIDs()

	for _, tr := range g.Initial.TransitionsOn(model.DefaultRelation) {
		first := tr.Target
		if first.TraceID == "" {
			continue
		}
		set, ok := byTrace[first.TraceID]
		if !ok {
			set = make(map[model.EventType]bool)
			byTrace[first.TraceID] = set
		}
		collectReachableTypes(first, set, make(map[*model.EventNode]bool))
	}

	var eventually map[model.EventType]bool
	for _, id := range order {
		trace := byTrace[id]
		if eventually == nil {
			eventually = make(map[model.EventType]bool, len(trace))
			for t := range trace {
				if t != model.Terminal {
					eventually[t] = true
				}
			}
			continue
		}
		for t := range eventually {
			if !trace[t] {
				delete(eventually, t)
			}
		}
	}

	var out []BinaryInvariant
	for t := range eventually {
		out = append(out, New(AlwaysFollowedBy, model.Initial, t, model.DefaultRelation))
	}
	return out
}

// collectReachableTypes walks the default-relation successors of n,
// recording every event type seen.
func collectReachableTypes(n *model.EventNode, into map[model.EventType]bool, visited map[*model.EventNode]bool) {
	if visited[n] {
		return
	}
	visited[n] = true
	into[n.Type] = true
	for _, tr := range n.TransitionsOn(model.DefaultRelation) {
		collectReachableTypes(tr.Target, into, visited)
	}
}

// filterTautological drops every mined invariant with a special (INITIAL
// or TERMINAL) operand. The "INITIAL AFby x" invariants are not mined this
// way at all: they are reconstructed explicitly by eventualInvariants and
// added back in by the caller after filtering.
func filterTautological(s *Set) *Set {
	out := NewSet()
	for _, inv := range s.Items() {
		if inv.A.IsSpecial() || inv.B.IsSpecial() {
			continue
		}
		out.Add(inv)
	}
	return out
}
