// Package closure computes, per relation, the reachability matrix over the
// event nodes of a trace graph.
package closure

import (
	"github.com/synoptic-go/synoptic/internal/model"
)

// Strategy selects the algorithm used to compute a TransitiveClosure.
type Strategy int

const (
	// Recursive marks reachable nodes with a depth-first walk from each
	// node. Simple, and cheap in memory beyond the output matrix itself.
	Recursive Strategy = iota
	// Warshall applies the classic all-pairs fixpoint: reach(u,w) &&
	// reach(w,v) => reach(u,v), iterated to a fixpoint. Matches the
	// "warshall-transitive-closure" configuration flag.
	Warshall
)

// TransitiveClosure answers isReachable(u, v) in O(1) for a single
// relation, over the set of event nodes fixed at construction time. It is
// computed once per mining run and discarded; nothing about it is mutable.
type TransitiveClosure struct {
	index map[*model.EventNode]int
	nodes []*model.EventNode
	// reach[i] is a bitset over node indices reachable from nodes[i].
	reach []bitrow
}

// bitrow is a packed row of the reachability matrix, one bit per node.
type bitrow []uint64

func newBitrow(n int) bitrow {
	return make(bitrow, (n+63)/64)
}

func (r bitrow) set(i int)      { r[i/64] |= 1 << uint(i%64) }
func (r bitrow) get(i int) bool { return r[i/64]&(1<<uint(i%64)) != 0 }

func (r bitrow) orInto(other bitrow) bool {
	changed := false
	for i := range r {
		merged := r[i] | other[i]
		if merged != r[i] {
			r[i] = merged
			changed = true
		}
	}
	return changed
}

// Compute builds the reachability matrix for a single relation over g's
// events using the given strategy.
func Compute(g *model.TraceGraph, relation string, strategy Strategy) *TransitiveClosure {
	nodes := g.Events
	index := make(map[*model.EventNode]int, len(nodes))
	for i, n := range nodes {
		index[n] = i
	}

	tc := &TransitiveClosure{index: index, nodes: nodes}
	tc.reach = make([]bitrow, len(nodes))
	for i := range tc.reach {
		tc.reach[i] = newBitrow(len(nodes))
	}

	// Direct edges.
	for i, n := range nodes {
		for _, tr := range n.TransitionsOn(relation) {
			if j, ok := index[tr.Target]; ok {
				tc.reach[i].set(j)
			}
		}
	}

	switch strategy {
	case Warshall:
		tc.computeWarshall()
	default:
		tc.computeRecursive()
	}
	return tc
}

// computeWarshall applies the iterative fixpoint: repeatedly OR in reach(w)
// for every w already reachable from u, until no row changes.
func (tc *TransitiveClosure) computeWarshall() {
	n := len(tc.nodes)
	for {
		changed := false
		for u := 0; u < n; u++ {
			row := tc.reach[u]
			for w := 0; w < n; w++ {
				if !row.get(w) || w == u {
					continue
				}
				if row.orInto(tc.reach[w]) {
					changed = true
				}
			}
		}
		if !changed {
			return
		}
	}
}

// computeRecursive marks all reachable nodes from each start node with a
// depth-first walk, memoizing nothing across starts (each row is
// independent).
func (tc *TransitiveClosure) computeRecursive() {
	n := len(tc.nodes)
	visited := make([]bool, n)
	for start := 0; start < n; start++ {
		for i := range visited {
			visited[i] = false
		}
		tc.dfs(start, start, visited)
	}
}

func (tc *TransitiveClosure) dfs(root, u int, visited []bool) {
	for w := 0; w < len(tc.nodes); w++ {
		if !tc.reach[u].get(w) || visited[w] {
			continue
		}
		visited[w] = true
		tc.reach[root].set(w)
		tc.dfs(root, w, visited)
	}
}

// IsReachable reports whether v is reachable from u on the relation this
// closure was computed for, including the trivial case u == v only if
// there is an actual cycle through u.
func (tc *TransitiveClosure) IsReachable(u, v *model.EventNode) bool {
	i, ok := tc.index[u]
	if !ok {
		return false
	}
	j, ok := tc.index[v]
	if !ok {
		return false
	}
	return tc.reach[i].get(j)
}

// ReachableFrom returns every node reachable from u.
func (tc *TransitiveClosure) ReachableFrom(u *model.EventNode) []*model.EventNode {
	i, ok := tc.index[u]
	if !ok {
		return nil
	}
	var out []*model.EventNode
	for j, n := range tc.nodes {
		if tc.reach[i].get(j) {
			out = append(out, n)
		}
	}
	return out
}
