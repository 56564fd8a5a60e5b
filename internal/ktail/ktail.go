// Package ktail implements k-Tails equivalence over a partition graph: two
// partitions are k-equivalent when their outgoing transition structure
// agrees to depth k, checked in both directions outside subsumption mode
// and in one direction inside it. The
// coarsening loop in bisim uses this to propose merge candidates.
package ktail

import "github.com/synoptic-go/synoptic/internal/partition"

type pairKey struct {
	u, v *partition.Partition
	k    int
}

// Checker memoizes kEquals results across a single coarsening pass. The
// memo doubles as the fixpoint device that lets kEquals terminate on
// cyclic partition graphs: a pair is optimistically recorded as equal the
// moment it's first visited, before recursing into its successors, so a
// cycle back to that pair resolves to "equal" rather than looping forever.
// If a later check along the same recursion disproves the pair, the memo
// entry is corrected before returning.
type Checker struct {
	g           *partition.Graph
	relations   []string
	subsumption bool
	memo        map[pairKey]bool
}

// NewChecker builds a k-Tails checker over every relation in g's source
// trace graph. When subsumption is true, kEquals(u, v, k) only requires
// that u's transition structure is matched by v's (u subsumed by v),
// dropping the symmetric requirement — used when merging a smaller
// partition into a larger one need not be justified in both directions.
func NewChecker(g *partition.Graph, subsumption bool) *Checker {
	return &Checker{
		g:           g,
		relations:   g.Source().Relations,
		subsumption: subsumption,
		memo:        make(map[pairKey]bool),
	}
}

// KEquals reports whether u and v are k-equivalent: same event type, and
// (to depth k) every transition out of one is matched by a transition out
// of the other into a (k-1)-equivalent partition.
func (c *Checker) KEquals(u, v *partition.Partition, k int) bool {
	if u == v {
		return true
	}
	if !u.EventType.Equal(v.EventType) {
		return false
	}
	key := pairKey{u, v, k}
	if res, ok := c.memo[key]; ok {
		return res
	}
	c.memo[key] = true // coinductive assumption, corrected below if wrong
	if k == 0 {
		return true
	}

	ok := c.stepEquals(u, v, k)
	c.memo[key] = ok
	return ok
}

func (c *Checker) stepEquals(u, v *partition.Partition, k int) bool {
	for _, rel := range c.relations {
		if !c.matchAll(u, v, rel, k) {
			return false
		}
		if !c.subsumption && !c.matchAll(v, u, rel, k) {
			return false
		}
	}
	return true
}

// matchAll reports whether every transition out of u on rel is matched by
// some transition out of v on rel into a (k-1)-equivalent partition.
func (c *Checker) matchAll(u, v *partition.Partition, rel string, k int) bool {
	for _, ut := range c.g.Adjacent(u, rel) {
		found := false
		for _, vt := range c.g.Adjacent(v, rel) {
			if c.KEquals(ut.Target, vt.Target, k-1) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Reset clears the memo; call this between coarsening passes, since a
// merge changes the partition graph and invalidates cached results.
func (c *Checker) Reset() {
	c.memo = make(map[pairKey]bool)
}
