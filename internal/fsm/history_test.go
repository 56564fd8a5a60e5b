package fsm

import (
	"testing"

	"github.com/synoptic-go/synoptic/internal/model"
	"github.com/synoptic-go/synoptic/internal/partition"
)

func TestPreferShorterBreaksTiesTowardA(t *testing.T) {
	p := &partition.Partition{}
	a := newHistory(p)
	b := newHistory(p)
	if preferShorter(a, b) != a {
		t.Fatal("expected a tie to be broken toward a")
	}
	if preferShorter(nil, b) != b {
		t.Fatal("expected preferShorter(nil, b) == b")
	}
	if preferShorter(a, nil) != a {
		t.Fatal("expected preferShorter(a, nil) == a")
	}

	longer := extend(p, extend(p, a, model.CounterTime(1)), model.CounterTime(1))
	if preferShorter(longer, a) != a {
		t.Fatal("expected the shorter history to win regardless of argument order")
	}
}

func TestSubsetBranch(t *testing.T) {
	p := &partition.Partition{}
	short := newHistory(p)
	long := extend(p, short, model.CounterTime(1))

	if !subsetBranch(nil, nil) {
		t.Error("expected a dead candidate branch to be trivially subsumed")
	}
	if !subsetBranch(nil, short) {
		t.Error("expected a dead candidate branch to be subsumed by anything")
	}
	if subsetBranch(short, nil) {
		t.Error("did not expect a live candidate to be subsumed by a dead branch")
	}
	if !subsetBranch(long, short) {
		t.Error("expected a longer candidate to be subsumed by an equal-or-shorter existing branch")
	}
	if subsetBranch(short, long) {
		t.Error("did not expect a shorter candidate to be subsumed by a longer existing branch")
	}
}

func TestHistoryPath(t *testing.T) {
	p1 := &partition.Partition{ID: 1}
	p2 := &partition.Partition{ID: 2}
	h := extend(p2, newHistory(p1), model.CounterTime(1))

	path := h.Path()
	if len(path) != 2 || path[0] != p1 || path[1] != p2 {
		t.Fatalf("expected path [p1, p2], got %v", path)
	}
}
