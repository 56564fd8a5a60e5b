package ktail

import (
	"testing"
	"time"

	"github.com/synoptic-go/synoptic/internal/invariant"
	"github.com/synoptic-go/synoptic/internal/model"
	"github.com/synoptic-go/synoptic/internal/partition"
)

func buildChains(t *testing.T, chains map[string][]string) *partition.Graph {
	t.Helper()
	b := model.NewBuilder(model.Chain)
	line := 0
	for trace, labels := range chains {
		var prevID string
		for i, label := range labels {
			line++
			id := trace + label + string(rune('0'+i))
			if err := b.AddEvent(model.EventRecord{
				ID: id, Type: model.NewEventType(label), TraceID: trace, Line: line, Time: model.CounterTime(line),
			}); err != nil {
				t.Fatal(err)
			}
			if prevID != "" {
				if err := b.AddEdge(model.EdgeRecord{From: prevID, To: id}); err != nil {
					t.Fatal(err)
				}
			}
			prevID = id
		}
	}
	g, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return partition.ByLabel(g, invariant.NewSet())
}

func find(pg *partition.Graph, label string) *partition.Partition {
	for _, p := range pg.Partitions() {
		if p.EventType.Label == label {
			return p
		}
	}
	return nil
}

func TestKEqualsZeroReducesToEqualLabels(t *testing.T) {
	pg := buildChains(t, map[string][]string{"t1": {"a", "b"}, "t2": {"a", "c"}})
	checker := NewChecker(pg, false)

	b := find(pg, "b")
	c := find(pg, "c")
	if checker.KEquals(b, c, 0) {
		t.Error("expected two different-labeled partitions to differ at k=0 by label alone")
	}
}

func TestKEqualsSameObjectAlwaysEqual(t *testing.T) {
	pg := buildChains(t, map[string][]string{"t1": {"a", "b"}})
	checker := NewChecker(pg, false)
	a := find(pg, "a")
	if !checker.KEquals(a, a, 5) {
		t.Error("expected a partition to be k-equal to itself at any depth")
	}
}

func TestKEqualsSharedPartitionWithDivergentTails(t *testing.T) {
	// t1: a -> b -> x   t2: a2 -> b -> y : the single b partition has two
	// tails that differ at depth 1.
	pg := buildChains(t, map[string][]string{
		"t1": {"a", "b", "x"},
		"t2": {"a2", "b", "y"},
	})
	checker := NewChecker(pg, false)
	a := find(pg, "a")
	a2 := find(pg, "a2")
	// a and a2 are distinct labels so trivially unequal; use their common
	// successor b against itself for a meaningful depth check instead.
	b := find(pg, "b")
	if !checker.KEquals(b, b, 2) {
		t.Error("expected a partition to be k-equal to itself even with divergent tails")
	}
	if checker.KEquals(a, a2, 0) {
		t.Error("expected differently labeled partitions never to be k-equal")
	}
}

func TestKEqualsTerminatesOnCycle(t *testing.T) {
	// A single chain a -> b -> a forms a cycle via a shared label; ensure
	// KEquals terminates rather than looping forever.
	b := model.NewBuilder(model.Chain)
	must := func(err error) {
		if err != nil {
			t.Fatal(err)
		}
	}
	must(b.AddEvent(model.EventRecord{ID: "a1", Type: model.NewEventType("a"), TraceID: "t1", Line: 1, Time: model.CounterTime(1)}))
	must(b.AddEvent(model.EventRecord{ID: "b1", Type: model.NewEventType("b"), TraceID: "t1", Line: 2, Time: model.CounterTime(2)}))
	must(b.AddEvent(model.EventRecord{ID: "a2", Type: model.NewEventType("a"), TraceID: "t1", Line: 3, Time: model.CounterTime(3)}))
	must(b.AddEdge(model.EdgeRecord{From: "a1", To: "b1"}))
	must(b.AddEdge(model.EdgeRecord{From: "b1", To: "a2"}))
	g, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	pg := partition.ByLabel(g, invariant.NewSet())

	a := find(pg, "a")
	checker := NewChecker(pg, false)
	done := make(chan bool, 1)
	go func() {
		done <- checker.KEquals(a, a, 10)
	}()
	select {
	case res := <-done:
		if !res {
			t.Fatal("expected a partition to be k-equal to itself")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("KEquals did not terminate on a cyclic partition graph")
	}
}

func TestKEqualsSelfUnderBothModes(t *testing.T) {
	pg := buildChains(t, map[string][]string{"t1": {"a", "b"}})
	sub := NewChecker(pg, true)
	full := NewChecker(pg, false)
	a := find(pg, "a")
	if !sub.KEquals(a, a, 1) || !full.KEquals(a, a, 1) {
		t.Fatal("expected a partition to be k-equal to itself under both modes")
	}
}

func TestReset(t *testing.T) {
	pg := buildChains(t, map[string][]string{"t1": {"a", "b"}})
	checker := NewChecker(pg, false)
	a := find(pg, "a")
	checker.KEquals(a, a, 1)
	checker.Reset()
	if len(checker.memo) != 0 {
		t.Fatal("expected Reset to clear the memo")
	}
}
