package export

import (
	"strings"
	"testing"

	"github.com/synoptic-go/synoptic/internal/invariant"
	"github.com/synoptic-go/synoptic/internal/model"
	"github.com/synoptic-go/synoptic/internal/partition"
)

func buildSimpleGraph(t *testing.T) *partition.Graph {
	t.Helper()
	b := model.NewBuilder(model.Chain)
	must := func(err error) {
		if err != nil {
			t.Fatal(err)
		}
	}
	must(b.AddEvent(model.EventRecord{ID: "a1", Type: model.NewEventType("a"), TraceID: "t1", Line: 1, Time: model.CounterTime(1)}))
	must(b.AddEvent(model.EventRecord{ID: "b1", Type: model.NewEventType("b"), TraceID: "t1", Line: 2, Time: model.CounterTime(2)}))
	must(b.AddEdge(model.EdgeRecord{From: "a1", To: "b1"}))
	g, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return partition.ByLabel(g, invariant.NewSet())
}

func TestDOTContainsEveryPartition(t *testing.T) {
	pg := buildSimpleGraph(t)
	dot := DOT(pg)

	if !strings.HasPrefix(dot, "digraph Synoptic {") {
		t.Fatal("expected a digraph header")
	}
	for _, label := range []string{"a", "b", "INITIAL", "TERMINAL"} {
		if !strings.Contains(dot, label) {
			t.Errorf("expected DOT output to mention %q", label)
		}
	}
}

func TestDOTMarksInitialAndAccept(t *testing.T) {
	pg := buildSimpleGraph(t)
	dot := DOT(pg)
	if !strings.Contains(dot, `shape=point`) {
		t.Error("expected the initial partition to be rendered with shape=point")
	}
	if !strings.Contains(dot, `shape=doublecircle`) {
		t.Error("expected the accepting partition to be rendered with shape=doublecircle")
	}
}

func TestCounterExampleDOT(t *testing.T) {
	pg := buildSimpleGraph(t)
	path := pg.Partitions()[:2]
	dot := counterExampleDOT(path)
	if !strings.HasPrefix(dot, "digraph CounterExample {") {
		t.Fatal("expected a counter-example digraph header")
	}
}
