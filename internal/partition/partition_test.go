package partition

import (
	"testing"

	"github.com/synoptic-go/synoptic/internal/invariant"
	"github.com/synoptic-go/synoptic/internal/model"
)

// buildChainGraph builds a one-trace chain a -> b -> c and returns both the
// trace graph and the by-label partition graph over it.
func buildChainGraph(t *testing.T) (*model.TraceGraph, *Graph) {
	t.Helper()
	b := model.NewBuilder(model.Chain)
	add := func(id, typ string, line int) {
		if err := b.AddEvent(model.EventRecord{
			ID: id, Type: model.NewEventType(typ), TraceID: "t1", Line: line, Time: model.CounterTime(line),
		}); err != nil {
			t.Fatal(err)
		}
	}
	add("a", "a", 1)
	add("b", "b", 2)
	add("c", "c", 3)
	if err := b.AddEdge(model.EdgeRecord{From: "a", To: "b"}); err != nil {
		t.Fatal(err)
	}
	if err := b.AddEdge(model.EdgeRecord{From: "b", To: "c"}); err != nil {
		t.Fatal(err)
	}
	g, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	pg := ByLabel(g, invariant.NewSet())
	return g, pg
}

func partitionByLabel(pg *Graph, label string) *Partition {
	for _, p := range pg.Partitions() {
		if p.EventType.Label == label {
			return p
		}
	}
	return nil
}

func TestByLabelGroupsByType(t *testing.T) {
	_, pg := buildChainGraph(t)
	// a, b, c, INITIAL, TERMINAL: 5 singleton partitions.
	if len(pg.Partitions()) != 5 {
		t.Fatalf("expected 5 partitions, got %d", len(pg.Partitions()))
	}
	if err := pg.CheckSanity(); err != nil {
		t.Fatalf("expected a fresh ByLabel graph to be sane: %v", err)
	}
}

func TestIsInitialAndIsAccept(t *testing.T) {
	_, pg := buildChainGraph(t)
	a := partitionByLabel(pg, "a")
	c := partitionByLabel(pg, "c")
	b := partitionByLabel(pg, "b")

	if !pg.IsInitial(a) {
		t.Error("expected a's partition to be initial")
	}
	if pg.IsInitial(b) {
		t.Error("did not expect b's partition to be initial")
	}
	if !pg.IsAccept(c) {
		t.Error("expected c's partition to be accepting")
	}
	if pg.IsAccept(a) {
		t.Error("did not expect a's partition to be accepting")
	}
}

func TestAdjacent(t *testing.T) {
	_, pg := buildChainGraph(t)
	a := partitionByLabel(pg, "a")
	b := partitionByLabel(pg, "b")

	adj := pg.Adjacent(a, model.DefaultRelation)
	if len(adj) != 1 || adj[0].Target != b {
		t.Fatalf("expected a -> b, got %+v", adj)
	}
}

func TestMergeThenSplitRewindRestoresIdentity(t *testing.T) {
	_, pg := buildChainGraph(t)
	b := partitionByLabel(pg, "b")
	c := partitionByLabel(pg, "c")
	cID := c.ID

	merge := Merge(b, c)
	inverse := pg.Apply(merge)

	if pg.PartitionOf(c.Events()[0]) != b {
		t.Fatal("expected c's event to now belong to b's partition after merge")
	}
	if _, stillPresent := findPartition(pg, cID); stillPresent {
		t.Fatal("expected c's partition to be gone after merge")
	}

	split, ok := inverse.(*MultiSplit)
	if !ok {
		t.Fatalf("expected the merge's inverse to be a *MultiSplit, got %T", inverse)
	}
	if len(split.Reuse) != 1 || split.Reuse[0] == nil {
		t.Fatal("expected the inverse split to carry the original partition for reuse")
	}
	if split.Reuse[0].ID != cID {
		t.Fatalf("expected the reused partition to keep id %d, got %d", cID, split.Reuse[0].ID)
	}

	pg.Apply(inverse)

	restored, ok := findPartition(pg, cID)
	if !ok {
		t.Fatal("expected c's partition id to be restored after rewinding the merge")
	}
	if restored != split.Reuse[0] {
		t.Fatal("expected the exact same *Partition object to be reinstated, not a lookalike")
	}
	if err := pg.CheckSanity(); err != nil {
		t.Fatalf("expected the graph to be sane after merge/rewind: %v", err)
	}
}

func TestNewSplitThenCommitCreatesFreshPartition(t *testing.T) {
	_, pg := buildTwoTraceGraph(t)
	b := partitionByLabel(pg, "b")
	events := b.Events()
	if len(events) < 2 {
		t.Fatalf("expected b's partition to hold events from both traces, got %d", len(events))
	}

	split := NewSplit(b, map[*model.EventNode]bool{events[0]: true})
	before := len(pg.Partitions())
	pg.Apply(split)
	after := len(pg.Partitions())

	if after != before+1 {
		t.Fatalf("expected one new partition from a split, got %d -> %d", before, after)
	}
	if err := pg.CheckSanity(); err != nil {
		t.Fatalf("expected the graph to be sane after a split: %v", err)
	}
}

// buildTwoTraceGraph builds two chains a -> b -> c so that each label's
// partition starts with more than one event, which a split can divide.
func buildTwoTraceGraph(t *testing.T) (*model.TraceGraph, *Graph) {
	t.Helper()
	b := model.NewBuilder(model.Chain)
	add := func(id, typ, trace string, line int) {
		if err := b.AddEvent(model.EventRecord{
			ID: id, Type: model.NewEventType(typ), TraceID: trace, Line: line, Time: model.CounterTime(line),
		}); err != nil {
			t.Fatal(err)
		}
	}
	edge := func(from, to string) {
		if err := b.AddEdge(model.EdgeRecord{From: from, To: to}); err != nil {
			t.Fatal(err)
		}
	}
	for _, trace := range []string{"t1", "t2"} {
		add(trace+"a", "a", trace, 1)
		add(trace+"b", "b", trace, 2)
		add(trace+"c", "c", trace, 3)
		edge(trace+"a", trace+"b")
		edge(trace+"b", trace+"c")
	}
	g, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return g, ByLabel(g, invariant.NewSet())
}

func findPartition(pg *Graph, id int) (*Partition, bool) {
	for _, p := range pg.Partitions() {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}
