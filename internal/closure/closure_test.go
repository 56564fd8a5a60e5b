package closure

import (
	"testing"

	"github.com/synoptic-go/synoptic/internal/model"
)

// buildChain builds a single-trace chain a -> b -> c and returns its graph.
func buildChain(t *testing.T) *model.TraceGraph {
	t.Helper()
	b := model.NewBuilder(model.Chain)
	events := []string{"a", "b", "c"}
	for i, typ := range events {
		if err := b.AddEvent(model.EventRecord{
			ID: typ, Type: model.NewEventType(typ), TraceID: "t1", Line: i + 1, Time: model.CounterTime(i + 1),
		}); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i+1 < len(events); i++ {
		if err := b.AddEdge(model.EdgeRecord{From: events[i], To: events[i+1]}); err != nil {
			t.Fatal(err)
		}
	}
	g, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestRecursiveAndWarshallAgree(t *testing.T) {
	g := buildChain(t)

	rec := Compute(g, model.DefaultRelation, Recursive)
	war := Compute(g, model.DefaultRelation, Warshall)

	for _, u := range g.Events {
		for _, v := range g.Events {
			if rec.IsReachable(u, v) != war.IsReachable(u, v) {
				t.Fatalf("recursive and warshall disagree on (%s, %s)", u.Type, v.Type)
			}
		}
	}
}

func TestTransitiveClosureReachability(t *testing.T) {
	g := buildChain(t)
	tc := Compute(g, model.DefaultRelation, Recursive)

	var a, c *model.EventNode
	for _, e := range g.Events {
		switch e.Type.Label {
		case "a":
			a = e
		case "c":
			c = e
		}
	}

	if !tc.IsReachable(a, c) {
		t.Fatal("expected a to reach c transitively through b")
	}
	if tc.IsReachable(c, a) {
		t.Fatal("expected c not to reach a")
	}
	if !tc.IsReachable(g.Initial, c) {
		t.Fatal("expected INITIAL to reach every event")
	}
	if !tc.IsReachable(a, g.Terminal) {
		t.Fatal("expected a to reach TERMINAL")
	}
}

func TestReachableFrom(t *testing.T) {
	g := buildChain(t)
	tc := Compute(g, model.DefaultRelation, Warshall)

	var a *model.EventNode
	for _, e := range g.Events {
		if e.Type.Label == "a" {
			a = e
		}
	}
	reachable := tc.ReachableFrom(a)
	if len(reachable) != 3 { // b, c, TERMINAL
		t.Fatalf("expected 3 reachable nodes from a, got %d", len(reachable))
	}
}
