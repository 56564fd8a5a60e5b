// Package export is the graph-rendering collaborator: it turns a partition
// graph into a Graphviz DOT document and, optionally, rasterizes it. It
// never runs on the engine's own thread; the core defines the shapes it
// renders but never calls into this package itself.
package export

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/synoptic-go/synoptic/internal/partition"
)

// DOT renders g's partition graph as a Graphviz DOT document. Each
// partition becomes one node, labelled with its event type; induced
// transitions become edges labelled with their relation, with the number
// of aggregated event-level deltas noted when it's more than one.
func DOT(g *partition.Graph) string {
	var sb strings.Builder

	sb.WriteString("digraph Synoptic {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=box];\n\n")

	for _, p := range g.Partitions() {
		shape := "box"
		switch {
		case g.IsInitial(p):
			shape = "point"
		case g.IsAccept(p):
			shape = "doublecircle"
		}
		sb.WriteString(fmt.Sprintf("  p%d [label=%q, shape=%s];\n", p.ID, p.EventType.String(), shape))
	}
	sb.WriteString("\n")

	for _, p := range g.Partitions() {
		for _, relation := range g.Source().Relations {
			for _, tr := range g.Adjacent(p, relation) {
				label := relation
				if n := len(tr.Deltas); n > 1 {
					label = fmt.Sprintf("%s (x%d)", relation, n)
				}
				sb.WriteString(fmt.Sprintf("  p%d -> p%d [label=%q];\n", p.ID, tr.Target.ID, label))
			}
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

// Format is a Graphviz output format understood by RenderTo.
type Format = graphviz.Format

const (
	PNG Format = graphviz.PNG
	SVG Format = graphviz.SVG
)

// RenderTo rasterizes g's DOT representation to w in the given format.
func RenderTo(g *partition.Graph, format Format, w io.Writer) error {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return err
	}
	graph, err := graphviz.ParseBytes([]byte(DOT(g)))
	if err != nil {
		return err
	}
	return gv.Render(ctx, graph, format, w)
}

// counterExampleDOT renders a single counter-example path as its own small
// DOT document, useful for including in a diagnostic report alongside the
// full model.
func counterExampleDOT(path []*partition.Partition) string {
	var sb strings.Builder
	sb.WriteString("digraph CounterExample {\n  rankdir=LR;\n")
	for i, p := range path {
		sb.WriteString(fmt.Sprintf("  p%d [label=%q];\n", i, p.EventType.String()))
		if i > 0 {
			sb.WriteString(fmt.Sprintf("  p%d -> p%d;\n", i-1, i))
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}
