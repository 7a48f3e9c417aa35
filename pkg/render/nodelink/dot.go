package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/gitscope/pkg/graph"
	"github.com/matzehuels/gitscope/pkg/ident"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the first line of the commit message to commit labels
	// and the object kind to tree and blob labels.
	// When false, only the short label is shown.
	Detailed bool

	// Frontier draws unresolved edge targets as dotted placeholder nodes.
	// When false, edges into unresolved targets are omitted.
	Frontier bool
}

// Positions scale: unit-square coordinates become inches on a square canvas.
const canvasInches = 12.0

// ToDOT converts a snapshot to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
//
// Nodes are shaped by kind. Hidden edges (index entries) are drawn dashed
// and gray. When pos is non-nil, each placed node gets a pinned pos
// attribute, honored by the neato and fdp engines.
func ToDOT(s *graph.Snapshot, pos map[ident.Identifier]graph.Position, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [style=\"filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=14, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range s.Nodes() {
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed))
		if p, ok := pos[n.ID]; ok {
			attrs = append(attrs, fmt.Sprintf("pos=\"%.2f,%.2f!\"", p.X*canvasInches, p.Y*canvasInches))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID.String(), strings.Join(attrs, ", "))
	}

	for _, f := range s.Failures() {
		fmt.Fprintf(&buf, "  %q [label=%q, shape=octagon, fillcolor=\"#fde2e2\", color=\"#c0392b\"];\n",
			f.ID.String(), f.ID.Short())
	}

	frontier := ident.NewSet()
	if opts.Frontier {
		for _, id := range s.Frontier() {
			frontier.Add(id)
			fmt.Fprintf(&buf, "  %q [label=%q, shape=plaintext, style=dotted, fontcolor=gray];\n", id.String(), id.Short())
		}
	}

	failed := ident.NewSet()
	for _, f := range s.Failures() {
		failed.Add(f.ID)
	}

	buf.WriteString("\n")
	for _, n := range s.Nodes() {
		for _, e := range n.Edges {
			if !s.Has(e.Target) && !failed.Has(e.Target) && !frontier.Has(e.Target) {
				continue
			}
			fmt.Fprintf(&buf, "  %q -> %q [%s];\n", n.ID.String(), e.Target.String(), strings.Join(fmtEdgeAttrs(e), ", "))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n graph.Node, detailed bool) string {
	if !detailed {
		return n.Label
	}

	switch n.Kind {
	case graph.KindCommit:
		subject, _, _ := strings.Cut(n.Text, "\n")
		if subject == "" {
			return n.Label
		}
		return n.Label + "\n" + truncate(subject, 40)
	case graph.KindBlob, graph.KindTree, graph.KindUnknown:
		return n.Label + "\n" + string(n.Kind)
	default:
		return n.Label
	}
}

func fmtAttrs(n graph.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch n.Kind {
	case graph.KindCommit:
		attrs = append(attrs, "shape=ellipse", "fillcolor=\"#e8f1fb\"")
	case graph.KindTree:
		attrs = append(attrs, "shape=folder", "fillcolor=\"#eaf6e9\"")
	case graph.KindTag:
		attrs = append(attrs, "shape=box", "style=\"rounded,filled\"", "fillcolor=\"#fff4d6\"")
	case graph.KindBlob:
		attrs = append(attrs, "shape=note")
	default:
		attrs = append(attrs, "shape=box", "style=\"filled,dashed\"", "fillcolor=lightgrey")
	}
	return attrs
}

func fmtEdgeAttrs(e graph.Edge) []string {
	attrs := []string{fmt.Sprintf("label=%q", e.Label)}
	if !e.Visible {
		attrs = append(attrs, "style=dashed", "color=gray", "fontcolor=gray")
	}
	return attrs
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales with its
// container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
