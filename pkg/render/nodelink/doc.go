// Package nodelink renders projected repository graphs as node-link diagrams.
//
// # Overview
//
// This package produces directed graph visualizations using Graphviz.
// Each node kind gets its own shape:
//
//	commit   ellipse
//	tree     folder
//	tag      rounded box (references and the index are tag-class too)
//	blob     note
//	unknown  dashed grey box
//
// Nodes that failed to resolve are drawn as red octagons. Index edges are
// hidden edges in the projection and are drawn dashed and gray.
//
// # Usage
//
// Convert a snapshot to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(snap, positions, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # DOT Format
//
// The [ToDOT] function produces Graphviz DOT source that can be:
//
//   - Rendered directly via [RenderSVG]
//   - Saved and processed with external Graphviz tools
//   - Customized before rendering
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
