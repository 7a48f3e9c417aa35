// Package pkg provides the core libraries for gitscope, a browser for the
// object graph of a git repository.
//
// # Overview
//
// gitscope presents a repository as a directed graph: references, the
// staging index, and every commit, tree, blob, and tag object are nodes, and
// each thing a node points at is an outgoing edge. Nodes are built on demand
// from an identifier, so callers explore the graph lazily instead of loading
// the whole repository.
//
// # Architecture
//
// The typical data flow:
//
//	git repository
//	     ↓
//	[store] (read-only object store: refs, objects, index)
//	     ↓
//	[projection] (identifier → node with outgoing edges)
//	     ↓
//	[pipeline] (bounded walk → layout → render)
//	     ↓
//	JSON / DOT / SVG output, HTTP API, or terminal UI
//
// # Quick Start
//
// Build a single node:
//
//	s, _ := gitstore.Open(".")
//	defer s.Close()
//
//	engine := projection.New(s)
//	node, _ := engine.BuildNode(ctx, ident.Head())
//	for _, e := range node.Edges {
//	    fmt.Println(e.Label, "→", e.Target)
//	}
//
// Export a bounded neighborhood of HEAD:
//
//	runner := pipeline.NewRunner(engine, logger)
//	result, _ := runner.Execute(ctx, pipeline.Options{
//	    Start:    []ident.Identifier{ident.Head()},
//	    MaxDepth: 3,
//	    Formats:  []string{"json", "svg"},
//	})
//
// # Main Packages
//
// [ident] - The identifier scheme: a reference name, the index, or an object
// hash, with a stable text encoding.
//
// [store] - The object store interface. [store/gitstore] reads an on-disk
// repository with go-git; [store/memstore] is an in-memory store for tests.
//
// [projection] - The engine that turns identifiers into nodes and enumerates
// the repository's roots.
//
// [graph] - Nodes, edges, snapshots, and their JSON wire format.
//
// [pipeline] - Walks the graph breadth-first from a set of start identifiers
// under depth and node limits, then lays out and renders the result.
//
// [layout] - Seeded pseudo-random positions for nodes.
//
// [render/nodelink] - Graphviz DOT and SVG output.
//
// [server] - Read-only HTTP API over the engine.
//
// [config] - TOML configuration file.
//
// [errors] - Coded errors shared by every package.
//
// [observability] - Hooks for tracing projection, pipeline, and HTTP work.
//
// [ident]: https://pkg.go.dev/github.com/matzehuels/gitscope/pkg/ident
// [store]: https://pkg.go.dev/github.com/matzehuels/gitscope/pkg/store
// [store/gitstore]: https://pkg.go.dev/github.com/matzehuels/gitscope/pkg/store/gitstore
// [store/memstore]: https://pkg.go.dev/github.com/matzehuels/gitscope/pkg/store/memstore
// [projection]: https://pkg.go.dev/github.com/matzehuels/gitscope/pkg/projection
// [graph]: https://pkg.go.dev/github.com/matzehuels/gitscope/pkg/graph
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/gitscope/pkg/pipeline
// [layout]: https://pkg.go.dev/github.com/matzehuels/gitscope/pkg/layout
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/gitscope/pkg/render/nodelink
// [server]: https://pkg.go.dev/github.com/matzehuels/gitscope/pkg/server
// [config]: https://pkg.go.dev/github.com/matzehuels/gitscope/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/gitscope/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/gitscope/pkg/observability
package pkg
