// Package graph provides the node/edge model produced by the projection
// engine and its serialization format.
//
// # Model
//
// A [Node] is one resolved vertex of the repository object graph: a
// reference, the staging index, or a stored object. Each node carries an
// ordered list of [Edge] values naming further identifiers. Edge order is
// significant: commit parents appear in merge order, tree entries in the
// store's native order.
//
// Nodes hold no layout position and no handle into the object store. They
// are plain values, safe to keep after the repository changes.
//
// # Snapshots
//
// A [Snapshot] is an insertion-ordered collection of nodes collected by a
// traversal, plus any per-identifier failures the traversal ran into.
// Edges may point at identifiers outside the snapshot; those form the
// unexplored frontier.
//
// # Serialization
//
// Snapshots use a node-link JSON format:
//
//	{
//	  "nodes": [{"id": "ref:HEAD", "kind": "tag", "label": "HEAD"}],
//	  "edges": [{"from": "ref:HEAD", "to": "ref:refs/heads/main", "label": "points to"}]
//	}
//
// Identifiers use their external encoding (see package ident). Nodes keep
// snapshot order and edges keep per-node order, so output is deterministic.
//
//	data, _ := graph.MarshalGraph(snap, nil)      // Snapshot → []byte
//	graph.WriteGraphFile(snap, pos, "out.json")   // Snapshot → File
//	snap, _ := graph.ReadGraphFile("out.json")    // File → Snapshot
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
