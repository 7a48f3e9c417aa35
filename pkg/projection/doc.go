// Package projection turns repository identifiers into graph nodes.
//
// The [Engine] is the core of gitscope. Given an [ident.Identifier] it asks
// the object store what the identifier names and builds a [graph.Node] with
// one outgoing edge per identifier the thing refers to. Callers explore the
// repository by resolving edge targets in turn; there is no pre-built global
// graph and nothing is cached between calls.
//
// # Projection Rules
//
//	Reference(name)  kind tag     one "points to" edge to Object(hash) or
//	                              Reference(other), depending on the
//	                              store-reported reference type
//	Index            kind tag     one hidden edge per staged entry,
//	                              labeled with the entry path
//	Object(commit)   kind commit  "parent" edges in parent order, then one
//	                              "tree" edge; text is the full message
//	Object(tree)     kind tree    one edge per entry in native order,
//	                              labeled with the entry name
//	Object(tag)      kind tag     one "target" edge
//	Object(blob)     kind blob    no edges
//	Object(other)    kind unknown no edges
//
// Object labels are the first six characters of the hash; reference labels
// are the full name.
//
// # Errors
//
// A reference that does not exist, or exists in neither direct nor symbolic
// form, fails with REFERENCE_UNRESOLVABLE. A missing object fails with
// OBJECT_NOT_FOUND. A malformed identifier fails with INVALID_IDENTIFIER.
// None of these leave the engine in a bad state.
//
// # Index Freshness
//
// The staging area changes underneath the engine. Every index read first
// refreshes the store handle, and the refresh plus the read that depends on
// it run under the engine's mutex so concurrent callers never read through a
// handle that another call is replacing.
package projection
