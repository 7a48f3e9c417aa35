// Package ident defines the identifier scheme used to address repository
// structure.
//
// An [Identifier] is one of three forms:
//
//   - [Reference]: a reference name such as "HEAD" or "refs/heads/main"
//   - [Index]: the staging area (a singleton)
//   - [Object]: a commit, tree, tag, or blob addressed by its hex hash
//
// Identifiers are plain comparable values and can be used directly as map
// keys. Equal identifiers always name the same thing; what they resolve to
// depends only on the repository state at resolution time.
//
// # External Encoding
//
// Identifiers cross process boundaries (JSON files, HTTP paths, CLI
// arguments) in a compact text form:
//
//	ref:refs/heads/main
//	index
//	obj:3b18e512dba79e4c8300dd08aeb37f8e728b8dad
//
// [Parse] and [Identifier.String] are inverses, and [Identifier] implements
// encoding.TextMarshaler so it works as a JSON value or map key.
package ident
