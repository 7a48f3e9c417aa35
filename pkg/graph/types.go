package graph

import (
	"github.com/matzehuels/gitscope/pkg/errors"
	"github.com/matzehuels/gitscope/pkg/ident"
)

// =============================================================================
// Constants
// =============================================================================

// Kind mirrors the nature of the resolved thing, not the identifier's tag:
// references and the index are tag-class nodes.
type Kind string

// Node kinds.
const (
	KindCommit  Kind = "commit"
	KindTree    Kind = "tree"
	KindTag     Kind = "tag"
	KindBlob    Kind = "blob"
	KindUnknown Kind = "unknown"
)

// Edge labels.
const (
	LabelPointsTo = "points to"
	LabelParent   = "parent"
	LabelTree     = "tree"
	LabelTarget   = "target"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindCommit, KindTree, KindTag, KindBlob, KindUnknown:
		return true
	}
	return false
}

// =============================================================================
// Node and Edge
// =============================================================================

// Edge is a labeled, directed link to another identifier.
type Edge struct {
	Target  ident.Identifier
	Label   string
	Visible bool
}

// Node is one resolved vertex.
type Node struct {
	ID    ident.Identifier
	Kind  Kind
	Label string // Reference name, "index", or short hash
	Text  string // Commit message; empty for other kinds
	Edges []Edge
}

// Targets returns the edge targets in edge order.
func (n Node) Targets() []ident.Identifier {
	out := make([]ident.Identifier, len(n.Edges))
	for i, e := range n.Edges {
		out[i] = e.Target
	}
	return out
}

// =============================================================================
// Snapshot
// =============================================================================

// Failure records an identifier that could not be resolved.
type Failure struct {
	ID  ident.Identifier
	Err error
}

// Snapshot is an insertion-ordered set of nodes plus the failures met while
// collecting them. The zero value is not usable; call [NewSnapshot].
type Snapshot struct {
	order    []ident.Identifier
	nodes    map[ident.Identifier]Node
	failures []Failure
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{nodes: make(map[ident.Identifier]Node)}
}

// Add appends n. Returns an error if n's identifier is invalid or already
// present.
func (s *Snapshot) Add(n Node) error {
	if err := n.ID.Validate(); err != nil {
		return err
	}
	if _, ok := s.nodes[n.ID]; ok {
		return errors.New(errors.ErrCodeInvalidInput, "duplicate node %s", n.ID)
	}
	s.order = append(s.order, n.ID)
	s.nodes[n.ID] = n
	return nil
}

// Fail records that id could not be resolved.
func (s *Snapshot) Fail(id ident.Identifier, err error) {
	s.failures = append(s.failures, Failure{ID: id, Err: err})
}

// Node returns the node for id.
func (s *Snapshot) Node(id ident.Identifier) (Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Has reports whether id was resolved into the snapshot.
func (s *Snapshot) Has(id ident.Identifier) bool {
	_, ok := s.nodes[id]
	return ok
}

// Nodes returns the nodes in insertion order.
func (s *Snapshot) Nodes() []Node {
	out := make([]Node, len(s.order))
	for i, id := range s.order {
		out[i] = s.nodes[id]
	}
	return out
}

// IDs returns the node identifiers in insertion order.
func (s *Snapshot) IDs() []ident.Identifier {
	return append([]ident.Identifier(nil), s.order...)
}

// Failures returns the recorded failures in the order they happened.
func (s *Snapshot) Failures() []Failure {
	return append([]Failure(nil), s.failures...)
}

// Len returns the number of nodes.
func (s *Snapshot) Len() int { return len(s.order) }

// EdgeCount returns the total number of edges across all nodes.
func (s *Snapshot) EdgeCount() int {
	n := 0
	for _, node := range s.nodes {
		n += len(node.Edges)
	}
	return n
}

// Frontier returns edge targets that are neither resolved nor failed,
// in first-seen order.
func (s *Snapshot) Frontier() []ident.Identifier {
	failed := make(ident.Set, len(s.failures))
	for _, f := range s.failures {
		failed.Add(f.ID)
	}

	seen := ident.NewSet()
	var out []ident.Identifier
	for _, id := range s.order {
		for _, e := range s.nodes[id].Edges {
			if s.Has(e.Target) || failed.Has(e.Target) || seen.Has(e.Target) {
				continue
			}
			seen.Add(e.Target)
			out = append(out, e.Target)
		}
	}
	return out
}

// Position is a node's placement in the unit square.
type Position struct {
	X float64
	Y float64
}
