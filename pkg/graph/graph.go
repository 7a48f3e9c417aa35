package graph

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/gitscope/pkg/errors"
	"github.com/matzehuels/gitscope/pkg/ident"
)

// =============================================================================
// Wire Format
// =============================================================================

// Graph is the serialization format for snapshots.
type Graph struct {
	Nodes    []WireNode    `json:"nodes"`
	Edges    []WireEdge    `json:"edges"`
	Failures []WireFailure `json:"failures,omitempty"`
}

// WireNode is a serialized node. X and Y are set only when a layout was
// attached.
type WireNode struct {
	ID    ident.Identifier `json:"id"`
	Kind  Kind             `json:"kind"`
	Label string           `json:"label"`
	Text  string           `json:"text,omitempty"`
	X     *float64         `json:"x,omitempty"`
	Y     *float64         `json:"y,omitempty"`
}

// WireEdge is a serialized edge.
type WireEdge struct {
	From   ident.Identifier `json:"from"`
	To     ident.Identifier `json:"to"`
	Label  string           `json:"label"`
	Hidden bool             `json:"hidden,omitempty"`
}

// WireFailure is a serialized resolution failure.
type WireFailure struct {
	ID    ident.Identifier `json:"id"`
	Code  errors.Code      `json:"code,omitempty"`
	Error string           `json:"error"`
}

// =============================================================================
// Snapshot ↔ Graph Conversion
// =============================================================================

// FromSnapshot converts a snapshot to its serialization format. pos may be
// nil; otherwise nodes with a position get x/y coordinates.
func FromSnapshot(s *Snapshot, pos map[ident.Identifier]Position) Graph {
	out := Graph{
		Nodes: make([]WireNode, 0, s.Len()),
		Edges: make([]WireEdge, 0, s.EdgeCount()),
	}

	for _, n := range s.Nodes() {
		wn := WireNode{ID: n.ID, Kind: n.Kind, Label: n.Label, Text: n.Text}
		if p, ok := pos[n.ID]; ok {
			x, y := p.X, p.Y
			wn.X, wn.Y = &x, &y
		}
		out.Nodes = append(out.Nodes, wn)
		out.Edges = append(out.Edges, WireEdges(n)...)
	}

	for _, f := range s.Failures() {
		out.Failures = append(out.Failures, WireFailure{
			ID:    f.ID,
			Code:  errors.GetCode(f.Err),
			Error: errors.UserMessage(f.Err),
		})
	}

	return out
}

// WireEdges returns n's edges in serialization format, in edge order.
func WireEdges(n Node) []WireEdge {
	out := make([]WireEdge, len(n.Edges))
	for i, e := range n.Edges {
		out[i] = WireEdge{From: n.ID, To: e.Target, Label: e.Label, Hidden: !e.Visible}
	}
	return out
}

// NodeDocument is a single node with its outgoing edges, for clients that
// fetch nodes one at a time.
type NodeDocument struct {
	WireNode
	Edges []WireEdge `json:"edges"`
}

// Document returns n as a NodeDocument. Edges is never nil.
func Document(n Node) NodeDocument {
	return NodeDocument{
		WireNode: WireNode{ID: n.ID, Kind: n.Kind, Label: n.Label, Text: n.Text},
		Edges:    WireEdges(n),
	}
}

// ToSnapshot converts a Graph back to a snapshot. Edges are attached to
// their source node in the order they appear. Returns an error for edges
// whose source node is missing, duplicate nodes, or unknown kinds.
func ToSnapshot(g Graph) (*Snapshot, error) {
	edges := make(map[ident.Identifier][]Edge, len(g.Nodes))
	for _, we := range g.Edges {
		edges[we.From] = append(edges[we.From], Edge{Target: we.To, Label: we.Label, Visible: !we.Hidden})
	}

	s := NewSnapshot()
	for _, wn := range g.Nodes {
		if !wn.Kind.Valid() {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "node %s: unknown kind %q", wn.ID, wn.Kind)
		}
		n := Node{ID: wn.ID, Kind: wn.Kind, Label: wn.Label, Text: wn.Text, Edges: edges[wn.ID]}
		if err := s.Add(n); err != nil {
			return nil, fmt.Errorf("add node %s: %w", wn.ID, err)
		}
	}

	for _, we := range g.Edges {
		if !s.Has(we.From) {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "edge %s→%s: unknown source node", we.From, we.To)
		}
	}

	for _, wf := range g.Failures {
		var err error
		if wf.Code != "" {
			err = errors.New(wf.Code, "%s", wf.Error)
		} else {
			err = stderrors.New(wf.Error)
		}
		s.Fail(wf.ID, err)
	}

	return s, nil
}

// UnmarshalGraph deserializes JSON bytes to a Graph.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, err
	}
	return g, nil
}

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph converts a snapshot to indented JSON bytes.
func MarshalGraph(s *Snapshot, pos map[ident.Identifier]Position) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeGraphTo(s, pos, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraphFile writes a snapshot to a JSON file.
// The file is created with 0644 permissions.
func WriteGraphFile(s *Snapshot, pos map[ident.Identifier]Position, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeGraphTo(s, pos, f)
}

// WriteGraph writes a snapshot as JSON to an io.Writer.
func WriteGraph(s *Snapshot, pos map[ident.Identifier]Position, w io.Writer) error {
	return writeGraphTo(s, pos, w)
}

// ReadGraphFile reads a JSON file and returns the decoded snapshot.
func ReadGraphFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readGraphFrom(f)
}

// ReadGraph decodes a JSON graph from an io.Reader into a snapshot.
func ReadGraph(r io.Reader) (*Snapshot, error) {
	return readGraphFrom(r)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeGraphTo(s *Snapshot, pos map[ident.Identifier]Position, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromSnapshot(s, pos)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readGraphFrom(r io.Reader) (*Snapshot, error) {
	var data Graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToSnapshot(data)
}
