package graph

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/gitscope/pkg/errors"
	"github.com/matzehuels/gitscope/pkg/ident"
)

const (
	hashA = "1111111111111111111111111111111111111111"
	hashB = "2222222222222222222222222222222222222222"
	hashT = "3333333333333333333333333333333333333333"
)

func commitNode() Node {
	return Node{
		ID:    ident.Object(hashA),
		Kind:  KindCommit,
		Label: "111111",
		Text:  "subject\n\nbody\n",
		Edges: []Edge{
			{Target: ident.Object(hashB), Label: LabelParent, Visible: true},
			{Target: ident.Object(hashT), Label: LabelTree, Visible: true},
		},
	}
}

func TestSnapshotAdd(t *testing.T) {
	s := NewSnapshot()
	if err := s.Add(commitNode()); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := s.Add(commitNode()); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("duplicate Add error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
	if err := s.Add(Node{Kind: KindBlob}); err == nil {
		t.Error("Add with zero identifier should fail")
	}

	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
	if s.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", s.EdgeCount())
	}
}

func TestSnapshotOrder(t *testing.T) {
	s := NewSnapshot()
	ids := []ident.Identifier{ident.Index(), ident.Head(), ident.Object(hashA)}
	for _, id := range ids {
		if err := s.Add(Node{ID: id, Kind: KindTag}); err != nil {
			t.Fatal(err)
		}
	}

	if got := s.IDs(); !slices.Equal(got, ids) {
		t.Errorf("IDs() = %v, want insertion order %v", got, ids)
	}
	for i, n := range s.Nodes() {
		if n.ID != ids[i] {
			t.Errorf("Nodes()[%d] = %v, want %v", i, n.ID, ids[i])
		}
	}
}

func TestSnapshotFrontier(t *testing.T) {
	s := NewSnapshot()
	_ = s.Add(commitNode())
	_ = s.Add(Node{ID: ident.Object(hashT), Kind: KindTree})
	s.Fail(ident.Object(hashB), errors.New(errors.ErrCodeObjectNotFound, "missing"))

	if got := s.Frontier(); len(got) != 0 {
		t.Errorf("Frontier() = %v, want empty", got)
	}

	_ = s.Add(Node{
		ID:   ident.Head(),
		Kind: KindTag,
		Edges: []Edge{
			{Target: ident.Reference("refs/heads/main")},
			{Target: ident.Reference("refs/heads/main")},
			{Target: ident.Object(hashA)},
		},
	})
	want := []ident.Identifier{ident.Reference("refs/heads/main")}
	if got := s.Frontier(); !slices.Equal(got, want) {
		t.Errorf("Frontier() = %v, want %v", got, want)
	}
}

func TestMarshalGraph(t *testing.T) {
	s := NewSnapshot()
	_ = s.Add(commitNode())
	s.Fail(ident.Reference("refs/heads/gone"), errors.New(errors.ErrCodeReferenceUnresolvable, "reference refs/heads/gone not found"))

	pos := map[ident.Identifier]Position{ident.Object(hashA): {X: 0.25, Y: 0.5}}
	data, err := MarshalGraph(s, pos)
	if err != nil {
		t.Fatalf("MarshalGraph: %v", err)
	}

	var result Graph
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(result.Nodes) != 1 {
		t.Fatalf("nodes = %d, want 1", len(result.Nodes))
	}
	n := result.Nodes[0]
	if n.X == nil || *n.X != 0.25 || n.Y == nil || *n.Y != 0.5 {
		t.Errorf("position = (%v, %v), want (0.25, 0.5)", n.X, n.Y)
	}
	if n.Text != "subject\n\nbody\n" {
		t.Errorf("text = %q, want the full message", n.Text)
	}

	wantLabels := []string{LabelParent, LabelTree}
	for i, e := range result.Edges {
		if e.Label != wantLabels[i] {
			t.Errorf("edge %d label = %q, want %q", i, e.Label, wantLabels[i])
		}
	}

	if len(result.Failures) != 1 || result.Failures[0].Code != errors.ErrCodeReferenceUnresolvable {
		t.Errorf("failures = %+v, want one REFERENCE_UNRESOLVABLE", result.Failures)
	}
}

func TestMarshalGraphEmpty(t *testing.T) {
	data, err := MarshalGraph(NewSnapshot(), nil)
	if err != nil {
		t.Fatalf("MarshalGraph: %v", err)
	}
	if !strings.Contains(string(data), `"nodes": []`) || !strings.Contains(string(data), `"edges": []`) {
		t.Errorf("empty snapshot should encode empty arrays, got %s", data)
	}
	if strings.Contains(string(data), "failures") {
		t.Errorf("empty snapshot should omit failures, got %s", data)
	}
}

func TestRoundTrip(t *testing.T) {
	s := NewSnapshot()
	_ = s.Add(commitNode())
	_ = s.Add(Node{
		ID:    ident.Index(),
		Kind:  KindTag,
		Label: "index",
		Edges: []Edge{{Target: ident.Object(hashB), Label: "dir/file.txt"}},
	})
	s.Fail(ident.Object(hashT), errors.New(errors.ErrCodeObjectNotFound, "object not found"))

	var buf bytes.Buffer
	if err := WriteGraph(s, nil, &buf); err != nil {
		t.Fatalf("WriteGraph: %v", err)
	}

	got, err := ReadGraph(&buf)
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}

	if !slices.Equal(got.IDs(), s.IDs()) {
		t.Errorf("IDs = %v, want %v", got.IDs(), s.IDs())
	}
	for _, want := range s.Nodes() {
		n, ok := got.Node(want.ID)
		if !ok {
			t.Fatalf("node %v missing after round trip", want.ID)
		}
		if n.Kind != want.Kind || n.Label != want.Label || n.Text != want.Text {
			t.Errorf("node %v = %+v, want %+v", want.ID, n, want)
		}
		if !slices.Equal(n.Edges, want.Edges) {
			t.Errorf("node %v edges = %v, want %v", want.ID, n.Edges, want.Edges)
		}
	}

	failures := got.Failures()
	if len(failures) != 1 || !errors.Is(failures[0].Err, errors.ErrCodeObjectNotFound) {
		t.Errorf("failures = %v, want one OBJECT_NOT_FOUND", failures)
	}
}

func TestReadGraph(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantNodes int
		wantEdges int
		wantErr   bool
	}{
		{
			name: "Valid",
			input: `{
				"nodes": [{"id": "ref:HEAD", "kind": "tag", "label": "HEAD"}],
				"edges": [{"from": "ref:HEAD", "to": "ref:refs/heads/main", "label": "points to"}]
			}`,
			wantNodes: 1,
			wantEdges: 1,
		},
		{
			name:  "Empty",
			input: `{"nodes": [], "edges": []}`,
		},
		{
			name:    "InvalidJSON",
			input:   `{invalid json}`,
			wantErr: true,
		},
		{
			name:    "InvalidIdentifier",
			input:   `{"nodes": [{"id": "obj:xyz", "kind": "blob"}], "edges": []}`,
			wantErr: true,
		},
		{
			name:    "UnknownKind",
			input:   `{"nodes": [{"id": "index", "kind": "branch"}], "edges": []}`,
			wantErr: true,
		},
		{
			name: "DanglingEdgeSource",
			input: `{
				"nodes": [],
				"edges": [{"from": "ref:HEAD", "to": "index", "label": "x"}]
			}`,
			wantErr: true,
		},
		{
			name: "DuplicateNode",
			input: `{
				"nodes": [{"id": "index", "kind": "tag"}, {"id": "index", "kind": "tag"}],
				"edges": []
			}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ReadGraph(strings.NewReader(tt.input))

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadGraph: %v", err)
			}

			if got := s.Len(); got != tt.wantNodes {
				t.Errorf("nodes = %d, want %d", got, tt.wantNodes)
			}
			if got := s.EdgeCount(); got != tt.wantEdges {
				t.Errorf("edges = %d, want %d", got, tt.wantEdges)
			}
		})
	}
}

func TestReadGraphFile(t *testing.T) {
	s := NewSnapshot()
	_ = s.Add(commitNode())

	path := filepath.Join(t.TempDir(), "graph.json")
	if err := WriteGraphFile(s, nil, path); err != nil {
		t.Fatalf("WriteGraphFile: %v", err)
	}

	got, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile: %v", err)
	}
	if got.Len() != 1 {
		t.Errorf("nodes = %d, want 1", got.Len())
	}
}

func TestReadGraphFileNotFound(t *testing.T) {
	_, err := ReadGraphFile(filepath.Join(t.TempDir(), "nonexistent.json"))
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
	if !stderrors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want a not-exist error", err)
	}
}

func TestNodeTargets(t *testing.T) {
	want := []ident.Identifier{ident.Object(hashB), ident.Object(hashT)}
	if got := commitNode().Targets(); !slices.Equal(got, want) {
		t.Errorf("Targets() = %v, want %v", got, want)
	}
}

func TestDocument(t *testing.T) {
	doc := Document(commitNode())
	if doc.ID != ident.Object(hashA) || doc.Text != "subject\n\nbody\n" {
		t.Errorf("Document() node = %+v", doc.WireNode)
	}
	if len(doc.Edges) != 2 || doc.Edges[0].From != doc.ID || doc.Edges[1].Label != LabelTree {
		t.Errorf("Document() edges = %+v", doc.Edges)
	}

	data, err := json.Marshal(Document(Node{ID: ident.Index(), Kind: KindTag, Label: "index"}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"edges":[]`) {
		t.Errorf("leaf document = %s, want an empty edge list", data)
	}
}
