package pipeline

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/gitscope/pkg/errors"
	"github.com/matzehuels/gitscope/pkg/graph"
	"github.com/matzehuels/gitscope/pkg/ident"
	"github.com/matzehuels/gitscope/pkg/projection"
	"github.com/matzehuels/gitscope/pkg/store"
	"github.com/matzehuels/gitscope/pkg/store/memstore"
)

const (
	hHead   = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	hParent = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	hGone   = "dddddddddddddddddddddddddddddddddddddddd"
	hTree   = "eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"
	hBlob   = "ffffffffffffffffffffffffffffffffffffffff"
)

// newEngine builds HEAD -> main -> commit(parent, missing parent) with a
// shared tree holding one blob, and one staged file.
func newEngine() *projection.Engine {
	s := memstore.New()
	s.SetSymbolicReference("HEAD", "refs/heads/main")
	s.SetReference("refs/heads/main", hHead)
	s.AddObject(&store.Commit{Hash: hHead, Message: "tip\n", Parents: []string{hParent, hGone}, Tree: hTree})
	s.AddObject(&store.Commit{Hash: hParent, Message: "root\n", Tree: hTree})
	s.AddObject(&store.Tree{Hash: hTree, Entries: []store.TreeEntry{{Name: "file.txt", Hash: hBlob}}})
	s.AddObject(&store.Blob{Hash: hBlob, Size: 3})
	s.StageIndex(store.IndexEntry{Hash: hBlob, Path: "file.txt"})
	return projection.New(s)
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"json", false},
		{"dot", false},
		{"svg", false},
		{"png", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s, want %s", tt.format, errors.GetCode(err), errors.ErrCodeInvalidFormat)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "dot"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}

	if opts.MaxDepth != DefaultMaxDepth {
		t.Errorf("MaxDepth = %d, want %d", opts.MaxDepth, DefaultMaxDepth)
	}
	if opts.MaxNodes != DefaultMaxNodes {
		t.Errorf("MaxNodes = %d, want %d", opts.MaxNodes, DefaultMaxNodes)
	}
	if opts.Seed != 0 {
		t.Errorf("Seed = %d, want 0 kept as given", opts.Seed)
	}
	if !slices.Equal(opts.Formats, []string{FormatJSON}) {
		t.Errorf("Formats = %v, want [json]", opts.Formats)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"InvalidStart", Options{Start: []ident.Identifier{{Kind: ident.KindObject, Name: "nope"}}}},
		{"NegativeDepth", Options{MaxDepth: -5}},
		{"NegativeNodes", Options{MaxNodes: -2}},
		{"BadFormat", Options{Formats: []string{"pdf"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{MaxDepth: 3}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	before := opts.MaxDepth

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.MaxDepth != before {
		t.Error("MaxDepth changed on second call")
	}
}

func TestWalkFromHead(t *testing.T) {
	r := NewRunner(newEngine(), nil)

	snap, err := r.Walk(context.Background(), Options{Start: []ident.Identifier{ident.Head()}, MaxDepth: Unlimited})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	want := []ident.Identifier{
		ident.Head(),
		ident.Reference("refs/heads/main"),
		ident.Object(hHead),
		ident.Object(hParent),
		ident.Object(hTree),
		ident.Object(hBlob),
	}
	if got := snap.IDs(); !slices.Equal(got, want) {
		t.Errorf("walk order = %v, want %v", got, want)
	}

	failures := snap.Failures()
	if len(failures) != 1 || failures[0].ID != ident.Object(hGone) {
		t.Fatalf("failures = %v, want the missing parent", failures)
	}
	if !errors.Is(failures[0].Err, errors.ErrCodeObjectNotFound) {
		t.Errorf("failure code = %s, want %s", errors.GetCode(failures[0].Err), errors.ErrCodeObjectNotFound)
	}
}

func TestWalkMaxDepth(t *testing.T) {
	r := NewRunner(newEngine(), nil)

	snap, err := r.Walk(context.Background(), Options{Start: []ident.Identifier{ident.Head()}, MaxDepth: 2})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	want := []ident.Identifier{ident.Head(), ident.Reference("refs/heads/main"), ident.Object(hHead)}
	if got := snap.IDs(); !slices.Equal(got, want) {
		t.Errorf("walk = %v, want %v", got, want)
	}
	if got := len(snap.Frontier()); got != 3 {
		t.Errorf("frontier size = %d, want 3 (two parents and the tree)", got)
	}
}

func TestWalkMaxNodes(t *testing.T) {
	r := NewRunner(newEngine(), nil)

	snap, err := r.Walk(context.Background(), Options{Start: []ident.Identifier{ident.Head()}, MaxNodes: 2})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if snap.Len() != 2 {
		t.Errorf("nodes = %d, want 2", snap.Len())
	}
}

func TestWalkHiddenEdges(t *testing.T) {
	r := NewRunner(newEngine(), nil)
	ctx := context.Background()

	snap, err := r.Walk(ctx, Options{Start: []ident.Identifier{ident.Index()}})
	if err != nil {
		t.Fatal(err)
	}
	if snap.Len() != 1 {
		t.Errorf("without FollowHidden nodes = %d, want only the index", snap.Len())
	}

	snap, err = r.Walk(ctx, Options{Start: []ident.Identifier{ident.Index()}, FollowHidden: true})
	if err != nil {
		t.Fatal(err)
	}
	if !snap.Has(ident.Object(hBlob)) {
		t.Errorf("with FollowHidden walk = %v, want the staged blob", snap.IDs())
	}
}

func TestWalkAllRoots(t *testing.T) {
	r := NewRunner(newEngine(), nil)

	snap, err := r.Walk(context.Background(), Options{MaxDepth: 1})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	for _, id := range []ident.Identifier{ident.Head(), ident.Index(), ident.Reference("refs/heads/main"), ident.Object(hHead)} {
		if !snap.Has(id) {
			t.Errorf("walk missing %v", id)
		}
	}
}

func TestWalkCanceled(t *testing.T) {
	r := NewRunner(newEngine(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Walk(ctx, Options{Start: []ident.Identifier{ident.Head()}}); err == nil {
		t.Error("Walk with canceled context should fail")
	}
}

func TestExecute(t *testing.T) {
	r := NewRunner(newEngine(), nil)

	result, err := r.Execute(context.Background(), Options{
		Start:   []ident.Identifier{ident.Head()},
		Formats: []string{FormatJSON, FormatDOT},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Stats.NodeCount != 6 || result.Stats.Failures != 1 {
		t.Errorf("stats = %+v, want 6 nodes and 1 failure", result.Stats)
	}
	if len(result.Positions) != result.Stats.NodeCount {
		t.Errorf("positions = %d, want one per node", len(result.Positions))
	}

	var g graph.Graph
	if err := json.Unmarshal(result.Artifacts[FormatJSON], &g); err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if len(g.Nodes) != 6 || len(g.Failures) != 1 {
		t.Errorf("json artifact has %d nodes and %d failures", len(g.Nodes), len(g.Failures))
	}
	for _, n := range g.Nodes {
		if n.X == nil || n.Y == nil {
			t.Errorf("node %v has no position", n.ID)
		}
	}

	dot := string(result.Artifacts[FormatDOT])
	if !strings.HasPrefix(dot, "digraph G {") {
		t.Errorf("dot artifact = %q", dot)
	}
	if _, ok := result.Artifacts[FormatSVG]; ok {
		t.Error("svg rendered without being requested")
	}
}

func TestRenderUnsupportedFormat(t *testing.T) {
	_, err := Render(context.Background(), graph.NewSnapshot(), nil, Options{Formats: []string{"gif"}})
	if err == nil {
		t.Error("Render with unsupported format should fail")
	}
}
