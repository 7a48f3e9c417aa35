package cli

import (
	"context"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/gitscope/pkg/errors"
	"github.com/matzehuels/gitscope/pkg/ident"
	"github.com/matzehuels/gitscope/pkg/projection"
	"github.com/matzehuels/gitscope/pkg/store"
	"github.com/matzehuels/gitscope/pkg/store/memstore"
)

const (
	hTip  = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	hTree = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	hGone = "cccccccccccccccccccccccccccccccccccccccc"
)

func exploreEngine() *projection.Engine {
	s := memstore.New()
	s.SetSymbolicReference("HEAD", "refs/heads/main")
	s.SetReference("refs/heads/main", hTip)
	s.AddObject(&store.Commit{Hash: hTip, Message: "tip subject\n\nbody\n", Parents: []string{hGone}, Tree: hTree})
	s.AddObject(&store.Tree{Hash: hTree})
	return projection.New(s)
}

// step applies msg and runs any command it returns, feeding the result back
// until the model settles.
func step(t *testing.T, m ExploreModel, msg tea.Msg) ExploreModel {
	t.Helper()
	for msg != nil {
		next, cmd := m.Update(msg)
		m = next.(ExploreModel)
		msg = nil
		if cmd != nil {
			msg = cmd()
		}
		if _, ok := msg.(tea.QuitMsg); ok {
			t.Fatal("unexpected quit")
		}
	}
	return m
}

func key(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func start(t *testing.T) ExploreModel {
	t.Helper()
	m := NewExploreModel(context.Background(), exploreEngine(), ident.Head())
	return step(t, m, m.Init()())
}

func currentID(t *testing.T, m ExploreModel) ident.Identifier {
	t.Helper()
	n, ok := m.Current()
	if !ok {
		t.Fatal("no current node")
	}
	return n.ID
}

func TestExploreFollowAndBack(t *testing.T) {
	m := start(t)
	if got := currentID(t, m); got != ident.Head() {
		t.Fatalf("start = %v, want HEAD", got)
	}

	m = step(t, m, key(tea.KeyEnter))
	if got := currentID(t, m); got != ident.Reference("refs/heads/main") {
		t.Fatalf("after enter = %v, want refs/heads/main", got)
	}

	m = step(t, m, key(tea.KeyEnter))
	if got := currentID(t, m); got != ident.Object(hTip) {
		t.Fatalf("after second enter = %v, want the commit", got)
	}
	if !strings.Contains(m.View(), "tip subject") {
		t.Errorf("view does not show the commit subject:\n%s", m.View())
	}

	m = step(t, m, key(tea.KeyBackspace))
	m = step(t, m, key(tea.KeyLeft))
	if got := currentID(t, m); got != ident.Head() {
		t.Errorf("after going back twice = %v, want HEAD", got)
	}

	// Going back past the start is a no-op.
	m = step(t, m, key(tea.KeyBackspace))
	if got := currentID(t, m); got != ident.Head() {
		t.Errorf("back at start = %v, want HEAD", got)
	}
}

func TestExploreCursor(t *testing.T) {
	m := start(t)
	m = step(t, m, key(tea.KeyEnter))
	m = step(t, m, key(tea.KeyEnter)) // commit: parent, tree

	m = step(t, m, key(tea.KeyDown))
	m = step(t, m, key(tea.KeyDown))
	if m.Cursor != 1 {
		t.Errorf("Cursor = %d, want clamped to 1", m.Cursor)
	}

	m = step(t, m, key(tea.KeyEnter))
	if got := currentID(t, m); got != ident.Object(hTree) {
		t.Errorf("followed %v, want the tree", got)
	}
	if m.Cursor != 0 {
		t.Errorf("Cursor = %d after moving, want 0", m.Cursor)
	}
}

func TestExploreResizeKeepsCursorVisible(t *testing.T) {
	s := memstore.New()
	s.SetReference("refs/heads/main", hTree)
	var entries []store.TreeEntry
	for i := range 20 {
		entries = append(entries, store.TreeEntry{Name: fmt.Sprintf("f%02d", i), Hash: hGone})
	}
	s.AddObject(&store.Tree{Hash: hTree, Entries: entries})

	m := NewExploreModel(context.Background(), projection.New(s), ident.Object(hTree))
	m = step(t, m, m.Init()())
	m = step(t, m, tea.WindowSizeMsg{Width: 80, Height: 40})
	for range 18 {
		m = step(t, m, key(tea.KeyDown))
	}
	if m.Cursor != 18 || m.Offset != 0 {
		t.Fatalf("Cursor, Offset = %d, %d, want 18, 0", m.Cursor, m.Offset)
	}

	m = step(t, m, tea.WindowSizeMsg{Width: 80, Height: 20})
	if m.Height != 8 {
		t.Fatalf("Height = %d, want 8", m.Height)
	}
	if m.Cursor < m.Offset || m.Cursor >= m.Offset+m.Height {
		t.Errorf("Cursor %d outside visible rows [%d, %d)", m.Cursor, m.Offset, m.Offset+m.Height)
	}
	if !strings.Contains(m.View(), "f18") {
		t.Errorf("view does not show the selected entry:\n%s", m.View())
	}
}

func TestExploreUnresolvableTarget(t *testing.T) {
	m := start(t)
	m = step(t, m, key(tea.KeyEnter))
	m = step(t, m, key(tea.KeyEnter))

	// The first edge of the commit points at a parent the store lacks.
	m = step(t, m, key(tea.KeyEnter))
	if got := currentID(t, m); got != ident.Object(hTip) {
		t.Errorf("current = %v, want to stay on the commit", got)
	}
	if !errors.Is(m.err, errors.ErrCodeObjectNotFound) {
		t.Errorf("err = %v, want %s", m.err, errors.ErrCodeObjectNotFound)
	}
	if !strings.Contains(m.View(), "does not exist") {
		t.Errorf("view does not show the error:\n%s", m.View())
	}

	m = step(t, m, key(tea.KeyBackspace))
	if got := currentID(t, m); got != ident.Reference("refs/heads/main") {
		t.Errorf("back = %v, want refs/heads/main", got)
	}
	if m.err != nil {
		t.Errorf("err = %v, want cleared", m.err)
	}
}

func TestExploreStartFailure(t *testing.T) {
	m := NewExploreModel(context.Background(), exploreEngine(), ident.Reference("refs/heads/gone"))
	m = step(t, m, m.Init()())

	if _, ok := m.Current(); ok {
		t.Error("Current() should be empty when the start cannot be resolved")
	}
	if !strings.Contains(m.View(), "refs/heads/gone") {
		t.Errorf("view does not name the missing reference:\n%s", m.View())
	}
}

func TestExploreQuit(t *testing.T) {
	m := start(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
