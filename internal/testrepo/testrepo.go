// Package testrepo builds small on-disk Git repositories for tests.
//
// Repositories are created with go-git in a temporary directory owned by the
// test, so they are removed automatically when the test finishes.
package testrepo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repo is a repository under construction.
type Repo struct {
	Dir string
	Git *git.Repository

	worktree *git.Worktree
	clock    time.Time
}

// Init creates an empty non-bare repository in a fresh temp directory.
func Init(t testing.TB) *Repo {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init repository: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("open worktree: %v", err)
	}
	return &Repo{
		Dir:      dir,
		Git:      repo,
		worktree: wt,
		clock:    time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// WriteFile writes content to path (relative to the working tree),
// creating parent directories as needed.
func (r *Repo) WriteFile(t testing.TB, path, content string) {
	t.Helper()

	full := filepath.Join(r.Dir, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Stage adds path to the index and returns the staged blob hash.
func (r *Repo) Stage(t testing.TB, path string) string {
	t.Helper()

	h, err := r.worktree.Add(path)
	if err != nil {
		t.Fatalf("stage %s: %v", path, err)
	}
	return h.String()
}

// Put writes and stages a file in one step.
func (r *Repo) Put(t testing.TB, path, content string) string {
	t.Helper()
	r.WriteFile(t, path, content)
	return r.Stage(t, path)
}

// Commit records the index as a new commit on the current branch. With no
// parents the current HEAD is used; explicit parents are kept in the given
// order.
func (r *Repo) Commit(t testing.TB, message string, parents ...string) string {
	t.Helper()

	r.clock = r.clock.Add(time.Minute)
	sig := &object.Signature{Name: "Test Author", Email: "author@example.com", When: r.clock}

	opts := &git.CommitOptions{Author: sig, Committer: sig}
	for _, p := range parents {
		opts.Parents = append(opts.Parents, plumbing.NewHash(p))
	}

	h, err := r.worktree.Commit(message, opts)
	if err != nil {
		t.Fatalf("commit %q: %v", message, err)
	}
	return h.String()
}

// Tag creates an annotated tag on target and returns the tag object hash.
func (r *Repo) Tag(t testing.TB, name, target, message string) string {
	t.Helper()

	r.clock = r.clock.Add(time.Minute)
	ref, err := r.Git.CreateTag(name, plumbing.NewHash(target), &git.CreateTagOptions{
		Tagger:  &object.Signature{Name: "Test Tagger", Email: "tagger@example.com", When: r.clock},
		Message: message,
	})
	if err != nil {
		t.Fatalf("tag %s: %v", name, err)
	}
	return ref.Hash().String()
}

// SetRef points the reference name directly at hash.
func (r *Repo) SetRef(t testing.TB, name, hash string) {
	t.Helper()

	ref := plumbing.NewHashReference(plumbing.ReferenceName(name), plumbing.NewHash(hash))
	if err := r.Git.Storer.SetReference(ref); err != nil {
		t.Fatalf("set reference %s: %v", name, err)
	}
}

// SetSymbolicRef points the reference name at the reference target.
func (r *Repo) SetSymbolicRef(t testing.TB, name, target string) {
	t.Helper()

	ref := plumbing.NewSymbolicReference(plumbing.ReferenceName(name), plumbing.ReferenceName(target))
	if err := r.Git.Storer.SetReference(ref); err != nil {
		t.Fatalf("set reference %s: %v", name, err)
	}
}

// AddConflict appends unmerged index entries for path, one per stage
// (1 = base, 2 = ours, 3 = theirs), each pointing at the given blob hash.
func (r *Repo) AddConflict(t testing.TB, path string, blobs [3]string) {
	t.Helper()

	idx, err := r.Git.Storer.Index()
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	for i, b := range blobs {
		idx.Entries = append(idx.Entries, &index.Entry{
			Name:  path,
			Hash:  plumbing.NewHash(b),
			Mode:  0o100644,
			Stage: index.Stage(i + 1),
		})
	}
	if err := r.Git.Storer.SetIndex(idx); err != nil {
		t.Fatalf("write index: %v", err)
	}
}

// Fixture is a small history with a merge, tags, and extra references:
//
//	Root   initial commit: a.txt, dir/b.txt
//	Second child of Root: a.txt changed
//	Merge  parents [Second, Root]: c.txt added
//
// refs/heads/master -> Merge (HEAD is symbolic to it),
// refs/heads/feature -> Second, refs/heads/alias -> refs/heads/feature,
// refs/tags/v1.0 (annotated, object TagObject) -> Root,
// refs/tags/light -> Second.
type Fixture struct {
	*Repo

	Root, Second, Merge string
	TagObject           string
	BlobA, BlobB        string
}

// Build creates the standard fixture.
func Build(t testing.TB) *Fixture {
	t.Helper()

	r := Init(t)
	f := &Fixture{Repo: r}

	f.BlobA = r.Put(t, "a.txt", "hello\n")
	f.BlobB = r.Put(t, "dir/b.txt", "world\n")
	f.Root = r.Commit(t, "initial commit\n\nwith a body line\n")

	r.Put(t, "a.txt", "hello again\n")
	f.Second = r.Commit(t, "second commit\n")

	r.Put(t, "c.txt", "merged\n")
	f.Merge = r.Commit(t, "merge commit\n", f.Second, f.Root)

	r.SetRef(t, "refs/heads/feature", f.Second)
	r.SetSymbolicRef(t, "refs/heads/alias", "refs/heads/feature")
	r.SetRef(t, "refs/tags/light", f.Second)
	f.TagObject = r.Tag(t, "v1.0", f.Root, "release 1.0\n")

	return f
}
