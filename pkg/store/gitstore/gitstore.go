// Package gitstore implements [store.Store] on top of go-git.
//
// The store owns a single repository handle. [Store.Refresh] reopens the
// handle from disk under a write lock; every read takes a read lock, so a
// refresh never swaps the handle out from under an in-flight read. Values
// returned by the store are copied out of go-git's object types and never
// alias the handle.
package gitstore

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	errs "github.com/matzehuels/gitscope/pkg/errors"
	"github.com/matzehuels/gitscope/pkg/store"
)

// Store is a go-git backed object store.
type Store struct {
	path string

	mu   sync.RWMutex
	repo *git.Repository
}

// Open opens the repository at path. path may point at the working tree,
// any directory inside it, or a bare repository.
//
// Returns an error with code STORE_UNAVAILABLE if path does not name a
// valid repository.
func Open(path string) (*Store, error) {
	if err := errs.ValidatePath(path); err != nil {
		return nil, err
	}
	repo, err := open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStoreUnavailable, err, "%s doesn't appear to be a Git repository", path)
	}
	return &Store{path: path, repo: repo}, nil
}

func open(path string) (*git.Repository, error) {
	return git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
}

// Path returns the path the store was opened with.
func (s *Store) Path() string { return s.path }

// ResolveReference looks up name without following symbolic targets.
func (s *Store) ResolveReference(name string) (store.Target, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ref, err := s.repo.Storer.Reference(plumbing.ReferenceName(name))
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return store.Target{}, fmt.Errorf("%s: %w", name, store.ErrReferenceNotFound)
	}
	if err != nil {
		return store.Target{}, fmt.Errorf("read reference %s: %w", name, err)
	}

	switch ref.Type() {
	case plumbing.HashReference:
		return store.Target{Hash: ref.Hash().String()}, nil
	case plumbing.SymbolicReference:
		return store.Target{Symbolic: ref.Target().String()}, nil
	default:
		return store.Target{}, fmt.Errorf("%s: %w", name, store.ErrInvalidReference)
	}
}

// ReferenceNames lists every reference, including HEAD when the backing
// storage reports it.
func (s *Store) ReferenceNames() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	iter, err := s.repo.References()
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}
	defer iter.Close()

	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().String())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}
	return names, nil
}

// Object looks up the object with the given hex hash.
func (s *Store) Object(hash string) (store.Object, error) {
	if err := errs.ValidateHash(hash); err != nil {
		return nil, fmt.Errorf("%s: %w", hash, store.ErrObjectNotFound)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, err := s.repo.Object(plumbing.AnyObject, plumbing.NewHash(hash))
	if errors.Is(err, plumbing.ErrObjectNotFound) {
		return nil, fmt.Errorf("%s: %w", hash, store.ErrObjectNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", hash, err)
	}
	return convert(obj), nil
}

func convert(obj object.Object) store.Object {
	switch o := obj.(type) {
	case *object.Commit:
		parents := make([]string, len(o.ParentHashes))
		for i, p := range o.ParentHashes {
			parents[i] = p.String()
		}
		return &store.Commit{
			Hash:    o.Hash.String(),
			Message: o.Message,
			Parents: parents,
			Tree:    o.TreeHash.String(),
		}
	case *object.Tree:
		entries := make([]store.TreeEntry, len(o.Entries))
		for i, e := range o.Entries {
			entries[i] = store.TreeEntry{Name: e.Name, Hash: e.Hash.String(), Mode: uint32(e.Mode)}
		}
		return &store.Tree{Hash: o.Hash.String(), Entries: entries}
	case *object.Tag:
		return &store.Tag{
			Hash:       o.Hash.String(),
			Name:       o.Name,
			Message:    o.Message,
			Target:     o.Target.String(),
			TargetType: store.ObjectType(o.TargetType.String()),
		}
	case *object.Blob:
		return &store.Blob{Hash: o.Hash.String(), Size: o.Size}
	default:
		return &store.Unknown{Hash: obj.ID().String(), Type: store.ObjectType(obj.Type().String())}
	}
}

// ObjectHashes lists every object hash reachable through the object
// database, loose and packed.
func (s *Store) ObjectHashes() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	iter, err := s.repo.Storer.IterEncodedObjects(plumbing.AnyObject)
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}
	defer iter.Close()

	var hashes []string
	err = iter.ForEach(func(o plumbing.EncodedObject) error {
		hashes = append(hashes, o.Hash().String())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}
	return hashes, nil
}

// IndexEntries reads the staging area through the current handle.
// A repository without an index file yields no entries.
func (s *Store) IndexEntries() ([]store.IndexEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, err := s.repo.Storer.Index()
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}

	entries := make([]store.IndexEntry, len(idx.Entries))
	for i, e := range idx.Entries {
		entries[i] = store.IndexEntry{
			Hash:  e.Hash.String(),
			Path:  e.Name,
			Stage: int(e.Stage),
		}
	}
	return entries, nil
}

// Refresh reopens the repository from disk and swaps it in. On failure the
// previous handle stays in place.
func (s *Store) Refresh() error {
	repo, err := open(s.path)
	if err != nil {
		return errs.Wrap(errs.ErrCodeStoreUnavailable, err, "reopen %s", s.path)
	}

	s.mu.Lock()
	old := s.repo
	s.repo = repo
	s.mu.Unlock()

	return closeRepo(old)
}

// Close releases the repository handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return closeRepo(s.repo)
}

func closeRepo(repo *git.Repository) error {
	if repo == nil {
		return nil
	}
	if c, ok := repo.Storer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

var _ store.Store = (*Store)(nil)
