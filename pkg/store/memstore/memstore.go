// Package memstore implements [store.Store] in memory.
//
// It backs tests and tools that need a repository-shaped store without a
// repository on disk. Like a real repository, the staging area has an
// "on-disk" state and a loaded view: [Store.StageIndex] changes the former,
// and only [Store.Refresh] makes it visible through [Store.IndexEntries].
package memstore

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/gitscope/pkg/store"
)

// Store is an in-memory object store. The zero value is not usable; call
// [New].
type Store struct {
	mu sync.RWMutex

	refs    map[string]store.Target
	broken  map[string]bool
	objects map[string]store.Object

	disk   []store.IndexEntry
	loaded []store.IndexEntry

	refreshes int
	closed    bool
	err       error
}

// New returns an empty store.
func New() *Store {
	return &Store{
		refs:    make(map[string]store.Target),
		broken:  make(map[string]bool),
		objects: make(map[string]store.Object),
	}
}

// SetReference points name directly at hash.
func (s *Store) SetReference(name, hash string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.broken, name)
	s.refs[name] = store.Target{Hash: strings.ToLower(hash)}
}

// SetSymbolicReference points name at the reference target.
func (s *Store) SetSymbolicReference(name, target string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.broken, name)
	s.refs[name] = store.Target{Symbolic: target}
}

// SetBrokenReference registers name as a reference of neither form.
func (s *Store) SetBrokenReference(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.refs, name)
	s.broken[name] = true
}

// AddObject stores obj under its hash.
func (s *Store) AddObject(obj store.Object) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[strings.ToLower(obj.ObjectHash())] = obj
}

// StageIndex replaces the on-disk index. The change is visible after the
// next Refresh.
func (s *Store) StageIndex(entries ...store.IndexEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disk = slices.Clone(entries)
}

// SetUnavailable makes every subsequent call fail with err. Passing nil
// restores normal operation.
func (s *Store) SetUnavailable(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Refreshes returns how many times Refresh succeeded.
func (s *Store) Refreshes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshes
}

// Closed reports whether Close was called.
func (s *Store) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// ResolveReference implements [store.Store].
func (s *Store) ResolveReference(name string) (store.Target, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return store.Target{}, s.err
	}
	if s.broken[name] {
		return store.Target{}, fmt.Errorf("%s: %w", name, store.ErrInvalidReference)
	}
	t, ok := s.refs[name]
	if !ok {
		return store.Target{}, fmt.Errorf("%s: %w", name, store.ErrReferenceNotFound)
	}
	return t, nil
}

// ReferenceNames implements [store.Store]. Names are returned sorted.
func (s *Store) ReferenceNames() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	names := slices.Collect(maps.Keys(s.refs))
	names = append(names, slices.Collect(maps.Keys(s.broken))...)
	slices.Sort(names)
	return names, nil
}

// Object implements [store.Store].
func (s *Store) Object(hash string) (store.Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	obj, ok := s.objects[strings.ToLower(hash)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", hash, store.ErrObjectNotFound)
	}
	return obj, nil
}

// ObjectHashes implements [store.Store]. Hashes are returned sorted.
func (s *Store) ObjectHashes() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	return slices.Sorted(maps.Keys(s.objects)), nil
}

// IndexEntries implements [store.Store]. It returns the index as of the
// last Refresh.
func (s *Store) IndexEntries() ([]store.IndexEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	return slices.Clone(s.loaded), nil
}

// Refresh implements [store.Store].
func (s *Store) Refresh() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.loaded = slices.Clone(s.disk)
	s.refreshes++
	return nil
}

// Close implements [store.Store].
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

var _ store.Store = (*Store)(nil)
