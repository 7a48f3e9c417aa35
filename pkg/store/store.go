// Package store defines the object store adapter consumed by the projection
// engine.
//
// The engine never touches the on-disk repository format. Everything it
// needs (reference resolution, object lookup, and index enumeration) goes
// through the [Store] interface. The production implementation lives in
// [github.com/matzehuels/gitscope/pkg/store/gitstore].
//
// Values returned by a Store are plain data: they never alias the underlying
// handle, so they stay valid across [Store.Refresh].
package store

import "errors"

// Sentinel errors reported by Store implementations.
var (
	// ErrReferenceNotFound is returned by [Store.ResolveReference] when no
	// reference with the given name exists.
	ErrReferenceNotFound = errors.New("reference not found")

	// ErrInvalidReference is returned by [Store.ResolveReference] when the
	// reference exists but is neither a direct nor a symbolic reference.
	ErrInvalidReference = errors.New("reference is neither direct nor symbolic")

	// ErrObjectNotFound is returned by [Store.Object] when no object with the
	// given hash exists.
	ErrObjectNotFound = errors.New("object not found")
)

// Store is the read-only view of a repository used by the projection engine.
//
// Implementations must be safe for concurrent use. Refresh may swap the
// underlying handle; callers that need a refresh and the reads depending on
// it to be atomic must serialize them themselves.
type Store interface {
	// ResolveReference looks up a reference by full name without following
	// symbolic targets.
	ResolveReference(name string) (Target, error)

	// ReferenceNames lists the names of all references in the store.
	ReferenceNames() ([]string, error)

	// Object looks up an object by hex hash.
	Object(hash string) (Object, error)

	// ObjectHashes lists the hashes of every object in the store.
	ObjectHashes() ([]string, error)

	// IndexEntries enumerates the staging area in the store's native order.
	// Call Refresh first to observe the current on-disk index.
	IndexEntries() ([]IndexEntry, error)

	// Refresh reopens the underlying handle so subsequent reads observe the
	// current on-disk state. It invalidates anything borrowed from the
	// previous handle.
	Refresh() error

	// Close releases the handle.
	Close() error
}

// Target is the resolved form of a reference: exactly one of Hash or
// Symbolic is set.
type Target struct {
	Hash     string // Direct target object hash
	Symbolic string // Name of the reference this one points to
}

// IsSymbolic reports whether the reference points at another reference.
func (t Target) IsSymbolic() bool { return t.Symbolic != "" }

// IndexEntry is one row of the staging area.
type IndexEntry struct {
	Hash  string `json:"hash"`
	Path  string `json:"path"`
	Stage int    `json:"stage"` // 0 = normal, 1-3 = conflict stages
}
