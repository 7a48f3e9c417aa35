package store

// ObjectType names the kind of a stored object.
type ObjectType string

// Object types understood by the projection engine.
const (
	TypeCommit ObjectType = "commit"
	TypeTree   ObjectType = "tree"
	TypeTag    ObjectType = "tag"
	TypeBlob   ObjectType = "blob"
)

// Object is a stored object. The concrete type is one of [*Commit], [*Tree],
// [*Tag], [*Blob], or [*Unknown].
type Object interface {
	ObjectHash() string
	ObjectType() ObjectType
}

// Commit is a commit object.
type Commit struct {
	Hash    string
	Message string   // Full message, byte-exact
	Parents []string // Parent hashes in commit order
	Tree    string   // Root tree hash
}

func (c *Commit) ObjectHash() string     { return c.Hash }
func (c *Commit) ObjectType() ObjectType { return TypeCommit }

// TreeEntry is one entry of a tree object.
type TreeEntry struct {
	Name string
	Hash string
	Mode uint32
}

// Tree is a tree object. Entries are in the store's native order.
type Tree struct {
	Hash    string
	Entries []TreeEntry
}

func (t *Tree) ObjectHash() string     { return t.Hash }
func (t *Tree) ObjectType() ObjectType { return TypeTree }

// Tag is an annotated tag object.
type Tag struct {
	Hash       string
	Name       string
	Message    string
	Target     string     // Hash of the tagged object
	TargetType ObjectType // Type of the tagged object
}

func (t *Tag) ObjectHash() string     { return t.Hash }
func (t *Tag) ObjectType() ObjectType { return TypeTag }

// Blob is a file content object.
type Blob struct {
	Hash string
	Size int64
}

func (b *Blob) ObjectHash() string     { return b.Hash }
func (b *Blob) ObjectType() ObjectType { return TypeBlob }

// Unknown is an object whose type the engine does not model.
type Unknown struct {
	Hash string
	Type ObjectType
}

func (u *Unknown) ObjectHash() string     { return u.Hash }
func (u *Unknown) ObjectType() ObjectType { return u.Type }
