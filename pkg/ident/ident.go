package ident

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/gitscope/pkg/errors"
)

// Kind discriminates the three identifier forms.
type Kind int

const (
	// KindInvalid is the zero value; identifiers of this kind never resolve.
	KindInvalid Kind = iota
	// KindReference names a reference such as "HEAD" or "refs/heads/main".
	KindReference
	// KindIndex names the staging area. There is exactly one index identifier.
	KindIndex
	// KindObject names a commit, tree, tag, or blob by content hash.
	KindObject
)

// External encoding tags.
const (
	tagReference = "ref"
	tagObject    = "obj"

	// IndexName is the fixed payload of the index identifier and also its
	// full external encoding.
	IndexName = "index"

	// ShortHashLen is the number of hash characters shown in labels.
	ShortHashLen = 6
)

// String returns the external tag of the kind.
func (k Kind) String() string {
	switch k {
	case KindReference:
		return tagReference
	case KindIndex:
		return IndexName
	case KindObject:
		return tagObject
	default:
		return "invalid"
	}
}

// Identifier names anything the projection engine can resolve.
// It is a comparable value type and may be used as a map key.
// The zero value is invalid.
type Identifier struct {
	Kind Kind
	Name string
}

// Reference returns the identifier of the reference with the given name.
func Reference(name string) Identifier {
	return Identifier{Kind: KindReference, Name: name}
}

// Index returns the identifier of the staging area.
func Index() Identifier {
	return Identifier{Kind: KindIndex, Name: IndexName}
}

// Object returns the identifier of the object with the given hex hash.
// The hash is normalized to lower case so that equal objects yield equal
// identifiers.
func Object(hash string) Identifier {
	return Identifier{Kind: KindObject, Name: strings.ToLower(hash)}
}

// Head is the identifier of the symbolic HEAD reference.
func Head() Identifier { return Reference("HEAD") }

// IsZero reports whether id is the zero (invalid) identifier.
func (id Identifier) IsZero() bool { return id == Identifier{} }

// Validate checks that id is well formed: a known kind with a payload that
// matches it.
func (id Identifier) Validate() error {
	switch id.Kind {
	case KindReference:
		return errors.ValidateReferenceName(id.Name)
	case KindIndex:
		if id.Name != IndexName {
			return errors.New(errors.ErrCodeInvalidIdentifier, "index identifier must have payload %q, got %q", IndexName, id.Name)
		}
		return nil
	case KindObject:
		return errors.ValidateHash(id.Name)
	default:
		return errors.New(errors.ErrCodeInvalidIdentifier, "invalid identifier kind %d", int(id.Kind))
	}
}

// String returns the external encoding: "ref:<name>", "index", or
// "obj:<hash>". [Parse] inverts it.
func (id Identifier) String() string {
	switch id.Kind {
	case KindReference:
		return tagReference + ":" + id.Name
	case KindIndex:
		return IndexName
	case KindObject:
		return tagObject + ":" + id.Name
	default:
		return ""
	}
}

// Short returns the display label for id: the full reference name, the
// literal "index", or the first six characters of an object hash.
func (id Identifier) Short() string {
	if id.Kind == KindObject && len(id.Name) > ShortHashLen {
		return id.Name[:ShortHashLen]
	}
	return id.Name
}

// Parse decodes the external encoding produced by [Identifier.String].
// The returned identifier is validated.
func Parse(s string) (Identifier, error) {
	if s == "" {
		return Identifier{}, errors.New(errors.ErrCodeInvalidIdentifier, "identifier cannot be empty")
	}
	if s == IndexName {
		return Index(), nil
	}

	tag, payload, ok := strings.Cut(s, ":")
	if !ok {
		return Identifier{}, errors.New(errors.ErrCodeInvalidIdentifier, "identifier %q has no kind tag (want ref:, obj:, or index)", s)
	}

	var id Identifier
	switch tag {
	case tagReference:
		id = Reference(payload)
	case tagObject:
		id = Object(payload)
	default:
		return Identifier{}, errors.New(errors.ErrCodeInvalidIdentifier, "unknown identifier tag %q in %q", tag, s)
	}
	if err := id.Validate(); err != nil {
		return Identifier{}, err
	}
	return id, nil
}

// MustParse is like [Parse] but panics on error. Intended for tests and
// package-level literals.
func MustParse(s string) Identifier {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// MarshalText implements encoding.TextMarshaler using the external encoding.
func (id Identifier) MarshalText() ([]byte, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *Identifier) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Compare orders identifiers by kind, then by name.
func Compare(a, b Identifier) int {
	if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
		return c
	}
	return strings.Compare(a.Name, b.Name)
}

// Set is an unordered collection of distinct identifiers.
type Set map[Identifier]struct{}

// NewSet returns a set holding ids.
func NewSet(ids ...Identifier) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id. Adding an identifier twice is a no-op.
func (s Set) Add(id Identifier) { s[id] = struct{}{} }

// Has reports whether id is in the set.
func (s Set) Has(id Identifier) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of identifiers in the set.
func (s Set) Len() int { return len(s) }

// Sorted returns the identifiers in [Compare] order.
func (s Set) Sorted() []Identifier {
	return slices.SortedFunc(maps.Keys(s), Compare)
}
