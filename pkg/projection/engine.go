package projection

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gitscope/pkg/errors"
	"github.com/matzehuels/gitscope/pkg/graph"
	"github.com/matzehuels/gitscope/pkg/ident"
	"github.com/matzehuels/gitscope/pkg/observability"
	"github.com/matzehuels/gitscope/pkg/store"
)

// Engine resolves identifiers against a store. It holds no state besides
// the store handle and is safe for concurrent use.
type Engine struct {
	store  store.Store
	logger *log.Logger

	// mu serializes a store refresh with the index read that follows it.
	mu sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger. A nil logger is ignored.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New returns an engine reading from s. The engine does not take ownership
// of s; the caller closes it.
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{store: s, logger: log.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// =============================================================================
// Root Enumeration
// =============================================================================

// Roots returns every reference known to the store plus the HEAD and index
// sentinels. It fails only when the store cannot list references.
func (e *Engine) Roots(ctx context.Context) (ident.Set, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	names, err := e.store.ReferenceNames()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "list references")
	}

	roots := ident.NewSet(ident.Head(), ident.Index())
	for _, name := range names {
		roots.Add(ident.Reference(name))
	}
	e.logger.Debug("enumerated roots", "references", len(names), "roots", roots.Len())
	return roots, nil
}

// RootsWithObjects is like [Engine.Roots] but also includes every object in
// the store.
func (e *Engine) RootsWithObjects(ctx context.Context) (ident.Set, error) {
	roots, err := e.Roots(ctx)
	if err != nil {
		return nil, err
	}

	hashes, err := e.store.ObjectHashes()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "list objects")
	}
	for _, h := range hashes {
		roots.Add(ident.Object(h))
	}
	e.logger.Debug("enumerated objects", "objects", len(hashes), "roots", roots.Len())
	return roots, nil
}

// =============================================================================
// Node Projection
// =============================================================================

// BuildNode resolves id into a node. Each call reads the store afresh.
func (e *Engine) BuildNode(ctx context.Context, id ident.Identifier) (graph.Node, error) {
	if err := ctx.Err(); err != nil {
		return graph.Node{}, err
	}

	start := time.Now()
	node, err := e.build(ctx, id)
	observability.Projection().OnResolve(ctx, id.Kind.String(), len(node.Edges), time.Since(start), err)

	if err != nil {
		e.logger.Debug("resolve failed", "id", id, "code", errors.GetCode(err), "err", err)
		return graph.Node{}, err
	}
	e.logger.Debug("resolved node", "id", id, "kind", node.Kind, "edges", len(node.Edges))
	return node, nil
}

func (e *Engine) build(ctx context.Context, id ident.Identifier) (graph.Node, error) {
	if err := id.Validate(); err != nil {
		return graph.Node{}, err
	}

	switch id.Kind {
	case ident.KindReference:
		return e.buildReference(id)
	case ident.KindIndex:
		return e.buildIndex(ctx, id)
	case ident.KindObject:
		return e.buildObject(id)
	default:
		return graph.Node{}, errors.New(errors.ErrCodeInvalidIdentifier, "unsupported identifier kind %s", id.Kind)
	}
}

func (e *Engine) buildReference(id ident.Identifier) (graph.Node, error) {
	target, err := e.store.ResolveReference(id.Name)
	switch {
	case stderrors.Is(err, store.ErrReferenceNotFound):
		return graph.Node{}, errors.Wrap(errors.ErrCodeReferenceUnresolvable, err, "reference %s does not exist", id.Name)
	case stderrors.Is(err, store.ErrInvalidReference):
		return graph.Node{}, errors.Wrap(errors.ErrCodeReferenceUnresolvable, err, "reference %s is neither direct nor symbolic", id.Name)
	case err != nil:
		return graph.Node{}, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "resolve reference %s", id.Name)
	}

	var to ident.Identifier
	switch {
	case target.IsSymbolic():
		to = ident.Reference(target.Symbolic)
	case target.Hash != "":
		to = ident.Object(target.Hash)
	default:
		return graph.Node{}, errors.New(errors.ErrCodeReferenceUnresolvable, "reference %s has no target", id.Name)
	}

	return graph.Node{
		ID:    id,
		Kind:  graph.KindTag,
		Label: id.Name,
		Edges: []graph.Edge{{Target: to, Label: graph.LabelPointsTo, Visible: true}},
	}, nil
}

func (e *Engine) buildIndex(ctx context.Context, id ident.Identifier) (graph.Node, error) {
	entries, err := e.readIndex(ctx)
	if err != nil {
		return graph.Node{}, err
	}

	edges := make([]graph.Edge, len(entries))
	for i, entry := range entries {
		edges[i] = graph.Edge{Target: ident.Object(entry.Hash), Label: entry.Path, Visible: false}
	}

	return graph.Node{
		ID:    id,
		Kind:  graph.KindTag,
		Label: ident.IndexName,
		Edges: edges,
	}, nil
}

func (e *Engine) buildObject(id ident.Identifier) (graph.Node, error) {
	obj, err := e.store.Object(id.Name)
	if stderrors.Is(err, store.ErrObjectNotFound) {
		return graph.Node{}, errors.Wrap(errors.ErrCodeObjectNotFound, err, "object %s does not exist", id.Short())
	}
	if err != nil {
		return graph.Node{}, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "read object %s", id.Short())
	}

	node := graph.Node{ID: id, Label: id.Short()}

	switch o := obj.(type) {
	case *store.Commit:
		node.Kind = graph.KindCommit
		node.Text = o.Message
		node.Edges = make([]graph.Edge, 0, len(o.Parents)+1)
		for _, p := range o.Parents {
			node.Edges = append(node.Edges, graph.Edge{Target: ident.Object(p), Label: graph.LabelParent, Visible: true})
		}
		node.Edges = append(node.Edges, graph.Edge{Target: ident.Object(o.Tree), Label: graph.LabelTree, Visible: true})

	case *store.Tree:
		node.Kind = graph.KindTree
		node.Edges = make([]graph.Edge, len(o.Entries))
		for i, entry := range o.Entries {
			node.Edges[i] = graph.Edge{Target: ident.Object(entry.Hash), Label: entry.Name, Visible: true}
		}

	case *store.Tag:
		node.Kind = graph.KindTag
		node.Edges = []graph.Edge{{Target: ident.Object(o.Target), Label: graph.LabelTarget, Visible: true}}

	case *store.Blob:
		node.Kind = graph.KindBlob

	default:
		e.logger.Warn("unrecognized object type", "id", id, "type", obj.ObjectType())
		node.Kind = graph.KindUnknown
	}

	return node, nil
}

// =============================================================================
// Index Enumeration
// =============================================================================

// IndexEntries returns the staging area as it is on disk at call time, in
// the store's native order with stage numbers preserved.
func (e *Engine) IndexEntries(ctx context.Context) ([]store.IndexEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.readIndex(ctx)
}

// readIndex refreshes the store and reads the index as one critical section.
func (e *Engine) readIndex(ctx context.Context) ([]store.IndexEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	err := e.store.Refresh()
	observability.Projection().OnRefresh(ctx, time.Since(start), err)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "refresh store")
	}
	entries, err := e.store.IndexEntries()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "read index")
	}
	return entries, nil
}
