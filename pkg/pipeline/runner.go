package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gitscope/pkg/errors"
	"github.com/matzehuels/gitscope/pkg/graph"
	"github.com/matzehuels/gitscope/pkg/ident"
	"github.com/matzehuels/gitscope/pkg/layout"
	"github.com/matzehuels/gitscope/pkg/observability"
)

// Resolver is the part of the projection engine the pipeline depends on.
type Resolver interface {
	Roots(ctx context.Context) (ident.Set, error)
	BuildNode(ctx context.Context, id ident.Identifier) (graph.Node, error)
}

// Runner executes the pipeline against a resolver.
//
// The Runner keeps no results between calls. Multiple goroutines can safely
// use the same Runner with different options.
type Runner struct {
	Resolver Resolver
	Logger   *log.Logger
}

// NewRunner creates a runner. If logger is nil, log.Default() is used.
func NewRunner(r Resolver, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Resolver: r, Logger: logger}
}

// Execute runs the complete walk → layout → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{}

	// Stage 1: Walk
	walkStart := time.Now()
	snap, err := r.Walk(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("walk: %w", err)
	}
	result.Snapshot = snap
	result.Stats.WalkTime = time.Since(walkStart)
	result.Stats.NodeCount = snap.Len()
	result.Stats.EdgeCount = snap.EdgeCount()
	result.Stats.Failures = len(snap.Failures())

	r.Logger.Info("walked object graph",
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"failures", result.Stats.Failures,
		"duration", result.Stats.WalkTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	result.Positions = r.Layout(ctx, snap, opts)
	result.Stats.LayoutTime = time.Since(layoutStart)

	r.Logger.Debug("placed nodes",
		"nodes", len(result.Positions),
		"seed", opts.Seed,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, err := r.Render(ctx, snap, result.Positions, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Walk resolves the start set and everything reachable from it,
// breadth-first, within the depth and node limits. An empty start set means
// every root. Failed resolutions are recorded on the snapshot; only a
// failure to enumerate roots or a canceled context stops the walk.
func (r *Runner) Walk(ctx context.Context, opts Options) (*graph.Snapshot, error) {
	if err := opts.ValidateForWalk(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	start := opts.Start
	if len(start) == 0 {
		roots, err := r.Resolver.Roots(ctx)
		if err != nil {
			return nil, err
		}
		start = roots.Sorted()
	}

	observability.Pipeline().OnWalkStart(ctx, len(start))
	began := time.Now()

	snap, err := r.walk(ctx, start, opts)

	observability.Pipeline().OnWalkComplete(ctx, snap.Len(), len(snap.Failures()), time.Since(began), err)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

type queued struct {
	id    ident.Identifier
	depth int
}

func (r *Runner) walk(ctx context.Context, start []ident.Identifier, opts Options) (*graph.Snapshot, error) {
	snap := graph.NewSnapshot()
	seen := ident.NewSet()
	queue := make([]queued, 0, len(start))
	for _, id := range start {
		if !seen.Has(id) {
			seen.Add(id)
			queue = append(queue, queued{id: id})
		}
	}

	for len(queue) > 0 && opts.nodesAllowed(snap.Len()) {
		if err := ctx.Err(); err != nil {
			return snap, err
		}

		item := queue[0]
		queue = queue[1:]

		node, err := r.Resolver.BuildNode(ctx, item.id)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return snap, ctxErr
			}
			opts.Logger.Warn("skipping unresolvable identifier", "id", item.id, "code", errors.GetCode(err), "err", errors.UserMessage(err))
			snap.Fail(item.id, err)
			continue
		}
		if err := snap.Add(node); err != nil {
			return snap, err
		}

		if !opts.depthAllowed(item.depth + 1) {
			continue
		}
		for _, e := range node.Edges {
			if !e.Visible && !opts.FollowHidden {
				continue
			}
			if seen.Has(e.Target) {
				continue
			}
			seen.Add(e.Target)
			queue = append(queue, queued{id: e.Target, depth: item.depth + 1})
		}
	}

	if len(queue) > 0 {
		opts.Logger.Debug("walk stopped at node limit", "max_nodes", opts.MaxNodes, "pending", len(queue))
	}
	return snap, nil
}

// Layout places every node of snap.
func (r *Runner) Layout(ctx context.Context, snap *graph.Snapshot, opts Options) layout.Positions {
	opts.SetRenderDefaults()

	observability.Pipeline().OnLayoutStart(ctx, snap.Len())
	began := time.Now()
	pos := layout.Snapshot(snap, opts.Seed)
	observability.Pipeline().OnLayoutComplete(ctx, time.Since(began), nil)
	return pos
}

// Render generates artifacts in every requested format.
func (r *Runner) Render(ctx context.Context, snap *graph.Snapshot, pos layout.Positions, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	began := time.Now()
	artifacts, err := Render(ctx, snap, pos, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(began), err)
	return artifacts, err
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
