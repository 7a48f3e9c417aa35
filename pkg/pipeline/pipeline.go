// Package pipeline drives the projection engine the way a visualization
// tool would.
//
// The pipeline has three stages:
//
//  1. Walk: resolve identifiers breadth-first, following edges on demand
//  2. Layout: place every resolved node (see package layout)
//  3. Render: produce JSON, DOT, or SVG output
//
// Each stage can be run independently or as part of the complete pipeline.
// Resolution failures during a walk are recorded on the snapshot and logged;
// they never abort the walk.
//
// # Usage
//
//	runner := pipeline.NewRunner(engine, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Start:   []ident.Identifier{ident.Head()},
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	snap, err := runner.Walk(ctx, opts)
//	pos := layout.Snapshot(snap, opts.Seed)
//	artifacts, err := runner.Render(ctx, snap, pos, opts)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gitscope/pkg/errors"
	"github.com/matzehuels/gitscope/pkg/graph"
	"github.com/matzehuels/gitscope/pkg/ident"
	"github.com/matzehuels/gitscope/pkg/layout"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultMaxDepth is the number of edges followed from the start set.
	DefaultMaxDepth = 10

	// DefaultMaxNodes caps the number of resolved nodes per walk.
	DefaultMaxNodes = 500

	// DefaultSeed is the default layout seed for reproducibility.
	DefaultSeed = layout.DefaultSeed

	// Unlimited disables the depth or node limit when passed as MaxDepth or
	// MaxNodes.
	Unlimited = -1
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Walk options
	Start        []ident.Identifier `json:"start,omitempty"` // Empty means every root
	MaxDepth     int                `json:"max_depth,omitempty"`
	MaxNodes     int                `json:"max_nodes,omitempty"`
	FollowHidden bool               `json:"follow_hidden,omitempty"` // Follow index entry edges

	// Layout options
	Seed uint64 `json:"seed,omitempty"` // Used as given; zero is a valid seed

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`
	Frontier bool     `json:"frontier,omitempty"` // Draw unresolved edge targets

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Snapshot holds the resolved nodes and failures.
	Snapshot *graph.Snapshot

	// Positions holds the layout of every resolved node.
	Positions layout.Positions

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	Failures   int
	WalkTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, dot, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every field and applies defaults for the
// full pipeline. Calling it more than once has the same effect as calling
// it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForWalk(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForWalk checks the start set and applies walk defaults.
func (o *Options) ValidateForWalk() error {
	for _, id := range o.Start {
		if err := id.Validate(); err != nil {
			return fmt.Errorf("start %q: %w", id, err)
		}
	}
	if o.MaxDepth < Unlimited || o.MaxNodes < Unlimited {
		return errors.New(errors.ErrCodeInvalidInput, "limits must be positive or %d for unlimited", Unlimited)
	}

	if o.MaxDepth == 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.MaxNodes == 0 {
		o.MaxNodes = DefaultMaxNodes
	}
	o.setLogger()
	return nil
}

// SetRenderDefaults sets default values for layout and rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// depthAllowed reports whether a node at depth d may be resolved.
func (o *Options) depthAllowed(d int) bool {
	return o.MaxDepth == Unlimited || d <= o.MaxDepth
}

// nodesAllowed reports whether another node may be resolved after n.
func (o *Options) nodesAllowed(n int) bool {
	return o.MaxNodes == Unlimited || n < o.MaxNodes
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}
