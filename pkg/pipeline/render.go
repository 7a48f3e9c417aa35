package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/gitscope/pkg/graph"
	"github.com/matzehuels/gitscope/pkg/layout"
	"github.com/matzehuels/gitscope/pkg/render/nodelink"
)

// Render generates output artifacts in the requested formats. The DOT
// source is built at most once and shared by the dot and svg formats.
func Render(ctx context.Context, snap *graph.Snapshot, pos layout.Positions, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	var dot string
	dotSource := func() string {
		if dot == "" {
			dot = nodelink.ToDOT(snap, pos, nodelink.Options{Detailed: opts.Detailed, Frontier: opts.Frontier})
		}
		return dot
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatJSON:
			data, err = graph.MarshalGraph(snap, pos)
		case FormatDOT:
			data = []byte(dotSource())
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dotSource())
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}
