// Package layout assigns placeholder positions to projected nodes.
//
// Positions are scaffolding for renderers, not a property of the graph: each
// node gets two independent uniform coordinates in [0, 1). The projection
// engine never sees them. A fixed seed and a fixed identifier order give the
// same placement, so exported files are reproducible.
package layout

import (
	"math/rand/v2"

	"github.com/matzehuels/gitscope/pkg/graph"
	"github.com/matzehuels/gitscope/pkg/ident"
)

// DefaultSeed is the seed the CLI, config file and HTTP API start from.
const DefaultSeed = uint64(42)

// Positions maps identifiers to their placement.
type Positions = map[ident.Identifier]graph.Position

// Assign places every identifier in ids. Coordinates are drawn in slice
// order; a repeated identifier keeps its first placement.
func Assign(ids []ident.Identifier, seed uint64) Positions {
	rng := rand.New(rand.NewPCG(seed, seed^0xdeadbeef))

	pos := make(Positions, len(ids))
	for _, id := range ids {
		x, y := rng.Float64(), rng.Float64()
		if _, ok := pos[id]; ok {
			continue
		}
		pos[id] = graph.Position{X: x, Y: y}
	}
	return pos
}

// Snapshot places every node of s in snapshot order.
func Snapshot(s *graph.Snapshot, seed uint64) Positions {
	return Assign(s.IDs(), seed)
}
