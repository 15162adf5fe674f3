// Package model implements the two WFC model flavors - Overlapping and
// Tiled - behind one narrow interface. Per spec.md §9's design note, the
// solver only ever needs five capabilities from a model (propagate,
// on_boundary, render, read-only dimensions/weights, periodic_out); both
// flavors share this interface instead of a deep class hierarchy, mirroring
// the teacher's mappers.Mapper interface (one narrow contract, several
// concrete implementations selected by the caller).
package model

import (
	"image"

	"github.com/arjwright/wfc/wave"
)

// Model is an immutable, shareable-by-reference description of a WFC
// problem: its pattern set, their weights, and the propagator table that
// relates them across neighboring cells. A Model holds no reference back
// to any Wave; many independent solves may share one Model concurrently.
type Model interface {
	// Width and Height are the output grid's dimensions, in model-native
	// units (pixels for Overlapping, tiles for Tiled).
	Width() int
	Height() int

	// NumPatterns is the size of the pattern set T.
	NumPatterns() int

	// Weight returns the prevalence weight of pattern t.
	Weight(t int) float64

	// Foundation returns the pattern pinned at the bottom row by
	// foundation seeding, if any (Overlapping only).
	Foundation() (t int, ok bool)

	// PeriodicOut reports whether the output wraps toroidally.
	PeriodicOut() bool

	// OnBoundary reports whether (x, y) is never collapsed directly and
	// is treated as having no constraint source/sink beyond the edge.
	OnBoundary(x, y int) bool

	// Propagate runs one sweep over dirty cells, eliminating patterns
	// that can no longer be supported by their neighbors. It returns
	// whether anything changed; the solver calls it repeatedly until it
	// returns false (fixed point).
	Propagate(w *wave.Wave) bool

	// Image renders a Wave at the model's native resolution (no
	// upscaling - see UpscaleFactor).
	Image(w *wave.Wave) image.Image

	// UpscaleFactor is the integer scale the renderer should apply to
	// Image's output before writing it out (4 for Overlapping, 1 for
	// Tiled, which already bakes tile_size into its native resolution).
	UpscaleFactor() int
}
