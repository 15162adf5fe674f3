// Package wave implements the solver's mutable state: the 3D possibility
// tensor and the 2D dirty-cell mask that drives propagation to a fixed
// point. A Wave is created fresh per solve attempt and is exclusively
// owned by that attempt - nothing here is safe to share across solves.
package wave

import "github.com/arjwright/wfc/grid"

// Wave is the width x height x numPatterns possibility tensor, plus the
// dirty mask recording which cells have been narrowed since propagation
// last visited them.
type Wave struct {
	width, height, numPatterns int
	possible                   *grid.Dense3[bool]
	dirty                      *grid.Dense2[bool]
}

// New creates a Wave with every pattern possible everywhere and no dirty
// cells - the starting state before any foundation seeding or observation.
func New(width, height, numPatterns int) *Wave {
	return &Wave{
		width:       width,
		height:      height,
		numPatterns: numPatterns,
		possible:    grid.NewDense3[bool](width, height, numPatterns, true),
		dirty:       grid.NewDense2[bool](width, height, false),
	}
}

func (w *Wave) Width() int        { return w.width }
func (w *Wave) Height() int       { return w.height }
func (w *Wave) NumPatterns() int  { return w.numPatterns }

// Possible reports whether pattern t remains possible at (x, y).
func (w *Wave) Possible(x, y, t int) bool {
	return w.possible.Get(x, y, t)
}

// SetPossible sets whether pattern t is possible at (x, y). Per the
// monotonicity invariant, callers must never flip a false back to true
// within a single solve; this type does not enforce that itself.
func (w *Wave) SetPossible(x, y, t int, v bool) {
	w.possible.Set(x, y, t, v)
}

// Dirty reports whether (x, y) has been narrowed since the last
// propagation visit.
func (w *Wave) Dirty(x, y int) bool {
	return w.dirty.Get(x, y)
}

// SetDirty marks or clears the dirty flag at (x, y).
func (w *Wave) SetDirty(x, y int, v bool) {
	w.dirty.Set(x, y, v)
}

// Eliminate clears pattern t at (x, y) and marks the cell dirty in one
// step - the operation the propagator performs on every elimination.
func (w *Wave) Eliminate(x, y, t int) {
	w.possible.Set(x, y, t, false)
	w.dirty.Set(x, y, true)
}

// CellState classifies a cell by how many patterns remain possible.
type CellState int

const (
	Contradiction CellState = iota // zero patterns remain
	Decided                        // exactly one pattern remains
	Undecided                      // two or more patterns remain
)

// State returns the cell's classification and, for Decided cells, which
// pattern index survived (meaningless for other states).
func (w *Wave) State(x, y int) (CellState, int) {
	count := 0
	last := -1
	for t := 0; t < w.numPatterns; t++ {
		if w.possible.Get(x, y, t) {
			count++
			last = t
		}
	}
	switch count {
	case 0:
		return Contradiction, -1
	case 1:
		return Decided, last
	default:
		return Undecided, -1
	}
}

// Collapse forces (x, y) to pattern t alone, matching spec.md §4.7 step 5:
// every other pattern is cleared and the cell is marked dirty.
func (w *Wave) Collapse(x, y, t int) {
	for i := 0; i < w.numPatterns; i++ {
		w.possible.Set(x, y, i, i == t)
	}
	w.dirty.Set(x, y, true)
}
