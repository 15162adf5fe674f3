package model

import (
	"image"
	"image/color"
	"sort"

	"github.com/arjwright/wfc/palette"
	"github.com/arjwright/wfc/pattern"
	"github.com/arjwright/wfc/wave"
)

// Overlap is the Overlapping-mode model: patterns are N x N pixel
// windows of a sample, and compatibility between two patterns at a given
// offset is decided by literal pixel agreement on their overlap.
type Overlap struct {
	n             int
	width, height int
	periodicOut   bool
	patterns      []pattern.Pattern
	weights       []float64
	palette       *palette.Palette
	foundation    int
	hasFoundation bool

	// propagator[t][dx+n-1][dy+n-1] is the set of pattern indices that
	// agree with pattern t when shifted by (dx, dy).
	propagator [][][][]uint16
}

// NewOverlapping builds an Overlapping model from the tallied pattern
// prevalence of a sample. Patterns are assigned stable indices by
// ascending hash, so that model construction is deterministic regardless
// of map iteration order.
func NewOverlapping(prevalence pattern.Prevalence, pal *palette.Palette, n int, periodicOut bool, width, height int, foundationHash pattern.Hash, hasFoundation bool) *Overlap {
	hashes := make([]pattern.Hash, 0, len(prevalence))
	for h := range prevalence {
		hashes = append(hashes, h)
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })

	m := &Overlap{
		n:           n,
		width:       width,
		height:      height,
		periodicOut: periodicOut,
		palette:     pal,
		foundation:  -1,
	}

	paletteSize := pal.Len()
	for _, h := range hashes {
		if hasFoundation && h == foundationHash {
			m.foundation = len(m.patterns)
			m.hasFoundation = true
		}
		m.patterns = append(m.patterns, pattern.FromHash(h, n, paletteSize))
		m.weights = append(m.weights, float64(prevalence[h]))
	}

	m.buildPropagator()
	return m
}

func agrees(p1, p2 pattern.Pattern, n, dx, dy int) bool {
	xmin, xmax := 0, n
	if dx < 0 {
		xmax = dx + n
	} else {
		xmin = dx
	}
	ymin, ymax := 0, n
	if dy < 0 {
		ymax = dy + n
	} else {
		ymin = dy
	}
	for y := ymin; y < ymax; y++ {
		for x := xmin; x < xmax; x++ {
			if p1[x+n*y] != p2[x-dx+n*(y-dy)] {
				return false
			}
		}
	}
	return true
}

func (m *Overlap) buildPropagator() {
	n := m.n
	span := 2*n - 1
	t := len(m.patterns)

	m.propagator = make([][][][]uint16, t)
	for t1 := 0; t1 < t; t1++ {
		m.propagator[t1] = make([][][]uint16, span)
		for ix := 0; ix < span; ix++ {
			m.propagator[t1][ix] = make([][]uint16, span)
			dx := ix - (n - 1)
			for iy := 0; iy < span; iy++ {
				dy := iy - (n - 1)
				var list []uint16
				for t2 := 0; t2 < t; t2++ {
					if agrees(m.patterns[t1], m.patterns[t2], n, dx, dy) {
						list = append(list, uint16(t2))
					}
				}
				m.propagator[t1][ix][iy] = list
			}
		}
	}
}

func (m *Overlap) Width() int          { return m.width }
func (m *Overlap) Height() int         { return m.height }
func (m *Overlap) NumPatterns() int    { return len(m.patterns) }
func (m *Overlap) Weight(t int) float64 { return m.weights[t] }
func (m *Overlap) PeriodicOut() bool   { return m.periodicOut }
func (m *Overlap) UpscaleFactor() int  { return 4 }

func (m *Overlap) Foundation() (int, bool) {
	return m.foundation, m.hasFoundation
}

func (m *Overlap) OnBoundary(x, y int) bool {
	return !m.periodicOut && (x+m.n > m.width || y+m.n > m.height)
}

// Propagate runs one sweep over dirty cells. For each dirty cell and
// every offset within [-(n-1), n-1]^2, it finds the neighboring cell
// (wrapping if periodic) and eliminates any pattern there that no
// remaining pattern at the dirty cell supports.
func (m *Overlap) Propagate(w *wave.Wave) bool {
	n := m.n
	didChange := false

	for x1 := 0; x1 < m.width; x1++ {
		for y1 := 0; y1 < m.height; y1++ {
			if !w.Dirty(x1, y1) {
				continue
			}
			w.SetDirty(x1, y1, false)

			for dx := -n + 1; dx < n; dx++ {
				for dy := -n + 1; dy < n; dy++ {
					sx, sy := x1+dx, y1+dy
					if m.periodicOut {
						sx = wrapCoord(sx, m.width)
						sy = wrapCoord(sy, m.height)
					} else if sx < 0 || sy < 0 || sx+n > m.width || sy+n > m.height {
						continue
					}

					for t2 := 0; t2 < len(m.patterns); t2++ {
						if !w.Possible(sx, sy, t2) {
							continue
						}

						canFit := false
						for _, t3 := range m.propagator[t2][n-1-dx][n-1-dy] {
							if w.Possible(x1, y1, int(t3)) {
								canFit = true
								break
							}
						}

						if !canFit {
							w.Eliminate(sx, sy, t2)
							didChange = true
						}
					}
				}
			}
		}
	}

	return didChange
}

func wrapCoord(v, size int) int {
	if v < 0 {
		return v + size
	}
	if v >= size {
		return v - size
	}
	return v
}

// graphics collects, for every output cell, the palette-index
// contributors implied by every pattern still possible at the cells that
// overlap it.
func (m *Overlap) graphics(w *wave.Wave) [][]palette.ColorIndex {
	result := make([][]palette.ColorIndex, m.width*m.height)

	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			var contributors []palette.ColorIndex
			for dy := 0; dy < m.n; dy++ {
				for dx := 0; dx < m.n; dx++ {
					sx := x - dx
					if sx < 0 {
						sx += m.width
					}
					sy := y - dy
					if sy < 0 {
						sy += m.height
					}
					if m.OnBoundary(sx, sy) {
						continue
					}
					for t := 0; t < len(m.patterns); t++ {
						if w.Possible(sx, sy, t) {
							contributors = append(contributors, m.patterns[t][dx+dy*m.n])
						}
					}
				}
			}
			result[y*m.width+x] = contributors
		}
	}

	return result
}

// Image blends every contributing color at each cell, matching
// image_from_graphics in the original implementation: an empty
// contributor list renders opaque black, a single contributor renders
// its exact color, and multiple contributors average channel-wise.
func (m *Overlap) Image(w *wave.Wave) image.Image {
	g := m.graphics(w)
	out := image.NewRGBA(image.Rect(0, 0, m.width, m.height))

	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			contributors := g[y*m.width+x]
			var c color.RGBA
			switch len(contributors) {
			case 0:
				c = color.RGBA{0, 0, 0, 255}
			case 1:
				c = m.palette.At(contributors[0])
			default:
				var r, gg, b, a int
				for _, idx := range contributors {
					pc := m.palette.At(idx)
					r += int(pc.R)
					gg += int(pc.G)
					b += int(pc.B)
					a += int(pc.A)
				}
				n := len(contributors)
				c = color.RGBA{uint8(r / n), uint8(gg / n), uint8(b / n), uint8(a / n)}
			}
			out.SetRGBA(x, y, c)
		}
	}

	return out
}
