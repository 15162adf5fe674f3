package model

import (
	"fmt"
	"image"
	"image/color"

	"github.com/arjwright/wfc/grid"
	"github.com/arjwright/wfc/wave"
)

// Direction indices into the Tiled propagator's first axis.
const (
	dirRight = 0
	dirDown  = 1
	dirLeft  = 2
	dirUp    = 3
)

// TileDef is one hand-authored tile: its symmetry class, relative
// weight, and the bitmap(s) a TileLoader can produce for it.
type TileDef struct {
	Name     string
	Symmetry string // one of "X", "I", "L", "T", "\"
	Weight   float64
}

// NeighborDef declares that an oriented left tile may sit immediately to
// the left of an oriented right tile.
type NeighborDef struct {
	LeftTile      string
	LeftRotation  int
	RightTile     string
	RightRotation int
}

// TileLoader returns the tileSize*tileSize RGBA samples (row-major) for
// the named tile, optionally suffixed " <rotation>" in unique mode.
type TileLoader func(name string) ([]color.RGBA, error)

type symmetryClass struct {
	cardinality int
	rotate      func(int) int
	reflect     func(int) int
}

var symmetryClasses = map[string]symmetryClass{
	"X": {1, func(i int) int { return i }, func(i int) int { return i }},
	"I": {2, func(i int) int { return 1 - i }, func(i int) int { return i }},
	"\\": {2, func(i int) int { return 1 - i }, func(i int) int { return 1 - i }},
	"T": {4, func(i int) int { return (i + 1) % 4 }, func(i int) int {
		if i%2 == 0 {
			return i
		}
		return 4 - i
	}},
	"L": {4, func(i int) int { return (i + 1) % 4 }, func(i int) int {
		if i%2 == 0 {
			return i + 1
		}
		return i - 1
	}},
}

// Tiled is the Tiled-mode model: a dense 4-direction boolean compatibility
// table between oriented tile patterns, built from each tile's symmetry
// class and the declared neighbor pairs.
type Tiled struct {
	width, height int
	periodicOut   bool
	tileSize      int
	tiles         [][]color.RGBA // one bitmap per global pattern index
	weights       []float64
	propagator    *grid.Dense3[bool] // [4][numPatterns][numPatterns]
}

// NewTiled builds a Tiled model. subset, if non-empty, restricts which
// tiles (and the neighbor pairs mentioning only kept tiles) are
// materialized - an empty subset is equivalent to the full tile set.
func NewTiled(tiles []TileDef, neighbors []NeighborDef, subset []string, tileSize int, unique bool, loader TileLoader, width, height int, periodicOut bool) (*Tiled, error) {
	keep := map[string]bool{}
	for _, name := range subset {
		keep[name] = true
	}
	filtered := func(name string) bool {
		return len(keep) == 0 || keep[name]
	}

	var actionMaps [][8]int
	var weights []float64
	var bitmaps [][]color.RGBA
	firstOccurrence := map[string]int{}

	for _, tile := range tiles {
		if !filtered(tile.Name) {
			continue
		}

		sym := tile.Symmetry
		if sym == "" {
			sym = "X"
		}
		class, ok := symmetryClasses[sym]
		if !ok {
			return nil, fmt.Errorf("model: unknown tile symmetry class %q for tile %q", sym, tile.Name)
		}

		base := len(actionMaps)
		firstOccurrence[tile.Name] = base

		for t := 0; t < class.cardinality; t++ {
			var m [8]int
			m[0] = t
			m[1] = class.rotate(t)
			m[2] = class.rotate(m[1])
			m[3] = class.rotate(m[2])
			m[4] = class.reflect(t)
			m[5] = class.reflect(m[1])
			m[6] = class.reflect(m[2])
			m[7] = class.reflect(m[3])
			for s := range m {
				m[s] += base
			}
			actionMaps = append(actionMaps, m)
			weight := tile.Weight
			if weight == 0 {
				weight = 1.0
			}
			weights = append(weights, weight)
		}

		tileBitmaps, err := loadTileBitmaps(loader, tile.Name, class.cardinality, tileSize, unique)
		if err != nil {
			return nil, err
		}
		bitmaps = append(bitmaps, tileBitmaps...)
	}

	numPatterns := len(actionMaps)
	propagator := grid.NewDense3[bool](4, numPatterns, numPatterns, false)

	for _, nb := range neighbors {
		if !filtered(nb.LeftTile) || !filtered(nb.RightTile) {
			continue
		}
		leftBase, ok := firstOccurrence[nb.LeftTile]
		if !ok {
			continue
		}
		rightBase, ok := firstOccurrence[nb.RightTile]
		if !ok {
			continue
		}

		l := actionMaps[leftBase][nb.LeftRotation]
		r := actionMaps[rightBase][nb.RightRotation]
		d := actionMaps[l][1]
		u := actionMaps[r][1]

		propagator.Set(dirRight, l, r, true)
		propagator.Set(dirRight, actionMaps[l][6], actionMaps[r][6], true)
		propagator.Set(dirRight, actionMaps[r][4], actionMaps[l][4], true)
		propagator.Set(dirRight, actionMaps[r][2], actionMaps[l][2], true)

		propagator.Set(dirDown, d, u, true)
		propagator.Set(dirDown, actionMaps[u][6], actionMaps[d][6], true)
		propagator.Set(dirDown, actionMaps[d][4], actionMaps[u][4], true)
		propagator.Set(dirDown, actionMaps[u][2], actionMaps[d][2], true)
	}

	for t1 := 0; t1 < numPatterns; t1++ {
		for t2 := 0; t2 < numPatterns; t2++ {
			propagator.Set(dirLeft, t1, t2, propagator.Get(dirRight, t2, t1))
			propagator.Set(dirUp, t1, t2, propagator.Get(dirDown, t2, t1))
		}
	}

	return &Tiled{
		width:       width,
		height:      height,
		periodicOut: periodicOut,
		tileSize:    tileSize,
		tiles:       bitmaps,
		weights:     weights,
		propagator:  propagator,
	}, nil
}

func loadTileBitmaps(loader TileLoader, name string, cardinality, tileSize int, unique bool) ([][]color.RGBA, error) {
	check := func(bmp []color.RGBA) error {
		if len(bmp) != tileSize*tileSize {
			return fmt.Errorf("model: tile %q bitmap has %d pixels, want %d (tile_size=%d)", name, len(bmp), tileSize*tileSize, tileSize)
		}
		return nil
	}

	if unique {
		out := make([][]color.RGBA, cardinality)
		for t := 0; t < cardinality; t++ {
			bmp, err := loader(fmt.Sprintf("%s %d", name, t))
			if err != nil {
				return nil, err
			}
			if err := check(bmp); err != nil {
				return nil, err
			}
			out[t] = bmp
		}
		return out, nil
	}

	base, err := loader(name)
	if err != nil {
		return nil, err
	}
	if err := check(base); err != nil {
		return nil, err
	}
	out := make([][]color.RGBA, cardinality)
	out[0] = base
	for t := 1; t < cardinality; t++ {
		out[t] = rotateTile(out[t-1], tileSize)
	}
	return out, nil
}

// rotateTile rotates a tileSize x tileSize RGBA bitmap 90 degrees
// clockwise.
func rotateTile(in []color.RGBA, tileSize int) []color.RGBA {
	out := make([]color.RGBA, len(in))
	for y := 0; y < tileSize; y++ {
		for x := 0; x < tileSize; x++ {
			out[y*tileSize+x] = in[tileSize-1-y+x*tileSize]
		}
	}
	return out
}

func (m *Tiled) Width() int           { return m.width }
func (m *Tiled) Height() int          { return m.height }
func (m *Tiled) NumPatterns() int     { return len(m.weights) }
func (m *Tiled) Weight(t int) float64 { return m.weights[t] }
func (m *Tiled) PeriodicOut() bool    { return m.periodicOut }
func (m *Tiled) UpscaleFactor() int   { return 1 }

func (m *Tiled) Foundation() (int, bool) { return -1, false }

func (m *Tiled) OnBoundary(x, y int) bool { return false }

// Propagate runs one sweep over dirty cells. For each cell and each of
// the 4 cardinal directions, it looks at the source cell one step
// against that direction; if that source is dirty, any pattern at the
// target no longer supported by a possible source pattern is eliminated.
func (m *Tiled) Propagate(w *wave.Wave) bool {
	didChange := false
	numPatterns := len(m.weights)

	for x2 := 0; x2 < m.width; x2++ {
		for y2 := 0; y2 < m.height; y2++ {
			for d := 0; d < 4; d++ {
				x1, y1 := x2, y2
				switch d {
				case dirRight:
					if x2 == 0 {
						if !m.periodicOut {
							continue
						}
						x1 = m.width - 1
					} else {
						x1 = x2 - 1
					}
				case dirDown:
					if y2 == m.height-1 {
						if !m.periodicOut {
							continue
						}
						y1 = 0
					} else {
						y1 = y2 + 1
					}
				case dirLeft:
					if x2 == m.width-1 {
						if !m.periodicOut {
							continue
						}
						x1 = 0
					} else {
						x1 = x2 + 1
					}
				case dirUp:
					if y2 == 0 {
						if !m.periodicOut {
							continue
						}
						y1 = m.height - 1
					} else {
						y1 = y2 - 1
					}
				}

				if !w.Dirty(x1, y1) {
					continue
				}

				for t2 := 0; t2 < numPatterns; t2++ {
					if !w.Possible(x2, y2, t2) {
						continue
					}
					supported := false
					for t1 := 0; t1 < numPatterns && !supported; t1++ {
						if w.Possible(x1, y1, t1) {
							supported = m.propagator.Get(d, t1, t2)
						}
					}
					if !supported {
						w.Eliminate(x2, y2, t2)
						didChange = true
					}
				}
			}
		}
	}

	return didChange
}

// Image composites the final tile grid, weighting every pattern still
// possible at a cell by its prevalence - an undecided cell renders as
// the weighted-average blend of its surviving tiles.
func (m *Tiled) Image(w *wave.Wave) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, m.width*m.tileSize, m.height*m.tileSize))
	numPatterns := len(m.weights)

	for x := 0; x < m.width; x++ {
		for y := 0; y < m.height; y++ {
			sum := 0.0
			for t := 0; t < numPatterns; t++ {
				if w.Possible(x, y, t) {
					sum += m.weights[t]
				}
			}

			for yt := 0; yt < m.tileSize; yt++ {
				for xt := 0; xt < m.tileSize; xt++ {
					var c color.RGBA
					if sum == 0 {
						c = color.RGBA{0, 0, 0, 255}
					} else {
						var r, g, b, a float64
						for t := 0; t < numPatterns; t++ {
							if !w.Possible(x, y, t) {
								continue
							}
							pc := m.tiles[t][xt+yt*m.tileSize]
							r += float64(pc.R) * m.weights[t] / sum
							g += float64(pc.G) * m.weights[t] / sum
							b += float64(pc.B) * m.weights[t] / sum
							a += float64(pc.A) * m.weights[t] / sum
						}
						c = color.RGBA{uint8(r), uint8(g), uint8(b), uint8(a)}
					}
					out.SetRGBA(x*m.tileSize+xt, y*m.tileSize+yt, c)
				}
			}
		}
	}

	return out
}
