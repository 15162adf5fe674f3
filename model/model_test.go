package model

import (
	"image"
	"image/color"
	"testing"

	"github.com/arjwright/wfc/palette"
	"github.com/arjwright/wfc/pattern"
)

func checkerboardSample(t *testing.T) *palette.Image {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			c := color.RGBA{0, 0, 0, 255}
			if (x+y)%2 == 0 {
				c = color.RGBA{255, 255, 255, 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	pim, err := palette.New(img)
	if err != nil {
		t.Fatalf("palette.New: %v", err)
	}
	return pim
}

func TestOverlapAgreementSymmetry(t *testing.T) {
	sample := checkerboardSample(t)
	prevalence, err := pattern.Extract(sample, 2, true, 8)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	m := NewOverlapping(prevalence, sample.Palette, 2, true, 8, 8, 0, false)

	n := m.n
	span := 2*n - 1
	for t1 := 0; t1 < len(m.patterns); t1++ {
		for ix := 0; ix < span; ix++ {
			dx := ix - (n - 1)
			for iy := 0; iy < span; iy++ {
				dy := iy - (n - 1)
				for _, t2u := range m.propagator[t1][ix][iy] {
					t2 := int(t2u)
					// t1 compatible with t2 at (dx,dy) must imply t2
					// compatible with t1 at (-dx,-dy).
					found := false
					for _, back := range m.propagator[t2][n-1-dx][n-1-dy] {
						if int(back) == t1 {
							found = true
							break
						}
					}
					if !found {
						t.Fatalf("agreement symmetry violated: t1=%d t2=%d dx=%d dy=%d", t1, t2, dx, dy)
					}
				}
			}
		}
	}
}

func TestTiledDirectionSymmetry(t *testing.T) {
	tiles := []TileDef{{Name: "grass", Symmetry: "X", Weight: 1}}
	neighbors := []NeighborDef{{LeftTile: "grass", LeftRotation: 0, RightTile: "grass", RightRotation: 0}}

	loader := func(name string) ([]color.RGBA, error) {
		return make([]color.RGBA, 4), nil
	}

	m, err := NewTiled(tiles, neighbors, nil, 2, false, loader, 4, 4, true)
	if err != nil {
		t.Fatalf("NewTiled: %v", err)
	}

	t_ := m.NumPatterns()
	for a := 0; a < t_; a++ {
		for b := 0; b < t_; b++ {
			if got, want := m.propagator.Get(dirLeft, a, b), m.propagator.Get(dirRight, b, a); got != want {
				t.Errorf("prop[left][%d][%d] = %v, want prop[right][%d][%d] = %v", a, b, got, b, a, want)
			}
			if got, want := m.propagator.Get(dirUp, a, b), m.propagator.Get(dirDown, b, a); got != want {
				t.Errorf("prop[up][%d][%d] = %v, want prop[down][%d][%d] = %v", a, b, got, b, a, want)
			}
		}
	}
}

func TestTiledSymmetryCardinality(t *testing.T) {
	cases := []struct {
		class string
		want  int
	}{
		{"X", 1},
		{"I", 2},
		{"\\", 2},
		{"T", 4},
		{"L", 4},
	}
	for _, tc := range cases {
		c, ok := symmetryClasses[tc.class]
		if !ok {
			t.Fatalf("unknown class %q", tc.class)
		}
		if c.cardinality != tc.want {
			t.Errorf("%s: cardinality = %d, want %d", tc.class, c.cardinality, tc.want)
		}
	}
}

func TestTiledIOnlyNoNeighborsRejectsEverySubsequentAdjacency(t *testing.T) {
	tiles := []TileDef{{Name: "rail", Symmetry: "I", Weight: 1}}
	loader := func(name string) ([]color.RGBA, error) {
		return make([]color.RGBA, 4), nil
	}
	m, err := NewTiled(tiles, nil, nil, 2, false, loader, 2, 2, false)
	if err != nil {
		t.Fatalf("NewTiled: %v", err)
	}
	if m.NumPatterns() != 2 {
		t.Fatalf("expected cardinality-2 pattern set, got %d", m.NumPatterns())
	}
	for d := 0; d < 4; d++ {
		for a := 0; a < 2; a++ {
			for b := 0; b < 2; b++ {
				if m.propagator.Get(d, a, b) {
					t.Fatalf("expected no adjacency to be allowed with no declared neighbors, got prop[%d][%d][%d]=true", d, a, b)
				}
			}
		}
	}
}

func TestTiledSubsetFiltersTilesAndNeighbors(t *testing.T) {
	tiles := []TileDef{
		{Name: "a", Symmetry: "X", Weight: 1},
		{Name: "b", Symmetry: "X", Weight: 1},
	}
	neighbors := []NeighborDef{
		{LeftTile: "a", RightTile: "b"},
	}
	loader := func(name string) ([]color.RGBA, error) {
		return make([]color.RGBA, 4), nil
	}

	full, err := NewTiled(tiles, neighbors, nil, 2, false, loader, 2, 2, false)
	if err != nil {
		t.Fatalf("NewTiled full: %v", err)
	}
	if full.NumPatterns() != 2 {
		t.Fatalf("full model: want 2 patterns, got %d", full.NumPatterns())
	}

	subset, err := NewTiled(tiles, neighbors, []string{"a"}, 2, false, loader, 2, 2, false)
	if err != nil {
		t.Fatalf("NewTiled subset: %v", err)
	}
	if subset.NumPatterns() != 1 {
		t.Fatalf("subset model: want 1 pattern, got %d", subset.NumPatterns())
	}
	if !full.propagator.Get(dirRight, 0, 1) {
		t.Errorf("full model: expected declared a-b neighbor to be allowed")
	}
	for d := 0; d < 4; d++ {
		if subset.propagator.Get(d, 0, 0) {
			t.Errorf("subset model: neighbor pair mentioning excluded tile b leaked into prop[%d][0][0]", d)
		}
	}
}
