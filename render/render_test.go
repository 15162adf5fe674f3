package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/arjwright/wfc/model"
	"github.com/arjwright/wfc/palette"
	"github.com/arjwright/wfc/pattern"
	"github.com/arjwright/wfc/solve"
)

func TestRenderUpscalesOverlapping(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, color.RGBA{1, 2, 3, 255})
		}
	}
	sample, err := palette.New(img)
	if err != nil {
		t.Fatalf("palette.New: %v", err)
	}
	prevalence, err := pattern.Extract(sample, 3, true, 1)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	m := model.NewOverlapping(prevalence, sample.Palette, 3, true, 5, 6, 0, false)
	w := solve.NewWave(m)
	solve.Run(m, w, 1, 0, nil)

	out := Render(m, w)
	if got, want := out.Bounds().Dx(), 5*4; got != want {
		t.Errorf("width = %d, want %d", got, want)
	}
	if got, want := out.Bounds().Dy(), 6*4; got != want {
		t.Errorf("height = %d, want %d", got, want)
	}
}

func TestRenderDoesNotUpscaleTiled(t *testing.T) {
	tiles := []model.TileDef{{Name: "grass", Symmetry: "X", Weight: 1}}
	neighbors := []model.NeighborDef{{LeftTile: "grass", RightTile: "grass"}}
	loader := func(name string) ([]color.RGBA, error) { return make([]color.RGBA, 9), nil }
	m, err := model.NewTiled(tiles, neighbors, nil, 3, true, loader, 2, 2, true)
	if err != nil {
		t.Fatalf("NewTiled: %v", err)
	}
	w := solve.NewWave(m)
	solve.Run(m, w, 1, 0, nil)

	out := Render(m, w)
	if got, want := out.Bounds().Dx(), 2*3; got != want {
		t.Errorf("width = %d, want %d", got, want)
	}
}
