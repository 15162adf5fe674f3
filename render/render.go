// Package render turns a solved (or in-progress) Wave into a displayable
// image.Image, applying whatever native-resolution upscale the model
// calls for (spec.md §6: "Overlapping upscales by 4x, Tiled tiles out to
// W*tile_size x H*tile_size" - the latter is already native resolution by
// the time model.Tiled.Image returns, so its UpscaleFactor is 1).
package render

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/arjwright/wfc/model"
	"github.com/arjwright/wfc/wave"
)

// Render produces the final output image for a Wave under Model m.
func Render(m model.Model, w *wave.Wave) image.Image {
	base := m.Image(w)

	factor := m.UpscaleFactor()
	if factor <= 1 {
		return base
	}

	bounds := base.Bounds()
	scaled := image.NewRGBA(image.Rect(0, 0, bounds.Dx()*factor, bounds.Dy()*factor))
	xdraw.NearestNeighbor.Scale(scaled, scaled.Bounds(), base, bounds, draw.Over, nil)
	return scaled
}
