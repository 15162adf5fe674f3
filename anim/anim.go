// Package anim records a solve in progress as an animated GIF: a frame
// every gifInterval iterations, a long pause on the final frame, and -
// for periodic outputs - a diagonal scroll appended after convergence
// (grounded in the reference implementation's result.cpp run() and
// image.cpp scroll_diagonally).
package anim

import (
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"os"

	"github.com/arjwright/wfc/model"
	"github.com/arjwright/wfc/render"
	"github.com/arjwright/wfc/solve"
	"github.com/arjwright/wfc/wave"
)

const (
	gifInterval      = 16  // save a frame every X iterations
	gifDelayCentiSec = 1   // 1/100s per frame during the solve
	gifEndPauseCenti = 200 // pause 2s on the final frame
)

// Recorder accumulates frames for one job's GIF export.
type Recorder struct {
	model  model.Model
	frames []*image.Paletted
	delays []int
}

// NewRecorder creates a Recorder for m.
func NewRecorder(m model.Model) *Recorder {
	return &Recorder{model: m}
}

// Snapshot is a solve.Snapshot that records a frame every gifInterval
// iterations.
func (r *Recorder) Snapshot(iteration int, w *wave.Wave) {
	if iteration%gifInterval != 0 {
		return
	}
	r.append(render.Render(r.model, w), gifDelayCentiSec)
}

// Finish appends the end-pause frame and, if the model wraps around
// (PeriodicOut), Width() further frames, each scrolled diagonally by one
// more pixel of the rendered image. It appends nothing unless result is
// solve.Success. Call once after solve.Run returns.
func (r *Recorder) Finish(w *wave.Wave, result solve.Result) {
	if result != solve.Success {
		return
	}

	img := render.Render(r.model, w)
	r.append(img, gifEndPauseCenti)

	if !r.model.PeriodicOut() {
		return
	}

	for i := 0; i < r.model.Width(); i++ {
		img = scrollDiagonally(img)
		r.append(img, gifDelayCentiSec)
	}
}

// WriteFile encodes the recorded frames to path as an animated GIF.
func (r *Recorder) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return gif.EncodeAll(f, &gif.GIF{
		Image: r.frames,
		Delay: r.delays,
	})
}

func (r *Recorder) append(img image.Image, delayCentiSec int) {
	bounds := img.Bounds()
	paletted := image.NewPaletted(bounds, palette.Plan9)
	draw.FloydSteinberg.Draw(paletted, bounds, img, image.Point{})
	r.frames = append(r.frames, paletted)
	r.delays = append(r.delays, delayCentiSec)
}

// scrollDiagonally wraps every pixel one step diagonally, matching the
// reference implementation's scroll_diagonally: the pixel now at (x, y)
// was previously at (x+1, y+1) modulo the image dimensions.
func scrollDiagonally(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sx := bounds.Min.X + (x+1)%w
			sy := bounds.Min.Y + (y+1)%h
			out.Set(x, y, img.At(sx, sy))
		}
	}
	return out
}
