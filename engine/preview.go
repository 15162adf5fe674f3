// Package engine drives a live ebiten window showing a solve as it
// runs, adapting the ebiten.Game loop the teacher uses to display the
// NES PPU's framebuffer (console.Bus.Layout/Draw/Update) to instead
// display render.Render's output for a Model/Wave pair as the solver
// progresses.
package engine

import (
	"fmt"
	"image"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/arjwright/wfc/model"
	"github.com/arjwright/wfc/render"
	"github.com/arjwright/wfc/solve"
	"github.com/arjwright/wfc/wave"
)

// Preview is an ebiten.Game that shows one model's solve live. It owns
// no emulation state - the solve runs in its own goroutine and Preview
// only ever reads the last rendered frame under a mutex, matching the
// separation in console.Bus between the emulated Run loop and the
// ebiten-driven Draw.
type Preview struct {
	model model.Model

	mu     sync.Mutex
	frame  image.Image
	result solve.Result
	done   bool
}

// NewPreview creates a Preview for m and sets the ebiten window size to
// four times the size of m's rendered frame; the window itself opens when
// the caller passes the Preview to ebiten.RunGame.
func NewPreview(m model.Model) *Preview {
	p := &Preview{model: m, result: solve.Unfinished}
	p.frame = render.Render(m, solve.NewWave(m))

	bounds := p.frame.Bounds()
	ebiten.SetWindowSize(bounds.Dx()*4, bounds.Dy()*4)
	ebiten.SetWindowTitle("wfc preview")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	return p
}

// Solve runs one solve attempt in the background, updating the
// displayed frame after every observation.
func (p *Preview) Solve(seed int64, limit int) {
	go func() {
		w := solve.NewWave(p.model)
		result := solve.Run(p.model, w, seed, limit, p.snapshot)
		p.finish(w, result)
	}()
}

func (p *Preview) snapshot(_ int, w *wave.Wave) {
	p.setFrame(render.Render(p.model, w), solve.Unfinished, false)
}

func (p *Preview) finish(w *wave.Wave, result solve.Result) {
	p.setFrame(render.Render(p.model, w), result, true)
}

func (p *Preview) setFrame(img image.Image, result solve.Result, done bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frame = img
	p.result = result
	p.done = done
}

// Layout returns the size of the rendered frame, forcing ebiten
// to scale the window rather than the framebuffer.
func (p *Preview) Layout(outsideWidth, outsideHeight int) (int, int) {
	bounds := p.frame.Bounds()
	return bounds.Dx(), bounds.Dy()
}

// Draw blits the most recently rendered frame into screen.
func (p *Preview) Draw(screen *ebiten.Image) {
	p.mu.Lock()
	img := p.frame
	result := p.result
	done := p.done
	p.mu.Unlock()

	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			screen.Set(x-bounds.Min.X, y-bounds.Min.Y, img.At(x, y))
		}
	}

	if done {
		ebiten.SetWindowTitle(fmt.Sprintf("wfc preview - %s", result))
	}
}

// Update is part of the ebiten.Game interface; the solve runs on its
// own goroutine so there's nothing to drive here.
func (p *Preview) Update() error {
	return nil
}
