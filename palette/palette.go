// Package palette builds the color index mapping of a sample image and
// exposes it as a flat, wrap-addressable buffer of palette indices - the
// input format the pattern extractor walks.
package palette

import (
	"fmt"
	"image"
	"image/color"
)

// MaxColors is the hard cap on distinct colors in a sample: a ColorIndex
// is a single byte (spec.md §1 Non-goals: ">255 palette colors").
const MaxColors = 256

// ColorIndex is a palette slot.
type ColorIndex = uint8

// Palette is an ordered, deduplicated sequence of colors. A color's
// position is its index; the first occurrence in the sample wins.
type Palette struct {
	colors []color.RGBA
}

// Len returns the number of distinct colors.
func (p *Palette) Len() int { return len(p.colors) }

// At returns the color stored at idx.
func (p *Palette) At(idx ColorIndex) color.RGBA { return p.colors[idx] }

// indexOf returns the index of c in the palette, and whether it was found.
func (p *Palette) indexOf(c color.RGBA) (ColorIndex, bool) {
	for i, existing := range p.colors {
		if existing == c {
			return ColorIndex(i), true
		}
	}
	return 0, false
}

// add inserts c if it's new and returns its index. Returns an error if
// the palette would exceed MaxColors.
func (p *Palette) add(c color.RGBA) (ColorIndex, error) {
	if idx, ok := p.indexOf(c); ok {
		return idx, nil
	}
	if len(p.colors) >= MaxColors {
		return 0, fmt.Errorf("palette: too many colors in image (max %d)", MaxColors)
	}
	p.colors = append(p.colors, c)
	return ColorIndex(len(p.colors) - 1), nil
}

// Image is a width x height buffer of palette indices, plus the palette
// itself. Built by scanning an image.Image once.
type Image struct {
	Width, Height int
	Data          []ColorIndex // Width * Height, row-major
	Palette       *Palette
}

// AtWrapped reads the palette index at (x, y), with both coordinates
// taken modulo the dimensions - used when extracting patterns from a
// toroidal (periodic_in) sample.
func (im *Image) AtWrapped(x, y int) ColorIndex {
	xw := x % im.Width
	if xw < 0 {
		xw += im.Width
	}
	yw := y % im.Height
	if yw < 0 {
		yw += im.Height
	}
	return im.Data[im.Width*yw+xw]
}

// New scans src and builds a paletted Image. Greyscale sources are
// promoted to RGBA with alpha set to luminance; fully-transparent pixels
// are canonicalized to {0,0,0,0} so that all fully-transparent pixels
// collapse onto the same palette entry regardless of their (ignored)
// color channels.
func New(src image.Image) (*Image, error) {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	im := &Image{
		Width:   w,
		Height:  h,
		Data:    make([]ColorIndex, w*h),
		Palette: &Palette{},
	}

	_, isGrey := src.(*image.Gray)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := normalize(src.At(bounds.Min.X+x, bounds.Min.Y+y), isGrey)
			idx, err := im.Palette.add(c)
			if err != nil {
				return nil, err
			}
			im.Data[y*w+x] = idx
		}
	}

	return im, nil
}

func normalize(c color.Color, isGrey bool) color.RGBA {
	r, g, b, a := c.RGBA()
	rgba := color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}

	if isGrey {
		rgba.A = rgba.R // luminance as alpha
	}

	if rgba.A == 0 {
		return color.RGBA{0, 0, 0, 0}
	}

	return rgba
}
