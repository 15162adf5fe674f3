// Package pattern implements the Overlapping-mode pattern extractor: it
// enumerates N x N windows of a paletted sample under the D4 symmetry
// group, tallies their prevalence, and exposes a bijective hash so a
// pattern's content never needs to be stored twice.
package pattern

import (
	"fmt"
	"math"

	"github.com/arjwright/wfc/palette"
)

// Pattern is a length-N*N sequence of palette indices, row-major.
type Pattern []palette.ColorIndex

// Hash is the base-P little-endian integer interpretation of a pattern's
// content. Hash is a bijection on patterns for a fixed N and palette
// size P, as long as P^(N*N) < 2^64 (see CheckHashCapacity).
type Hash = uint64

// CheckHashCapacity returns an error if a pattern of size n*n over a
// palette of paletteSize colors cannot be represented without hash
// collisions in a uint64 (spec.md §7: "pattern-hash overflow").
func CheckHashCapacity(n, paletteSize int) error {
	// P^(n*n) is computed in floating point to avoid overflow while
	// checking whether it would overflow; precision loss near the
	// boundary only affects pathological paletteSize/n combinations.
	bits := float64(n*n) * math.Log2(float64(paletteSize))
	if bits >= 64 {
		return fmt.Errorf("pattern: palette size %d and pattern size %d overflow a 64-bit hash (%d^%d >= 2^64)", paletteSize, n, paletteSize, n*n)
	}
	return nil
}

// HashFrom computes the pattern hash of p over a palette of the given size.
func HashFrom(p Pattern, paletteSize int) Hash {
	var result Hash
	power := Hash(1)
	ps := Hash(paletteSize)
	for i := 0; i < len(p); i++ {
		result += Hash(p[i]) * power
		power *= ps
	}
	return result
}

// FromHash reconstructs the n*n pattern encoded by hash over a palette of
// the given size. FromHash(HashFrom(p, P), n, P) == p for every pattern p
// produced by this package.
func FromHash(hash Hash, n, paletteSize int) Pattern {
	residue := hash
	result := make(Pattern, n*n)

	ps := Hash(paletteSize)
	power := Hash(1)
	for i := 0; i < n*n; i++ {
		power *= ps
	}
	for i := len(result) - 1; i >= 0; i-- {
		power /= ps
		var count palette.ColorIndex
		for residue >= power {
			residue -= power
			count++
		}
		result[i] = count
	}

	return result
}

// at reads the window anchored at (x, y), wrapping both coordinates -
// extraction always walks a toroidal view of the sample, and the caller
// decides how far the anchors range depending on periodic_in.
func at(sample *palette.Image, n, x, y int) Pattern {
	p := make(Pattern, n*n)
	for dy := 0; dy < n; dy++ {
		for dx := 0; dx < n; dx++ {
			p[dy*n+dx] = sample.AtWrapped(x+dx, y+dy)
		}
	}
	return p
}

// rotate returns p rotated 90 degrees clockwise.
func rotate(p Pattern, n int) Pattern {
	out := make(Pattern, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			out[y*n+x] = p[n-1-y+x*n]
		}
	}
	return out
}

// reflect returns p horizontally mirrored.
func reflect(p Pattern, n int) Pattern {
	out := make(Pattern, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			out[y*n+x] = p[n-1-x+y*n]
		}
	}
	return out
}

// variants returns the 8 D4 orientations of p, in the canonical order:
// identity, reflect, rotate, reflect(rotate), rotate^2, reflect(rotate^2),
// rotate^3, reflect(rotate^3).
func variants(p Pattern, n int) [8]Pattern {
	var v [8]Pattern
	v[0] = p
	v[1] = reflect(v[0], n)
	v[2] = rotate(v[0], n)
	v[3] = reflect(v[2], n)
	v[4] = rotate(v[2], n)
	v[5] = reflect(v[4], n)
	v[6] = rotate(v[4], n)
	v[7] = reflect(v[6], n)
	return v
}

// Prevalence maps a pattern hash to its observed tally (used as the
// pattern's weight).
type Prevalence map[Hash]int

// Extract enumerates every N x N window of sample (over the whole sample
// if periodicIn, else only anchors that stay in-bounds), keeps the first
// symmetry variants of each (1..8, in the order documented on variants),
// and tallies pattern hashes. n must not exceed either sample dimension.
func Extract(sample *palette.Image, n int, periodicIn bool, symmetry int) (Prevalence, error) {
	if n > sample.Width || n > sample.Height {
		return nil, fmt.Errorf("pattern: pattern size %d exceeds sample dimensions %dx%d", n, sample.Width, sample.Height)
	}
	if symmetry < 1 || symmetry > 8 {
		return nil, fmt.Errorf("pattern: symmetry must be in 1..8, got %d", symmetry)
	}
	if err := CheckHashCapacity(n, sample.Palette.Len()); err != nil {
		return nil, err
	}

	yLimit, xLimit := sample.Height, sample.Width
	if !periodicIn {
		yLimit = sample.Height - n + 1
		xLimit = sample.Width - n + 1
	}

	prevalence := Prevalence{}
	paletteSize := sample.Palette.Len()

	for y := 0; y < yLimit; y++ {
		for x := 0; x < xLimit; x++ {
			vs := variants(at(sample, n, x, y), n)
			for k := 0; k < symmetry; k++ {
				prevalence[HashFrom(vs[k], paletteSize)]++
			}
		}
	}

	return prevalence, nil
}

// ExtractFoundation returns the hash of the identity-orientation pattern
// anchored at the bottom-right corner of the sample, (width-1, height-1).
// This is the deterministic re-specification of spec.md §9's "foundation
// hash" open question: the reference implementation's running-overwrite
// during the full extraction loop made the result depend on hash-bucket
// write order, which is not reproducible across implementations; pinning
// it to one specific, always-present anchor keeps foundation seeding
// deterministic without changing its intent (a pattern drawn from the
// bottom of the sample).
func ExtractFoundation(sample *palette.Image, n int) Hash {
	p := at(sample, n, sample.Width-1, sample.Height-1)
	return HashFrom(p, sample.Palette.Len())
}
