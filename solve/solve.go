// Package solve drives the observe/propagate loop to convergence: it
// creates a Wave for a Model, seeds any foundation constraint, and then
// alternates minimum-entropy observation with propagation to a fixed
// point until the wave is fully decided, contradicts, or the iteration
// limit is reached.
package solve

import (
	"math"
	"math/rand"

	"github.com/arjwright/wfc/model"
	"github.com/arjwright/wfc/wave"
)

// Result is the outcome of a solve attempt.
type Result int

const (
	Unfinished Result = iota
	Success
	Fail
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case Fail:
		return "fail"
	default:
		return "unfinished"
	}
}

// rngFromSeed returns a deterministic *rand.Rand for a solve attempt.
// Each solve owns exactly one RNG (spec.md §5); there is no multi-stream
// derivation here because a single Wave is never handed to more than one
// concurrent caller.
func rngFromSeed(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// NewWave creates a Wave for m and, if m has a foundation pattern, seeds
// it at the bottom row and propagates to a fixed point before any
// observation happens (spec.md §4.6).
func NewWave(m model.Model) *wave.Wave {
	w := wave.New(m.Width(), m.Height(), m.NumPatterns())

	foundation, ok := m.Foundation()
	if !ok {
		return w
	}

	height := m.Height()
	numPatterns := m.NumPatterns()

	for x := 0; x < m.Width(); x++ {
		for t := 0; t < numPatterns; t++ {
			if t != foundation {
				w.Eliminate(x, height-1, t)
			}
		}
		for y := 0; y < height-1; y++ {
			w.Eliminate(x, y, foundation)
		}
	}

	for m.Propagate(w) {
	}

	return w
}

// snapshotSum is S(x,y): the sum of weights of patterns still possible at
// a cell - the "exp-entropy" surrogate from spec.md §4.7.
func snapshotSum(m model.Model, w *wave.Wave, x, y int) (sum float64, count int) {
	for t := 0; t < m.NumPatterns(); t++ {
		if w.Possible(x, y, t) {
			sum += m.Weight(t)
			count++
		}
	}
	return sum, count
}

// observe finds the minimum-entropy undecided cell and collapses it to a
// single pattern drawn by weighted sampling. See spec.md §4.7 for the
// tie-break rule: each cell's S gets 0.5*u noise added before the
// comparison, and the first cell in scan order to strictly beat the
// running minimum wins, so the noise can only reorder cells whose S values
// differ by less than 0.5 (with integer prevalence weights, only exact
// ties). The noise's 0.5 scale is coupled to the weight units by design
// (spec.md §9 Open Question) and is preserved here rather than made
// scale-free, to match the reference behavior bit-for-bit.
func observe(m model.Model, w *wave.Wave, rng *rand.Rand) Result {
	min := math.Inf(1)
	argx, argy := -1, -1

	for x := 0; x < m.Width(); x++ {
		for y := 0; y < m.Height(); y++ {
			if m.OnBoundary(x, y) {
				continue
			}

			sum, count := snapshotSum(m, w, x, y)
			if count == 0 || sum == 0 {
				return Fail
			}
			if count == 1 {
				continue // already frozen
			}

			entropy := sum + 0.5*rng.Float64()
			if entropy < min {
				min = entropy
				argx, argy = x, y
			}
		}
	}

	if argx < 0 {
		return Success
	}

	distribution := make([]float64, m.NumPatterns())
	for t := range distribution {
		if w.Possible(argx, argy, t) {
			distribution[t] = m.Weight(t)
		}
	}
	chosen := weightedSample(distribution, rng.Float64())
	w.Collapse(argx, argy, chosen)

	return Unfinished
}

// weightedSample picks an index from a weighted categorical distribution
// given u in [0,1). If every weight is zero, it falls back to a uniform
// pick over the indices (spec.md §4.9).
func weightedSample(weights []float64, u float64) int {
	sum := 0.0
	for _, a := range weights {
		sum += a
	}
	if sum == 0 {
		return int(u * float64(len(weights)))
	}

	threshold := u * sum
	accumulated := 0.0
	for i, a := range weights {
		accumulated += a
		if threshold <= accumulated {
			return i
		}
	}
	return 0
}

// Snapshot is invoked by Run after every observation, before the
// subsequent propagation pass - used to emit progress frames (e.g. into
// a GIF recorder) without coupling the solver to any particular output
// format.
type Snapshot func(iteration int, w *wave.Wave)

// Run drives the observe/propagate loop until success, failure, or the
// iteration limit (0 = unbounded) is reached. snapshot, if non-nil, is
// called after every observation.
func Run(m model.Model, w *wave.Wave, seed int64, limit int, snapshot Snapshot) Result {
	rng := rngFromSeed(seed)

	for l := 0; limit == 0 || l < limit; l++ {
		result := observe(m, w, rng)

		if snapshot != nil {
			snapshot(l, w)
		}

		if result != Unfinished {
			return result
		}

		for m.Propagate(w) {
		}
	}

	return Unfinished
}
