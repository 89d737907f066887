package transpose

import (
	"fmt"
	"math"

	"github.com/19829984/multires-transpose/pkg/bmesh"
)

// StallEpsilon is the minimum error improvement between consecutive
// reshape passes; below it further passes are not reducing error and
// the loop stops. Observed reshape behavior includes repeated identical
// and oscillating diffs, which must neither spin to the iteration cap
// nor be mistaken for reaching the threshold.
const StallEpsilon = 1e-9

// StopReason reports which bound ended a convergence run.
type StopReason int

const (
	StopFixed         StopReason = iota // fixed mode ran its full count
	StopThreshold                       // error dropped below threshold
	StopStalled                         // error stopped improving
	StopMaxIterations                   // iteration cap reached
)

func (r StopReason) String() string {
	switch r {
	case StopFixed:
		return "fixed"
	case StopThreshold:
		return "threshold"
	case StopStalled:
		return "stalled"
	case StopMaxIterations:
		return "max_iterations"
	default:
		return fmt.Sprintf("StopReason(%d)", int(r))
	}
}

// ConvergeOptions bounds a convergence run.
type ConvergeOptions struct {
	Threshold     float64
	Auto          bool
	MaxIterations int
}

// ConvergeResult reports how a convergence run ended. Stalling and
// hitting the iteration cap are best-effort outcomes, not failures.
type ConvergeResult struct {
	Iterations int
	FinalDiff  float64
	Reason     StopReason
}

// ReshapeFunc invokes the external reshape operator once.
type ReshapeFunc func() error

// EvalFunc returns the current evaluated (post-modifier) mesh of the
// object being reshaped.
type EvalFunc func() (*bmesh.Mesh, error)

// Converge runs the reshape operator until the evaluated shape is close
// enough to the part. In fixed mode (Auto false) reshape runs exactly
// MaxIterations times. In adaptive mode the error after each pass is
// the L-infinity distance between the evaluated mesh and the part,
// position-aligned by index, and the loop stops at the first of:
// error at or below Threshold, error improvement at or below
// StallEpsilon, or MaxIterations passes.
func Converge(reshape ReshapeFunc, eval EvalFunc, part *bmesh.Mesh, opts ConvergeOptions) (ConvergeResult, error) {
	if !opts.Auto {
		for i := 0; i < opts.MaxIterations; i++ {
			if err := reshape(); err != nil {
				return ConvergeResult{Iterations: i}, err
			}
		}
		res := ConvergeResult{Iterations: opts.MaxIterations, FinalDiff: math.NaN(), Reason: StopFixed}
		if m, err := eval(); err == nil {
			if diff, derr := maxVertDistance(m, part); derr == nil {
				res.FinalDiff = diff
			}
		}
		return res, nil
	}

	prev := math.NaN()
	for i := 1; i <= opts.MaxIterations; i++ {
		if err := reshape(); err != nil {
			return ConvergeResult{Iterations: i - 1}, err
		}
		m, err := eval()
		if err != nil {
			return ConvergeResult{Iterations: i}, err
		}
		diff, err := maxVertDistance(m, part)
		if err != nil {
			return ConvergeResult{Iterations: i}, err
		}
		if diff <= opts.Threshold {
			return ConvergeResult{Iterations: i, FinalDiff: diff, Reason: StopThreshold}, nil
		}
		if !math.IsNaN(prev) && math.Abs(diff-prev) <= StallEpsilon {
			return ConvergeResult{Iterations: i, FinalDiff: diff, Reason: StopStalled}, nil
		}
		prev = diff
	}
	return ConvergeResult{Iterations: opts.MaxIterations, FinalDiff: prev, Reason: StopMaxIterations}, nil
}

// maxVertDistance returns the L-infinity norm over the two meshes'
// vertex sets: the largest per-axis position difference, matched by
// index. The meshes must have equal vertex counts.
func maxVertDistance(a, b *bmesh.Mesh) (float64, error) {
	if a.VertCount() != b.VertCount() {
		return 0, fmt.Errorf("convergence check: %w: evaluated has %d verts, part has %d",
			bmesh.ErrVertCountMismatch, a.VertCount(), b.VertCount())
	}
	max := 0.0
	for i, v := range a.Verts {
		d := v.Co.Sub(b.Verts[i].Co)
		for _, c := range []float64{math.Abs(d.X), math.Abs(d.Y), math.Abs(d.Z)} {
			if c > max {
				max = c
			}
		}
	}
	return max, nil
}
