package solver

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrRootNotBracketed      = errors.New("root not bracketed")
	ErrMaxIterationsExceeded = errors.New("maximum number of function evaluations exceeded")
)

const (
	growthFactor = 1.6
	machineEps   = 2.220446049250313e-16
)

// Result is a converged root.
type Result struct {
	Root        float64
	Evaluations int
}

// Brent finds a root of a one-dimensional function by inverse quadratic
// interpolation with bisection fallback.
type Brent struct {
	Accuracy       float64
	MaxEvaluations int

	lower, upper       float64
	hasLower, hasUpper bool
}

// NewBrent returns a solver with the given absolute accuracy on x.
func NewBrent(accuracy float64, maxEvaluations int) Brent {
	return Brent{Accuracy: accuracy, MaxEvaluations: maxEvaluations}
}

// WithLowerBound keeps bracketing probes at or above x.
func (b Brent) WithLowerBound(x float64) Brent {
	b.lower, b.hasLower = x, true
	return b
}

// WithUpperBound keeps bracketing probes at or below x.
func (b Brent) WithUpperBound(x float64) Brent {
	b.upper, b.hasUpper = x, true
	return b
}

func (b Brent) enforceBounds(x float64) float64 {
	if b.hasLower && x < b.lower {
		return b.lower
	}
	if b.hasUpper && x > b.upper {
		return b.upper
	}
	return x
}

func (b Brent) validate() error {
	if b.MaxEvaluations <= 0 {
		return fmt.Errorf("Brent: max evaluations must be positive, got %d", b.MaxEvaluations)
	}
	if b.hasLower && b.hasUpper && b.lower > b.upper {
		return fmt.Errorf("Brent: lower bound %v above upper bound %v", b.lower, b.upper)
	}
	return nil
}

// Solve brackets a root starting from guess, expanding by step, then converges.
func (b Brent) Solve(f func(float64) float64, guess, step float64) (Result, error) {
	if err := b.validate(); err != nil {
		return Result{}, err
	}
	if step == 0 {
		return Result{}, fmt.Errorf("Brent.Solve: step must be non-zero")
	}

	root := b.enforceBounds(guess)
	fxMax := f(root)
	if fxMax == 0 {
		return Result{Root: root, Evaluations: 1}, nil
	}

	var xMin, xMax, fxMin float64
	if fxMax > 0 {
		xMin = b.enforceBounds(root - step)
		fxMin = f(xMin)
		xMax = root
	} else {
		xMin, fxMin = root, fxMax
		xMax = b.enforceBounds(root + step)
		fxMax = f(xMax)
	}

	evaluations := 2
	flipflop := -1
	for evaluations <= b.MaxEvaluations {
		if fxMin*fxMax <= 0 {
			if fxMin == 0 {
				return Result{Root: xMin, Evaluations: evaluations}, nil
			}
			if fxMax == 0 {
				return Result{Root: xMax, Evaluations: evaluations}, nil
			}
			return b.converge(f, xMin, xMax, fxMin, fxMax, evaluations)
		}
		switch {
		case math.Abs(fxMin) < math.Abs(fxMax):
			xMin = b.enforceBounds(xMin + growthFactor*(xMin-xMax))
			fxMin = f(xMin)
		case math.Abs(fxMin) > math.Abs(fxMax):
			xMax = b.enforceBounds(xMax + growthFactor*(xMax-xMin))
			fxMax = f(xMax)
		case flipflop == -1:
			xMin = b.enforceBounds(xMin + growthFactor*(xMin-xMax))
			fxMin = f(xMin)
			flipflop = 1
		default:
			xMax = b.enforceBounds(xMax + growthFactor*(xMax-xMin))
			fxMax = f(xMax)
			flipflop = -1
		}
		evaluations++
	}

	return Result{}, fmt.Errorf("Brent.Solve: %w: best bracket [%v, %v] -> [%v, %v] after %d evaluations",
		ErrRootNotBracketed, xMin, xMax, fxMin, fxMax, b.MaxEvaluations)
}

// SolveBracketed converges inside [xMin, xMax], which must straddle a root.
func (b Brent) SolveBracketed(f func(float64) float64, xMin, xMax float64) (Result, error) {
	if err := b.validate(); err != nil {
		return Result{}, err
	}
	if xMin >= xMax {
		return Result{}, fmt.Errorf("Brent.SolveBracketed: invalid range [%v, %v]", xMin, xMax)
	}

	fxMin := f(xMin)
	if fxMin == 0 {
		return Result{Root: xMin, Evaluations: 1}, nil
	}
	fxMax := f(xMax)
	if fxMax == 0 {
		return Result{Root: xMax, Evaluations: 2}, nil
	}
	if fxMin*fxMax > 0 {
		return Result{}, fmt.Errorf("Brent.SolveBracketed: %w: f(%v)=%v, f(%v)=%v",
			ErrRootNotBracketed, xMin, fxMin, xMax, fxMax)
	}
	return b.converge(f, xMin, xMax, fxMin, fxMax, 2)
}

func (b Brent) converge(f func(float64) float64, xMin, xMax, fxMin, fxMax float64, evaluations int) (Result, error) {
	accuracy := math.Max(b.Accuracy, machineEps)

	root, froot := xMax, fxMax
	var d, e float64
	for evaluations <= b.MaxEvaluations {
		if (froot > 0 && fxMax > 0) || (froot < 0 && fxMax < 0) {
			xMax, fxMax = xMin, fxMin
			d = root - xMin
			e = d
		}
		if math.Abs(fxMax) < math.Abs(froot) {
			xMin, root, xMax = root, xMax, root
			fxMin, froot, fxMax = froot, fxMax, froot
		}

		xAcc1 := 2*machineEps*math.Abs(root) + 0.5*accuracy
		xMid := (xMax - root) / 2
		if math.Abs(xMid) <= xAcc1 || froot == 0 {
			return Result{Root: root, Evaluations: evaluations}, nil
		}

		if math.Abs(e) >= xAcc1 && math.Abs(fxMin) > math.Abs(froot) {
			var p, q, r float64
			s := froot / fxMin
			if xMin == xMax {
				p = 2 * xMid * s
				q = 1 - s
			} else {
				q = fxMin / fxMax
				r = froot / fxMax
				p = s * (2*xMid*q*(q-r) - (root-xMin)*(r-1))
				q = (q - 1) * (r - 1) * (s - 1)
			}
			if p > 0 {
				q = -q
			}
			p = math.Abs(p)
			min1 := 3*xMid*q - math.Abs(xAcc1*q)
			min2 := math.Abs(e * q)
			if 2*p < math.Min(min1, min2) {
				e = d
				d = p / q
			} else {
				d = xMid
				e = d
			}
		} else {
			d = xMid
			e = d
		}

		xMin, fxMin = root, froot
		if math.Abs(d) > xAcc1 {
			root += d
		} else {
			root += math.Copysign(xAcc1, xMid)
		}
		froot = f(root)
		evaluations++
	}

	return Result{}, fmt.Errorf("Brent: %w: %d evaluations, last root %v", ErrMaxIterationsExceeded, b.MaxEvaluations, root)
}
