package solver_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/loanlib/solver"
)

func TestBrentSolve_Sqrt2(t *testing.T) {
	t.Parallel()

	b := solver.NewBrent(1e-12, 100)
	res, err := b.Solve(func(x float64) float64 { return x*x - 2 }, 1, 0.1)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt2, res.Root, 1e-12)
	assert.LessOrEqual(t, res.Evaluations, 100)
}

func TestBrentSolve_DecreasingFunction(t *testing.T) {
	t.Parallel()

	// price-like function of a rate
	f := func(y float64) float64 { return 100/math.Pow(1+y, 5) - 80 }
	res, err := solver.NewBrent(1e-10, 100).Solve(f, 0.05, 0.005)
	require.NoError(t, err)
	assert.InDelta(t, math.Pow(100.0/80.0, 0.2)-1, res.Root, 1e-10)
}

func TestBrentSolve_ExactGuess(t *testing.T) {
	t.Parallel()

	res, err := solver.NewBrent(1e-10, 10).Solve(func(x float64) float64 { return x - 3 }, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, 3.0, res.Root)
	assert.Equal(t, 1, res.Evaluations)
}

func TestBrentSolve_NotBracketed(t *testing.T) {
	t.Parallel()

	_, err := solver.NewBrent(1e-10, 50).Solve(func(x float64) float64 { return x*x + 1 }, 0, 0.1)
	assert.ErrorIs(t, err, solver.ErrRootNotBracketed)

	bounded := solver.NewBrent(1e-10, 50).WithLowerBound(-2)
	_, err = bounded.Solve(func(x float64) float64 { return x + 5 }, 0, 1)
	assert.ErrorIs(t, err, solver.ErrRootNotBracketed)
}

func TestBrentSolveBracketed(t *testing.T) {
	t.Parallel()

	b := solver.NewBrent(1e-12, 100)
	res, err := b.SolveBracketed(func(x float64) float64 { return math.Cos(x) - x }, 0, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.7390851332151607, res.Root, 1e-11)

	_, err = b.SolveBracketed(func(x float64) float64 { return x*x + 1 }, -1, 1)
	assert.ErrorIs(t, err, solver.ErrRootNotBracketed)
}

func TestBrent_MaxEvaluations(t *testing.T) {
	t.Parallel()

	_, err := solver.NewBrent(1e-14, 3).SolveBracketed(func(x float64) float64 { return x*x*x - 2 }, 0, 2)
	assert.ErrorIs(t, err, solver.ErrMaxIterationsExceeded)

	_, err = solver.NewBrent(1e-10, 0).Solve(func(x float64) float64 { return x }, 1, 1)
	assert.Error(t, err)
}
