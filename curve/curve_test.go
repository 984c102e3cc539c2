package curve_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/loanlib/curve"
	"github.com/meenmo/loanlib/interest"
	"github.com/meenmo/loanlib/utils"
)

func TestCurve_LogLinearInterpolation(t *testing.T) {
	t.Parallel()

	ref := utils.Date(2025, 1, 1)
	oneY := utils.Date(2026, 1, 1)
	twoY := utils.Date(2027, 1, 1)
	c, err := curve.NewCurveFromDFs(ref, map[time.Time]float64{
		oneY: math.Exp(-0.03),
		twoY: math.Exp(-0.03 - 0.04*365.0/365.0),
	})
	require.NoError(t, err)

	assert.Equal(t, 1.0, c.DF(ref))
	assert.Equal(t, 1.0, c.DF(utils.Date(2024, 12, 1)))
	assert.Len(t, c.Pillars(), 3)

	// halfway through the first year on a flat 3% forward
	mid := utils.Date(2025, 7, 2)
	tMid := utils.Act365F.YearFraction(ref, mid)
	assert.InDelta(t, math.Exp(-0.03*tMid), c.DF(mid), 1e-14)

	// extrapolation keeps the last forward
	threeY := utils.Date(2028, 1, 1)
	t3 := utils.Act365F.YearFraction(ref, threeY)
	t2 := utils.Act365F.YearFraction(ref, twoY)
	fwd := math.Log(c.DF(oneY)/c.DF(twoY)) / (t2 - utils.Act365F.YearFraction(ref, oneY))
	assert.InDelta(t, c.DF(twoY)*math.Exp(-fwd*(t3-t2)), c.DF(threeY), 1e-14)
}

func TestNewCurveFromDFs_Invalid(t *testing.T) {
	t.Parallel()

	ref := utils.Date(2025, 1, 1)
	_, err := curve.NewCurveFromDFs(ref, nil)
	assert.ErrorIs(t, err, curve.ErrNoDiscountFactors)

	_, err = curve.NewCurveFromDFs(ref, map[time.Time]float64{utils.Date(2026, 1, 1): -0.5})
	assert.ErrorIs(t, err, curve.ErrInvalidCurve)

	_, err = curve.NewCurveFromDFs(ref, map[time.Time]float64{utils.Date(2024, 1, 1): 1.01})
	assert.ErrorIs(t, err, curve.ErrInvalidCurve)
}

func TestFlatForward(t *testing.T) {
	t.Parallel()

	ref := utils.Date(2025, 1, 1)
	rate := interest.New(0.05, utils.Act365F, interest.Compounded, interest.Annual)
	flat, err := curve.NewFlatForward(ref, rate)
	require.NoError(t, err)

	assert.InDelta(t, 1/1.05, flat.DF(utils.Date(2026, 1, 1)), 1e-14)
	assert.Equal(t, ref, flat.ReferenceDate())

	_, err = curve.NewFlatForward(ref, interest.New(0.05, utils.Act365F, interest.Compounded, interest.Once))
	assert.ErrorIs(t, err, interest.ErrInvalidConvention)
}

func TestZSpreaded(t *testing.T) {
	t.Parallel()

	ref := utils.Date(2025, 1, 1)
	conv := interest.Convention{DayCount: utils.Act365F, Compounding: interest.Continuous, Frequency: interest.NoFrequency}
	base, err := curve.NewFlatForward(ref, conv.WithRate(0.03))
	require.NoError(t, err)

	d := utils.Date(2027, 1, 1)
	tm := utils.Act365F.YearFraction(ref, d)

	zero, err := curve.NewZSpreaded(base, 0, conv)
	require.NoError(t, err)
	assert.InDelta(t, base.DF(d), zero.DF(d), 1e-14)

	shifted, err := curve.NewZSpreaded(base, 0.01, conv)
	require.NoError(t, err)
	assert.InDelta(t, math.Exp(-0.04*tm), shifted.DF(d), 1e-14)
	assert.Equal(t, 1.0, shifted.DF(ref))

	zr := curve.ZeroRate(shifted, d, conv)
	assert.InDelta(t, 0.04, zr.Value, 1e-12)

	_, err = curve.NewZSpreaded(nil, 0.01, conv)
	assert.ErrorIs(t, err, curve.ErrNilCurve)
}
