package curve

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/meenmo/loanlib/interest"
	"github.com/meenmo/loanlib/utils"
)

var (
	ErrNilCurve          = errors.New("nil curve")
	ErrInvalidCurve      = errors.New("invalid curve")
	ErrNoDiscountFactors = errors.New("no discount factors")
)

// DiscountCurve provides discount factors for valuation.
type DiscountCurve interface {
	ReferenceDate() time.Time
	DF(t time.Time) float64
}

// ZeroRate returns the rate under conv implied by c between its reference date and t.
func ZeroRate(c DiscountCurve, t time.Time, conv interest.Convention) interest.Rate {
	yf := conv.DayCount.YearFraction(c.ReferenceDate(), t)
	return interest.ImpliedRate(1/c.DF(t), yf, conv)
}

// Curve interpolates discount factors log-linearly between pillar dates.
// The time axis is ACT/365F from the reference date.
type Curve struct {
	reference       time.Time
	pillars         []time.Time
	discountFactors map[time.Time]float64
	dayCount        utils.DayCount
}

// NewCurveFromDFs creates a curve from explicitly provided discount factors.
// A pillar at the reference date with DF 1 is added when missing.
func NewCurveFromDFs(reference time.Time, dfs map[time.Time]float64) (*Curve, error) {
	if len(dfs) == 0 {
		return nil, fmt.Errorf("NewCurveFromDFs: %w", ErrNoDiscountFactors)
	}
	c := &Curve{
		reference:       reference,
		discountFactors: make(map[time.Time]float64, len(dfs)+1),
		dayCount:        utils.Act365F,
	}
	for t, df := range dfs {
		if df <= 0 || math.IsNaN(df) || math.IsInf(df, 0) {
			return nil, fmt.Errorf("NewCurveFromDFs: %w: discount factor %v at %s", ErrInvalidCurve, df, utils.FormatDate(t))
		}
		if t.Before(reference) {
			return nil, fmt.Errorf("NewCurveFromDFs: %w: pillar %s before reference date %s",
				ErrInvalidCurve, utils.FormatDate(t), utils.FormatDate(reference))
		}
		c.discountFactors[t] = df
	}
	if _, ok := c.discountFactors[reference]; !ok {
		c.discountFactors[reference] = 1.0
	}
	for t := range c.discountFactors {
		c.pillars = append(c.pillars, t)
	}
	utils.SortDates(c.pillars)
	return c, nil
}

// ReferenceDate returns the date at which DF is 1.
func (c *Curve) ReferenceDate() time.Time {
	return c.reference
}

// Pillars returns a copy of the pillar dates.
func (c *Curve) Pillars() []time.Time {
	return append([]time.Time(nil), c.pillars...)
}

// DF returns the discount factor at t. Dates outside the pillars extrapolate
// along the nearest segment's forward rate.
func (c *Curve) DF(t time.Time) float64 {
	if df, ok := c.discountFactors[t]; ok {
		return df
	}
	if !t.After(c.reference) {
		return 1.0
	}
	if len(c.pillars) < 2 {
		return c.discountFactors[c.pillars[0]]
	}

	d1, d2 := findBracketOrBoundary(c.pillars, t)
	df1 := c.discountFactors[d1]
	df2 := c.discountFactors[d2]

	t1 := c.dayCount.YearFraction(c.reference, d1)
	t2 := c.dayCount.YearFraction(c.reference, d2)
	tTarget := c.dayCount.YearFraction(c.reference, t)
	if t2 == t1 {
		return df1
	}
	forwardRate := math.Log(df1/df2) / (t2 - t1)
	return df1 * math.Exp(-forwardRate*(tTarget-t1))
}

// findBracketOrBoundary finds two adjacent dates that bracket the target.
// If the target is outside the range, returns the nearest boundary pair.
func findBracketOrBoundary(dates []time.Time, target time.Time) (d1, d2 time.Time) {
	idx := sort.Search(len(dates), func(i int) bool {
		return !dates[i].Before(target)
	})
	if idx <= 0 {
		return dates[0], dates[1]
	}
	if idx >= len(dates) {
		return dates[len(dates)-2], dates[len(dates)-1]
	}
	return dates[idx-1], dates[idx]
}
