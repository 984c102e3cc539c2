package notional

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meenmo/loanlib/cashflow"
	"github.com/meenmo/loanlib/utils"
)

var (
	ErrEmptyCashflowList    = errors.New("no coupons provided")
	ErrNonMonotonicNotional = errors.New("increasing coupon notionals")
)

// relTolerance bounds the relative difference under which two nominals are the same.
var relTolerance = decimal.New(1, -12)

// Schedule is a step function of outstanding principal. Dates[0] is the zero
// time; Notionals[i] is outstanding from Dates[i] up to the next breakpoint.
type Schedule struct {
	Dates     []time.Time
	Notionals []decimal.Decimal
}

// Build derives the schedule from the coupons of leg, scanned in date order on a
// sorted copy. Principal records are ignored. A breakpoint is recorded on the
// payment date of the last coupon accruing on the previous nominal; the final
// breakpoint, at the last coupon date, carries zero.
func Build(leg cashflow.Leg) (Schedule, error) {
	s := Schedule{Dates: []time.Time{{}}}
	var last time.Time
	for _, r := range cashflow.NewLeg(leg...) {
		if !r.IsCoupon() {
			continue
		}
		nominal := r.Coupon.Nominal
		if len(s.Notionals) == 0 {
			s.Notionals = append(s.Notionals, nominal)
			last = r.Date
			continue
		}
		current := s.Notionals[len(s.Notionals)-1]
		switch {
		case closeEnough(nominal, current):
		case nominal.LessThan(current):
			s.Notionals = append(s.Notionals, nominal)
			s.Dates = append(s.Dates, last)
		default:
			return Schedule{}, fmt.Errorf("Build: %w: %s after %s on %s",
				ErrNonMonotonicNotional, nominal, current, utils.FormatDate(r.Date))
		}
		last = r.Date
	}
	if len(s.Notionals) == 0 {
		return Schedule{}, fmt.Errorf("Build: %w", ErrEmptyCashflowList)
	}
	s.Notionals = append(s.Notionals, decimal.Zero)
	s.Dates = append(s.Dates, last)
	return s, nil
}

// Single is the schedule of a bullet repayment on date, with its redemption
// of notional*redemption/100.
func Single(notional, redemption decimal.Decimal, date time.Time) (Schedule, cashflow.Record) {
	s := Schedule{
		Dates:     []time.Time{{}, date},
		Notionals: []decimal.Decimal{notional, decimal.Zero},
	}
	return s, cashflow.NewRedemption(date, notional.Mul(redemption).Div(hundred))
}

// closeEnough compares nominals with a relative tolerance.
func closeEnough(a, b decimal.Decimal) bool {
	if a.Equal(b) {
		return true
	}
	diff := a.Sub(b).Abs()
	return diff.LessThanOrEqual(relTolerance.Mul(a.Abs())) && diff.LessThanOrEqual(relTolerance.Mul(b.Abs()))
}

// Len is the number of breakpoints including the leading zero date.
func (s Schedule) Len() int {
	return len(s.Dates)
}

// Initial is the notional before the first breakpoint.
func (s Schedule) Initial() decimal.Decimal {
	if len(s.Notionals) == 0 {
		return decimal.Zero
	}
	return s.Notionals[0]
}

// Final is the last breakpoint date.
func (s Schedule) Final() time.Time {
	if len(s.Dates) == 0 {
		return time.Time{}
	}
	return s.Dates[len(s.Dates)-1]
}

// At returns the notional outstanding on d. A breakpoint date takes the
// post-paydown notional; dates past the final breakpoint return zero.
func (s Schedule) At(d time.Time) decimal.Decimal {
	n := len(s.Dates)
	if n < 2 || d.After(s.Dates[n-1]) {
		return decimal.Zero
	}
	idx := 1 + sort.Search(n-1, func(i int) bool {
		return !s.Dates[i+1].Before(d)
	})
	if d.Before(s.Dates[idx]) {
		return s.Notionals[idx-1]
	}
	return s.Notionals[idx]
}

// Validate checks the schedule shape: a leading zero date, ascending
// breakpoints, non-increasing notionals and a zero final notional.
func (s Schedule) Validate() error {
	if len(s.Dates) < 2 || len(s.Dates) != len(s.Notionals) {
		return fmt.Errorf("Schedule.Validate: %d dates for %d notionals", len(s.Dates), len(s.Notionals))
	}
	if !s.Dates[0].IsZero() {
		return fmt.Errorf("Schedule.Validate: first date must be the zero time, got %s", utils.FormatDate(s.Dates[0]))
	}
	for i := 1; i < len(s.Notionals); i++ {
		if s.Notionals[i].GreaterThan(s.Notionals[i-1]) {
			return fmt.Errorf("Schedule.Validate: %w at breakpoint %d", ErrNonMonotonicNotional, i)
		}
		if i > 1 && s.Dates[i].Before(s.Dates[i-1]) {
			return fmt.Errorf("Schedule.Validate: breakpoint %d on %s precedes %s",
				i, utils.FormatDate(s.Dates[i]), utils.FormatDate(s.Dates[i-1]))
		}
	}
	if !s.Notionals[len(s.Notionals)-1].IsZero() {
		return fmt.Errorf("Schedule.Validate: final notional %s is not zero", s.Notionals[len(s.Notionals)-1])
	}
	return nil
}
