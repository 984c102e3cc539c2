package cashflow

import (
	"sort"
	"time"
)

// Leg is a date-ordered sequence of records. On a shared date coupons
// precede principal records.
type Leg []Record

// NewLeg copies records into a sorted Leg.
func NewLeg(records ...Record) Leg {
	leg := append(Leg(nil), records...)
	leg.sort()
	return leg
}

func (l Leg) sort() {
	sort.SliceStable(l, func(i, j int) bool {
		if !l[i].Date.Equal(l[j].Date) {
			return l[i].Date.Before(l[j].Date)
		}
		return !l[i].Kind.IsPrincipal() && l[j].Kind.IsPrincipal()
	})
}

// Merge returns a new Leg holding l and extra in order. l is not modified.
func (l Leg) Merge(extra ...Record) Leg {
	merged := make(Leg, 0, len(l)+len(extra))
	merged = append(merged, l...)
	merged = append(merged, extra...)
	merged.sort()
	return merged
}

// Coupons returns the interest records.
func (l Leg) Coupons() []Record {
	var out []Record
	for _, r := range l {
		if r.IsCoupon() {
			out = append(out, r)
		}
	}
	return out
}

// Principals returns the principal repayment records.
func (l Leg) Principals() []Record {
	var out []Record
	for _, r := range l {
		if r.Kind.IsPrincipal() {
			out = append(out, r)
		}
	}
	return out
}

// StartDate is the earliest accrual start, or the first payment date when no coupon exists.
func (l Leg) StartDate() time.Time {
	var start time.Time
	for _, r := range l {
		d := r.Date
		if r.IsCoupon() {
			d = r.Coupon.AccrualStart
		}
		if start.IsZero() || d.Before(start) {
			start = d
		}
	}
	return start
}

// MaturityDate is the latest payment date.
func (l Leg) MaturityDate() time.Time {
	var maturity time.Time
	for _, r := range l {
		if r.Date.After(maturity) {
			maturity = r.Date
		}
	}
	return maturity
}
