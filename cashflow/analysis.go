package cashflow

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/meenmo/loanlib/utils"
)

// Navigation treats a payment on the settlement date as already settled.

// NextIndex returns the index of the first record paid after settlement, or len(l).
func (l Leg) NextIndex(settlement time.Time) int {
	for i, r := range l {
		if !r.HasOccurred(settlement, false) {
			return i
		}
	}
	return len(l)
}

// PreviousIndex returns the index of the last record paid on or before settlement, or -1.
func (l Leg) PreviousIndex(settlement time.Time) int {
	for i := len(l) - 1; i >= 0; i-- {
		if l[i].HasOccurred(settlement, false) {
			return i
		}
	}
	return -1
}

// IsExpired reports whether every record was paid before d.
func (l Leg) IsExpired(d time.Time) bool {
	for _, r := range l {
		if !r.HasOccurred(d, true) {
			return false
		}
	}
	return true
}

// NextCashFlowDate is the first payment date after settlement, or the zero time.
func (l Leg) NextCashFlowDate(settlement time.Time) time.Time {
	if i := l.NextIndex(settlement); i < len(l) {
		return l[i].Date
	}
	return time.Time{}
}

// PreviousCashFlowDate is the last payment date on or before settlement, or the zero time.
func (l Leg) PreviousCashFlowDate(settlement time.Time) time.Time {
	if i := l.PreviousIndex(settlement); i >= 0 {
		return l[i].Date
	}
	return time.Time{}
}

// NextCashFlowAmount sums every record paid on the next payment date.
func (l Leg) NextCashFlowAmount(settlement time.Time) decimal.Decimal {
	return l.amountOn(l.NextCashFlowDate(settlement))
}

// PreviousCashFlowAmount sums every record paid on the previous payment date.
func (l Leg) PreviousCashFlowAmount(settlement time.Time) decimal.Decimal {
	return l.amountOn(l.PreviousCashFlowDate(settlement))
}

// NextCouponRate sums the rates of coupons paid on the next payment date.
func (l Leg) NextCouponRate(settlement time.Time) float64 {
	return rateOf(l.couponsOn(l.NextCashFlowDate(settlement)))
}

// PreviousCouponRate sums the rates of coupons paid on the previous payment date.
func (l Leg) PreviousCouponRate(settlement time.Time) float64 {
	return rateOf(l.couponsOn(l.PreviousCashFlowDate(settlement)))
}

func (l Leg) amountOn(d time.Time) decimal.Decimal {
	total := decimal.Zero
	if d.IsZero() {
		return total
	}
	for _, r := range l {
		if r.Date.Equal(d) {
			total = total.Add(r.Amount)
		}
	}
	return total
}

func (l Leg) couponsOn(d time.Time) []Record {
	if d.IsZero() {
		return nil
	}
	var out []Record
	for _, r := range l {
		if r.IsCoupon() && r.Date.Equal(d) {
			out = append(out, r)
		}
	}
	return out
}

func rateOf(coupons []Record) float64 {
	var rate float64
	for _, c := range coupons {
		rate += c.Coupon.Rate
	}
	return rate
}

// currentCoupon is the first coupon paid on the next payment date.
func (l Leg) currentCoupon(settlement time.Time) (CouponTerms, bool) {
	coupons := l.couponsOn(l.NextCashFlowDate(settlement))
	if len(coupons) == 0 {
		return CouponTerms{}, false
	}
	return coupons[0].Coupon, true
}

// AccrualStartDate of the coupon currently accruing, or the zero time.
func (l Leg) AccrualStartDate(settlement time.Time) time.Time {
	c, _ := l.currentCoupon(settlement)
	return c.AccrualStart
}

// AccrualEndDate of the coupon currently accruing, or the zero time.
func (l Leg) AccrualEndDate(settlement time.Time) time.Time {
	c, _ := l.currentCoupon(settlement)
	return c.AccrualEnd
}

// ReferencePeriodStart of the coupon currently accruing, or the zero time.
func (l Leg) ReferencePeriodStart(settlement time.Time) time.Time {
	c, _ := l.currentCoupon(settlement)
	return c.RefStart
}

// ReferencePeriodEnd of the coupon currently accruing, or the zero time.
func (l Leg) ReferencePeriodEnd(settlement time.Time) time.Time {
	c, _ := l.currentCoupon(settlement)
	return c.RefEnd
}

// AccrualPeriod is the full year fraction of the coupon currently accruing.
func (l Leg) AccrualPeriod(settlement time.Time) float64 {
	c, ok := l.currentCoupon(settlement)
	if !ok {
		return 0
	}
	return c.AccrualPeriod()
}

// AccrualDays is the full day count of the coupon currently accruing.
func (l Leg) AccrualDays(settlement time.Time) int {
	c, ok := l.currentCoupon(settlement)
	if !ok {
		return 0
	}
	return c.AccrualDays()
}

// AccruedPeriod is the year fraction accrued by settlement in the current coupon.
func (l Leg) AccruedPeriod(settlement time.Time) float64 {
	c, ok := l.currentCoupon(settlement)
	if !ok || !settlement.After(c.AccrualStart) {
		return 0
	}
	return c.DayCount.YearFraction(c.AccrualStart, utils.MinDate(settlement, c.AccrualEnd))
}

// AccruedDays is the day count accrued by settlement in the current coupon.
func (l Leg) AccruedDays(settlement time.Time) int {
	c, ok := l.currentCoupon(settlement)
	if !ok || !settlement.After(c.AccrualStart) {
		return 0
	}
	return c.DayCount.Days(c.AccrualStart, utils.MinDate(settlement, c.AccrualEnd))
}

// AccruedAmount sums the accrued interest of coupons paid on the next payment date.
func (l Leg) AccruedAmount(settlement time.Time) float64 {
	var accrued float64
	for _, c := range l.couponsOn(l.NextCashFlowDate(settlement)) {
		accrued += c.AccruedAmount(settlement)
	}
	return accrued
}
