package cashflow

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meenmo/loanlib/utils"
)

// Kind tags the variant of a Record.
type Kind int

const (
	KindCoupon Kind = iota
	KindAmortizingPrincipal
	KindFinalRedemption
)

func (k Kind) String() string {
	switch k {
	case KindCoupon:
		return "coupon"
	case KindAmortizingPrincipal:
		return "amortizing"
	case KindFinalRedemption:
		return "redemption"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// IsPrincipal reports whether k repays principal.
func (k Kind) IsPrincipal() bool {
	return k == KindAmortizingPrincipal || k == KindFinalRedemption
}

// CouponTerms carries the accrual data of an interest payment.
type CouponTerms struct {
	Nominal      decimal.Decimal
	Rate         float64
	DayCount     utils.DayCount
	AccrualStart time.Time
	AccrualEnd   time.Time
	RefStart     time.Time
	RefEnd       time.Time
}

// AccrualPeriod is the year fraction of the full accrual period.
func (c CouponTerms) AccrualPeriod() float64 {
	return c.DayCount.YearFraction(c.AccrualStart, c.AccrualEnd)
}

// AccrualDays is the day count of the full accrual period.
func (c CouponTerms) AccrualDays() int {
	return c.DayCount.Days(c.AccrualStart, c.AccrualEnd)
}

// Record is a dated amount. Coupon holds accrual data only when Kind is KindCoupon.
type Record struct {
	Date   time.Time
	Amount decimal.Decimal
	Kind   Kind
	Coupon CouponTerms
}

// NewFixedRateCoupon accrues nominal at rate over [start, end] and pays on payDate.
func NewFixedRateCoupon(payDate time.Time, nominal decimal.Decimal, rate float64, dc utils.DayCount, start, end time.Time) Record {
	terms := CouponTerms{
		Nominal:      nominal,
		Rate:         rate,
		DayCount:     dc,
		AccrualStart: start,
		AccrualEnd:   end,
		RefStart:     start,
		RefEnd:       end,
	}
	return Record{
		Date:   payDate,
		Amount: nominal.Mul(decimal.NewFromFloat(rate * terms.AccrualPeriod())),
		Kind:   KindCoupon,
		Coupon: terms,
	}
}

// NewCoupon records an interest payment of a known amount.
func NewCoupon(payDate time.Time, amount decimal.Decimal, terms CouponTerms) Record {
	if terms.RefStart.IsZero() {
		terms.RefStart = terms.AccrualStart
	}
	if terms.RefEnd.IsZero() {
		terms.RefEnd = terms.AccrualEnd
	}
	return Record{Date: payDate, Amount: amount, Kind: KindCoupon, Coupon: terms}
}

// NewAmortizingPayment records a partial principal repayment.
func NewAmortizingPayment(date time.Time, amount decimal.Decimal) Record {
	return Record{Date: date, Amount: amount, Kind: KindAmortizingPrincipal}
}

// NewRedemption records the final principal repayment.
func NewRedemption(date time.Time, amount decimal.Decimal) Record {
	return Record{Date: date, Amount: amount, Kind: KindFinalRedemption}
}

// IsCoupon reports whether r pays interest.
func (r Record) IsCoupon() bool {
	return r.Kind == KindCoupon
}

// AmountFloat returns the amount for discounting.
func (r Record) AmountFloat() float64 {
	return r.Amount.InexactFloat64()
}

// HasOccurred reports whether r is paid on or before ref.
// With includeRef set a payment on ref itself still counts as outstanding.
func (r Record) HasOccurred(ref time.Time, includeRef bool) bool {
	if includeRef {
		return r.Date.Before(ref)
	}
	return !r.Date.After(ref)
}

// AccruedAmount is the share of a coupon earned by d. Zero outside
// (AccrualStart, Date] and for principal records.
func (r Record) AccruedAmount(d time.Time) float64 {
	if !r.IsCoupon() || !d.After(r.Coupon.AccrualStart) || d.After(r.Date) {
		return 0
	}
	full := r.Coupon.AccrualPeriod()
	if full == 0 {
		return 0
	}
	end := utils.MinDate(d, r.Coupon.AccrualEnd)
	return r.AmountFloat() * r.Coupon.DayCount.YearFraction(r.Coupon.AccrualStart, end) / full
}

func (r Record) String() string {
	return fmt.Sprintf("%s %s %s", utils.FormatDate(r.Date), r.Kind, r.Amount.String())
}
