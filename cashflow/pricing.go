package cashflow

import (
	"errors"
	"fmt"
	"time"

	"github.com/meenmo/loanlib/curve"
	"github.com/meenmo/loanlib/interest"
)

const basisPoint = 1.0e-4

// DurationType selects the duration measure.
type DurationType int

const (
	DurationSimple DurationType = iota
	DurationMacaulay
	DurationModified
)

func (d DurationType) String() string {
	switch d {
	case DurationSimple:
		return "simple"
	case DurationMacaulay:
		return "macaulay"
	case DurationModified:
		return "modified"
	default:
		return fmt.Sprintf("DurationType(%d)", int(d))
	}
}

var (
	ErrUnsupportedDuration = errors.New("unsupported duration")
	ErrNullAnnuity         = errors.New("null coupon annuity: impossible ATM rate")
)

// NPV discounts records paid after settlement on c, expressed at npvDate.
// A zero npvDate means settlement.
func (l Leg) NPV(c curve.DiscountCurve, settlement, npvDate time.Time) float64 {
	if npvDate.IsZero() {
		npvDate = settlement
	}
	var npv float64
	for _, r := range l {
		if r.HasOccurred(settlement, false) {
			continue
		}
		npv += r.AmountFloat() * c.DF(r.Date)
	}
	return npv / c.DF(npvDate)
}

// BPS is the value change of the coupons for a one basis point rise in their rates.
func (l Leg) BPS(c curve.DiscountCurve, settlement, npvDate time.Time) float64 {
	if npvDate.IsZero() {
		npvDate = settlement
	}
	annuity, _ := l.annuity(c.DF, settlement)
	return basisPoint * annuity / c.DF(npvDate)
}

// AtmRate is the coupon rate that makes the leg worth targetNPV at npvDate.
// With no target it returns the rate equivalent to the current coupons.
func (l Leg) AtmRate(c curve.DiscountCurve, settlement, npvDate time.Time, targetNPV *float64) (float64, error) {
	if npvDate.IsZero() {
		npvDate = settlement
	}
	annuity, principalNPV := l.annuity(c.DF, settlement)

	var target float64
	if targetNPV == nil {
		target = l.NPV(c, settlement, settlement)*c.DF(settlement) - principalNPV
	} else {
		target = *targetNPV*c.DF(npvDate) - principalNPV
	}
	if target == 0 {
		return 0, nil
	}
	if annuity == 0 {
		return 0, fmt.Errorf("AtmRate: %w", ErrNullAnnuity)
	}
	return target / annuity, nil
}

// annuity returns sum(nominal * accrual * DF) over coupons and the PV of non-coupon records.
func (l Leg) annuity(df func(time.Time) float64, settlement time.Time) (float64, float64) {
	var annuity, other float64
	for _, r := range l {
		if r.HasOccurred(settlement, false) {
			continue
		}
		d := df(r.Date)
		if r.IsCoupon() {
			annuity += r.Coupon.Nominal.InexactFloat64() * r.Coupon.AccrualPeriod() * d
		} else {
			other += r.AmountFloat() * d
		}
	}
	return annuity, other
}

func yieldDF(y interest.Rate, settlement time.Time) func(time.Time) float64 {
	return func(d time.Time) float64 {
		return y.DiscountFactorBetween(settlement, d)
	}
}

// NPVAtYield discounts records paid after settlement at a flat yield.
func (l Leg) NPVAtYield(y interest.Rate, settlement time.Time) float64 {
	df := yieldDF(y, settlement)
	var npv float64
	for _, r := range l {
		if r.HasOccurred(settlement, false) {
			continue
		}
		npv += r.AmountFloat() * df(r.Date)
	}
	return npv
}

// BPSAtYield is BPS with every record discounted at y.
func (l Leg) BPSAtYield(y interest.Rate, settlement time.Time) float64 {
	annuity, _ := l.annuity(yieldDF(y, settlement), settlement)
	return basisPoint * annuity
}

// Duration of the outstanding records at yield y.
func (l Leg) Duration(y interest.Rate, typ DurationType, settlement time.Time) (float64, error) {
	switch typ {
	case DurationSimple:
		var p, tp float64
		for _, r := range l {
			if r.HasOccurred(settlement, false) {
				continue
			}
			t := y.DayCount.YearFraction(settlement, r.Date)
			v := r.AmountFloat() * y.DiscountFactor(t)
			p += v
			tp += t * v
		}
		if p == 0 {
			return 0, nil
		}
		return tp / p, nil
	case DurationModified:
		return l.modifiedDuration(y, settlement), nil
	case DurationMacaulay:
		if y.Compounding != interest.Compounded {
			return 0, fmt.Errorf("Duration: %w: macaulay duration needs compounded yield, got %s",
				ErrUnsupportedDuration, y.Compounding)
		}
		return (1 + y.Value/float64(y.Frequency)) * l.modifiedDuration(y, settlement), nil
	default:
		return 0, fmt.Errorf("Duration: %w: %s", ErrUnsupportedDuration, typ)
	}
}

func (l Leg) modifiedDuration(y interest.Rate, settlement time.Time) float64 {
	var p, dPdy float64
	for _, r := range l {
		if r.HasOccurred(settlement, false) {
			continue
		}
		t := y.DayCount.YearFraction(settlement, r.Date)
		c := r.AmountFloat()
		p += c * y.DiscountFactor(t)
		dPdy += c * dDiscount(y, t)
	}
	if p == 0 {
		return 0
	}
	return -dPdy / p
}

// Convexity of the outstanding records at yield y.
func (l Leg) Convexity(y interest.Rate, settlement time.Time) float64 {
	var p, d2Pdy2 float64
	for _, r := range l {
		if r.HasOccurred(settlement, false) {
			continue
		}
		t := y.DayCount.YearFraction(settlement, r.Date)
		c := r.AmountFloat()
		p += c * y.DiscountFactor(t)
		d2Pdy2 += c * d2Discount(y, t)
	}
	if p == 0 {
		return 0
	}
	return d2Pdy2 / p
}

// BasisPointValue is the second-order value change for a one basis point rise in y.
func (l Leg) BasisPointValue(y interest.Rate, settlement time.Time) float64 {
	p := l.NPVAtYield(y, settlement)
	delta := -l.modifiedDuration(y, settlement) * p * basisPoint
	gamma := l.Convexity(y, settlement) * p * basisPoint * basisPoint
	return delta + 0.5*gamma
}

// YieldValueBasisPoint is the yield change for a 0.01 change in value.
func (l Leg) YieldValueBasisPoint(y interest.Rate, settlement time.Time) float64 {
	p := l.NPVAtYield(y, settlement)
	d := l.modifiedDuration(y, settlement)
	if p == 0 || d == 0 {
		return 0
	}
	return 0.01 / (-p * d)
}

// dDiscount is dB/dy for B = y.DiscountFactor(t).
func dDiscount(y interest.Rate, t float64) float64 {
	b := y.DiscountFactor(t)
	f := float64(y.Frequency)
	switch y.Compounding {
	case interest.Simple:
		return -t * b * b
	case interest.Compounded:
		return -t * b / (1 + y.Value/f)
	case interest.Continuous:
		return -t * b
	case interest.SimpleThenCompounded:
		if t <= 1/f {
			return -t * b * b
		}
		return -t * b / (1 + y.Value/f)
	default:
		return 0
	}
}

// d2Discount is d²B/dy² for B = y.DiscountFactor(t).
func d2Discount(y interest.Rate, t float64) float64 {
	b := y.DiscountFactor(t)
	f := float64(y.Frequency)
	switch y.Compounding {
	case interest.Simple:
		return 2 * t * t * b * b * b
	case interest.Compounded:
		g := 1 + y.Value/f
		return b * t * (f*t + 1) / (f * g * g)
	case interest.Continuous:
		return t * t * b
	case interest.SimpleThenCompounded:
		if t <= 1/f {
			return 2 * t * t * b * b * b
		}
		g := 1 + y.Value/f
		return b * t * (f*t + 1) / (f * g * g)
	default:
		return 0
	}
}
