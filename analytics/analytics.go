// Package analytics prices amortizing instruments per 100 of the notional
// outstanding at settlement.
//
// Every query except the cash-flow navigation helpers requires the instrument
// to be tradable at the settlement date. A zero settlement date means the
// instrument's own settlement date.
package analytics

import (
	"errors"
	"fmt"
	"time"

	"github.com/meenmo/loanlib/cashflow"
	"github.com/meenmo/loanlib/notional"
	"github.com/meenmo/loanlib/utils"
)

var ErrNotTradable = errors.New("not tradable")

// Instrument is what the analytics need from a loan.
type Instrument interface {
	Cashflows() cashflow.Leg
	NotionalSchedule() notional.Schedule
	SettlementDate(asOf time.Time) time.Time
	MaturityDate() time.Time
}

func settlementOf(inst Instrument, settlement time.Time) time.Time {
	if settlement.IsZero() {
		return inst.SettlementDate(time.Time{})
	}
	return settlement
}

// NotionalAt is the outstanding notional at d as a float.
func NotionalAt(inst Instrument, d time.Time) float64 {
	return inst.NotionalSchedule().At(d).InexactFloat64()
}

// IsTradable reports whether principal is outstanding at settlement.
func IsTradable(inst Instrument, settlement time.Time) bool {
	return !inst.NotionalSchedule().At(settlementOf(inst, settlement)).IsZero()
}

// requireTradable resolves the settlement date and returns the notional there.
func requireTradable(op string, inst Instrument, settlement time.Time) (time.Time, float64, error) {
	settlement = settlementOf(inst, settlement)
	n := NotionalAt(inst, settlement)
	if n == 0 {
		return settlement, 0, fmt.Errorf("%s: %w at %s (maturity being %s)",
			op, ErrNotTradable, utils.FormatDate(settlement), utils.FormatDate(inst.MaturityDate()))
	}
	return settlement, n, nil
}

// StartDate is the earliest accrual start of the instrument.
func StartDate(inst Instrument) time.Time {
	return inst.Cashflows().StartDate()
}

// MaturityDate is the instrument's maturity.
func MaturityDate(inst Instrument) time.Time {
	return inst.MaturityDate()
}

func PreviousCashFlowDate(inst Instrument, settlement time.Time) time.Time {
	return inst.Cashflows().PreviousCashFlowDate(settlementOf(inst, settlement))
}

func NextCashFlowDate(inst Instrument, settlement time.Time) time.Time {
	return inst.Cashflows().NextCashFlowDate(settlementOf(inst, settlement))
}

func PreviousCashFlowAmount(inst Instrument, settlement time.Time) float64 {
	return inst.Cashflows().PreviousCashFlowAmount(settlementOf(inst, settlement)).InexactFloat64()
}

func NextCashFlowAmount(inst Instrument, settlement time.Time) float64 {
	return inst.Cashflows().NextCashFlowAmount(settlementOf(inst, settlement)).InexactFloat64()
}

func PreviousCouponRate(inst Instrument, settlement time.Time) float64 {
	return inst.Cashflows().PreviousCouponRate(settlementOf(inst, settlement))
}

func NextCouponRate(inst Instrument, settlement time.Time) float64 {
	return inst.Cashflows().NextCouponRate(settlementOf(inst, settlement))
}

// AccrualStartDate of the coupon accruing at settlement.
func AccrualStartDate(inst Instrument, settlement time.Time) (time.Time, error) {
	settlement, _, err := requireTradable("AccrualStartDate", inst, settlement)
	if err != nil {
		return time.Time{}, err
	}
	return inst.Cashflows().AccrualStartDate(settlement), nil
}

// AccrualEndDate of the coupon accruing at settlement.
func AccrualEndDate(inst Instrument, settlement time.Time) (time.Time, error) {
	settlement, _, err := requireTradable("AccrualEndDate", inst, settlement)
	if err != nil {
		return time.Time{}, err
	}
	return inst.Cashflows().AccrualEndDate(settlement), nil
}

// ReferencePeriodStart of the coupon accruing at settlement.
func ReferencePeriodStart(inst Instrument, settlement time.Time) (time.Time, error) {
	settlement, _, err := requireTradable("ReferencePeriodStart", inst, settlement)
	if err != nil {
		return time.Time{}, err
	}
	return inst.Cashflows().ReferencePeriodStart(settlement), nil
}

// ReferencePeriodEnd of the coupon accruing at settlement.
func ReferencePeriodEnd(inst Instrument, settlement time.Time) (time.Time, error) {
	settlement, _, err := requireTradable("ReferencePeriodEnd", inst, settlement)
	if err != nil {
		return time.Time{}, err
	}
	return inst.Cashflows().ReferencePeriodEnd(settlement), nil
}

// AccrualPeriod is the year fraction of the coupon accruing at settlement.
func AccrualPeriod(inst Instrument, settlement time.Time) (float64, error) {
	settlement, _, err := requireTradable("AccrualPeriod", inst, settlement)
	if err != nil {
		return 0, err
	}
	return inst.Cashflows().AccrualPeriod(settlement), nil
}

// AccrualDays is the day count of the coupon accruing at settlement.
func AccrualDays(inst Instrument, settlement time.Time) (int, error) {
	settlement, _, err := requireTradable("AccrualDays", inst, settlement)
	if err != nil {
		return 0, err
	}
	return inst.Cashflows().AccrualDays(settlement), nil
}

// AccruedPeriod is the year fraction accrued by settlement.
func AccruedPeriod(inst Instrument, settlement time.Time) (float64, error) {
	settlement, _, err := requireTradable("AccruedPeriod", inst, settlement)
	if err != nil {
		return 0, err
	}
	return inst.Cashflows().AccruedPeriod(settlement), nil
}

// AccruedDays is the day count accrued by settlement.
func AccruedDays(inst Instrument, settlement time.Time) (int, error) {
	settlement, _, err := requireTradable("AccruedDays", inst, settlement)
	if err != nil {
		return 0, err
	}
	return inst.Cashflows().AccruedDays(settlement), nil
}

// AccruedAmount is the accrued interest at settlement per 100 of notional.
func AccruedAmount(inst Instrument, settlement time.Time) (float64, error) {
	settlement, n, err := requireTradable("AccruedAmount", inst, settlement)
	if err != nil {
		return 0, err
	}
	return inst.Cashflows().AccruedAmount(settlement) * 100 / n, nil
}
