package loan

import (
	"fmt"
	"time"

	"github.com/meenmo/loanlib/analytics"
	"github.com/meenmo/loanlib/interest"
	"github.com/meenmo/loanlib/utils"
)

// SettlementValue is the engine's value of the loan at settlement, in
// currency. It is computed once per evaluation date and cached; an expired
// loan is worth zero without consulting the engine.
func (l *Loan) SettlementValue() (float64, error) {
	v, _, err := l.value()
	return v, err
}

func (l *Loan) value() (float64, time.Time, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	evalDate, version := l.clock.Snapshot()
	if l.valid && l.version == version {
		return l.settlementValue, l.cachedSettlement, nil
	}

	settlement := l.settlementFor(evalDate)
	var v float64
	if !l.cashflows.IsExpired(evalDate) {
		if l.engine == nil {
			return 0, settlement, fmt.Errorf("SettlementValue: %w (no pricing engine)", ErrNoPricingEngineResult)
		}
		res, err := l.engine.Calculate(Arguments{
			SettlementDate: settlement,
			Cashflows:      l.cashflows,
			Calendar:       l.calendar,
		})
		if err != nil {
			return 0, settlement, fmt.Errorf("SettlementValue: %w", err)
		}
		if !res.Valid {
			return 0, settlement, fmt.Errorf("SettlementValue: %w", ErrNoPricingEngineResult)
		}
		v = res.SettlementValue
	}

	l.valid = true
	l.version = version
	l.settlementValue = v
	l.cachedSettlement = settlement
	l.log.Debug().
		Str("evaluation_date", utils.FormatDate(evalDate)).
		Str("settlement_date", utils.FormatDate(settlement)).
		Uint64("clock_version", version).
		Float64("settlement_value", v).
		Msg("loan revalued")
	return v, settlement, nil
}

// Invalidate drops the cached settlement value.
func (l *Loan) Invalidate() {
	l.mu.Lock()
	l.valid = false
	l.mu.Unlock()
}

// SetEngine swaps the pricing engine and drops the cache.
func (l *Loan) SetEngine(e Engine) {
	l.mu.Lock()
	l.engine = e
	l.valid = false
	l.mu.Unlock()
}

// DirtyPrice is the settlement value per 100 of the notional at settlement.
func (l *Loan) DirtyPrice() (float64, error) {
	if l.NotionalAt(time.Time{}).IsZero() {
		return 0, nil
	}
	v, settlement, err := l.value()
	if err != nil {
		return 0, err
	}
	n := l.schedule.At(settlement).InexactFloat64()
	if n == 0 {
		return 0, nil
	}
	return v / n * 100, nil
}

// CleanPrice is DirtyPrice less accrued interest at settlement.
func (l *Loan) CleanPrice() (float64, error) {
	if l.NotionalAt(time.Time{}).IsZero() {
		return 0, nil
	}
	v, settlement, err := l.value()
	if err != nil {
		return 0, err
	}
	n := l.schedule.At(settlement).InexactFloat64()
	if n == 0 {
		return 0, nil
	}
	return v/n*100 - l.cashflows.AccruedAmount(settlement)*100/n, nil
}

// SettlementValueFromCleanPrice converts a clean price per 100 into currency.
func (l *Loan) SettlementValueFromCleanPrice(cleanPrice float64) float64 {
	settlement := l.SettlementDate(time.Time{})
	n := l.schedule.At(settlement).InexactFloat64()
	if n == 0 {
		return 0
	}
	dirty := cleanPrice + l.cashflows.AccruedAmount(settlement)*100/n
	return dirty / 100 * n
}

// AccruedAmount is the accrued interest per 100 at d; the zero time means the
// settlement date. It is zero once nothing is outstanding.
func (l *Loan) AccruedAmount(d time.Time) float64 {
	if d.IsZero() {
		d = l.SettlementDate(time.Time{})
	}
	n := l.schedule.At(d).InexactFloat64()
	if n == 0 {
		return 0
	}
	return l.cashflows.AccruedAmount(d) * 100 / n
}

// Yield solves for the yield implied by the engine's clean price.
func (l *Loan) Yield(conv interest.Convention, opts analytics.Options) (float64, error) {
	clean, err := l.CleanPrice()
	if err != nil {
		return 0, err
	}
	settlement := l.SettlementDate(time.Time{})
	if !l.IsTradable(settlement) {
		return 0, nil
	}
	return analytics.Yield(l, clean, conv, settlement, opts)
}

// YieldFromCleanPrice solves for the yield at settlement; the zero time means
// the loan's settlement date.
func (l *Loan) YieldFromCleanPrice(cleanPrice float64, conv interest.Convention, settlement time.Time, opts analytics.Options) (float64, error) {
	settlement = l.resolve(settlement)
	if !l.IsTradable(settlement) {
		return 0, nil
	}
	return analytics.Yield(l, cleanPrice, conv, settlement, opts)
}

func (l *Loan) CleanPriceFromYield(y interest.Rate, settlement time.Time) (float64, error) {
	settlement = l.resolve(settlement)
	if !l.IsTradable(settlement) {
		return 0, nil
	}
	return analytics.CleanPriceFromYield(l, y, settlement)
}

func (l *Loan) DirtyPriceFromYield(y interest.Rate, settlement time.Time) (float64, error) {
	settlement = l.resolve(settlement)
	if !l.IsTradable(settlement) {
		return 0, nil
	}
	return analytics.DirtyPriceFromYield(l, y, settlement)
}

func (l *Loan) NextCashFlowDate(settlement time.Time) time.Time {
	return analytics.NextCashFlowDate(l, l.resolve(settlement))
}

func (l *Loan) PreviousCashFlowDate(settlement time.Time) time.Time {
	return analytics.PreviousCashFlowDate(l, l.resolve(settlement))
}

func (l *Loan) NextCouponRate(settlement time.Time) float64 {
	return analytics.NextCouponRate(l, l.resolve(settlement))
}

func (l *Loan) PreviousCouponRate(settlement time.Time) float64 {
	return analytics.PreviousCouponRate(l, l.resolve(settlement))
}

func (l *Loan) resolve(settlement time.Time) time.Time {
	if settlement.IsZero() {
		return l.SettlementDate(time.Time{})
	}
	return settlement
}
