package main

import (
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meenmo/loanlib/analytics"
	"github.com/meenmo/loanlib/calendar"
	"github.com/meenmo/loanlib/cashflow"
	"github.com/meenmo/loanlib/curve"
	"github.com/meenmo/loanlib/interest"
	"github.com/meenmo/loanlib/loan"
	"github.com/meenmo/loanlib/utils"
	"github.com/meenmo/loanlib/valuation"
)

func main() {
	evalDate := utils.Date(2025, 11, 21)
	clock := valuation.NewClock(evalDate)

	krwCurve, err := curve.NewCurveFromDFs(evalDate, map[time.Time]float64{
		utils.Date(2026, 5, 21):  0.98640,
		utils.Date(2026, 11, 23): 0.97270,
		utils.Date(2027, 11, 22): 0.94450,
		utils.Date(2028, 11, 21): 0.91560,
		utils.Date(2030, 11, 21): 0.85740,
	})
	if err != nil {
		log.Fatal(err)
	}

	terms := loan.SinkingTerms{
		FaceAmount:        decimal.NewFromInt(10_000_000_000),
		StartDate:         utils.Date(2025, 1, 24),
		TenorMonths:       60,
		Frequency:         interest.Quarterly,
		Coupon:            0.0324,
		DayCount:          utils.Act365F,
		PaymentConvention: calendar.ModifiedFollowing,
	}
	l, err := loan.NewSinkingFixedRate(1, calendar.KRW, terms,
		loan.WithClock(clock),
		loan.WithIssueDate(utils.Date(2025, 1, 24)),
		loan.WithEngine(loan.NewDiscountingEngine(krwCurve)))
	if err != nil {
		log.Fatal(err)
	}

	clean, err := l.CleanPrice()
	if err != nil {
		log.Fatal(err)
	}
	dirty, err := l.DirtyPrice()
	if err != nil {
		log.Fatal(err)
	}
	conv := interest.Convention{DayCount: utils.Act365F, Compounding: interest.Compounded, Frequency: interest.Quarterly}
	y, err := l.Yield(conv, analytics.YieldOptions())
	if err != nil {
		log.Fatal(err)
	}
	duration, err := analytics.Duration(l, conv.WithRate(y), cashflow.DurationModified, time.Time{})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Settlement: %s\n", utils.FormatDate(l.SettlementDate(time.Time{})))
	fmt.Printf("Notional: %s\n", l.NotionalAt(time.Time{}).StringFixed(0))
	fmt.Printf("Clean price: %.6f\n", clean)
	fmt.Printf("Dirty price: %.6f\n", dirty)
	fmt.Printf("Accrued: %.6f\n", l.AccruedAmount(time.Time{}))
	fmt.Printf("Yield: %v%%\n", utils.RoundTo(y*100, 4))
	fmt.Printf("Modified duration: %.4f\n", duration)
	fmt.Printf("Next payment: %s\n", utils.FormatDate(l.NextCashFlowDate(time.Time{})))
}
