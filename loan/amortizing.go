package loan

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/meenmo/loanlib/calendar"
	"github.com/meenmo/loanlib/cashflow"
	"github.com/meenmo/loanlib/interest"
	"github.com/meenmo/loanlib/utils"
)

// AmortizingTerms describe a fixed-rate amortizing leg. Dates is the accrual
// schedule; Notionals and Rates are given per period, the last entry repeating.
type AmortizingTerms struct {
	Dates             []time.Time
	Notionals         []decimal.Decimal
	Rates             []float64
	DayCount          utils.DayCount
	Calendar          calendar.CalendarID
	PaymentConvention calendar.BusinessDayConvention
}

// Validate reports every problem with the terms at once.
func (t AmortizingTerms) Validate() error {
	var err error
	periods := len(t.Dates) - 1
	if periods < 1 {
		err = multierr.Append(err, errors.New("at least two schedule dates required"))
	}
	for i := 1; i < len(t.Dates); i++ {
		if !t.Dates[i].After(t.Dates[i-1]) {
			err = multierr.Append(err, fmt.Errorf("schedule date %s not after %s",
				utils.FormatDate(t.Dates[i]), utils.FormatDate(t.Dates[i-1])))
		}
	}
	if len(t.Notionals) == 0 {
		err = multierr.Append(err, errors.New("no notionals"))
	} else if periods >= 1 && len(t.Notionals) > periods {
		err = multierr.Append(err, fmt.Errorf("%d notionals for %d periods", len(t.Notionals), periods))
	}
	if len(t.Rates) == 0 {
		err = multierr.Append(err, errors.New("no coupon rates"))
	} else if periods >= 1 && len(t.Rates) > periods {
		err = multierr.Append(err, fmt.Errorf("%d rates for %d periods", len(t.Rates), periods))
	}
	return err
}

// Coupons builds one fixed-rate coupon per period.
func (t AmortizingTerms) Coupons() ([]cashflow.Record, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("AmortizingTerms.Coupons: %w", err)
	}
	periods := len(t.Dates) - 1
	out := make([]cashflow.Record, 0, periods)
	for i := 0; i < periods; i++ {
		start, end := t.Dates[i], t.Dates[i+1]
		pay := calendar.AdjustWith(t.Calendar, end, t.PaymentConvention)
		out = append(out, cashflow.NewFixedRateCoupon(pay, t.Notionals[min(i, len(t.Notionals)-1)],
			t.Rates[min(i, len(t.Rates)-1)], t.DayCount, start, end))
	}
	return out, nil
}

// NewAmortizingFixedRate builds a loan whose principal is repaid as the
// coupon notionals step down.
func NewAmortizingFixedRate(settlementDays int, cal calendar.CalendarID, terms AmortizingTerms, opts ...Option) (*Loan, error) {
	coupons, err := terms.Coupons()
	if err != nil {
		return nil, fmt.Errorf("NewAmortizingFixedRate: %w", err)
	}
	return New(settlementDays, cal, coupons, opts...)
}

// SinkingTerms describe a loan repaid in equal instalments of principal plus interest.
type SinkingTerms struct {
	FaceAmount        decimal.Decimal
	StartDate         time.Time
	TenorMonths       int
	Frequency         interest.Frequency
	Coupon            float64
	DayCount          utils.DayCount
	PaymentConvention calendar.BusinessDayConvention
}

// SinkingNotionals returns the outstanding notional after each of n periods of
// an annuity paying rate per period, starting from face and ending at zero.
func SinkingNotionals(face decimal.Decimal, periods int, ratePerPeriod float64) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, periods+1)
	out = append(out, face)
	initial := face.InexactFloat64()
	total := math.Pow(1+ratePerPeriod, float64(periods))
	compounded := 1.0
	for i := 0; i < periods; i++ {
		compounded *= 1 + ratePerPeriod
		var n float64
		if ratePerPeriod < 1e-12 {
			n = initial * (1 - float64(i+1)/float64(periods))
		} else {
			n = initial * (compounded - (compounded-1)/(1-1/total))
		}
		if math.Abs(n) < 1e-12 || i == periods-1 {
			n = 0
		}
		out = append(out, decimal.NewFromFloat(n).Round(2))
	}
	return out
}

// Amortizing expands the sinking terms into an explicit schedule on cal.
func (t SinkingTerms) Amortizing(cal calendar.CalendarID) (AmortizingTerms, error) {
	switch t.Frequency {
	case interest.Annual, interest.Semiannual, interest.Quarterly, interest.Monthly:
	default:
		return AmortizingTerms{}, fmt.Errorf("SinkingTerms: unsupported frequency %d", t.Frequency)
	}
	step := 12 / int(t.Frequency)
	if t.TenorMonths <= 0 || t.TenorMonths%step != 0 {
		return AmortizingTerms{}, fmt.Errorf("SinkingTerms: tenor of %d months is not a whole number of periods", t.TenorMonths)
	}
	if !t.FaceAmount.IsPositive() {
		return AmortizingTerms{}, fmt.Errorf("SinkingTerms: face amount must be positive, got %s", t.FaceAmount)
	}

	periods := t.TenorMonths / step
	dates := make([]time.Time, 0, periods+1)
	for i := 0; i <= periods; i++ {
		dates = append(dates, calendar.AdjustWith(cal, utils.AddMonth(t.StartDate, i*step), t.PaymentConvention))
	}
	notionals := SinkingNotionals(t.FaceAmount, periods, t.Coupon/float64(t.Frequency))

	return AmortizingTerms{
		Dates:             dates,
		Notionals:         notionals[:periods],
		Rates:             []float64{t.Coupon},
		DayCount:          t.DayCount,
		Calendar:          cal,
		PaymentConvention: t.PaymentConvention,
	}, nil
}

// NewSinkingFixedRate builds an annuity-style amortizing loan.
func NewSinkingFixedRate(settlementDays int, cal calendar.CalendarID, terms SinkingTerms, opts ...Option) (*Loan, error) {
	am, err := terms.Amortizing(cal)
	if err != nil {
		return nil, fmt.Errorf("NewSinkingFixedRate: %w", err)
	}
	return NewAmortizingFixedRate(settlementDays, cal, am, opts...)
}
