package notional

import (
	"github.com/shopspring/decimal"

	"github.com/meenmo/loanlib/cashflow"
)

var hundred = decimal.NewFromInt(100)

// Amortization is a coupon leg completed with its principal records.
type Amortization struct {
	Leg         cashflow.Leg
	Schedule    Schedule
	Redemptions []cashflow.Record
}

// FactorAt returns the redemption factor (percent of the paydown) for breakpoint i:
// factors[i] when present, else the last factor, else 100.
func FactorAt(factors []decimal.Decimal, i int) decimal.Decimal {
	switch {
	case i < len(factors):
		return factors[i]
	case len(factors) > 0:
		return factors[len(factors)-1]
	default:
		return hundred
	}
}

// Redemptions emits one principal record per breakpoint after the leading zero
// date, paying factor/100 of the notional step. The last one is the final
// redemption. Steps with no paydown still produce a zero-amount record.
func Redemptions(s Schedule, factors []decimal.Decimal) []cashflow.Record {
	if len(s.Notionals) < 2 {
		return nil
	}
	out := make([]cashflow.Record, 0, len(s.Notionals)-1)
	last := len(s.Notionals) - 1
	for i := 1; i <= last; i++ {
		amount := s.Notionals[i-1].Sub(s.Notionals[i]).Mul(FactorAt(factors, i)).Div(hundred)
		if i == last {
			out = append(out, cashflow.NewRedemption(s.Dates[i], amount))
		} else {
			out = append(out, cashflow.NewAmortizingPayment(s.Dates[i], amount))
		}
	}
	return out
}

// Synthesize builds the schedule of leg and merges the principal records into a new leg.
func Synthesize(leg cashflow.Leg, factors []decimal.Decimal) (Amortization, error) {
	s, err := Build(leg)
	if err != nil {
		return Amortization{}, err
	}
	redemptions := Redemptions(s, factors)
	return Amortization{
		Leg:         leg.Merge(redemptions...),
		Schedule:    s,
		Redemptions: redemptions,
	}, nil
}
