package loan_test

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/meenmo/loanlib/calendar"
	"github.com/meenmo/loanlib/interest"
	"github.com/meenmo/loanlib/loan"
	"github.com/meenmo/loanlib/utils"
)

func TestAmortizingTerms_Coupons(t *testing.T) {
	t.Parallel()

	terms := loan.AmortizingTerms{
		Dates: []time.Time{
			utils.Date(2025, 1, 15),
			utils.Date(2025, 4, 15),
			utils.Date(2025, 7, 15),
			utils.Date(2025, 10, 15),
			utils.Date(2026, 1, 15),
		},
		Notionals:         []decimal.Decimal{d(1_000_000), d(1_000_000), d(500_000)},
		Rates:             []float64{0.04},
		DayCount:          utils.Act360,
		Calendar:          calendar.TARGET,
		PaymentConvention: calendar.ModifiedFollowing,
	}
	coupons, err := terms.Coupons()
	require.NoError(t, err)
	require.Len(t, coupons, 4)

	assert.True(t, coupons[2].Coupon.Nominal.Equal(d(500_000)))
	assert.True(t, coupons[3].Coupon.Nominal.Equal(d(500_000)), "last notional repeats")
	for _, c := range coupons {
		assert.InDelta(t, 0.04, c.Coupon.Rate, 0)
	}

	l, err := loan.NewAmortizingFixedRate(0, calendar.TARGET, terms)
	require.NoError(t, err)
	redemptions := l.Redemptions()
	require.Len(t, redemptions, 2)
	assert.Equal(t, utils.Date(2025, 7, 15), redemptions[0].Date)
	assert.True(t, redemptions[0].Amount.Equal(d(500_000)))
	assert.True(t, redemptions[1].Amount.Equal(d(500_000)))
}

func TestAmortizingTerms_PaymentConvention(t *testing.T) {
	t.Parallel()

	// 2025-03-15 is a Saturday.
	terms := loan.AmortizingTerms{
		Dates:             []time.Time{utils.Date(2024, 12, 15), utils.Date(2025, 3, 15)},
		Notionals:         []decimal.Decimal{d(100)},
		Rates:             []float64{0.05},
		DayCount:          utils.Act365F,
		Calendar:          calendar.TARGET,
		PaymentConvention: calendar.Following,
	}
	coupons, err := terms.Coupons()
	require.NoError(t, err)
	assert.Equal(t, utils.Date(2025, 3, 17), coupons[0].Date)
	assert.Equal(t, utils.Date(2025, 3, 15), coupons[0].Coupon.AccrualEnd)
}

func TestAmortizingTerms_Validate(t *testing.T) {
	t.Parallel()

	err := loan.AmortizingTerms{
		Dates:     []time.Time{utils.Date(2025, 4, 15), utils.Date(2025, 1, 15)},
		Notionals: []decimal.Decimal{d(1), d(1)},
	}.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 3)

	_, err = loan.NewAmortizingFixedRate(0, calendar.NullCalendar, loan.AmortizingTerms{})
	require.Error(t, err)
}

func TestSinkingNotionals(t *testing.T) {
	t.Parallel()

	face := d(1_000_000)
	notionals := loan.SinkingNotionals(face, 4, 0.01)
	require.Len(t, notionals, 5)
	assert.True(t, notionals[0].Equal(face))
	assert.True(t, notionals[4].IsZero())

	annuity := 1_000_000 * 0.01 / (1 - math.Pow(1.01, -4))
	for i := 1; i < len(notionals); i++ {
		prev, cur := notionals[i-1].InexactFloat64(), notionals[i].InexactFloat64()
		assert.Less(t, cur, prev)
		assert.InDelta(t, annuity, prev*0.01+(prev-cur), 0.02, "period %d", i)
	}

	linear := loan.SinkingNotionals(d(1_000), 4, 0)
	for i, want := range []int64{1_000, 750, 500, 250, 0} {
		assert.True(t, linear[i].Equal(d(want)), "period %d: %s", i, linear[i])
	}
}

func TestNewSinkingFixedRate(t *testing.T) {
	t.Parallel()

	terms := loan.SinkingTerms{
		FaceAmount:        d(1_000_000),
		StartDate:         utils.Date(2025, 1, 31),
		TenorMonths:       12,
		Frequency:         interest.Quarterly,
		Coupon:            0.04,
		DayCount:          utils.Thirty360,
		PaymentConvention: calendar.Unadjusted,
	}
	l, err := loan.NewSinkingFixedRate(0, calendar.NullCalendar, terms)
	require.NoError(t, err)

	assert.Equal(t, utils.Date(2026, 1, 31), l.MaturityDate())
	assert.Len(t, l.Redemptions(), 4)
	assert.Equal(t, utils.Date(2025, 4, 30), l.Redemptions()[0].Date, "month end kept")

	total := decimal.Zero
	for _, r := range l.Redemptions() {
		total = total.Add(r.Amount)
	}
	assert.True(t, total.Equal(d(1_000_000)), total.String())

	_, err = loan.NewSinkingFixedRate(0, calendar.NullCalendar, loan.SinkingTerms{
		FaceAmount: d(1), StartDate: utils.Date(2025, 1, 31), TenorMonths: 7, Frequency: interest.Quarterly,
	})
	require.Error(t, err)

	_, err = loan.NewSinkingFixedRate(0, calendar.NullCalendar, loan.SinkingTerms{
		FaceAmount: d(1), StartDate: utils.Date(2025, 1, 31), TenorMonths: 12, Frequency: interest.Once,
	})
	require.Error(t, err)
}
