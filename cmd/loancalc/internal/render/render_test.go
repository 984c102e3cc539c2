package render_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/loanlib/calendar"
	"github.com/meenmo/loanlib/cashflow"
	"github.com/meenmo/loanlib/cmd/loancalc/internal/render"
	"github.com/meenmo/loanlib/loan"
	"github.com/meenmo/loanlib/utils"
	"github.com/meenmo/loanlib/valuation"
)

func TestSchedule_Bullet(t *testing.T) {
	t.Parallel()

	face := decimal.NewFromInt(1_000_000)
	coupons := []cashflow.Record{
		cashflow.NewFixedRateCoupon(utils.Date(2026, 1, 15), face, 0.04, utils.Thirty360, utils.Date(2025, 1, 15), utils.Date(2026, 1, 15)),
		cashflow.NewFixedRateCoupon(utils.Date(2027, 1, 15), face, 0.04, utils.Thirty360, utils.Date(2026, 1, 15), utils.Date(2027, 1, 15)),
	}
	l, err := loan.NewSingleRedemption(0, calendar.NullCalendar, face, decimal.NewFromInt(101), utils.Date(2027, 1, 15), coupons,
		loan.WithClock(valuation.NewClock(utils.Date(2025, 7, 15))))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, render.Schedule(&buf, "bullet-a", l))
	goldie.New(t).Assert(t, "bullet", buf.Bytes())
}

func TestSchedule_StepDown(t *testing.T) {
	t.Parallel()

	l, err := loan.NewAmortizingFixedRate(0, calendar.NullCalendar, loan.AmortizingTerms{
		Dates:     []time.Time{utils.Date(2025, 1, 15), utils.Date(2026, 1, 15), utils.Date(2027, 1, 15)},
		Notionals: []decimal.Decimal{decimal.NewFromInt(200_000), decimal.NewFromInt(100_000)},
		Rates:     []float64{0.05},
		DayCount:  utils.Thirty360,
		Calendar:  calendar.NullCalendar,
	}, loan.WithClock(valuation.NewClock(utils.Date(2025, 7, 15))))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, render.Schedule(&buf, "step-down", l))
	goldie.New(t).Assert(t, "step_down", buf.Bytes())
}
