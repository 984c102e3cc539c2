package interest_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/loanlib/interest"
	"github.com/meenmo/loanlib/utils"
)

func TestCompoundFactor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rate interest.Rate
		t    float64
		want float64
	}{
		{"simple", interest.New(0.05, utils.Act365F, interest.Simple, interest.Annual), 2, 1.10},
		{"annual", interest.New(0.05, utils.Act365F, interest.Compounded, interest.Annual), 2, 1.1025},
		{"quarterly", interest.New(0.04, utils.Act365F, interest.Compounded, interest.Quarterly), 1, math.Pow(1.01, 4)},
		{"continuous", interest.New(0.03, utils.Act365F, interest.Continuous, interest.NoFrequency), 2, math.Exp(0.06)},
		{"simple then compounded short", interest.New(0.04, utils.Act365F, interest.SimpleThenCompounded, interest.Semiannual), 0.25, 1.01},
		{"simple then compounded long", interest.New(0.04, utils.Act365F, interest.SimpleThenCompounded, interest.Semiannual), 1, 1.0404},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.rate.CompoundFactor(tt.t), 1e-12)
			assert.InDelta(t, 1/tt.want, tt.rate.DiscountFactor(tt.t), 1e-12)
		})
	}
}

func TestImpliedRate_RoundTrip(t *testing.T) {
	t.Parallel()

	conventions := []interest.Convention{
		{DayCount: utils.Act365F, Compounding: interest.Simple, Frequency: interest.Annual},
		{DayCount: utils.Act365F, Compounding: interest.Compounded, Frequency: interest.Semiannual},
		{DayCount: utils.Act365F, Compounding: interest.Continuous, Frequency: interest.NoFrequency},
		{DayCount: utils.Act365F, Compounding: interest.SimpleThenCompounded, Frequency: interest.Quarterly},
	}
	for _, conv := range conventions {
		for _, tm := range []float64{0.1, 1, 3.5} {
			r := conv.WithRate(0.0375)
			implied := interest.ImpliedRate(r.CompoundFactor(tm), tm, conv)
			assert.InDelta(t, 0.0375, implied.Value, 1e-12, "%s t=%v", conv.Compounding, tm)
		}
	}

	assert.Zero(t, interest.ImpliedRate(1.2, 0, conventions[0]).Value)
}

func TestConventionValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, interest.Convention{Compounding: interest.Continuous, Frequency: interest.NoFrequency}.Validate())
	err := interest.Convention{Compounding: interest.Compounded, Frequency: interest.Once}.Validate()
	assert.ErrorIs(t, err, interest.ErrInvalidConvention)
}

func TestParseConventions(t *testing.T) {
	t.Parallel()

	c, err := interest.ParseCompounding("Continuous")
	require.NoError(t, err)
	assert.Equal(t, interest.Continuous, c)

	f, err := interest.ParseFrequency("quarterly")
	require.NoError(t, err)
	assert.Equal(t, interest.Quarterly, f)

	_, err = interest.ParseFrequency("fortnightly")
	assert.ErrorIs(t, err, interest.ErrInvalidConvention)
}
