package curve

import (
	"time"

	"github.com/meenmo/loanlib/interest"
)

// ZSpreaded shifts the zero rates of a base curve by a constant spread
// quoted under the given convention.
type ZSpreaded struct {
	base       DiscountCurve
	spread     float64
	convention interest.Convention
}

// NewZSpreaded wraps base with a parallel zero-rate spread.
func NewZSpreaded(base DiscountCurve, spread float64, conv interest.Convention) (*ZSpreaded, error) {
	if base == nil {
		return nil, ErrNilCurve
	}
	if err := conv.Validate(); err != nil {
		return nil, err
	}
	return &ZSpreaded{base: base, spread: spread, convention: conv}, nil
}

func (z *ZSpreaded) ReferenceDate() time.Time {
	return z.base.ReferenceDate()
}

// Spread returns the zero-rate shift.
func (z *ZSpreaded) Spread() float64 {
	return z.spread
}

func (z *ZSpreaded) DF(t time.Time) float64 {
	yf := z.convention.DayCount.YearFraction(z.base.ReferenceDate(), t)
	if yf <= 0 {
		return z.base.DF(t)
	}
	zero := ZeroRate(z.base, t, z.convention)
	return z.convention.WithRate(zero.Value + z.spread).DiscountFactor(yf)
}
