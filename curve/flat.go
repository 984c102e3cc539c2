package curve

import (
	"time"

	"github.com/meenmo/loanlib/interest"
)

// FlatForward discounts every date at a single rate from the reference date.
type FlatForward struct {
	reference time.Time
	rate      interest.Rate
}

// NewFlatForward builds a flat curve.
func NewFlatForward(reference time.Time, rate interest.Rate) (*FlatForward, error) {
	if err := rate.Validate(); err != nil {
		return nil, err
	}
	return &FlatForward{reference: reference, rate: rate}, nil
}

func (f *FlatForward) ReferenceDate() time.Time {
	return f.reference
}

// Rate returns the curve's rate.
func (f *FlatForward) Rate() interest.Rate {
	return f.rate
}

func (f *FlatForward) DF(t time.Time) float64 {
	return f.rate.DiscountFactorBetween(f.reference, t)
}
