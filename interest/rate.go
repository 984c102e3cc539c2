package interest

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/meenmo/loanlib/utils"
)

// Compounding selects how a rate accrues over time.
type Compounding int

const (
	Simple               Compounding = iota // 1 + r*t
	Compounded                              // (1 + r/f)^(f*t)
	Continuous                              // exp(r*t)
	SimpleThenCompounded                    // simple up to one period, compounded after
)

func (c Compounding) String() string {
	switch c {
	case Simple:
		return "simple"
	case Compounded:
		return "compounded"
	case Continuous:
		return "continuous"
	case SimpleThenCompounded:
		return "simple-then-compounded"
	default:
		return fmt.Sprintf("Compounding(%d)", int(c))
	}
}

// Frequency is the number of compounding periods per year.
type Frequency int

const (
	NoFrequency Frequency = -1
	Once        Frequency = 0
	Annual      Frequency = 1
	Semiannual  Frequency = 2
	Quarterly   Frequency = 4
	Monthly     Frequency = 12
)

var ErrInvalidConvention = errors.New("invalid rate convention")

// ParseCompounding maps a name to a Compounding.
func ParseCompounding(s string) (Compounding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "simple":
		return Simple, nil
	case "compounded", "":
		return Compounded, nil
	case "continuous":
		return Continuous, nil
	case "simple-then-compounded", "simplethencompounded":
		return SimpleThenCompounded, nil
	default:
		return 0, fmt.Errorf("ParseCompounding: %w: %q", ErrInvalidConvention, s)
	}
}

// ParseFrequency maps a name to a Frequency.
func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "annual", "1y", "":
		return Annual, nil
	case "semiannual", "6m":
		return Semiannual, nil
	case "quarterly", "3m":
		return Quarterly, nil
	case "monthly", "1m":
		return Monthly, nil
	case "once":
		return Once, nil
	case "none":
		return NoFrequency, nil
	default:
		return 0, fmt.Errorf("ParseFrequency: %w: %q", ErrInvalidConvention, s)
	}
}

// Convention bundles the quoting conventions of a rate.
type Convention struct {
	DayCount    utils.DayCount
	Compounding Compounding
	Frequency   Frequency
}

// WithRate attaches a value to the convention.
func (c Convention) WithRate(value float64) Rate {
	return Rate{Value: value, Convention: c}
}

// Validate checks that compounded quoting has a usable frequency.
func (c Convention) Validate() error {
	switch c.Compounding {
	case Compounded, SimpleThenCompounded:
		if c.Frequency <= 0 {
			return fmt.Errorf("Convention.Validate: %w: %s rate needs a positive frequency", ErrInvalidConvention, c.Compounding)
		}
	case Simple, Continuous:
	default:
		return fmt.Errorf("Convention.Validate: %w: %s", ErrInvalidConvention, c.Compounding)
	}
	return nil
}

// Rate is an interest rate with its quoting conventions.
type Rate struct {
	Value float64
	Convention
}

// New builds a Rate.
func New(value float64, dc utils.DayCount, comp Compounding, freq Frequency) Rate {
	return Rate{Value: value, Convention: Convention{DayCount: dc, Compounding: comp, Frequency: freq}}
}

// CompoundFactor returns the growth of one unit over t years.
func (r Rate) CompoundFactor(t float64) float64 {
	f := float64(r.Frequency)
	switch r.Compounding {
	case Simple:
		return 1 + r.Value*t
	case Compounded:
		return math.Pow(1+r.Value/f, f*t)
	case Continuous:
		return math.Exp(r.Value * t)
	case SimpleThenCompounded:
		if t <= 1/f {
			return 1 + r.Value*t
		}
		return math.Pow(1+r.Value/f, f*t)
	default:
		return math.NaN()
	}
}

// DiscountFactor returns 1 / CompoundFactor(t).
func (r Rate) DiscountFactor(t float64) float64 {
	return 1 / r.CompoundFactor(t)
}

// DiscountFactorBetween discounts from end back to start using the rate's day count.
func (r Rate) DiscountFactorBetween(start, end time.Time) float64 {
	return r.DiscountFactor(r.DayCount.YearFraction(start, end))
}

// ImpliedRate returns the rate under conv that grows one unit into compound over t years.
func ImpliedRate(compound, t float64, conv Convention) Rate {
	if compound == 1 || t <= 0 {
		return conv.WithRate(0)
	}
	f := float64(conv.Frequency)
	var r float64
	switch conv.Compounding {
	case Simple:
		r = (compound - 1) / t
	case Compounded:
		r = (math.Pow(compound, 1/(f*t)) - 1) * f
	case Continuous:
		r = math.Log(compound) / t
	case SimpleThenCompounded:
		if t <= 1/f {
			r = (compound - 1) / t
		} else {
			r = (math.Pow(compound, 1/(f*t)) - 1) * f
		}
	default:
		r = math.NaN()
	}
	return conv.WithRate(r)
}
