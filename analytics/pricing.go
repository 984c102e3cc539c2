package analytics

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/meenmo/loanlib/cashflow"
	"github.com/meenmo/loanlib/config"
	"github.com/meenmo/loanlib/curve"
	"github.com/meenmo/loanlib/interest"
	"github.com/meenmo/loanlib/logger"
	"github.com/meenmo/loanlib/solver"
)

// Options parameterize yield and z-spread inversion.
type Options struct {
	Accuracy       float64
	MaxEvaluations int
	Guess          float64
	Step           float64
	Logger         *zerolog.Logger
}

// YieldOptions returns the configured defaults for yield solving.
func YieldOptions() Options {
	s := config.GetConfig().Solver
	return Options{Accuracy: s.Accuracy, MaxEvaluations: s.MaxEvaluations, Guess: s.YieldGuess, Step: s.YieldStep}
}

// ZSpreadOptions returns the configured defaults for z-spread solving.
func ZSpreadOptions() Options {
	s := config.GetConfig().Solver
	return Options{Accuracy: s.Accuracy, MaxEvaluations: s.MaxEvaluations, Guess: s.ZSpreadGuess, Step: s.ZSpreadStep}
}

func (o Options) solve(op string, b solver.Brent, f func(float64) float64) (float64, error) {
	log := logger.OrNop(o.Logger)
	res, err := b.Solve(f, o.Guess, o.Step)
	if err != nil {
		log.Warn().Err(err).Str("op", op).Float64("guess", o.Guess).Msg("solver failed")
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	log.Debug().Str("op", op).Float64("root", res.Root).Int("evaluations", res.Evaluations).Msg("solver converged")
	return res.Root, nil
}

// CleanPrice discounts on c and subtracts accrued interest.
func CleanPrice(inst Instrument, c curve.DiscountCurve, settlement time.Time) (float64, error) {
	dirty, err := DirtyPrice(inst, c, settlement)
	if err != nil {
		return 0, err
	}
	accrued, err := AccruedAmount(inst, settlement)
	if err != nil {
		return 0, err
	}
	return dirty - accrued, nil
}

// DirtyPrice discounts the outstanding cash flows on c.
func DirtyPrice(inst Instrument, c curve.DiscountCurve, settlement time.Time) (float64, error) {
	settlement, n, err := requireTradable("DirtyPrice", inst, settlement)
	if err != nil {
		return 0, err
	}
	if c == nil {
		return 0, fmt.Errorf("DirtyPrice: %w", curve.ErrNilCurve)
	}
	return inst.Cashflows().NPV(c, settlement, settlement) * 100 / n, nil
}

// BPS is the price change for a one basis point rise in every coupon rate.
func BPS(inst Instrument, c curve.DiscountCurve, settlement time.Time) (float64, error) {
	settlement, n, err := requireTradable("BPS", inst, settlement)
	if err != nil {
		return 0, err
	}
	if c == nil {
		return 0, fmt.Errorf("BPS: %w", curve.ErrNilCurve)
	}
	return inst.Cashflows().BPS(c, settlement, settlement) * 100 / n, nil
}

// AtmRate is the coupon rate that reprices the instrument to cleanPrice on c.
// With no price it is the rate equivalent to the current coupons.
func AtmRate(inst Instrument, c curve.DiscountCurve, settlement time.Time, cleanPrice *float64) (float64, error) {
	settlement, n, err := requireTradable("AtmRate", inst, settlement)
	if err != nil {
		return 0, err
	}
	if c == nil {
		return 0, fmt.Errorf("AtmRate: %w", curve.ErrNilCurve)
	}
	leg := inst.Cashflows()
	var target *float64
	if cleanPrice != nil {
		v := (*cleanPrice + leg.AccruedAmount(settlement)*100/n) / 100 * n
		target = &v
	}
	return leg.AtmRate(c, settlement, settlement, target)
}

// CleanPriceFromYield discounts at y and subtracts accrued interest.
func CleanPriceFromYield(inst Instrument, y interest.Rate, settlement time.Time) (float64, error) {
	dirty, err := DirtyPriceFromYield(inst, y, settlement)
	if err != nil {
		return 0, err
	}
	accrued, err := AccruedAmount(inst, settlement)
	if err != nil {
		return 0, err
	}
	return dirty - accrued, nil
}

// DirtyPriceFromYield discounts the outstanding cash flows at y.
func DirtyPriceFromYield(inst Instrument, y interest.Rate, settlement time.Time) (float64, error) {
	settlement, n, err := requireTradable("DirtyPriceFromYield", inst, settlement)
	if err != nil {
		return 0, err
	}
	if err := y.Validate(); err != nil {
		return 0, fmt.Errorf("DirtyPriceFromYield: %w", err)
	}
	return inst.Cashflows().NPVAtYield(y, settlement) * 100 / n, nil
}

// BPSFromYield is BPS with every cash flow discounted at y.
func BPSFromYield(inst Instrument, y interest.Rate, settlement time.Time) (float64, error) {
	settlement, n, err := requireTradable("BPSFromYield", inst, settlement)
	if err != nil {
		return 0, err
	}
	if err := y.Validate(); err != nil {
		return 0, fmt.Errorf("BPSFromYield: %w", err)
	}
	return inst.Cashflows().BPSAtYield(y, settlement) * 100 / n, nil
}

// Yield solves for the rate under conv that reprices the instrument to cleanPrice.
func Yield(inst Instrument, cleanPrice float64, conv interest.Convention, settlement time.Time, opts Options) (float64, error) {
	settlement, n, err := requireTradable("Yield", inst, settlement)
	if err != nil {
		return 0, err
	}
	if err := conv.Validate(); err != nil {
		return 0, fmt.Errorf("Yield: %w", err)
	}

	leg := inst.Cashflows()
	dirty := cleanPrice + leg.AccruedAmount(settlement)*100/n
	target := dirty / 100 * n

	b := solver.NewBrent(opts.Accuracy, opts.MaxEvaluations)
	if conv.Compounding == interest.Compounded || conv.Compounding == interest.SimpleThenCompounded {
		b = b.WithLowerBound(-float64(conv.Frequency) + 1e-8)
	}
	return opts.solve("Yield", b, func(y float64) float64 {
		return target - leg.NPVAtYield(conv.WithRate(y), settlement)
	})
}

// Duration of the instrument at yield y.
func Duration(inst Instrument, y interest.Rate, typ cashflow.DurationType, settlement time.Time) (float64, error) {
	settlement, _, err := requireTradable("Duration", inst, settlement)
	if err != nil {
		return 0, err
	}
	if err := y.Validate(); err != nil {
		return 0, fmt.Errorf("Duration: %w", err)
	}
	return inst.Cashflows().Duration(y, typ, settlement)
}

// Convexity of the instrument at yield y.
func Convexity(inst Instrument, y interest.Rate, settlement time.Time) (float64, error) {
	settlement, _, err := requireTradable("Convexity", inst, settlement)
	if err != nil {
		return 0, err
	}
	if err := y.Validate(); err != nil {
		return 0, fmt.Errorf("Convexity: %w", err)
	}
	return inst.Cashflows().Convexity(y, settlement), nil
}

// BasisPointValue is the price change per 100 for a one basis point rise in y.
func BasisPointValue(inst Instrument, y interest.Rate, settlement time.Time) (float64, error) {
	settlement, n, err := requireTradable("BasisPointValue", inst, settlement)
	if err != nil {
		return 0, err
	}
	if err := y.Validate(); err != nil {
		return 0, fmt.Errorf("BasisPointValue: %w", err)
	}
	return inst.Cashflows().BasisPointValue(y, settlement) * 100 / n, nil
}

// YieldValueBasisPoint is the yield change for a 0.01 change in the price per 100.
func YieldValueBasisPoint(inst Instrument, y interest.Rate, settlement time.Time) (float64, error) {
	settlement, n, err := requireTradable("YieldValueBasisPoint", inst, settlement)
	if err != nil {
		return 0, err
	}
	if err := y.Validate(); err != nil {
		return 0, fmt.Errorf("YieldValueBasisPoint: %w", err)
	}
	return inst.Cashflows().YieldValueBasisPoint(y, settlement) * n / 100, nil
}

// CleanPriceFromZSpread discounts on c shifted by zSpread and subtracts accrued interest.
func CleanPriceFromZSpread(inst Instrument, c curve.DiscountCurve, zSpread float64, conv interest.Convention, settlement time.Time) (float64, error) {
	settlement, n, err := requireTradable("CleanPriceFromZSpread", inst, settlement)
	if err != nil {
		return 0, err
	}
	spreaded, err := curve.NewZSpreaded(c, zSpread, conv)
	if err != nil {
		return 0, fmt.Errorf("CleanPriceFromZSpread: %w", err)
	}
	leg := inst.Cashflows()
	dirty := leg.NPV(spreaded, settlement, settlement) * 100 / n
	return dirty - leg.AccruedAmount(settlement)*100/n, nil
}

// ZSpread solves for the zero-rate spread over c that reprices the instrument to cleanPrice.
func ZSpread(inst Instrument, cleanPrice float64, c curve.DiscountCurve, conv interest.Convention, settlement time.Time, opts Options) (float64, error) {
	settlement, n, err := requireTradable("ZSpread", inst, settlement)
	if err != nil {
		return 0, err
	}
	if c == nil {
		return 0, fmt.Errorf("ZSpread: %w", curve.ErrNilCurve)
	}
	if err := conv.Validate(); err != nil {
		return 0, fmt.Errorf("ZSpread: %w", err)
	}

	leg := inst.Cashflows()
	dirty := cleanPrice + leg.AccruedAmount(settlement)*100/n
	target := dirty / 100 * n

	return opts.solve("ZSpread", solver.NewBrent(opts.Accuracy, opts.MaxEvaluations), func(s float64) float64 {
		spreaded, _ := curve.NewZSpreaded(c, s, conv) // c and conv checked above
		return target - leg.NPV(spreaded, settlement, settlement)
	})
}
