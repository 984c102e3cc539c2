package loan

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/meenmo/loanlib/cashflow"
	"github.com/meenmo/loanlib/curve"
)

// Arguments are what a loan hands its engine.
type Arguments struct {
	SettlementDate time.Time
	Cashflows      cashflow.Leg
	Calendar       BusinessCalendar
}

// Validate reports every missing argument at once.
func (a Arguments) Validate() error {
	var err error
	if a.SettlementDate.IsZero() {
		err = multierr.Append(err, errors.New("settlement date missing"))
	}
	if len(a.Cashflows) == 0 {
		err = multierr.Append(err, errors.New("no cash flows"))
	}
	if a.Calendar == nil {
		err = multierr.Append(err, errors.New("calendar missing"))
	}
	return err
}

// Results carry the settlement value in currency. Valid is false when the
// engine produced nothing.
type Results struct {
	SettlementValue float64
	Valid           bool
}

// Engine values a loan's cash flows at its settlement date.
type Engine interface {
	Calculate(args Arguments) (Results, error)
}

// DiscountingEngine discounts every cash flow after settlement on a curve.
type DiscountingEngine struct {
	Curve curve.DiscountCurve
}

func NewDiscountingEngine(c curve.DiscountCurve) *DiscountingEngine {
	return &DiscountingEngine{Curve: c}
}

func (e *DiscountingEngine) Calculate(args Arguments) (Results, error) {
	if e.Curve == nil {
		return Results{}, fmt.Errorf("DiscountingEngine: %w", curve.ErrNilCurve)
	}
	if err := args.Validate(); err != nil {
		return Results{}, fmt.Errorf("DiscountingEngine: %w", err)
	}
	v := args.Cashflows.NPV(e.Curve, args.SettlementDate, args.SettlementDate)
	return Results{SettlementValue: v, Valid: true}, nil
}
