package loan

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/meenmo/loanlib/cashflow"
	"github.com/meenmo/loanlib/notional"
	"github.com/meenmo/loanlib/utils"
	"github.com/meenmo/loanlib/valuation"
)

var (
	ErrInvalidSettlementDate = errors.New("issue date must be earlier than first payment date")
	ErrMultipleRedemptions   = errors.New("multiple redemption cash flows given")
	ErrNoPricingEngineResult = errors.New("settlement value not provided")
	ErrUnexpectedPrincipal   = errors.New("principal records passed as coupons")
)

// BusinessCalendar moves dates by business days.
type BusinessCalendar interface {
	Advance(t time.Time, businessDays int) time.Time
}

// Loan is an amortizing loan: coupons, the principal records derived from
// their nominals, and the notional schedule. Only the settlement value cache
// changes after construction.
type Loan struct {
	settlementDays int
	calendar       BusinessCalendar
	issueDate      time.Time
	maturityDate   time.Time
	factors        []decimal.Decimal

	cashflows   cashflow.Leg
	redemptions []cashflow.Record
	schedule    notional.Schedule

	clock  *valuation.Clock
	engine Engine
	log    zerolog.Logger

	mu               sync.Mutex
	valid            bool
	version          uint64
	settlementValue  float64
	cachedSettlement time.Time
}

// Option configures a Loan at construction.
type Option func(*Loan)

// WithIssueDate floors the settlement date and must precede the first payment.
func WithIssueDate(d time.Time) Option {
	return func(l *Loan) { l.issueDate = d }
}

// WithRedemptionFactors sets the percent of each notional step repaid, per breakpoint.
func WithRedemptionFactors(factors ...decimal.Decimal) Option {
	return func(l *Loan) { l.factors = append([]decimal.Decimal(nil), factors...) }
}

// WithEngine attaches the pricing engine behind SettlementValue.
func WithEngine(e Engine) Option {
	return func(l *Loan) { l.engine = e }
}

// WithClock replaces the process-wide evaluation clock.
func WithClock(c *valuation.Clock) Option {
	return func(l *Loan) { l.clock = c }
}

// WithLogger attaches a logger for cache recomputation events.
func WithLogger(log zerolog.Logger) Option {
	return func(l *Loan) { l.log = log }
}

func newLoan(op string, settlementDays int, cal BusinessCalendar, opts []Option) (*Loan, error) {
	if settlementDays < 0 {
		return nil, fmt.Errorf("%s: settlement days must be non-negative, got %d", op, settlementDays)
	}
	if cal == nil {
		return nil, fmt.Errorf("%s: nil calendar", op)
	}
	l := &Loan{
		settlementDays: settlementDays,
		calendar:       cal,
		clock:          valuation.Default(),
		log:            zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// New builds a loan from its coupons. Principal records are synthesized from
// the drops in coupon nominal, scaled by the redemption factors.
func New(settlementDays int, cal BusinessCalendar, coupons []cashflow.Record, opts ...Option) (*Loan, error) {
	l, err := newLoan("loan.New", settlementDays, cal, opts)
	if err != nil {
		return nil, err
	}
	for _, r := range coupons {
		if r.Kind.IsPrincipal() {
			return nil, fmt.Errorf("loan.New: %w: %s", ErrUnexpectedPrincipal, r)
		}
	}

	leg := cashflow.NewLeg(coupons...)
	am, err := notional.Synthesize(leg, l.factors)
	if err != nil {
		return nil, fmt.Errorf("loan.New: %w", err)
	}
	l.cashflows = am.Leg
	l.schedule = am.Schedule
	l.redemptions = am.Redemptions
	l.maturityDate = leg.MaturityDate()

	if err := l.checkIssueDate("loan.New"); err != nil {
		return nil, err
	}
	return l, nil
}

// NewSingleRedemption builds a bullet loan repaying notional*redemption/100 at
// maturity. Coupons are optional and are not used to derive the notional.
func NewSingleRedemption(settlementDays int, cal BusinessCalendar, face, redemption decimal.Decimal,
	maturity time.Time, coupons []cashflow.Record, opts ...Option) (*Loan, error) {
	l, err := newLoan("loan.NewSingleRedemption", settlementDays, cal, opts)
	if err != nil {
		return nil, err
	}
	for _, r := range coupons {
		if r.Kind.IsPrincipal() {
			return nil, fmt.Errorf("loan.NewSingleRedemption: %w: %s", ErrUnexpectedPrincipal, r)
		}
	}

	schedule, red := notional.Single(face, redemption, maturity)
	l.cashflows = cashflow.NewLeg(coupons...).Merge(red)
	l.schedule = schedule
	l.redemptions = []cashflow.Record{red}
	l.maturityDate = utils.MaxDate(maturity, l.cashflows.MaturityDate())

	if err := l.checkIssueDate("loan.NewSingleRedemption"); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Loan) checkIssueDate(op string) error {
	if l.issueDate.IsZero() || len(l.cashflows) == 0 {
		return nil
	}
	first := l.cashflows[0].Date
	if !l.issueDate.Before(first) {
		return fmt.Errorf("%s: %w (issue date %s, first payment %s)",
			op, ErrInvalidSettlementDate, utils.FormatDate(l.issueDate), utils.FormatDate(first))
	}
	return nil
}

func (l *Loan) SettlementDays() int { return l.settlementDays }

func (l *Loan) Calendar() BusinessCalendar { return l.calendar }

// IssueDate is the zero time when no issue date was given.
func (l *Loan) IssueDate() time.Time { return l.issueDate }

func (l *Loan) MaturityDate() time.Time { return l.maturityDate }

// StartDate is the earliest accrual start.
func (l *Loan) StartDate() time.Time { return l.cashflows.StartDate() }

// Cashflows returns a copy of the full ledger, principal records included.
func (l *Loan) Cashflows() cashflow.Leg {
	return append(cashflow.Leg(nil), l.cashflows...)
}

// Redemptions returns a copy of the principal records.
func (l *Loan) Redemptions() []cashflow.Record {
	return append([]cashflow.Record(nil), l.redemptions...)
}

// Redemption returns the only principal record of a bullet loan.
func (l *Loan) Redemption() (cashflow.Record, error) {
	if len(l.redemptions) != 1 {
		return cashflow.Record{}, fmt.Errorf("Redemption: %w (%d found)", ErrMultipleRedemptions, len(l.redemptions))
	}
	return l.redemptions[0], nil
}

// NotionalSchedule returns a copy of the schedule.
func (l *Loan) NotionalSchedule() notional.Schedule {
	return notional.Schedule{
		Dates:     append([]time.Time(nil), l.schedule.Dates...),
		Notionals: append([]decimal.Decimal(nil), l.schedule.Notionals...),
	}
}

// Notionals returns the notional steps, ending with zero.
func (l *Loan) Notionals() []decimal.Decimal {
	return append([]decimal.Decimal(nil), l.schedule.Notionals...)
}

// NotionalAt returns the notional outstanding on d; the zero time means the settlement date.
func (l *Loan) NotionalAt(d time.Time) decimal.Decimal {
	if d.IsZero() {
		d = l.SettlementDate(time.Time{})
	}
	return l.schedule.At(d)
}

// SettlementDate advances asOf (or the evaluation date) by the settlement
// days, never earlier than the issue date.
func (l *Loan) SettlementDate(asOf time.Time) time.Time {
	if asOf.IsZero() {
		asOf = l.clock.Date()
	}
	return l.settlementFor(asOf)
}

func (l *Loan) settlementFor(asOf time.Time) time.Time {
	d := l.calendar.Advance(asOf, l.settlementDays)
	if !l.issueDate.IsZero() && d.Before(l.issueDate) {
		return l.issueDate
	}
	return d
}

// IsTradable reports whether principal is outstanding on d.
func (l *Loan) IsTradable(d time.Time) bool {
	return !l.NotionalAt(d).IsZero()
}

// IsExpired reports whether every cash flow was paid before the evaluation date.
func (l *Loan) IsExpired() bool {
	return l.cashflows.IsExpired(l.clock.Date())
}
