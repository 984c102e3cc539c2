// Package loanfile decodes the YAML (or JSON) loan files read by loancalc.
//
// Conventions:
//   - rates, coupons and prices are in percent (5.0 means 5%)
//   - dates are YYYY-MM-DD
//   - amounts are plain numbers in the loan currency
package loanfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/meenmo/loanlib/calendar"
	"github.com/meenmo/loanlib/cashflow"
	"github.com/meenmo/loanlib/curve"
	"github.com/meenmo/loanlib/interest"
	"github.com/meenmo/loanlib/loan"
	"github.com/meenmo/loanlib/utils"
	"github.com/meenmo/loanlib/valuation"
)

type File struct {
	EvalDate string     `yaml:"evaluation_date"` // optional, defaults to today
	Curve    *Curve     `yaml:"curve"`
	Yield    Convention `yaml:"yield"`
	Loans    []Loan     `yaml:"loans"`
}

// Convention names a rate quoting convention. Empty fields mean ACT/365F,
// compounded, annual.
type Convention struct {
	DayCount    string `yaml:"day_count"`
	Compounding string `yaml:"compounding"`
	Frequency   string `yaml:"frequency"`
}

// Curve is either a flat rate or a set of discount factors by date.
type Curve struct {
	ReferenceDate   string             `yaml:"reference_date"` // optional, defaults to the evaluation date
	FlatRate        *float64           `yaml:"flat_rate"`
	Convention      Convention         `yaml:",inline"`
	DiscountFactors map[string]float64 `yaml:"discount_factors"`
}

type Loan struct {
	Name              string      `yaml:"name"`
	SettlementDays    *int        `yaml:"settlement_days"`
	Calendar          string      `yaml:"calendar"`
	IssueDate         string      `yaml:"issue_date"`
	RedemptionFactors []float64   `yaml:"redemption_factors"`
	CleanPrice        *float64    `yaml:"clean_price"`
	Amortizing        *Amortizing `yaml:"amortizing"`
	Sinking           *Sinking    `yaml:"sinking"`
	Bullet            *Bullet     `yaml:"bullet"`
}

// Amortizing lists per-period notionals and rates over explicit schedule dates.
type Amortizing struct {
	Dates             []string  `yaml:"dates"`
	Notionals         []float64 `yaml:"notionals"`
	Rates             []float64 `yaml:"rates"`
	DayCount          string    `yaml:"day_count"`
	PaymentConvention string    `yaml:"payment_convention"`
}

type Sinking struct {
	Face              float64 `yaml:"face"`
	StartDate         string  `yaml:"start_date"`
	TenorMonths       int     `yaml:"tenor_months"`
	Frequency         string  `yaml:"frequency"`
	Coupon            float64 `yaml:"coupon"`
	DayCount          string  `yaml:"day_count"`
	PaymentConvention string  `yaml:"payment_convention"`
}

// Bullet repays Face*Redemption/100 at Maturity. Dates, when given, is the
// coupon schedule ending at Maturity.
type Bullet struct {
	Face              float64  `yaml:"face"`
	Redemption        float64  `yaml:"redemption"`
	Maturity          string   `yaml:"maturity"`
	Dates             []string `yaml:"dates"`
	Coupon            float64  `yaml:"coupon"`
	DayCount          string   `yaml:"day_count"`
	PaymentConvention string   `yaml:"payment_convention"`
}

// Decode reads a loan file and validates it.
func Decode(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty loan file")
		}
		return nil, fmt.Errorf("failed to parse loan file: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// ReadFile decodes the loan file at path.
func ReadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	f, err := Decode(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Validate reports every structural problem in the file at once.
func (f *File) Validate() error {
	var err error
	if len(f.Loans) == 0 {
		err = multierr.Append(err, errors.New("no loans"))
	}
	seen := make(map[string]bool, len(f.Loans))
	for i, l := range f.Loans {
		name := strings.TrimSpace(l.Name)
		if name == "" {
			err = multierr.Append(err, fmt.Errorf("loans[%d]: name is required", i))
		} else if seen[name] {
			err = multierr.Append(err, fmt.Errorf("loans[%d]: duplicate name %q", i, name))
		}
		seen[name] = true

		kinds := 0
		for _, set := range []bool{l.Amortizing != nil, l.Sinking != nil, l.Bullet != nil} {
			if set {
				kinds++
			}
		}
		if kinds != 1 {
			err = multierr.Append(err, fmt.Errorf("loans[%d]: exactly one of amortizing, sinking or bullet is required", i))
		}
		if l.SettlementDays != nil && *l.SettlementDays < 0 {
			err = multierr.Append(err, fmt.Errorf("loans[%d]: settlement_days must be >= 0", i))
		}
	}
	if f.Curve != nil && f.Curve.FlatRate == nil && len(f.Curve.DiscountFactors) == 0 {
		err = multierr.Append(err, errors.New("curve: flat_rate or discount_factors is required"))
	}
	return err
}

// EvaluationDate parses the file's evaluation date, defaulting to the process clock.
func (f *File) EvaluationDate() (time.Time, error) {
	if strings.TrimSpace(f.EvalDate) == "" {
		return valuation.Default().Date(), nil
	}
	d, err := utils.ParseDate(f.EvalDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid evaluation_date: %w", err)
	}
	return d, nil
}

// YieldConvention is the convention yields are quoted in.
func (f *File) YieldConvention() (interest.Convention, error) {
	return f.Yield.parse()
}

func (c Convention) parse() (interest.Convention, error) {
	dcName := c.DayCount
	if strings.TrimSpace(dcName) == "" {
		dcName = string(utils.Act365F)
	}
	dc, err := utils.ParseDayCount(dcName)
	if err != nil {
		return interest.Convention{}, err
	}
	comp, err := interest.ParseCompounding(c.Compounding)
	if err != nil {
		return interest.Convention{}, err
	}
	freq, err := interest.ParseFrequency(c.Frequency)
	if err != nil {
		return interest.Convention{}, err
	}
	conv := interest.Convention{DayCount: dc, Compounding: comp, Frequency: freq}
	return conv, conv.Validate()
}

// DiscountCurve builds the file's curve, or returns nil when there is none.
func (f *File) DiscountCurve(evaluationDate time.Time) (curve.DiscountCurve, error) {
	if f.Curve == nil {
		return nil, nil
	}
	ref := evaluationDate
	if strings.TrimSpace(f.Curve.ReferenceDate) != "" {
		d, err := utils.ParseDate(f.Curve.ReferenceDate)
		if err != nil {
			return nil, fmt.Errorf("invalid curve reference_date: %w", err)
		}
		ref = d
	}

	if f.Curve.FlatRate != nil {
		conv, err := f.Curve.Convention.parse()
		if err != nil {
			return nil, fmt.Errorf("curve: %w", err)
		}
		flat, err := curve.NewFlatForward(ref, conv.WithRate(*f.Curve.FlatRate/100))
		if err != nil {
			return nil, fmt.Errorf("curve: %w", err)
		}
		return flat, nil
	}

	dfs := make(map[time.Time]float64, len(f.Curve.DiscountFactors))
	for k, v := range f.Curve.DiscountFactors {
		d, err := utils.ParseDate(k)
		if err != nil {
			return nil, fmt.Errorf("curve: invalid pillar %q: %w", k, err)
		}
		dfs[d] = v
	}
	c, err := curve.NewCurveFromDFs(ref, dfs)
	if err != nil {
		return nil, fmt.Errorf("curve: %w", err)
	}
	return c, nil
}

// Build constructs the loan. defaultSettlementDays applies when the file omits them.
func (l Loan) Build(defaultSettlementDays int, clock *valuation.Clock, log zerolog.Logger, opts ...loan.Option) (*loan.Loan, error) {
	cal, err := calendar.Parse(l.Calendar)
	if err != nil {
		return nil, err
	}
	settlementDays := defaultSettlementDays
	if l.SettlementDays != nil {
		settlementDays = *l.SettlementDays
	}

	opts = append(opts, loan.WithClock(clock), loan.WithLogger(log.With().Str("loan", l.Name).Logger()))
	if strings.TrimSpace(l.IssueDate) != "" {
		issue, err := utils.ParseDate(l.IssueDate)
		if err != nil {
			return nil, fmt.Errorf("invalid issue_date: %w", err)
		}
		opts = append(opts, loan.WithIssueDate(issue))
	}
	if len(l.RedemptionFactors) > 0 {
		factors := make([]decimal.Decimal, len(l.RedemptionFactors))
		for i, f := range l.RedemptionFactors {
			factors[i] = decimal.NewFromFloat(f)
		}
		opts = append(opts, loan.WithRedemptionFactors(factors...))
	}

	switch {
	case l.Amortizing != nil:
		terms, err := l.Amortizing.terms(cal)
		if err != nil {
			return nil, err
		}
		return loan.NewAmortizingFixedRate(settlementDays, cal, terms, opts...)
	case l.Sinking != nil:
		terms, err := l.Sinking.terms()
		if err != nil {
			return nil, err
		}
		return loan.NewSinkingFixedRate(settlementDays, cal, terms, opts...)
	case l.Bullet != nil:
		return l.Bullet.build(settlementDays, cal, opts)
	default:
		return nil, errors.New("no loan terms")
	}
}

func parseDates(values []string) ([]time.Time, error) {
	out := make([]time.Time, 0, len(values))
	for _, v := range values {
		d, err := utils.ParseDate(v)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func parseDayCount(s string) (utils.DayCount, error) {
	if strings.TrimSpace(s) == "" {
		return utils.Act360, nil
	}
	return utils.ParseDayCount(s)
}

func (a *Amortizing) terms(cal calendar.CalendarID) (loan.AmortizingTerms, error) {
	dates, err := parseDates(a.Dates)
	if err != nil {
		return loan.AmortizingTerms{}, fmt.Errorf("amortizing dates: %w", err)
	}
	dc, err := parseDayCount(a.DayCount)
	if err != nil {
		return loan.AmortizingTerms{}, err
	}
	bdc, err := calendar.ParseConvention(a.PaymentConvention)
	if err != nil {
		return loan.AmortizingTerms{}, err
	}
	notionals := make([]decimal.Decimal, len(a.Notionals))
	for i, n := range a.Notionals {
		notionals[i] = decimal.NewFromFloat(n)
	}
	rates := make([]float64, len(a.Rates))
	for i, r := range a.Rates {
		rates[i] = r / 100
	}
	return loan.AmortizingTerms{
		Dates:             dates,
		Notionals:         notionals,
		Rates:             rates,
		DayCount:          dc,
		Calendar:          cal,
		PaymentConvention: bdc,
	}, nil
}

func (s *Sinking) terms() (loan.SinkingTerms, error) {
	start, err := utils.ParseDate(s.StartDate)
	if err != nil {
		return loan.SinkingTerms{}, fmt.Errorf("sinking start_date: %w", err)
	}
	freq, err := interest.ParseFrequency(s.Frequency)
	if err != nil {
		return loan.SinkingTerms{}, err
	}
	dc, err := parseDayCount(s.DayCount)
	if err != nil {
		return loan.SinkingTerms{}, err
	}
	bdc, err := calendar.ParseConvention(s.PaymentConvention)
	if err != nil {
		return loan.SinkingTerms{}, err
	}
	return loan.SinkingTerms{
		FaceAmount:        decimal.NewFromFloat(s.Face),
		StartDate:         start,
		TenorMonths:       s.TenorMonths,
		Frequency:         freq,
		Coupon:            s.Coupon / 100,
		DayCount:          dc,
		PaymentConvention: bdc,
	}, nil
}

func (b *Bullet) build(settlementDays int, cal calendar.CalendarID, opts []loan.Option) (*loan.Loan, error) {
	maturity, err := utils.ParseDate(b.Maturity)
	if err != nil {
		return nil, fmt.Errorf("bullet maturity: %w", err)
	}
	redemption := b.Redemption
	if redemption == 0 {
		redemption = 100
	}
	face := decimal.NewFromFloat(b.Face)

	var coupons []cashflow.Record
	if len(b.Dates) > 0 {
		dates, err := parseDates(b.Dates)
		if err != nil {
			return nil, fmt.Errorf("bullet dates: %w", err)
		}
		dc, err := parseDayCount(b.DayCount)
		if err != nil {
			return nil, err
		}
		bdc, err := calendar.ParseConvention(b.PaymentConvention)
		if err != nil {
			return nil, err
		}
		coupons, err = loan.AmortizingTerms{
			Dates:             dates,
			Notionals:         []decimal.Decimal{face},
			Rates:             []float64{b.Coupon / 100},
			DayCount:          dc,
			Calendar:          cal,
			PaymentConvention: bdc,
		}.Coupons()
		if err != nil {
			return nil, err
		}
	}
	return loan.NewSingleRedemption(settlementDays, cal, face, decimal.NewFromFloat(redemption), maturity, coupons, opts...)
}
