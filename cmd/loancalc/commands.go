package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/meenmo/loanlib/analytics"
	"github.com/meenmo/loanlib/cashflow"
	"github.com/meenmo/loanlib/cmd/loancalc/internal/loanfile"
	"github.com/meenmo/loanlib/cmd/loancalc/internal/render"
	"github.com/meenmo/loanlib/curve"
	"github.com/meenmo/loanlib/interest"
	"github.com/meenmo/loanlib/loan"
	"github.com/meenmo/loanlib/utils"
	"github.com/meenmo/loanlib/valuation"
)

// Result is the JSON output for one loan. Yield and rates are in percent,
// z-spread in basis points, prices and risk per 100 of notional.
type Result struct {
	Name             string   `json:"name"`
	SettlementDate   string   `json:"settlement_date,omitempty"`
	MaturityDate     string   `json:"maturity_date,omitempty"`
	Notional         float64  `json:"notional"`
	SettlementValue  *float64 `json:"settlement_value,omitempty"`
	CleanPrice       *float64 `json:"clean_price,omitempty"`
	DirtyPrice       *float64 `json:"dirty_price,omitempty"`
	AccruedAmount    *float64 `json:"accrued_amount,omitempty"`
	Yield            *float64 `json:"yield,omitempty"`
	ModifiedDuration *float64 `json:"modified_duration,omitempty"`
	Convexity        *float64 `json:"convexity,omitempty"`
	BasisPointValue  *float64 `json:"bpv,omitempty"`
	ZSpreadBP        *float64 `json:"z_spread_bp,omitempty"`
	Error            string   `json:"error,omitempty"`
}

// input is a decoded loan file with everything shared by its loans resolved.
type input struct {
	file     *loanfile.File
	evalDate time.Time
	curve    curve.DiscountCurve
	conv     interest.Convention
}

func (a *app) load(args []string) (*input, error) {
	var (
		f   *loanfile.File
		err error
	)
	if len(args) == 0 || args[0] == "-" {
		f, err = loanfile.Decode(a.stdin)
	} else {
		f, err = loanfile.ReadFile(args[0])
	}
	if err != nil {
		return nil, err
	}

	in := &input{file: f}
	if in.evalDate, err = f.EvaluationDate(); err != nil {
		return nil, err
	}
	if in.curve, err = f.DiscountCurve(in.evalDate); err != nil {
		return nil, err
	}
	if in.conv, err = f.YieldConvention(); err != nil {
		return nil, fmt.Errorf("yield convention: %w", err)
	}
	return in, nil
}

func (a *app) build(in *input, l loanfile.Loan) (*loan.Loan, error) {
	ln, err := l.Build(a.cfg.SettlementDays, valuation.NewClock(in.evalDate), a.log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.Name, err)
	}
	return ln, nil
}

func (a *app) scheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule [file]",
		Short: "Print the notional schedule and cash flows of each loan",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := a.load(args)
			if err != nil {
				return err
			}
			var errs error
			for i, l := range in.file.Loans {
				ln, err := a.build(in, l)
				if err != nil {
					errs = multierr.Append(errs, err)
					continue
				}
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				if err := render.Schedule(cmd.OutOrStdout(), l.Name, ln); err != nil {
					return err
				}
			}
			return errs
		},
	}
}

func (a *app) priceCmd() *cobra.Command {
	var (
		yieldPct float64
		output   string
	)
	cmd := &cobra.Command{
		Use:   "price [file]",
		Short: "Price each loan from a yield, the file's curve, or its clean price",
		Long: `Price each loan and report clean and dirty prices, accrued interest, yield,
modified duration, convexity and BPV.

The price source is, in order: --yield, the file's curve, the loan's clean_price.
With both a curve and a clean_price the z-spread is solved as well.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := a.load(args)
			if err != nil {
				return err
			}
			var fromYield *float64
			if cmd.Flags().Changed("yield") {
				fromYield = &yieldPct
			}
			results, err := a.batch(in, func(l loanfile.Loan) (Result, error) {
				return a.price(in, l, fromYield, false)
			})
			return a.emit(results, output, err)
		},
	}
	cmd.Flags().Float64Var(&yieldPct, "yield", 0, "price every loan at this yield (percent)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write results to this file instead of stdout")
	return cmd
}

func (a *app) yieldCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "yield [file]",
		Short: "Solve each loan's yield (and z-spread, with a curve) from its clean price",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := a.load(args)
			if err != nil {
				return err
			}
			results, err := a.batch(in, func(l loanfile.Loan) (Result, error) {
				if l.CleanPrice == nil {
					return Result{}, errors.New("clean_price is required")
				}
				return a.price(in, l, nil, true)
			})
			return a.emit(results, output, err)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write results to this file instead of stdout")
	return cmd
}

// batch runs fn over every loan with bounded concurrency. Failures are kept
// in the results; the returned error reports how many loans failed.
func (a *app) batch(in *input, fn func(loanfile.Loan) (Result, error)) ([]Result, error) {
	results := make([]Result, len(in.file.Loans))
	var failed error
	a.log.Info().
		Int("loans", len(results)).
		Str("evaluation_date", utils.FormatDate(in.evalDate)).
		Msg("pricing loans")

	var g errgroup.Group
	g.SetLimit(max(1, a.cfg.MaxConcurrency))
	for i, l := range in.file.Loans {
		i, l := i, l
		g.Go(func() error {
			res, err := fn(l)
			res.Name = l.Name
			if err != nil {
				res.Error = err.Error()
				a.log.Warn().Err(err).Str("loan", l.Name).Msg("loan failed")
			}
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		n := 0
		for _, r := range results {
			if r.Error != "" {
				n++
			}
		}
		failed = fmt.Errorf("%d of %d loans failed", n, len(results))
	}
	return results, failed
}

func (a *app) emit(results []Result, output string, failed error) error {
	b, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if output == "" {
		if _, err := a.stdout.Write(b); err != nil {
			return err
		}
	} else if err := atomic.WriteFile(output, bytes.NewReader(b)); err != nil {
		return multierr.Append(failed, fmt.Errorf("failed to write %s: %w", output, err))
	}
	return failed
}

func ptr(v float64) *float64 { return &v }

// price values one loan. quoted prefers the loan's clean_price over the curve.
func (a *app) price(in *input, l loanfile.Loan, yieldPct *float64, quoted bool) (Result, error) {
	ln, err := a.build(in, l)
	if err != nil {
		return Result{}, err
	}
	settlement := ln.SettlementDate(time.Time{})
	res := Result{
		SettlementDate: utils.FormatDate(settlement),
		MaturityDate:   utils.FormatDate(ln.MaturityDate()),
		Notional:       ln.NotionalAt(settlement).InexactFloat64(),
	}
	if !ln.IsTradable(settlement) {
		return res, fmt.Errorf("not tradable at settlement %s", res.SettlementDate)
	}

	opts := analytics.YieldOptions()
	opts.Logger = &a.log

	var clean, y float64
	switch {
	case yieldPct != nil:
		y = *yieldPct / 100
		if clean, err = ln.CleanPriceFromYield(in.conv.WithRate(y), time.Time{}); err != nil {
			return res, err
		}
	case in.curve != nil && !(quoted && l.CleanPrice != nil):
		ln.SetEngine(loan.NewDiscountingEngine(in.curve))
		if clean, err = ln.CleanPrice(); err != nil {
			return res, err
		}
		if y, err = ln.Yield(in.conv, opts); err != nil {
			return res, err
		}
	case l.CleanPrice != nil:
		clean = *l.CleanPrice
		if y, err = ln.YieldFromCleanPrice(clean, in.conv, time.Time{}, opts); err != nil {
			return res, err
		}
	default:
		return res, errors.New("no yield, curve or clean_price to price from")
	}

	accrued := ln.AccruedAmount(time.Time{})
	res.CleanPrice = ptr(clean)
	res.AccruedAmount = ptr(accrued)
	res.DirtyPrice = ptr(clean + accrued)
	res.SettlementValue = ptr(ln.SettlementValueFromCleanPrice(clean))
	res.Yield = ptr(y * 100)

	rate := in.conv.WithRate(y)
	duration, err := analytics.Duration(ln, rate, cashflow.DurationModified, time.Time{})
	if err != nil {
		return res, err
	}
	convexity, err := analytics.Convexity(ln, rate, time.Time{})
	if err != nil {
		return res, err
	}
	bpv, err := analytics.BasisPointValue(ln, rate, time.Time{})
	if err != nil {
		return res, err
	}
	res.ModifiedDuration = ptr(duration)
	res.Convexity = ptr(convexity)
	res.BasisPointValue = ptr(bpv)

	if in.curve != nil && l.CleanPrice != nil {
		zopts := analytics.ZSpreadOptions()
		zopts.Logger = &a.log
		z, err := analytics.ZSpread(ln, *l.CleanPrice, in.curve, in.conv, time.Time{}, zopts)
		if err != nil {
			return res, err
		}
		res.ZSpreadBP = ptr(z * 1e4)
	}
	return res, nil
}
