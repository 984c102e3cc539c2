// Package render prints loan schedules as plain text tables.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/meenmo/loanlib/loan"
	"github.com/meenmo/loanlib/utils"
)

func dateOr(t time.Time, fallback string) string {
	if t.IsZero() {
		return fallback
	}
	return utils.FormatDate(t)
}

// Schedule writes the notional schedule and the full cash-flow ledger of l.
func Schedule(w io.Writer, name string, l *loan.Loan) error {
	var b strings.Builder
	line := func(format string, args ...any) {
		b.WriteString(strings.TrimRight(fmt.Sprintf(format, args...), " "))
		b.WriteByte('\n')
	}

	line("loan: %s", name)
	line("settlement: %s", dateOr(l.SettlementDate(time.Time{}), "-"))
	line("maturity: %s", dateOr(l.MaturityDate(), "-"))
	line("")

	line("notional schedule")
	line("  %-10s  %14s", "from", "notional")
	s := l.NotionalSchedule()
	for i, d := range s.Dates {
		line("  %-10s  %14s", dateOr(d, "start"), s.Notionals[i].StringFixed(2))
	}
	line("")

	line("cash flows")
	line("  %-10s  %-10s  %14s  %14s", "date", "kind", "amount", "nominal")
	for _, r := range l.Cashflows() {
		nominal := ""
		if r.IsCoupon() {
			nominal = r.Coupon.Nominal.StringFixed(2)
		}
		line("  %-10s  %-10s  %14s  %14s", utils.FormatDate(r.Date), r.Kind, r.Amount.StringFixed(2), nominal)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
