package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loansYAML = `
evaluation_date: 2025-07-15
yield:
  day_count: ACT/365F
  compounding: compounded
  frequency: quarterly
loans:
  - name: term-a
    calendar: NULL
    issue_date: 2025-01-10
    amortizing:
      dates: [2025-01-15, 2025-07-15, 2026-01-15, 2026-07-15, 2027-01-15]
      notionals: [1000000, 1000000, 500000]
      rates: [5]
      day_count: 30/360
  - name: bullet-a
    calendar: NULL
    clean_price: 98.5
    bullet:
      face: 250000
      maturity: 2027-01-15
      dates: [2025-01-15, 2026-01-15, 2027-01-15]
      coupon: 4
      day_count: 30/360
`

const maturedYAML = `
evaluation_date: 2027-03-01
loans:
  - name: matured
    bullet:
      face: 100
      maturity: 2027-01-15
  - name: live
    clean_price: 100
    bullet:
      face: 100
      maturity: 2028-01-15
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "loans.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func decodeResults(t *testing.T, out string) []Result {
	t.Helper()
	var results []Result
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	return results
}

func TestSchedule_FromStdin(t *testing.T) {
	code, out, stderr := runCLI(t, loansYAML, "schedule")
	require.Equal(t, 0, code, stderr)

	assert.Contains(t, out, "loan: term-a")
	assert.Contains(t, out, "loan: bullet-a")
	assert.Contains(t, out, "  2026-01-15  amortizing       500000.00")
	assert.Contains(t, out, "  2027-01-15  redemption       250000.00")
}

func TestPrice_FromYield(t *testing.T) {
	code, out, stderr := runCLI(t, "", "price", "--yield", "6", writeFile(t, loansYAML))
	require.Equal(t, 0, code, stderr)

	results := decodeResults(t, out)
	require.Len(t, results, 2)
	for _, r := range results {
		require.Empty(t, r.Error, r.Name)
		require.NotNil(t, r.CleanPrice)
		assert.Equal(t, "2025-07-15", r.SettlementDate)
		assert.InDelta(t, *r.CleanPrice+*r.AccruedAmount, *r.DirtyPrice, 1e-10)
		assert.InDelta(t, 6.0, *r.Yield, 1e-12)
		assert.Greater(t, *r.ModifiedDuration, 0.0)
		assert.Less(t, *r.BasisPointValue, 0.0)
		assert.Nil(t, r.ZSpreadBP)
	}
	assert.InDelta(t, 1_000_000, results[0].Notional, 0)
	assert.InDelta(t, 2.0, *results[1].AccruedAmount, 1e-12)
}

func TestPrice_FromCurveSolvesZSpread(t *testing.T) {
	file := loansYAML + `
curve:
  flat_rate: 4.5
  day_count: ACT/365F
  compounding: compounded
  frequency: quarterly
`
	code, out, stderr := runCLI(t, "", "price", writeFile(t, file))
	require.Equal(t, 0, code, stderr)

	results := decodeResults(t, out)
	require.Len(t, results, 2)
	for _, r := range results {
		require.Empty(t, r.Error, r.Name)
		assert.InDelta(t, 4.5, *r.Yield, 1e-6)
	}
	assert.Nil(t, results[0].ZSpreadBP)
	require.NotNil(t, results[1].ZSpreadBP)

	// The quoted 98.5 is below the curve price of about 99.14.
	assert.Greater(t, *results[1].ZSpreadBP, 0.0)
}

func TestYield_RequiresCleanPrice(t *testing.T) {
	code, out, _ := runCLI(t, "", "yield", writeFile(t, loansYAML))
	assert.Equal(t, 1, code)

	results := decodeResults(t, out)
	require.Len(t, results, 2)
	assert.Equal(t, "clean_price is required", results[0].Error)
	require.Empty(t, results[1].Error)
	assert.InDelta(t, 98.5, *results[1].CleanPrice, 0)
	assert.Greater(t, *results[1].Yield, 4.0)
}

func TestPrice_MaturedLoanFails(t *testing.T) {
	output := filepath.Join(t.TempDir(), "out.json")
	code, out, stderr := runCLI(t, maturedYAML, "price", "-o", output)
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Contains(t, stderr, "1 of 2 loans failed")

	b, err := os.ReadFile(output)
	require.NoError(t, err)
	results := decodeResults(t, string(b))
	require.Len(t, results, 2)
	assert.Contains(t, results[0].Error, "not tradable")
	assert.Empty(t, results[1].Error)
	assert.InDelta(t, 0.0, *results[1].Yield, 1e-8)
}

func TestInvalidFile(t *testing.T) {
	code, _, stderr := runCLI(t, "loans:\n  - name: x\n    unknown: 1\n", "price")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown")

	code, _, stderr = runCLI(t, "loans:\n  - name: a\n  - name: a\n", "schedule")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, `duplicate name "a"`)
	assert.Contains(t, stderr, "exactly one of amortizing, sinking or bullet")
}
