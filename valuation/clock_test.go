package valuation_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/meenmo/loanlib/valuation"
)

func TestClock_SetBumpsVersion(t *testing.T) {
	t.Parallel()

	c := valuation.NewClock(time.Date(2025, 3, 1, 15, 30, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), c.Date())
	assert.Equal(t, uint64(0), c.Version())

	c.Set(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	assert.Equal(t, uint64(0), c.Version(), "same day is not a change")

	c.Set(time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC))
	date, version := c.Snapshot()
	assert.Equal(t, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), date)
	assert.Equal(t, uint64(1), version)
}

func TestClock_ConcurrentSet(t *testing.T) {
	t.Parallel()

	c := valuation.NewClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(day int) {
			defer wg.Done()
			c.Set(time.Date(2025, 2, day%28+1, 0, 0, 0, 0, time.UTC))
			_ = c.Date()
		}(i)
	}
	wg.Wait()
	assert.GreaterOrEqual(t, c.Version(), uint64(1))
}

func TestDefault(t *testing.T) {
	t.Parallel()

	assert.Same(t, valuation.Default(), valuation.Default())
	assert.False(t, valuation.Default().Date().IsZero())
}
