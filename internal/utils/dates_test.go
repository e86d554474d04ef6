package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthStartAndAddMonths(t *testing.T) {
	assert.Equal(t, date(2026, 3, 1), MonthStart(date(2026, 3, 17)))
	assert.Equal(t, date(2026, 4, 1), AddMonths(date(2026, 3, 1), 1))
	assert.Equal(t, date(2027, 1, 1), AddMonths(date(2026, 12, 1), 1))
	assert.Equal(t, date(2025, 12, 1), AddMonths(date(2026, 1, 1), -1))
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 31, DaysInMonth(date(2026, 3, 15)))
	assert.Equal(t, 30, DaysInMonth(date(2026, 4, 15)))
	assert.Equal(t, 28, DaysInMonth(date(2026, 2, 15)))
	assert.Equal(t, 29, DaysInMonth(date(2028, 2, 15)), "leap year")
}

func TestClampDay(t *testing.T) {
	t.Run("FitsInMonth", func(t *testing.T) {
		assert.Equal(t, date(2026, 3, 10), ClampDay(date(2026, 3, 1), 10))
	})
	t.Run("ClampedToMonthEnd", func(t *testing.T) {
		assert.Equal(t, date(2026, 2, 28), ClampDay(date(2026, 2, 1), 31))
		assert.Equal(t, date(2026, 4, 30), ClampDay(date(2026, 4, 1), 31))
	})
	t.Run("FloorAtOne", func(t *testing.T) {
		assert.Equal(t, date(2026, 3, 1), ClampDay(date(2026, 3, 1), 0))
	})
}

func TestYYYYMM(t *testing.T) {
	assert.Equal(t, "202603", YYYYMM(date(2026, 3, 1)))
	assert.Equal(t, "202612", YYYYMM(date(2026, 12, 31)))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 9, DaysBetween(date(2026, 3, 1), date(2026, 3, 10)))
	assert.Equal(t, 0, DaysBetween(date(2026, 3, 10), date(2026, 3, 10)))
	assert.Equal(t, -1, DaysBetween(date(2026, 3, 10), date(2026, 3, 9)))

	// Clock times on either side do not change the whole-day count.
	a := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	b := time.Date(2026, 3, 2, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 1, DaysBetween(a, b))
}
