package utils

import (
	"fmt"
	"time"
)

// DateOnly truncates a timestamp to midnight UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthStart returns the first day of t's calendar month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths moves a month-start date by n calendar months.
func AddMonths(monthStart time.Time, n int) time.Time {
	return MonthStart(monthStart.AddDate(0, n, 0))
}

// DaysInMonth returns the number of days in t's calendar month.
func DaysInMonth(t time.Time) int {
	return MonthStart(t).AddDate(0, 1, -1).Day()
}

// ClampDay returns the given day bounded to t's month length, so due day
// 31 lands on the 30th (or 28th/29th) in shorter months.
func ClampDay(t time.Time, day int) time.Time {
	if max := DaysInMonth(t); day > max {
		day = max
	}
	if day < 1 {
		day = 1
	}
	return time.Date(t.Year(), t.Month(), day, 0, 0, 0, 0, time.UTC)
}

// YYYYMM renders the sequence/identifier prefix for a reference month.
func YYYYMM(t time.Time) string {
	return fmt.Sprintf("%04d%02d", t.Year(), int(t.Month()))
}

// DaysBetween returns b minus a in whole days, both truncated to dates.
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)).Hours() / 24)
}
