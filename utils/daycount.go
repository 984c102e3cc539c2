package utils

import (
	"fmt"
	"strings"
	"time"
)

// DayCount names a day count convention.
type DayCount string

const (
	Act360     DayCount = "ACT/360"
	Act365F    DayCount = "ACT/365F"
	Thirty360  DayCount = "30/360"  // US bond basis
	Thirty360E DayCount = "30E/360" // Eurobond basis
	ActActISDA DayCount = "ACT/ACT"
)

// ParseDayCount accepts the common spellings of the supported conventions.
func ParseDayCount(s string) (DayCount, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ACT/360", "A360", "ACTUAL/360":
		return Act360, nil
	case "ACT/365F", "ACT/365", "A365F", "ACTUAL/365 (FIXED)":
		return Act365F, nil
	case "30/360", "30U/360", "BOND":
		return Thirty360, nil
	case "30E/360", "EUROBOND":
		return Thirty360E, nil
	case "ACT/ACT", "ACT/ACT ISDA", "ACTUAL/ACTUAL":
		return ActActISDA, nil
	default:
		return "", fmt.Errorf("ParseDayCount: unsupported day count %q", s)
	}
}

// Days returns the number of days between start and end under the convention.
func (dc DayCount) Days(start, end time.Time) int {
	switch dc {
	case Thirty360:
		d1, d2 := start.Day(), end.Day()
		if d1 == 31 {
			d1 = 30
		}
		if d2 == 31 && d1 >= 30 {
			d2 = 30
		}
		return thirty360Days(start, end, d1, d2)
	case Thirty360E:
		d1, d2 := start.Day(), end.Day()
		if d1 > 30 {
			d1 = 30
		}
		if d2 > 30 {
			d2 = 30
		}
		return thirty360Days(start, end, d1, d2)
	default:
		return DaysBetween(start, end)
	}
}

// YearFraction computes the accrual fraction between two dates.
// Unknown conventions fall back to ACT/365F.
func (dc DayCount) YearFraction(start, end time.Time) float64 {
	switch dc {
	case Act360:
		return float64(DaysBetween(start, end)) / 360.0
	case Thirty360, Thirty360E:
		return float64(dc.Days(start, end)) / 360.0
	case ActActISDA:
		return actActISDA(start, end)
	default:
		return float64(DaysBetween(start, end)) / 365.0
	}
}

func thirty360Days(start, end time.Time, d1, d2 int) int {
	y1, m1 := start.Year(), int(start.Month())
	y2, m2 := end.Year(), int(end.Month())
	return 360*(y2-y1) + 30*(m2-m1) + (d2 - d1)
}

func actActISDA(start, end time.Time) float64 {
	if start.Equal(end) {
		return 0
	}
	if end.Before(start) {
		return -actActISDA(end, start)
	}
	y1, y2 := start.Year(), end.Year()
	if y1 == y2 {
		return float64(DaysBetween(start, end)) / daysInYear(y1)
	}
	startOfNext := time.Date(y1+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	startOfLast := time.Date(y2, time.January, 1, 0, 0, 0, 0, time.UTC)
	yf := float64(DaysBetween(start, startOfNext)) / daysInYear(y1)
	yf += float64(y2 - y1 - 1)
	yf += float64(DaysBetween(startOfLast, end)) / daysInYear(y2)
	return yf
}

func daysInYear(y int) float64 {
	if y%4 == 0 && (y%100 != 0 || y%400 == 0) {
		return 366
	}
	return 365
}
