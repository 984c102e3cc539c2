package calendar

import (
	"fmt"
	"strings"
	"time"
)

// CalendarID identifies a holiday calendar.
type CalendarID string

const (
	NullCalendar CalendarID = "NULL"     // every day is a business day
	WeekendsOnly CalendarID = "WEEKENDS" // Saturdays and Sundays only
	TARGET       CalendarID = "TARGET"
	KRW          CalendarID = "KRW"
)

// BusinessDayConvention selects how a non-business day is rolled.
type BusinessDayConvention string

const (
	Unadjusted        BusinessDayConvention = "UNADJUSTED"
	Following         BusinessDayConvention = "FOLLOWING"
	ModifiedFollowing BusinessDayConvention = "MODIFIED_FOLLOWING"
	Preceding         BusinessDayConvention = "PRECEDING"
)

var krwHolidays = map[string]struct{}{}

func init() {
	krwHolidays = make(map[string]struct{}, len(koreaHolidayList))
	for _, h := range koreaHolidayList {
		krwHolidays[h] = struct{}{}
	}
}

// Parse maps a calendar name to its CalendarID.
func Parse(name string) (CalendarID, error) {
	switch CalendarID(strings.ToUpper(strings.TrimSpace(name))) {
	case NullCalendar, "":
		return NullCalendar, nil
	case WeekendsOnly:
		return WeekendsOnly, nil
	case TARGET, "EUR":
		return TARGET, nil
	case KRW, "KRX":
		return KRW, nil
	default:
		return "", fmt.Errorf("calendar.Parse: unknown calendar %q", name)
	}
}

// ParseConvention maps a convention name to its BusinessDayConvention.
func ParseConvention(name string) (BusinessDayConvention, error) {
	switch BusinessDayConvention(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))) {
	case Unadjusted, "":
		return Unadjusted, nil
	case Following, "F":
		return Following, nil
	case ModifiedFollowing, "MF":
		return ModifiedFollowing, nil
	case Preceding, "P":
		return Preceding, nil
	default:
		return "", fmt.Errorf("calendar.ParseConvention: unknown convention %q", name)
	}
}

func isHoliday(cal CalendarID, t time.Time) bool {
	switch cal {
	case TARGET:
		return isTargetHoliday(t)
	case KRW:
		_, ok := krwHolidays[t.Format("2006-01-02")]
		return ok
	default:
		return false
	}
}

// IsBusinessDay checks weekends and holiday sets.
func IsBusinessDay(cal CalendarID, t time.Time) bool {
	if cal == NullCalendar {
		return true
	}
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	return !isHoliday(cal, t)
}

// Adjust applies Modified Following.
func Adjust(cal CalendarID, t time.Time) time.Time {
	origMonth := t.Month()
	t = AdjustFollowing(cal, t)
	if t.Month() != origMonth {
		t = AdjustPreceding(cal, t.AddDate(0, 0, -1))
	}
	return t
}

// AdjustFollowing applies a simple Following convention (no month preservation).
func AdjustFollowing(cal CalendarID, t time.Time) time.Time {
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// AdjustPreceding rolls back to the previous business day.
func AdjustPreceding(cal CalendarID, t time.Time) time.Time {
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, -1)
	}
	return t
}

// AdjustWith rolls t according to conv.
func AdjustWith(cal CalendarID, t time.Time, conv BusinessDayConvention) time.Time {
	switch conv {
	case Following:
		return AdjustFollowing(cal, t)
	case ModifiedFollowing:
		return Adjust(cal, t)
	case Preceding:
		return AdjustPreceding(cal, t)
	default:
		return t
	}
}

// AddBusinessDays advances n business days (n can be negative).
func AddBusinessDays(cal CalendarID, t time.Time, n int) time.Time {
	step := 1
	if n < 0 {
		step = -1
	}
	for n != 0 {
		t = t.AddDate(0, 0, step)
		if IsBusinessDay(cal, t) {
			n -= step
		}
	}
	return t
}

// Advance moves t by n business days. A zero move rolls t forward to a business day.
func (c CalendarID) Advance(t time.Time, n int) time.Time {
	if n == 0 {
		return AdjustFollowing(c, t)
	}
	return AddBusinessDays(c, t, n)
}

// IsBusinessDay reports whether t is a business day in c.
func (c CalendarID) IsBusinessDay(t time.Time) bool {
	return IsBusinessDay(c, t)
}

func isTargetHoliday(t time.Time) bool {
	y, m, d := t.Date()
	switch {
	case m == time.January && d == 1:
		return true
	case m == time.May && d == 1 && y >= 2000:
		return true
	case m == time.December && (d == 25 || (d == 26 && y >= 2000)):
		return true
	case m == time.December && d == 31 && (y == 1998 || y == 1999 || y == 2001):
		return true
	}
	if y >= 2000 {
		easter := easterSunday(y)
		if t.Equal(easter.AddDate(0, 0, -2)) || t.Equal(easter.AddDate(0, 0, 1)) {
			return true
		}
	}
	return false
}

// easterSunday uses the anonymous Gregorian algorithm.
func easterSunday(y int) time.Time {
	a := y % 19
	b := y / 100
	c := y % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(y, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
