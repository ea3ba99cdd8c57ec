package dates

import (
	"fmt"
	"strings"
	"time"
)

// Date is a local wall-clock calendar day. Scheduling fields persist it as
// an ordinal where 0001-01-01 is day 1.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

var ordinalEpoch = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)

const secondsPerDay = 24 * 60 * 60

// MaxYear is the last year a parsed date may fall in.
const MaxYear = 9999

// FirstDay is the earliest representable day. It compares before any real date.
var FirstDay = FromOrdinal(1)

// New normalizes overflowing fields the way time.Date does (Feb 30 becomes Mar 2).
// Use LatestValidDateBefore to clamp instead.
func New(year int, month time.Month, day int) Date {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func Today() Date {
	return FromTime(time.Now())
}

func FromOrdinal(n int) Date {
	return FromTime(ordinalEpoch.AddDate(0, 0, n-1))
}

func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) Ordinal() int {
	return int((d.Time().Unix()-ordinalEpoch.Unix())/secondsPerDay) + 1
}

// Weekday returns the day of week with Monday = 0 and Sunday = 6.
func (d Date) Weekday() int {
	return (int(d.Time().Weekday()) + 6) % 7
}

func (d Date) AddDays(n int) Date {
	return FromTime(d.Time().AddDate(0, 0, n))
}

func (d Date) Compare(other Date) int {
	return d.Time().Compare(other.Time())
}

func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }
func (d Date) After(other Date) bool  { return d.Compare(other) > 0 }
func (d Date) Equal(other Date) bool  { return d.Compare(other) == 0 }

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// DaysIn reports the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// LatestValidDateBefore clamps month into [1,12] and walks day back to the
// last valid day of that month, so (2021, 2, 30) is 2021-02-28.
func LatestValidDateBefore(year int, month int, day int) Date {
	if month < 1 {
		month = 1
	}
	if month > 12 {
		month = 12
	}
	if day < 1 {
		day = 1
	}
	if last := DaysIn(year, time.Month(month)); day > last {
		day = last
	}
	return Date{Year: year, Month: time.Month(month), Day: day}
}

var weekdayIndex = map[string]int{
	"mon": 0,
	"tue": 1,
	"wed": 2,
	"thu": 3,
	"fri": 4,
	"sat": 5,
	"sun": 6,
}

// WeekdayIndex maps a weekday name to 0-6 (Monday = 0) using its first three
// letters, case-insensitively.
func WeekdayIndex(name string) (int, bool) {
	if len(name) < 3 {
		return 0, false
	}
	idx, ok := weekdayIndex[strings.ToLower(name[:3])]
	return idx, ok
}
