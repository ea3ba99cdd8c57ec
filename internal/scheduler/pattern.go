package scheduler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandeepkv93/tomatod/internal/dates"
)

// Unspecified marks a pattern axis that takes no part in matching.
const Unspecified = -1

type Class string

const (
	ClassNone    Class = ""
	ClassWeekly  Class = "w"
	ClassOnce    Class = "o"
	ClassYearly  Class = "y"
	ClassMonthly Class = "m"
)

// Pattern selects recurring days by year, month, day and weekday
// (Monday = 0). Unused axes hold Unspecified.
//
//	         y     m   d   w
//	weekly:  -1    -1  -1  2
//	once:    2021  4   15  -1
//	yearly:  -1    4   15  -1
//	monthly: -1    -1  15  -1
type Pattern struct {
	Year    int
	Month   int
	Day     int
	Weekday int
}

var NoPattern = Pattern{Unspecified, Unspecified, Unspecified, Unspecified}

func Weekly(weekday int) Pattern {
	return Pattern{Unspecified, Unspecified, Unspecified, weekday}
}

func Monthly(day int) Pattern {
	return Pattern{Unspecified, Unspecified, day, Unspecified}
}

func Yearly(month, day int) Pattern {
	return Pattern{Unspecified, month, day, Unspecified}
}

func Once(year, month, day int) Pattern {
	return Pattern{year, month, day, Unspecified}
}

// Class picks exactly one axis in priority order weekday, year, month, day.
func (p Pattern) Class() Class {
	switch {
	case p.Weekday != Unspecified:
		return ClassWeekly
	case p.Year != Unspecified:
		return ClassOnce
	case p.Month != Unspecified:
		return ClassYearly
	case p.Day != Unspecified:
		return ClassMonthly
	default:
		return ClassNone
	}
}

// String is the persisted form: four space separated integers.
func (p Pattern) String() string {
	return fmt.Sprintf("%d %d %d %d", p.Year, p.Month, p.Day, p.Weekday)
}

// ParsePattern reads the persisted form. Anything that is not exactly four
// integers yields NoPattern.
func ParsePattern(s string) Pattern {
	fields := strings.Fields(s)
	if len(fields) != 4 {
		return NoPattern
	}
	values := make([]int, 4)
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return NoPattern
		}
		values[i] = v
	}
	return Pattern{Year: values[0], Month: values[1], Day: values[2], Weekday: values[3]}
}

// NextOccurrenceAfter returns the first matching day on or after start.
// A once pattern whose day has passed, and NoPattern, report false.
func (p Pattern) NextOccurrenceAfter(start dates.Date) (dates.Date, bool) {
	year, month, day := start.Year, int(start.Month), start.Day

	switch p.Class() {
	case ClassWeekly:
		delta := ((p.Weekday-start.Weekday())%7 + 7) % 7
		return start.AddDays(delta), true
	case ClassOnce:
		target := dates.LatestValidDateBefore(p.Year, p.Month, p.Day)
		if target.Before(start) {
			return dates.Date{}, false
		}
		return target, true
	case ClassYearly:
		if month > p.Month || (month == p.Month && day > p.Day) {
			year++
		}
		return dates.LatestValidDateBefore(year, p.Month, p.Day), true
	case ClassMonthly:
		if day > p.Day {
			month++
			if month == 13 {
				year++
				month = 1
			}
		}
		return dates.LatestValidDateBefore(year, month, p.Day), true
	default:
		return dates.Date{}, false
	}
}

// ShouldSchedule reports whether day itself matches the pattern.
func (p Pattern) ShouldSchedule(day dates.Date) bool {
	next, ok := p.NextOccurrenceAfter(day)
	return ok && next.Equal(day)
}

// Preview lists up to count upcoming occurrences starting at from.
func (p Pattern) Preview(from dates.Date, count int) []dates.Date {
	out := make([]dates.Date, 0, max(count, 0))
	cursor := from
	for i := 0; i < count; i++ {
		next, ok := p.NextOccurrenceAfter(cursor)
		if !ok {
			break
		}
		out = append(out, next)
		cursor = next.AddDays(1)
	}
	return out
}
