package taskparser

import (
	"strconv"
	"strings"

	"github.com/sandeepkv93/tomatod/internal/dates"
	"github.com/sandeepkv93/tomatod/internal/scheduler"
)

// ParseRepeatPattern turns a '*' expression into a recurrence pattern
// anchored at start where the expression leaves fields implicit:
//
//	*w, *m, *y          every week, month or year from start
//	*Mon ... *Sun       weekly on the named day
//	*m12, *12           monthly on day 12
//	*y4-19, *4-19       yearly on April 19
//
// It reports false for out-of-range numbers or unknown shapes.
func ParseRepeatPattern(spec string, start dates.Date) (scheduler.Pattern, bool) {
	spec = strings.TrimSpace(spec)
	if !strings.HasPrefix(spec, "*") {
		return scheduler.NoPattern, false
	}
	body := spec[1:]

	switch body {
	case "w":
		return scheduler.Weekly(start.Weekday()), true
	case "m":
		return scheduler.Monthly(start.Day), true
	case "y":
		return scheduler.Yearly(int(start.Month), start.Day), true
	}

	if len(body) >= 3 {
		if wd, ok := dates.WeekdayIndex(body[:3]); ok {
			return scheduler.Weekly(wd), true
		}
	}

	if day, ok := parseNumber(strings.TrimPrefix(body, "m")); ok {
		if day < 1 || day > 31 {
			return scheduler.NoPattern, false
		}
		return scheduler.Monthly(day), true
	}

	if month, day, ok := parseMonthDay(strings.TrimPrefix(body, "y")); ok {
		if month < 1 || month > 12 || day < 1 || day > 31 {
			return scheduler.NoPattern, false
		}
		return scheduler.Yearly(month, day), true
	}

	return scheduler.NoPattern, false
}

func parseNumber(s string) (int, bool) {
	if !isDigits(s) {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseMonthDay reads "<digits><any one char><digits>".
func parseMonthDay(s string) (int, int, bool) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == 0 || i+1 >= len(s) {
		return 0, 0, false
	}
	month, ok := parseNumber(s[:i])
	if !ok {
		return 0, 0, false
	}
	day, ok := parseNumber(s[i+1:])
	if !ok {
		return 0, 0, false
	}
	return month, day, true
}
