package taskparser

import (
	"strconv"
	"strings"

	"github.com/sandeepkv93/tomatod/internal/dates"
)

// ParseDateSpec resolves a date expression relative to ref. The leading '@'
// is optional. Recognized forms, tried in order:
//
//	+N, +Nd, +Nw, +Nm, +Ny   offset from ref
//	D, M-D, M-D-Y            next matching day; any single non-digit separates fields
//	Mon ... Sun              next such weekday, ref itself included
//
// It reports false when the text matches none of them, resolves to a day
// before ref, or lands after dates.MaxYear.
func ParseDateSpec(spec string, ref dates.Date) (dates.Date, bool) {
	d, ok := parseDateSpec(spec, ref)
	if !ok || d.Year > dates.MaxYear {
		return dates.Date{}, false
	}
	return d, true
}

func parseDateSpec(spec string, ref dates.Date) (dates.Date, bool) {
	spec = strings.TrimPrefix(strings.TrimSpace(spec), "@")
	if spec == "" {
		return dates.Date{}, false
	}
	if strings.HasPrefix(spec, "+") {
		return parseOffset(spec, ref)
	}
	if fields, ok := splitNumericDate(spec); ok {
		return resolveAbsolute(fields, ref)
	}
	if isLetters(spec) {
		target, ok := dates.WeekdayIndex(spec)
		if !ok {
			return dates.Date{}, false
		}
		return ref.AddDays(((target-ref.Weekday())%7 + 7) % 7), true
	}
	return dates.Date{}, false
}

// ParseDateSpecOrdinal is ParseDateSpec in the persisted form: the ordinal of
// the resolved day, or the ordinal of dates.FirstDay when unparseable.
func ParseDateSpecOrdinal(spec string, ref dates.Date) int {
	d, ok := ParseDateSpec(spec, ref)
	if !ok {
		return dates.FirstDay.Ordinal()
	}
	return d.Ordinal()
}

func parseOffset(spec string, ref dates.Date) (dates.Date, bool) {
	if !strings.HasPrefix(spec, "+") {
		return dates.Date{}, false
	}
	body := spec[1:]
	unit := byte('d')
	if n := len(body); n > 0 && strings.IndexByte("dwmy", body[n-1]) >= 0 {
		unit = body[n-1]
		body = body[:n-1]
	}
	if !isDigits(body) {
		return dates.Date{}, false
	}
	quantity, err := strconv.Atoi(body)
	// any larger offset is past MaxYear and would overflow the arithmetic
	if err != nil || quantity > dates.MaxYear*366 {
		return dates.Date{}, false
	}

	switch unit {
	case 'w':
		return ref.AddDays(7 * quantity), true
	case 'm':
		if quantity > dates.MaxYear*12 {
			return dates.Date{}, false
		}
		month := int(ref.Month) + quantity
		year := ref.Year + (month-1)/12
		month = (month-1)%12 + 1
		return dates.LatestValidDateBefore(year, month, ref.Day), true
	case 'y':
		if quantity > dates.MaxYear {
			return dates.Date{}, false
		}
		return dates.LatestValidDateBefore(ref.Year+quantity, int(ref.Month), ref.Day), true
	default:
		return ref.AddDays(quantity), true
	}
}

// splitNumericDate accepts one to three digit runs separated by exactly one
// non-digit character each.
func splitNumericDate(spec string) ([]int, bool) {
	var fields []int
	start := 0
	for i := 0; i <= len(spec); i++ {
		if i < len(spec) && isDigit(spec[i]) {
			continue
		}
		if i == start {
			return nil, false
		}
		v, err := strconv.Atoi(spec[start:i])
		if err != nil {
			return nil, false
		}
		fields = append(fields, v)
		start = i + 1
	}
	if len(fields) == 0 || len(fields) > 3 {
		return nil, false
	}
	return fields, true
}

func resolveAbsolute(fields []int, ref dates.Date) (dates.Date, bool) {
	year, month := ref.Year, int(ref.Month)
	var day int

	switch len(fields) {
	case 1:
		day = fields[0]
		if day < ref.Day {
			month++
			if month > 12 {
				year++
				month -= 12
			}
		}
	case 2:
		month, day = fields[0], fields[1]
		if month < 1 || month > 12 {
			return dates.Date{}, false
		}
		if month < int(ref.Month) || (month == int(ref.Month) && day < ref.Day) {
			year++
		}
	default:
		month, day, year = fields[0], fields[1], fields[2]
		if year < 100 {
			year += 2000
		}
	}
	if day < 1 || year > dates.MaxYear {
		return dates.Date{}, false
	}

	resolved := dates.LatestValidDateBefore(year, month, day)
	if resolved.Before(ref) {
		return dates.Date{}, false
	}
	return resolved, true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func isLetters(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i] | 0x20
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return s != ""
}
