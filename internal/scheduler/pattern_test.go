package scheduler

import (
	"testing"
	"time"

	"github.com/sandeepkv93/tomatod/internal/dates"
)

func day(y int, m time.Month, d int) dates.Date {
	return dates.New(y, m, d)
}

func TestPatternClass(t *testing.T) {
	cases := []struct {
		p    Pattern
		want Class
	}{
		{Weekly(2), ClassWeekly},
		{Monthly(15), ClassMonthly},
		{Yearly(5, 15), ClassYearly},
		{Once(2021, 5, 15), ClassOnce},
		{NoPattern, ClassNone},
		{Pattern{2021, 5, 15, 3}, ClassWeekly},
		{Pattern{2021, -1, -1, -1}, ClassOnce},
	}
	for _, tc := range cases {
		if got := tc.p.Class(); got != tc.want {
			t.Fatalf("class of %q = %q, want %q", tc.p, got, tc.want)
		}
	}
}

func TestNextOccurrence(t *testing.T) {
	wednesday := Weekly(2)
	cases := []struct {
		name  string
		p     Pattern
		start dates.Date
		want  dates.Date
	}{
		{"weekly on the day", wednesday, day(2021, 5, 12), day(2021, 5, 12)},
		{"weekly before the day", wednesday, day(2021, 5, 10), day(2021, 5, 12)},
		{"weekly after the day", wednesday, day(2021, 5, 14), day(2021, 5, 19)},
		{"monthly on the day", Monthly(15), day(2021, 5, 15), day(2021, 5, 15)},
		{"monthly before the day", Monthly(15), day(2021, 5, 10), day(2021, 5, 15)},
		{"monthly after the day", Monthly(15), day(2021, 5, 20), day(2021, 6, 15)},
		{"monthly clamps short month", Monthly(30), day(2021, 2, 10), day(2021, 2, 28)},
		{"monthly crosses year", Monthly(15), day(2020, 12, 20), day(2021, 1, 15)},
		{"yearly on the day", Yearly(5, 15), day(2020, 5, 15), day(2020, 5, 15)},
		{"yearly after the day", Yearly(5, 15), day(2020, 5, 20), day(2021, 5, 15)},
		{"yearly before the day", Yearly(5, 15), day(2020, 5, 10), day(2020, 5, 15)},
		{"yearly leap day in common year", Yearly(2, 29), day(2021, 1, 3), day(2021, 2, 28)},
		{"yearly leap day in leap year", Yearly(2, 29), day(2024, 1, 3), day(2024, 2, 29)},
		{"once before the day", Once(2021, 5, 15), day(2021, 5, 14), day(2021, 5, 15)},
		{"once on the day", Once(2021, 5, 15), day(2021, 5, 15), day(2021, 5, 15)},
	}
	for _, tc := range cases {
		got, ok := tc.p.NextOccurrenceAfter(tc.start)
		if !ok {
			t.Fatalf("%s: no occurrence", tc.name)
		}
		if got != tc.want {
			t.Fatalf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestNextOccurrenceMissed(t *testing.T) {
	if got, ok := Once(2021, 5, 15).NextOccurrenceAfter(day(2021, 5, 16)); ok {
		t.Fatalf("expected missed once pattern, got %s", got)
	}
	if got, ok := NoPattern.NextOccurrenceAfter(day(2021, 5, 16)); ok {
		t.Fatalf("expected no occurrence for empty pattern, got %s", got)
	}
}

func TestWeeklyWithinSixDays(t *testing.T) {
	start := day(2021, 1, 1)
	for offset := 0; offset < 60; offset++ {
		d := start.AddDays(offset)
		for wd := 0; wd < 7; wd++ {
			got, ok := Weekly(wd).NextOccurrenceAfter(d)
			if !ok {
				t.Fatalf("weekly %d from %s: no occurrence", wd, d)
			}
			diff := got.Ordinal() - d.Ordinal()
			if diff < 0 || diff > 6 || got.Weekday() != wd {
				t.Fatalf("weekly %d from %s: got %s", wd, d, got)
			}
			if (diff == 0) != (d.Weekday() == wd) {
				t.Fatalf("weekly %d from %s: start matched incorrectly", wd, d)
			}
		}
	}
}

func TestShouldSchedule(t *testing.T) {
	if !Monthly(15).ShouldSchedule(day(2021, 5, 15)) {
		t.Fatal("expected monthly pattern to fire on the 15th")
	}
	if Monthly(15).ShouldSchedule(day(2021, 5, 14)) {
		t.Fatal("expected monthly pattern not to fire on the 14th")
	}
	if NoPattern.ShouldSchedule(day(2021, 5, 14)) {
		t.Fatal("empty pattern must never fire")
	}
}

func TestPatternStringRoundTrip(t *testing.T) {
	patterns := []Pattern{Weekly(2), Monthly(31), Yearly(2, 29), Once(2021, 5, 15), NoPattern}
	if got := Weekly(2).String(); got != "-1 -1 -1 2" {
		t.Fatalf("unexpected serialization: %q", got)
	}
	start := day(2021, 1, 1)
	for _, p := range patterns {
		back := ParsePattern(p.String())
		if back.Class() != p.Class() {
			t.Fatalf("class changed after round trip: %q -> %q", p, back)
		}
		for i := 0; i < 500; i += 7 {
			probe := start.AddDays(i)
			a, okA := p.NextOccurrenceAfter(probe)
			b, okB := back.NextOccurrenceAfter(probe)
			if a != b || okA != okB {
				t.Fatalf("round trip of %q diverges at %s", p, probe)
			}
		}
	}
}

func TestParsePatternMalformed(t *testing.T) {
	for _, in := range []string{"", "1 2 3", "1 2 3 4 5", "a b c d", "-1 -1 x 2"} {
		if got := ParsePattern(in); got != NoPattern {
			t.Fatalf("ParsePattern(%q) = %q, want empty pattern", in, got)
		}
	}
}

func TestPreview(t *testing.T) {
	got := Monthly(31).Preview(day(2021, 1, 31), 3)
	want := []dates.Date{day(2021, 1, 31), day(2021, 2, 28), day(2021, 3, 31)}
	if len(got) != len(want) {
		t.Fatalf("expected %d preview items, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("preview[%d] got %s want %s", i, got[i], want[i])
		}
	}
	if items := Once(2021, 5, 15).Preview(day(2021, 5, 1), 4); len(items) != 1 {
		t.Fatalf("once pattern should preview a single day, got %v", items)
	}
}
