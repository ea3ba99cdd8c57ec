package model

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/sandeepkv93/tomatod/internal/dates"
	"github.com/sandeepkv93/tomatod/internal/scheduler"
)

func ord(y int, m time.Month, d int) int {
	return dates.New(y, m, d).Ordinal()
}

func TestEvaluateOneTime(t *testing.T) {
	st := ScheduledTask{Once: ord(2021, 5, 15), Pattern: scheduler.NoPattern.String(), Title: "Pay rent", Tomato: 1, Type: TaskTypeShort}

	ev := st.Evaluate(ord(2021, 5, 14))
	if ev.Materialize {
		t.Fatal("should not fire before the one-time day")
	}
	if !slices.Equal(ev.Changed, []string{FieldLastGen}) || st.Done {
		t.Fatalf("unexpected bookkeeping: %+v done=%v", ev, st.Done)
	}

	ev = st.Evaluate(ord(2021, 5, 15))
	if !ev.Materialize {
		t.Fatal("should fire on the one-time day")
	}
	if !st.Done || !slices.Equal(ev.Changed, []string{FieldLastGen, FieldDone}) {
		t.Fatalf("expected done after last occurrence: %+v done=%v", ev, st.Done)
	}
	if st.State(ord(2021, 5, 16)).Kind != StateDone {
		t.Fatal("expected terminal state")
	}
}

func TestEvaluateIsIdempotentPerDay(t *testing.T) {
	st := ScheduledTask{Pattern: scheduler.Weekly(2).String(), Title: "Standup", Tomato: 1, Type: TaskTypeShort}
	wednesday := ord(2021, 5, 12)

	first := st.Evaluate(wednesday)
	if !first.Materialize {
		t.Fatal("weekly pattern should fire on Wednesday")
	}
	second := st.Evaluate(wednesday)
	if second.Materialize || len(second.Changed) != 0 {
		t.Fatalf("second evaluation must be a no-op: %+v", second)
	}
	if st.LastGen != wednesday {
		t.Fatalf("last_gen changed: %d", st.LastGen)
	}
	if earlier := st.Evaluate(wednesday - 3); earlier.Materialize || len(earlier.Changed) != 0 || st.LastGen != wednesday {
		t.Fatalf("earlier day must not move last_gen backwards: %+v last_gen=%d", earlier, st.LastGen)
	}
}

func TestEvaluateCachesNextEvent(t *testing.T) {
	st := ScheduledTask{Pattern: scheduler.Monthly(15).String(), Title: "Backup", Tomato: 2, Type: TaskTypeLong}

	ev := st.Evaluate(ord(2021, 5, 3))
	if ev.Materialize {
		t.Fatal("monthly pattern should not fire on the 3rd")
	}
	if st.NextEvent != ord(2021, 5, 15) || !slices.Equal(ev.Changed, []string{FieldLastGen, FieldNextEvent}) {
		t.Fatalf("expected cached next event: %+v next=%d", ev, st.NextEvent)
	}

	state := st.State(ord(2021, 5, 4))
	if state.Kind != StateActive || state.NextEvent != ord(2021, 5, 15) {
		t.Fatalf("expected active state with cache, got %+v", state)
	}

	// a corrupted pattern is not consulted while the cache is valid
	st.Pattern = "garbage"
	ev = st.Evaluate(ord(2021, 5, 4))
	if ev.Materialize || !slices.Equal(ev.Changed, []string{FieldLastGen}) {
		t.Fatalf("cache should be reused without changes: %+v", ev)
	}
	ev = st.Evaluate(ord(2021, 5, 15))
	if !ev.Materialize {
		t.Fatal("cached next event should fire")
	}
	if st.Done {
		t.Fatal("today's occurrence keeps the template active")
	}
}

func TestEvaluateRecomputesStaleCache(t *testing.T) {
	st := ScheduledTask{Pattern: scheduler.Monthly(15).String(), NextEvent: ord(2021, 5, 15), LastGen: ord(2021, 5, 15), Title: "Backup", Tomato: 2, Type: TaskTypeShort}
	if st.State(ord(2021, 5, 16)).Kind != StateActiveNoCache {
		t.Fatal("expected stale cache to read as no cache")
	}
	ev := st.Evaluate(ord(2021, 5, 16))
	if ev.Materialize {
		t.Fatal("should not fire on the 16th")
	}
	if st.NextEvent != ord(2021, 6, 15) || !slices.Contains(ev.Changed, FieldNextEvent) {
		t.Fatalf("expected next event recomputed, got %d (%v)", st.NextEvent, ev.Changed)
	}
}

func TestEvaluateInvalidPatternBecomesDone(t *testing.T) {
	st := ScheduledTask{Pattern: "not a pattern", Title: "Nothing", Tomato: 1, Type: TaskTypeShort}
	ev := st.Evaluate(ord(2021, 5, 16))
	if ev.Materialize || !st.Done {
		t.Fatalf("expected immediate exhaustion: %+v done=%v", ev, st.Done)
	}
}

func TestEvaluateMissedOncePattern(t *testing.T) {
	st := ScheduledTask{Pattern: scheduler.Once(2021, 5, 15).String(), Title: "Exam", Tomato: 1, Type: TaskTypeShort}
	if ev := st.Evaluate(ord(2021, 5, 15)); !ev.Materialize || st.Done {
		t.Fatalf("expected firing on the day without exhaustion: %+v done=%v", ev, st.Done)
	}
	if ev := st.Evaluate(ord(2021, 5, 16)); ev.Materialize || !st.Done {
		t.Fatalf("expected exhaustion the day after: %+v done=%v", ev, st.Done)
	}
}

func TestEvaluateDoneIsInert(t *testing.T) {
	st := ScheduledTask{Once: ord(2021, 5, 20), Done: true, Pattern: scheduler.Weekly(0).String(), Title: "x", Tomato: 1, Type: TaskTypeShort}
	ev := st.Evaluate(ord(2021, 5, 20))
	if ev.Materialize || !st.Done || !slices.Equal(ev.Changed, []string{FieldLastGen}) {
		t.Fatalf("done template must stay inert: %+v", ev)
	}
}

func TestEvaluateOnceAndPattern(t *testing.T) {
	st := ScheduledTask{Once: ord(2021, 5, 20), Pattern: scheduler.Monthly(1).String(), Title: "Combo", Type: TaskTypeTodo}
	if ev := st.Evaluate(ord(2021, 5, 20)); !ev.Materialize {
		t.Fatal("one-time day should fire alongside a pattern")
	}
	if st.Done || st.NextEvent != ord(2021, 6, 1) {
		t.Fatalf("pattern keeps template active: done=%v next=%d", st.Done, st.NextEvent)
	}
}

func TestScheduledTaskValidate(t *testing.T) {
	ok := ScheduledTask{Title: "x", Tomato: 2, Type: TaskTypeLong}
	if err := ok.Validate(); err != nil {
		t.Fatalf("expected valid template: %v", err)
	}
	todo := ScheduledTask{Title: "x", Type: TaskTypeTodo}
	if err := todo.Validate(); err != nil {
		t.Fatalf("todo template needs no tomato: %v", err)
	}
	if err := (ScheduledTask{Title: "x", Tomato: 2, Type: "?"}).Validate(); !errors.Is(err, ErrInvalidTaskType) {
		t.Fatalf("expected ErrInvalidTaskType, got %v", err)
	}
	if err := (ScheduledTask{Title: "x", Type: TaskTypeShort}).Validate(); !errors.Is(err, ErrInvalidTomato) {
		t.Fatalf("expected ErrInvalidTomato, got %v", err)
	}
}

func TestNewTaskAndTodo(t *testing.T) {
	st := ScheduledTask{Title: "Review", Tomato: 4, Type: TaskTypeLong}
	task := st.NewTask()
	if task.Description != "Review" || task.Tomato != 4 || !task.LongSession {
		t.Fatalf("unexpected task: %+v", task)
	}
	todo := ScheduledTask{Title: "Water plants", Type: TaskTypeTodo}.NewTodo(42)
	if todo.Description != "Water plants" || todo.CreateTime != 42 {
		t.Fatalf("unexpected todo: %+v", todo)
	}
}
