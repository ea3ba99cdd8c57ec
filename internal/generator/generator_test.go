package generator

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/sandeepkv93/tomatod/internal/dates"
	"github.com/sandeepkv93/tomatod/internal/model"
	"github.com/sandeepkv93/tomatod/internal/scheduler"
)

type save struct {
	id     int64
	fields []string
}

type fakeStore struct {
	lastGen map[int64]int
	saves   []save
	tasks   []model.Task
	todos   []model.Todo
	saveErr error
}

func (f *fakeStore) SaveScheduledTask(_ context.Context, in model.ScheduledTask, fields ...string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if slices.Contains(fields, model.FieldLastGen) {
		if f.lastGen == nil {
			f.lastGen = map[int64]int{}
		}
		if f.lastGen[in.ID] >= in.LastGen {
			return model.ErrAlreadyExamined
		}
		f.lastGen[in.ID] = in.LastGen
	}
	f.saves = append(f.saves, save{id: in.ID, fields: fields})
	return nil
}

func (f *fakeStore) CreateTask(_ context.Context, in model.Task) (model.Task, error) {
	in.ID = int64(len(f.tasks) + 1)
	f.tasks = append(f.tasks, in)
	return in, nil
}

func (f *fakeStore) CreateTodo(_ context.Context, in model.Todo) (model.Todo, error) {
	in.ID = int64(len(f.todos) + 1)
	f.todos = append(f.todos, in)
	return in, nil
}

func ord(y int, m time.Month, d int) int {
	return dates.New(y, m, d).Ordinal()
}

func TestGenerateTaskOncePerDay(t *testing.T) {
	store := &fakeStore{}
	gen := New(store)
	st := &model.ScheduledTask{ID: 7, Pattern: scheduler.Weekly(2).String(), Title: "Standup", Tomato: 2, Type: model.TaskTypeLong}
	wednesday := ord(2021, 5, 12)

	got, err := gen.Generate(context.Background(), st, wednesday)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got.Task == nil || got.Todo != nil {
		t.Fatalf("expected a task: %+v", got)
	}
	if got.Task.Description != "Standup" || got.Task.Tomato != 2 || !got.Task.LongSession {
		t.Fatalf("unexpected task: %+v", got.Task)
	}
	if len(store.saves) != 1 || !slices.Equal(store.saves[0].fields, []string{model.FieldLastGen, model.FieldNextEvent}) {
		t.Fatalf("unexpected saves: %+v", store.saves)
	}

	again, err := gen.Generate(context.Background(), st, wednesday)
	if err != nil {
		t.Fatalf("generate again: %v", err)
	}
	if !again.Empty() || len(store.saves) != 1 || len(store.tasks) != 1 {
		t.Fatalf("second call must be a no-op: %+v saves=%d tasks=%d", again, len(store.saves), len(store.tasks))
	}
}

func TestGenerateTodo(t *testing.T) {
	store := &fakeStore{}
	clock := func() time.Time { return time.Unix(1622246400, 0) }
	gen := New(store, WithClock(clock))
	st := &model.ScheduledTask{ID: 3, Once: ord(2021, 5, 29), Pattern: scheduler.NoPattern.String(), Title: "Call mom", Type: model.TaskTypeTodo}

	got, err := gen.Generate(context.Background(), st, ord(2021, 5, 29))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got.Todo == nil || got.Todo.Description != "Call mom" || got.Todo.CreateTime != 1622246400 {
		t.Fatalf("expected todo: %+v", got)
	}
	if !st.Done {
		t.Fatal("one-time template should be exhausted")
	}
	if !slices.Equal(store.saves[0].fields, []string{model.FieldLastGen, model.FieldDone}) {
		t.Fatalf("unexpected saved fields: %v", store.saves[0].fields)
	}
}

func TestGenerateNothingStillSavesBookkeeping(t *testing.T) {
	store := &fakeStore{}
	gen := New(store)
	st := &model.ScheduledTask{ID: 1, Pattern: scheduler.Monthly(15).String(), Title: "Backup", Tomato: 1, Type: model.TaskTypeShort}

	got, err := gen.Generate(context.Background(), st, ord(2021, 5, 1))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !got.Empty() || len(store.tasks) != 0 {
		t.Fatalf("nothing should be created: %+v", got)
	}
	if len(store.saves) != 1 || store.saves[0].id != 1 {
		t.Fatalf("expected bookkeeping save: %+v", store.saves)
	}
}

func TestGenerateSaveFailureCreatesNothing(t *testing.T) {
	store := &fakeStore{saveErr: errors.New("disk full")}
	gen := New(store)
	st := &model.ScheduledTask{ID: 1, Once: ord(2021, 5, 1), Pattern: scheduler.NoPattern.String(), Title: "x", Tomato: 1, Type: model.TaskTypeShort}

	if _, err := gen.Generate(context.Background(), st, ord(2021, 5, 1)); err == nil {
		t.Fatal("expected error")
	}
	if len(store.tasks) != 0 {
		t.Fatal("no task may be created when bookkeeping is not saved")
	}
}

func TestGenerateStaleCopyCreatesNothing(t *testing.T) {
	store := &fakeStore{}
	gen := New(store)
	template := model.ScheduledTask{ID: 4, Pattern: scheduler.Weekly(5).String(), Title: "Review", Tomato: 1, Type: model.TaskTypeShort}
	saturday := ord(2021, 5, 29)

	// both copies were listed before either was saved
	a, b := template, template
	first, err := gen.Generate(context.Background(), &a, saturday)
	if err != nil || first.Task == nil {
		t.Fatalf("expected a task from the first copy: %+v %v", first, err)
	}
	second, err := gen.Generate(context.Background(), &b, saturday)
	if err != nil {
		t.Fatalf("stale copy should not be an error: %v", err)
	}
	if !second.Empty() || len(store.tasks) != 1 {
		t.Fatalf("stale copy must not materialize: %+v tasks=%d", second, len(store.tasks))
	}
}

func TestRunCollectsResults(t *testing.T) {
	store := &fakeStore{}
	gen := New(store)
	day := ord(2021, 5, 15)
	list := []model.ScheduledTask{
		{ID: 1, Pattern: scheduler.Monthly(15).String(), Title: "Rent", Tomato: 1, Type: model.TaskTypeShort},
		{ID: 2, Pattern: scheduler.Monthly(16).String(), Title: "Later", Tomato: 1, Type: model.TaskTypeShort},
		{ID: 3, Pattern: scheduler.Yearly(5, 15).String(), Title: "Birthday", Type: model.TaskTypeTodo},
	}

	out, err := gen.Run(context.Background(), list, day)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(out) != 2 || out[0].Task == nil || out[1].Todo == nil {
		t.Fatalf("unexpected results: %+v", out)
	}
	if list[1].NextEvent != ord(2021, 5, 16) {
		t.Fatalf("bookkeeping should be applied in place: %+v", list[1])
	}
}
