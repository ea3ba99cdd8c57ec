package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sandeepkv93/tomatod/internal/model"
)

// Store is the slice of the repository the generator writes through.
// SaveScheduledTask must fail with model.ErrAlreadyExamined when the stored
// last_gen is not before the one being saved.
type Store interface {
	SaveScheduledTask(ctx context.Context, in model.ScheduledTask, fields ...string) error
	CreateTask(ctx context.Context, in model.Task) (model.Task, error)
	CreateTodo(ctx context.Context, in model.Todo) (model.Todo, error)
}

// Generated holds at most one of Task and Todo.
type Generated struct {
	Task *model.Task
	Todo *model.Todo
}

func (g Generated) Empty() bool {
	return g.Task == nil && g.Todo == nil
}

type Generator struct {
	store Store
	now   func() time.Time
}

type Option func(*Generator)

func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

func New(store Store, opts ...Option) *Generator {
	g := &Generator{store: store, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate examines st for day (an ordinal) and creates the task or todo it
// produces, if any. Bookkeeping is saved before anything is created, so a
// failed create never causes a second materialization on the same day. When
// another caller already saved the day, st is stale and nothing is created.
func (g *Generator) Generate(ctx context.Context, st *model.ScheduledTask, day int) (Generated, error) {
	ev := st.Evaluate(day)
	if len(ev.Changed) == 0 {
		return Generated{}, nil
	}
	if err := g.store.SaveScheduledTask(ctx, *st, ev.Changed...); err != nil {
		if errors.Is(err, model.ErrAlreadyExamined) {
			return Generated{}, nil
		}
		return Generated{}, fmt.Errorf("save bookkeeping for %d: %w", st.ID, err)
	}
	if !ev.Materialize {
		return Generated{}, nil
	}

	if st.IsTodo() {
		todo, err := g.store.CreateTodo(ctx, st.NewTodo(g.now().Unix()))
		if err != nil {
			return Generated{}, fmt.Errorf("create todo from %d: %w", st.ID, err)
		}
		return Generated{Todo: &todo}, nil
	}
	task, err := g.store.CreateTask(ctx, st.NewTask())
	if err != nil {
		return Generated{}, fmt.Errorf("create task from %d: %w", st.ID, err)
	}
	return Generated{Task: &task}, nil
}

// Run generates every template in list for day and returns what was
// produced. Templates are independent: a failure is reported after the
// remaining ones have been processed.
func (g *Generator) Run(ctx context.Context, list []model.ScheduledTask, day int) ([]Generated, error) {
	out := make([]Generated, 0)
	var firstErr error
	for i := range list {
		res, err := g.Generate(ctx, &list[i], day)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if !res.Empty() {
			out = append(out, res)
		}
	}
	return out, firstErr
}
