package storage

import (
	"context"
	"errors"

	"github.com/sandeepkv93/tomatod/internal/model"
)

var (
	ErrNotFound     = errors.New("storage: not found")
	ErrUnknownField = errors.New("storage: unknown field")
)

type Repository interface {
	CreateTask(ctx context.Context, in model.Task) (model.Task, error)
	GetTask(ctx context.Context, id int64) (model.Task, error)
	SetTaskDone(ctx context.Context, id int64, done bool, completeTime int) error
	ListTasks(ctx context.Context, filter TaskListFilter) ([]model.Task, error)
	EnsureTodoTask(ctx context.Context) (model.Task, error)

	CreateTodo(ctx context.Context, in model.Todo) (model.Todo, error)
	GetTodo(ctx context.Context, id int64) (model.Todo, error)
	SetTodoDone(ctx context.Context, id int64, done bool, completeTime int64) error
	ListTodos(ctx context.Context, filter TodoListFilter) ([]model.Todo, error)

	CreateSession(ctx context.Context, in model.Session) (model.Session, error)
	ListSessions(ctx context.Context, filter SessionListFilter) ([]model.Session, error)
	CountSessionsSince(ctx context.Context, since int64) (map[int64]int, error)

	CreateScheduledTask(ctx context.Context, in model.ScheduledTask) (model.ScheduledTask, error)
	GetScheduledTask(ctx context.Context, id int64) (model.ScheduledTask, error)
	SaveScheduledTask(ctx context.Context, in model.ScheduledTask, fields ...string) error
	DeleteScheduledTask(ctx context.Context, id int64) error
	ListScheduledTasks(ctx context.Context, filter ScheduledTaskListFilter) ([]model.ScheduledTask, error)
}
