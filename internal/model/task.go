package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidTaskType = errors.New("model: invalid task type")
	ErrInvalidTomato   = errors.New("model: invalid tomato count")
)

const (
	MinTomato = 1
	MaxTomato = 5
)

// TaskType is the session length of a task, or TaskTypeTodo for entries that
// belong on the todo list.
type TaskType string

const (
	TaskTypeLong  TaskType = "="
	TaskTypeShort TaskType = "-"
	TaskTypeTodo  TaskType = "."
)

func (t TaskType) IsValid() bool {
	switch t {
	case TaskTypeLong, TaskTypeShort, TaskTypeTodo:
		return true
	default:
		return false
	}
}

type Task struct {
	ID           int64
	Description  string
	Tomato       int
	LongSession  bool
	Done         bool
	Deadline     int
	CompleteTime int
	Parent       *int64

	// Progress is the number of sessions started today; it is not persisted.
	Progress int
	Subtasks []*Task
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return errors.New("model: task description is required")
	}
	if t.Tomato < MinTomato || t.Tomato > MaxTomato {
		return fmt.Errorf("%w: %d", ErrInvalidTomato, t.Tomato)
	}
	return nil
}

func (t Task) Remaining() int {
	return t.Tomato - t.Progress
}

func (t Task) CanStart() bool {
	return t.Remaining() > 0 && !t.Done
}

type Todo struct {
	ID           int64
	Description  string
	Deadline     int
	CreateTime   int64
	Done         bool
	CompleteTime int64
}

func (t Todo) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return errors.New("model: todo description is required")
	}
	return nil
}

// Session is one finished pomodoro. Start and End are Unix seconds.
type Session struct {
	ID     int64
	TaskID int64
	Start  int64
	End    int64
	Note   string
}

func (s Session) Validate() error {
	if s.TaskID <= 0 {
		return errors.New("model: session task is required")
	}
	if s.End < s.Start {
		return errors.New("model: session ends before it starts")
	}
	return nil
}

func (s Session) Duration() time.Duration {
	return time.Duration(s.End-s.Start) * time.Second
}
