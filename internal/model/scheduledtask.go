package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sandeepkv93/tomatod/internal/dates"
	"github.com/sandeepkv93/tomatod/internal/scheduler"
)

// Persisted column names of a scheduled task, used for partial saves.
const (
	FieldOnce      = "once"
	FieldPattern   = "pattern"
	FieldNextEvent = "next_event"
	FieldLastGen   = "last_gen"
	FieldDone      = "done"
	FieldTitle     = "title"
	FieldTomato    = "tomato"
	FieldType      = "type"
)

// ErrAlreadyExamined reports that another writer already recorded generation
// for the day, so nothing may be materialized again.
var ErrAlreadyExamined = errors.New("model: scheduled task already examined for the day")

// ScheduledTask is a template that produces a task or todo on the days
// selected by a one-time day, a recurrence pattern, or both.
//
// Once, NextEvent and LastGen are ordinal days; 0 means unset. NextEvent
// caches the next recurrence so the pattern is only recomputed once that day
// has passed. LastGen is the last day the template was examined, which limits
// generation to one attempt per day.
type ScheduledTask struct {
	ID        int64
	Once      int
	Pattern   string
	NextEvent int
	LastGen   int
	Done      bool

	Title  string
	Tomato int
	Type   TaskType
}

func (s ScheduledTask) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return errors.New("model: scheduled task title is required")
	}
	if !s.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidTaskType, s.Type)
	}
	if s.Type != TaskTypeTodo && (s.Tomato < MinTomato || s.Tomato > MaxTomato) {
		return fmt.Errorf("%w: %d", ErrInvalidTomato, s.Tomato)
	}
	return nil
}

type StateKind int

const (
	StateActiveNoCache StateKind = iota
	StateActive
	StateDone
)

func (k StateKind) String() string {
	switch k {
	case StateActive:
		return "active"
	case StateDone:
		return "done"
	default:
		return "active-no-cache"
	}
}

// GenerationState is the bookkeeping fields seen as one variant. NextEvent is
// only meaningful for StateActive.
type GenerationState struct {
	Kind      StateKind
	NextEvent int
}

// State reports the generation state as seen on day.
func (s ScheduledTask) State(day int) GenerationState {
	switch {
	case s.Done:
		return GenerationState{Kind: StateDone}
	case s.NextEvent > 0 && s.NextEvent >= day:
		return GenerationState{Kind: StateActive, NextEvent: s.NextEvent}
	default:
		return GenerationState{Kind: StateActiveNoCache}
	}
}

// Evaluation is the outcome of examining a template for one day.
type Evaluation struct {
	// Materialize is set when a task or todo should be created for the day.
	Materialize bool
	// Changed lists the fields modified by the bookkeeping, in save order.
	// It is empty when the day had already been examined.
	Changed []string
}

// Evaluate decides whether the template fires on day and updates its
// bookkeeping. It is a no-op for any day at or before LastGen.
//
// The template becomes done once no one-time day after day remains and the
// pattern has no occurrence on or after day.
func (s *ScheduledTask) Evaluate(day int) Evaluation {
	if s.LastGen >= day {
		return Evaluation{}
	}

	var out Evaluation
	state := s.State(day)
	if state.Kind != StateDone {
		next, hasNext := state.NextEvent, state.Kind == StateActive
		if !hasNext {
			next, hasNext = s.nextOccurrence(day)
		}
		out.Materialize = s.Once == day || (hasNext && next == day)

		switch {
		case s.Once <= day && !hasNext:
			s.Done = true
			out.Changed = append(out.Changed, FieldDone)
		case hasNext && next != s.NextEvent:
			s.NextEvent = next
			out.Changed = append(out.Changed, FieldNextEvent)
		}
	}

	s.LastGen = day
	out.Changed = append([]string{FieldLastGen}, out.Changed...)
	return out
}

func (s ScheduledTask) nextOccurrence(day int) (int, bool) {
	next, ok := scheduler.ParsePattern(s.Pattern).NextOccurrenceAfter(dates.FromOrdinal(day))
	if !ok {
		return 0, false
	}
	return next.Ordinal(), true
}

func (s ScheduledTask) IsTodo() bool {
	return s.Type == TaskTypeTodo
}

// NewTask builds the task this template materializes into.
func (s ScheduledTask) NewTask() Task {
	return Task{
		Description: s.Title,
		Tomato:      s.Tomato,
		LongSession: s.Type == TaskTypeLong,
	}
}

// NewTodo builds the todo this template materializes into.
func (s ScheduledTask) NewTodo(createTime int64) Todo {
	return Todo{
		Description: s.Title,
		CreateTime:  createTime,
	}
}
