package planner

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/sandeepkv93/tomatod/internal/dates"
	"github.com/sandeepkv93/tomatod/internal/generator"
	"github.com/sandeepkv93/tomatod/internal/model"
	"github.com/sandeepkv93/tomatod/internal/scheduler"
	"github.com/sandeepkv93/tomatod/internal/storage"
	"github.com/sandeepkv93/tomatod/internal/taskparser"
)

const previewCount = 3

// Planner owns the day's task list, the todo list and the scheduled task
// templates that feed them.
type Planner struct {
	repo   storage.Repository
	gen    *generator.Generator
	logger *log.Logger
	now    func() time.Time
}

type Option func(*Planner)

func WithLogger(logger *log.Logger) Option {
	return func(p *Planner) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Planner) {
		if now != nil {
			p.now = now
		}
	}
}

func New(repo storage.Repository, opts ...Option) *Planner {
	p := &Planner{
		repo:   repo,
		logger: log.New(io.Discard, "", 0),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.gen = generator.New(repo, generator.WithClock(p.now))
	return p
}

func (p *Planner) Today() dates.Date {
	return dates.FromTime(p.now())
}

// Snapshot is what a reload shows for one day.
type Snapshot struct {
	Day dates.Date
	// Tasks are the open root tasks; subtasks hang off each root.
	Tasks []*model.Task
	// TodoTask is the pseudo-task that sessions spent on todos count against.
	// It reads as done while the todo list is empty.
	TodoTask  model.Task
	Todos     []model.Todo
	Generated []generator.Generated
}

// Flatten lists the open tasks depth first, the order they are displayed and
// numbered in.
func (s Snapshot) Flatten() []*model.Task {
	out := make([]*model.Task, 0, len(s.Tasks))
	var walk func(list []*model.Task)
	walk = func(list []*model.Task) {
		for _, t := range list {
			out = append(out, t)
			walk(t.Subtasks)
		}
	}
	walk(s.Tasks)
	return out
}

// Reload runs every active template for day, then loads the open tasks and
// todos with today's session counts.
func (p *Planner) Reload(ctx context.Context, day dates.Date) (Snapshot, error) {
	snap := Snapshot{Day: day}

	templates, err := p.repo.ListScheduledTasks(ctx, storage.ScheduledTaskListFilter{Done: storage.Bool(false)})
	if err != nil {
		return Snapshot{}, fmt.Errorf("list scheduled tasks: %w", err)
	}
	generated, err := p.gen.Run(ctx, templates, day.Ordinal())
	if err != nil {
		// already generated items stay; the failed template is retried on the next day
		p.logger.Printf("planner: generate for %s: %v", day, err)
	}
	snap.Generated = generated
	for _, g := range generated {
		switch {
		case g.Task != nil:
			p.logger.Printf("planner: scheduled task %q added for %s", g.Task.Description, day)
		case g.Todo != nil:
			p.logger.Printf("planner: scheduled todo %q added for %s", g.Todo.Description, day)
		}
	}

	tasks, err := p.repo.ListTasks(ctx, storage.TaskListFilter{Done: storage.Bool(false), ExcludeTodoTask: true})
	if err != nil {
		return Snapshot{}, fmt.Errorf("list tasks: %w", err)
	}
	counts, err := p.repo.CountSessionsSince(ctx, startOfDay(day))
	if err != nil {
		return Snapshot{}, fmt.Errorf("count sessions: %w", err)
	}
	snap.Tasks = buildTree(tasks, counts)

	snap.TodoTask, err = p.repo.EnsureTodoTask(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("todo task: %w", err)
	}
	snap.TodoTask.Progress = counts[snap.TodoTask.ID]

	snap.Todos, err = p.repo.ListTodos(ctx, storage.TodoListFilter{Done: storage.Bool(false)})
	if err != nil {
		return Snapshot{}, fmt.Errorf("list todos: %w", err)
	}
	snap.TodoTask.Done = len(snap.Todos) == 0
	return snap, nil
}

func buildTree(tasks []model.Task, progress map[int64]int) []*model.Task {
	byID := make(map[int64]*model.Task, len(tasks))
	nodes := make([]*model.Task, 0, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		t.Progress = progress[t.ID]
		byID[t.ID] = t
		nodes = append(nodes, t)
	}

	roots := make([]*model.Task, 0, len(nodes))
	for _, t := range nodes {
		if t.Parent != nil {
			if parent, ok := byID[*t.Parent]; ok && parent != t {
				parent.Subtasks = append(parent.Subtasks, t)
				continue
			}
		}
		roots = append(roots, t)
	}
	return roots
}

func startOfDay(day dates.Date) int64 {
	return time.Date(day.Year, day.Month, day.Day, 0, 0, 0, 0, time.Local).Unix()
}

// Added is the outcome of Add. Scheduled is set for lines with a date or a
// recurrence; Task or Todo is set when something is due today.
type Added struct {
	Task      *model.Task
	Todo      *model.Todo
	Scheduled *model.ScheduledTask
	Upcoming  []dates.Date
}

// Add turns one line of task description text into a task, a todo or a
// scheduled task template. A template is examined for today right away.
func (p *Planner) Add(ctx context.Context, line string) (Added, error) {
	opts := taskparser.ParseTaskDescription(line)
	if opts.Title == "" {
		return Added{}, inputErr(ErrCodeEmptyTitle, "task description can't be empty")
	}

	typ := model.TaskTypeShort
	if opts.Type != "" {
		typ = model.TaskType(opts.Type)
		if !typ.IsValid() {
			return Added{}, inputErr(ErrCodeBadType, "unknown session type %q, use ==, =- or =.", "="+opts.Type)
		}
	}
	if typ != model.TaskTypeTodo && !opts.HasTomato {
		return Added{}, inputErr(ErrCodeMissingTomato, "choose some tomatoes with #1 to #5")
	}

	today := p.Today()
	if opts.Scheduled() {
		return p.addScheduled(ctx, opts, typ, today)
	}

	if typ == model.TaskTypeTodo {
		todo, err := p.repo.CreateTodo(ctx, model.Todo{Description: opts.Title, CreateTime: p.now().Unix()})
		if err != nil {
			return Added{}, err
		}
		return Added{Todo: &todo}, nil
	}

	task := model.Task{Description: opts.Title, Tomato: opts.Tomato, LongSession: typ == model.TaskTypeLong}
	if opts.Parent != "" {
		parent, err := p.findParent(ctx, opts.Parent)
		if err != nil {
			return Added{}, err
		}
		task.Parent = &parent.ID
	}
	if err := task.Validate(); err != nil {
		return Added{}, err
	}
	created, err := p.repo.CreateTask(ctx, task)
	if err != nil {
		return Added{}, err
	}
	return Added{Task: &created}, nil
}

// addScheduled stores a template. Relative recurrences such as *w are
// anchored at the one-time day when there is one, else at today. Parents are
// ignored for templates.
func (p *Planner) addScheduled(ctx context.Context, opts taskparser.Options, typ model.TaskType, today dates.Date) (Added, error) {
	st := model.ScheduledTask{
		Pattern: scheduler.NoPattern.String(),
		Title:   opts.Title,
		Tomato:  opts.Tomato,
		Type:    typ,
	}

	anchor := today
	if opts.Once != "" {
		st.Once = taskparser.ParseDateSpecOrdinal(opts.Once, today)
		if st.Once == dates.FirstDay.Ordinal() {
			return Added{}, inputErr(ErrCodeBadDate, "can't read date %q or it has passed", opts.Once)
		}
		anchor = dates.FromOrdinal(st.Once)
	}

	pattern := scheduler.NoPattern
	if opts.Pattern != "" {
		var ok bool
		pattern, ok = taskparser.ParseRepeatPattern(opts.Pattern, anchor)
		if !ok {
			return Added{}, inputErr(ErrCodeBadPattern, "can't read repeat pattern %q", opts.Pattern)
		}
		st.Pattern = pattern.String()
	}
	if err := st.Validate(); err != nil {
		return Added{}, err
	}

	created, err := p.repo.CreateScheduledTask(ctx, st)
	if err != nil {
		return Added{}, err
	}
	out := Added{Scheduled: &created, Upcoming: pattern.Preview(today, previewCount)}

	res, err := p.gen.Generate(ctx, &created, today.Ordinal())
	if err != nil {
		return Added{}, err
	}
	out.Task, out.Todo = res.Task, res.Todo
	p.logger.Printf("planner: scheduled %q once=%d pattern=%q", created.Title, created.Once, created.Pattern)
	return out, nil
}

// findParent returns the first open task whose lowercased description starts
// with prefix.
func (p *Planner) findParent(ctx context.Context, prefix string) (model.Task, error) {
	open, err := p.repo.ListTasks(ctx, storage.TaskListFilter{Done: storage.Bool(false), ExcludeTodoTask: true})
	if err != nil {
		return model.Task{}, err
	}
	for _, t := range open {
		if strings.HasPrefix(strings.ToLower(t.Description), prefix) {
			return t, nil
		}
	}
	return model.Task{}, inputErr(ErrCodeUnknownParent, "no open task starts with %q", prefix)
}

// AddTodo creates a todo with an optional deadline date expression.
func (p *Planner) AddTodo(ctx context.Context, description, deadline string) (model.Todo, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return model.Todo{}, inputErr(ErrCodeEmptyTitle, "todo can't be empty")
	}
	todo := model.Todo{Description: description, CreateTime: p.now().Unix()}
	if deadline != "" {
		d, ok := taskparser.ParseDateSpec(deadline, p.Today())
		if !ok {
			return model.Todo{}, inputErr(ErrCodeBadDate, "can't read date %q or it has passed", deadline)
		}
		todo.Deadline = d.Ordinal()
	}
	return p.repo.CreateTodo(ctx, todo)
}

// CompleteTask marks the task and all of its open subtasks done and returns
// how many tasks changed.
func (p *Planner) CompleteTask(ctx context.Context, id int64) (int, error) {
	if _, err := p.repo.GetTask(ctx, id); err != nil {
		return 0, err
	}
	open, err := p.repo.ListTasks(ctx, storage.TaskListFilter{Done: storage.Bool(false)})
	if err != nil {
		return 0, err
	}
	children := make(map[int64][]int64)
	for _, t := range open {
		if t.Parent != nil {
			children[*t.Parent] = append(children[*t.Parent], t.ID)
		}
	}

	day := p.Today().Ordinal()
	done := 0
	queue := []int64{id}
	seen := map[int64]bool{}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		if err := p.repo.SetTaskDone(ctx, cur, true, day); err != nil {
			return done, err
		}
		done++
		queue = append(queue, children[cur]...)
	}
	return done, nil
}

// CompleteTodo checks off an open todo. A todo checked since the list was
// loaded is reported as already done.
func (p *Planner) CompleteTodo(ctx context.Context, id int64) (model.Todo, error) {
	todo, err := p.repo.GetTodo(ctx, id)
	if err != nil {
		return model.Todo{}, err
	}
	if todo.Done {
		return todo, inputErr(ErrCodeAlreadyDone, "%q is already checked", todo.Description)
	}
	todo.Done = true
	todo.CompleteTime = p.now().Unix()
	if err := p.repo.SetTodoDone(ctx, id, true, todo.CompleteTime); err != nil {
		return model.Todo{}, err
	}
	return todo, nil
}

// RecordSession stores one finished pomodoro for the task.
func (p *Planner) RecordSession(ctx context.Context, taskID int64, start, end time.Time, note string) (model.Session, error) {
	s := model.Session{TaskID: taskID, Start: start.Unix(), End: end.Unix(), Note: strings.TrimSpace(note)}
	if err := s.Validate(); err != nil {
		return model.Session{}, err
	}
	return p.repo.CreateSession(ctx, s)
}

// HistoryEntry is a finished session with the title of its task. The todo
// pseudo-task is titled "todo list".
type HistoryEntry struct {
	model.Session
	TaskTitle string
}

// SessionHistory lists sessions in start order: every session of taskID when
// it is non-zero, else the sessions started on day.
func (p *Planner) SessionHistory(ctx context.Context, taskID int64, day dates.Date) ([]HistoryEntry, error) {
	filter := storage.SessionListFilter{TaskID: taskID}
	if taskID == 0 {
		filter.Since = startOfDay(day)
	}
	sessions, err := p.repo.ListSessions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	// the day filter has no upper bound
	end := startOfDay(day.AddDays(1))
	titles := make(map[int64]string)
	out := make([]HistoryEntry, 0, len(sessions))
	for _, s := range sessions {
		if taskID == 0 && s.Start >= end {
			continue
		}
		title, ok := titles[s.TaskID]
		if !ok {
			task, err := p.repo.GetTask(ctx, s.TaskID)
			if err != nil {
				return nil, fmt.Errorf("session task %d: %w", s.TaskID, err)
			}
			title = task.Description
			if title == "" {
				title = "todo list"
			}
			titles[s.TaskID] = title
		}
		out = append(out, HistoryEntry{Session: s, TaskTitle: title})
	}
	return out, nil
}

// ScheduleEntry is an active template with the next day it fires on, seen
// from the day the list was built.
type ScheduleEntry struct {
	model.ScheduledTask
	Next    dates.Date
	HasNext bool
}

// ScheduledTasks lists the templates that are not done, oldest first.
func (p *Planner) ScheduledTasks(ctx context.Context) ([]ScheduleEntry, error) {
	list, err := p.repo.ListScheduledTasks(ctx, storage.ScheduledTaskListFilter{Done: storage.Bool(false)})
	if err != nil {
		return nil, fmt.Errorf("list scheduled tasks: %w", err)
	}
	today := p.Today()
	out := make([]ScheduleEntry, 0, len(list))
	for _, st := range list {
		entry := ScheduleEntry{ScheduledTask: st}
		if st.Once > 0 && st.Once >= today.Ordinal() {
			entry.Next, entry.HasNext = dates.FromOrdinal(st.Once), true
		}
		if next, ok := scheduler.ParsePattern(st.Pattern).NextOccurrenceAfter(today); ok && (!entry.HasNext || next.Before(entry.Next)) {
			entry.Next, entry.HasNext = next, true
		}
		out = append(out, entry)
	}
	return out, nil
}

// Unschedule deletes a template. Tasks and todos it already produced stay.
func (p *Planner) Unschedule(ctx context.Context, id int64) (model.ScheduledTask, error) {
	st, err := p.repo.GetScheduledTask(ctx, id)
	if err != nil {
		return model.ScheduledTask{}, err
	}
	if err := p.repo.DeleteScheduledTask(ctx, id); err != nil {
		return model.ScheduledTask{}, err
	}
	p.logger.Printf("planner: unscheduled %q", st.Title)
	return st, nil
}
