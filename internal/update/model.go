package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/sandeepkv93/tomatod/internal/config"
	"github.com/sandeepkv93/tomatod/internal/dates"
	"github.com/sandeepkv93/tomatod/internal/model"
	"github.com/sandeepkv93/tomatod/internal/planner"
)

// Planner is what the UI needs from *planner.Planner.
type Planner interface {
	Today() dates.Date
	Reload(ctx context.Context, day dates.Date) (planner.Snapshot, error)
	Add(ctx context.Context, line string) (planner.Added, error)
	AddTodo(ctx context.Context, description, deadline string) (model.Todo, error)
	CompleteTask(ctx context.Context, id int64) (int, error)
	CompleteTodo(ctx context.Context, id int64) (model.Todo, error)
	RecordSession(ctx context.Context, taskID int64, start, end time.Time, note string) (model.Session, error)
	SessionHistory(ctx context.Context, taskID int64, day dates.Date) ([]planner.HistoryEntry, error)
	ScheduledTasks(ctx context.Context) ([]planner.ScheduleEntry, error)
	Unschedule(ctx context.Context, id int64) (model.ScheduledTask, error)
}

type StatusBar struct {
	Text    string
	IsError bool
}

type FocusPhase string

const (
	FocusPhaseIdle FocusPhase = ""
	FocusPhaseWork FocusPhase = "work"
	FocusPhaseRest FocusPhase = "rest"
)

type FocusState struct {
	Phase     FocusPhase
	TaskID    int64
	TaskTitle string
	Long      bool

	Started      time.Time
	TotalSec     int
	RemainingSec int
	Running      bool
	// AwaitingNote is set between the end of a work phase and the note
	// being entered; the session is stored once the note is in.
	AwaitingNote bool
	WorkEnded    time.Time

	// seq tags tick chains so a paused and resumed timer keeps one chain.
	seq int
}

// SideView is the list shown under the session panel until esc clears it.
type SideView int

const (
	SideNone SideView = iota
	SideHistory
	SideSchedules
)

type keyMap struct {
	Submit key.Binding
	Clear  key.Binding
	Pause  key.Binding
	Stop   key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add task / run command")),
		Clear:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear input and lists")),
		Pause:  key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "pause/resume session")),
		Stop:   key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "abandon session")),
		Help:   key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "toggle help")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Pause, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Submit, k.Clear}, {k.Pause, k.Stop}, {k.Help, k.Quit}}
}

type Model struct {
	Snapshot    planner.Snapshot
	Focus       FocusState
	Status      StatusBar
	HelpVisible bool
	Quitting    bool
	LastError   error

	Side         SideView
	HistoryTitle string
	History      []planner.HistoryEntry
	Schedules    []planner.ScheduleEntry

	planner  Planner
	cfg      config.Config
	now      func() time.Time
	keys     keyMap
	input    textinput.Model
	progress progress.Model
	helpView help.Model
	// quickStart is the rendered markdown help, built on first display.
	quickStart string
}

func NewModel(p Planner, cfg config.Config) Model {
	in := textinput.New()
	in.Placeholder = "Task title #2 @mon *w ==  or  /help"
	in.Prompt = "> "
	in.CharLimit = 256
	in.Width = 70
	in.Focus()

	return Model{
		planner:  p,
		cfg:      cfg,
		now:      time.Now,
		keys:     defaultKeyMap(),
		input:    in,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		helpView: help.New(),
	}
}

// WithClock replaces the wall clock used for session timestamps.
func (m Model) WithClock(now func() time.Time) Model {
	if now != nil {
		m.now = now
	}
	return m
}

// entries is the numbered task list: open tasks depth first, then the todo
// pseudo-task.
func (m Model) entries() []*model.Task {
	out := m.Snapshot.Flatten()
	if m.Snapshot.TodoTask.ID != 0 {
		todo := m.Snapshot.TodoTask
		todo.Description = "todo list"
		out = append(out, &todo)
	}
	return out
}
