package update

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/tomatod/internal/commands"
	"github.com/sandeepkv93/tomatod/internal/dates"
	"github.com/sandeepkv93/tomatod/internal/model"
)

// handlers binds commands to m. Handlers that change stored data set next
// to a reload of today's lists.
func (m *Model) handlers(next *tea.Cmd) commands.Handlers {
	ctx := context.Background()
	reload := func() { *next = m.reloadCmd(m.planner.Today()) }

	return commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			added, err := m.planner.Add(ctx, a.Line)
			if err != nil {
				return commands.Result{}, err
			}
			reload()
			return commands.Result{Message: describeAdded(added.Task, added.Todo, added.Scheduled, added.Upcoming)}, nil
		},
		Done: func(a commands.IndexArgs) (commands.Result, error) {
			task, err := m.entryAt(a.Index)
			if err != nil {
				return commands.Result{}, err
			}
			if task.ID == m.Snapshot.TodoTask.ID {
				return commands.Result{}, invalidArg("the todo list is done when all its todos are checked")
			}
			n, err := m.planner.CompleteTask(ctx, task.ID)
			if err != nil {
				return commands.Result{}, err
			}
			reload()
			return commands.Result{Message: fmt.Sprintf("completed %s", pluralize(n, "task"))}, nil
		},
		Start: func(a commands.IndexArgs) (commands.Result, error) {
			if m.Focus.Phase != FocusPhaseIdle {
				return commands.Result{}, invalidArg("a session is already running")
			}
			task, err := m.entryAt(a.Index)
			if err != nil {
				return commands.Result{}, err
			}
			isTodo := task.ID == m.Snapshot.TodoTask.ID
			if task.Done || (!isTodo && !task.CanStart()) {
				return commands.Result{}, invalidArg(fmt.Sprintf("%q has no sessions left today", task.Description))
			}
			*next = m.startWork(*task)
			return commands.Result{Message: fmt.Sprintf("working on %q", task.Description)}, nil
		},
		Todo: func(a commands.TodoArgs) (commands.Result, error) {
			todo, err := m.planner.AddTodo(ctx, a.Description, a.Deadline)
			if err != nil {
				return commands.Result{}, err
			}
			reload()
			return commands.Result{Message: fmt.Sprintf("added todo %q", todo.Description)}, nil
		},
		Check: func(a commands.IndexArgs) (commands.Result, error) {
			if a.Index > len(m.Snapshot.Todos) {
				return commands.Result{}, invalidArg(fmt.Sprintf("no todo number %d", a.Index))
			}
			todo, err := m.planner.CompleteTodo(ctx, m.Snapshot.Todos[a.Index-1].ID)
			if err != nil {
				return commands.Result{}, err
			}
			reload()
			return commands.Result{Message: fmt.Sprintf("checked %q", todo.Description)}, nil
		},
		Reload: func() (commands.Result, error) {
			reload()
			return commands.Result{Message: "reloaded"}, nil
		},
		Help: func() (commands.Result, error) {
			m.toggleHelp()
			return commands.Result{}, nil
		},
		History: func(a commands.HistoryArgs) (commands.Result, error) {
			today := m.planner.Today()
			title := fmt.Sprintf("sessions on %s", today)
			var taskID int64
			if a.Index > 0 {
				task, err := m.entryAt(a.Index)
				if err != nil {
					return commands.Result{}, err
				}
				taskID = task.ID
				title = fmt.Sprintf("sessions for %q", task.Description)
			}
			history, err := m.planner.SessionHistory(ctx, taskID, today)
			if err != nil {
				return commands.Result{}, err
			}
			m.Side, m.HistoryTitle, m.History = SideHistory, title, history
			return commands.Result{Message: pluralize(len(history), "session")}, nil
		},
		Schedules: func() (commands.Result, error) {
			list, err := m.planner.ScheduledTasks(ctx)
			if err != nil {
				return commands.Result{}, err
			}
			m.Side, m.Schedules = SideSchedules, list
			return commands.Result{Message: fmt.Sprintf("%s scheduled", pluralize(len(list), "template"))}, nil
		},
		Unschedule: func(a commands.IndexArgs) (commands.Result, error) {
			// numbers refer to the /schedules listing, which is ordered by id
			list, err := m.planner.ScheduledTasks(ctx)
			if err != nil {
				return commands.Result{}, err
			}
			if a.Index > len(list) {
				return commands.Result{}, invalidArg(fmt.Sprintf("no scheduled task number %d", a.Index))
			}
			removed, err := m.planner.Unschedule(ctx, list[a.Index-1].ID)
			if err != nil {
				return commands.Result{}, err
			}
			m.Side, m.Schedules = SideSchedules, slices.Delete(list, a.Index-1, a.Index)
			return commands.Result{Message: fmt.Sprintf("unscheduled %q", removed.Title)}, nil
		},
	}
}

func (m Model) entryAt(index int) (*model.Task, error) {
	list := m.entries()
	if index < 1 || index > len(list) {
		return nil, invalidArg(fmt.Sprintf("no task number %d", index))
	}
	return list[index-1], nil
}

func invalidArg(msg string) error {
	return &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: msg}
}

func describeAdded(task *model.Task, todo *model.Todo, scheduled *model.ScheduledTask, upcoming []dates.Date) string {
	var b strings.Builder
	switch {
	case scheduled != nil:
		b.WriteString(fmt.Sprintf("scheduled %q", scheduled.Title))
		if task != nil || todo != nil {
			b.WriteString(", added for today")
		}
		if len(upcoming) > 0 {
			next := make([]string, 0, len(upcoming))
			for _, d := range upcoming {
				next = append(next, d.String())
			}
			b.WriteString("; next: " + strings.Join(next, ", "))
		}
	case task != nil:
		b.WriteString(fmt.Sprintf("added task %q", task.Description))
	case todo != nil:
		b.WriteString(fmt.Sprintf("added todo %q", todo.Description))
	}
	return b.String()
}
