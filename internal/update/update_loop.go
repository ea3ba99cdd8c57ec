package update

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/tomatod/internal/commands"
	"github.com/sandeepkv93/tomatod/internal/dates"
	"github.com/sandeepkv93/tomatod/internal/model"
	"github.com/sandeepkv93/tomatod/internal/planner"
	"github.com/sandeepkv93/tomatod/internal/views"
)

// ReloadMsg asks for the lists to be rebuilt for Day. The daily ticker sends
// it through tea.Program.Send.
type ReloadMsg struct {
	Day dates.Date
}

type SnapshotMsg struct {
	Snapshot planner.Snapshot
	Err      error
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type AppErrorMsg struct {
	Err error
}

type FocusTickMsg struct {
	Seq int
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.reloadCmd(m.planner.Today()))
}

func (m Model) reloadCmd(day dates.Date) tea.Cmd {
	p := m.planner
	return func() tea.Msg {
		snap, err := p.Reload(context.Background(), day)
		return SnapshotMsg{Snapshot: snap, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(typed)
	case ReloadMsg:
		return m, m.reloadCmd(typed.Day)
	case SnapshotMsg:
		if typed.Err != nil {
			m.LastError = typed.Err
			m.Status = StatusBar{Text: "reload failed: " + typed.Err.Error(), IsError: true}
			return m, nil
		}
		m.Snapshot = typed.Snapshot
		if n := len(typed.Snapshot.Generated); n > 0 {
			m.Status = StatusBar{Text: fmt.Sprintf("%s scheduled for today", pluralize(n, "item"))}
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	case FocusTickMsg:
		return m.onFocusTick(typed)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.toggleHelp()
		return m, nil
	case key.Matches(msg, m.keys.Pause):
		return m.togglePause()
	case key.Matches(msg, m.keys.Stop):
		return m.abandonSession(), nil
	case key.Matches(msg, m.keys.Clear):
		m.input.SetValue("")
		m.Status = StatusBar{}
		m.Side = SideNone
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		line := m.input.Value()
		m.input.SetValue("")
		if m.Focus.AwaitingNote {
			return m.finishWork(line)
		}
		return m.submit(line)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit(line string) (tea.Model, tea.Cmd) {
	cmd, err := commands.Parse(line)
	if err != nil {
		var ce *commands.CommandError
		if errors.As(err, &ce) && ce.Code == commands.ErrCodeEmptyInput {
			return m, nil
		}
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var next tea.Cmd
	res, err := commands.Execute(cmd, m.handlers(&next))
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: describeError(err), IsError: true}
		return m, nil
	}
	m.Status = StatusBar{Text: res.Message}
	return m, next
}

func describeError(err error) string {
	var ie *planner.InputError
	if errors.As(err, &ie) {
		return ie.Message
	}
	return err.Error()
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}

	right := m.renderFocusView()
	if side := m.renderSideView(); side != "" {
		right = strings.TrimSpace(right + "\n\n" + side)
	}
	if m.HelpVisible {
		right = strings.TrimSpace(right + "\n\n" + m.renderHelpView())
	}

	return views.RenderApp(views.AppData{
		Header:     fmt.Sprintf("tomatod | %s", m.Snapshot.Day),
		LeftPane:   m.renderTaskView(),
		RightPane:  right,
		InputLine:  m.input.View(),
		StatusLine: m.Status.Text,
		StatusErr:  m.Status.IsError,
		Footer:     m.helpView.ShortHelpView(m.keys.ShortHelp()),
	})
}

func (m Model) renderTaskView() string {
	today := m.Snapshot.Day
	rows := make([]views.TaskRowData, 0)
	n := 0
	var walk func(depth int, list []*model.Task)
	walk = func(depth int, list []*model.Task) {
		for _, t := range list {
			n++
			rows = append(rows, views.TaskRowData{
				Number:   n,
				Title:    t.Description,
				Depth:    depth,
				Progress: t.Progress,
				Tomato:   t.Tomato,
				Long:     t.LongSession,
				Done:     t.Done,
				Active:   m.Focus.Phase != FocusPhaseIdle && m.Focus.TaskID == t.ID,
			})
			walk(depth+1, t.Subtasks)
		}
	}
	walk(0, m.Snapshot.Tasks)
	if todo := m.Snapshot.TodoTask; todo.ID != 0 {
		n++
		rows = append(rows, views.TaskRowData{
			Number:   n,
			Title:    "todo list",
			Progress: todo.Progress,
			Done:     todo.Done,
			Active:   m.Focus.Phase != FocusPhaseIdle && m.Focus.TaskID == todo.ID,
		})
	}

	todos := make([]views.TodoRowData, 0, len(m.Snapshot.Todos))
	for i, td := range m.Snapshot.Todos {
		row := views.TodoRowData{Number: i + 1, Title: td.Description}
		if td.Deadline > 0 {
			due := dates.FromOrdinal(td.Deadline)
			row.Deadline = due.String()
			row.Overdue = due.Before(today)
		}
		todos = append(todos, row)
	}

	return views.RenderTaskPanel(views.TaskPanelData{Day: today.String(), Tasks: rows, Todos: todos})
}

func (m Model) renderSideView() string {
	switch m.Side {
	case SideHistory:
		rows := make([]views.HistoryRowData, 0, len(m.History))
		for _, h := range m.History {
			start, end := time.Unix(h.Start, 0).Local(), time.Unix(h.End, 0).Local()
			layout := "15:04"
			if !dates.FromTime(start).Equal(m.Snapshot.Day) {
				layout = "2006-01-02 15:04"
			}
			rows = append(rows, views.HistoryRowData{
				Start: start.Format(layout),
				End:   end.Format("15:04"),
				Task:  h.TaskTitle,
				Note:  h.Note,
			})
		}
		return views.RenderHistoryPanel(views.HistoryPanelData{Title: m.HistoryTitle, Rows: rows})
	case SideSchedules:
		rows := make([]views.ScheduleRowData, 0, len(m.Schedules))
		for i, st := range m.Schedules {
			row := views.ScheduleRowData{Number: i + 1, Title: st.Title, Kind: string(st.Type)}
			if st.HasNext {
				row.Next = st.Next.String()
			}
			rows = append(rows, row)
		}
		return views.RenderSchedulePanel(views.SchedulePanelData{Rows: rows})
	default:
		return ""
	}
}
