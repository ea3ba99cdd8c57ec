package views

import (
	"fmt"
	"strings"
)

type TaskRowData struct {
	Number   int
	Title    string
	Depth    int
	Progress int
	Tomato   int
	Long     bool
	Done     bool
	Active   bool
}

type TodoRowData struct {
	Number   int
	Title    string
	Deadline string
	Overdue  bool
}

type TaskPanelData struct {
	Day   string
	Tasks []TaskRowData
	Todos []TodoRowData
}

type FocusPanelData struct {
	TaskTitle    string
	Phase        string
	Timer        string
	ProgressView string
	Paused       bool
	AwaitingNote bool
}

type HelpPanelData struct {
	QuickStart string
	KeysView   string
}

// RenderTaskPanel lists tasks with red tomatoes for sessions done today and
// green ones for the sessions left, followed by the todo list.
func RenderTaskPanel(data TaskPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("tasks for %s:\n", data.Day))
	if len(data.Tasks) == 0 {
		b.WriteString("(no open tasks)\n")
	}
	for _, row := range data.Tasks {
		cursor := " "
		if row.Active {
			cursor = ">"
		}
		title := strings.Repeat("  ", row.Depth) + row.Title
		if row.Done {
			title = doneStyle.Render(title)
		}
		kind := "-"
		if row.Long {
			kind = "="
		}
		b.WriteString(fmt.Sprintf("%s%2d %s %s %s\n", cursor, row.Number, kind, title, Tomatoes(row.Progress, row.Tomato)))
	}

	b.WriteString("\ntodo:\n")
	if len(data.Todos) == 0 {
		b.WriteString("(nothing to do)")
	}
	for _, row := range data.Todos {
		line := fmt.Sprintf("[%d] %s", row.Number, row.Title)
		if row.Deadline != "" {
			due := "due " + row.Deadline
			if row.Overdue {
				due = redStyle.Render(due)
			}
			line += " (" + due + ")"
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimSpace(b.String())
}

// Tomatoes draws done sessions as red and remaining ones as green. Extra
// sessions beyond the plan stay red.
func Tomatoes(progress, planned int) string {
	remaining := max(planned-progress, 0)
	return redStyle.Render(strings.Repeat("●", max(progress, 0))) + greenStyle.Render(strings.Repeat("●", remaining))
}

func RenderFocusPanel(data FocusPanelData) string {
	if data.Phase == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString("session:\n")
	b.WriteString(fmt.Sprintf("task: %s\n", data.TaskTitle))
	phase := strings.ToUpper(data.Phase)
	if data.Paused {
		phase += " (paused)"
	}
	b.WriteString(fmt.Sprintf("phase: %s\n", phase))
	b.WriteString(fmt.Sprintf("timer: %s\n", data.Timer))
	b.WriteString(data.ProgressView + "\n")
	if data.AwaitingNote {
		b.WriteString("prompt: session ended, type a note and press enter")
	}
	return strings.TrimSpace(b.String())
}

func RenderHelpPanel(data HelpPanelData) string {
	return strings.TrimSpace(data.QuickStart + "\n\n" + data.KeysView)
}

type HistoryRowData struct {
	Start string
	End   string
	Task  string
	Note  string
}

type HistoryPanelData struct {
	Title string
	Rows  []HistoryRowData
}

// RenderHistoryPanel lists finished sessions, one per line with the note
// dimmed underneath.
func RenderHistoryPanel(data HistoryPanelData) string {
	var b strings.Builder
	b.WriteString(data.Title + ":\n")
	if len(data.Rows) == 0 {
		b.WriteString("(no sessions)")
	}
	for _, row := range data.Rows {
		b.WriteString(fmt.Sprintf("%s - %s %s\n", row.Start, row.End, row.Task))
		if row.Note != "" {
			b.WriteString("  " + doneStyle.Render(row.Note) + "\n")
		}
	}
	return strings.TrimSpace(b.String())
}

type ScheduleRowData struct {
	Number int
	Title  string
	Kind   string
	Next   string
}

type SchedulePanelData struct {
	Rows []ScheduleRowData
}

func RenderSchedulePanel(data SchedulePanelData) string {
	var b strings.Builder
	b.WriteString("scheduled:\n")
	if len(data.Rows) == 0 {
		b.WriteString("(nothing scheduled)")
	}
	for _, row := range data.Rows {
		next := "no further dates"
		if row.Next != "" {
			next = "next " + row.Next
		}
		b.WriteString(fmt.Sprintf("%2d %s %s (%s)\n", row.Number, row.Kind, row.Title, next))
	}
	return strings.TrimSpace(b.String())
}
