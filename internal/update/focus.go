package update

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/tomatod/internal/model"
	"github.com/sandeepkv93/tomatod/internal/views"
)

func (m *Model) startWork(task model.Task) tea.Cmd {
	work, _ := m.cfg.Durations(task.LongSession)
	m.Focus = FocusState{
		Phase:        FocusPhaseWork,
		TaskID:       task.ID,
		TaskTitle:    task.Description,
		Long:         task.LongSession,
		Started:      m.now(),
		TotalSec:     int(work.Seconds()),
		RemainingSec: int(work.Seconds()),
		Running:      true,
		seq:          m.Focus.seq + 1,
	}
	return focusTickCmd(m.Focus.seq)
}

func (m Model) togglePause() (tea.Model, tea.Cmd) {
	if m.Focus.Phase == FocusPhaseIdle || m.Focus.AwaitingNote {
		return m, nil
	}
	if m.Focus.Running {
		m.Focus.Running = false
		m.Status = StatusBar{Text: "session paused"}
		return m, nil
	}
	m.Focus.Running = true
	m.Focus.seq++
	m.Status = StatusBar{Text: "session resumed"}
	return m, focusTickCmd(m.Focus.seq)
}

func (m Model) abandonSession() Model {
	if m.Focus.Phase == FocusPhaseIdle {
		return m
	}
	title := m.Focus.TaskTitle
	m.Focus = FocusState{seq: m.Focus.seq + 1}
	m.Status = StatusBar{Text: "session for " + title + " abandoned"}
	return m
}

func (m Model) onFocusTick(msg FocusTickMsg) (tea.Model, tea.Cmd) {
	if !m.Focus.Running || msg.Seq != m.Focus.seq {
		return m, nil
	}
	if m.Focus.RemainingSec > 0 {
		m.Focus.RemainingSec--
	}
	if m.Focus.RemainingSec > 0 {
		return m, focusTickCmd(m.Focus.seq)
	}

	m.Focus.Running = false
	switch m.Focus.Phase {
	case FocusPhaseWork:
		m.Focus.WorkEnded = m.now()
		if m.cfg.SessionNotes {
			m.Focus.AwaitingNote = true
			m.Status = StatusBar{Text: "work session complete, type a note and press enter"}
			return m, nil
		}
		return m.finishWork("")
	case FocusPhaseRest:
		m.Status = StatusBar{Text: "break over"}
		m.Focus = FocusState{seq: m.Focus.seq}
	}
	return m, nil
}

// finishWork stores the finished work phase and starts the break.
func (m Model) finishWork(note string) (tea.Model, tea.Cmd) {
	if m.Focus.WorkEnded.IsZero() {
		m.Focus.WorkEnded = m.now()
	}
	_, err := m.planner.RecordSession(context.Background(), m.Focus.TaskID, m.Focus.Started, m.Focus.WorkEnded, note)
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: "save session failed: " + err.Error(), IsError: true}
		m.Focus = FocusState{seq: m.Focus.seq}
		return m, nil
	}

	_, rest := m.cfg.Durations(m.Focus.Long)
	m.Focus.Phase = FocusPhaseRest
	m.Focus.AwaitingNote = false
	m.Focus.TotalSec = int(rest.Seconds())
	m.Focus.RemainingSec = m.Focus.TotalSec
	m.Focus.Running = true
	m.Focus.seq++
	m.Status = StatusBar{Text: "session saved, take a break"}
	return m, tea.Batch(focusTickCmd(m.Focus.seq), m.reloadCmd(m.planner.Today()))
}

func (m Model) renderFocusView() string {
	if m.Focus.Phase == FocusPhaseIdle {
		return ""
	}
	pct := 0.0
	if m.Focus.TotalSec > 0 {
		pct = float64(m.Focus.TotalSec-m.Focus.RemainingSec) / float64(m.Focus.TotalSec)
	}
	return views.RenderFocusPanel(views.FocusPanelData{
		TaskTitle:    m.Focus.TaskTitle,
		Phase:        string(m.Focus.Phase),
		Timer:        formatDuration(m.Focus.RemainingSec),
		ProgressView: m.progress.ViewAs(pct),
		Paused:       !m.Focus.Running && !m.Focus.AwaitingNote,
		AwaitingNote: m.Focus.AwaitingNote,
	})
}

func focusTickCmd(seq int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return FocusTickMsg{Seq: seq} })
}
