package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/108city/habit-tracker/internal/calendar"
	"github.com/108city/habit-tracker/internal/constants"
	"github.com/108city/habit-tracker/internal/models"
)

type celebrationExpiredMsg struct {
	id int
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case celebrationExpiredMsg:
		if msg.id != m.celebrationID {
			return m, nil
		}
		if m.tracker.CelebrationActive() {
			return m, m.celebrationTimer()
		}
		m.celebrating = false
		return m, nil
	}

	switch m.state {
	case constants.StateAddHabit, constants.StateAddMilestone:
		return m.updateForm(msg)
	case constants.StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(keyMsg, m.keys.Tab):
		m.switchTo((m.state + 1) % tabCount)
	case key.Matches(keyMsg, m.keys.ShiftTab):
		m.switchTo((m.state - 1 + tabCount) % tabCount)
	case key.Matches(keyMsg, m.keys.Up):
		m.cursor--
		m.clampCursor()
	case key.Matches(keyMsg, m.keys.Down):
		m.cursor++
		m.clampCursor()
	case key.Matches(keyMsg, m.keys.Dismiss):
		if m.celebrating {
			m.tracker.DismissCelebration()
			m.celebrating = false
			m.celebrationID++
		}
		m.message = ""
	default:
		switch m.state {
		case constants.StateToday:
			return m.updateToday(keyMsg)
		case constants.StateHistory:
			return m.updateHistory(keyMsg)
		case constants.StateMilestones:
			return m.updateMilestones(keyMsg)
		case constants.StateArchived:
			return m.updateArchived(keyMsg)
		}
	}
	return m, nil
}

func (m *Model) switchTo(state constants.SessionState) {
	m.state = state
	m.cursor = 0
	m.column = 0
	m.message = ""
	m.clampCursor()
}

func (m Model) updateToday(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Complete), key.Matches(msg, m.keys.Skip):
		h, ok := m.selectedHabit()
		if !ok {
			return m, nil
		}
		status := models.StatusCompleted
		if key.Matches(msg, m.keys.Skip) {
			status = models.StatusSkipped
		}
		cmd := m.mutate(func() error {
			_, err := m.tracker.SetStatus(m.ctx, h.Habit.ID, m.snap.Today, status)
			return err
		})
		celebrate := m.syncCelebration()
		return m, tea.Batch(cmd, celebrate)
	case key.Matches(msg, m.keys.Add):
		m.habitForm = &HabitFormModel{Frequency: string(models.FrequencyDaily)}
		m.form = NewHabitForm(m.habitForm)
		cmd := m.openModal(constants.StateAddHabit, m.form.Init())
		return m, cmd
	case key.Matches(msg, m.keys.Archive):
		h, ok := m.selectedHabit()
		if !ok {
			return m, nil
		}
		cmd := m.mutate(func() error {
			_, err := m.tracker.ArchiveHabit(m.ctx, h.Habit.ID)
			return err
		})
		return m, cmd
	case key.Matches(msg, m.keys.Delete):
		if h, ok := m.selectedHabit(); ok {
			m.deleting = &deleteTarget{id: h.Habit.ID, name: h.Habit.Name}
			cmd := m.openModal(constants.StateConfirmDelete, nil)
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) updateHistory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Left):
		if m.column < m.historyDays-1 {
			m.column++
		}
	case key.Matches(msg, m.keys.Right):
		if m.column > 0 {
			m.column--
		}
	case key.Matches(msg, m.keys.Enter):
		h, ok := m.selectedHabit()
		if !ok {
			return m, nil
		}
		day := m.focusedDay()
		cmd := m.mutate(func() error {
			_, err := m.tracker.AdvanceStatus(m.ctx, h.Habit.ID, day)
			return err
		})
		celebrate := m.syncCelebration()
		return m, tea.Batch(cmd, celebrate)
	}
	return m, nil
}

func (m Model) updateMilestones(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Add):
		m.milestoneForm = &MilestoneFormModel{Start: m.snap.Today.String()}
		m.form = NewMilestoneForm(m.milestoneForm)
		cmd := m.openModal(constants.StateAddMilestone, m.form.Init())
		return m, cmd
	case key.Matches(msg, m.keys.Delete):
		if ms, ok := m.selectedMilestone(); ok {
			m.deleting = &deleteTarget{milestone: true, id: ms.ID, name: ms.Title}
			cmd := m.openModal(constants.StateConfirmDelete, nil)
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) updateArchived(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	h, ok := m.selectedHabit()
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Archive):
		cmd := m.mutate(func() error {
			_, err := m.tracker.ReactivateHabit(m.ctx, h.Habit.ID)
			return err
		})
		return m, cmd
	case key.Matches(msg, m.keys.Delete):
		m.deleting = &deleteTarget{id: h.Habit.ID, name: h.Habit.Name}
		cmd := m.openModal(constants.StateConfirmDelete, nil)
		return m, cmd
	}
	return m, nil
}

func (m *Model) openModal(state constants.SessionState, cmd tea.Cmd) tea.Cmd {
	m.previousState = m.state
	m.state = state
	m.formErr = ""
	m.message = ""
	return cmd
}

func (m *Model) closeModal() {
	m.state = m.previousState
	m.form = nil
	m.deleting = nil
	m.clampCursor()
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.closeModal()
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if err := m.submitForm(); err != nil {
			// Stay in the form so the user can correct the input
			m.formErr = err.Error()
			m.form.State = huh.StateNormal
			return m, cmd
		}
		m.formErr = ""
		m.closeModal()
		reload := m.reload()
		return m, tea.Batch(cmd, reload)
	case huh.StateAborted:
		m.closeModal()
	}
	return m, cmd
}

func (m *Model) submitForm() error {
	if m.state == constants.StateAddMilestone {
		in, err := m.milestoneForm.Input()
		if err != nil {
			return err
		}
		_, err = m.tracker.CreateMilestone(m.ctx, in)
		return err
	}
	in, err := m.habitForm.Input()
	if err != nil {
		return err
	}
	_, err = m.tracker.CreateHabit(m.ctx, in)
	return err
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "y", "Y":
		target := m.deleting
		m.closeModal()
		if target == nil {
			return m, nil
		}
		cmd := m.mutate(func() error {
			if target.milestone {
				return m.tracker.DeleteMilestone(m.ctx, target.id)
			}
			return m.tracker.DeleteHabit(m.ctx, target.id)
		})
		return m, cmd
	case "n", "N", "esc":
		m.closeModal()
	}
	return m, nil
}

// mutate runs fn and reloads the snapshot. A failing fn is shown to the user;
// a failing reload ends the program.
func (m *Model) mutate(fn func() error) tea.Cmd {
	m.message = ""
	if err := fn(); err != nil {
		m.message = err.Error()
		return nil
	}
	return m.reload()
}

func (m *Model) reload() tea.Cmd {
	if err := m.refresh(); err != nil {
		m.err = err
		m.quitting = true
		return tea.Quit
	}
	return nil
}

// syncCelebration shows the banner while the tracker's window is open and
// rearms the dismissal timer, so a re-fire restarts it.
func (m *Model) syncCelebration() tea.Cmd {
	if !m.tracker.CelebrationActive() {
		m.celebrating = false
		return nil
	}
	m.celebrating = true
	m.celebrationID++
	return m.celebrationTimer()
}

func (m Model) celebrationTimer() tea.Cmd {
	id := m.celebrationID
	return tea.Tick(m.tracker.CelebrationRemaining(), func(time.Time) tea.Msg {
		return celebrationExpiredMsg{id: id}
	})
}

func (m Model) focusedDay() calendar.Day {
	return m.snap.Today.AddDays(-m.column)
}
