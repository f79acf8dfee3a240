package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	pbar "github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/108city/habit-tracker/internal/constants"
	"github.com/108city/habit-tracker/internal/models"
	"github.com/108city/habit-tracker/internal/progress"
	"github.com/108city/habit-tracker/internal/tracker"
)

// tabCount is the number of browsable views; states past it are modal.
const tabCount = 4

var tabTitles = []string{"Today", "History", "Milestones", "Archived"}

type HabitFormModel struct {
	Name      string
	Frequency string
	Times     string
	Days      string
	Target    string
}

type MilestoneFormModel struct {
	Title string
	Start string
	End   string
}

type deleteTarget struct {
	milestone bool
	id        string
	name      string
}

type Model struct {
	ctx           context.Context
	tracker       *tracker.Service
	state         constants.SessionState
	previousState constants.SessionState
	keys          KeyMap
	help          help.Model
	bar           pbar.Model
	snap          progress.Snapshot
	historyDays   int
	cursor        int
	column        int
	form          *huh.Form
	habitForm     *HabitFormModel
	milestoneForm *MilestoneFormModel
	formErr       string
	message       string
	deleting      *deleteTarget
	celebrating   bool
	celebrationID int
	err           error
	quitting      bool
	width         int
	height        int
}

type Option func(*Model)

// WithHistoryDays sets how many days the history grid shows.
func WithHistoryDays(n int) Option {
	return func(m *Model) {
		if n > 0 && n <= constants.MaxHistoryDays {
			m.historyDays = n
		}
	}
}

func NewModel(ctx context.Context, svc *tracker.Service, opts ...Option) (Model, error) {
	m := Model{
		ctx:         ctx,
		tracker:     svc,
		state:       constants.StateToday,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		bar:         pbar.New(pbar.WithDefaultGradient(), pbar.WithWidth(30)),
		historyDays: constants.DefaultHistoryDays,
	}
	for _, opt := range opts {
		opt(&m)
	}
	if err := m.refresh(); err != nil {
		return Model{}, err
	}
	m.celebrating = svc.CelebrationActive()
	return m, nil
}

// Run starts the interactive program and blocks until it exits.
func Run(ctx context.Context, svc *tracker.Service, opts ...Option) error {
	m, err := NewModel(ctx, svc, opts...)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok && fm.err != nil {
		return fm.err
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	if m.celebrating {
		return m.celebrationTimer()
	}
	return nil
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case constants.StateToday:
		keys = append(keys, m.keys.Complete, m.keys.Skip, m.keys.Add, m.keys.Archive, m.keys.Delete)
	case constants.StateHistory:
		keys = append(keys, m.keys.Enter)
	case constants.StateMilestones:
		keys = append(keys, m.keys.Add, m.keys.Delete)
	case constants.StateArchived:
		keys = append(keys, m.keys.Archive, m.keys.Delete)
	}
	if m.celebrating {
		keys = append(keys, m.keys.Dismiss)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help, m.keys.Dismiss}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}

	var actions []key.Binding
	switch m.state {
	case constants.StateToday:
		actions = []key.Binding{m.keys.Complete, m.keys.Skip, m.keys.Add, m.keys.Archive, m.keys.Delete}
	case constants.StateHistory:
		navigation = append(navigation, m.keys.Left, m.keys.Right)
		actions = []key.Binding{m.keys.Enter}
	case constants.StateMilestones:
		actions = []key.Binding{m.keys.Add, m.keys.Delete}
	case constants.StateArchived:
		actions = []key.Binding{m.keys.Archive, m.keys.Delete}
	}

	return [][]key.Binding{global, navigation, actions}
}

// refresh re-reads everything from the store and clamps the cursor to the
// current view.
func (m *Model) refresh() error {
	snap, err := m.tracker.Snapshot(m.ctx)
	if err != nil {
		return err
	}
	m.snap = snap
	m.clampCursor()
	return nil
}

func (m *Model) clampCursor() {
	n := m.rowCount()
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) rowCount() int {
	switch m.state {
	case constants.StateToday, constants.StateHistory:
		return len(m.snap.ActiveHabits())
	case constants.StateMilestones:
		return len(m.snap.Milestones)
	case constants.StateArchived:
		return len(m.snap.ArchivedHabits())
	}
	return 0
}

func (m Model) selectedHabit() (models.HabitWithLogs, bool) {
	var rows []models.HabitWithLogs
	switch m.state {
	case constants.StateToday, constants.StateHistory:
		rows = m.snap.ActiveHabits()
	case constants.StateArchived:
		rows = m.snap.ArchivedHabits()
	}
	if m.cursor < 0 || m.cursor >= len(rows) {
		return models.HabitWithLogs{}, false
	}
	return rows[m.cursor], true
}

func (m Model) selectedMilestone() (models.Milestone, bool) {
	if m.state != constants.StateMilestones || m.cursor < 0 || m.cursor >= len(m.snap.Milestones) {
		return models.Milestone{}, false
	}
	return m.snap.Milestones[m.cursor], true
}
