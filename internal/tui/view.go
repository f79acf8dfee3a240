package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/108city/habit-tracker/internal/calendar"
	"github.com/108city/habit-tracker/internal/constants"
	"github.com/108city/habit-tracker/internal/models"
)

const nameWidth = 20

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string

	switch m.state {
	case constants.StateToday:
		content = m.viewToday()
	case constants.StateHistory:
		content = m.viewHistory()
	case constants.StateMilestones:
		content = m.viewMilestones()
	case constants.StateArchived:
		content = m.viewArchived()
	case constants.StateAddHabit, constants.StateAddMilestone:
		content = m.viewForm()
	case constants.StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	var banner string
	if m.celebrating {
		banner = celebrationStyle.Render("🎉 All habits completed today!")
	}

	var message string
	if m.message != "" {
		message = dangerStyle.Render(m.message)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		banner,
		docStyle.Render(content),
		message,
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	current := m.state
	if current >= tabCount {
		current = m.previousState
	}
	var tabs []string
	for i, title := range tabTitles {
		if current == constants.SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewToday() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.snap.Today.Format("Monday, January 2 2006")))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %3d%%  %s\n\n",
		m.bar.ViewAs(float64(m.snap.TodayProgress)/100),
		m.snap.TodayProgress,
		m.snap.Consistency,
	)

	habits := m.snap.ActiveHabits()
	if len(habits) == 0 {
		b.WriteString(mutedStyle.Render("No active habits.\nPress 'a' to add one."))
		return b.String()
	}
	for i, h := range habits {
		line := fmt.Sprintf("%s %-*s  %-14s %3d%%",
			statusSymbol(h.StatusOn(m.snap.Today)),
			nameWidth, truncate(h.Habit.Name, nameWidth),
			h.Habit.DescribeFrequency(),
			m.snap.SuccessRates[h.Habit.ID],
		)
		b.WriteString(m.row(i, line))
	}
	fmt.Fprintf(&b, "\n%d/%d completed", m.snap.CompletedToday, m.snap.ActiveCount)
	return b.String()
}

func (m Model) viewHistory() string {
	habits := m.snap.ActiveHabits()
	if len(habits) == 0 {
		return mutedStyle.Render("No active habits.")
	}

	days := calendar.Range(m.snap.Today.AddDays(1-m.historyDays), m.snap.Today)
	focused := m.focusedDay()

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", nameWidth+2))
	for _, d := range days {
		fmt.Fprintf(&b, "%3d", d.DayOfMonth())
	}
	b.WriteString("\n")

	for i, h := range habits {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		b.WriteString(cursor)
		fmt.Fprintf(&b, "%-*s", nameWidth, truncate(h.Habit.Name, nameWidth))
		for _, d := range days {
			cell := "  " + statusSymbol(h.StatusOn(d))
			if i == m.cursor && d.Equal(focused) {
				cell = focusedCellStyle.Render(cell)
			}
			b.WriteString(cell)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n%s  %s",
		mutedStyle.Render(focused.Format("Mon Jan 2")),
		mutedStyle.Render("✓ completed  – skipped  · unlogged"),
	)
	return b.String()
}

func (m Model) viewMilestones() string {
	if len(m.snap.Milestones) == 0 {
		return mutedStyle.Render("No milestones yet.\nPress 'a' to add one.")
	}

	var b strings.Builder
	for i, ms := range m.snap.Milestones {
		agg := m.snap.MilestoneAggregates[ms.ID]
		marker := " "
		if m.snap.ActiveMilestone != nil && m.snap.ActiveMilestone.ID == ms.ID {
			marker = "*"
		}
		header := fmt.Sprintf("%s %s  %s  %s → %s",
			marker,
			ms.Title,
			mutedStyle.Render(string(agg.Phase)),
			ms.StartDate,
			ms.EndDate,
		)
		b.WriteString(m.row(i, header))
		fmt.Fprintf(&b, "    %s %3d%%  day %d/%d  success %d%% (%d/%d)\n\n",
			m.bar.ViewAs(float64(agg.TimeProgress)/100),
			agg.TimeProgress,
			agg.DaysPassed, agg.TotalDays,
			agg.SuccessRate,
			agg.CompletedSum, agg.PossibleSum,
		)
	}
	b.WriteString(mutedStyle.Render("* scopes success rates"))
	return b.String()
}

func (m Model) viewArchived() string {
	habits := m.snap.ArchivedHabits()
	if len(habits) == 0 {
		return mutedStyle.Render("No archived habits.")
	}
	var b strings.Builder
	for i, h := range habits {
		line := fmt.Sprintf("%-*s  %s", nameWidth, truncate(h.Habit.Name, nameWidth), h.Habit.DescribeFrequency())
		b.WriteString(m.row(i, line))
	}
	return b.String()
}

func (m Model) viewForm() string {
	if m.form == nil {
		return ""
	}
	if m.formErr == "" {
		return m.form.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.form.View(), "", dangerStyle.Render(m.formErr))
}

func (m Model) viewConfirmDelete() string {
	prompt := "Delete this habit and all of its logs?"
	name := ""
	if m.deleting != nil {
		name = m.deleting.name
		if m.deleting.milestone {
			prompt = "Delete this milestone?"
		}
	}
	return lipgloss.Place(m.width, max(m.height-4, 0),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(prompt),
			warningStyle.Render(name),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}

func (m Model) row(i int, line string) string {
	if i == m.cursor {
		return selectedStyle.Render("> "+line) + "\n"
	}
	return "  " + line + "\n"
}

func statusSymbol(s models.Status) string {
	switch s {
	case models.StatusCompleted:
		return completedStyle.Render("✓")
	case models.StatusSkipped:
		return skippedStyle.Render("–")
	}
	return mutedStyle.Render("·")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
