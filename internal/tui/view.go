package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch {
	case m.err != nil:
		content = errorStyle.Render("Error: " + m.err.Error())
	case m.tab == TabToday:
		content = m.viewToday()
	case m.tab == TabLeaderboard:
		content = m.viewLeaderboard()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		docStyle.Render(content),
		m.status,
		m.help.View(m.keys),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range tabTitles {
		if m.tab == Tab(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func cell(width int, s string) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}

func (m Model) viewToday() string {
	b := m.board
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("%s · %s %s", b.Family.Name, time.Weekday(b.DayOfWeek), b.Date)))
	sb.WriteString("\n\n")
	if len(b.Habits) == 0 {
		sb.WriteString(mutedStyle.Render("Nothing due today."))
		return sb.String()
	}

	header := []string{cell(7, "Time"), cell(28, "Habit")}
	for i, mem := range b.Members {
		name := cell(max(len(mem.Name)+2, 6), mem.Name)
		if i == m.member {
			name = headerStyle.Render(name)
		}
		header = append(header, name)
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, header...))
	sb.WriteString("\n")

	for r, row := range b.Habits {
		cells := []string{cell(7, row.Habit.TimeOfDay), cell(28, strings.TrimSpace(fmt.Sprintf("%s %s +%d", row.Habit.Icon, row.Habit.Title, row.Habit.XPReward)))}
		for c, mem := range b.Members {
			mark := "○"
			switch {
			case !row.Habit.IsAssignedTo(mem.ID):
				mark = "·"
			case row.Done(mem.ID):
				mark = "✓"
			}
			text := cell(max(len(mem.Name)+2, 6), mark)
			if r == m.cursor && c == m.member {
				text = selectedStyle.Render(text)
			}
			cells = append(cells, text)
		}
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) viewLeaderboard() string {
	if len(m.leaderboard) == 0 {
		return mutedStyle.Render("No members yet.")
	}
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top,
		cell(6, "Rank"), cell(16, "Name"), cell(7, "Level"), cell(9, "XP"), cell(10, "To next"), cell(10, "Streak"))))
	sb.WriteString("\n")
	for _, e := range m.leaderboard {
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			cell(6, fmt.Sprintf("#%d", e.Rank)),
			cell(16, e.Name),
			cell(7, fmt.Sprintf("%d", e.Level)),
			cell(9, fmt.Sprintf("%d", e.TotalXP)),
			cell(10, fmt.Sprintf("%d", e.XPToNextLevel)),
			cell(10, fmt.Sprintf("%d/%d", e.CurrentStreak, e.LongestStreak)),
		))
		sb.WriteString("\n")
	}
	return sb.String()
}
