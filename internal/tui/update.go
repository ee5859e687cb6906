package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case loadedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.board = msg.board
			m.leaderboard = msg.leaderboard
			m.clamp()
		}

	case completedMsg:
		switch {
		case msg.err != nil:
			m.status = errorStyle.Render(fmt.Sprintf("Could not complete %s: %v", msg.habitTitle, msg.err))
		case !msg.outcome.Accepted:
			m.status = mutedStyle.Render(fmt.Sprintf("%s already completed %s today", msg.memberName, msg.habitTitle))
		case msg.outcome.LeveledUp:
			m.status = levelUpStyle.Render(fmt.Sprintf("%s +%d XP · LEVEL UP %d → %d", msg.memberName,
				msg.outcome.XPEarned, msg.outcome.OldLevel, msg.outcome.NewLevel))
		default:
			m.status = successStyle.Render(fmt.Sprintf("%s +%d XP · 🔥 %d", msg.memberName,
				msg.outcome.XPEarned, msg.outcome.CurrentStreak))
		}
		return m, m.load

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Tab):
			m.tab = (m.tab + 1) % tabCount
		case key.Matches(msg, m.keys.ShiftTab):
			m.tab = (m.tab - 1 + tabCount) % tabCount
		case key.Matches(msg, m.keys.Refresh):
			return m, m.load
		}

		if m.tab != TabToday {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.board.Habits)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Left):
			if m.member > 0 {
				m.member--
			}
		case key.Matches(msg, m.keys.Right):
			if m.member < len(m.board.Members)-1 {
				m.member++
			}
		case key.Matches(msg, m.keys.Complete):
			return m, m.complete()
		}
	}

	return m, nil
}
