package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/famquest/internal/completion"
	"github.com/julianstephens/famquest/internal/dashboard"
)

type Tab int

const (
	TabToday Tab = iota
	TabLeaderboard
	tabCount
)

var tabTitles = [tabCount]string{"Today", "Leaderboard"}

// loadedMsg carries a fresh read of the board and leaderboard
type loadedMsg struct {
	board       dashboard.TodayBoard
	leaderboard []dashboard.LeaderboardEntry
	err         error
}

// completedMsg reports one completion attempt
type completedMsg struct {
	memberName string
	habitTitle string
	outcome    completion.Outcome
	err        error
}

type Model struct {
	dashboard   *dashboard.Service
	completions *completion.Service
	familyID    string

	keys KeyMap
	help help.Model
	tab  Tab

	board       dashboard.TodayBoard
	leaderboard []dashboard.LeaderboardEntry
	// cursor is the selected habit row, member the selected member column
	cursor int
	member int

	status   string
	err      error
	width    int
	height   int
	quitting bool
}

func NewModel(dash *dashboard.Service, completions *completion.Service, familyID string) Model {
	return Model{
		dashboard:   dash,
		completions: completions,
		familyID:    familyID,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		tab:         TabToday,
	}
}

func (m Model) Init() tea.Cmd {
	return m.load
}

func (m Model) load() tea.Msg {
	ctx := context.Background()
	board, err := m.dashboard.Today(ctx, m.familyID)
	if err != nil {
		return loadedMsg{err: err}
	}
	entries, err := m.dashboard.Leaderboard(ctx, m.familyID)
	return loadedMsg{board: board, leaderboard: entries, err: err}
}

// complete records the selected habit for the selected member
func (m Model) complete() tea.Cmd {
	if len(m.board.Habits) == 0 || len(m.board.Members) == 0 {
		return nil
	}
	row := m.board.Habits[m.cursor]
	member := m.board.Members[m.member]
	return func() tea.Msg {
		out, err := m.completions.CompleteHabitForMember(context.Background(), m.familyID, row.Habit.ID, member.ID)
		return completedMsg{memberName: member.Name, habitTitle: row.Habit.Title, outcome: out, err: err}
	}
}

// clamp keeps the selection inside the current board after a reload
func (m *Model) clamp() {
	if m.cursor >= len(m.board.Habits) {
		m.cursor = max(len(m.board.Habits)-1, 0)
	}
	if m.member >= len(m.board.Members) {
		m.member = max(len(m.board.Members)-1, 0)
	}
}
