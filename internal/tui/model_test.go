package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/famquest/internal/completion"
	"github.com/julianstephens/famquest/internal/dashboard"
	"github.com/julianstephens/famquest/internal/models"
	"github.com/julianstephens/famquest/internal/scheduler"
	"github.com/julianstephens/famquest/internal/storage/sqlite"
	"github.com/julianstephens/famquest/internal/testutil"
	"github.com/julianstephens/famquest/internal/utils"
)

func newTestModel(t *testing.T) (Model, *sqlite.Store) {
	t.Helper()
	store := testutil.NewStore(t)
	testutil.AddFamily(t, store, "fam", "UTC")
	testutil.AddMember(t, store, "fam", "ana", models.Progress{})
	testutil.AddMember(t, store, "fam", "ben", models.Progress{})
	testutil.AddHabit(t, store, "fam", "piano", 20, []string{"ana"}, func(h *models.Habit) {
		h.TimeOfDay = "17:00"
	})
	testutil.AddHabit(t, store, "fam", "teeth", 10, []string{"ana", "ben"})

	resolver := utils.NewDateResolverWithClock(testutil.Clock("2026-10-15T09:00:00Z"))
	sched := scheduler.New()
	m := NewModel(
		dashboard.NewService(store, resolver, sched),
		completion.NewService(store, resolver, sched, completion.Options{}),
		"fam",
	)
	return send(t, m, m.Init()()), store
}

// send applies msg and runs any follow-up command to completion.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	for cmd != nil {
		out := cmd()
		if _, ok := out.(tea.QuitMsg); ok {
			return m
		}
		next, cmd = m.Update(out)
		m = next.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelLoadsBoard(t *testing.T) {
	m, _ := newTestModel(t)
	if m.err != nil {
		t.Fatalf("load error: %v", m.err)
	}
	if len(m.board.Habits) != 2 || m.board.Habits[0].Habit.ID != "piano" {
		t.Fatalf("board habits = %+v", m.board.Habits)
	}
	if len(m.leaderboard) != 2 {
		t.Errorf("leaderboard = %+v", m.leaderboard)
	}
	if view := m.View(); !strings.Contains(view, "teeth") || !strings.Contains(view, "Family fam") {
		t.Errorf("view missing board content:\n%s", view)
	}
}

func TestModelCompletesSelectedCell(t *testing.T) {
	m, store := newTestModel(t)

	m = send(t, m, runes("j"))
	m = send(t, m, runes("l"))
	if m.cursor != 1 || m.member != 1 {
		t.Fatalf("selection = (%d, %d), want (1, 1)", m.cursor, m.member)
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(m.status, "ben +10 XP") {
		t.Errorf("status = %q", m.status)
	}
	if !m.board.Habits[1].Done("ben") {
		t.Error("board was not refreshed after completion")
	}
	ben, err := store.GetMember(context.Background(), "ben")
	if err != nil {
		t.Fatal(err)
	}
	if ben.TotalXP != 10 {
		t.Errorf("ben XP = %d, want 10", ben.TotalXP)
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(m.status, "already completed") {
		t.Errorf("repeat status = %q", m.status)
	}
}

func TestModelReportsUnassignedMember(t *testing.T) {
	m, _ := newTestModel(t)

	// piano is assigned to ana only
	m = send(t, m, runes("l"))
	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	if !strings.Contains(m.status, "Could not complete piano") {
		t.Errorf("status = %q", m.status)
	}
}

func TestModelSelectionStaysInBounds(t *testing.T) {
	m, _ := newTestModel(t)
	for range 5 {
		m = send(t, m, runes("j"))
		m = send(t, m, runes("l"))
	}
	if m.cursor != 1 || m.member != 1 {
		t.Errorf("selection = (%d, %d), want (1, 1)", m.cursor, m.member)
	}
	m = send(t, m, runes("k"))
	m = send(t, m, runes("h"))
	m = send(t, m, runes("h"))
	if m.cursor != 0 || m.member != 0 {
		t.Errorf("selection = (%d, %d), want (0, 0)", m.cursor, m.member)
	}
}

func TestModelTabs(t *testing.T) {
	m, _ := newTestModel(t)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.tab != TabLeaderboard {
		t.Fatalf("tab = %d, want leaderboard", m.tab)
	}
	if view := m.View(); !strings.Contains(view, "#1") {
		t.Errorf("leaderboard view:\n%s", view)
	}
	// navigation keys are ignored off the board
	m = send(t, m, runes("j"))
	if m.cursor != 0 {
		t.Errorf("cursor moved on leaderboard tab: %d", m.cursor)
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.tab != TabToday {
		t.Errorf("tab = %d, want today", m.tab)
	}

	m = send(t, m, runes("q"))
	if !m.quitting || m.View() != "" {
		t.Error("q should quit")
	}
}
