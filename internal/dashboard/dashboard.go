// Package dashboard assembles the read-only views shown to families:
// today's board, the leaderboard and per-member statistics.
package dashboard

import (
	"context"
	"fmt"
	"sort"

	"github.com/julianstephens/famquest/internal/models"
	"github.com/julianstephens/famquest/internal/progression"
	"github.com/julianstephens/famquest/internal/scheduler"
	"github.com/julianstephens/famquest/internal/storage"
	"github.com/julianstephens/famquest/internal/utils"
)

type Service struct {
	store     storage.Provider
	resolver  *utils.DateResolver
	scheduler *scheduler.Scheduler
}

func NewService(store storage.Provider, resolver *utils.DateResolver, sched *scheduler.Scheduler) *Service {
	if resolver == nil {
		resolver = utils.NewDateResolver()
	}
	if sched == nil {
		sched = scheduler.New()
	}
	return &Service{store: store, resolver: resolver, scheduler: sched}
}

// TodayHabit is one row of the daily board.
type TodayHabit struct {
	Habit       models.Habit `json:"habit"`
	CompletedBy []string     `json:"completed_by"`
}

// Done reports whether memberID has completed the habit today.
func (h TodayHabit) Done(memberID string) bool {
	for _, id := range h.CompletedBy {
		if id == memberID {
			return true
		}
	}
	return false
}

type TodayBoard struct {
	Family    models.Family   `json:"family"`
	Date      string          `json:"date"`
	DayOfWeek int             `json:"day_of_week"`
	Members   []models.Member `json:"members"`
	Habits    []TodayHabit    `json:"habits"`
}

// Today lists the active habits due today in the family's timezone, timed
// habits first, with the members who have already completed each one.
func (s *Service) Today(ctx context.Context, familyID string) (TodayBoard, error) {
	family, err := s.store.GetFamily(ctx, familyID)
	if err != nil {
		return TodayBoard{}, err
	}
	info, err := s.resolver.Info(family.Timezone)
	if err != nil {
		return TodayBoard{}, err
	}

	members, err := s.store.GetMembersForFamily(ctx, familyID)
	if err != nil {
		return TodayBoard{}, fmt.Errorf("failed to load members: %w", err)
	}
	habits, err := s.store.GetHabitsForFamily(ctx, familyID, false)
	if err != nil {
		return TodayBoard{}, fmt.Errorf("failed to load habits: %w", err)
	}
	logs, err := s.store.GetCompletionsForFamilyOnDay(ctx, familyID, info.Today)
	if err != nil {
		return TodayBoard{}, fmt.Errorf("failed to load today's completions: %w", err)
	}

	completedBy := make(map[string][]string)
	for _, l := range logs {
		completedBy[l.HabitID] = append(completedBy[l.HabitID], l.MemberID)
	}

	due := s.scheduler.FilterDue(habits, info.TodayDayOfWeek)
	s.scheduler.SortForDay(due)

	board := TodayBoard{
		Family:    family,
		Date:      info.Today,
		DayOfWeek: info.TodayDayOfWeek,
		Members:   members,
		Habits:    make([]TodayHabit, 0, len(due)),
	}
	for _, h := range due {
		done := completedBy[h.ID]
		sort.Strings(done)
		board.Habits = append(board.Habits, TodayHabit{Habit: h, CompletedBy: done})
	}
	return board, nil
}

type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	MemberID      string `json:"member_id"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	TotalXP       int    `json:"total_xp"`
	Level         int    `json:"level"`
	XPToNextLevel int    `json:"xp_to_next_level"`
	CurrentStreak int    `json:"current_streak"`
	LongestStreak int    `json:"longest_streak"`
}

// Leaderboard ranks members by total XP, ties broken by display order.
// Equal XP shares a rank.
func (s *Service) Leaderboard(ctx context.Context, familyID string) ([]LeaderboardEntry, error) {
	if _, err := s.store.GetFamily(ctx, familyID); err != nil {
		return nil, err
	}
	members, err := s.store.GetMembersForFamily(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}

	sort.SliceStable(members, func(i, j int) bool {
		if members[i].TotalXP != members[j].TotalXP {
			return members[i].TotalXP > members[j].TotalXP
		}
		return members[i].DisplayOrder < members[j].DisplayOrder
	})

	entries := make([]LeaderboardEntry, 0, len(members))
	for i, m := range members {
		rank := i + 1
		if i > 0 && m.TotalXP == members[i-1].TotalXP {
			rank = entries[i-1].Rank
		}
		entries = append(entries, LeaderboardEntry{
			Rank:          rank,
			MemberID:      m.ID,
			Name:          m.Name,
			Role:          string(m.Role),
			TotalXP:       m.TotalXP,
			Level:         m.Level,
			XPToNextLevel: progression.XPToNextLevel(m.TotalXP),
			CurrentStreak: m.CurrentStreak,
			LongestStreak: m.LongestStreak,
		})
	}
	return entries, nil
}
