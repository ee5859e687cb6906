package dashboard

import (
	"context"
	"fmt"

	"github.com/julianstephens/famquest/internal/constants"
	"github.com/julianstephens/famquest/internal/models"
	"github.com/julianstephens/famquest/internal/utils"
)

type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Icon        string `json:"icon"`
	Requirement int    `json:"requirement"`
	Unlocked    bool   `json:"unlocked"`
	Progress    int    `json:"progress"`
}

type DayRate struct {
	Date      string  `json:"date"`
	Completed int     `json:"completed"`
	Rate      float64 `json:"rate"`
}

type CalendarDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type MemberStats struct {
	Member         models.Member `json:"member"`
	Month          string        `json:"month"`
	TotalCompleted int           `json:"total_completed"`
	TotalXPEarned  int           `json:"total_xp_earned"`
	AssignedHabits int           `json:"assigned_habits"`
	// AverageRate is the mean of the daily rates over the last seven days, in percent.
	AverageRate   float64       `json:"average_rate"`
	LastSevenDays []DayRate     `json:"last_seven_days"`
	Achievements  []Achievement `json:"achievements"`
	Calendar      []CalendarDay `json:"calendar"`
}

type achievementRule struct {
	id          string
	title       string
	icon        string
	requirement int
	value       func(s MemberStats) int
}

var achievementRules = []achievementRule{
	{"first_step", "First step", "🎯", 1, completedCount},
	{"habit_master", "Habit master", "⭐", 10, completedCount},
	{"century", "Century", "💯", 100, completedCount},
	{"streak_3", "3-day streak", "🔥", 3, longestStreak},
	{"streak_7", "One-week streak", "🌟", 7, longestStreak},
	{"streak_30", "One-month streak", "🏆", 30, longestStreak},
	{"level_5", "Level 5", "🎖️", 5, func(s MemberStats) int { return s.Member.Level }},
	{"xp_1000", "XP collector", "💎", 1000, func(s MemberStats) int { return s.Member.TotalXP }},
}

func completedCount(s MemberStats) int { return s.TotalCompleted }
func longestStreak(s MemberStats) int { return s.Member.LongestStreak }

// Achievements evaluates the fixed badge list against the stats.
func Achievements(s MemberStats) []Achievement {
	out := make([]Achievement, 0, len(achievementRules))
	for _, r := range achievementRules {
		v := r.value(s)
		out = append(out, Achievement{
			ID:          r.id,
			Title:       r.title,
			Icon:        r.icon,
			Requirement: r.requirement,
			Unlocked:    v >= r.requirement,
			Progress:    min(v, r.requirement),
		})
	}
	return out
}

// MemberStats summarizes a member's history. month is YYYY-MM and selects
// the calendar; empty means the current month in the family's timezone.
func (s *Service) MemberStats(ctx context.Context, memberID, month string) (MemberStats, error) {
	member, err := s.store.GetMember(ctx, memberID)
	if err != nil {
		return MemberStats{}, err
	}
	family, err := s.store.GetFamily(ctx, member.FamilyID)
	if err != nil {
		return MemberStats{}, err
	}
	today, err := s.resolver.Today(family.Timezone)
	if err != nil {
		return MemberStats{}, err
	}
	if month == "" {
		month = today[:len(constants.MonthFormat)]
	}
	first, last, err := utils.MonthBounds(month)
	if err != nil {
		return MemberStats{}, err
	}

	logs, err := s.store.GetCompletionsForMember(ctx, memberID, "", "")
	if err != nil {
		return MemberStats{}, fmt.Errorf("failed to load completions: %w", err)
	}
	habits, err := s.store.GetHabitsForFamily(ctx, family.ID, false)
	if err != nil {
		return MemberStats{}, fmt.Errorf("failed to load habits: %w", err)
	}

	stats := MemberStats{Member: member, Month: month, TotalCompleted: len(logs)}
	for _, h := range habits {
		if h.IsAssignedTo(memberID) {
			stats.AssignedHabits++
		}
	}

	perDay := make(map[string]int)
	for _, l := range logs {
		stats.TotalXPEarned += l.XPEarned
		perDay[l.Date]++
	}

	var rateSum float64
	for i := constants.StatsWindowDays - 1; i >= 0; i-- {
		day, err := utils.AddDays(today, -i)
		if err != nil {
			return MemberStats{}, err
		}
		dr := DayRate{Date: day, Completed: perDay[day]}
		if stats.AssignedHabits > 0 {
			dr.Rate = min(100, float64(dr.Completed)/float64(stats.AssignedHabits)*100)
		}
		rateSum += dr.Rate
		stats.LastSevenDays = append(stats.LastSevenDays, dr)
	}
	stats.AverageRate = rateSum / float64(constants.StatsWindowDays)

	for day := first; day <= last; {
		stats.Calendar = append(stats.Calendar, CalendarDay{Date: day, Count: perDay[day]})
		if day, err = utils.AddDays(day, 1); err != nil {
			return MemberStats{}, err
		}
	}

	stats.Achievements = Achievements(stats)
	return stats, nil
}
