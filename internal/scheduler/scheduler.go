package scheduler

import (
	"slices"
	"sort"

	"github.com/julianstephens/famquest/internal/constants"
	"github.com/julianstephens/famquest/internal/logger"
	"github.com/julianstephens/famquest/internal/models"
)

type Scheduler struct{}

func New() *Scheduler {
	return &Scheduler{}
}

// IsDueOn reports whether a habit is due on the given day of week (0=Sunday).
// Monthly habits are due every day; there is no day-of-month rule.
func (s *Scheduler) IsDueOn(habit models.Habit, dayOfWeek int) bool {
	switch habit.Frequency {
	case constants.FrequencyDaily:
		return true
	case constants.FrequencyWeekly:
		if len(habit.DaysOfWeek) == 0 {
			return false
		}
		return slices.Contains(habit.DaysOfWeek, dayOfWeek)
	case constants.FrequencyMonthly:
		return true
	default:
		logger.Warn("Habit has unknown frequency, treating as due",
			"habit", habit.ID, "frequency", habit.Frequency)
		return true
	}
}

// FilterDue returns the habits due on dayOfWeek, preserving input order
func (s *Scheduler) FilterDue(habits []models.Habit, dayOfWeek int) []models.Habit {
	due := make([]models.Habit, 0, len(habits))
	for _, h := range habits {
		if s.IsDueOn(h, dayOfWeek) {
			due = append(due, h)
		}
	}
	return due
}

// SortForDay orders habits the way they are shown on the day board:
// habits with a time of day first (earliest first), then by display order.
func (s *Scheduler) SortForDay(habits []models.Habit) {
	sort.SliceStable(habits, func(i, j int) bool {
		a, b := habits[i], habits[j]
		if (a.TimeOfDay != "") != (b.TimeOfDay != "") {
			return a.TimeOfDay != ""
		}
		if a.TimeOfDay != b.TimeOfDay {
			return a.TimeOfDay < b.TimeOfDay
		}
		return a.DisplayOrder < b.DisplayOrder
	})
}
