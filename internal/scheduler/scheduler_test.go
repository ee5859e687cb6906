package scheduler

import (
	"testing"

	"github.com/julianstephens/famquest/internal/constants"
	"github.com/julianstephens/famquest/internal/models"
)

func TestIsDueOn(t *testing.T) {
	s := New()

	tests := []struct {
		name  string
		habit models.Habit
		day   int
		want  bool
	}{
		{"daily on sunday", models.Habit{Frequency: constants.FrequencyDaily}, 0, true},
		{"daily on saturday", models.Habit{Frequency: constants.FrequencyDaily}, 6, true},
		{"weekly MWF on wednesday", models.Habit{Frequency: constants.FrequencyWeekly, DaysOfWeek: []int{1, 3, 5}}, 3, true},
		{"weekly MWF on sunday", models.Habit{Frequency: constants.FrequencyWeekly, DaysOfWeek: []int{1, 3, 5}}, 0, false},
		{"weekly with no days is never due", models.Habit{Frequency: constants.FrequencyWeekly}, 1, false},
		{"weekly with empty slice is never due", models.Habit{Frequency: constants.FrequencyWeekly, DaysOfWeek: []int{}}, 4, false},
		{"monthly ignores days", models.Habit{Frequency: constants.FrequencyMonthly, DaysOfWeek: []int{2}}, 5, true},
		{"daily ignores days_of_week", models.Habit{Frequency: constants.FrequencyDaily, DaysOfWeek: []int{2}}, 5, true},
		{"unknown frequency is permissive", models.Habit{ID: "h1", Frequency: "fortnightly"}, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.IsDueOn(tt.habit, tt.day); got != tt.want {
				t.Errorf("IsDueOn() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsDueOn_DailyEveryDay(t *testing.T) {
	s := New()
	h := models.Habit{Frequency: constants.FrequencyDaily}
	for day := 0; day <= 6; day++ {
		if !s.IsDueOn(h, day) {
			t.Errorf("daily habit not due on day %d", day)
		}
	}
}

func TestFilterDue(t *testing.T) {
	s := New()
	habits := []models.Habit{
		{ID: "a", Frequency: constants.FrequencyDaily},
		{ID: "b", Frequency: constants.FrequencyWeekly, DaysOfWeek: []int{6}},
		{ID: "c", Frequency: constants.FrequencyWeekly, DaysOfWeek: []int{2, 4}},
		{ID: "d", Frequency: constants.FrequencyMonthly},
	}

	due := s.FilterDue(habits, 4)
	var ids []string
	for _, h := range due {
		ids = append(ids, h.ID)
	}
	if len(ids) != 3 || ids[0] != "a" || ids[1] != "c" || ids[2] != "d" {
		t.Errorf("FilterDue() = %v, want [a c d]", ids)
	}
}

func TestSortForDay(t *testing.T) {
	s := New()
	habits := []models.Habit{
		{ID: "untimed-2", DisplayOrder: 2},
		{ID: "evening", TimeOfDay: "19:00", DisplayOrder: 5},
		{ID: "untimed-1", DisplayOrder: 1},
		{ID: "morning", TimeOfDay: "07:30", DisplayOrder: 9},
		{ID: "morning-early-order", TimeOfDay: "07:30", DisplayOrder: 3},
	}

	s.SortForDay(habits)

	want := []string{"morning-early-order", "morning", "evening", "untimed-1", "untimed-2"}
	for i, id := range want {
		if habits[i].ID != id {
			t.Fatalf("position %d = %s, want %s (full order %v)", i, habits[i].ID, id, habits)
		}
	}
}
