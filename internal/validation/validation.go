package validation

import (
	"fmt"
	"strings"

	"github.com/julianstephens/famquest/internal/constants"
	fqerrors "github.com/julianstephens/famquest/internal/errors"
	"github.com/julianstephens/famquest/internal/models"
	"github.com/julianstephens/famquest/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictMissingName        ConflictType = "missing_name"
	ConflictInvalidTimezone    ConflictType = "invalid_timezone"
	ConflictInvalidRole        ConflictType = "invalid_role"
	ConflictInvalidAge         ConflictType = "invalid_age"
	ConflictDuplicateName      ConflictType = "duplicate_name"
	ConflictInvalidXPReward    ConflictType = "invalid_xp_reward"
	ConflictInvalidFrequency   ConflictType = "invalid_frequency"
	ConflictMissingDaysOfWeek  ConflictType = "missing_days_of_week"
	ConflictInvalidDayOfWeek   ConflictType = "invalid_day_of_week"
	ConflictNoMembers          ConflictType = "no_members"
	ConflictForeignMember      ConflictType = "foreign_member"
	ConflictInvalidTimeOfDay   ConflictType = "invalid_time_of_day"
	ConflictStreakInconsistent ConflictType = "streak_inconsistent"
)

// Conflict describes one problem with a family, member or habit
type Conflict struct {
	Type        ConflictType
	Description string
	Items       []string // names or IDs involved
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	report := "Conflicts detected:\n"
	for _, conflict := range vr.Conflicts {
		report += fmt.Sprintf("- %s\n", conflict.Description)
	}
	return report
}

// Err returns nil when there are no conflicts, otherwise an error wrapping
// ErrInvalidInput that lists every description.
func (vr *ValidationResult) Err() error {
	if !vr.HasConflicts() {
		return nil
	}
	descs := make([]string, 0, len(vr.Conflicts))
	for _, c := range vr.Conflicts {
		descs = append(descs, c.Description)
	}
	return fmt.Errorf("%w: %s", fqerrors.ErrInvalidInput, strings.Join(descs, "; "))
}

func (vr *ValidationResult) add(t ConflictType, desc string, items ...string) {
	vr.Conflicts = append(vr.Conflicts, Conflict{Type: t, Description: desc, Items: items})
}

// Validator validates families, members and habits
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateFamily checks the family name and timezone. An empty timezone is
// allowed and means UTC.
func (v *Validator) ValidateFamily(f models.Family) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}
	if strings.TrimSpace(f.Name) == "" {
		result.add(ConflictMissingName, "Family name is required")
	}
	if !utils.ValidateTimezone(f.Timezone) {
		result.add(ConflictInvalidTimezone, fmt.Sprintf("Unknown timezone: %s", f.Timezone), f.Timezone)
	}
	return result
}

// ValidateMember checks a member against its siblings. Names must be unique
// within a family, case-insensitively.
func (v *Validator) ValidateMember(m models.Member, siblings []models.Member) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}
	name := strings.TrimSpace(m.Name)
	if name == "" {
		result.add(ConflictMissingName, "Member name is required")
	}
	if m.Role != constants.RoleParent && m.Role != constants.RoleChild {
		result.add(ConflictInvalidRole, fmt.Sprintf("Member \"%s\" has invalid role: %s", m.Name, m.Role), m.Name)
	}
	if m.Age != nil && (*m.Age < 0 || *m.Age > 150) {
		result.add(ConflictInvalidAge, fmt.Sprintf("Member \"%s\" has invalid age: %d", m.Name, *m.Age), m.Name)
	}
	for _, s := range siblings {
		if s.ID != m.ID && name != "" && strings.EqualFold(strings.TrimSpace(s.Name), name) {
			result.add(ConflictDuplicateName, fmt.Sprintf("Duplicate member name: \"%s\"", m.Name), m.ID, s.ID)
		}
	}
	if m.LongestStreak < m.CurrentStreak {
		result.add(ConflictStreakInconsistent,
			fmt.Sprintf("Member \"%s\" has longest streak %d below current streak %d", m.Name, m.LongestStreak, m.CurrentStreak), m.ID)
	}
	return result
}

// ValidateHabit checks a habit's fields and that every assigned member
// belongs to the habit's family. members is the family roster.
func (v *Validator) ValidateHabit(h models.Habit, members []models.Member) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	if strings.TrimSpace(h.Title) == "" {
		result.add(ConflictMissingName, "Habit title is required")
	}
	if h.XPReward < constants.MinXPReward || h.XPReward > constants.MaxXPReward {
		result.add(ConflictInvalidXPReward,
			fmt.Sprintf("Habit \"%s\" XP reward %d is outside %d-%d", h.Title, h.XPReward, constants.MinXPReward, constants.MaxXPReward), h.Title)
	}

	switch h.Frequency {
	case constants.FrequencyDaily, constants.FrequencyMonthly:
	case constants.FrequencyWeekly:
		if len(h.DaysOfWeek) == 0 {
			result.add(ConflictMissingDaysOfWeek, fmt.Sprintf("Weekly habit \"%s\" has no days of week", h.Title), h.Title)
		}
	default:
		result.add(ConflictInvalidFrequency, fmt.Sprintf("Habit \"%s\" has invalid frequency: %s", h.Title, h.Frequency), h.Title)
	}
	if h.Frequency == constants.FrequencyWeekly {
		for _, d := range h.DaysOfWeek {
			if d < 0 || d > 6 {
				result.add(ConflictInvalidDayOfWeek, fmt.Sprintf("Habit \"%s\" has invalid day of week: %d", h.Title, d), h.Title)
			}
		}
	}

	if h.TimeOfDay != "" && !utils.ValidateTimeFormat(h.TimeOfDay) {
		result.add(ConflictInvalidTimeOfDay, fmt.Sprintf("Habit \"%s\" has invalid time of day: %s", h.Title, h.TimeOfDay), h.Title)
	}

	if len(h.MemberIDs) == 0 {
		result.add(ConflictNoMembers, fmt.Sprintf("Habit \"%s\" is not assigned to anyone", h.Title), h.Title)
	}
	inFamily := make(map[string]bool, len(members))
	for _, m := range members {
		inFamily[m.ID] = m.FamilyID == h.FamilyID
	}
	for _, id := range h.MemberIDs {
		if !inFamily[id] {
			result.add(ConflictForeignMember, fmt.Sprintf("Habit \"%s\" is assigned to member %s outside its family", h.Title, id), id)
		}
	}
	return result
}

// ValidateFamilyData audits a whole family as stored, for doctor.
func (v *Validator) ValidateFamilyData(f models.Family, members []models.Member, habits []models.Habit) ValidationResult {
	result := v.ValidateFamily(f)
	for i, m := range members {
		// only earlier siblings, so each duplicate pair is reported once
		r := v.ValidateMember(m, members[:i])
		result.Conflicts = append(result.Conflicts, r.Conflicts...)
	}
	for _, h := range habits {
		r := v.ValidateHabit(h, members)
		result.Conflicts = append(result.Conflicts, r.Conflicts...)
	}
	return result
}
