package models

import (
	"slices"
	"time"

	"github.com/julianstephens/famquest/internal/constants"
)

// Habit is a recurring practice assigned to one or more family members
type Habit struct {
	ID           string              `json:"id"`
	FamilyID     string              `json:"family_id"`
	Title        string              `json:"title"`
	Icon         string              `json:"icon,omitempty"`
	XPReward     int                 `json:"xp_reward"`
	Frequency    constants.Frequency `json:"frequency"`
	DaysOfWeek   []int               `json:"days_of_week"` // 0=Sunday..6=Saturday, weekly only
	MemberIDs    []string            `json:"member_ids"`
	TimeOfDay    string              `json:"time_of_day,omitempty"` // HH:MM format
	DisplayOrder int                 `json:"display_order"`
	IsActive     bool                `json:"is_active"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// IsAssignedTo reports whether memberID is in the habit's member list
func (h Habit) IsAssignedTo(memberID string) bool {
	return slices.Contains(h.MemberIDs, memberID)
}

// CompletionLog records one member completing one habit on one calendar day
type CompletionLog struct {
	ID          string    `json:"id"`
	HabitID     string    `json:"habit_id"`
	MemberID    string    `json:"member_id"`
	Date        string    `json:"date"` // YYYY-MM-DD in the family timezone
	XPEarned    int       `json:"xp_earned"`
	Note        string    `json:"note,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}
