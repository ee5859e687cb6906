package models

import (
	"time"

	"github.com/julianstephens/famquest/internal/constants"
)

// Family owns members and habits and fixes the timezone that "today" is computed in
type Family struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Timezone  string    `json:"timezone"`
	Locale    string    `json:"locale"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Progress is the mutable progression state of a member
type Progress struct {
	TotalXP       int `json:"total_xp"`
	Level         int `json:"level"`
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
}

// Member belongs to exactly one family
type Member struct {
	ID           string         `json:"id"`
	FamilyID     string         `json:"family_id"`
	Name         string         `json:"name"`
	Role         constants.Role `json:"role"`
	Age          *int           `json:"age,omitempty"`
	DisplayOrder int            `json:"display_order"`
	Progress
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
