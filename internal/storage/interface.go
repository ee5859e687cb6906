package storage

import (
	"context"

	"github.com/julianstephens/famquest/internal/models"
)

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Families
	AddFamily(ctx context.Context, family models.Family) error
	GetFamily(ctx context.Context, id string) (models.Family, error)
	GetFamilyByOwner(ctx context.Context, ownerID string) (models.Family, error)
	GetAllFamilies(ctx context.Context) ([]models.Family, error)
	UpdateFamily(ctx context.Context, family models.Family) error

	// Members
	AddMember(ctx context.Context, member models.Member) error
	GetMember(ctx context.Context, id string) (models.Member, error)
	// GetMembersForFamily returns members ordered by display_order.
	GetMembersForFamily(ctx context.Context, familyID string) ([]models.Member, error)
	// UpdateMember writes profile fields only; progression is written through Tx or SetMemberStreaks.
	UpdateMember(ctx context.Context, member models.Member) error
	// SetMemberStreaks overwrites streak counters; used by the streak repair tool.
	SetMemberStreaks(ctx context.Context, memberID string, current, longest int) error
	// DeleteMember removes the member, its completion logs and its habit assignments
	// in one transaction. It returns the number of logs deleted.
	DeleteMember(ctx context.Context, id string) (int, error)
	NextMemberDisplayOrder(ctx context.Context, familyID string) (int, error)

	// Habits
	AddHabit(ctx context.Context, habit models.Habit) error
	GetHabit(ctx context.Context, id string) (models.Habit, error)
	GetHabitsForFamily(ctx context.Context, familyID string, includeInactive bool) ([]models.Habit, error)
	UpdateHabit(ctx context.Context, habit models.Habit) error
	SetHabitActive(ctx context.Context, id string, active bool) error
	NextHabitDisplayOrder(ctx context.Context, familyID string) (int, error)

	// Completion logs
	// GetCompletionsForMember returns logs dated within [startDay, endDay]; empty bounds are open.
	GetCompletionsForMember(ctx context.Context, memberID, startDay, endDay string) ([]models.CompletionLog, error)
	GetCompletionsForFamilyOnDay(ctx context.Context, familyID, day string) ([]models.CompletionLog, error)
	// GetCompletionDatesForMember returns distinct completion dates, newest first.
	GetCompletionDatesForMember(ctx context.Context, memberID string) ([]string, error)

	// WithTx runs fn in a single transaction, committing only if fn returns nil.
	// fn must not call back into the Provider.
	WithTx(ctx context.Context, fn func(Tx) error) error

	// Utils
	GetConfigPath() string
	Kind() Kind
}

// Tx is the transactional surface used by the completion path.
type Tx interface {
	// GetMemberForUpdate reads the member and locks its row until the transaction ends
	// where the backend supports row locks.
	GetMemberForUpdate(ctx context.Context, id string) (models.Member, error)
	// InsertCompletion returns errors.ErrDuplicateCompletion when the
	// (habit_id, member_id, date) key already exists.
	InsertCompletion(ctx context.Context, log models.CompletionLog) error
	CountCompletionsForMemberOnDay(ctx context.Context, memberID, day string) (int, error)
	HasCompletionOnDay(ctx context.Context, memberID, day string) (bool, error)
	UpdateMemberProgress(ctx context.Context, memberID string, progress models.Progress) error
}
