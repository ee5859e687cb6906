// Package family manages families, their members and their habits.
package family

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/famquest/internal/constants"
	fqerrors "github.com/julianstephens/famquest/internal/errors"
	"github.com/julianstephens/famquest/internal/logger"
	"github.com/julianstephens/famquest/internal/models"
	"github.com/julianstephens/famquest/internal/storage"
	"github.com/julianstephens/famquest/internal/validation"
)

var (
	// ErrFamilyExists is returned when an owner already has a family
	ErrFamilyExists = errors.New("owner already has a family")

	// ErrLastMember is returned when removing the only member of a family
	ErrLastMember = errors.New("cannot remove the last member of a family")
)

// MemberInput holds the editable fields of a member.
type MemberInput struct {
	Name string
	Role constants.Role
	Age  *int
}

// HabitInput holds the editable fields of a habit.
type HabitInput struct {
	Title      string
	Icon       string
	XPReward   int
	Frequency  constants.Frequency
	DaysOfWeek []int
	MemberIDs  []string
	TimeOfDay  string
}

type Service struct {
	store     storage.Provider
	validator *validation.Validator
	now       func() time.Time
}

func NewService(store storage.Provider) *Service {
	return &Service{store: store, validator: validation.New(), now: time.Now}
}

// CreateFamily creates the owner's family. Each owner has at most one.
func (s *Service) CreateFamily(ctx context.Context, ownerID, name, timezone, locale string) (models.Family, error) {
	if _, err := s.store.GetFamilyByOwner(ctx, ownerID); err == nil {
		return models.Family{}, fmt.Errorf("%w: %s", ErrFamilyExists, ownerID)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return models.Family{}, err
	}

	if timezone == "" {
		timezone = constants.DefaultTimezone
	}
	if locale == "" {
		locale = constants.DefaultLocale
	}
	now := s.now().UTC()
	f := models.Family{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Name:      strings.TrimSpace(name),
		Timezone:  timezone,
		Locale:    locale,
		CreatedAt: now,
		UpdatedAt: now,
	}
	result := s.validator.ValidateFamily(f)
	if err := result.Err(); err != nil {
		return models.Family{}, err
	}
	if err := s.store.AddFamily(ctx, f); err != nil {
		return models.Family{}, fmt.Errorf("failed to create family: %w", err)
	}
	logger.Info("Created family", "family", f.ID, "owner", ownerID, "timezone", f.Timezone)
	return f, nil
}

// UpdateFamily changes the family's name, timezone or locale. Empty
// arguments keep the current value. Existing logs keep their dates.
func (s *Service) UpdateFamily(ctx context.Context, familyID, name, timezone, locale string) (models.Family, error) {
	f, err := s.store.GetFamily(ctx, familyID)
	if err != nil {
		return models.Family{}, err
	}
	if name != "" {
		f.Name = strings.TrimSpace(name)
	}
	if timezone != "" {
		f.Timezone = timezone
	}
	if locale != "" {
		f.Locale = locale
	}
	result := s.validator.ValidateFamily(f)
	if err := result.Err(); err != nil {
		return models.Family{}, err
	}
	f.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateFamily(ctx, f); err != nil {
		return models.Family{}, fmt.Errorf("failed to update family: %w", err)
	}
	return f, nil
}

func (s *Service) GetFamily(ctx context.Context, familyID string) (models.Family, error) {
	return s.store.GetFamily(ctx, familyID)
}

// FamilyForOwner returns the owner's family.
func (s *Service) FamilyForOwner(ctx context.Context, ownerID string) (models.Family, error) {
	return s.store.GetFamilyByOwner(ctx, ownerID)
}

// AddMember appends a member at the end of the family's display order with
// fresh progression.
func (s *Service) AddMember(ctx context.Context, familyID string, in MemberInput) (models.Member, error) {
	if _, err := s.store.GetFamily(ctx, familyID); err != nil {
		return models.Member{}, err
	}
	siblings, err := s.store.GetMembersForFamily(ctx, familyID)
	if err != nil {
		return models.Member{}, err
	}

	now := s.now().UTC()
	m := models.Member{
		ID:        uuid.New().String(),
		FamilyID:  familyID,
		Name:      strings.TrimSpace(in.Name),
		Role:      in.Role,
		Age:       in.Age,
		Progress:  models.Progress{Level: 1},
		CreatedAt: now,
		UpdatedAt: now,
	}
	result := s.validator.ValidateMember(m, siblings)
	if err := result.Err(); err != nil {
		return models.Member{}, err
	}
	if m.DisplayOrder, err = s.store.NextMemberDisplayOrder(ctx, familyID); err != nil {
		return models.Member{}, err
	}
	if err := s.store.AddMember(ctx, m); err != nil {
		return models.Member{}, fmt.Errorf("failed to add member: %w", err)
	}
	logger.Info("Added member", "family", familyID, "member", m.ID, "role", m.Role)
	return m, nil
}

// UpdateMember edits profile fields; progression is never touched here.
func (s *Service) UpdateMember(ctx context.Context, memberID string, in MemberInput) (models.Member, error) {
	m, err := s.store.GetMember(ctx, memberID)
	if err != nil {
		return models.Member{}, err
	}
	siblings, err := s.store.GetMembersForFamily(ctx, m.FamilyID)
	if err != nil {
		return models.Member{}, err
	}
	if in.Name != "" {
		m.Name = strings.TrimSpace(in.Name)
	}
	if in.Role != "" {
		m.Role = in.Role
	}
	if in.Age != nil {
		m.Age = in.Age
	}
	result := s.validator.ValidateMember(m, siblings)
	if err := result.Err(); err != nil {
		return models.Member{}, err
	}
	m.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateMember(ctx, m); err != nil {
		return models.Member{}, fmt.Errorf("failed to update member: %w", err)
	}
	return m, nil
}

// RemoveMember deletes the member with its completion logs and habit
// assignments. It returns the number of logs removed.
func (s *Service) RemoveMember(ctx context.Context, memberID string) (int, error) {
	m, err := s.store.GetMember(ctx, memberID)
	if err != nil {
		return 0, err
	}
	siblings, err := s.store.GetMembersForFamily(ctx, m.FamilyID)
	if err != nil {
		return 0, err
	}
	if len(siblings) <= 1 {
		return 0, fmt.Errorf("%w: %s", ErrLastMember, m.Name)
	}
	deleted, err := s.store.DeleteMember(ctx, memberID)
	if err != nil {
		return 0, fmt.Errorf("failed to remove member: %w", err)
	}
	logger.Info("Removed member", "family", m.FamilyID, "member", memberID, "logs_deleted", deleted)
	return deleted, nil
}

func (s *Service) Members(ctx context.Context, familyID string) ([]models.Member, error) {
	return s.store.GetMembersForFamily(ctx, familyID)
}

// ResolveMember finds a member of the family by ID or, failing that, by
// case-insensitive name.
func (s *Service) ResolveMember(ctx context.Context, familyID, ref string) (models.Member, error) {
	members, err := s.store.GetMembersForFamily(ctx, familyID)
	if err != nil {
		return models.Member{}, err
	}
	for _, m := range members {
		if m.ID == ref {
			return m, nil
		}
	}
	for _, m := range members {
		if strings.EqualFold(m.Name, strings.TrimSpace(ref)) {
			return m, nil
		}
	}
	return models.Member{}, fmt.Errorf("member %q: %w", ref, storage.ErrNotFound)
}

// CreateHabit validates and stores a new active habit at the end of the
// family's display order.
func (s *Service) CreateHabit(ctx context.Context, familyID string, in HabitInput) (models.Habit, error) {
	if _, err := s.store.GetFamily(ctx, familyID); err != nil {
		return models.Habit{}, err
	}
	members, err := s.store.GetMembersForFamily(ctx, familyID)
	if err != nil {
		return models.Habit{}, err
	}

	now := s.now().UTC()
	h := models.Habit{
		ID:        uuid.New().String(),
		FamilyID:  familyID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyHabitInput(&h, in)
	result := s.validator.ValidateHabit(h, members)
	if err := result.Err(); err != nil {
		return models.Habit{}, err
	}
	if h.DisplayOrder, err = s.store.NextHabitDisplayOrder(ctx, familyID); err != nil {
		return models.Habit{}, err
	}
	if err := s.store.AddHabit(ctx, h); err != nil {
		return models.Habit{}, fmt.Errorf("failed to create habit: %w", err)
	}
	logger.Info("Created habit", "family", familyID, "habit", h.ID, "xp", h.XPReward, "frequency", h.Frequency)
	return h, nil
}

// UpdateHabit replaces the habit's editable fields. XP already earned is
// frozen in the logs and does not change.
func (s *Service) UpdateHabit(ctx context.Context, habitID string, in HabitInput) (models.Habit, error) {
	h, err := s.store.GetHabit(ctx, habitID)
	if err != nil {
		return models.Habit{}, err
	}
	members, err := s.store.GetMembersForFamily(ctx, h.FamilyID)
	if err != nil {
		return models.Habit{}, err
	}
	applyHabitInput(&h, in)
	result := s.validator.ValidateHabit(h, members)
	if err := result.Err(); err != nil {
		return models.Habit{}, err
	}
	h.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateHabit(ctx, h); err != nil {
		return models.Habit{}, fmt.Errorf("failed to update habit: %w", err)
	}
	return h, nil
}

// DeactivateHabit hides the habit from today's board; its history stays.
func (s *Service) DeactivateHabit(ctx context.Context, habitID string) error {
	return s.setActive(ctx, habitID, false)
}

func (s *Service) ReactivateHabit(ctx context.Context, habitID string) error {
	return s.setActive(ctx, habitID, true)
}

func (s *Service) setActive(ctx context.Context, habitID string, active bool) error {
	if err := s.store.SetHabitActive(ctx, habitID, active); err != nil {
		return err
	}
	logger.Info("Changed habit state", "habit", habitID, "active", active)
	return nil
}

func (s *Service) Habits(ctx context.Context, familyID string, includeInactive bool) ([]models.Habit, error) {
	return s.store.GetHabitsForFamily(ctx, familyID, includeInactive)
}

// ResolveHabit finds a habit of the family by ID or case-insensitive title,
// inactive habits included.
func (s *Service) ResolveHabit(ctx context.Context, familyID, ref string) (models.Habit, error) {
	habits, err := s.store.GetHabitsForFamily(ctx, familyID, true)
	if err != nil {
		return models.Habit{}, err
	}
	for _, h := range habits {
		if h.ID == ref {
			return h, nil
		}
	}
	for _, h := range habits {
		if strings.EqualFold(h.Title, strings.TrimSpace(ref)) {
			return h, nil
		}
	}
	return models.Habit{}, fmt.Errorf("habit %q: %w", ref, storage.ErrNotFound)
}

func applyHabitInput(h *models.Habit, in HabitInput) {
	h.Title = strings.TrimSpace(in.Title)
	h.Icon = in.Icon
	h.XPReward = in.XPReward
	h.Frequency = in.Frequency
	h.DaysOfWeek = in.DaysOfWeek
	if h.Frequency != constants.FrequencyWeekly {
		h.DaysOfWeek = nil
	}
	h.MemberIDs = in.MemberIDs
	h.TimeOfDay = in.TimeOfDay
}

// IsInvalidInput reports whether err came from field validation.
func IsInvalidInput(err error) bool {
	return errors.Is(err, fqerrors.ErrInvalidInput)
}
