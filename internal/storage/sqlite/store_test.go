package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/famquest/internal/constants"
	fqerrors "github.com/julianstephens/famquest/internal/errors"
	"github.com/julianstephens/famquest/internal/models"
	"github.com/julianstephens/famquest/internal/storage"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "famquest.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seed(t *testing.T, s *Store) (models.Family, models.Member, models.Member, models.Habit) {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)

	family := models.Family{ID: "fam-1", OwnerID: "owner-1", Name: "Tanaka", Timezone: "Asia/Tokyo", Locale: "ja", CreatedAt: now, UpdatedAt: now}
	if err := s.AddFamily(ctx, family); err != nil {
		t.Fatalf("AddFamily: %v", err)
	}
	age := 8
	kid := models.Member{ID: "mem-kid", FamilyID: family.ID, Name: "Yui", Role: constants.RoleChild, Age: &age, DisplayOrder: 1,
		Progress: models.Progress{Level: 1}, CreatedAt: now, UpdatedAt: now}
	parent := models.Member{ID: "mem-parent", FamilyID: family.ID, Name: "Ken", Role: constants.RoleParent, DisplayOrder: 0,
		Progress: models.Progress{Level: 1}, CreatedAt: now, UpdatedAt: now}
	for _, m := range []models.Member{kid, parent} {
		if err := s.AddMember(ctx, m); err != nil {
			t.Fatalf("AddMember(%s): %v", m.Name, err)
		}
	}
	habit := models.Habit{ID: "hab-1", FamilyID: family.ID, Title: "Brush teeth", Icon: "🪥", XPReward: 10,
		Frequency: constants.FrequencyWeekly, DaysOfWeek: []int{1, 3, 5}, MemberIDs: []string{kid.ID, parent.ID},
		TimeOfDay: "07:30", IsActive: true, CreatedAt: now, UpdatedAt: now}
	if err := s.AddHabit(ctx, habit); err != nil {
		t.Fatalf("AddHabit: %v", err)
	}
	return family, kid, parent, habit
}

func completion(id, habitID, memberID, date string, xp int) models.CompletionLog {
	return models.CompletionLog{ID: id, HabitID: habitID, MemberID: memberID, Date: date, XPEarned: xp, CompletedAt: time.Now()}
}

func TestInitAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "famquest.db")
	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	store.Close()

	reopened := NewStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load after Init: %v", err)
	}
	defer reopened.Close()
	if reopened.Kind() != storage.KindSQLite {
		t.Errorf("Kind() = %s", reopened.Kind())
	}
}

func TestLoadUninitialized(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := store.Load(); err == nil {
		t.Fatal("Load on missing database should fail")
	}
}

func TestFamilyRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	family, _, _, _ := seed(t, s)

	got, err := s.GetFamilyByOwner(ctx, "owner-1")
	if err != nil {
		t.Fatalf("GetFamilyByOwner: %v", err)
	}
	if got.ID != family.ID || got.Timezone != "Asia/Tokyo" || !got.CreatedAt.Equal(family.CreatedAt) {
		t.Errorf("family = %+v", got)
	}

	dup := family
	dup.ID = "fam-2"
	if err := s.AddFamily(ctx, dup); err == nil {
		t.Error("second family for the same owner should be rejected")
	}

	got.Timezone = "Europe/Berlin"
	if err := s.UpdateFamily(ctx, got); err != nil {
		t.Fatalf("UpdateFamily: %v", err)
	}
	got, _ = s.GetFamily(ctx, family.ID)
	if got.Timezone != "Europe/Berlin" {
		t.Errorf("timezone not updated: %s", got.Timezone)
	}

	if _, err := s.GetFamily(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetFamily(missing) error = %v, want ErrNotFound", err)
	}
}

func TestMembersOrderedByDisplayOrder(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	family, kid, parent, _ := seed(t, s)

	members, err := s.GetMembersForFamily(ctx, family.ID)
	if err != nil {
		t.Fatalf("GetMembersForFamily: %v", err)
	}
	if len(members) != 2 || members[0].ID != parent.ID || members[1].ID != kid.ID {
		t.Fatalf("members order = %+v", members)
	}
	if members[1].Age == nil || *members[1].Age != 8 {
		t.Errorf("age not round-tripped: %v", members[1].Age)
	}

	next, err := s.NextMemberDisplayOrder(ctx, family.ID)
	if err != nil || next != 2 {
		t.Errorf("NextMemberDisplayOrder = %d, %v, want 2", next, err)
	}
	next, err = s.NextMemberDisplayOrder(ctx, "empty-family")
	if err != nil || next != 0 {
		t.Errorf("NextMemberDisplayOrder(empty) = %d, %v, want 0", next, err)
	}
}

func TestHabitArraysAndActiveFlag(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	family, kid, _, habit := seed(t, s)

	got, err := s.GetHabit(ctx, habit.ID)
	if err != nil {
		t.Fatalf("GetHabit: %v", err)
	}
	if len(got.DaysOfWeek) != 3 || got.DaysOfWeek[1] != 3 {
		t.Errorf("DaysOfWeek = %v", got.DaysOfWeek)
	}
	if !got.IsAssignedTo(kid.ID) || got.TimeOfDay != "07:30" || !got.IsActive {
		t.Errorf("habit = %+v", got)
	}

	if err := s.SetHabitActive(ctx, habit.ID, false); err != nil {
		t.Fatalf("SetHabitActive: %v", err)
	}
	active, _ := s.GetHabitsForFamily(ctx, family.ID, false)
	all, _ := s.GetHabitsForFamily(ctx, family.ID, true)
	if len(active) != 0 || len(all) != 1 {
		t.Errorf("active=%d all=%d, want 0 and 1", len(active), len(all))
	}
	if err := s.SetHabitActive(ctx, "missing", true); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("SetHabitActive(missing) = %v", err)
	}
}

func TestInsertCompletionDuplicate(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	_, kid, _, habit := seed(t, s)

	err := s.WithTx(ctx, func(tx storage.Tx) error {
		return tx.InsertCompletion(ctx, completion("log-1", habit.ID, kid.ID, "2026-10-15", 10))
	})
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}

	err = s.WithTx(ctx, func(tx storage.Tx) error {
		return tx.InsertCompletion(ctx, completion("log-2", habit.ID, kid.ID, "2026-10-15", 10))
	})
	if !errors.Is(err, fqerrors.ErrDuplicateCompletion) {
		t.Fatalf("second insert error = %v, want ErrDuplicateCompletion", err)
	}

	// a different day is a different key
	err = s.WithTx(ctx, func(tx storage.Tx) error {
		return tx.InsertCompletion(ctx, completion("log-3", habit.ID, kid.ID, "2026-10-16", 10))
	})
	if err != nil {
		t.Fatalf("next-day insert: %v", err)
	}
}

func TestInsertCompletionIDCollisionIsFatal(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	_, kid, parent, habit := seed(t, s)

	err := s.WithTx(ctx, func(tx storage.Tx) error {
		return tx.InsertCompletion(ctx, completion("log-1", habit.ID, kid.ID, "2026-10-15", 10))
	})
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}

	// same log id for a different key is a primary key failure, not a repeat
	err = s.WithTx(ctx, func(tx storage.Tx) error {
		return tx.InsertCompletion(ctx, completion("log-1", habit.ID, parent.ID, "2026-10-15", 10))
	})
	if err == nil || errors.Is(err, fqerrors.ErrDuplicateCompletion) {
		t.Fatalf("id collision error = %v, want a non-duplicate failure", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		columns string
		want    bool
	}{
		{"nil", nil, completionOncePerDay, false},
		{"completion key", errors.New("constraint failed: UNIQUE constraint failed: habit_logs.habit_id, habit_logs.member_id, habit_logs.date (2067)"), completionOncePerDay, true},
		{"primary key", errors.New("constraint failed: UNIQUE constraint failed: habit_logs.id (1555)"), completionOncePerDay, false},
		{"owner key", errors.New("UNIQUE constraint failed: families.owner_id"), familyOwnerKey, true},
		{"owner key against completion", errors.New("UNIQUE constraint failed: families.owner_id (2067)"), completionOncePerDay, false},
		{"foreign key", errors.New("constraint failed: FOREIGN KEY constraint failed (787)"), completionOncePerDay, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isUniqueViolation(tt.err, tt.columns); got != tt.want {
				t.Errorf("isUniqueViolation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithTxRollsBack(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	_, kid, _, habit := seed(t, s)

	boom := errors.New("progress write failed")
	err := s.WithTx(ctx, func(tx storage.Tx) error {
		if err := tx.InsertCompletion(ctx, completion("log-1", habit.ID, kid.ID, "2026-10-15", 10)); err != nil {
			return err
		}
		if err := tx.UpdateMemberProgress(ctx, kid.ID, models.Progress{TotalXP: 10, Level: 1, CurrentStreak: 1, LongestStreak: 1}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx error = %v", err)
	}

	logs, _ := s.GetCompletionsForMember(ctx, kid.ID, "", "")
	if len(logs) != 0 {
		t.Errorf("log survived rollback: %+v", logs)
	}
	m, _ := s.GetMember(ctx, kid.ID)
	if m.TotalXP != 0 || m.CurrentStreak != 0 {
		t.Errorf("member progress survived rollback: %+v", m.Progress)
	}
}

func TestTxCountsAndProgress(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	_, kid, parent, habit := seed(t, s)

	err := s.WithTx(ctx, func(tx storage.Tx) error {
		for _, c := range []models.CompletionLog{
			completion("l1", habit.ID, kid.ID, "2026-10-14", 10),
			completion("l2", habit.ID, kid.ID, "2026-10-15", 10),
			completion("l3", habit.ID, parent.ID, "2026-10-15", 10),
		} {
			if err := tx.InsertCompletion(ctx, c); err != nil {
				return err
			}
		}

		count, err := tx.CountCompletionsForMemberOnDay(ctx, kid.ID, "2026-10-15")
		if err != nil || count != 1 {
			t.Errorf("count = %d, %v", count, err)
		}
		yes, err := tx.HasCompletionOnDay(ctx, kid.ID, "2026-10-14")
		if err != nil || !yes {
			t.Errorf("HasCompletionOnDay(yesterday) = %v, %v", yes, err)
		}
		no, err := tx.HasCompletionOnDay(ctx, parent.ID, "2026-10-14")
		if err != nil || no {
			t.Errorf("HasCompletionOnDay(parent) = %v, %v", no, err)
		}
		return tx.UpdateMemberProgress(ctx, kid.ID, models.Progress{TotalXP: 120, Level: 2, CurrentStreak: 2, LongestStreak: 4})
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}

	m, _ := s.GetMember(ctx, kid.ID)
	if m.TotalXP != 120 || m.Level != 2 || m.CurrentStreak != 2 || m.LongestStreak != 4 {
		t.Errorf("progress = %+v", m.Progress)
	}
}

func TestCompletionQueries(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	family, kid, parent, habit := seed(t, s)

	err := s.WithTx(ctx, func(tx storage.Tx) error {
		for _, c := range []models.CompletionLog{
			completion("l1", habit.ID, kid.ID, "2026-10-12", 10),
			completion("l2", habit.ID, kid.ID, "2026-10-14", 10),
			completion("l3", habit.ID, kid.ID, "2026-10-15", 10),
			completion("l4", habit.ID, parent.ID, "2026-10-15", 10),
		} {
			if err := tx.InsertCompletion(ctx, c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed logs: %v", err)
	}

	dates, err := s.GetCompletionDatesForMember(ctx, kid.ID)
	if err != nil {
		t.Fatalf("GetCompletionDatesForMember: %v", err)
	}
	if len(dates) != 3 || dates[0] != "2026-10-15" || dates[2] != "2026-10-12" {
		t.Errorf("dates = %v", dates)
	}

	ranged, _ := s.GetCompletionsForMember(ctx, kid.ID, "2026-10-13", "2026-10-15")
	if len(ranged) != 2 {
		t.Errorf("ranged logs = %d, want 2", len(ranged))
	}

	today, _ := s.GetCompletionsForFamilyOnDay(ctx, family.ID, "2026-10-15")
	if len(today) != 2 {
		t.Errorf("family logs today = %d, want 2", len(today))
	}
}

func TestDeleteMemberCascades(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	_, kid, parent, habit := seed(t, s)

	err := s.WithTx(ctx, func(tx storage.Tx) error {
		if err := tx.InsertCompletion(ctx, completion("l1", habit.ID, kid.ID, "2026-10-14", 10)); err != nil {
			return err
		}
		return tx.InsertCompletion(ctx, completion("l2", habit.ID, kid.ID, "2026-10-15", 10))
	})
	if err != nil {
		t.Fatalf("seed logs: %v", err)
	}

	deleted, err := s.DeleteMember(ctx, kid.ID)
	if err != nil {
		t.Fatalf("DeleteMember: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted logs = %d, want 2", deleted)
	}
	if _, err := s.GetMember(ctx, kid.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("member still present: %v", err)
	}
	h, _ := s.GetHabit(ctx, habit.ID)
	if h.IsAssignedTo(kid.ID) || !h.IsAssignedTo(parent.ID) {
		t.Errorf("member_ids after delete = %v", h.MemberIDs)
	}
}

func TestSetMemberStreaks(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	_, kid, _, _ := seed(t, s)

	if err := s.SetMemberStreaks(ctx, kid.ID, 3, 7); err != nil {
		t.Fatalf("SetMemberStreaks: %v", err)
	}
	m, _ := s.GetMember(ctx, kid.ID)
	if m.CurrentStreak != 3 || m.LongestStreak != 7 {
		t.Errorf("streaks = %d/%d", m.CurrentStreak, m.LongestStreak)
	}
	// longest must never fall below current
	if err := s.SetMemberStreaks(ctx, kid.ID, 5, 2); err == nil {
		t.Error("schema should reject longest < current")
	}
}
