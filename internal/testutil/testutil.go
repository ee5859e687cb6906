// Package testutil provides SQLite-backed fixtures for package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/famquest/internal/constants"
	"github.com/julianstephens/famquest/internal/models"
	"github.com/julianstephens/famquest/internal/storage"
	"github.com/julianstephens/famquest/internal/storage/sqlite"
)

// NewStore returns an initialized SQLite store in a temp dir, closed on cleanup.
func NewStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "famquest.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// Clock returns a fixed clock for utils.NewDateResolverWithClock.
func Clock(rfc3339 string) func() time.Time {
	ts, err := time.Parse(time.RFC3339, rfc3339)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return ts }
}

// AddFamily stores a family with the given id and timezone.
func AddFamily(t *testing.T, store *sqlite.Store, id, timezone string) models.Family {
	t.Helper()
	now := time.Now().UTC()
	f := models.Family{ID: id, OwnerID: "owner-" + id, Name: "Family " + id, Timezone: timezone,
		Locale: constants.DefaultLocale, CreatedAt: now, UpdatedAt: now}
	if err := store.AddFamily(context.Background(), f); err != nil {
		t.Fatalf("AddFamily(%s): %v", id, err)
	}
	return f
}

// AddMember stores a child member with the given progress.
func AddMember(t *testing.T, store *sqlite.Store, familyID, id string, p models.Progress) models.Member {
	t.Helper()
	ctx := context.Background()
	order, err := store.NextMemberDisplayOrder(ctx, familyID)
	if err != nil {
		t.Fatalf("NextMemberDisplayOrder: %v", err)
	}
	if p.Level == 0 {
		p.Level = 1
	}
	now := time.Now().UTC()
	m := models.Member{ID: id, FamilyID: familyID, Name: id, Role: constants.RoleChild, DisplayOrder: order,
		Progress: p, CreatedAt: now, UpdatedAt: now}
	if err := store.AddMember(ctx, m); err != nil {
		t.Fatalf("AddMember(%s): %v", id, err)
	}
	return m
}

// AddHabit stores an active daily habit assigned to memberIDs.
// mutate may adjust the habit before it is written.
func AddHabit(t *testing.T, store *sqlite.Store, familyID, id string, xp int, memberIDs []string, mutate ...func(*models.Habit)) models.Habit {
	t.Helper()
	ctx := context.Background()
	order, err := store.NextHabitDisplayOrder(ctx, familyID)
	if err != nil {
		t.Fatalf("NextHabitDisplayOrder: %v", err)
	}
	now := time.Now().UTC()
	h := models.Habit{ID: id, FamilyID: familyID, Title: id, XPReward: xp, Frequency: constants.FrequencyDaily,
		MemberIDs: memberIDs, DisplayOrder: order, IsActive: true, CreatedAt: now, UpdatedAt: now}
	for _, fn := range mutate {
		fn(&h)
	}
	if err := store.AddHabit(ctx, h); err != nil {
		t.Fatalf("AddHabit(%s): %v", id, err)
	}
	return h
}

// AddLog inserts a completion log directly, bypassing progression.
func AddLog(t *testing.T, store *sqlite.Store, habitID, memberID, date string, xp int) {
	t.Helper()
	ctx := context.Background()
	log := models.CompletionLog{ID: habitID + "-" + memberID + "-" + date, HabitID: habitID, MemberID: memberID,
		Date: date, XPEarned: xp, CompletedAt: time.Now().UTC()}
	err := store.WithTx(ctx, func(tx storage.Tx) error {
		return tx.InsertCompletion(ctx, log)
	})
	if err != nil {
		t.Fatalf("AddLog(%s): %v", log.ID, err)
	}
}
