package streaks

import (
	"context"
	"testing"

	"github.com/julianstephens/famquest/internal/completion"
	"github.com/julianstephens/famquest/internal/models"
	"github.com/julianstephens/famquest/internal/scheduler"
	"github.com/julianstephens/famquest/internal/testutil"
	"github.com/julianstephens/famquest/internal/utils"
)

func resolverAt(rfc3339 string) *utils.DateResolver {
	return utils.NewDateResolverWithClock(testutil.Clock(rfc3339))
}

func TestRecalculateFixesDrift(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	testutil.AddFamily(t, store, "fam", "UTC")
	testutil.AddMember(t, store, "fam", "stale", models.Progress{CurrentStreak: 7, LongestStreak: 7})
	testutil.AddMember(t, store, "fam", "active", models.Progress{CurrentStreak: 1, LongestStreak: 1})
	testutil.AddMember(t, store, "fam", "idle", models.Progress{CurrentStreak: 2, LongestStreak: 5})
	testutil.AddHabit(t, store, "fam", "h1", 10, []string{"stale", "active", "idle"})
	testutil.AddHabit(t, store, "fam", "h2", 10, []string{"active"})

	for _, d := range []string{"2026-10-10", "2026-10-11", "2026-10-12"} {
		testutil.AddLog(t, store, "h1", "stale", d, 10)
	}
	for _, d := range []string{"2026-10-13", "2026-10-14", "2026-10-15"} {
		testutil.AddLog(t, store, "h1", "active", d, 10)
	}
	testutil.AddLog(t, store, "h2", "active", "2026-10-15", 10)

	results, err := NewRecalculator(store, resolverAt("2026-10-15T09:00:00Z")).RecalculateStreaks(ctx, "fam")
	if err != nil {
		t.Fatalf("RecalculateStreaks: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	want := map[string]Summary{
		"stale":  {CurrentStreak: 0, LongestStreak: 3, TotalDistinctDays: 3},
		"active": {CurrentStreak: 3, LongestStreak: 3, TotalDistinctDays: 3},
		"idle":   {},
	}
	for _, res := range results {
		if res.Err != nil {
			t.Errorf("member %s failed: %v", res.MemberID, res.Err)
			continue
		}
		if res.After != want[res.MemberID] {
			t.Errorf("member %s = %+v, want %+v", res.MemberID, res.After, want[res.MemberID])
		}
		m, err := store.GetMember(ctx, res.MemberID)
		if err != nil {
			t.Fatalf("GetMember: %v", err)
		}
		if m.CurrentStreak != res.After.CurrentStreak || m.LongestStreak != res.After.LongestStreak {
			t.Errorf("stored %s = %d/%d, want %d/%d", m.ID, m.CurrentStreak, m.LongestStreak,
				res.After.CurrentStreak, res.After.LongestStreak)
		}
	}
}

func TestRecalculateAllFamiliesContinuesPastFailures(t *testing.T) {
	store := testutil.NewStore(t)
	testutil.AddFamily(t, store, "broken", "Not/AZone")
	testutil.AddMember(t, store, "broken", "lost", models.Progress{})
	testutil.AddFamily(t, store, "fine", "UTC")
	testutil.AddMember(t, store, "fine", "ok", models.Progress{CurrentStreak: 3, LongestStreak: 3})

	results, err := NewRecalculator(store, resolverAt("2026-10-15T09:00:00Z")).RecalculateStreaks(context.Background(), "")
	if err != nil {
		t.Fatalf("RecalculateStreaks: %v", err)
	}

	var failed, ok int
	for _, res := range results {
		if res.Err != nil {
			failed++
			if res.FamilyID != "broken" {
				t.Errorf("unexpected failure for family %s: %v", res.FamilyID, res.Err)
			}
			continue
		}
		ok++
		if res.MemberID == "ok" && (res.After != Summary{}) {
			t.Errorf("member without logs = %+v, want zero summary", res.After)
		}
	}
	if failed != 1 || ok != 1 {
		t.Errorf("failed=%d ok=%d, want 1 and 1", failed, ok)
	}
}

func TestRecalculateUnknownFamily(t *testing.T) {
	store := testutil.NewStore(t)
	if _, err := NewRecalculator(store, nil).RecalculateStreaks(context.Background(), "missing"); err == nil {
		t.Fatal("expected an error for an unknown family")
	}
}

// Incremental progression and a from-scratch rebuild must agree when the
// latest completion is today.
func TestRecalculatorAgreesWithIncrementalProgression(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	testutil.AddFamily(t, store, "fam", "UTC")
	testutil.AddMember(t, store, "fam", "m", models.Progress{})
	testutil.AddHabit(t, store, "fam", "h1", 10, []string{"m"})
	testutil.AddHabit(t, store, "fam", "h2", 15, []string{"m"})

	days := []struct {
		clock  string
		habits []string
	}{
		{"2026-10-09T08:00:00Z", []string{"h1"}},
		{"2026-10-10T08:00:00Z", []string{"h1", "h2"}},
		// gap on the 11th
		{"2026-10-12T08:00:00Z", []string{"h2"}},
		{"2026-10-13T08:00:00Z", []string{"h1", "h2"}},
		{"2026-10-14T08:00:00Z", []string{"h1"}},
	}
	for _, day := range days {
		svc := completion.NewService(store, resolverAt(day.clock), scheduler.New(), completion.Options{})
		for _, h := range day.habits {
			if _, err := svc.CompleteHabitForMember(ctx, "fam", h, "m"); err != nil {
				t.Fatalf("complete %s at %s: %v", h, day.clock, err)
			}
		}
	}

	incremental, err := store.GetMember(ctx, "m")
	if err != nil {
		t.Fatalf("GetMember: %v", err)
	}
	if incremental.CurrentStreak != 3 || incremental.LongestStreak != 3 {
		t.Fatalf("incremental streak = %d/%d, want 3/3", incremental.CurrentStreak, incremental.LongestStreak)
	}

	results, err := NewRecalculator(store, resolverAt("2026-10-14T20:00:00Z")).RecalculateStreaks(ctx, "fam")
	if err != nil {
		t.Fatalf("RecalculateStreaks: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results", len(results))
	}
	got := results[0]
	if got.After.CurrentStreak != incremental.CurrentStreak || got.After.LongestStreak != incremental.LongestStreak {
		t.Errorf("recalculated %+v, incremental %d/%d", got.After, incremental.CurrentStreak, incremental.LongestStreak)
	}
	if got.Changed() {
		t.Errorf("recalculation should be a no-op here, before=%+v after=%+v", got.Before, got.After)
	}
	if got.After.TotalDistinctDays != 5 {
		t.Errorf("TotalDistinctDays = %d, want 5", got.After.TotalDistinctDays)
	}
}
