package board

import (
	"context"
	"errors"
	"testing"

	"github.com/julianstephens/famquest/internal/backup"
	"github.com/julianstephens/famquest/internal/cli"
	fqerrors "github.com/julianstephens/famquest/internal/errors"
	"github.com/julianstephens/famquest/internal/models"
	"github.com/julianstephens/famquest/internal/storage/sqlite"
	"github.com/julianstephens/famquest/internal/testutil"
	"github.com/julianstephens/famquest/internal/utils"
)

func setup(t *testing.T) (*cli.Context, *sqlite.Store) {
	t.Helper()
	store := testutil.NewStore(t)
	testutil.AddFamily(t, store, "fam", "Asia/Tokyo")
	testutil.AddMember(t, store, "fam", "ana", models.Progress{})
	testutil.AddMember(t, store, "fam", "ben", models.Progress{})
	testutil.AddHabit(t, store, "fam", "teeth", 10, []string{"ana", "ben"})
	testutil.AddHabit(t, store, "fam", "piano", 20, []string{"ana"}, func(h *models.Habit) {
		h.Title = "Piano"
		h.TimeOfDay = "17:00"
	})

	ctx := cli.NewContext(store)
	ctx.OwnerID = "owner-fam"
	ctx.Resolver = utils.NewDateResolverWithClock(testutil.Clock("2026-10-14T16:00:00Z"))
	return ctx, store
}

func TestCompleteCmd(t *testing.T) {
	ctx, store := setup(t)
	bg := context.Background()

	if err := (&CompleteCmd{Habit: "piano", Member: "Ana"}).Run(ctx); err != nil {
		t.Fatalf("complete: %v", err)
	}
	// a repeat is reported, not an error
	if err := (&CompleteCmd{Habit: "piano", Member: "ana"}).Run(ctx); err != nil {
		t.Fatalf("repeat complete: %v", err)
	}

	m, err := store.GetMember(bg, "ana")
	if err != nil {
		t.Fatal(err)
	}
	if m.TotalXP != 20 || m.CurrentStreak != 1 {
		t.Errorf("ana = %+v, want 20 XP and streak 1", m.Progress)
	}
	logs, err := store.GetCompletionsForMember(bg, "ana", "2026-10-15", "2026-10-15")
	if err != nil || len(logs) != 1 {
		t.Errorf("logs on 2026-10-15 = %d, %v", len(logs), err)
	}
}

func TestCompleteCmdRejectsUnassigned(t *testing.T) {
	ctx, _ := setup(t)

	err := (&CompleteCmd{Habit: "piano", Member: "ben"}).Run(ctx)
	if !errors.Is(err, fqerrors.ErrNotAssigned) {
		t.Errorf("error = %v, want ErrNotAssigned", err)
	}
	if err := (&CompleteCmd{Habit: "violin", Member: "ben"}).Run(ctx); err == nil {
		t.Error("expected an error for an unknown habit")
	}
}

func TestReadCommands(t *testing.T) {
	ctx, _ := setup(t)
	if err := (&CompleteCmd{Habit: "teeth", Member: "ben"}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	if err := (&TodayCmd{}).Run(ctx); err != nil {
		t.Errorf("today: %v", err)
	}
	if err := (&LeaderboardCmd{}).Run(ctx); err != nil {
		t.Errorf("leaderboard: %v", err)
	}
	if err := (&StatsCmd{Member: "ben"}).Run(ctx); err != nil {
		t.Errorf("stats: %v", err)
	}
	if err := (&StatsCmd{Member: "ben", Month: "October"}).Run(ctx); err == nil {
		t.Error("stats with a malformed month should fail")
	}
}

func TestStreaksRecalcCmd(t *testing.T) {
	ctx, store := setup(t)
	bg := context.Background()
	testutil.AddLog(t, store, "teeth", "ben", "2026-10-14", 10)
	testutil.AddLog(t, store, "teeth", "ben", "2026-10-15", 10)
	if err := store.SetMemberStreaks(bg, "ben", 9, 9); err != nil {
		t.Fatal(err)
	}

	if err := (&StreaksRecalcCmd{Yes: true}).Run(ctx); err != nil {
		t.Fatalf("recalc: %v", err)
	}
	m, err := store.GetMember(bg, "ben")
	if err != nil {
		t.Fatal(err)
	}
	if m.CurrentStreak != 2 || m.LongestStreak != 2 {
		t.Errorf("ben streaks = %d/%d, want 2/2", m.CurrentStreak, m.LongestStreak)
	}

	latest, err := backup.NewManager(store.GetConfigPath()).Latest()
	if err != nil {
		t.Fatalf("expected a pre-recalc backup: %v", err)
	}
	if latest.Reason != backup.ReasonRecalc {
		t.Errorf("backup reason = %q", latest.Reason)
	}
}
