package habits

import (
	"context"
	"reflect"
	"testing"

	"github.com/julianstephens/famquest/internal/cli"
	"github.com/julianstephens/famquest/internal/constants"
	"github.com/julianstephens/famquest/internal/family"
	"github.com/julianstephens/famquest/internal/models"
	"github.com/julianstephens/famquest/internal/testutil"
)

func setup(t *testing.T) *cli.Context {
	t.Helper()
	store := testutil.NewStore(t)
	testutil.AddFamily(t, store, "fam", "UTC")
	testutil.AddMember(t, store, "fam", "ana", models.Progress{})
	testutil.AddMember(t, store, "fam", "ben", models.Progress{})
	ctx := cli.NewContext(store)
	ctx.OwnerID = "owner-fam"
	return ctx
}

func habit(t *testing.T, ctx *cli.Context, ref string) models.Habit {
	t.Helper()
	h, err := ctx.Families().ResolveHabit(context.Background(), "fam", ref)
	if err != nil {
		t.Fatalf("ResolveHabit(%s): %v", ref, err)
	}
	return h
}

func TestHabitAddCmd(t *testing.T) {
	ctx := setup(t)

	add := &HabitAddCmd{Title: "Swim", XP: 30, Frequency: "weekly", Days: "tue,thu", Member: []string{"ben"}, Time: "16:30"}
	if err := add.Run(ctx); err != nil {
		t.Fatalf("add: %v", err)
	}
	h := habit(t, ctx, "swim")
	if !reflect.DeepEqual(h.DaysOfWeek, []int{2, 4}) || !reflect.DeepEqual(h.MemberIDs, []string{"ben"}) {
		t.Errorf("habit = %+v", h)
	}

	if err := (&HabitAddCmd{Title: "Tidy", XP: 5, Frequency: "daily"}).Run(ctx); err != nil {
		t.Fatalf("add without members: %v", err)
	}
	if got := habit(t, ctx, "tidy").MemberIDs; len(got) != 2 {
		t.Errorf("default assignment = %v, want every member", got)
	}

	tests := []struct {
		name string
		cmd  HabitAddCmd
	}{
		{"xp too high", HabitAddCmd{Title: "Big", XP: 500, Frequency: "daily"}},
		{"weekly without days", HabitAddCmd{Title: "Gym", XP: 10, Frequency: "weekly"}},
		{"bad time", HabitAddCmd{Title: "Late", XP: 10, Frequency: "daily", Time: "25:00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cmd.Run(ctx); !family.IsInvalidInput(err) {
				t.Errorf("error = %v, want invalid input", err)
			}
		})
	}
	if err := (&HabitAddCmd{Title: "Ghost", XP: 10, Frequency: "daily", Member: []string{"cleo"}}).Run(ctx); err == nil {
		t.Error("unknown member should fail")
	}
}

func TestHabitEditKeepsUnsetFields(t *testing.T) {
	ctx := setup(t)
	if err := (&HabitAddCmd{Title: "Read", XP: 10, Frequency: "daily", Time: "19:00"}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	if err := (&HabitEditCmd{Habit: "read", XP: 25}).Run(ctx); err != nil {
		t.Fatalf("edit: %v", err)
	}
	h := habit(t, ctx, "read")
	if h.XPReward != 25 || h.TimeOfDay != "19:00" || h.Frequency != constants.FrequencyDaily || len(h.MemberIDs) != 2 {
		t.Errorf("after xp edit = %+v", h)
	}

	if err := (&HabitEditCmd{Habit: "read", NoTime: true, Member: []string{"ana"}}).Run(ctx); err != nil {
		t.Fatalf("edit: %v", err)
	}
	h = habit(t, ctx, "read")
	if h.TimeOfDay != "" || !reflect.DeepEqual(h.MemberIDs, []string{"ana"}) {
		t.Errorf("after time/member edit = %+v", h)
	}
}

func TestHabitActivation(t *testing.T) {
	ctx := setup(t)
	if err := (&HabitAddCmd{Title: "Read", XP: 10, Frequency: "daily"}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	if err := (&HabitDeactivateCmd{Habit: "Read"}).Run(ctx); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if habit(t, ctx, "read").IsActive {
		t.Error("habit still active")
	}
	if err := (&HabitListCmd{All: true}).Run(ctx); err != nil {
		t.Errorf("list --all: %v", err)
	}
	if err := (&HabitReactivateCmd{Habit: "read"}).Run(ctx); err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	if !habit(t, ctx, "read").IsActive {
		t.Error("habit not reactivated")
	}
}
