package streaks

import (
	"context"
	"fmt"

	"github.com/julianstephens/famquest/internal/logger"
	"github.com/julianstephens/famquest/internal/metrics"
	"github.com/julianstephens/famquest/internal/models"
	"github.com/julianstephens/famquest/internal/storage"
	"github.com/julianstephens/famquest/internal/utils"
)

// MemberResult reports one member's recalculation. Err is set when that
// member could not be recomputed or saved; other members are unaffected.
type MemberResult struct {
	FamilyID   string  `json:"family_id"`
	MemberID   string  `json:"member_id"`
	MemberName string  `json:"member_name"`
	Before     Summary `json:"before"`
	After      Summary `json:"after"`
	Err        error   `json:"-"`
	Error      string  `json:"error,omitempty"`
}

// Changed reports whether the stored counters differed from the recomputed ones.
func (r MemberResult) Changed() bool {
	return r.Before.CurrentStreak != r.After.CurrentStreak || r.Before.LongestStreak != r.After.LongestStreak
}

type Recalculator struct {
	store    storage.Provider
	resolver *utils.DateResolver
}

func NewRecalculator(store storage.Provider, resolver *utils.DateResolver) *Recalculator {
	if resolver == nil {
		resolver = utils.NewDateResolver()
	}
	return &Recalculator{store: store, resolver: resolver}
}

// RecalculateStreaks recomputes every member of familyID, or of all families
// when familyID is empty. Families and members are processed sequentially
// with no rollback across members. The returned error is only set when the
// family list itself cannot be loaded.
func (r *Recalculator) RecalculateStreaks(ctx context.Context, familyID string) ([]MemberResult, error) {
	var families []models.Family
	if familyID != "" {
		f, err := r.store.GetFamily(ctx, familyID)
		if err != nil {
			return nil, fmt.Errorf("failed to load family %s: %w", familyID, err)
		}
		families = []models.Family{f}
	} else {
		all, err := r.store.GetAllFamilies(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load families: %w", err)
		}
		families = all
	}

	var results []MemberResult
	for _, f := range families {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, r.recalculateFamily(ctx, f)...)
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	logger.Info("Streak recalculation finished", "families", len(families), "members", len(results), "failed", failed)
	return results, nil
}

func (r *Recalculator) recalculateFamily(ctx context.Context, f models.Family) []MemberResult {
	lg := logger.ForFamily(f.ID)
	today, err := r.resolver.Today(f.Timezone)
	if err != nil {
		lg.Error("Skipping family with invalid timezone", "timezone", f.Timezone, "error", err)
		return []MemberResult{failure(MemberResult{FamilyID: f.ID}, err)}
	}

	members, err := r.store.GetMembersForFamily(ctx, f.ID)
	if err != nil {
		lg.Error("Failed to load members", "error", err)
		return []MemberResult{failure(MemberResult{FamilyID: f.ID}, err)}
	}

	results := make([]MemberResult, 0, len(members))
	for _, m := range members {
		res := MemberResult{
			FamilyID:   f.ID,
			MemberID:   m.ID,
			MemberName: m.Name,
			Before:     Summary{CurrentStreak: m.CurrentStreak, LongestStreak: m.LongestStreak},
		}
		after, err := r.recalculateMember(ctx, m.ID, today)
		if err != nil {
			lg.Error("Failed to recalculate streak", "member", m.ID, "error", err)
			metrics.RecordStreakRecalculation(false)
			results = append(results, failure(res, err))
			continue
		}
		res.After = after
		metrics.RecordStreakRecalculation(true)
		if res.Changed() {
			lg.Info("Corrected streak", "member", m.ID,
				"current", fmt.Sprintf("%d->%d", res.Before.CurrentStreak, after.CurrentStreak),
				"longest", fmt.Sprintf("%d->%d", res.Before.LongestStreak, after.LongestStreak))
		}
		results = append(results, res)
	}
	return results
}

func (r *Recalculator) recalculateMember(ctx context.Context, memberID, today string) (Summary, error) {
	dates, err := r.store.GetCompletionDatesForMember(ctx, memberID)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to load completion dates: %w", err)
	}
	summary, err := Compute(dates, today)
	if err != nil {
		return Summary{}, err
	}
	if err := r.store.SetMemberStreaks(ctx, memberID, summary.CurrentStreak, summary.LongestStreak); err != nil {
		return Summary{}, fmt.Errorf("failed to save streaks: %w", err)
	}
	return summary, nil
}

func failure(res MemberResult, err error) MemberResult {
	res.Err = err
	res.Error = err.Error()
	return res
}
