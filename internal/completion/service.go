// Package completion records habit completions and applies their XP, level
// and streak effects to the member in a single transaction.
package completion

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/famquest/internal/constants"
	fqerrors "github.com/julianstephens/famquest/internal/errors"
	"github.com/julianstephens/famquest/internal/logger"
	"github.com/julianstephens/famquest/internal/metrics"
	"github.com/julianstephens/famquest/internal/models"
	"github.com/julianstephens/famquest/internal/progression"
	"github.com/julianstephens/famquest/internal/scheduler"
	"github.com/julianstephens/famquest/internal/storage"
	"github.com/julianstephens/famquest/internal/utils"
)

// Options tune completion policy.
type Options struct {
	// EnforceSchedule rejects completions of habits that are not due today
	// in the family's timezone. Off by default.
	EnforceSchedule bool
}

// Outcome is what the caller renders after a completion request.
// A duplicate has Accepted=false and zero XP; progression fields then carry
// the member's unchanged state.
type Outcome struct {
	Accepted      bool   `json:"accepted"`
	XPEarned      int    `json:"xp_earned"`
	LeveledUp     bool   `json:"leveled_up"`
	OldLevel      int    `json:"old_level"`
	NewLevel      int    `json:"new_level"`
	TotalXP       int    `json:"total_xp"`
	CurrentStreak int    `json:"current_streak"`
	LongestStreak int    `json:"longest_streak"`
	Date          string `json:"date"`
}

type Service struct {
	store     storage.Provider
	resolver  *utils.DateResolver
	scheduler *scheduler.Scheduler
	recorder  *Recorder
	opts      Options
}

func NewService(store storage.Provider, resolver *utils.DateResolver, sched *scheduler.Scheduler, opts Options) *Service {
	if resolver == nil {
		resolver = utils.NewDateResolver()
	}
	if sched == nil {
		sched = scheduler.New()
	}
	return &Service{
		store:     store,
		resolver:  resolver,
		scheduler: sched,
		recorder:  NewRecorder(),
		opts:      opts,
	}
}

// CompleteHabitForMember marks habitID done today for memberID within familyID.
//
// Targets are validated before any write. The log insert and the member's
// progression update commit together or not at all; a duplicate for today is
// a successful no-op.
func (s *Service) CompleteHabitForMember(ctx context.Context, familyID, habitID, memberID string) (Outcome, error) {
	outcome, err := s.complete(ctx, familyID, habitID, memberID)
	switch {
	case err == nil && outcome.Accepted:
		metrics.RecordCompletion(constants.CompletionAccepted, outcome.XPEarned, outcome.LeveledUp)
	case err == nil:
		metrics.RecordCompletion(constants.CompletionDuplicate, 0, false)
	case errors.Is(err, fqerrors.ErrInvalidTarget), errors.Is(err, storage.ErrNotFound):
		metrics.RecordCompletion(constants.CompletionRejected, 0, false)
	default:
		metrics.RecordCompletion(constants.CompletionError, 0, false)
		logger.ForCompletion(familyID, habitID, memberID).Error("Failed to save completion", "error", err)
	}
	return outcome, err
}

func (s *Service) complete(ctx context.Context, familyID, habitID, memberID string) (Outcome, error) {
	family, err := s.store.GetFamily(ctx, familyID)
	if err != nil {
		return Outcome{}, lookupError("family", familyID, err)
	}
	info, err := s.resolver.Info(family.Timezone)
	if err != nil {
		return Outcome{}, err
	}

	habit, err := s.store.GetHabit(ctx, habitID)
	if err != nil {
		return Outcome{}, lookupError("habit", habitID, err)
	}
	member, err := s.store.GetMember(ctx, memberID)
	if err != nil {
		return Outcome{}, lookupError("member", memberID, err)
	}
	if err := s.validate(family, habit, member, info); err != nil {
		return Outcome{}, err
	}

	var outcome Outcome
	err = s.store.WithTx(ctx, func(tx storage.Tx) error {
		// Re-read under the transaction so progression starts from the committed state.
		current, err := tx.GetMemberForUpdate(ctx, memberID)
		if err != nil {
			return err
		}

		rec, err := s.recorder.Record(ctx, tx, habit, memberID, info.Today)
		if err != nil {
			return err
		}
		if !rec.Accepted {
			outcome = Outcome{
				OldLevel:      current.Level,
				NewLevel:      current.Level,
				TotalXP:       current.TotalXP,
				CurrentStreak: current.CurrentStreak,
				LongestStreak: current.LongestStreak,
				Date:          info.Today,
			}
			return nil
		}

		countToday, err := tx.CountCompletionsForMemberOnDay(ctx, memberID, info.Today)
		if err != nil {
			return fmt.Errorf("failed to count today's completions: %w", err)
		}
		// The yesterday lookup only matters for the day's first completion.
		completedYesterday := false
		if countToday == 1 {
			if completedYesterday, err = tx.HasCompletionOnDay(ctx, memberID, info.Yesterday); err != nil {
				return fmt.Errorf("failed to check yesterday's completions: %w", err)
			}
		}

		result, err := progression.Apply(current.Progress, rec.XPEarned, countToday, completedYesterday)
		if err != nil {
			return err
		}
		if err := tx.UpdateMemberProgress(ctx, memberID, result.Progress); err != nil {
			return err
		}

		outcome = Outcome{
			Accepted:      true,
			XPEarned:      rec.XPEarned,
			LeveledUp:     result.LeveledUp,
			OldLevel:      result.OldLevel,
			NewLevel:      result.NewLevel,
			TotalXP:       result.Progress.TotalXP,
			CurrentStreak: result.Progress.CurrentStreak,
			LongestStreak: result.Progress.LongestStreak,
			Date:          info.Today,
		}
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}

	lg := logger.ForCompletion(familyID, habitID, memberID).With("date", info.Today)
	if outcome.Accepted {
		lg.Debug("Completion accepted", "xp", outcome.XPEarned, "level", outcome.NewLevel, "streak", outcome.CurrentStreak)
	} else {
		lg.Debug("Duplicate completion ignored")
	}
	return outcome, nil
}

func (s *Service) validate(family models.Family, habit models.Habit, member models.Member, info utils.DateInfo) error {
	if habit.FamilyID != family.ID {
		return fmt.Errorf("habit %s does not belong to family %s: %w", habit.ID, family.ID, fqerrors.ErrInvalidTarget)
	}
	if member.FamilyID != family.ID {
		return fmt.Errorf("member %s does not belong to family %s: %w", member.ID, family.ID, fqerrors.ErrInvalidTarget)
	}
	if !habit.IsAssignedTo(member.ID) {
		return fmt.Errorf("member %s on habit %s: %w", member.ID, habit.ID, fqerrors.ErrNotAssigned)
	}
	if !habit.IsActive {
		return fmt.Errorf("habit %s: %w", habit.ID, fqerrors.ErrInactiveHabit)
	}
	if s.opts.EnforceSchedule && !s.scheduler.IsDueOn(habit, info.TodayDayOfWeek) {
		return fmt.Errorf("habit %s on %s: %w", habit.ID, info.Today, fqerrors.ErrNotDue)
	}
	return nil
}

// lookupError marks a missing row as an invalid target while keeping
// storage.ErrNotFound in the chain.
func lookupError(kind, id string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%s %s: %w: %w", kind, id, fqerrors.ErrInvalidTarget, err)
	}
	return fmt.Errorf("failed to load %s: %w", kind, err)
}
