package completion

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	fqerrors "github.com/julianstephens/famquest/internal/errors"
	"github.com/julianstephens/famquest/internal/models"
	"github.com/julianstephens/famquest/internal/storage"
)

// Recording is the recorder's answer for one (habit, member, date) key.
type Recording struct {
	Accepted bool
	XPEarned int
	Log      models.CompletionLog
}

// Recorder writes at most one completion log per (habit, member, date).
// The storage unique constraint is the only synchronization; the recorder
// never checks for an existing row first.
type Recorder struct {
	now func() time.Time
}

func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

// Record inserts the log with the habit's current reward frozen into it.
// A duplicate key yields Accepted=false and a nil error. Any other storage
// failure is returned as is.
func (r *Recorder) Record(ctx context.Context, tx storage.Tx, habit models.Habit, memberID, date string) (Recording, error) {
	log := models.CompletionLog{
		ID:          uuid.New().String(),
		HabitID:     habit.ID,
		MemberID:    memberID,
		Date:        date,
		XPEarned:    habit.XPReward,
		CompletedAt: r.now().UTC(),
	}
	if err := tx.InsertCompletion(ctx, log); err != nil {
		if errors.Is(err, fqerrors.ErrDuplicateCompletion) {
			return Recording{}, nil
		}
		return Recording{}, err
	}
	return Recording{Accepted: true, XPEarned: log.XPEarned, Log: log}, nil
}
