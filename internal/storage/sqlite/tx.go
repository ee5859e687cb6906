package sqlite

import (
	"context"
	"fmt"
	"time"

	fqerrors "github.com/julianstephens/famquest/internal/errors"
	"github.com/julianstephens/famquest/internal/models"
)

// tx implements storage.Tx. SQLite has no row locks; the single-connection
// pool already serializes transactions.
type tx struct {
	q querier
}

func (t *tx) GetMemberForUpdate(ctx context.Context, id string) (models.Member, error) {
	return getMember(ctx, t.q, id)
}

func (t *tx) InsertCompletion(ctx context.Context, c models.CompletionLog) error {
	_, err := t.q.ExecContext(ctx, `
		INSERT INTO habit_logs (`+completionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.HabitID, c.MemberID, c.Date, c.XPEarned, c.Note, formatTime(c.CompletedAt))
	if isUniqueViolation(err, completionOncePerDay) {
		return fqerrors.ErrDuplicateCompletion
	}
	if err != nil {
		return fmt.Errorf("failed to insert completion: %w", err)
	}
	return nil
}

func (t *tx) CountCompletionsForMemberOnDay(ctx context.Context, memberID, day string) (int, error) {
	var count int
	err := t.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM habit_logs WHERE member_id = ? AND date = ?`, memberID, day).Scan(&count)
	return count, err
}

func (t *tx) HasCompletionOnDay(ctx context.Context, memberID, day string) (bool, error) {
	var exists int
	err := t.q.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM habit_logs WHERE member_id = ? AND date = ?)`, memberID, day).Scan(&exists)
	return exists == 1, err
}

func (t *tx) UpdateMemberProgress(ctx context.Context, memberID string, p models.Progress) error {
	res, err := t.q.ExecContext(ctx, `
		UPDATE members SET total_xp = ?, level = ?, current_streak = ?, longest_streak = ?, updated_at = ?
		WHERE id = ?`,
		p.TotalXP, p.Level, p.CurrentStreak, p.LongestStreak, formatTime(time.Now()), memberID)
	if err != nil {
		return fmt.Errorf("failed to update member progress: %w", err)
	}
	return expectOneRow(res, "member", memberID)
}
