package postgres

import (
	"context"
	"fmt"

	fqerrors "github.com/julianstephens/famquest/internal/errors"
	"github.com/julianstephens/famquest/internal/models"
)

type tx struct {
	q querier
}

// GetMemberForUpdate locks the member row so concurrent completions of different
// habits by the same member apply their progress one after another.
func (t *tx) GetMemberForUpdate(ctx context.Context, id string) (models.Member, error) {
	m, err := scanMember(t.q.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return models.Member{}, notFound("member", id, err)
	}
	return m, nil
}

// InsertCompletion skips the row when the habit is already logged for the
// member that day. A failed statement would abort the whole transaction, so
// the conflict is resolved in SQL rather than surfaced as 23505.
func (t *tx) InsertCompletion(ctx context.Context, c models.CompletionLog) error {
	res, err := t.q.ExecContext(ctx, `
		INSERT INTO habit_logs (id, habit_id, member_id, date, xp_earned, note, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT ON CONSTRAINT `+completionOncePerDay+` DO NOTHING`,
		c.ID, c.HabitID, c.MemberID, c.Date, c.XPEarned, c.Note, c.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to insert completion: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to insert completion: %w", err)
	}
	if n == 0 {
		return fqerrors.ErrDuplicateCompletion
	}
	return nil
}

func (t *tx) CountCompletionsForMemberOnDay(ctx context.Context, memberID, day string) (int, error) {
	var count int
	err := t.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM habit_logs WHERE member_id = $1 AND date = $2`, memberID, day).Scan(&count)
	return count, err
}

func (t *tx) HasCompletionOnDay(ctx context.Context, memberID, day string) (bool, error) {
	var exists bool
	err := t.q.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM habit_logs WHERE member_id = $1 AND date = $2)`, memberID, day).Scan(&exists)
	return exists, err
}

func (t *tx) UpdateMemberProgress(ctx context.Context, memberID string, p models.Progress) error {
	res, err := t.q.ExecContext(ctx, `
		UPDATE members SET total_xp = $1, level = $2, current_streak = $3, longest_streak = $4, updated_at = now()
		WHERE id = $5`,
		p.TotalXP, p.Level, p.CurrentStreak, p.LongestStreak, memberID)
	if err != nil {
		return fmt.Errorf("failed to update member progress: %w", err)
	}
	return expectOneRow(res, "member", memberID)
}
