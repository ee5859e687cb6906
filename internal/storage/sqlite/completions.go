package sqlite

import (
	"context"

	"github.com/julianstephens/famquest/internal/models"
)

const completionColumns = "id, habit_id, member_id, date, xp_earned, note, completed_at"

func scanCompletion(row scanner) (models.CompletionLog, error) {
	var c models.CompletionLog
	var completedAt string
	if err := row.Scan(&c.ID, &c.HabitID, &c.MemberID, &c.Date, &c.XPEarned, &c.Note, &completedAt); err != nil {
		return models.CompletionLog{}, err
	}
	var err error
	if c.CompletedAt, err = parseTime("completed_at", completedAt); err != nil {
		return models.CompletionLog{}, err
	}
	return c, nil
}

func (s *Store) queryCompletions(ctx context.Context, query string, args ...any) ([]models.CompletionLog, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.CompletionLog
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, c)
	}
	return logs, rows.Err()
}

func (s *Store) GetCompletionsForMember(ctx context.Context, memberID, startDay, endDay string) ([]models.CompletionLog, error) {
	query := `SELECT ` + completionColumns + ` FROM habit_logs WHERE member_id = ?`
	args := []any{memberID}
	if startDay != "" {
		query += " AND date >= ?"
		args = append(args, startDay)
	}
	if endDay != "" {
		query += " AND date <= ?"
		args = append(args, endDay)
	}
	query += " ORDER BY date, completed_at"
	return s.queryCompletions(ctx, query, args...)
}

func (s *Store) GetCompletionsForFamilyOnDay(ctx context.Context, familyID, day string) ([]models.CompletionLog, error) {
	return s.queryCompletions(ctx, `
		SELECT l.id, l.habit_id, l.member_id, l.date, l.xp_earned, l.note, l.completed_at
		FROM habit_logs l
		JOIN members m ON m.id = l.member_id
		WHERE m.family_id = ? AND l.date = ?
		ORDER BY l.completed_at`, familyID, day)
}

func (s *Store) GetCompletionDatesForMember(ctx context.Context, memberID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT date FROM habit_logs WHERE member_id = ? ORDER BY date DESC`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}
