package postgres

import (
	"context"
	"fmt"

	"github.com/julianstephens/famquest/internal/models"
)

// date is a DATE column; it is read back as YYYY-MM-DD text so callers never see a time.Time
const completionColumns = "id, habit_id, member_id, to_char(date, 'YYYY-MM-DD'), xp_earned, note, completed_at"

func scanCompletion(row scanner) (models.CompletionLog, error) {
	var c models.CompletionLog
	err := row.Scan(&c.ID, &c.HabitID, &c.MemberID, &c.Date, &c.XPEarned, &c.Note, &c.CompletedAt)
	return c, err
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
	query := `SELECT ` + completionColumns + ` FROM habit_logs WHERE member_id = $1`
	args := []any{memberID}
	if startDay != "" {
		args = append(args, startDay)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if endDay != "" {
		args = append(args, endDay)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}
	query += " ORDER BY date, completed_at"
	return s.queryCompletions(ctx, query, args...)
}

func (s *Store) GetCompletionsForFamilyOnDay(ctx context.Context, familyID, day string) ([]models.CompletionLog, error) {
	return s.queryCompletions(ctx, `
		SELECT l.id, l.habit_id, l.member_id, to_char(l.date, 'YYYY-MM-DD'), l.xp_earned, l.note, l.completed_at
		FROM habit_logs l
		JOIN members m ON m.id = l.member_id
		WHERE m.family_id = $1 AND l.date = $2
		ORDER BY l.completed_at`, familyID, day)
}

func (s *Store) GetCompletionDatesForMember(ctx context.Context, memberID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT to_char(date, 'YYYY-MM-DD') AS day
		FROM habit_logs WHERE member_id = $1 ORDER BY day DESC`, memberID)
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
