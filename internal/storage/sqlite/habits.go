package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/julianstephens/famquest/internal/models"
)

const habitColumns = `id, family_id, title, icon, xp_reward, frequency, days_of_week,
	member_ids, time_of_day, display_order, is_active, created_at, updated_at`

// SQLite has no array type; days_of_week and member_ids are stored as JSON arrays.
func encodeInts(v []int) (string, error) {
	if v == nil {
		v = []int{}
	}
	b, err := json.Marshal(v)
	return string(b), err
}

func encodeStrings(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	return string(b), err
}

func scanHabit(row scanner) (models.Habit, error) {
	var h models.Habit
	var days, memberIDs, createdAt, updatedAt string
	err := row.Scan(&h.ID, &h.FamilyID, &h.Title, &h.Icon, &h.XPReward, &h.Frequency, &days,
		&memberIDs, &h.TimeOfDay, &h.DisplayOrder, &h.IsActive, &createdAt, &updatedAt)
	if err != nil {
		return models.Habit{}, err
	}
	if err := json.Unmarshal([]byte(days), &h.DaysOfWeek); err != nil {
		return models.Habit{}, fmt.Errorf("failed to decode days_of_week for habit %s: %w", h.ID, err)
	}
	if err := json.Unmarshal([]byte(memberIDs), &h.MemberIDs); err != nil {
		return models.Habit{}, fmt.Errorf("failed to decode member_ids for habit %s: %w", h.ID, err)
	}
	if h.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.Habit{}, err
	}
	if h.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return models.Habit{}, err
	}
	return h, nil
}

func habitsForFamily(ctx context.Context, q querier, familyID string, includeInactive bool) ([]models.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE family_id = ?`
	if !includeInactive {
		query += " AND is_active = 1"
	}
	query += " ORDER BY display_order, created_at"

	rows, err := q.QueryContext(ctx, query, familyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (s *Store) AddHabit(ctx context.Context, h models.Habit) error {
	days, err := encodeInts(h.DaysOfWeek)
	if err != nil {
		return err
	}
	memberIDs, err := encodeStrings(h.MemberIDs)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO habits (`+habitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.FamilyID, h.Title, h.Icon, h.XPReward, h.Frequency, days,
		memberIDs, h.TimeOfDay, h.DisplayOrder, h.IsActive,
		formatTime(h.CreatedAt), formatTime(h.UpdatedAt))
	return err
}

func (s *Store) GetHabit(ctx context.Context, id string) (models.Habit, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+habitColumns+` FROM habits WHERE id = ?`, id)
	h, err := scanHabit(row)
	if err != nil {
		return models.Habit{}, notFound("habit", id, err)
	}
	return h, nil
}

func (s *Store) GetHabitsForFamily(ctx context.Context, familyID string, includeInactive bool) ([]models.Habit, error) {
	return habitsForFamily(ctx, s.db, familyID, includeInactive)
}

func (s *Store) UpdateHabit(ctx context.Context, h models.Habit) error {
	days, err := encodeInts(h.DaysOfWeek)
	if err != nil {
		return err
	}
	memberIDs, err := encodeStrings(h.MemberIDs)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE habits SET title = ?, icon = ?, xp_reward = ?, frequency = ?, days_of_week = ?,
			member_ids = ?, time_of_day = ?, display_order = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		h.Title, h.Icon, h.XPReward, h.Frequency, days,
		memberIDs, h.TimeOfDay, h.DisplayOrder, h.IsActive, formatTime(h.UpdatedAt), h.ID)
	if err != nil {
		return err
	}
	return expectOneRow(res, "habit", h.ID)
}

func (s *Store) SetHabitActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE habits SET is_active = ?, updated_at = ? WHERE id = ?`, active, formatTime(time.Now()), id)
	if err != nil {
		return err
	}
	return expectOneRow(res, "habit", id)
}

func (s *Store) NextHabitDisplayOrder(ctx context.Context, familyID string) (int, error) {
	var maxOrder sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT MAX(display_order) FROM habits WHERE family_id = ?`, familyID).Scan(&maxOrder)
	if err != nil {
		return 0, err
	}
	if !maxOrder.Valid {
		return 0, nil
	}
	return int(maxOrder.Int64) + 1, nil
}
