package postgres

import (
	"context"

	pq "github.com/lib/pq"

	"github.com/julianstephens/famquest/internal/models"
)

const habitColumns = `id, family_id, title, icon, xp_reward, frequency, days_of_week,
	member_ids, time_of_day, display_order, is_active, created_at, updated_at`

func toInt64s(v []int) pq.Int64Array {
	out := make(pq.Int64Array, len(v))
	for i, d := range v {
		out[i] = int64(d)
	}
	return out
}

func fromInt64s(v pq.Int64Array) []int {
	out := make([]int, len(v))
	for i, d := range v {
		out[i] = int(d)
	}
	return out
}

func memberIDArray(v []string) pq.StringArray {
	if v == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(v)
}

func scanHabit(row scanner) (models.Habit, error) {
	var h models.Habit
	var days pq.Int64Array
	var memberIDs pq.StringArray
	err := row.Scan(&h.ID, &h.FamilyID, &h.Title, &h.Icon, &h.XPReward, &h.Frequency, &days,
		&memberIDs, &h.TimeOfDay, &h.DisplayOrder, &h.IsActive, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return models.Habit{}, err
	}
	h.DaysOfWeek = fromInt64s(days)
	h.MemberIDs = []string(memberIDs)
	if h.MemberIDs == nil {
		h.MemberIDs = []string{}
	}
	return h, nil
}

func (s *Store) AddHabit(ctx context.Context, h models.Habit) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO habits (`+habitColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		h.ID, h.FamilyID, h.Title, h.Icon, h.XPReward, h.Frequency, toInt64s(h.DaysOfWeek),
		memberIDArray(h.MemberIDs), h.TimeOfDay, h.DisplayOrder, h.IsActive, h.CreatedAt, h.UpdatedAt)
	return err
}

func (s *Store) GetHabit(ctx context.Context, id string) (models.Habit, error) {
	h, err := scanHabit(s.db.QueryRowContext(ctx, `SELECT `+habitColumns+` FROM habits WHERE id = $1`, id))
	if err != nil {
		return models.Habit{}, notFound("habit", id, err)
	}
	return h, nil
}

func (s *Store) GetHabitsForFamily(ctx context.Context, familyID string, includeInactive bool) ([]models.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE family_id = $1`
	if !includeInactive {
		query += " AND is_active"
	}
	query += " ORDER BY display_order, created_at"

	rows, err := s.db.QueryContext(ctx, query, familyID)
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

func (s *Store) UpdateHabit(ctx context.Context, h models.Habit) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE habits SET title = $1, icon = $2, xp_reward = $3, frequency = $4, days_of_week = $5,
			member_ids = $6, time_of_day = $7, display_order = $8, is_active = $9, updated_at = $10
		WHERE id = $11`,
		h.Title, h.Icon, h.XPReward, h.Frequency, toInt64s(h.DaysOfWeek),
		memberIDArray(h.MemberIDs), h.TimeOfDay, h.DisplayOrder, h.IsActive, h.UpdatedAt, h.ID)
	if err != nil {
		return err
	}
	return expectOneRow(res, "habit", h.ID)
}

func (s *Store) SetHabitActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE habits SET is_active = $1, updated_at = now() WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	return expectOneRow(res, "habit", id)
}

func (s *Store) NextHabitDisplayOrder(ctx context.Context, familyID string) (int, error) {
	var next int
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(display_order) + 1, 0) FROM habits WHERE family_id = $1`, familyID).Scan(&next)
	return next, err
}
