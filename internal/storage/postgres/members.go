package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/julianstephens/famquest/internal/models"
)

const memberColumns = `id, family_id, name, role, age, display_order,
	total_xp, level, current_streak, longest_streak, created_at, updated_at`

func scanMember(row scanner) (models.Member, error) {
	var m models.Member
	var age sql.NullInt64
	err := row.Scan(&m.ID, &m.FamilyID, &m.Name, &m.Role, &age, &m.DisplayOrder,
		&m.TotalXP, &m.Level, &m.CurrentStreak, &m.LongestStreak, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return models.Member{}, err
	}
	if age.Valid {
		a := int(age.Int64)
		m.Age = &a
	}
	return m, nil
}

func nullableAge(age *int) sql.NullInt64 {
	if age == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*age), Valid: true}
}

func (s *Store) AddMember(ctx context.Context, m models.Member) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO members (`+memberColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		m.ID, m.FamilyID, m.Name, m.Role, nullableAge(m.Age), m.DisplayOrder,
		m.TotalXP, m.Level, m.CurrentStreak, m.LongestStreak, m.CreatedAt, m.UpdatedAt)
	return err
}

func (s *Store) GetMember(ctx context.Context, id string) (models.Member, error) {
	m, err := scanMember(s.db.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1`, id))
	if err != nil {
		return models.Member{}, notFound("member", id, err)
	}
	return m, nil
}

func (s *Store) GetMembersForFamily(ctx context.Context, familyID string) ([]models.Member, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+memberColumns+` FROM members
		WHERE family_id = $1 ORDER BY display_order, created_at`, familyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *Store) UpdateMember(ctx context.Context, m models.Member) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE members SET name = $1, role = $2, age = $3, display_order = $4, updated_at = $5
		WHERE id = $6`,
		m.Name, m.Role, nullableAge(m.Age), m.DisplayOrder, m.UpdatedAt, m.ID)
	if err != nil {
		return err
	}
	return expectOneRow(res, "member", m.ID)
}

func (s *Store) SetMemberStreaks(ctx context.Context, memberID string, current, longest int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE members SET current_streak = $1, longest_streak = $2, updated_at = now()
		WHERE id = $3`,
		current, longest, memberID)
	if err != nil {
		return err
	}
	return expectOneRow(res, "member", memberID)
}

func (s *Store) DeleteMember(ctx context.Context, id string) (int, error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = sqlTx.Rollback() }()

	if _, err := sqlTx.ExecContext(ctx, `
		UPDATE habits SET member_ids = array_remove(member_ids, $1), updated_at = now()
		WHERE $1 = ANY(member_ids)`, id); err != nil {
		return 0, fmt.Errorf("failed to unassign member from habits: %w", err)
	}

	res, err := sqlTx.ExecContext(ctx, `DELETE FROM habit_logs WHERE member_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete completion logs: %w", err)
	}
	deletedLogs, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	res, err = sqlTx.ExecContext(ctx, `DELETE FROM members WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete member: %w", err)
	}
	if err := expectOneRow(res, "member", id); err != nil {
		return 0, err
	}

	if err := sqlTx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return int(deletedLogs), nil
}

func (s *Store) NextMemberDisplayOrder(ctx context.Context, familyID string) (int, error) {
	var next int
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(display_order) + 1, 0) FROM members WHERE family_id = $1`, familyID).Scan(&next)
	return next, err
}
