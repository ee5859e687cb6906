package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/julianstephens/famquest/internal/models"
)

const memberColumns = `id, family_id, name, role, age, display_order,
	total_xp, level, current_streak, longest_streak, created_at, updated_at`

func scanMember(row scanner) (models.Member, error) {
	var m models.Member
	var age sql.NullInt64
	var createdAt, updatedAt string
	err := row.Scan(&m.ID, &m.FamilyID, &m.Name, &m.Role, &age, &m.DisplayOrder,
		&m.TotalXP, &m.Level, &m.CurrentStreak, &m.LongestStreak, &createdAt, &updatedAt)
	if err != nil {
		return models.Member{}, err
	}
	if age.Valid {
		a := int(age.Int64)
		m.Age = &a
	}
	if m.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.Member{}, err
	}
	if m.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return models.Member{}, err
	}
	return m, nil
}

func nullableAge(age *int) sql.NullInt64 {
	if age == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*age), Valid: true}
}

func getMember(ctx context.Context, q querier, id string) (models.Member, error) {
	row := q.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM members WHERE id = ?`, id)
	m, err := scanMember(row)
	if err != nil {
		return models.Member{}, notFound("member", id, err)
	}
	return m, nil
}

func (s *Store) AddMember(ctx context.Context, m models.Member) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO members (`+memberColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.FamilyID, m.Name, m.Role, nullableAge(m.Age), m.DisplayOrder,
		m.TotalXP, m.Level, m.CurrentStreak, m.LongestStreak,
		formatTime(m.CreatedAt), formatTime(m.UpdatedAt))
	return err
}

func (s *Store) GetMember(ctx context.Context, id string) (models.Member, error) {
	return getMember(ctx, s.db, id)
}

func (s *Store) GetMembersForFamily(ctx context.Context, familyID string) ([]models.Member, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+memberColumns+` FROM members
		WHERE family_id = ? ORDER BY display_order, created_at`, familyID)
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
		UPDATE members SET name = ?, role = ?, age = ?, display_order = ?, updated_at = ?
		WHERE id = ?`,
		m.Name, m.Role, nullableAge(m.Age), m.DisplayOrder, formatTime(m.UpdatedAt), m.ID)
	if err != nil {
		return err
	}
	return expectOneRow(res, "member", m.ID)
}

func (s *Store) SetMemberStreaks(ctx context.Context, memberID string, current, longest int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE members SET current_streak = ?, longest_streak = ?, updated_at = ?
		WHERE id = ?`,
		current, longest, formatTime(time.Now()), memberID)
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

	member, err := getMember(ctx, sqlTx, id)
	if err != nil {
		return 0, err
	}

	habits, err := habitsForFamily(ctx, sqlTx, member.FamilyID, true)
	if err != nil {
		return 0, err
	}
	now := formatTime(time.Now())
	for _, h := range habits {
		if !h.IsAssignedTo(id) {
			continue
		}
		remaining := slices.DeleteFunc(slices.Clone(h.MemberIDs), func(m string) bool { return m == id })
		ids, err := encodeStrings(remaining)
		if err != nil {
			return 0, err
		}
		if _, err := sqlTx.ExecContext(ctx, `UPDATE habits SET member_ids = ?, updated_at = ? WHERE id = ?`, ids, now, h.ID); err != nil {
			return 0, fmt.Errorf("failed to unassign member from habit %s: %w", h.ID, err)
		}
	}

	res, err := sqlTx.ExecContext(ctx, `DELETE FROM habit_logs WHERE member_id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete completion logs: %w", err)
	}
	deletedLogs, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	if _, err := sqlTx.ExecContext(ctx, `DELETE FROM members WHERE id = ?`, id); err != nil {
		return 0, fmt.Errorf("failed to delete member: %w", err)
	}

	if err := sqlTx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return int(deletedLogs), nil
}

func (s *Store) NextMemberDisplayOrder(ctx context.Context, familyID string) (int, error) {
	var maxOrder sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT MAX(display_order) FROM members WHERE family_id = ?`, familyID).Scan(&maxOrder)
	if err != nil {
		return 0, err
	}
	if !maxOrder.Valid {
		return 0, nil
	}
	return int(maxOrder.Int64) + 1, nil
}
