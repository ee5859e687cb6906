package sqlite

import (
	"context"
	"fmt"

	"github.com/julianstephens/famquest/internal/models"
)

const familyColumns = "id, owner_id, name, timezone, locale, created_at, updated_at"

func scanFamily(row scanner) (models.Family, error) {
	var f models.Family
	var createdAt, updatedAt string
	if err := row.Scan(&f.ID, &f.OwnerID, &f.Name, &f.Timezone, &f.Locale, &createdAt, &updatedAt); err != nil {
		return models.Family{}, err
	}
	var err error
	if f.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.Family{}, err
	}
	if f.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return models.Family{}, err
	}
	return f, nil
}

func (s *Store) AddFamily(ctx context.Context, f models.Family) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO families (`+familyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.OwnerID, f.Name, f.Timezone, f.Locale, formatTime(f.CreatedAt), formatTime(f.UpdatedAt))
	if isUniqueViolation(err, familyOwnerKey) {
		return fmt.Errorf("owner %s already has a family", f.OwnerID)
	}
	return err
}

func (s *Store) GetFamily(ctx context.Context, id string) (models.Family, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+familyColumns+` FROM families WHERE id = ?`, id)
	f, err := scanFamily(row)
	if err != nil {
		return models.Family{}, notFound("family", id, err)
	}
	return f, nil
}

func (s *Store) GetFamilyByOwner(ctx context.Context, ownerID string) (models.Family, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+familyColumns+` FROM families WHERE owner_id = ?`, ownerID)
	f, err := scanFamily(row)
	if err != nil {
		return models.Family{}, notFound("family for owner", ownerID, err)
	}
	return f, nil
}

func (s *Store) GetAllFamilies(ctx context.Context) ([]models.Family, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+familyColumns+` FROM families ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var families []models.Family
	for rows.Next() {
		f, err := scanFamily(rows)
		if err != nil {
			return nil, err
		}
		families = append(families, f)
	}
	return families, rows.Err()
}

func (s *Store) UpdateFamily(ctx context.Context, f models.Family) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE families SET name = ?, timezone = ?, locale = ?, updated_at = ?
		WHERE id = ?`,
		f.Name, f.Timezone, f.Locale, formatTime(f.UpdatedAt), f.ID)
	if err != nil {
		return err
	}
	return expectOneRow(res, "family", f.ID)
}
