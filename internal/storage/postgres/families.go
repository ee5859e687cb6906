package postgres

import (
	"context"
	"fmt"

	"github.com/julianstephens/famquest/internal/models"
)

const familyColumns = "id, owner_id, name, timezone, locale, created_at, updated_at"

func scanFamily(row scanner) (models.Family, error) {
	var f models.Family
	err := row.Scan(&f.ID, &f.OwnerID, &f.Name, &f.Timezone, &f.Locale, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

func (s *Store) AddFamily(ctx context.Context, f models.Family) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO families (`+familyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		f.ID, f.OwnerID, f.Name, f.Timezone, f.Locale, f.CreatedAt, f.UpdatedAt)
	if isUniqueViolation(err, familyOwnerKey) {
		return fmt.Errorf("owner %s already has a family", f.OwnerID)
	}
	return err
}

func (s *Store) GetFamily(ctx context.Context, id string) (models.Family, error) {
	f, err := scanFamily(s.db.QueryRowContext(ctx, `SELECT `+familyColumns+` FROM families WHERE id = $1`, id))
	if err != nil {
		return models.Family{}, notFound("family", id, err)
	}
	return f, nil
}

func (s *Store) GetFamilyByOwner(ctx context.Context, ownerID string) (models.Family, error) {
	f, err := scanFamily(s.db.QueryRowContext(ctx, `SELECT `+familyColumns+` FROM families WHERE owner_id = $1`, ownerID))
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
		UPDATE families SET name = $1, timezone = $2, locale = $3, updated_at = $4
		WHERE id = $5`,
		f.Name, f.Timezone, f.Locale, f.UpdatedAt, f.ID)
	if err != nil {
		return err
	}
	return expectOneRow(res, "family", f.ID)
}
