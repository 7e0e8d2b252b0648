package achievements

import (
	"context"
	"fmt"

	"github.com/cadet-portal/cadet-portal/internal/platform/db"
	"github.com/cadet-portal/cadet-portal/internal/shared"
)

// Repository provides achievement persistence scoped to a unit.
type Repository interface {
	ListByUnit(ctx context.Context, unitID string) ([]Achievement, error)
	Get(ctx context.Context, id int64, unitID string) (*Achievement, error)
	Create(ctx context.Context, unitID string, in Input, imagePath string) (int64, error)
	Delete(ctx context.Context, id int64, unitID string) (bool, error)
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	db db.DBTX
}

// NewRepository constructs the repository.
func NewRepository(conn db.DBTX) *PGRepository {
	return &PGRepository{db: conn}
}

// ListByUnit lists a unit's achievements, newest first.
func (r *PGRepository) ListByUnit(ctx context.Context, unitID string) ([]Achievement, error) {
	rows, err := r.db.Query(ctx, `SELECT achievement_id, title, description, image_path, created_at
		FROM achievements WHERE ano_id = $1 ORDER BY created_at DESC`, unitID)
	if err != nil {
		return nil, fmt.Errorf("achievements: list: %w", err)
	}
	defer rows.Close()
	list := []Achievement{}
	for rows.Next() {
		var a Achievement
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.ImagePath, &a.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// Get loads an achievement owned by unitID.
func (r *PGRepository) Get(ctx context.Context, id int64, unitID string) (*Achievement, error) {
	var a Achievement
	err := r.db.QueryRow(ctx, `SELECT achievement_id, title, description, image_path, created_at
		FROM achievements WHERE achievement_id = $1 AND ano_id = $2`, id, unitID).
		Scan(&a.ID, &a.Title, &a.Description, &a.ImagePath, &a.CreatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("achievements: get: %w", err)
	}
	return &a, nil
}

// Create inserts an achievement and returns its id.
func (r *PGRepository) Create(ctx context.Context, unitID string, in Input, imagePath string) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `INSERT INTO achievements (ano_id, title, description, image_path)
		VALUES ($1, $2, $3, $4) RETURNING achievement_id`,
		unitID, in.Title, db.Nullable(in.Description), db.Nullable(imagePath)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("achievements: create: %w", err)
	}
	return id, nil
}

// Delete removes an achievement owned by unitID.
func (r *PGRepository) Delete(ctx context.Context, id int64, unitID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM achievements WHERE achievement_id = $1 AND ano_id = $2`, id, unitID)
	if err != nil {
		return false, fmt.Errorf("achievements: delete: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

var _ Repository = (*PGRepository)(nil)
