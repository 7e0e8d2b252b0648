package fallin

import (
	"context"
	"fmt"

	"github.com/cadet-portal/cadet-portal/internal/platform/db"
	"github.com/cadet-portal/cadet-portal/internal/shared"
)

// Repository provides fall-in persistence.
type Repository interface {
	Create(ctx context.Context, unitID string, in Input) (int64, error)
	ListByUnit(ctx context.Context, unitID string) ([]Fallin, error)
	Get(ctx context.Context, id int64) (*Fallin, error)
	Update(ctx context.Context, id int64, unitID string, in Input) (bool, error)
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

const selectFallin = `SELECT fallin_id, ano_id, date::text, time::text, type, location, dress_code,
	instructions, activity_details, created_at, updated_at FROM fallin`

type scanner interface {
	Scan(dest ...any) error
}

func scanFallin(row scanner) (Fallin, error) {
	var f Fallin
	err := row.Scan(&f.ID, &f.UnitID, &f.Date, &f.Time, &f.Type, &f.Location, &f.DressCode,
		&f.Instructions, &f.ActivityDetails, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

// Create inserts a fall-in and returns its id.
func (r *PGRepository) Create(ctx context.Context, unitID string, in Input) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `INSERT INTO fallin
		(date, time, type, ano_id, location, dress_code, instructions, activity_details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING fallin_id`,
		in.Date, in.Time, in.typeOrDefault(), unitID, db.Nullable(in.Location), in.DressCode,
		db.Nullable(in.Instructions), db.Nullable(in.ActivityDetails)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("fallin: create: %w", err)
	}
	return id, nil
}

// ListByUnit returns a unit's fall-ins, latest first.
func (r *PGRepository) ListByUnit(ctx context.Context, unitID string) ([]Fallin, error) {
	rows, err := r.db.Query(ctx, selectFallin+` WHERE ano_id = $1 ORDER BY date DESC, time DESC`, unitID)
	if err != nil {
		return nil, fmt.Errorf("fallin: list: %w", err)
	}
	defer rows.Close()
	list := []Fallin{}
	for rows.Next() {
		f, err := scanFallin(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, f)
	}
	return list, rows.Err()
}

// Get loads a fall-in regardless of unit.
func (r *PGRepository) Get(ctx context.Context, id int64) (*Fallin, error) {
	f, err := scanFallin(r.db.QueryRow(ctx, selectFallin+` WHERE fallin_id = $1`, id))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("fallin: get: %w", err)
	}
	return &f, nil
}

// Update rewrites a fall-in owned by unitID.
func (r *PGRepository) Update(ctx context.Context, id int64, unitID string, in Input) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE fallin
		SET date = $3, time = $4, type = $5, location = $6, dress_code = $7,
			instructions = $8, activity_details = $9, updated_at = NOW()
		WHERE fallin_id = $1 AND ano_id = $2`,
		id, unitID, in.Date, in.Time, in.typeOrDefault(), db.Nullable(in.Location), in.DressCode,
		db.Nullable(in.Instructions), db.Nullable(in.ActivityDetails))
	if err != nil {
		return false, fmt.Errorf("fallin: update: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes a fall-in owned by unitID. Attendance rows cascade.
func (r *PGRepository) Delete(ctx context.Context, id int64, unitID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM fallin WHERE fallin_id = $1 AND ano_id = $2`, id, unitID)
	if err != nil {
		return false, fmt.Errorf("fallin: delete: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

var _ Repository = (*PGRepository)(nil)
