package attendance

import (
	"context"
	"fmt"

	"github.com/cadet-portal/cadet-portal/internal/platform/db"
	"github.com/cadet-portal/cadet-portal/internal/shared"
)

// Repository provides attendance persistence.
type Repository interface {
	ListFallins(ctx context.Context, unitID string) ([]FallinSummary, error)
	FallinUnit(ctx context.Context, fallinID int64) (string, error)
	UnitCadets(ctx context.Context, unitID string) ([]Cadet, error)
	Upsert(ctx context.Context, fallinID int64, unitID string, m Mark) error
	ListForFallin(ctx context.Context, fallinID int64) ([]Row, error)
	Get(ctx context.Context, id int64) (*Record, error)
	Update(ctx context.Context, id int64, c Change) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	db db.DBTX
}

// NewRepository constructs the repository.
func NewRepository(conn db.DBTX) *PGRepository {
	return &PGRepository{db: conn}
}

// ListFallins lists a unit's fall-ins, latest first.
func (r *PGRepository) ListFallins(ctx context.Context, unitID string) ([]FallinSummary, error) {
	rows, err := r.db.Query(ctx, `SELECT fallin_id, date::text, time::text, type, location
		FROM fallin WHERE ano_id = $1 ORDER BY date DESC, time DESC`, unitID)
	if err != nil {
		return nil, fmt.Errorf("attendance: list fallins: %w", err)
	}
	defer rows.Close()
	list := []FallinSummary{}
	for rows.Next() {
		var f FallinSummary
		if err := rows.Scan(&f.ID, &f.Date, &f.Time, &f.Type, &f.Location); err != nil {
			return nil, err
		}
		list = append(list, f)
	}
	return list, rows.Err()
}

// FallinUnit returns the unit owning fallinID.
func (r *PGRepository) FallinUnit(ctx context.Context, fallinID int64) (string, error) {
	var unitID string
	err := r.db.QueryRow(ctx, `SELECT ano_id FROM fallin WHERE fallin_id = $1`, fallinID).Scan(&unitID)
	if err != nil {
		if db.IsNoRows(err) {
			return "", shared.ErrNotFound
		}
		return "", fmt.Errorf("attendance: fallin unit: %w", err)
	}
	return unitID, nil
}

// UnitCadets lists a unit's cadets by name.
func (r *PGRepository) UnitCadets(ctx context.Context, unitID string) ([]Cadet, error) {
	rows, err := r.db.Query(ctx, `SELECT regimental_number, name FROM users WHERE ano_id = $1 ORDER BY name ASC`, unitID)
	if err != nil {
		return nil, fmt.Errorf("attendance: list cadets: %w", err)
	}
	defer rows.Close()
	list := []Cadet{}
	for rows.Next() {
		var c Cadet
		if err := rows.Scan(&c.RegimentalNumber, &c.Name); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// Upsert inserts or overwrites the (fall-in, cadet) attendance row.
func (r *PGRepository) Upsert(ctx context.Context, fallinID int64, unitID string, m Mark) error {
	_, err := r.db.Exec(ctx, `INSERT INTO attendance (fallin_id, regimental_number, ano_id, status, remarks)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (fallin_id, regimental_number) DO UPDATE
		SET status = EXCLUDED.status, remarks = EXCLUDED.remarks, updated_at = NOW()`,
		fallinID, m.RegimentalNumber, unitID, m.Status, db.Nullable(m.Remarks))
	if err != nil {
		return fmt.Errorf("attendance: upsert %s: %w", m.RegimentalNumber, err)
	}
	return nil
}

// ListForFallin returns a fall-in's attendance sheet ordered by cadet name.
func (r *PGRepository) ListForFallin(ctx context.Context, fallinID int64) ([]Row, error) {
	rows, err := r.db.Query(ctx, `SELECT a.attendance_id, a.regimental_number, u.name, a.status, a.remarks,
			a.recorded_at, a.updated_at
		FROM attendance a
		JOIN users u ON a.regimental_number = u.regimental_number
		WHERE a.fallin_id = $1
		ORDER BY u.name ASC`, fallinID)
	if err != nil {
		return nil, fmt.Errorf("attendance: view: %w", err)
	}
	defer rows.Close()
	list := []Row{}
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.ID, &row.RegimentalNumber, &row.Name, &row.Status, &row.Remarks,
			&row.RecordedAt, &row.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, row)
	}
	return list, rows.Err()
}

// Get loads a single record together with its fall-in's unit.
func (r *PGRepository) Get(ctx context.Context, id int64) (*Record, error) {
	var rec Record
	err := r.db.QueryRow(ctx, `SELECT a.attendance_id, a.fallin_id, a.regimental_number, a.ano_id, a.status,
			a.remarks, a.recorded_at, a.updated_at, f.ano_id
		FROM attendance a
		JOIN fallin f ON a.fallin_id = f.fallin_id
		WHERE a.attendance_id = $1`, id).
		Scan(&rec.ID, &rec.FallinID, &rec.RegimentalNumber, &rec.RecordUnit, &rec.Status,
			&rec.Remarks, &rec.RecordedAt, &rec.UpdatedAt, &rec.FallinUnit)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("attendance: get: %w", err)
	}
	return &rec, nil
}

// Update rewrites status and remarks of one record.
func (r *PGRepository) Update(ctx context.Context, id int64, c Change) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE attendance SET status = $2, remarks = $3, updated_at = NOW()
		WHERE attendance_id = $1`, id, c.Status, db.Nullable(c.Remarks))
	if err != nil {
		return false, fmt.Errorf("attendance: update: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes one record.
func (r *PGRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM attendance WHERE attendance_id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("attendance: delete: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

var _ Repository = (*PGRepository)(nil)
