package users

import (
	"context"
	"fmt"

	"github.com/cadet-portal/cadet-portal/internal/platform/db"
	"github.com/cadet-portal/cadet-portal/internal/shared"
)

// Repository provides cadet and admin account persistence.
type Repository interface {
	ListUnitCadets(ctx context.Context, unitID string) ([]Cadet, error)
	ListCadets(ctx context.Context) ([]Cadet, error)
	UnitCadetNumber(ctx context.Context, id int64, unitID string) (string, error)
	ApproveUnitCadet(ctx context.Context, id int64, unitID string) (bool, error)
	DeleteUnitCadet(ctx context.Context, id int64, unitID string) (bool, error)
	SetCadetApproval(ctx context.Context, regimentalNumber string, approved bool) (bool, error)
	DeleteCadet(ctx context.Context, regimentalNumber string) (bool, error)
	ListAdmins(ctx context.Context) ([]Admin, error)
	SetAdminApproval(ctx context.Context, unitID string, approved bool) (bool, error)
	DeleteAdmin(ctx context.Context, unitID string) (bool, error)
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	db db.DBTX
}

// NewRepository constructs a repository.
func NewRepository(conn db.DBTX) *PGRepository {
	return &PGRepository{db: conn}
}

const selectCadet = `SELECT id, regimental_number, name, email, contact, ano_id, is_approved, created_at FROM users`

func (r *PGRepository) listCadets(ctx context.Context, query string, args ...any) ([]Cadet, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("users: list cadets: %w", err)
	}
	defer rows.Close()
	list := []Cadet{}
	for rows.Next() {
		var c Cadet
		if err := rows.Scan(&c.ID, &c.RegimentalNumber, &c.Name, &c.Email, &c.Contact, &c.UnitID, &c.IsApproved, &c.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// ListUnitCadets returns a unit's cadets, pending approvals first.
func (r *PGRepository) ListUnitCadets(ctx context.Context, unitID string) ([]Cadet, error) {
	return r.listCadets(ctx, selectCadet+` WHERE ano_id = $1 ORDER BY is_approved ASC, name ASC`, unitID)
}

// ListCadets returns every cadet, pending approvals first.
func (r *PGRepository) ListCadets(ctx context.Context) ([]Cadet, error) {
	return r.listCadets(ctx, selectCadet+` ORDER BY is_approved ASC, name ASC`)
}

// UnitCadetNumber resolves the regimental number of cadet id within unitID.
func (r *PGRepository) UnitCadetNumber(ctx context.Context, id int64, unitID string) (string, error) {
	var number string
	err := r.db.QueryRow(ctx, `SELECT regimental_number FROM users WHERE id = $1 AND ano_id = $2`, id, unitID).Scan(&number)
	if err != nil {
		if db.IsNoRows(err) {
			return "", shared.ErrNotFound
		}
		return "", fmt.Errorf("users: find cadet: %w", err)
	}
	return number, nil
}

// ApproveUnitCadet approves cadet id when it belongs to unitID.
func (r *PGRepository) ApproveUnitCadet(ctx context.Context, id int64, unitID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE users SET is_approved = TRUE, updated_at = NOW() WHERE id = $1 AND ano_id = $2`, id, unitID)
	if err != nil {
		return false, fmt.Errorf("users: approve cadet: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteUnitCadet removes cadet id when it belongs to unitID.
func (r *PGRepository) DeleteUnitCadet(ctx context.Context, id int64, unitID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1 AND ano_id = $2`, id, unitID)
	if err != nil {
		return false, fmt.Errorf("users: delete cadet: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// SetCadetApproval flips the approval flag of a cadet by regimental number.
func (r *PGRepository) SetCadetApproval(ctx context.Context, regimentalNumber string, approved bool) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE users SET is_approved = $2, updated_at = NOW() WHERE regimental_number = $1`, regimentalNumber, approved)
	if err != nil {
		return false, fmt.Errorf("users: set cadet approval: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteCadet removes a cadet by regimental number.
func (r *PGRepository) DeleteCadet(ctx context.Context, regimentalNumber string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE regimental_number = $1`, regimentalNumber)
	if err != nil {
		return false, fmt.Errorf("users: delete cadet: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListAdmins returns every unit-admin, pending approvals first.
func (r *PGRepository) ListAdmins(ctx context.Context) ([]Admin, error) {
	rows, err := r.db.Query(ctx, `SELECT ano_id, name, email, contact, role, type, is_approved, created_at, updated_at
		FROM admins ORDER BY is_approved ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("users: list admins: %w", err)
	}
	defer rows.Close()
	list := []Admin{}
	for rows.Next() {
		var a Admin
		if err := rows.Scan(&a.UnitID, &a.Name, &a.Email, &a.Contact, &a.Role, &a.Type, &a.IsApproved, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// SetAdminApproval flips the approval flag of a unit-admin.
func (r *PGRepository) SetAdminApproval(ctx context.Context, unitID string, approved bool) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE admins SET is_approved = $2, updated_at = NOW() WHERE ano_id = $1`, unitID, approved)
	if err != nil {
		return false, fmt.Errorf("users: set admin approval: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteAdmin removes a unit-admin.
func (r *PGRepository) DeleteAdmin(ctx context.Context, unitID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM admins WHERE ano_id = $1`, unitID)
	if err != nil {
		return false, fmt.Errorf("users: delete admin: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

var _ Repository = (*PGRepository)(nil)
