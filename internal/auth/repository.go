package auth

import (
	"context"
	"fmt"

	"github.com/cadet-portal/cadet-portal/internal/platform/db"
	"github.com/cadet-portal/cadet-portal/internal/shared"
)

// Repository defines persistence operations for the three identity tables.
type Repository interface {
	FindCadet(ctx context.Context, regimentalNumber string) (*Cadet, error)
	FindMaster(ctx context.Context, phone string) (*Master, error)
	FindAdmin(ctx context.Context, unitID string) (*Admin, error)
	CadetExists(ctx context.Context, email, regimentalNumber string) (bool, error)
	AdminExists(ctx context.Context, email, unitID string) (bool, error)
	CreateCadet(ctx context.Context, in NewCadet, passwordHash string) error
	CreateAdmin(ctx context.Context, in NewAdmin, passwordHash string) error
	ListApprovedAdmins(ctx context.Context) ([]UnitAdmin, error)
	PasswordHash(ctx context.Context, p shared.Principal) (string, error)
	SetPasswordHash(ctx context.Context, p shared.Principal, hash string) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db db.DBTX
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(conn db.DBTX) *PGRepository {
	return &PGRepository{db: conn}
}

// FindCadet fetches a cadet by regimental number.
func (r *PGRepository) FindCadet(ctx context.Context, regimentalNumber string) (*Cadet, error) {
	var c Cadet
	err := r.db.QueryRow(ctx, `SELECT id, regimental_number, name, email, ano_id, password_hash, is_approved
		FROM users WHERE regimental_number = $1`, regimentalNumber).
		Scan(&c.ID, &c.RegimentalNumber, &c.Name, &c.Email, &c.UnitID, &c.PasswordHash, &c.IsApproved)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("auth: find cadet: %w", err)
	}
	return &c, nil
}

// FindMaster fetches a super-admin by phone.
func (r *PGRepository) FindMaster(ctx context.Context, phone string) (*Master, error) {
	var m Master
	err := r.db.QueryRow(ctx, `SELECT phone, name, password_hash, is_active FROM masters WHERE phone = $1`, phone).
		Scan(&m.Phone, &m.Name, &m.PasswordHash, &m.IsActive)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("auth: find master: %w", err)
	}
	return &m, nil
}

// FindAdmin fetches a unit-admin by unit id.
func (r *PGRepository) FindAdmin(ctx context.Context, unitID string) (*Admin, error) {
	var a Admin
	err := r.db.QueryRow(ctx, `SELECT id, ano_id, role, name, email, password_hash, is_approved
		FROM admins WHERE ano_id = $1`, unitID).
		Scan(&a.ID, &a.UnitID, &a.Designation, &a.Name, &a.Email, &a.PasswordHash, &a.IsApproved)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("auth: find admin: %w", err)
	}
	return &a, nil
}

// CadetExists reports whether the email or regimental number is taken.
func (r *PGRepository) CadetExists(ctx context.Context, email, regimentalNumber string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 OR regimental_number = $2)`,
		email, regimentalNumber).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("auth: cadet exists: %w", err)
	}
	return exists, nil
}

// AdminExists reports whether the email or unit id is taken.
func (r *PGRepository) AdminExists(ctx context.Context, email, unitID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM admins WHERE email = $1 OR ano_id = $2)`,
		email, unitID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("auth: admin exists: %w", err)
	}
	return exists, nil
}

// CreateCadet inserts an unapproved cadet.
func (r *PGRepository) CreateCadet(ctx context.Context, in NewCadet, passwordHash string) error {
	_, err := r.db.Exec(ctx, `INSERT INTO users (regimental_number, name, email, contact, password_hash, ano_id)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		in.RegimentalNumber, in.Name, in.Email, in.Contact, passwordHash, in.UnitID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return shared.ErrDuplicate
		}
		return fmt.Errorf("auth: create cadet: %w", err)
	}
	return nil
}

// CreateAdmin inserts an unapproved unit-admin.
func (r *PGRepository) CreateAdmin(ctx context.Context, in NewAdmin, passwordHash string) error {
	_, err := r.db.Exec(ctx, `INSERT INTO admins (ano_id, role, name, email, contact, password_hash, type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		in.UnitID, in.Designation, in.Name, in.Email, in.Contact, passwordHash, in.Type)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return shared.ErrDuplicate
		}
		return fmt.Errorf("auth: create admin: %w", err)
	}
	return nil
}

// ListApprovedAdmins returns the units cadets may register under.
func (r *PGRepository) ListApprovedAdmins(ctx context.Context) ([]UnitAdmin, error) {
	rows, err := r.db.Query(ctx, `SELECT ano_id, name, role FROM admins WHERE is_approved ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("auth: list admins: %w", err)
	}
	defer rows.Close()
	admins := []UnitAdmin{}
	for rows.Next() {
		var a UnitAdmin
		if err := rows.Scan(&a.UnitID, &a.Name, &a.Designation); err != nil {
			return nil, err
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

type passwordQueries struct {
	read  string
	write string
	key   string
}

func passwordQueriesFor(p shared.Principal) passwordQueries {
	return shared.Match(p,
		func(c shared.CadetPrincipal) passwordQueries {
			return passwordQueries{
				read:  `SELECT password_hash FROM users WHERE regimental_number = $1`,
				write: `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE regimental_number = $1`,
				key:   c.RegimentalNumber,
			}
		},
		func(a shared.AdminPrincipal) passwordQueries {
			return passwordQueries{
				read:  `SELECT password_hash FROM admins WHERE ano_id = $1`,
				write: `UPDATE admins SET password_hash = $2, updated_at = NOW() WHERE ano_id = $1`,
				key:   a.UnitID,
			}
		},
		func(m shared.MasterPrincipal) passwordQueries {
			return passwordQueries{
				read:  `SELECT password_hash FROM masters WHERE phone = $1`,
				write: `UPDATE masters SET password_hash = $2, updated_at = NOW() WHERE phone = $1`,
				key:   m.Phone,
			}
		},
	)
}

// PasswordHash loads the stored hash for the caller's own account.
func (r *PGRepository) PasswordHash(ctx context.Context, p shared.Principal) (string, error) {
	q := passwordQueriesFor(p)
	if q.read == "" {
		return "", shared.ErrForbidden
	}
	var hash string
	if err := r.db.QueryRow(ctx, q.read, q.key).Scan(&hash); err != nil {
		if db.IsNoRows(err) {
			return "", shared.ErrNotFound
		}
		return "", fmt.Errorf("auth: load password: %w", err)
	}
	return hash, nil
}

// SetPasswordHash replaces the caller's stored hash.
func (r *PGRepository) SetPasswordHash(ctx context.Context, p shared.Principal, hash string) error {
	q := passwordQueriesFor(p)
	if q.write == "" {
		return shared.ErrForbidden
	}
	tag, err := r.db.Exec(ctx, q.write, q.key, hash)
	if err != nil {
		return fmt.Errorf("auth: update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
