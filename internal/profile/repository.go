package profile

import (
	"context"
	"fmt"

	"github.com/cadet-portal/cadet-portal/internal/platform/db"
	"github.com/cadet-portal/cadet-portal/internal/shared"
)

// Repository provides profile persistence.
type Repository interface {
	CadetProfile(ctx context.Context, regimentalNumber string) (*CadetProfile, error)
	UpsertCadet(ctx context.Context, regimentalNumber string, in CadetInput) error
	AdminProfile(ctx context.Context, unitID string) (*AdminProfile, error)
	UpsertAdmin(ctx context.Context, unitID string, in AdminInput) error
	MasterProfile(ctx context.Context, phone string) (*MasterProfile, error)
	UpsertMaster(ctx context.Context, phone string, in MasterInput) error
	SetPicture(ctx context.Context, role shared.Role, owner, name string) error
	Picture(ctx context.Context, role shared.Role, owner string) (string, error)
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	db db.DBTX
}

// NewRepository constructs the repository.
func NewRepository(conn db.DBTX) *PGRepository {
	return &PGRepository{db: conn}
}

// pictureTable names the profile table and key column holding each role's
// picture.
var pictureTable = map[shared.Role]struct{ table, key string }{
	shared.RoleCadet:  {"users_profile", "regimental_number"},
	shared.RoleAdmin:  {"admin_profile", "ano_id"},
	shared.RoleMaster: {"master_profile", "phone"},
}

// CadetProfile loads the cadet with its profile and unit-admin.
func (r *PGRepository) CadetProfile(ctx context.Context, regimentalNumber string) (*CadetProfile, error) {
	var p CadetProfile
	err := r.db.QueryRow(ctx, `SELECT u.name, u.email, u.contact, u.regimental_number,
		p.dob::text, p.age, p.mother_name, p.father_name, p.parent_phone, p.parent_email,
		p.address, p.wing, p.category, u.ano_id, a.name, a.type,
		p.current_year, p.institution_name, p.studying, p.year_class, p.profile_pic_path
		FROM users u
		LEFT JOIN users_profile p ON u.regimental_number = p.regimental_number
		LEFT JOIN admins a ON u.ano_id = a.ano_id
		WHERE u.regimental_number = $1`, regimentalNumber).Scan(
		&p.Name, &p.Email, &p.Contact, &p.RegimentalNumber,
		&p.DOB, &p.Age, &p.MotherName, &p.FatherName, &p.ParentPhone, &p.ParentEmail,
		&p.Address, &p.Wing, &p.Category, &p.UnitID, &p.UnitAdminName, &p.UnitType,
		&p.CurrentYear, &p.InstitutionName, &p.Studying, &p.YearClass, &p.ProfilePicPath)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("profile: cadet: %w", err)
	}
	return &p, nil
}

// UpsertCadet writes the cadet's profile sub-record, keeping the picture.
func (r *PGRepository) UpsertCadet(ctx context.Context, regimentalNumber string, in CadetInput) error {
	_, err := r.db.Exec(ctx, `INSERT INTO users_profile
		(regimental_number, dob, age, mother_name, father_name, parent_phone, parent_email,
		 address, wing, category, current_year, institution_name, studying, year_class)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (regimental_number) DO UPDATE SET
			dob = EXCLUDED.dob, age = EXCLUDED.age,
			mother_name = EXCLUDED.mother_name, father_name = EXCLUDED.father_name,
			parent_phone = EXCLUDED.parent_phone, parent_email = EXCLUDED.parent_email,
			address = EXCLUDED.address, wing = EXCLUDED.wing, category = EXCLUDED.category,
			current_year = EXCLUDED.current_year, institution_name = EXCLUDED.institution_name,
			studying = EXCLUDED.studying, year_class = EXCLUDED.year_class, updated_at = NOW()`,
		regimentalNumber, db.Nullable(in.DOB), in.Age, db.Nullable(in.MotherName), db.Nullable(in.FatherName),
		db.Nullable(in.ParentPhone), db.Nullable(in.ParentEmail), db.Nullable(in.Address),
		db.Nullable(in.Wing), db.Nullable(in.Category), db.Nullable(in.CurrentYear),
		db.Nullable(in.InstitutionName), db.Nullable(in.Studying), db.Nullable(in.YearClass))
	if err != nil {
		return fmt.Errorf("profile: upsert cadet: %w", err)
	}
	return nil
}

// AdminProfile loads the unit-admin with its profile.
func (r *PGRepository) AdminProfile(ctx context.Context, unitID string) (*AdminProfile, error) {
	var p AdminProfile
	err := r.db.QueryRow(ctx, `SELECT a.name, a.email, a.contact, a.ano_id, a.role, a.type,
		p.dob::text, p.address, p.unit_name, p.institution_name, p.profile_pic_path
		FROM admins a
		LEFT JOIN admin_profile p ON a.ano_id = p.ano_id
		WHERE a.ano_id = $1`, unitID).Scan(
		&p.Name, &p.Email, &p.Contact, &p.UnitID, &p.Role, &p.Type,
		&p.DOB, &p.Address, &p.UnitName, &p.InstitutionName, &p.ProfilePicPath)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("profile: admin: %w", err)
	}
	return &p, nil
}

// UpsertAdmin writes the unit-admin's profile sub-record.
func (r *PGRepository) UpsertAdmin(ctx context.Context, unitID string, in AdminInput) error {
	_, err := r.db.Exec(ctx, `INSERT INTO admin_profile (ano_id, dob, address, role, unit_name, institution_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (ano_id) DO UPDATE SET
			dob = EXCLUDED.dob, address = EXCLUDED.address, role = EXCLUDED.role,
			unit_name = EXCLUDED.unit_name, institution_name = EXCLUDED.institution_name,
			updated_at = NOW()`,
		unitID, db.Nullable(in.DOB), db.Nullable(in.Address), db.Nullable(in.Role),
		db.Nullable(in.UnitName), db.Nullable(in.InstitutionName))
	if err != nil {
		return fmt.Errorf("profile: upsert admin: %w", err)
	}
	return nil
}

// MasterProfile loads the super-admin with its profile.
func (r *PGRepository) MasterProfile(ctx context.Context, phone string) (*MasterProfile, error) {
	var p MasterProfile
	err := r.db.QueryRow(ctx, `SELECT m.name, m.email, m.phone, p.address, p.profile_pic_path
		FROM masters m
		LEFT JOIN master_profile p ON m.phone = p.phone
		WHERE m.phone = $1`, phone).Scan(&p.Name, &p.Email, &p.Phone, &p.Address, &p.ProfilePicPath)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("profile: master: %w", err)
	}
	return &p, nil
}

// UpsertMaster writes the super-admin's profile sub-record.
func (r *PGRepository) UpsertMaster(ctx context.Context, phone string, in MasterInput) error {
	_, err := r.db.Exec(ctx, `INSERT INTO master_profile (phone, address) VALUES ($1, $2)
		ON CONFLICT (phone) DO UPDATE SET address = EXCLUDED.address, updated_at = NOW()`,
		phone, db.Nullable(in.Address))
	if err != nil {
		return fmt.Errorf("profile: upsert master: %w", err)
	}
	return nil
}

// SetPicture records name as owner's picture, creating the profile row when
// it does not exist yet.
func (r *PGRepository) SetPicture(ctx context.Context, role shared.Role, owner, name string) error {
	t, ok := pictureTable[role]
	if !ok {
		return fmt.Errorf("profile: no picture table for role %q", role)
	}
	query := fmt.Sprintf(`INSERT INTO %[1]s (%[2]s, profile_pic_path) VALUES ($1, $2)
		ON CONFLICT (%[2]s) DO UPDATE SET profile_pic_path = EXCLUDED.profile_pic_path, updated_at = NOW()`,
		t.table, t.key)
	if _, err := r.db.Exec(ctx, query, owner, name); err != nil {
		return fmt.Errorf("profile: set picture: %w", err)
	}
	return nil
}

// Picture returns owner's stored picture name, or shared.ErrNotFound.
func (r *PGRepository) Picture(ctx context.Context, role shared.Role, owner string) (string, error) {
	t, ok := pictureTable[role]
	if !ok {
		return "", fmt.Errorf("profile: no picture table for role %q", role)
	}
	var name *string
	query := fmt.Sprintf(`SELECT profile_pic_path FROM %s WHERE %s = $1`, t.table, t.key)
	if err := r.db.QueryRow(ctx, query, owner).Scan(&name); err != nil {
		if db.IsNoRows(err) {
			return "", shared.ErrNotFound
		}
		return "", fmt.Errorf("profile: picture: %w", err)
	}
	if name == nil || *name == "" {
		return "", shared.ErrNotFound
	}
	return *name, nil
}

var _ Repository = (*PGRepository)(nil)
