package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cadet-portal/cadet-portal/internal/shared"
)

// Cadet is the credential view of a users row.
type Cadet struct {
	ID               int64
	RegimentalNumber string
	Name             string
	Email            string
	UnitID           string
	PasswordHash     string
	IsApproved       bool
}

// Admin is the credential view of an admins row.
type Admin struct {
	ID           int64
	UnitID       string
	Designation  string
	Name         string
	Email        string
	PasswordHash string
	IsApproved   bool
}

// Master is the credential view of a masters row.
type Master struct {
	Phone        string
	Name         string
	PasswordHash string
	IsActive     bool
}

// UnitAdmin is the public listing shape of an approved ANO.
type UnitAdmin struct {
	UnitID      string `json:"ano_id"`
	Name        string `json:"name"`
	Designation string `json:"role"`
}

// NewCadet carries a self-registration request.
type NewCadet struct {
	RegimentalNumber string `json:"regimental_number" validate:"required"`
	Name             string `json:"name" validate:"required"`
	Email            string `json:"email" validate:"required"`
	Contact          string `json:"contact"`
	Password         string `json:"password" validate:"required"`
	UnitID           string `json:"ano_id" validate:"required"`
}

// NewAdmin carries a unit-admin registration request.
type NewAdmin struct {
	UnitID      string `json:"anoId" validate:"required"`
	Designation string `json:"role" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required"`
	Contact     string `json:"contact"`
	Password    string `json:"password" validate:"required"`
	Type        string `json:"type" validate:"required"`
}

// Claims is the signed token payload. Field names stay compatible with
// existing web clients.
type Claims struct {
	UserType         shared.Role `json:"userType"`
	UserID           int64       `json:"id,omitempty"`
	RegimentalNumber string      `json:"regimental_number,omitempty"`
	UnitID           string      `json:"ano_id,omitempty"`
	Designation      string      `json:"role,omitempty"`
	Phone            string      `json:"phone,omitempty"`
	jwt.RegisteredClaims
}

var errUnknownRole = errors.New("auth: unknown user type")

// ClaimsFor derives the role-specific claim set for p.
func ClaimsFor(p shared.Principal) Claims {
	return shared.Match(p,
		func(c shared.CadetPrincipal) Claims {
			return Claims{UserType: shared.RoleCadet, UserID: c.ID, RegimentalNumber: c.RegimentalNumber, UnitID: c.UnitID}
		},
		func(a shared.AdminPrincipal) Claims {
			return Claims{UserType: shared.RoleAdmin, UserID: a.ID, UnitID: a.UnitID, Designation: a.Designation}
		},
		func(m shared.MasterPrincipal) Claims {
			return Claims{UserType: shared.RoleMaster, Phone: m.Phone}
		},
	)
}

// Principal converts verified claims back into the tagged identity.
func (c *Claims) Principal() (shared.Principal, error) {
	switch c.UserType {
	case shared.RoleCadet:
		if c.RegimentalNumber == "" || c.UnitID == "" {
			return nil, errUnknownRole
		}
		return shared.CadetPrincipal{ID: c.UserID, RegimentalNumber: c.RegimentalNumber, UnitID: c.UnitID}, nil
	case shared.RoleAdmin:
		if c.UnitID == "" {
			return nil, errUnknownRole
		}
		return shared.AdminPrincipal{ID: c.UserID, UnitID: c.UnitID, Designation: c.Designation}, nil
	case shared.RoleMaster:
		if c.Phone == "" {
			return nil, errUnknownRole
		}
		return shared.MasterPrincipal{Phone: c.Phone}, nil
	}
	return nil, errUnknownRole
}

// RedirectFor returns the client landing path for p.
func RedirectFor(p shared.Principal) string {
	return shared.Match(p,
		func(shared.CadetPrincipal) string { return "/cadet" },
		func(shared.AdminPrincipal) string { return "/admin" },
		func(shared.MasterPrincipal) string { return "/administrator" },
	)
}

// LoginResult is returned for a successful login.
type LoginResult struct {
	Principal shared.Principal
	Token     string
	ExpiresAt time.Time
	Redirect  string
}
