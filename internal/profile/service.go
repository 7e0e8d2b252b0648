package profile

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/cadet-portal/cadet-portal/internal/shared"
)

// Service exposes each role's own profile.
type Service struct {
	repo     Repository
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService constructs the service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, validate: validator.New(), logger: logger}
}

var (
	errAccessDenied   = shared.Forbidden("Access denied.")
	errInvalidProfile = shared.Invalid("Invalid profile data.")
	errNoPicture      = shared.NotFound("Profile picture not found")
)

func notFoundAs(err error, msg string) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NotFound(msg)
	}
	return err
}

// Cadet returns the calling cadet's profile.
func (s *Service) Cadet(ctx context.Context, p shared.Principal) (*CadetProfile, error) {
	cadet, ok := shared.AsCadet(p)
	if !ok {
		return nil, errAccessDenied
	}
	prof, err := s.repo.CadetProfile(ctx, cadet.RegimentalNumber)
	return prof, notFoundAs(err, "User not found")
}

// UpdateCadet upserts the calling cadet's profile sub-record.
func (s *Service) UpdateCadet(ctx context.Context, p shared.Principal, in CadetInput) error {
	cadet, ok := shared.AsCadet(p)
	if !ok {
		return errAccessDenied
	}
	if err := s.validate.Struct(in); err != nil {
		return errInvalidProfile
	}
	return s.repo.UpsertCadet(ctx, cadet.RegimentalNumber, in)
}

// Admin returns the calling unit-admin's profile.
func (s *Service) Admin(ctx context.Context, p shared.Principal) (*AdminProfile, error) {
	admin, ok := shared.AsAdmin(p)
	if !ok {
		return nil, errAccessDenied
	}
	prof, err := s.repo.AdminProfile(ctx, admin.UnitID)
	return prof, notFoundAs(err, "Admin not found")
}

// UpdateAdmin upserts the calling unit-admin's profile sub-record.
func (s *Service) UpdateAdmin(ctx context.Context, p shared.Principal, in AdminInput) error {
	admin, ok := shared.AsAdmin(p)
	if !ok {
		return errAccessDenied
	}
	if err := s.validate.Struct(in); err != nil {
		return errInvalidProfile
	}
	return s.repo.UpsertAdmin(ctx, admin.UnitID, in)
}

// Master returns the calling super-admin's profile.
func (s *Service) Master(ctx context.Context, p shared.Principal) (*MasterProfile, error) {
	m, ok := shared.AsMaster(p)
	if !ok {
		return nil, errAccessDenied
	}
	prof, err := s.repo.MasterProfile(ctx, m.Phone)
	return prof, notFoundAs(err, "Master not found")
}

// UpdateMaster upserts the calling super-admin's profile sub-record.
func (s *Service) UpdateMaster(ctx context.Context, p shared.Principal, in MasterInput) error {
	m, ok := shared.AsMaster(p)
	if !ok {
		return errAccessDenied
	}
	return s.repo.UpsertMaster(ctx, m.Phone, in)
}

// SetPicture records a stored upload as the caller's profile picture.
func (s *Service) SetPicture(ctx context.Context, p shared.Principal, name string) error {
	if p == nil {
		return errAccessDenied
	}
	if err := s.repo.SetPicture(ctx, p.Role(), shared.Subject(p), name); err != nil {
		return err
	}
	s.logger.Info("profile picture updated", slog.String("role", string(p.Role())), slog.String("owner", shared.Subject(p)))
	return nil
}

// Picture returns the stored name of the caller's profile picture.
func (s *Service) Picture(ctx context.Context, p shared.Principal) (string, error) {
	if p == nil {
		return "", errAccessDenied
	}
	name, err := s.repo.Picture(ctx, p.Role(), shared.Subject(p))
	if errors.Is(err, shared.ErrNotFound) {
		return "", errNoPicture
	}
	return name, err
}
