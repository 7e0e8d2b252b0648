package users

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cadet-portal/cadet-portal/internal/notifications"
	"github.com/cadet-portal/cadet-portal/internal/shared"
)

// Notifier delivers a notice to a single cadet.
type Notifier interface {
	NotifyCadet(ctx context.Context, regimentalNumber string, n notifications.Notice) error
}

// Service handles cadet and admin account management.
type Service struct {
	repo     Repository
	notifier Notifier
	logger   *slog.Logger
}

// NewService builds Service instance.
func NewService(repo Repository, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, notifier: notifier, logger: logger}
}

var errCadetNotInUnit = shared.NotFound("Cadet not found or not under your ANO.")

// UnitCadets lists the admin's cadets, pending registrations first.
func (s *Service) UnitCadets(ctx context.Context, p shared.Principal) ([]Cadet, error) {
	admin, ok := shared.AsAdmin(p)
	if !ok {
		return nil, shared.Forbidden("Only ANOs may manage cadet registrations.")
	}
	return s.repo.ListUnitCadets(ctx, admin.UnitID)
}

func (s *Service) unitCadet(ctx context.Context, admin shared.AdminPrincipal, id int64) (string, error) {
	number, err := s.repo.UnitCadetNumber(ctx, id, admin.UnitID)
	if errors.Is(err, shared.ErrNotFound) {
		return "", errCadetNotInUnit
	}
	return number, err
}

// Approve approves a pending cadet of the admin's unit and notifies them.
func (s *Service) Approve(ctx context.Context, p shared.Principal, id int64) error {
	admin, ok := shared.AsAdmin(p)
	if !ok {
		return shared.Forbidden("Only ANOs may approve cadets.")
	}
	number, err := s.unitCadet(ctx, admin, id)
	if err != nil {
		return err
	}
	approved, err := s.repo.ApproveUnitCadet(ctx, id, admin.UnitID)
	if err != nil {
		return err
	}
	if !approved {
		return errCadetNotInUnit
	}
	s.logger.Info("cadet approved", slog.String("regimental_number", number), slog.String("ano_id", admin.UnitID))
	return s.notifier.NotifyCadet(ctx, number, notifications.Notice{
		Type:    notifications.TypeManageUsers,
		Message: approvedMessage,
		Link:    approvedLink,
	})
}

// Reject notifies a cadet of the admin's unit that their registration was
// rejected, then deletes the account. The notice is written first.
func (s *Service) Reject(ctx context.Context, p shared.Principal, id int64) error {
	admin, ok := shared.AsAdmin(p)
	if !ok {
		return shared.Forbidden("Only ANOs may delete cadets.")
	}
	number, err := s.unitCadet(ctx, admin, id)
	if err != nil {
		return err
	}
	if err := s.notifier.NotifyCadet(ctx, number, notifications.Notice{
		Type:    notifications.TypeManageUsers,
		Message: rejectedMessage,
	}); err != nil {
		return err
	}
	deleted, err := s.repo.DeleteUnitCadet(ctx, id, admin.UnitID)
	if err != nil {
		return err
	}
	if !deleted {
		return errCadetNotInUnit
	}
	s.logger.Info("cadet rejected", slog.String("regimental_number", number), slog.String("ano_id", admin.UnitID))
	return nil
}

// AllCadets lists every cadet to the super-admin.
func (s *Service) AllCadets(ctx context.Context, p shared.Principal) ([]Cadet, error) {
	if _, ok := shared.AsMaster(p); !ok {
		return nil, shared.Forbidden("Only master may manage cadets.")
	}
	return s.repo.ListCadets(ctx)
}

// SetCadetEnabled enables or disables a cadet account.
func (s *Service) SetCadetEnabled(ctx context.Context, p shared.Principal, regimentalNumber string, enabled bool) error {
	if _, ok := shared.AsMaster(p); !ok {
		if enabled {
			return shared.Forbidden("Only master may enable cadets.")
		}
		return shared.Forbidden("Only master may disable cadets.")
	}
	found, err := s.repo.SetCadetApproval(ctx, regimentalNumber, enabled)
	if err != nil {
		return err
	}
	if !found {
		return shared.NotFound("Cadet not found.")
	}
	return nil
}

// DeleteCadet permanently removes a cadet account.
func (s *Service) DeleteCadet(ctx context.Context, p shared.Principal, regimentalNumber string) error {
	if _, ok := shared.AsMaster(p); !ok {
		return shared.Forbidden("Only master may delete cadets.")
	}
	found, err := s.repo.DeleteCadet(ctx, regimentalNumber)
	if err != nil {
		return err
	}
	if !found {
		return shared.NotFound("Cadet not found.")
	}
	return nil
}

// Admins lists every unit-admin to the super-admin.
func (s *Service) Admins(ctx context.Context, p shared.Principal) ([]Admin, error) {
	if _, ok := shared.AsMaster(p); !ok {
		return nil, shared.Forbidden("Only master may manage admins.")
	}
	return s.repo.ListAdmins(ctx)
}

// SetAdminEnabled approves or disables a unit-admin account.
func (s *Service) SetAdminEnabled(ctx context.Context, p shared.Principal, unitID string, enabled bool) error {
	if _, ok := shared.AsMaster(p); !ok {
		if enabled {
			return shared.Forbidden("Only master may enable admins.")
		}
		return shared.Forbidden("Only master may disable admins.")
	}
	found, err := s.repo.SetAdminApproval(ctx, unitID, enabled)
	if err != nil {
		return err
	}
	if !found {
		return shared.NotFound("Admin not found.")
	}
	return nil
}

// DeleteAdmin permanently removes a unit-admin account.
func (s *Service) DeleteAdmin(ctx context.Context, p shared.Principal, unitID string) error {
	if _, ok := shared.AsMaster(p); !ok {
		return shared.Forbidden("Only master may delete admins.")
	}
	found, err := s.repo.DeleteAdmin(ctx, unitID)
	if err != nil {
		return err
	}
	if !found {
		return shared.NotFound("Admin not found.")
	}
	return nil
}
