package fallin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cadet-portal/cadet-portal/internal/notifications"
	"github.com/cadet-portal/cadet-portal/internal/platform/db"
	"github.com/cadet-portal/cadet-portal/internal/shared"
)

const noticeLink = "/cadet/fallin"

// Notifier fans a notice out to every cadet of a unit.
type Notifier interface {
	NotifyUnitBestEffort(ctx context.Context, unitID string, n notifications.Notice) (int, error)
}

// Service implements fall-in business rules.
type Service struct {
	repo     Repository
	notifier Notifier
	logger   *slog.Logger
}

// NewService constructs the service.
func NewService(repo Repository, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, notifier: notifier, logger: logger}
}

func validate(in Input) error {
	if in.Date == "" || in.Time == "" || in.DressCode == "" {
		return shared.Invalid("Missing required fields: date, time, or dress_code.")
	}
	return nil
}

func summary(date, at, location string) string {
	return fmt.Sprintf("%s @ %s @ %s.", notifications.DisplayDate(date), at, notifications.OrDash(location))
}

func (s *Service) notify(ctx context.Context, unitID, message string) error {
	_, err := s.notifier.NotifyUnitBestEffort(ctx, unitID, notifications.Notice{
		Type:    notifications.TypeFallin,
		Message: message,
		Link:    noticeLink,
	})
	return err
}

// Create posts a fall-in for the admin's unit and notifies its cadets.
func (s *Service) Create(ctx context.Context, p shared.Principal, in Input) (int64, error) {
	admin, ok := shared.AsAdmin(p)
	if !ok {
		return 0, shared.Forbidden("Only ANOs may create fallins.")
	}
	if err := validate(in); err != nil {
		return 0, err
	}
	id, err := s.repo.Create(ctx, admin.UnitID, in)
	if err != nil {
		return 0, err
	}
	if err := s.notify(ctx, admin.UnitID, "New Fall-In posted on "+summary(in.Date, in.Time, in.Location)); err != nil {
		return id, err
	}
	s.logger.Info("fallin created", slog.Int64("fallin_id", id), slog.String("ano_id", admin.UnitID))
	return id, nil
}

// List returns the fall-ins of the caller's unit to an admin or cadet.
func (s *Service) List(ctx context.Context, p shared.Principal) ([]Fallin, error) {
	unitID, ok := shared.UnitOf(p)
	if !ok {
		return nil, shared.Forbidden("Only cadets or ANOs may view fallins.")
	}
	return s.repo.ListByUnit(ctx, unitID)
}

// ListForCadet is the cadet-only variant of List.
func (s *Service) ListForCadet(ctx context.Context, p shared.Principal) ([]Fallin, error) {
	cadet, ok := shared.AsCadet(p)
	if !ok {
		return nil, shared.Forbidden("Only cadets may view these fallins.")
	}
	return s.repo.ListByUnit(ctx, cadet.UnitID)
}

// Get returns one fall-in of the caller's unit. Foreign and missing
// fall-ins are indistinguishable.
func (s *Service) Get(ctx context.Context, p shared.Principal, id int64) (*Fallin, error) {
	unitID, ok := shared.UnitOf(p)
	if !ok {
		return nil, shared.Forbidden("Only cadets or ANOs may view fallins.")
	}
	f, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound("Fallin not found or not authorized.")
		}
		return nil, err
	}
	if f.UnitID != unitID {
		return nil, shared.NotFound("Fallin not found or not authorized.")
	}
	return f, nil
}

// owned re-fetches id and checks it belongs to the admin's unit.
func (s *Service) owned(ctx context.Context, admin shared.AdminPrincipal, id int64, denied string) (*Fallin, error) {
	f, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.Forbidden(denied)
		}
		return nil, err
	}
	if f.UnitID != admin.UnitID {
		return nil, shared.Forbidden(denied)
	}
	return f, nil
}

// Update rewrites a fall-in owned by the admin's unit and notifies its cadets.
func (s *Service) Update(ctx context.Context, p shared.Principal, id int64, in Input) error {
	admin, ok := shared.AsAdmin(p)
	if !ok {
		return shared.Forbidden("Only ANOs can update fallins.")
	}
	if err := validate(in); err != nil {
		return err
	}
	if _, err := s.owned(ctx, admin, id, "You are not authorized to update this fallin."); err != nil {
		return err
	}
	updated, err := s.repo.Update(ctx, id, admin.UnitID, in)
	if err != nil {
		return err
	}
	if !updated {
		return shared.NotFound("Fallin not found.")
	}
	return s.notify(ctx, admin.UnitID, "Fall-In updated: "+summary(in.Date, in.Time, in.Location))
}

// Delete removes a fall-in owned by the admin's unit and notifies its cadets.
func (s *Service) Delete(ctx context.Context, p shared.Principal, id int64) error {
	admin, ok := shared.AsAdmin(p)
	if !ok {
		return shared.Forbidden("Only ANOs can delete fallins.")
	}
	f, err := s.owned(ctx, admin, id, "You are not authorized to delete this fallin.")
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, id, admin.UnitID)
	if err != nil {
		return err
	}
	if !deleted {
		return shared.NotFound("Fallin not found.")
	}
	return s.notify(ctx, admin.UnitID, "Fall-In removed: "+summary(f.Date, f.Time, db.Deref(f.Location)))
}
