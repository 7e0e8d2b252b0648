package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/cadet-portal/cadet-portal/internal/notifications"
	"github.com/cadet-portal/cadet-portal/internal/shared"
)

const noticeLink = "/cadet/events"

var errNotOwned = shared.NotFound("Event not found or unauthorized.")

// Notifier fans a notice out to every cadet of a unit.
type Notifier interface {
	NotifyUnitBestEffort(ctx context.Context, unitID string, n notifications.Notice) (int, error)
}

// Service implements event rules.
type Service struct {
	repo     Repository
	notifier Notifier
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService constructs the service.
func NewService(repo Repository, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, notifier: notifier, validate: validator.New(), logger: logger}
}

func (s *Service) notify(ctx context.Context, unitID, verb, location, date, at string) error {
	_, err := s.notifier.NotifyUnitBestEffort(ctx, unitID, notifications.Notice{
		Type:    notifications.TypeEvent,
		Message: fmt.Sprintf("%s: \"%s\" on %s at %s.", verb, location, notifications.DisplayDate(date), at),
		Link:    noticeLink,
	})
	return err
}

func (s *Service) check(in Input) error {
	if s.validate.Struct(in) != nil {
		return shared.Invalid("All fields are required.")
	}
	return nil
}

// ListForAdmin returns the admin's unit events.
func (s *Service) ListForAdmin(ctx context.Context, p shared.Principal) ([]Event, error) {
	admin, ok := shared.AsAdmin(p)
	if !ok {
		return nil, shared.Forbidden("Only ANOs may view their events.")
	}
	return s.repo.ListByUnit(ctx, admin.UnitID)
}

// ListForCadet returns the events of the cadet's unit.
func (s *Service) ListForCadet(ctx context.Context, p shared.Principal) ([]Event, error) {
	cadet, ok := shared.AsCadet(p)
	if !ok {
		return nil, shared.Forbidden("Only cadets may view events.")
	}
	return s.repo.ListByUnit(ctx, cadet.UnitID)
}

// Create adds an event and notifies the unit's cadets.
func (s *Service) Create(ctx context.Context, p shared.Principal, in Input) (int64, error) {
	admin, ok := shared.AsAdmin(p)
	if !ok {
		return 0, shared.Forbidden("Only ANOs may create events.")
	}
	if err := s.check(in); err != nil {
		return 0, err
	}
	id, err := s.repo.Create(ctx, admin.UnitID, in)
	if err != nil {
		return 0, err
	}
	return id, s.notify(ctx, admin.UnitID, "New Event", in.Location, in.EventDate, in.FallinTime)
}

// Update rewrites an event of the admin's unit and notifies its cadets.
func (s *Service) Update(ctx context.Context, p shared.Principal, id int64, in Input) error {
	admin, ok := shared.AsAdmin(p)
	if !ok {
		return shared.Forbidden("Only ANOs may update events.")
	}
	if err := s.check(in); err != nil {
		return err
	}
	if _, err := s.owned(ctx, id, admin.UnitID); err != nil {
		return err
	}
	updated, err := s.repo.Update(ctx, id, admin.UnitID, in)
	if err != nil {
		return err
	}
	if !updated {
		return errNotOwned
	}
	return s.notify(ctx, admin.UnitID, "Event updated", in.Location, in.EventDate, in.FallinTime)
}

// Delete removes an event of the admin's unit and notifies its cadets.
func (s *Service) Delete(ctx context.Context, p shared.Principal, id int64) error {
	admin, ok := shared.AsAdmin(p)
	if !ok {
		return shared.Forbidden("Only ANOs may delete events.")
	}
	e, err := s.owned(ctx, id, admin.UnitID)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, id, admin.UnitID)
	if err != nil {
		return err
	}
	if !deleted {
		return errNotOwned
	}
	return s.notify(ctx, admin.UnitID, "Event removed", e.Location, e.EventDate, e.FallinTime)
}

func (s *Service) owned(ctx context.Context, id int64, unitID string) (*Event, error) {
	e, err := s.repo.Get(ctx, id, unitID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, errNotOwned
	}
	return e, err
}
