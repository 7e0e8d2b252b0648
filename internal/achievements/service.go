package achievements

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"strings"

	"github.com/cadet-portal/cadet-portal/internal/notifications"
	"github.com/cadet-portal/cadet-portal/internal/platform/db"
	"github.com/cadet-portal/cadet-portal/internal/shared"
)

const noticeLink = "/cadet/achievements"

var errNotOwned = shared.NotFound("Achievement not found or not under your ANO.")

// Notifier fans a notice out to every cadet of a unit.
type Notifier interface {
	NotifyUnitBestEffort(ctx context.Context, unitID string, n notifications.Notice) (int, error)
}

// ImageStore persists achievement images.
type ImageStore interface {
	Save(fh *multipart.FileHeader) (string, error)
	Remove(name string) error
}

// Service implements achievement rules.
type Service struct {
	repo     Repository
	images   ImageStore
	notifier Notifier
	logger   *slog.Logger
}

// NewService constructs the service.
func NewService(repo Repository, images ImageStore, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, images: images, notifier: notifier, logger: logger}
}

// Create posts an achievement for the admin's unit. image may be nil.
func (s *Service) Create(ctx context.Context, p shared.Principal, in Input, image *multipart.FileHeader) (int64, error) {
	admin, ok := shared.AsAdmin(p)
	if !ok {
		return 0, shared.Forbidden("Only ANOs may create achievements.")
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return 0, shared.Invalid("Title is required.")
	}

	var imagePath string
	if image != nil {
		name, err := s.images.Save(image)
		if err != nil {
			return 0, err
		}
		imagePath = name
	}

	id, err := s.repo.Create(ctx, admin.UnitID, in, imagePath)
	if err != nil {
		if rmErr := s.images.Remove(imagePath); rmErr != nil {
			s.logger.Warn("remove orphaned image", slog.String("file", imagePath), slog.Any("error", rmErr))
		}
		return 0, err
	}
	_, err = s.notifier.NotifyUnitBestEffort(ctx, admin.UnitID, notifications.Notice{
		Type:    notifications.TypeAchievement,
		Message: `New Achievement: "` + in.Title + `". Check it out!`,
		Link:    noticeLink,
	})
	return id, err
}

// ListForAdmin returns the admin's unit achievements.
func (s *Service) ListForAdmin(ctx context.Context, p shared.Principal) ([]Achievement, error) {
	admin, ok := shared.AsAdmin(p)
	if !ok {
		return nil, shared.Forbidden("Only ANOs may view their achievements.")
	}
	return s.repo.ListByUnit(ctx, admin.UnitID)
}

// ListForCadet returns the achievements of the cadet's unit.
func (s *Service) ListForCadet(ctx context.Context, p shared.Principal) ([]Achievement, error) {
	cadet, ok := shared.AsCadet(p)
	if !ok {
		return nil, shared.Forbidden("Only cadets may view achievements.")
	}
	return s.repo.ListByUnit(ctx, cadet.UnitID)
}

// Delete removes an achievement of the admin's unit along with its image.
// A file that cannot be removed is logged and otherwise ignored.
func (s *Service) Delete(ctx context.Context, p shared.Principal, id int64) error {
	admin, ok := shared.AsAdmin(p)
	if !ok {
		return shared.Forbidden("Only ANOs may delete achievements.")
	}
	a, err := s.repo.Get(ctx, id, admin.UnitID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return errNotOwned
		}
		return err
	}
	deleted, err := s.repo.Delete(ctx, id, admin.UnitID)
	if err != nil {
		return err
	}
	if !deleted {
		return errNotOwned
	}
	if name := db.Deref(a.ImagePath); name != "" {
		if err := s.images.Remove(name); err != nil {
			s.logger.Warn("could not remove achievement image", slog.String("file", name), slog.Any("error", err))
		}
	}
	_, err = s.notifier.NotifyUnitBestEffort(ctx, admin.UnitID, notifications.Notice{
		Type:    notifications.TypeAchievement,
		Message: `Achievement removed: "` + a.Title + `".`,
		Link:    noticeLink,
	})
	return err
}
