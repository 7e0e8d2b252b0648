package notifications

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/cadet-portal/cadet-portal/internal/observability"
	"github.com/cadet-portal/cadet-portal/internal/shared"
)

// Repository provides notification persistence.
type Repository interface {
	UnitRecipients(ctx context.Context, unitID string) ([]string, error)
	Insert(ctx context.Context, regimentalNumber string, n Notice) error
	ListForCadet(ctx context.Context, regimentalNumber string) ([]Notification, error)
	MarkRead(ctx context.Context, id int64, regimentalNumber string) (bool, error)
	ListBroadcasts(ctx context.Context) ([]Broadcast, error)
	InsertBroadcast(ctx context.Context, b Broadcast) (int64, error)
	DeleteBroadcast(ctx context.Context, id int64) (bool, error)
}

const fanOutLimit = 16

// Service delivers and lists notifications.
type Service struct {
	repo    Repository
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewService builds the notification service. metrics may be nil.
func NewService(repo Repository, metrics *observability.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, metrics: metrics, logger: logger}
}

// NotifyUnitBestEffort inserts one notification per cadet of unitID. Inserts
// run concurrently and all of them are attempted; the call returns once every
// insert has finished, reporting the number of recipients and the first
// failure. Rows already written are kept when another insert fails, and the
// mutation that triggered the notice is never rolled back.
func (s *Service) NotifyUnitBestEffort(ctx context.Context, unitID string, n Notice) (int, error) {
	recipients, err := s.repo.UnitRecipients(ctx, unitID)
	if err != nil {
		return 0, err
	}
	// The request may be abandoned by the client; deliveries already started
	// still run to completion.
	ctx = context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(fanOutLimit)
	for _, reg := range recipients {
		g.Go(func() error {
			err := s.repo.Insert(ctx, reg, n)
			s.metrics.ObserveNotification(string(n.Type), err)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Warn("notification fan-out incomplete",
			slog.String("unit", unitID),
			slog.String("type", string(n.Type)),
			slog.Int("recipients", len(recipients)),
			slog.Any("error", err))
		return len(recipients), err
	}
	return len(recipients), nil
}

// NotifyCadet inserts a single notification.
func (s *Service) NotifyCadet(ctx context.Context, regimentalNumber string, n Notice) error {
	err := s.repo.Insert(ctx, regimentalNumber, n)
	s.metrics.ObserveNotification(string(n.Type), err)
	return err
}

// ListMine returns the calling cadet's notifications.
func (s *Service) ListMine(ctx context.Context, p shared.Principal) ([]Notification, error) {
	cadet, ok := shared.AsCadet(p)
	if !ok {
		return nil, shared.Forbidden("Only cadets may view notifications.")
	}
	return s.repo.ListForCadet(ctx, cadet.RegimentalNumber)
}

// MarkRead marks one of the calling cadet's notifications as read.
func (s *Service) MarkRead(ctx context.Context, p shared.Principal, id int64) error {
	cadet, ok := shared.AsCadet(p)
	if !ok {
		return shared.Forbidden("Only cadets may mark notifications.")
	}
	found, err := s.repo.MarkRead(ctx, id, cadet.RegimentalNumber)
	if err != nil {
		return err
	}
	if !found {
		return shared.NotFound("Notification not found.")
	}
	return nil
}
