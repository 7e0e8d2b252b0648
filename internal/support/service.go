package support

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/cadet-portal/cadet-portal/internal/notifications"
	"github.com/cadet-portal/cadet-portal/internal/shared"
)

const (
	replyMessage = "Admin replied to your support query."
	replyLink    = "/cadet/support-queries"
)

// Notifier delivers a notice to a single cadet.
type Notifier interface {
	NotifyCadet(ctx context.Context, regimentalNumber string, n notifications.Notice) error
}

// Service implements the support desk.
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

var errQueryNotFound = shared.NotFound("Query not found.")

// Submit files a new query for the calling cadet.
func (s *Service) Submit(ctx context.Context, p shared.Principal, message string) (int64, error) {
	cadet, ok := shared.AsCadet(p)
	if !ok {
		return 0, shared.Forbidden("Only cadets may submit support queries.")
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return 0, shared.Invalid("Message is required.")
	}
	return s.repo.Create(ctx, cadet.RegimentalNumber, message)
}

// Mine lists the calling cadet's queries.
func (s *Service) Mine(ctx context.Context, p shared.Principal) ([]Query, error) {
	cadet, ok := shared.AsCadet(p)
	if !ok {
		return nil, shared.Forbidden("Only cadets may view their queries.")
	}
	return s.repo.ListByCadet(ctx, cadet.RegimentalNumber)
}

// ForUnit lists the queries raised by the admin's cadets.
func (s *Service) ForUnit(ctx context.Context, p shared.Principal) ([]Query, error) {
	admin, ok := shared.AsAdmin(p)
	if !ok {
		return nil, shared.Forbidden("Only ANOs may view all queries.")
	}
	return s.repo.ListByUnit(ctx, admin.UnitID)
}

// unitQuery resolves id and checks it was raised by a cadet of the admin's
// unit. Foreign and missing queries are indistinguishable.
func (s *Service) unitQuery(ctx context.Context, admin shared.AdminPrincipal, id int64) (Owner, error) {
	owner, err := s.repo.Owner(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Owner{}, errQueryNotFound
		}
		return Owner{}, err
	}
	if owner.UnitID != admin.UnitID {
		return Owner{}, errQueryNotFound
	}
	return owner, nil
}

// Reply answers and closes a query, then notifies its cadet.
func (s *Service) Reply(ctx context.Context, p shared.Principal, id int64, response string) error {
	admin, ok := shared.AsAdmin(p)
	if !ok {
		return shared.Forbidden("Only ANOs may reply to queries.")
	}
	response = strings.TrimSpace(response)
	if response == "" {
		return shared.Invalid("Response text is required.")
	}
	owner, err := s.unitQuery(ctx, admin, id)
	if err != nil {
		return err
	}
	updated, err := s.repo.Reply(ctx, id, response)
	if err != nil {
		return err
	}
	if !updated {
		return errQueryNotFound
	}
	return s.notifier.NotifyCadet(ctx, owner.RegimentalNumber, notifications.Notice{
		Type:    notifications.TypeSupportQuery,
		Message: replyMessage,
		Link:    replyLink,
	})
}

// DeleteForUnit removes a query raised by one of the admin's cadets.
func (s *Service) DeleteForUnit(ctx context.Context, p shared.Principal, id int64) error {
	admin, ok := shared.AsAdmin(p)
	if !ok {
		return shared.Forbidden("Only ANOs may delete queries.")
	}
	if _, err := s.unitQuery(ctx, admin, id); err != nil {
		return err
	}
	return s.delete(ctx, id)
}

// All lists every query to the super-admin.
func (s *Service) All(ctx context.Context, p shared.Principal) ([]Query, error) {
	if _, ok := shared.AsMaster(p); !ok {
		return nil, shared.Forbidden("Only master may view support queries.")
	}
	return s.repo.ListAll(ctx)
}

// Delete removes any query on behalf of the super-admin.
func (s *Service) Delete(ctx context.Context, p shared.Principal, id int64) error {
	if _, ok := shared.AsMaster(p); !ok {
		return shared.Forbidden("Only master may delete support queries.")
	}
	return s.delete(ctx, id)
}

func (s *Service) delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return errQueryNotFound
	}
	return nil
}
