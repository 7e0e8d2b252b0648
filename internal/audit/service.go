package audit

import (
	"context"
	"log/slog"

	"github.com/cadet-portal/cadet-portal/internal/shared"
)

// Repository provides system_logs persistence.
type Repository interface {
	Insert(ctx context.Context, e Entry) error
	List(ctx context.Context, userType, action string, limit, offset int) ([]Entry, error)
}

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Service records and lists system log entries.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService builds the audit service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Record writes e. Failures are logged and never surface to the caller.
func (s *Service) Record(ctx context.Context, e Entry) {
	if s == nil || s.repo == nil {
		return
	}
	if err := s.repo.Insert(ctx, e); err != nil {
		s.logger.Warn("record system log", slog.String("action", e.Action), slog.Any("error", err))
	}
}

// List returns one page of logs to a super-admin.
func (s *Service) List(ctx context.Context, p shared.Principal, f Filters) (Result, error) {
	if _, ok := shared.AsMaster(p); !ok {
		return Result{}, shared.Forbidden("Access denied.")
	}
	pageSize := f.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	rows, err := s.repo.List(ctx, f.UserType, f.Action, pageSize+1, (page-1)*pageSize)
	if err != nil {
		return Result{}, err
	}
	hasNext := len(rows) > pageSize
	if hasNext {
		rows = rows[:pageSize]
	}
	paging := PagingInfo{Page: page, PageSize: pageSize, HasNext: hasNext}
	if page > 1 {
		paging.PrevPage = page - 1
	}
	if hasNext {
		paging.NextPage = page + 1
	}
	return Result{Logs: rows, Paging: paging}, nil
}
